// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"sync"
)

// MockClient is a scriptable LLM client for testing.
//
// Responses are returned in queue order; when the queue is empty the
// default response is returned. A response function, when set, takes
// precedence over both.
//
// Thread Safety:
//
//	MockClient is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// responses are queued responses returned in order.
	responses []string

	// defaultResponse is returned when no queued responses remain.
	defaultResponse string

	// responseFunc generates responses dynamically from the prompt.
	responseFunc func(prompt string) (string, error)

	// err causes Generate to return this error.
	err error

	// prompts records every prompt passed to Generate.
	prompts []string
}

// NewMockClient creates a mock client with a generic default response.
func NewMockClient() *MockClient {
	return &MockClient{defaultResponse: "mock response"}
}

// QueueResponse appends a response to the queue.
func (m *MockClient) QueueResponse(response string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
	return m
}

// WithDefaultResponse sets the fallback response.
func (m *MockClient) WithDefaultResponse(response string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = response
	return m
}

// WithResponseFunc sets a dynamic response generator.
func (m *MockClient) WithResponseFunc(fn func(prompt string) (string, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responseFunc = fn
	return m
}

// WithError makes every Generate call fail.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Prompts returns a copy of all prompts seen so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns the number of Generate calls.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Name implements the Client interface.
func (m *MockClient) Name() string { return "mock" }

// Generate implements the Client interface.
func (m *MockClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)

	if m.err != nil {
		return "", m.err
	}
	if m.responseFunc != nil {
		return m.responseFunc(prompt)
	}
	if len(m.responses) > 0 {
		response := m.responses[0]
		m.responses = m.responses[1:]
		return response, nil
	}
	return m.defaultResponse, nil
}
