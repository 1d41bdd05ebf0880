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
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Recognized provider names.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewClient creates a Client for the given provider name.
//
// Description:
//
//	Dispatches to the matching backend constructor. An unknown provider
//	or a missing credential is a configuration error raised here, at
//	construction -- oracle failures during a run are a separate,
//	recoverable category handled by the pipeline stages.
//
// Inputs:
//
//	provider - One of "ollama", "openai", "anthropic". Case-insensitive.
//
// Outputs:
//
//	Client - The configured backend
//	error - Non-nil for unknown providers or missing configuration
func NewClient(provider string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOllama:
		return NewOllamaClient()
	case ProviderOpenAI:
		return NewOpenAIClient()
	case ProviderAnthropic:
		return NewAnthropicClient()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (must be one of: %s, %s, %s)",
			provider, ProviderOllama, ProviderOpenAI, ProviderAnthropic)
	}
}

// NewClientFromEnv creates a Client from the LLM_PROVIDER environment
// variable, defaulting to the local Ollama backend.
func NewClientFromEnv() (Client, error) {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = ProviderOllama
		slog.Info("LLM_PROVIDER not set, defaulting", "provider", provider)
	}
	return NewClient(provider)
}
