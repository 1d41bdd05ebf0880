// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides the reasoning-oracle client interface for the
// agent pipeline and its provider backends. Implementations are
// injected at construction; the pipeline never constructs one itself.
//
// Thread Safety:
//
//	All clients in this package are safe for concurrent use.
package llm

import "context"

// GenerationParams tunes a single generation request.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// Client defines the standard interface for any LLM backend.
//
// Generate is a blocking call; it may fail with a transport or decode
// error and every caller must treat it as fallible.
type Client interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)

	// Name returns the provider name (e.g. "ollama", "openai").
	Name() string
}
