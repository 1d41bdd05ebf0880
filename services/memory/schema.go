// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// AgentMemoryClassName is the Weaviate class name for long-term agent
// memories.
const AgentMemoryClassName = "AgentMemory"

// NewWeaviateClient builds a Weaviate client from the environment.
//
// Description:
//
//	Reads WEAVIATE_HOST (default "localhost:8080") and WEAVIATE_SCHEME
//	(default "http") and returns a configured client. Connectivity is
//	not verified here; the first call against the store surfaces any
//	connection problem.
//
// Outputs:
//
//	*weaviate.Client - The configured client
//	error - Non-nil if the client cannot be constructed
func NewWeaviateClient() (*weaviate.Client, error) {
	host := os.Getenv("WEAVIATE_HOST")
	if host == "" {
		host = "localhost:8080"
		slog.Info("WEAVIATE_HOST not set, using default", "host", host)
	}
	scheme := os.Getenv("WEAVIATE_SCHEME")
	if scheme == "" {
		scheme = "http"
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   host,
		Scheme: scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("creating weaviate client: %w", err)
	}
	return client, nil
}

// GetAgentMemorySchema returns the Weaviate class for agent memories.
//
// Description:
//
//	Only the content field is vectorized; everything else is metadata
//	for filtering and bookkeeping. Uses text2vec-transformers so
//	retrieval works without any external embedding API.
//
// Outputs:
//
//	*models.Class - The Weaviate class definition
func GetAgentMemorySchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	indexSearchable := new(bool)
	*indexSearchable = true

	return &models.Class{
		Class:       AgentMemoryClassName,
		Description: "Durable semantic memories recorded from agent runs",
		Vectorizer:  "text2vec-transformers",
		ModuleConfig: map[string]interface{}{
			"text2vec-transformers": map[string]interface{}{
				"vectorizeClassName": false,
			},
		},
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:            "memoryKey",
				DataType:        []string{"text"},
				Description:     "Caller-assigned identifier shared by all chunks of one memory",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
				ModuleConfig: map[string]interface{}{
					"text2vec-transformers": map[string]interface{}{
						"skip": true,
					},
				},
			},
			{
				Name:            "content",
				DataType:        []string{"text"},
				Description:     "The stored text, vectorized for semantic search",
				IndexSearchable: indexSearchable,
				Tokenization:    "word",
			},
			{
				Name:            "source",
				DataType:        []string{"text"},
				Description:     "Where this memory came from, e.g. workflow_result or manual",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
				ModuleConfig: map[string]interface{}{
					"text2vec-transformers": map[string]interface{}{
						"skip": true,
					},
				},
			},
			{
				Name:        "chunkIndex",
				DataType:    []string{"int"},
				Description: "Position of this chunk within the original text",
				ModuleConfig: map[string]interface{}{
					"text2vec-transformers": map[string]interface{}{
						"skip": true,
					},
				},
			},
			{
				Name:        "createdAt",
				DataType:    []string{"date"},
				Description: "When the memory was stored",
				ModuleConfig: map[string]interface{}{
					"text2vec-transformers": map[string]interface{}{
						"skip": true,
					},
				},
			},
		},
	}
}

// EnsureAgentMemorySchema creates the AgentMemory class if absent.
// Idempotent.
func EnsureAgentMemorySchema(ctx context.Context, client *weaviate.Client) error {
	_, err := client.Schema().ClassGetter().WithClassName(AgentMemoryClassName).Do(ctx)
	if err == nil {
		slog.Info("AgentMemory schema already exists")
		return nil
	}

	slog.Info("Creating AgentMemory schema")
	if err := client.Schema().ClassCreator().WithClass(GetAgentMemorySchema()).Do(ctx); err != nil {
		return fmt.Errorf("creating AgentMemory schema: %w", err)
	}

	slog.Info("AgentMemory schema created successfully")
	return nil
}

// DeleteAgentMemorySchema removes the AgentMemory class and every
// object in it. Irreversible.
func DeleteAgentMemorySchema(ctx context.Context, client *weaviate.Client) error {
	if err := client.Schema().ClassDeleter().WithClassName(AgentMemoryClassName).Do(ctx); err != nil {
		return fmt.Errorf("deleting AgentMemory schema: %w", err)
	}
	slog.Info("AgentMemory schema deleted")
	return nil
}
