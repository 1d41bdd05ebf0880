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
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// ErrEmptyKey is returned when a store or delete names no key.
var ErrEmptyKey = errors.New("memory key must not be empty")

// ErrEmptyValue is returned when a store carries no content.
var ErrEmptyValue = errors.New("memory value must not be empty")

// memoryNamespace seeds deterministic chunk IDs so that storing under
// the same key always maps to the same Weaviate object IDs.
var memoryNamespace = uuid.MustParse("7a9c1c2e-4f1d-4a8e-9b3f-2d6e8c5a0b41")

const (
	defaultChunkSize    = 1500
	defaultChunkOverlap = 150
)

// RetrievedMemory is one semantic search hit.
type RetrievedMemory struct {
	Key       string  `json:"key"`
	Content   string  `json:"content"`
	Source    string  `json:"source"`
	Certainty float64 `json:"certainty"`
	Distance  float64 `json:"distance"`
}

// LongTermMemory.
//
// Description:
//
//	A key-addressed semantic store over Weaviate. Store splits long
//	values into overlapping chunks so retrieval stays precise on large
//	documents; all chunks share the caller's key, so Delete removes a
//	memory in one shot regardless of chunk count.
//
// Thread Safety:
//
//	Safe for concurrent use. Store on the same key from two goroutines
//	races on the delete-then-create sequence; callers needing that
//	must serialize externally.
type LongTermMemory struct {
	client   *weaviate.Client
	splitter textsplitter.RecursiveCharacter
}

// NewLongTermMemory creates a long-term store over the given client.
func NewLongTermMemory(client *weaviate.Client) (*LongTermMemory, error) {
	if client == nil {
		return nil, errors.New("client must not be nil")
	}
	return &LongTermMemory{
		client: client,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(defaultChunkSize),
			textsplitter.WithChunkOverlap(defaultChunkOverlap),
		),
	}, nil
}

// Store persists value under key, replacing any previous content for
// that key.
//
// Description:
//
//	The value is split into overlapping chunks and each chunk is
//	written as its own vectorized object. Chunk object IDs are derived
//	deterministically from the key, and any existing objects for the
//	key are removed first, so Store is an upsert.
//
// Inputs:
//
//	ctx - Context for cancellation
//	key - Caller-assigned identifier. Must not be empty.
//	value - Text to store. Must not be empty.
//	source - Optional origin tag, e.g. "workflow_result".
//
// Outputs:
//
//	error - Non-nil if validation, chunking, or storage fails
func (l *LongTermMemory) Store(ctx context.Context, key, value, source string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if value == "" {
		return ErrEmptyValue
	}

	chunks, err := l.splitter.SplitText(value)
	if err != nil {
		return fmt.Errorf("chunking memory %s: %w", key, err)
	}
	if len(chunks) == 0 {
		chunks = []string{value}
	}

	// Replace any previous generation of this key.
	if err := l.Delete(ctx, key); err != nil {
		return fmt.Errorf("replacing memory %s: %w", key, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, chunk := range chunks {
		_, err := l.client.Data().Creator().
			WithClassName(AgentMemoryClassName).
			WithID(chunkID(key, i).String()).
			WithProperties(map[string]interface{}{
				"memoryKey":  key,
				"content":    chunk,
				"source":     source,
				"chunkIndex": i,
				"createdAt":  now,
			}).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("storing memory %s chunk %d: %w", key, i, err)
		}
	}

	slog.Info("Stored long-term memory", "key", key, "chunks", len(chunks), "source", source)
	return nil
}

// Retrieve returns the k memories most semantically similar to query,
// most similar first.
func (l *LongTermMemory) Retrieve(ctx context.Context, query string, k int) ([]RetrievedMemory, error) {
	if k <= 0 {
		k = 3
	}

	nearText := l.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	result, err := l.client.GraphQL().Get().
		WithClassName(AgentMemoryClassName).
		WithFields(
			graphql.Field{Name: "memoryKey"},
			graphql.Field{Name: "content"},
			graphql.Field{Name: "source"},
			graphql.Field{Name: "_additional { certainty distance }"},
		).
		WithNearText(nearText).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieving memories: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("query error: %s", result.Errors[0].Message)
	}

	return parseRetrieved(result), nil
}

// Delete removes every chunk stored under key. Deleting an absent key
// is a no-op.
func (l *LongTermMemory) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	where := filters.Where().
		WithPath([]string{"memoryKey"}).
		WithOperator(filters.Equal).
		WithValueString(key)

	_, err := l.client.Batch().ObjectsBatchDeleter().
		WithClassName(AgentMemoryClassName).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("deleting memory %s: %w", key, err)
	}
	return nil
}

// chunkID derives the Weaviate object ID for one chunk of a key. The
// derivation is deterministic so a later Store of the same key maps to
// the same object IDs.
func chunkID(key string, index int) uuid.UUID {
	return uuid.NewSHA1(memoryNamespace, []byte(key+"#"+strconv.Itoa(index)))
}

// parseRetrieved converts a GraphQL response into retrieval hits.
func parseRetrieved(result *models.GraphQLResponse) []RetrievedMemory {
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return []RetrievedMemory{}
	}

	objects, ok := data[AgentMemoryClassName].([]interface{})
	if !ok {
		return []RetrievedMemory{}
	}

	hits := make([]RetrievedMemory, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]interface{})
		if !ok {
			continue // skip malformed objects
		}
		hit := RetrievedMemory{
			Key:     getString(m, "memoryKey"),
			Content: getString(m, "content"),
			Source:  getString(m, "source"),
		}
		if additional, ok := m["_additional"].(map[string]interface{}); ok {
			hit.Certainty = getFloat64(additional, "certainty")
			hit.Distance = getFloat64(additional, "distance")
		}
		hits = append(hits, hit)
	}
	return hits
}

// getString safely extracts a string from a map.
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getFloat64 safely extracts a float64 from a map.
func getFloat64(m map[string]interface{}, key string) float64 {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		}
	}
	return 0
}
