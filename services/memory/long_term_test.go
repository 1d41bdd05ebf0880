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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

func newOfflineStore(t *testing.T) *LongTermMemory {
	t.Helper()
	// The client never dials at construction, so guard-path tests need
	// no backend.
	client, err := weaviate.NewClient(weaviate.Config{Host: "localhost:1", Scheme: "http"})
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewLongTermMemory(client)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestNewLongTermMemory_NilClient(t *testing.T) {
	if _, err := NewLongTermMemory(nil); err == nil {
		t.Error("expected error for nil client")
	}
}

func TestLongTermMemory_InputGuards(t *testing.T) {
	store := newOfflineStore(t)
	ctx := context.Background()

	t.Run("store empty key", func(t *testing.T) {
		if err := store.Store(ctx, "", "value", "test"); !errors.Is(err, ErrEmptyKey) {
			t.Errorf("expected ErrEmptyKey, got %v", err)
		}
	})

	t.Run("store empty value", func(t *testing.T) {
		if err := store.Store(ctx, "key", "", "test"); !errors.Is(err, ErrEmptyValue) {
			t.Errorf("expected ErrEmptyValue, got %v", err)
		}
	})

	t.Run("delete empty key", func(t *testing.T) {
		if err := store.Delete(ctx, ""); !errors.Is(err, ErrEmptyKey) {
			t.Errorf("expected ErrEmptyKey, got %v", err)
		}
	})
}

func TestChunkID_Deterministic(t *testing.T) {
	t.Run("same key and index always agree", func(t *testing.T) {
		if chunkID("interaction_1", 0) != chunkID("interaction_1", 0) {
			t.Error("chunk ID is not deterministic")
		}
	})

	t.Run("indexes of one key differ", func(t *testing.T) {
		if chunkID("interaction_1", 0) == chunkID("interaction_1", 1) {
			t.Error("chunk IDs collide across indexes")
		}
	})

	t.Run("keys differ", func(t *testing.T) {
		if chunkID("interaction_1", 0) == chunkID("interaction_2", 0) {
			t.Error("chunk IDs collide across keys")
		}
	})

	t.Run("key with separator does not collide with shifted index", func(t *testing.T) {
		// "a#1" chunk 0 and "a" chunk 10 must stay distinct.
		if chunkID("a#1", 0) == chunkID("a", 10) {
			t.Error("chunk IDs collide across key/index boundaries")
		}
	})
}

func TestParseRetrieved(t *testing.T) {
	t.Run("full response", func(t *testing.T) {
		response := &models.GraphQLResponse{
			Data: map[string]models.JSONObject{
				"Get": map[string]interface{}{
					AgentMemoryClassName: []interface{}{
						map[string]interface{}{
							"memoryKey": "interaction_1",
							"content":   "Revenue grew 12% in Q3.",
							"source":    "workflow_result",
							"_additional": map[string]interface{}{
								"certainty": 0.91,
								"distance":  0.09,
							},
						},
						map[string]interface{}{
							"memoryKey": "interaction_2",
							"content":   "Forecast for Q4.",
							"source":    "workflow_result",
						},
					},
				},
			},
		}

		hits := parseRetrieved(response)
		if len(hits) != 2 {
			t.Fatalf("hits = %d, want 2", len(hits))
		}
		if hits[0].Key != "interaction_1" || hits[0].Content != "Revenue grew 12% in Q3." {
			t.Errorf("hit 0 = %+v", hits[0])
		}
		if hits[0].Certainty != 0.91 || hits[0].Distance != 0.09 {
			t.Errorf("hit 0 scores = %+v", hits[0])
		}
		// Missing _additional leaves zero scores.
		if hits[1].Certainty != 0 || hits[1].Distance != 0 {
			t.Errorf("hit 1 scores = %+v", hits[1])
		}
	})

	t.Run("missing Get section", func(t *testing.T) {
		hits := parseRetrieved(&models.GraphQLResponse{Data: map[string]models.JSONObject{}})
		if len(hits) != 0 {
			t.Errorf("hits = %v", hits)
		}
	})

	t.Run("missing class", func(t *testing.T) {
		response := &models.GraphQLResponse{
			Data: map[string]models.JSONObject{
				"Get": map[string]interface{}{},
			},
		}
		if hits := parseRetrieved(response); len(hits) != 0 {
			t.Errorf("hits = %v", hits)
		}
	})

	t.Run("malformed objects skipped", func(t *testing.T) {
		response := &models.GraphQLResponse{
			Data: map[string]models.JSONObject{
				"Get": map[string]interface{}{
					AgentMemoryClassName: []interface{}{
						"not an object",
						map[string]interface{}{"memoryKey": "good", "content": "kept"},
					},
				},
			},
		}
		hits := parseRetrieved(response)
		if len(hits) != 1 || hits[0].Key != "good" {
			t.Errorf("hits = %+v", hits)
		}
	})
}

func TestMapHelpers(t *testing.T) {
	m := map[string]interface{}{
		"str":   "text",
		"num":   1.5,
		"f32":   float32(2.5),
		"int":   3,
		"wrong": []string{"not scalar"},
	}

	t.Run("getString", func(t *testing.T) {
		if got := getString(m, "str"); got != "text" {
			t.Errorf("got %q", got)
		}
		if got := getString(m, "num"); got != "" {
			t.Errorf("non-string should yield empty, got %q", got)
		}
		if got := getString(m, "absent"); got != "" {
			t.Errorf("absent key should yield empty, got %q", got)
		}
	})

	t.Run("getFloat64", func(t *testing.T) {
		if got := getFloat64(m, "num"); got != 1.5 {
			t.Errorf("got %v", got)
		}
		if got := getFloat64(m, "f32"); got != 2.5 {
			t.Errorf("float32 not widened, got %v", got)
		}
		if got := getFloat64(m, "int"); got != 3 {
			t.Errorf("int not widened, got %v", got)
		}
		if got := getFloat64(m, "wrong"); got != 0 {
			t.Errorf("non-numeric should yield zero, got %v", got)
		}
		if got := getFloat64(m, "absent"); got != 0 {
			t.Errorf("absent key should yield zero, got %v", got)
		}
	})
}

func TestLongTermMemory_RetrieveRoundTrip(t *testing.T) {
	// Serve a recorded Weaviate GraphQL response and drive Retrieve
	// end to end through the real client.
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/graphql") {
			http.NotFound(w, r)
			return
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding graphql request: %v", err)
		}
		gotQuery, _ = body["query"].(string)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					AgentMemoryClassName: []interface{}{
						map[string]interface{}{
							"memoryKey": "interaction_1",
							"content":   "the stored answer",
							"source":    "workflow_result",
							"_additional": map[string]interface{}{
								"certainty": 0.88,
								"distance":  0.12,
							},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	client, err := weaviate.NewClient(weaviate.Config{Host: u.Host, Scheme: u.Scheme})
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewLongTermMemory(client)
	if err != nil {
		t.Fatal(err)
	}

	hits, err := store.Retrieve(context.Background(), "stored answer", 0)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Key != "interaction_1" || hits[0].Content != "the stored answer" {
		t.Errorf("hit = %+v", hits[0])
	}
	if hits[0].Certainty != 0.88 || hits[0].Distance != 0.12 {
		t.Errorf("hit scores = %+v", hits[0])
	}

	// The query carries the search concepts and targets the memory
	// class.
	if !strings.Contains(gotQuery, "stored answer") {
		t.Errorf("query did not carry concepts: %q", gotQuery)
	}
	if !strings.Contains(gotQuery, AgentMemoryClassName) {
		t.Errorf("query did not target the memory class: %q", gotQuery)
	}
}
