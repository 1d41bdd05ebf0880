// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianAgents/services/agents"
	"github.com/AleutianAI/AleutianAgents/services/llm"
	"github.com/AleutianAI/AleutianAgents/services/memory"
	"github.com/AleutianAI/AleutianAgents/services/tools"
)

// stubStore is an in-memory SemanticStore for handler tests.
type stubStore struct {
	values map[string]string
	hits   []memory.RetrievedMemory
}

func newStubStore() *stubStore {
	return &stubStore{values: make(map[string]string)}
}

func (s *stubStore) Store(ctx context.Context, key, value, source string) error {
	s.values[key] = value
	return nil
}

func (s *stubStore) Retrieve(ctx context.Context, query string, k int) ([]memory.RetrievedMemory, error) {
	if k < len(s.hits) {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s *stubStore) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}

// newTestSystem builds a system around a scripted model, optionally
// with a long-term store.
func newTestSystem(t *testing.T, mock *llm.MockClient, longTerm memory.SemanticStore) *agents.System {
	t.Helper()
	mgr, err := memory.NewManager(memory.NewShortTermMemory(10), longTerm)
	require.NoError(t, err)

	system, err := agents.NewSystemWithComponents(agents.DefaultConfig(), mock, tools.NewDefaultRegistry(), mgr)
	require.NoError(t, err)
	return system
}

// passingMock scripts a one-subtask run that validates cleanly.
func passingMock() *llm.MockClient {
	return llm.NewMockClient().
		QueueResponse(`{"subtasks": ["Answer the question"], "required_tools": []}`).
		QueueResponse(`{"thought": "direct", "final_answer": "the pipeline answer"}`).
		QueueResponse(`{"is_valid": true, "confidence": 0.9, "issues": []}`)
}

func TestHandleQuery_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	system := newTestSystem(t, passingMock(), nil)

	router := gin.New()
	router.POST("/v1/agents/query", HandleQuery(system))

	body, _ := json.Marshal(QueryRequest{Query: "What happened in Q3?"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/agents/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Output string   `json:"output"`
		Plan   []string `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "the pipeline answer", response.Output)
	assert.Len(t, response.Plan, 1)
}

func TestHandleQuery_InvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	system := newTestSystem(t, llm.NewMockClient(), nil)

	router := gin.New()
	router.POST("/v1/agents/query", HandleQuery(system))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/agents/query", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQuery_MissingQueryField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	system := newTestSystem(t, llm.NewMockClient(), nil)

	router := gin.New()
	router.POST("/v1/agents/query", HandleQuery(system))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/agents/query", bytes.NewReader([]byte(`{"context": {}}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQuery_PipelineFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// Planner failure is the one fatal path.
	mock := llm.NewMockClient().QueueResponse("cannot make a plan from that")
	system := newTestSystem(t, mock, nil)

	router := gin.New()
	router.POST("/v1/agents/query", HandleQuery(system))

	body, _ := json.Marshal(QueryRequest{Query: "do something"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/agents/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Contains(t, response["error"], "planning failed")
}

func TestHandleHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	system := newTestSystem(t, llm.NewMockClient(), newStubStore())

	router := gin.New()
	router.GET("/health", HandleHealth(system))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "mock", response["llm_provider"])
	assert.Len(t, response["agents"], 4)
	assert.Equal(t, float64(4), response["tools_available"])

	mem := response["memory"].(map[string]interface{})
	assert.Equal(t, float64(0), mem["short_term"])
	assert.Equal(t, true, mem["long_term"])
}

func TestHandleRecentMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	system := newTestSystem(t, llm.NewMockClient(), nil)
	system.Memory().ShortTerm().Add("user", "first")
	system.Memory().ShortTerm().Add("assistant", "second")
	system.Memory().ShortTerm().Add("user", "third")

	router := gin.New()
	router.GET("/v1/agents/memory/recent", HandleRecentMemory(system))

	t.Run("default returns all", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/v1/agents/memory/recent", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response struct {
			History []memory.Turn `json:"history"`
			Count   int           `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 3, response.Count)
	})

	t.Run("n limits to newest", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/v1/agents/memory/recent?n=2", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response struct {
			History []memory.Turn `json:"history"`
			Count   int           `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, 2, response.Count)
		assert.Equal(t, "second", response.History[0].Content)
		assert.Equal(t, "third", response.History[1].Content)
	})

	t.Run("bad n rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/v1/agents/memory/recent?n=lots", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleClearMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	system := newTestSystem(t, llm.NewMockClient(), nil)
	system.Memory().ShortTerm().Add("user", "to be forgotten")

	router := gin.New()
	router.DELETE("/v1/agents/memory", HandleClearMemory(system))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/v1/agents/memory", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, system.Memory().ShortTerm().Len())
}

func TestHandleMemorySearch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns hits", func(t *testing.T) {
		store := newStubStore()
		store.hits = []memory.RetrievedMemory{
			{Key: "interaction_1", Content: "previous answer", Certainty: 0.88},
		}
		system := newTestSystem(t, llm.NewMockClient(), store)

		router := gin.New()
		router.POST("/v1/agents/memory/search", HandleMemorySearch(system))

		body, _ := json.Marshal(SearchRequest{Query: "previous", K: 5})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/v1/agents/memory/search", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response struct {
			Results []memory.RetrievedMemory `json:"results"`
			Count   int                      `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "previous answer", response.Results[0].Content)
	})

	t.Run("unavailable without long-term tier", func(t *testing.T) {
		system := newTestSystem(t, llm.NewMockClient(), nil)

		router := gin.New()
		router.POST("/v1/agents/memory/search", HandleMemorySearch(system))

		body, _ := json.Marshal(SearchRequest{Query: "anything"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/v1/agents/memory/search", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("missing query rejected", func(t *testing.T) {
		system := newTestSystem(t, llm.NewMockClient(), newStubStore())

		router := gin.New()
		router.POST("/v1/agents/memory/search", HandleMemorySearch(system))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/v1/agents/memory/search", bytes.NewReader([]byte(`{"k": 3}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleListTools(t *testing.T) {
	gin.SetMode(gin.TestMode)
	system := newTestSystem(t, llm.NewMockClient(), nil)

	router := gin.New()
	router.GET("/v1/agents/tools", HandleListTools(system))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/agents/tools", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Tools []tools.Definition `json:"tools"`
		Count int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 4, response.Count)
	names := make([]string, 0, len(response.Tools))
	for _, d := range response.Tools {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "analyze_data")
	assert.Contains(t, names, "validate_output")
}

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	system := newTestSystem(t, passingMock(), nil)

	router := gin.New()
	SetupRoutes(router, system)

	t.Run("health registered", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics registered", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/metrics", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("query registered", func(t *testing.T) {
		body, _ := json.Marshal(QueryRequest{Query: "route check"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/v1/agents/query", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
