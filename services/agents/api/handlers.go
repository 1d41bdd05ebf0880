// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api exposes the agent system over HTTP. Every handler takes
// the system facade by injection; there is no package-level system
// reference.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianAgents/services/agents"
	"github.com/AleutianAI/AleutianAgents/services/memory"
)

var tracer = otel.Tracer("aleutian.agents.api")

// QueryRequest is the body of POST /v1/agents/query.
type QueryRequest struct {
	Query   string         `json:"query" binding:"required"`
	Context map[string]any `json:"context"`
}

// SearchRequest is the body of POST /v1/agents/memory/search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	K     int    `json:"k"`
}

// HandleQuery runs a query through the full pipeline.
func HandleQuery(system *agents.System) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "HandleQuery")
		defer span.End()

		var req QueryRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		result, err := system.Run(ctx, req.Query)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Query processing failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// HandleHealth reports system status and component inventory.
func HandleHealth(system *agents.System) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"agents": []string{"planner", "executor", "validator", "corrector"},
			"memory": gin.H{
				"short_term": system.Memory().ShortTerm().Len(),
				"long_term":  system.Memory().HasLongTerm(),
			},
			"llm_provider":    system.Provider(),
			"tools_available": system.Registry().Count(),
		})
	}
}

// HandleRecentMemory returns the newest short-term turns. The optional
// n query parameter limits the count; default is the full window.
func HandleRecentMemory(system *agents.System) gin.HandlerFunc {
	return func(c *gin.Context) {
		n := 0
		if raw := c.Query("n"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a non-negative integer"})
				return
			}
			n = parsed
		}

		history := system.Memory().ShortTerm().Recent(n)
		c.JSON(http.StatusOK, gin.H{
			"history": history,
			"count":   len(history),
		})
	}
}

// HandleClearMemory wipes the short-term turn log.
func HandleClearMemory(system *agents.System) gin.HandlerFunc {
	return func(c *gin.Context) {
		system.Memory().ShortTerm().Clear()
		slog.Info("Short-term memory cleared")
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Short-term memory cleared",
		})
	}
}

// HandleMemorySearch runs a semantic search over long-term memory.
func HandleMemorySearch(system *agents.System) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "HandleMemorySearch")
		defer span.End()

		var req SearchRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.K <= 0 {
			req.K = system.Config().RetrievalK
		}

		hits, err := system.Memory().Recall(ctx, req.Query, req.K)
		if err != nil {
			if errors.Is(err, memory.ErrNoLongTermStore) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "long-term memory not configured"})
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Memory search failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"results": hits,
			"count":   len(hits),
		})
	}
}

// HandleListTools returns the registered tool catalogue.
func HandleListTools(system *agents.System) gin.HandlerFunc {
	return func(c *gin.Context) {
		defs := system.Registry().Definitions()
		c.JSON(http.StatusOK, gin.H{
			"tools": defs,
			"count": len(defs),
		})
	}
}
