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
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianAgents/services/agents"
)

// SetupRoutes registers every HTTP endpoint against the given system.
func SetupRoutes(router *gin.Engine, system *agents.System) {
	router.GET("/health", HandleHealth(system))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		agentGroup := v1.Group("/agents")
		{
			agentGroup.POST("/query", HandleQuery(system))
			agentGroup.GET("/tools", HandleListTools(system))

			memoryGroup := agentGroup.Group("/memory")
			{
				memoryGroup.GET("/recent", HandleRecentMemory(system))
				memoryGroup.DELETE("", HandleClearMemory(system))
				memoryGroup.POST("/search", HandleMemorySearch(system))
			}
		}
	}
}
