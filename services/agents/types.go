// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package agents implements the plan, execute, validate, and correct
// stages of the workflow, plus the facade that wires them into a
// compiled pipeline with both memory tiers.
package agents

import (
	"github.com/AleutianAI/AleutianAgents/services/workflow"
)

// TaskPlan is the planner's structured output.
type TaskPlan struct {
	// Subtasks are the ordered steps to execute.
	Subtasks []string `json:"subtasks"`

	// Dependencies maps a subtask index to the indices it depends on.
	// Recorded for traceability only; execution is always linear in
	// plan order.
	Dependencies map[string][]int `json:"dependencies,omitempty"`

	// EstimatedComplexity is low, medium, or high.
	EstimatedComplexity string `json:"estimated_complexity"`

	// RequiredTools names the tools the plan expects to use.
	RequiredTools []string `json:"required_tools"`
}

// ValidationResult is the validator's structured output.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Confidence  float64  `json:"confidence"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// RunResult is what a completed run hands back to callers.
type RunResult struct {
	Output   string             `json:"output"`
	Plan     []string           `json:"plan"`
	Trace    []workflow.Message `json:"execution_trace"`
	Metadata map[string]any     `json:"metadata"`
}
