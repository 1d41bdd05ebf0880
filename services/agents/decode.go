// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agents

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a model response contains no JSON object.
var ErrNoJSON = errors.New("no JSON object found in response")

// extractJSON pulls the first balanced JSON object out of free-form
// model output. Models wrap JSON in prose and markdown fences often
// enough that decoding the raw response directly is a losing game.
func extractJSON(text string) (string, error) {
	text = stripCodeFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced braces", ErrNoJSON)
}

// stripCodeFences removes markdown code fences around a response.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// Drop the opening fence line (possibly "```json") and the closing
	// fence if present.
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// decodeTaskPlan parses and validates a planner response.
func decodeTaskPlan(response string) (*TaskPlan, error) {
	raw, err := extractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("extracting plan: %w", err)
	}

	var plan TaskPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	if len(plan.Subtasks) == 0 {
		return nil, errors.New("plan contains no subtasks")
	}
	for i, s := range plan.Subtasks {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("plan subtask %d is empty", i)
		}
	}
	if plan.EstimatedComplexity == "" {
		plan.EstimatedComplexity = "medium"
	}
	return &plan, nil
}

// decodeValidationResult parses and validates a validator response.
func decodeValidationResult(response string) (*ValidationResult, error) {
	raw, err := extractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("extracting validation result: %w", err)
	}

	var result ValidationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decoding validation result: %w", err)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("confidence %.2f outside [0,1]", result.Confidence)
	}
	// Validity and issues must agree: a valid result cannot carry
	// issues, and an invalid one must name at least one.
	if result.IsValid && len(result.Issues) > 0 {
		return nil, errors.New("result marked valid but lists issues")
	}
	if !result.IsValid && len(result.Issues) == 0 {
		result.Issues = []string{"Output did not meet quality standards"}
	}
	return &result, nil
}

// reactDecision is one parsed step of the tool-invocation loop: either
// a final answer or a tool call, never both.
type reactDecision struct {
	Thought     string         `json:"thought"`
	Action      string         `json:"action"`
	ActionInput map[string]any `json:"action_input"`
	FinalAnswer string         `json:"final_answer"`
}

// decodeReactDecision parses one loop iteration's oracle output.
func decodeReactDecision(response string) (*reactDecision, error) {
	raw, err := extractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("extracting decision: %w", err)
	}

	var decision reactDecision
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		return nil, fmt.Errorf("decoding decision: %w", err)
	}
	if decision.FinalAnswer == "" && decision.Action == "" {
		return nil, errors.New("decision names neither an action nor a final answer")
	}
	return &decision, nil
}
