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
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, true},
		{"leading prose", `Sure! Here you go: {"a": 1}`, `{"a": 1}`, true},
		{"trailing prose", `{"a": 1} hope that helps`, `{"a": 1}`, true},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{"nested objects", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`, true},
		{"braces inside strings", `{"a": "keep } this"}`, `{"a": "keep } this"}`, true},
		{"escaped quotes", `{"a": "say \"hi\""}`, `{"a": "say \"hi\""}`, true},
		{"no object", "just text", "", false},
		{"unbalanced", `{"a": 1`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSON(tc.in)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				if !errors.Is(err, ErrNoJSON) {
					t.Fatalf("expected ErrNoJSON, got %v", err)
				}
				return
			}
			if got != tc.want {
				t.Errorf("extractJSON = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeTaskPlan(t *testing.T) {
	plan, err := decodeTaskPlan(`Here is the plan:
{"subtasks": ["Load data", "Summarize"], "estimated_complexity": "low", "required_tools": ["analyze_data"]}`)
	if err != nil {
		t.Fatalf("decodeTaskPlan failed: %v", err)
	}
	if len(plan.Subtasks) != 2 || plan.Subtasks[0] != "Load data" {
		t.Errorf("unexpected subtasks: %v", plan.Subtasks)
	}
	if plan.EstimatedComplexity != "low" {
		t.Errorf("complexity = %q", plan.EstimatedComplexity)
	}
	if len(plan.RequiredTools) != 1 || plan.RequiredTools[0] != "analyze_data" {
		t.Errorf("required tools = %v", plan.RequiredTools)
	}
}

func TestDecodeTaskPlan_Invalid(t *testing.T) {
	cases := map[string]string{
		"no subtasks":    `{"subtasks": [], "estimated_complexity": "low"}`,
		"blank subtask":  `{"subtasks": ["ok", "  "]}`,
		"not json":       `the plan is to do things`,
		"malformed json": `{"subtasks": "not-a-list"}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeTaskPlan(in); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestDecodeTaskPlan_DefaultComplexity(t *testing.T) {
	plan, err := decodeTaskPlan(`{"subtasks": ["a"]}`)
	if err != nil {
		t.Fatal(err)
	}
	if plan.EstimatedComplexity != "medium" {
		t.Errorf("default complexity = %q, want medium", plan.EstimatedComplexity)
	}
}

func TestDecodeValidationResult(t *testing.T) {
	result, err := decodeValidationResult(`{"is_valid": false, "confidence": 0.7, "issues": ["missing citation"], "suggestions": ["add a source"]}`)
	if err != nil {
		t.Fatalf("decodeValidationResult failed: %v", err)
	}
	if result.IsValid || result.Confidence != 0.7 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(result.Issues) != 1 || result.Issues[0] != "missing citation" {
		t.Errorf("issues = %v", result.Issues)
	}
}

func TestDecodeValidationResult_Consistency(t *testing.T) {
	// Valid results must not carry issues.
	if _, err := decodeValidationResult(`{"is_valid": true, "confidence": 0.9, "issues": ["x"]}`); err == nil {
		t.Error("expected error for valid result with issues")
	}

	// Invalid results with no issues get a synthetic one.
	result, err := decodeValidationResult(`{"is_valid": false, "confidence": 0.5, "issues": []}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Issues) != 1 {
		t.Errorf("expected synthetic issue, got %v", result.Issues)
	}
}

func TestDecodeValidationResult_ConfidenceRange(t *testing.T) {
	for _, in := range []string{
		`{"is_valid": true, "confidence": 1.5, "issues": []}`,
		`{"is_valid": true, "confidence": -0.1, "issues": []}`,
	} {
		if _, err := decodeValidationResult(in); err == nil {
			t.Errorf("expected range error for %s", in)
		}
	}
}

func TestDecodeReactDecision(t *testing.T) {
	t.Run("tool call", func(t *testing.T) {
		d, err := decodeReactDecision(`{"thought": "need data", "action": "fetch_external_data", "action_input": {"source": "db"}}`)
		if err != nil {
			t.Fatal(err)
		}
		if d.Action != "fetch_external_data" || d.FinalAnswer != "" {
			t.Errorf("unexpected decision: %+v", d)
		}
		if d.ActionInput["source"] != "db" {
			t.Errorf("action input = %v", d.ActionInput)
		}
	})

	t.Run("final answer", func(t *testing.T) {
		d, err := decodeReactDecision(`{"thought": "done", "final_answer": "the result"}`)
		if err != nil {
			t.Fatal(err)
		}
		if d.FinalAnswer != "the result" || d.Action != "" {
			t.Errorf("unexpected decision: %+v", d)
		}
	})

	t.Run("neither", func(t *testing.T) {
		if _, err := decodeReactDecision(`{"thought": "hmm"}`); err == nil {
			t.Error("expected error for decision with no action and no answer")
		}
	})
}
