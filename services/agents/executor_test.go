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
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianAgents/services/llm"
	"github.com/AleutianAI/AleutianAgents/services/tools"
	"github.com/AleutianAI/AleutianAgents/services/workflow"
)

// echoRegistry builds a registry with a single echo tool for loop tests.
func echoRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	echo := tools.NewFuncTool("echo", "Echoes its text argument", func(ctx context.Context, args map[string]any) (string, error) {
		return "echo: " + tools.StringArg(args, "text"), nil
	})
	if err := r.Register(echo); err != nil {
		t.Fatal(err)
	}
	return r
}

func planState(subtasks ...string) *workflow.State {
	state := workflow.NewState("test query")
	state.Plan = subtasks
	return state
}

func TestExecutor_FinalAnswerImmediately(t *testing.T) {
	mock := llm.NewMockClient().
		QueueResponse(`{"thought": "trivial", "final_answer": "first result"}`).
		QueueResponse(`{"thought": "trivial", "final_answer": "second result"}`)
	executor, err := NewExecutor(mock, echoRegistry(t), 0)
	if err != nil {
		t.Fatal(err)
	}

	state, err := executor.Execute(context.Background(), planState("task one", "task two"))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if state.ExecutionResults[0] != "first result" || state.ExecutionResults[1] != "second result" {
		t.Errorf("results = %v", state.ExecutionResults)
	}
	if got := state.LatestMessage().Content; got != "Completed 2 subtasks (2 successful, 0 errors)" {
		t.Errorf("trace = %q", got)
	}
}

func TestExecutor_ToolCallThenAnswer(t *testing.T) {
	mock := llm.NewMockClient().WithResponseFunc(func(prompt string) (string, error) {
		if strings.Contains(prompt, "Observation: echo: hello") {
			return `{"thought": "got it", "final_answer": "done with hello"}`, nil
		}
		return `{"thought": "need the tool", "action": "echo", "action_input": {"text": "hello"}}`, nil
	})
	executor, _ := NewExecutor(mock, echoRegistry(t), 0)

	state, err := executor.Execute(context.Background(), planState("use the echo tool"))
	if err != nil {
		t.Fatal(err)
	}
	if state.ExecutionResults[0] != "done with hello" {
		t.Errorf("result = %q", state.ExecutionResults[0])
	}
	if mock.CallCount() != 2 {
		t.Errorf("call count = %d, want 2", mock.CallCount())
	}
}

func TestExecutor_RecoverableObservations(t *testing.T) {
	t.Run("malformed decision", func(t *testing.T) {
		mock := llm.NewMockClient().
			QueueResponse("not json at all").
			QueueResponse(`{"final_answer": "recovered"}`)
		executor, _ := NewExecutor(mock, echoRegistry(t), 0)

		state, err := executor.Execute(context.Background(), planState("task"))
		if err != nil {
			t.Fatal(err)
		}
		if state.ExecutionResults[0] != "recovered" {
			t.Errorf("result = %q", state.ExecutionResults[0])
		}
		prompts := mock.Prompts()
		if len(prompts) != 2 || !strings.Contains(prompts[1], "could not be parsed") {
			t.Error("parse failure was not fed back as an observation")
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		mock := llm.NewMockClient().
			QueueResponse(`{"thought": "try this", "action": "does_not_exist", "action_input": {}}`).
			QueueResponse(`{"final_answer": "recovered"}`)
		executor, _ := NewExecutor(mock, echoRegistry(t), 0)

		state, err := executor.Execute(context.Background(), planState("task"))
		if err != nil {
			t.Fatal(err)
		}
		if state.ExecutionResults[0] != "recovered" {
			t.Errorf("result = %q", state.ExecutionResults[0])
		}
		prompts := mock.Prompts()
		if !strings.Contains(prompts[1], `"does_not_exist" does not exist`) ||
			!strings.Contains(prompts[1], "echo") {
			t.Errorf("miss observation did not name available tools: %q", prompts[1])
		}
	})

	t.Run("tool failure", func(t *testing.T) {
		r := tools.NewRegistry()
		failing := tools.NewFuncTool("flaky", "Always fails", func(ctx context.Context, args map[string]any) (string, error) {
			return "", fmt.Errorf("upstream unavailable")
		})
		if err := r.Register(failing); err != nil {
			t.Fatal(err)
		}

		mock := llm.NewMockClient().
			QueueResponse(`{"thought": "try", "action": "flaky", "action_input": {}}`).
			QueueResponse(`{"final_answer": "worked around it"}`)
		executor, _ := NewExecutor(mock, r, 0)

		state, err := executor.Execute(context.Background(), planState("task"))
		if err != nil {
			t.Fatal(err)
		}
		if state.ExecutionResults[0] != "worked around it" {
			t.Errorf("result = %q", state.ExecutionResults[0])
		}
		if !strings.Contains(mock.Prompts()[1], "tool flaky failed") {
			t.Error("tool failure was not fed back as an observation")
		}
	})
}

func TestExecutor_TransportErrorMarksSubtask(t *testing.T) {
	mock := llm.NewMockClient().WithError(errors.New("connection reset"))
	executor, _ := NewExecutor(mock, echoRegistry(t), 0)

	state, err := executor.Execute(context.Background(), planState("task"))
	if err != nil {
		t.Fatalf("stage must absorb subtask failures, got %v", err)
	}
	if !strings.HasPrefix(state.ExecutionResults[0], ErrorMarker) {
		t.Errorf("result = %q, want %s prefix", state.ExecutionResults[0], ErrorMarker)
	}
	if got := state.LatestMessage().Content; got != "Completed 1 subtasks (0 successful, 1 errors)" {
		t.Errorf("trace = %q", got)
	}
}

func TestExecutor_IterationCap(t *testing.T) {
	// Model never settles on a final answer.
	mock := llm.NewMockClient().WithDefaultResponse(
		`{"thought": "still thinking", "action": "echo", "action_input": {"text": "again"}}`)
	executor, _ := NewExecutor(mock, echoRegistry(t), 3)

	state, err := executor.Execute(context.Background(), planState("task"))
	if err != nil {
		t.Fatal(err)
	}
	if state.ExecutionResults[0] != ErrorMarker+"no final answer after 3 iterations" {
		t.Errorf("result = %q", state.ExecutionResults[0])
	}
	if mock.CallCount() != 3 {
		t.Errorf("call count = %d, want 3", mock.CallCount())
	}
}

func TestExecutor_ScratchpadIsPerSubtask(t *testing.T) {
	// The second subtask's first prompt must not carry the first
	// subtask's observations.
	var prompts []string
	mock := llm.NewMockClient().WithResponseFunc(func(prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if strings.Contains(prompt, "Observation:") {
			return `{"final_answer": "after tool"}`, nil
		}
		if strings.Contains(prompt, "subtask B") {
			return `{"final_answer": "b done"}`, nil
		}
		return `{"thought": "x", "action": "echo", "action_input": {"text": "trace-me"}}`, nil
	})
	executor, _ := NewExecutor(mock, echoRegistry(t), 0)

	if _, err := executor.Execute(context.Background(), planState("subtask A", "subtask B")); err != nil {
		t.Fatal(err)
	}
	last := prompts[len(prompts)-1]
	if !strings.Contains(last, "subtask B") {
		t.Fatalf("unexpected final prompt: %q", last)
	}
	if strings.Contains(last, "trace-me") {
		t.Error("scratchpad leaked across subtasks")
	}
}

func TestExecutor_EmptyPlan(t *testing.T) {
	mock := llm.NewMockClient()
	executor, _ := NewExecutor(mock, echoRegistry(t), 0)

	state, err := executor.Execute(context.Background(), planState())
	if err != nil {
		t.Fatal(err)
	}
	if len(state.ExecutionResults) != 0 {
		t.Errorf("results = %v", state.ExecutionResults)
	}
	if got := state.LatestMessage().Content; got != "Completed 0 subtasks (0 successful, 0 errors)" {
		t.Errorf("trace = %q", got)
	}
	if mock.CallCount() != 0 {
		t.Error("empty plan must not call the model")
	}
}
