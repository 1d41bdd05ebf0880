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
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianAgents/services/llm"
	"github.com/AleutianAI/AleutianAgents/services/tools"
	"github.com/AleutianAI/AleutianAgents/services/workflow"
)

// ErrorMarker prefixes a failed subtask's recorded result. The
// validator and trace reporting key off this exact prefix.
const ErrorMarker = "ERROR: "

// DefaultMaxToolIterations bounds the think/act/observe loop per
// subtask. A system-level setting, not a per-call knob.
const DefaultMaxToolIterations = 10

// Executor runs every planned subtask through the tool-invocation
// loop.
//
// Description:
//
//	Second stage of the pipeline. Subtasks run strictly sequentially
//	in plan order. A failing subtask records an ERROR-marked result
//	and never aborts the stage; the validator deals with the damage.
type Executor struct {
	llm           llm.Client
	registry      *tools.Registry
	maxIterations int
}

// NewExecutor creates the execution stage. maxIterations bounds the
// per-subtask loop; non-positive values fall back to the default.
func NewExecutor(client llm.Client, registry *tools.Registry, maxIterations int) (*Executor, error) {
	if client == nil {
		return nil, errors.New("llm client must not be nil")
	}
	if registry == nil {
		return nil, errors.New("tool registry must not be nil")
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxToolIterations
	}
	return &Executor{llm: client, registry: registry, maxIterations: maxIterations}, nil
}

// Execute runs the plan and records per-subtask results.
func (e *Executor) Execute(ctx context.Context, state *workflow.State) (*workflow.State, error) {
	ctx, span := tracer.Start(ctx, "executor.execute")
	defer span.End()

	if state.ExecutionResults == nil {
		state.ExecutionResults = make(map[int]string)
	}

	for i, subtask := range state.Plan {
		result, err := e.runSubtask(ctx, subtask)
		if err != nil {
			slog.Warn("Subtask failed", "index", i, "error", err)
			state.ExecutionResults[i] = ErrorMarker + err.Error()
			continue
		}
		state.ExecutionResults[i] = result
	}

	total := len(state.ExecutionResults)
	successful := 0
	for _, r := range state.ExecutionResults {
		if !strings.HasPrefix(r, ErrorMarker) {
			successful++
		}
	}

	state.Append(workflow.RoleExecutor, fmt.Sprintf(
		"Completed %d subtasks (%d successful, %d errors)",
		total, successful, total-successful))

	span.SetAttributes(
		attribute.Int("execute.total", total),
		attribute.Int("execute.successful", successful),
	)
	slog.Info("Execution complete", "total", total, "successful", successful, "errors", total-successful)

	return state, nil
}

// runSubtask drives the bounded think/act/observe loop for one
// subtask. The scratchpad is local to the subtask and never shared.
func (e *Executor) runSubtask(ctx context.Context, subtask string) (string, error) {
	ctx, span := tracer.Start(ctx, "executor.subtask")
	defer span.End()

	catalogue := e.registry.Definitions()
	var scratchpad strings.Builder

	for iteration := 0; iteration < e.maxIterations; iteration++ {
		prompt := buildReactPrompt(subtask, catalogue, scratchpad.String())

		response, err := e.llm.Generate(ctx, prompt, llm.GenerationParams{})
		if err != nil {
			// A transport-level model failure is not correctable by
			// feeding it back into the scratchpad.
			return "", fmt.Errorf("reasoning call failed: %w", err)
		}

		decision, err := decodeReactDecision(response)
		if err != nil {
			// Malformed tool-call syntax is recoverable: show the
			// model what went wrong and let it retry.
			fmt.Fprintf(&scratchpad, "Observation: your last response could not be parsed (%v). Respond with exactly one JSON object.\n", err)
			continue
		}

		if decision.FinalAnswer != "" {
			span.SetAttributes(attribute.Int("subtask.iterations", iteration+1))
			return decision.FinalAnswer, nil
		}

		if decision.Thought != "" {
			fmt.Fprintf(&scratchpad, "Thought: %s\n", decision.Thought)
		}
		fmt.Fprintf(&scratchpad, "Action: %s\n", decision.Action)

		tool, err := e.registry.Get(decision.Action)
		if err != nil {
			fmt.Fprintf(&scratchpad, "Observation: tool %q does not exist. Available tools: %s\n",
				decision.Action, strings.Join(e.registry.Names(), ", "))
			continue
		}

		observation, err := tool.Invoke(ctx, decision.ActionInput)
		if err != nil {
			fmt.Fprintf(&scratchpad, "Observation: tool %s failed: %v\n", decision.Action, err)
			continue
		}
		fmt.Fprintf(&scratchpad, "Observation: %s\n", observation)
	}

	return "", fmt.Errorf("no final answer after %d iterations", e.maxIterations)
}
