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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianAgents/services/llm"
	"github.com/AleutianAI/AleutianAgents/services/workflow"
)

var tracer = otel.Tracer("aleutian.agents.pipeline")

// ErrPlanningFailed wraps any planning-stage failure. Planning is the
// one stage with no local recovery: without a plan nothing downstream
// can run, so the whole run fails.
var ErrPlanningFailed = errors.New("planning failed")

// Planner decomposes the user's task into ordered subtasks.
//
// Description:
//
//	First stage of the pipeline. Reads the task from the latest trace
//	entry, asks the reasoning model for a structured plan, and writes
//	the subtasks plus tool and complexity metadata into the state.
type Planner struct {
	llm llm.Client
}

// NewPlanner creates the planning stage.
func NewPlanner(client llm.Client) (*Planner, error) {
	if client == nil {
		return nil, errors.New("llm client must not be nil")
	}
	return &Planner{llm: client}, nil
}

// Plan generates the execution plan and records it on the state.
//
// Inputs:
//
//	ctx - Context for cancellation
//	state - Must carry at least one message; the latest one is the task.
//
// Outputs:
//
//	*workflow.State - The state with Plan and plan metadata populated
//	error - Non-nil if the model call or plan decoding fails (fatal)
func (p *Planner) Plan(ctx context.Context, state *workflow.State) (*workflow.State, error) {
	ctx, span := tracer.Start(ctx, "planner.plan")
	defer span.End()

	task := state.LatestMessage().Content
	if task == "" {
		return nil, fmt.Errorf("%w: state carries no task", ErrPlanningFailed)
	}

	response, err := p.llm.Generate(ctx, buildPlannerPrompt(task), llm.GenerationParams{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanningFailed, err)
	}

	plan, err := decodeTaskPlan(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanningFailed, err)
	}

	state.Plan = plan.Subtasks
	state.SetMeta("required_tools", plan.RequiredTools)
	state.SetMeta("estimated_complexity", plan.EstimatedComplexity)
	if len(plan.Dependencies) > 0 {
		state.SetMeta("dependencies", plan.Dependencies)
	}

	state.Append(workflow.RolePlanner, fmt.Sprintf(
		"Created execution plan with %d subtasks. Complexity: %s",
		len(plan.Subtasks), plan.EstimatedComplexity))

	span.SetAttributes(
		attribute.Int("plan.subtasks", len(plan.Subtasks)),
		attribute.String("plan.complexity", plan.EstimatedComplexity),
	)
	slog.Info("Plan created",
		"subtasks", len(plan.Subtasks),
		"complexity", plan.EstimatedComplexity,
		"required_tools", plan.RequiredTools)

	return state, nil
}
