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
	"fmt"

	"github.com/AleutianAI/AleutianAgents/services/workflow"
)

// Pipeline node names.
const (
	NodePlanner   = "planner"
	NodeExecutor  = "executor"
	NodeValidator = "validator"
	NodeCorrector = "corrector"
)

// Router branch keys.
const (
	branchCorrector = "corrector"
	branchEnd       = "end"
)

// shouldCorrect routes a validated state: failed validations go to the
// corrector, everything else terminates.
func shouldCorrect(state *workflow.State) string {
	if state.ValidationStatus == workflow.StatusFailed {
		return branchCorrector
	}
	return branchEnd
}

// BuildPipeline wires the four stages into a compiled workflow.
//
// Description:
//
//	Topology: planner -> executor -> validator, then a conditional
//	edge from the validator into either the corrector or straight to
//	termination. The corrector always terminates. Compilation performs
//	the structural validation, so a mis-wired pipeline fails here and
//	never at run time.
//
// Outputs:
//
//	*workflow.Runnable - The compiled pipeline
//	error - Non-nil if any stage is nil or the graph fails to compile
func BuildPipeline(planner *Planner, executor *Executor, validator *Validator, corrector *Corrector) (*workflow.Runnable, error) {
	if planner == nil || executor == nil || validator == nil || corrector == nil {
		return nil, fmt.Errorf("all four stages are required")
	}

	g := workflow.NewGraph()

	if err := g.AddNode(NodePlanner, planner.Plan); err != nil {
		return nil, err
	}
	if err := g.AddNode(NodeExecutor, executor.Execute); err != nil {
		return nil, err
	}
	if err := g.AddNode(NodeValidator, validator.Validate); err != nil {
		return nil, err
	}
	if err := g.AddNode(NodeCorrector, corrector.Correct); err != nil {
		return nil, err
	}

	g.SetEntryPoint(NodePlanner)
	g.AddEdge(NodePlanner, NodeExecutor)
	g.AddEdge(NodeExecutor, NodeValidator)
	g.AddConditionalEdges(NodeValidator, shouldCorrect, map[string]string{
		branchCorrector: NodeCorrector,
		branchEnd:       workflow.End,
	})
	g.AddEdge(NodeCorrector, workflow.End)

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compiling pipeline: %w", err)
	}
	return runnable, nil
}
