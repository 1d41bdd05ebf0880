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
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianAgents/services/llm"
	"github.com/AleutianAI/AleutianAgents/services/workflow"
)

// Validator assesses execution results against the original query.
//
// Description:
//
//	Third stage of the pipeline. Validation can never crash a run: a
//	failure of the validation call itself is recorded as a failed
//	validation with a synthetic issue, which routes the state to the
//	corrector.
type Validator struct {
	llm llm.Client
}

// NewValidator creates the validation stage.
func NewValidator(client llm.Client) (*Validator, error) {
	if client == nil {
		return nil, errors.New("llm client must not be nil")
	}
	return &Validator{llm: client}, nil
}

// Validate checks completeness, accuracy, relevance, coherence, and
// clarity of the execution results.
//
// When validation passes, the stage also assigns FinalOutput: the pass
// branch terminates the run directly, so this is the last stage that
// can.
func (v *Validator) Validate(ctx context.Context, state *workflow.State) (*workflow.State, error) {
	ctx, span := tracer.Start(ctx, "validator.validate")
	defer span.End()

	combined := combineResults(state.ExecutionResults)

	// Nothing to validate is an automatic failure, no model call.
	if strings.TrimSpace(combined) == "" {
		state.ValidationStatus = workflow.StatusFailed
		state.CorrectionsNeeded = []string{"No execution results found"}
		state.Append(workflow.RoleValidator, "Validation failed: No results to validate")
		span.SetAttributes(attribute.String("validation.status", "failed"))
		return state, nil
	}

	query := state.FirstMessage().Content
	response, err := v.llm.Generate(ctx, buildValidatorPrompt(query, combined), llm.GenerationParams{})
	var result *ValidationResult
	if err == nil {
		result, err = decodeValidationResult(response)
	}
	if err != nil {
		// Validation failing is itself a failed validation, not a
		// crashed run.
		state.ValidationStatus = workflow.StatusFailed
		state.CorrectionsNeeded = []string{fmt.Sprintf("Validation error: %v", err)}
		state.Append(workflow.RoleValidator, fmt.Sprintf("Validation failed with error: %v", err))
		slog.Warn("Validation errored", "error", err)
		span.SetAttributes(attribute.String("validation.status", "failed"))
		return state, nil
	}

	if result.IsValid {
		state.ValidationStatus = workflow.StatusPassed
	} else {
		state.ValidationStatus = workflow.StatusFailed
	}
	state.CorrectionsNeeded = result.Issues
	state.SetMeta("validation_confidence", result.Confidence)
	if len(result.Suggestions) > 0 {
		state.SetMeta("validation_suggestions", result.Suggestions)
	}

	state.Append(workflow.RoleValidator, fmt.Sprintf(
		"Validation %s (confidence: %.2f). Issues found: %d",
		state.ValidationStatus, result.Confidence, len(result.Issues)))

	// On the pass branch the run terminates here, so the final output
	// is the verbatim concatenation of the execution results.
	if state.ValidationStatus == workflow.StatusPassed {
		state.FinalOutput = joinResults(state.ExecutionResults)
	}

	span.SetAttributes(
		attribute.String("validation.status", string(state.ValidationStatus)),
		attribute.Float64("validation.confidence", result.Confidence),
	)
	slog.Info("Validation complete",
		"status", state.ValidationStatus,
		"confidence", result.Confidence,
		"issues", len(result.Issues))

	return state, nil
}

// combineResults renders the labeled execution results for the
// validation prompt, in subtask-index order.
func combineResults(results map[int]string) string {
	indices := sortedIndices(results)
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, fmt.Sprintf("Subtask subtask_%d: %s", i, results[i]))
	}
	return strings.Join(parts, "\n\n")
}

// joinResults concatenates raw result values with blank lines, in
// subtask-index order.
func joinResults(results map[int]string) string {
	indices := sortedIndices(results)
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, results[i])
	}
	return strings.Join(parts, "\n\n")
}

func sortedIndices(results map[int]string) []int {
	indices := make([]int, 0, len(results))
	for i := range results {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}
