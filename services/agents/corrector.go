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
	"github.com/AleutianAI/AleutianAgents/services/workflow"
)

// Corrector rewrites flawed output to address validation issues.
//
// Description:
//
//	Optional fourth stage, reached only when validation failed. Asks
//	the reasoning model for a holistically revised artifact rather
//	than a patch. A failed correction never loses the prior result:
//	the original output is preserved under a marked failure notice.
type Corrector struct {
	llm llm.Client
}

// NewCorrector creates the correction stage.
func NewCorrector(client llm.Client) (*Corrector, error) {
	if client == nil {
		return nil, errors.New("llm client must not be nil")
	}
	return &Corrector{llm: client}, nil
}

// Correct produces the final output for a failed validation.
func (c *Corrector) Correct(ctx context.Context, state *workflow.State) (*workflow.State, error) {
	ctx, span := tracer.Start(ctx, "corrector.correct")
	defer span.End()

	originalOutput := joinResults(state.ExecutionResults)

	// Should not happen given the validator's contract, but an empty
	// issue list must not invent a correction.
	if len(state.CorrectionsNeeded) == 0 {
		state.FinalOutput = originalOutput
		state.Append(workflow.RoleCorrector, "No corrections needed - output is good!")
		span.SetAttributes(attribute.Int("correction.issues", 0))
		return state, nil
	}

	query := state.FirstMessage().Content
	prompt := buildCorrectorPrompt(state.CorrectionsNeeded, originalOutput, query)

	corrected, err := c.llm.Generate(ctx, prompt, llm.GenerationParams{})
	if err != nil {
		state.FinalOutput = fmt.Sprintf("[Correction failed: %v]\n\nOriginal output:\n%s", err, originalOutput)
		state.Append(workflow.RoleCorrector, fmt.Sprintf("Correction failed: %v", err))
		slog.Warn("Correction failed", "error", err)
		span.SetAttributes(attribute.Bool("correction.failed", true))
		return state, nil
	}

	state.FinalOutput = strings.TrimSpace(corrected)
	state.Append(workflow.RoleCorrector, fmt.Sprintf(
		"Applied corrections to address %d issues", len(state.CorrectionsNeeded)))

	span.SetAttributes(attribute.Int("correction.issues", len(state.CorrectionsNeeded)))
	slog.Info("Correction applied", "issues", len(state.CorrectionsNeeded))

	return state, nil
}
