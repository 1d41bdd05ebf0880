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
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianAgents/services/llm"
	"github.com/AleutianAI/AleutianAgents/services/memory"
	"github.com/AleutianAI/AleutianAgents/services/tools"
	"github.com/AleutianAI/AleutianAgents/services/workflow"
)

// System is the facade over the whole agent pipeline.
//
// Description:
//
//	Owns the reasoning client, the tool registry, both memory tiers,
//	and the compiled workflow. Everything above this type (HTTP, CLI)
//	talks only to the facade; nothing reaches into stages directly.
//
// Thread Safety:
//
//	Run may be called concurrently; each call builds its own state.
//	Tool registration must happen between runs, never during one.
type System struct {
	cfg      Config
	llm      llm.Client
	registry *tools.Registry
	memory   *memory.Manager
	pipeline *workflow.Runnable
}

// NewSystem builds the full system from configuration.
//
// Description:
//
//	Constructs the reasoning client for the configured provider, the
//	default tool registry, both memory tiers, and the compiled
//	pipeline. When long-term memory is enabled but Weaviate is
//	unreachable the system starts anyway and logs the degradation:
//	runs lose durable recall, nothing else.
//
// Inputs:
//
//	ctx - Used only for the one-time schema check against Weaviate
//	cfg - System configuration; validated here
//
// Outputs:
//
//	*System - The wired system
//	error - Non-nil for invalid config or an unknown provider
func NewSystem(ctx context.Context, cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client, err := llm.NewClient(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	registry := tools.NewDefaultRegistry()

	var longTerm memory.SemanticStore
	if cfg.EnableLongTerm {
		longTerm = connectLongTerm(ctx)
	}

	mgr, err := memory.NewManager(memory.NewShortTermMemory(cfg.ShortTermCapacity), longTerm)
	if err != nil {
		return nil, fmt.Errorf("creating memory manager: %w", err)
	}

	return NewSystemWithComponents(cfg, client, registry, mgr)
}

// NewSystemWithComponents wires a system from pre-built collaborators.
// Exists so tests and embedders can inject their own client, tools, or
// memory tiers.
func NewSystemWithComponents(cfg Config, client llm.Client, registry *tools.Registry, mgr *memory.Manager) (*System, error) {
	if client == nil {
		return nil, errors.New("llm client must not be nil")
	}
	if registry == nil {
		return nil, errors.New("tool registry must not be nil")
	}
	if mgr == nil {
		return nil, errors.New("memory manager must not be nil")
	}

	planner, err := NewPlanner(client)
	if err != nil {
		return nil, err
	}
	executor, err := NewExecutor(client, registry, cfg.MaxToolIterations)
	if err != nil {
		return nil, err
	}
	validator, err := NewValidator(client)
	if err != nil {
		return nil, err
	}
	corrector, err := NewCorrector(client)
	if err != nil {
		return nil, err
	}

	pipeline, err := BuildPipeline(planner, executor, validator, corrector)
	if err != nil {
		return nil, err
	}

	return &System{
		cfg:      cfg,
		llm:      client,
		registry: registry,
		memory:   mgr,
		pipeline: pipeline,
	}, nil
}

// connectLongTerm attaches the Weaviate tier, or returns nil when the
// backend is unreachable.
func connectLongTerm(ctx context.Context) memory.SemanticStore {
	client, err := memory.NewWeaviateClient()
	if err != nil {
		slog.Warn("Long-term memory disabled", "error", err)
		return nil
	}
	if err := memory.EnsureAgentMemorySchema(ctx, client); err != nil {
		slog.Warn("Long-term memory disabled, schema check failed", "error", err)
		return nil
	}
	longTerm, err := memory.NewLongTermMemory(client)
	if err != nil {
		slog.Warn("Long-term memory disabled", "error", err)
		return nil
	}
	return longTerm
}

// Run processes one query through the full pipeline.
//
// Description:
//
//	Seeds a fresh state with the query, invokes the compiled workflow,
//	then records the exchange in short-term memory and optionally the
//	final output in long-term memory. A planning failure is fatal and
//	surfaces here; downstream stage problems are absorbed into the
//	state by the stages themselves.
//
// Inputs:
//
//	ctx - Context for cancellation; also the timeout hook for every
//	      blocking model and tool call in the run
//	query - The user's task. Must not be blank.
//
// Outputs:
//
//	*RunResult - Output, plan, trace, and metadata of the run
//	error - Non-nil if the query is blank or the workflow fails
func (s *System) Run(ctx context.Context, query string) (*RunResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query must not be blank")
	}

	start := time.Now()
	slog.Info("Processing query", "query", truncate(query, 100))

	final, err := s.pipeline.Invoke(ctx, workflow.NewState(query))
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("running workflow: %w", err)
	}

	runDuration.Observe(time.Since(start).Seconds())
	runsTotal.WithLabelValues("ok").Inc()
	validationOutcomes.WithLabelValues(string(final.ValidationStatus)).Inc()
	for _, r := range final.ExecutionResults {
		if strings.HasPrefix(r, ErrorMarker) {
			subtaskResults.WithLabelValues("error").Inc()
		} else {
			subtaskResults.WithLabelValues("ok").Inc()
		}
	}

	// Memory is written only after the engine returns, never by
	// stages mid-run.
	s.memory.ShortTerm().Add(string(workflow.RoleUser), query)
	s.memory.ShortTerm().Add(string(workflow.RoleAssistant), final.FinalOutput)

	if s.cfg.PersistResults && s.memory.HasLongTerm() {
		key := "interaction_" + uuid.NewString()
		if err := s.memory.Remember(ctx, key, final.FinalOutput, "workflow_result"); err != nil {
			slog.Warn("Failed to persist run output", "key", key, "error", err)
		}
	}

	slog.Info("Query processed",
		"plan_steps", len(final.Plan),
		"validation", final.ValidationStatus,
		"duration", time.Since(start))

	return &RunResult{
		Output:   final.FinalOutput,
		Plan:     final.Plan,
		Trace:    final.Messages,
		Metadata: final.Metadata,
	}, nil
}

// Registry exposes the tool registry for between-run management.
func (s *System) Registry() *tools.Registry { return s.registry }

// Memory exposes both memory tiers.
func (s *System) Memory() *memory.Manager { return s.memory }

// Provider returns the active reasoning backend's name.
func (s *System) Provider() string { return s.llm.Name() }

// Config returns the configuration the system was built with.
func (s *System) Config() Config { return s.cfg }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back up to a rune boundary so the cut never splits a multi-byte
	// sequence.
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
