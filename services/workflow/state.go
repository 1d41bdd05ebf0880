// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workflow

// Role identifies the author of a message in the pipeline trace.
type Role string

const (
	RoleUser      Role = "user"
	RolePlanner   Role = "planner"
	RoleExecutor  Role = "executor"
	RoleValidator Role = "validator"
	RoleCorrector Role = "corrector"
	RoleAssistant Role = "assistant"
)

// ValidationStatus is the outcome of the validation stage.
type ValidationStatus string

const (
	// StatusUnset means validation has not run yet.
	StatusUnset ValidationStatus = ""

	// StatusPassed means the output met quality standards.
	StatusPassed ValidationStatus = "passed"

	// StatusFailed means the output needs correction.
	StatusFailed ValidationStatus = "failed"
)

// Message is one entry in the pipeline's conversation trace.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// State is the shared record threaded through every pipeline stage.
//
// Each stage reads the fields it needs, mutates its own outputs, and
// returns the state for the next node. Messages is append-only: stages
// add trace entries and never remove or reorder existing ones. Metadata
// is additive for the same reason.
//
// Thread Safety: State is not safe for concurrent mutation. The engine
// drives exactly one stage at a time, so no synchronization is needed
// during a run.
type State struct {
	// Messages is the ordered execution trace. The first entry is the
	// originating user query.
	Messages []Message `json:"messages"`

	// Plan holds the ordered subtasks produced by the planning stage,
	// nil until planning completes.
	Plan []string `json:"plan,omitempty"`

	// ExecutionResults maps subtask index (plan order) to its result
	// text, or an "ERROR: " marked failure.
	ExecutionResults map[int]string `json:"execution_results"`

	// ValidationStatus is set by the validation stage.
	ValidationStatus ValidationStatus `json:"validation_status"`

	// CorrectionsNeeded lists the issues validation found. Empty when
	// validation passed or has not run.
	CorrectionsNeeded []string `json:"corrections_needed"`

	// FinalOutput is the terminal result, empty until the run completes.
	FinalOutput string `json:"final_output"`

	// Metadata carries auxiliary values (required tools, complexity,
	// confidence). Stages only ever add keys.
	Metadata map[string]any `json:"metadata"`
}

// NewState creates a fresh state seeded with the user's query.
func NewState(query string) *State {
	return &State{
		Messages:         []Message{{Role: RoleUser, Content: query}},
		ExecutionResults: make(map[int]string),
		Metadata:         make(map[string]any),
	}
}

// Append adds a trace message. Messages are only ever appended, never
// replaced, so the trace preserves stage-execution order.
func (s *State) Append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// SetMeta records an auxiliary value. Existing keys from earlier stages
// are preserved unless a stage deliberately overwrites its own key.
func (s *State) SetMeta(key string, value any) {
	if s.Metadata == nil {
		s.Metadata = make(map[string]any)
	}
	s.Metadata[key] = value
}

// FirstMessage returns the first trace entry. By convention this is the
// originating user query; validation and correction treat it as
// canonical.
func (s *State) FirstMessage() Message {
	if len(s.Messages) == 0 {
		return Message{}
	}
	return s.Messages[0]
}

// LatestMessage returns the most recent trace entry. Planning reads the
// task from here, which diverges from FirstMessage only if extra turns
// are injected before planning runs.
func (s *State) LatestMessage() Message {
	if len(s.Messages) == 0 {
		return Message{}
	}
	return s.Messages[len(s.Messages)-1]
}

// Merge combines another state's additions into this one. Messages are
// concatenated in order, execution results and metadata are merged
// additively, and scalar fields take the other state's value when set.
//
// The engine runs a single thread of control, so Merge exists for
// callers that assemble state out of band (tests, replay tooling), not
// for concurrent stage writers.
func (s *State) Merge(other *State) {
	if other == nil {
		return
	}
	s.Messages = append(s.Messages, other.Messages...)
	if s.ExecutionResults == nil && len(other.ExecutionResults) > 0 {
		s.ExecutionResults = make(map[int]string, len(other.ExecutionResults))
	}
	for i, r := range other.ExecutionResults {
		s.ExecutionResults[i] = r
	}
	for k, v := range other.Metadata {
		s.SetMeta(k, v)
	}
	if other.Plan != nil {
		s.Plan = other.Plan
	}
	if other.ValidationStatus != StatusUnset {
		s.ValidationStatus = other.ValidationStatus
	}
	if len(other.CorrectionsNeeded) > 0 {
		s.CorrectionsNeeded = append(s.CorrectionsNeeded, other.CorrectionsNeeded...)
	}
	if other.FinalOutput != "" {
		s.FinalOutput = other.FinalOutput
	}
}
