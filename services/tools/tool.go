// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tools defines the capability interface available to the
// execution stage and a name-keyed registry over it. Tool descriptions
// are consumed by the reasoning oracle for selection; the engine only
// dispatches by name.
package tools

import "context"

// Tool is a named, synchronous, fallible capability.
//
// Invoke must be safe for concurrent use: the registry is read-only
// during a run, but independent runs may invoke the same tool at once.
type Tool interface {
	// Name returns the unique registry key.
	Name() string

	// Description explains what the tool does and what parameters it
	// expects. Written for the oracle, not for humans.
	Description() string

	// Invoke executes the tool with the given arguments and returns its
	// textual result.
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// Definition is a serializable view of a tool for catalogues and
// prompts.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolParam documents one expected argument in a tool description.
type ToolParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// FuncTool adapts a plain function into a Tool.
type FuncTool struct {
	name        string
	description string
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

// NewFuncTool wraps a function as a registrable tool.
func NewFuncTool(name, description string, fn func(ctx context.Context, args map[string]any) (string, error)) *FuncTool {
	return &FuncTool{name: name, description: description, fn: fn}
}

// Name implements the Tool interface.
func (t *FuncTool) Name() string { return t.name }

// Description implements the Tool interface.
func (t *FuncTool) Description() string { return t.description }

// Invoke implements the Tool interface.
func (t *FuncTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	return t.fn(ctx, args)
}

// StringArg extracts a string argument, tolerating missing keys and
// non-string values from loosely parsed oracle output.
func StringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
