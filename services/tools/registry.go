// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	// ErrToolNotFound is returned when a lookup names an unregistered tool.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDuplicateTool is returned when Register sees an occupied name.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrNilTool is returned when Register is handed a nil or unnamed tool.
	ErrNilTool = errors.New("tool is nil or has no name")
)

// Registry.
//
// Description:
//
//	A thread-safe, name-keyed collection of tools. The registry is the
//	single source of truth for what the execution stage may invoke: a
//	tool that is not registered does not exist as far as a run is
//	concerned, no matter what the oracle asks for.
//
// Thread Safety:
//
//	All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its own name. Registering a second tool
// under an occupied name is rejected rather than silently replacing
// the first; use Replace for deliberate overrides.
func (r *Registry) Register(t Tool) error {
	if t == nil || t.Name() == "" {
		return ErrNilTool
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name())
	}
	r.tools[t.Name()] = t
	slog.Debug("Registered tool", "name", t.Name())
	return nil
}

// Replace adds a tool, overwriting any existing registration.
func (r *Registry) Replace(t Tool) error {
	if t == nil || t.Name() == "" {
		return ErrNilTool
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
	return nil
}

// Unregister removes a tool by name. Removing an absent name is a
// no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}

// Has reports whether a tool is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns a sorted catalogue of all registered tools for
// prompt construction and the HTTP tool listing.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, Definition{Name: t.Name(), Description: t.Description()})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
