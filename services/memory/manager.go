// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"context"
	"errors"
)

// ErrNoLongTermStore is returned when a semantic operation is invoked
// without a configured long-term backend.
var ErrNoLongTermStore = errors.New("long-term memory not configured")

// SemanticStore is the long-term memory surface the rest of the system
// depends on. LongTermMemory is the production implementation.
type SemanticStore interface {
	Store(ctx context.Context, key, value, source string) error
	Retrieve(ctx context.Context, query string, k int) ([]RetrievedMemory, error)
	Delete(ctx context.Context, key string) error
}

// Manager bundles both memory tiers behind one handle.
//
// The long-term tier is optional: runs work without it, they just
// lose durable recall. Semantic methods report ErrNoLongTermStore
// instead of panicking when the backend is absent.
type Manager struct {
	shortTerm *ShortTermMemory
	longTerm  SemanticStore
}

// NewManager creates a manager over the given tiers. longTerm may be
// nil.
func NewManager(shortTerm *ShortTermMemory, longTerm SemanticStore) (*Manager, error) {
	if shortTerm == nil {
		return nil, errors.New("shortTerm must not be nil")
	}
	return &Manager{shortTerm: shortTerm, longTerm: longTerm}, nil
}

// ShortTerm returns the bounded turn log.
func (m *Manager) ShortTerm() *ShortTermMemory {
	return m.shortTerm
}

// HasLongTerm reports whether a semantic backend is configured.
func (m *Manager) HasLongTerm() bool {
	return m.longTerm != nil
}

// Remember persists value under key in the long-term tier.
func (m *Manager) Remember(ctx context.Context, key, value, source string) error {
	if m.longTerm == nil {
		return ErrNoLongTermStore
	}
	return m.longTerm.Store(ctx, key, value, source)
}

// Recall returns the k stored memories most similar to query.
func (m *Manager) Recall(ctx context.Context, query string, k int) ([]RetrievedMemory, error) {
	if m.longTerm == nil {
		return nil, ErrNoLongTermStore
	}
	return m.longTerm.Retrieve(ctx, query, k)
}

// Forget removes the memory stored under key.
func (m *Manager) Forget(ctx context.Context, key string) error {
	if m.longTerm == nil {
		return ErrNoLongTermStore
	}
	return m.longTerm.Delete(ctx, key)
}
