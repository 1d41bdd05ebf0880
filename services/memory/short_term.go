// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package memory provides the two memory tiers backing agent runs: a
// bounded in-process turn log for conversational context, and a
// Weaviate-backed semantic store for durable recall.
package memory

import (
	"sync"
	"time"
)

// DefaultShortTermCapacity bounds the turn log when no explicit
// capacity is configured.
const DefaultShortTermCapacity = 50

// Turn is one recorded conversational exchange.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ShortTermMemory.
//
// Description:
//
//	A bounded rolling window of conversation turns. When the window is
//	full the oldest turns are discarded. The log is transient: nothing
//	survives a restart, and Clear wipes it on demand.
//
// Thread Safety:
//
//	All methods are safe for concurrent use.
type ShortTermMemory struct {
	mu       sync.RWMutex
	turns    []Turn
	capacity int
}

// NewShortTermMemory creates a turn log bounded to capacity turns.
// Non-positive capacities fall back to DefaultShortTermCapacity.
func NewShortTermMemory(capacity int) *ShortTermMemory {
	if capacity <= 0 {
		capacity = DefaultShortTermCapacity
	}
	return &ShortTermMemory{capacity: capacity}
}

// Add appends a turn, evicting the oldest turns if the window is full.
func (s *ShortTermMemory) Add(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, Turn{Role: role, Content: content, Timestamp: time.Now().UTC()})
	if len(s.turns) > s.capacity {
		// Keep the newest capacity turns.
		s.turns = append(s.turns[:0:0], s.turns[len(s.turns)-s.capacity:]...)
	}
}

// History returns a copy of all retained turns, oldest first.
func (s *ShortTermMemory) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Recent returns a copy of the newest n turns, oldest first. A
// non-positive or oversized n returns the full history.
func (s *ShortTermMemory) Recent(n int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.turns) {
		n = len(s.turns)
	}
	out := make([]Turn, n)
	copy(out, s.turns[len(s.turns)-n:])
	return out
}

// Clear discards all retained turns.
func (s *ShortTermMemory) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// Len returns the number of retained turns.
func (s *ShortTermMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Capacity returns the configured window size.
func (s *ShortTermMemory) Capacity() int {
	return s.capacity
}
