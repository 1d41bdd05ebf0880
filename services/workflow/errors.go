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

import "errors"

// Sentinel errors for graph construction and execution.
var (
	// ErrDuplicateNode indicates a node name was registered twice.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode indicates an edge or entry point references a node
	// that was never registered.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoEntryPoint indicates Compile was called before SetEntryPoint.
	ErrNoEntryPoint = errors.New("no entry point set")

	// ErrConflictingEdge indicates a node has both a static and a
	// conditional outgoing edge.
	ErrConflictingEdge = errors.New("conflicting outgoing edges")

	// ErrUnknownBranch indicates a router returned a branch key that is
	// not in its branch map.
	ErrUnknownBranch = errors.New("unknown branch key")

	// ErrStepLimit indicates a run exceeded the maximum number of node
	// executions, which means the topology loops.
	ErrStepLimit = errors.New("step limit exceeded")
)
