// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workflow implements a small state-machine engine for staged
// pipelines. Nodes are state-transform functions, wired with static
// edges plus conditional edges routed by a pure function of the state.
// A graph is compiled once (structural validation up front) and the
// compiled Runnable drives state through the nodes sequentially.
package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("aleutian.agents.workflow")

// End is the terminal pseudo-node. Edges and branches may target it to
// finish a run.
const End = "__end__"

// defaultStepLimit bounds node executions per invocation. The pipelines
// built on this engine are acyclic, so hitting the limit means a
// miswired topology rather than a long-running workload.
const defaultStepLimit = 25

// StageFunc is one node of the workflow: a total state-transform
// function. Expected failures (tool errors, oracle refusals) must be
// encoded into the returned state; a non-nil error aborts the whole run.
type StageFunc func(ctx context.Context, state *State) (*State, error)

// RouterFunc inspects the state after a node runs and returns a branch
// key. It must be pure: same state in, same key out.
type RouterFunc func(state *State) string

type conditionalEdge struct {
	router   RouterFunc
	branches map[string]string
}

// Graph is a workflow under construction. Register nodes, wire edges,
// then Compile. A Graph is not safe for concurrent mutation; build it
// fully before sharing the compiled Runnable.
type Graph struct {
	nodes       map[string]StageFunc
	edges       map[string]string
	conditional map[string]conditionalEdge
	entryPoint  string
	stepLimit   int
}

// NewGraph creates an empty workflow graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:       make(map[string]StageFunc),
		edges:       make(map[string]string),
		conditional: make(map[string]conditionalEdge),
		stepLimit:   defaultStepLimit,
	}
}

// AddNode registers a named stage function.
//
// Inputs:
//
//	name - Unique node name. Must not be End.
//	fn - The stage function. Must not be nil.
//
// Outputs:
//
//	error - ErrDuplicateNode if the name is taken, or a validation error.
func (g *Graph) AddNode(name string, fn StageFunc) error {
	if name == "" || name == End {
		return fmt.Errorf("invalid node name %q", name)
	}
	if fn == nil {
		return fmt.Errorf("node %q: stage function must not be nil", name)
	}
	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, name)
	}
	g.nodes[name] = fn
	return nil
}

// SetEntryPoint declares where execution starts.
func (g *Graph) SetEntryPoint(name string) {
	g.entryPoint = name
}

// AddEdge wires an unconditional transition from one node to another
// (or to End).
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = to
}

// AddConditionalEdges wires a routed transition: after `from` runs, the
// router picks a branch key and the branch map resolves it to the next
// node. The branch map is validated for dangling targets at compile
// time; a router returning an undeclared key is a runtime error.
func (g *Graph) AddConditionalEdges(from string, router RouterFunc, branches map[string]string) {
	g.conditional[from] = conditionalEdge{router: router, branches: branches}
}

// Compile validates the graph structure and returns a Runnable.
//
// Description:
//
//	One-time structural validation: the entry point must be set and
//	registered, every edge endpoint and branch target must exist (or be
//	End), and no node may carry both a static and a conditional edge.
//	Stage bodies are not inspected. Errors here are configuration
//	errors -- they surface before any state is run.
//
// Outputs:
//
//	*Runnable - The executable workflow
//	error - Non-nil if the topology is malformed
func (g *Graph) Compile() (*Runnable, error) {
	if g.entryPoint == "" {
		return nil, ErrNoEntryPoint
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: entry point %s", ErrUnknownNode, g.entryPoint)
	}

	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: edge source %s", ErrUnknownNode, from)
		}
		if to != End {
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("%w: edge target %s", ErrUnknownNode, to)
			}
		}
		if _, ok := g.conditional[from]; ok {
			return nil, fmt.Errorf("%w: node %s", ErrConflictingEdge, from)
		}
	}

	for from, ce := range g.conditional {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: conditional source %s", ErrUnknownNode, from)
		}
		if ce.router == nil {
			return nil, fmt.Errorf("conditional edge from %s: router must not be nil", from)
		}
		if len(ce.branches) == 0 {
			return nil, fmt.Errorf("conditional edge from %s: empty branch map", from)
		}
		for key, target := range ce.branches {
			if target == End {
				continue
			}
			if _, ok := g.nodes[target]; !ok {
				return nil, fmt.Errorf("%w: branch %q target %s", ErrUnknownNode, key, target)
			}
		}
	}

	return &Runnable{graph: g}, nil
}

// Runnable is a compiled workflow ready to execute.
//
// Thread Safety: Invoke is safe for concurrent use with independent
// state records; a single State must not be shared between invocations.
type Runnable struct {
	graph *Graph
}

// Invoke drives the state through the graph from the entry point until
// a terminal edge is reached, and returns the final state.
//
// Description:
//
//	Runs one node at a time on a single logical thread. Each node
//	receives the current state and its returned state feeds the next
//	node, chosen by the static edge or by the conditional router. A
//	node with no outgoing edge terminates the run.
//
// Inputs:
//
//	ctx - Context threaded into every stage; stages are expected to pass
//	      it to oracle and tool calls so callers can impose deadlines.
//	state - The initial state. Mutated in place by stages.
//
// Outputs:
//
//	*State - The final state after the terminal edge
//	error - Non-nil if a stage returned an error or routing failed
func (r *Runnable) Invoke(ctx context.Context, state *State) (*State, error) {
	current := r.graph.entryPoint
	steps := 0

	for current != End {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("workflow canceled at node %s: %w", current, err)
		}
		steps++
		if steps > r.graph.stepLimit {
			return nil, fmt.Errorf("%w: %d nodes executed", ErrStepLimit, steps)
		}

		fn := r.graph.nodes[current]

		nodeCtx, span := tracer.Start(ctx, "workflow.node")
		span.SetAttributes(attribute.String("workflow.node", current))

		next, err := func() (string, error) {
			defer span.End()
			out, err := fn(nodeCtx, state)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return "", fmt.Errorf("node %s: %w", current, err)
			}
			state = out
			return r.nextNode(current, state)
		}()
		if err != nil {
			return nil, err
		}

		slog.Debug("Workflow transition", "from", current, "to", next)
		current = next
	}

	return state, nil
}

// nextNode resolves the node to run after `current`, given the state it
// produced.
func (r *Runnable) nextNode(current string, state *State) (string, error) {
	if ce, ok := r.graph.conditional[current]; ok {
		key := ce.router(state)
		target, ok := ce.branches[key]
		if !ok {
			return "", fmt.Errorf("%w: node %s returned %q", ErrUnknownBranch, current, key)
		}
		return target, nil
	}
	if to, ok := r.graph.edges[current]; ok {
		return to, nil
	}
	// No outgoing edge: implicit terminal.
	return End, nil
}
