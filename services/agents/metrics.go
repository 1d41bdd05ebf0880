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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aleutian",
		Subsystem: "agents",
		Name:      "runs_total",
		Help:      "Completed workflow runs by terminal status.",
	}, []string{"status"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "aleutian",
		Subsystem: "agents",
		Name:      "run_duration_seconds",
		Help:      "End-to-end workflow run latency.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	validationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aleutian",
		Subsystem: "agents",
		Name:      "validation_outcomes_total",
		Help:      "Validation stage outcomes.",
	}, []string{"status"})

	subtaskResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aleutian",
		Subsystem: "agents",
		Name:      "subtask_results_total",
		Help:      "Executed subtasks by result.",
	}, []string{"result"})
)
