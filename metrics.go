// Copyright (C) 2025-2026, VigilantDoomer
//
// This file is part of VITree program.
//
// VITree is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// VITree is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with VITree.  If not, see <https://www.gnu.org/licenses/>.

// metrics
package main

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names for the duration histogram and the profile report
const (
	OP_ENUMERATE      = "enumerate"
	OP_CLASSIFY       = "classify"
	OP_LP             = "lp"
	OP_STORE_READ     = "store_read"
	OP_CONTAINS_POINT = "contains_point"
)

// Cell outcomes, one per visited cell per insertion
const (
	OUTCOME_SPLIT        = "split"
	OUTCOME_DESCEND      = "descend"
	OUTCOME_PRUNED_POINT = "pruned_point"
	OUTCOME_DEGENERATE   = "degenerate"
	OUTCOME_DUPLICATE    = "duplicate"
	OUTCOME_INFEASIBLE   = "infeasible"
	OUTCOME_UNAFFECTED   = "unaffected"
	OUTCOME_SKIPPED      = "skipped"
)

// Metrics is the telemetry collaborator handed to the tree and its helpers.
// All methods are safe on a nil *Metrics (they do nothing), so tests can
// leave it out
type Metrics struct {
	opDuration     *prometheus.HistogramVec
	cellOutcomes   *prometheus.CounterVec
	solverFailures *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	insertions     prometheus.Counter
	cells          prometheus.Gauge

	// cumulative totals for the profile report at the end of a run
	mu     sync.Mutex
	totals map[string]time.Duration
	counts map[string]int
}

// NewMetrics registers collectors on reg. Pass a fresh prometheus.NewRegistry()
// per run, never the process-wide default
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		opDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vitree",
			Name:      "operation_duration_seconds",
			Help:      "Time spent per operation kind.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op"}),
		cellOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitree",
			Name:      "cell_outcomes_total",
			Help:      "Cells visited during insertion, by what happened to them.",
		}, []string{"outcome"}),
		solverFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitree",
			Name:      "solver_failures_total",
			Help:      "Linear program solves that did not produce an optimum.",
		}, []string{"reason"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitree",
			Name:      "hyperplane_cache_lookups_total",
			Help:      "Hyperplane cache lookups by result.",
		}, []string{"result"}),
		insertions: f.NewCounter(prometheus.CounterOpts{
			Namespace: "vitree",
			Name:      "insertions_total",
			Help:      "Hyperplanes offered to the tree.",
		}),
		cells: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "vitree",
			Name:      "cells",
			Help:      "Cells currently in the tree.",
		}),
		totals: make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

func (m *Metrics) ObserveOp(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.opDuration.WithLabelValues(op).Observe(d.Seconds())
	m.mu.Lock()
	m.totals[op] += d
	m.counts[op]++
	m.mu.Unlock()
}

// Since is shorthand for ObserveOp(op, time.Since(start)), to be deferred
func (m *Metrics) Since(op string, start time.Time) {
	m.ObserveOp(op, time.Since(start))
}

func (m *Metrics) CellOutcome(outcome string) {
	if m == nil {
		return
	}
	m.cellOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SolverFailure(reason string) {
	if m == nil {
		return
	}
	m.solverFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) Inserted(cells int) {
	if m == nil {
		return
	}
	m.insertions.Inc()
	m.cells.Set(float64(cells))
}

type OpTotal struct {
	Op    string
	Count int
	Total time.Duration
}

// Profile returns cumulative per-operation totals, sorted by operation name
func (m *Metrics) Profile() []OpTotal {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]OpTotal, 0, len(m.totals))
	for op, d := range m.totals {
		res = append(res, OpTotal{Op: op, Count: m.counts[op], Total: d})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Op < res[j].Op })
	return res
}

func (m *Metrics) WriteProfile(w io.Writer) error {
	return writeProfile(w, m.Profile())
}

func writeProfile(w io.Writer, profile []OpTotal) error {
	for _, p := range profile {
		_, err := fmt.Fprintf(w, "Total time in %s: %s (%d calls)\n", p.Op, p.Total, p.Count)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteMetricsFile dumps everything gathered by g in text exposition format
func WriteMetricsFile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
