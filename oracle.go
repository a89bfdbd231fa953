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

// oracle
package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const DEFAULT_SOLVE_TIMEOUT = 5 * time.Second

var (
	errSolverTimeout = errors.New("lp solve timed out")
	errSolverPanic   = errors.New("lp solver panicked")
)

// Oracle answers feasibility questions with linear programs. Variables are
// bounded to [VarMin, VarMax] on every axis. Solver failures of any kind are
// never returned to the tree: they count as "no", get logged and counted
type Oracle struct {
	VarMin, VarMax float64
	Tolerance      float64
	// Every single solve runs under this deadline; zero means no deadline.
	// gonum's simplex can't be interrupted, so a timed out solve finishes in
	// the background and its result is dropped
	SolveTimeout time.Duration
	Metrics      *Metrics
	Log          *MyLogger
}

func NewOracle(varMin, varMax float64) *Oracle {
	return &Oracle{
		VarMin:       varMin,
		VarMax:       varMax,
		Tolerance:    SIDE_EPSILON,
		SolveTimeout: DEFAULT_SOLVE_TIMEOUT,
	}
}

func (o *Oracle) logger() *MyLogger {
	if o.Log == nil {
		return Log
	}
	return o.Log
}

// IsSplit minimizes and maximizes objective.Coef·x over the region and
// reports whether objective takes strictly negative and strictly positive
// values there (beyond Tolerance, after subtracting objective.Constant)
func (o *Oracle) IsSplit(ctx context.Context, constraints []Hyperplane, objective Hyperplane) bool {
	minV, err := o.Minimize(ctx, objective.Coef, constraints)
	if err != nil {
		o.failed(err, "minimize")
		return false
	}
	maxV, err := o.Minimize(ctx, negated(objective.Coef), constraints)
	if err != nil {
		o.failed(err, "maximize")
		return false
	}
	maxV = -maxV
	return minV-objective.Constant < -o.Tolerance &&
		maxV-objective.Constant > o.Tolerance
}

// ContainsPoint is true iff point satisfies every constraint within Tolerance
func (o *Oracle) ContainsPoint(constraints []Hyperplane, point []float64) bool {
	defer o.Metrics.Since(OP_CONTAINS_POINT, time.Now())
	for _, c := range constraints {
		if len(c.Coef) != len(point) || !c.Satisfied(point, o.Tolerance) {
			return false
		}
	}
	return true
}

// Minimize returns min c·x subject to constraints and the variable bounds
func (o *Oracle) Minimize(ctx context.Context, c []float64, constraints []Hyperplane) (float64, error) {
	return o.solve(ctx, c, constraints, o.VarMin, o.VarMax)
}

// Unbounded reports whether the region given by constraints has a recession
// direction. Only meaningful for a region already known to have a vertex:
// then the constraint matrix has full column rank, so any nonzero d with
// A·d >= 0 makes Σ a_i·d strictly positive, and maximizing that sum over
// A·d >= 0, −1 <= d <= 1 finds such d if there is one. A failed solve counts
// as unbounded
func (o *Oracle) Unbounded(ctx context.Context, constraints []Hyperplane) bool {
	if len(constraints) == 0 {
		return true
	}
	if boxed(constraints) {
		return false
	}
	n := len(constraints[0].Coef)
	sum := make([]float64, n)
	cone := make([]Hyperplane, len(constraints))
	for i, c := range constraints {
		for j, a := range c.Coef {
			sum[j] -= a
		}
		cone[i] = Hyperplane{Coef: c.Coef}
	}
	v, err := o.solve(ctx, sum, cone, -1, 1)
	if err != nil {
		o.failed(err, "recession")
		return true
	}
	return -v > o.Tolerance
}

// boxed is the cheap sufficient check: some constraint bounds every axis
// from below and some other from above
func boxed(constraints []Hyperplane) bool {
	n := len(constraints[0].Coef)
	lower := make([]bool, n)
	upper := make([]bool, n)
	for _, c := range constraints {
		axis := -1
		for j, a := range c.Coef {
			if a != 0 {
				if axis != -1 {
					axis = -2
					break
				}
				axis = j
			}
		}
		if axis < 0 {
			continue
		}
		if c.Coef[axis] > 0 {
			lower[axis] = true
		} else {
			upper[axis] = true
		}
	}
	for j := 0; j < n; j++ {
		if !lower[j] || !upper[j] {
			return false
		}
	}
	return true
}

type lpResult struct {
	val float64
	err error
}

func (o *Oracle) solve(ctx context.Context, c []float64, constraints []Hyperplane,
	lo, hi float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer o.Metrics.Since(OP_LP, time.Now())
	reply := make(chan lpResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				reply <- lpResult{err: errors.Wrapf(errSolverPanic, "%v", r)}
			}
		}()
		v, err := minimizeLP(c, constraints, lo, hi)
		reply <- lpResult{val: v, err: err}
	}()
	var timeout <-chan time.Time
	if o.SolveTimeout > 0 {
		timer := time.NewTimer(o.SolveTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case r := <-reply:
		return r.val, r.err
	case <-timeout:
		return 0, errSolverTimeout
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// minimizeLP builds G·x <= h from "a·x >= b" rows plus lo <= x_i <= hi and
// hands it to gonum's simplex
func minimizeLP(c []float64, constraints []Hyperplane, lo, hi float64) (float64, error) {
	n := len(c)
	rows := len(constraints) + 2*n
	g := mat.NewDense(rows, n, nil)
	h := make([]float64, rows)
	for i, con := range constraints {
		if len(con.Coef) != n {
			return 0, errors.Wrapf(ErrDimensionMismatch, "constraint %d has %d coefficients, want %d",
				i, len(con.Coef), n)
		}
		for j, a := range con.Coef {
			g.Set(i, j, -a)
		}
		h[i] = -con.Constant
	}
	for j := 0; j < n; j++ {
		r := len(constraints) + 2*j
		g.Set(r, j, 1)
		h[r] = hi
		g.Set(r+1, j, -1)
		h[r+1] = -lo
	}
	cNew, aNew, bNew := lp.Convert(c, g, h, nil, nil)
	optF, _, err := lp.Simplex(cNew, aNew, bNew, 0, nil)
	return optF, err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return "infeasible"
	case errors.Is(err, lp.ErrUnbounded):
		return "unbounded"
	case errors.Is(err, lp.ErrSingular):
		return "singular"
	case errors.Is(err, errSolverTimeout):
		return "timeout"
	case errors.Is(err, errSolverPanic):
		return "panic"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "other"
}

func (o *Oracle) failed(err error, what string) {
	reason := failureReason(err)
	o.Metrics.SolverFailure(reason)
	o.logger().Verbose(2, "lp %s failed (%s): %v", what, reason, err)
}
