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

// enumerate
package main

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Candidate vertices may violate a constraint by this much and still count as
// feasible. Tighter than SIDE_EPSILON: a false vertex here turns into a false
// split later
const FEASIBILITY_EPSILON = float64(1e-7)

// Enumerator converts a half-space description into the list of vertices
// (H to V). It is brute force: every n-subset of constraint boundaries is
// solved as a linear system, and the solutions feasible for all constraints
// are the vertices. Cells in this program are cut by few hyperplanes in low
// dimension, where this beats anything clever. Safe for concurrent use as
// long as the fields are not modified
type Enumerator struct {
	Tolerance     float64
	VertexEpsilon float64
	// Refuse systems with more n-subsets than this; zero means no limit
	MaxCandidates int
	// Used for the recession check; nil skips it, so unbounded input then
	// yields just the vertices it has
	Oracle  *Oracle
	Metrics *Metrics
	Log     *MyLogger
}

func NewEnumerator(oracle *Oracle) *Enumerator {
	return &Enumerator{
		Tolerance:     FEASIBILITY_EPSILON,
		VertexEpsilon: VERTEX_EPSILON,
		Oracle:        oracle,
	}
}

func (e *Enumerator) logger() *MyLogger {
	if e.Log == nil {
		return Log
	}
	return e.Log
}

// EnumerateVertices returns the vertices of the polytope {x : c.Coef·x >=
// c.Constant for every c}, each once, in a deterministic order. nil is
// returned for infeasible, unbounded or vertex-less input, over budget input,
// and when ctx is cancelled; never an error
func (e *Enumerator) EnumerateVertices(ctx context.Context, constraints []Hyperplane) [][]float64 {
	defer e.Metrics.Since(OP_ENUMERATE, time.Now())
	m := len(constraints)
	if m == 0 {
		return nil
	}
	n := len(constraints[0].Coef)
	if n == 0 || m < n {
		return nil
	}
	for i, c := range constraints {
		if len(c.Coef) != n {
			e.logger().Verbose(2, "enumerate: constraint %d has %d coefficients, want %d", i, len(c.Coef), n)
			return nil
		}
	}
	if e.MaxCandidates > 0 && binomialExceeds(m, n, e.MaxCandidates) {
		e.logger().Verbose(2, "enumerate: C(%d,%d) candidate systems is over the budget of %d", m, n, e.MaxCandidates)
		return nil
	}

	vm := CreateVertexMap(n, e.VertexEpsilon, VMAP_BLOCK_SIZE)
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	x := mat.NewVecDense(n, nil)
	var lu mat.LU
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for count := 1; ; count++ {
		if count&0xff == 0 && ctx.Err() != nil {
			return nil
		}
		for r, ci := range idx {
			for j, v := range constraints[ci].Coef {
				a.Set(r, j, v)
			}
			b.SetVec(r, constraints[ci].Constant)
		}
		lu.Factorize(a)
		if lu.Cond() < CONDITION_LIMIT && lu.SolveVecTo(x, false, b) == nil {
			pt := x.RawVector().Data
			if finiteVector(pt) && e.feasible(constraints, pt) {
				vm.SelectVertexClose(pt)
			}
		}
		if !nextCombination(idx, m) {
			break
		}
	}
	if ctx.Err() != nil || vm.Len() == 0 {
		return nil
	}
	if e.Oracle != nil && e.Oracle.Unbounded(ctx, constraints) {
		e.logger().Verbose(2, "enumerate: region is unbounded, %d vertices dropped", vm.Len())
		return nil
	}
	return vm.Coords()
}

func (e *Enumerator) feasible(constraints []Hyperplane, pt []float64) bool {
	for _, c := range constraints {
		if !c.Satisfied(pt, e.Tolerance) {
			return false
		}
	}
	return true
}

// nextCombination advances idx (strictly increasing, values in [0, m)) to the
// next n-subset in lexicographic order. False when idx was the last one
func nextCombination(idx []int, m int) bool {
	n := len(idx)
	i := n - 1
	for i >= 0 && idx[i] == m-n+i {
		i--
	}
	if i < 0 {
		return false
	}
	idx[i]++
	for j := i + 1; j < n; j++ {
		idx[j] = idx[j-1] + 1
	}
	return true
}

// binomialExceeds reports whether C(m, n) > limit without overflowing
func binomialExceeds(m, n, limit int) bool {
	if n > m-n {
		n = m - n
	}
	c := 1
	for i := 1; i <= n; i++ {
		// c*(m-n+i)/i is always whole
		c = c * (m - n + i) / i
		if c > limit {
			return true
		}
	}
	return false
}
