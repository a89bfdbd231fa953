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

// hyperplane
package main

import (
	"fmt"
	"math"
	"strings"
)

// Default absolute tolerance on a·x − b. Values within it of zero are "on the
// hyperplane", so a vertex must clear it to count as strictly on one side
const SIDE_EPSILON = float64(0.0001)

// Two computed vertices closer than this (in every coordinate) are the same
// vertex
const VERTEX_EPSILON = float64(1.0 / 65536.0)

// Linear systems with a condition number above this are treated as singular
// when solving for candidate vertices
const CONDITION_LIMIT = float64(1e12)

// Hyperplane is the boundary Coef·x = Constant. When used as a constraint it
// stands for the half-space Coef·x >= Constant. Treat as immutable once
// constructed: slices are shared, not copied, between cells
type Hyperplane struct {
	Coef     []float64
	Constant float64
}

func (h Hyperplane) Dimension() int {
	return len(h.Coef)
}

// Eval returns Coef·x − Constant. Positive side is Eval > 0
func (h Hyperplane) Eval(x []float64) float64 {
	return dot(h.Coef, x) - h.Constant
}

// Complement returns the opposite closed half-space, −a·x >= −b
func (h Hyperplane) Complement() Hyperplane {
	return Hyperplane{Coef: negated(h.Coef), Constant: -h.Constant}
}

// NegateCoef is the legacy negation that leaves the constant alone, −a·x >= b.
// It is NOT the complement of h unless b is zero
func (h Hyperplane) NegateCoef() Hyperplane {
	return Hyperplane{Coef: negated(h.Coef), Constant: h.Constant}
}

// Satisfied reports whether x lies in the half-space within tolerance
func (h Hyperplane) Satisfied(x []float64, tol float64) bool {
	return h.Eval(x) >= -tol
}

// Trivial hyperplanes (all coefficients zero) can't split anything
func (h Hyperplane) Trivial() bool {
	for _, a := range h.Coef {
		if a != 0 {
			return false
		}
	}
	return true
}

func (h Hyperplane) String() string {
	var sb strings.Builder
	for i, a := range h.Coef {
		if i > 0 {
			sb.WriteString(" + ")
		}
		sb.WriteString(fmt.Sprintf("%gx%d", a, i+1))
	}
	sb.WriteString(fmt.Sprintf(" = %g", h.Constant))
	return sb.String()
}

func negated(coef []float64) []float64 {
	res := make([]float64, len(coef))
	for i, a := range coef {
		res[i] = -a
	}
	return res
}

// ConstraintRef is a signed reference to a stored hyperplane. +id keeps the
// positive side (a·x >= b), −id keeps the opposite side. Zero is never valid
type ConstraintRef int

func (r ConstraintRef) ID() int {
	if r < 0 {
		return int(-r)
	}
	return int(r)
}

func (r ConstraintRef) Positive() bool {
	return r > 0
}

func (r ConstraintRef) Opposite() ConstraintRef {
	return -r
}

// BoxConstraints describes [lo, hi]^n as 2n half-spaces: x_i >= lo followed
// by −x_i >= −hi, for each axis in order
func BoxConstraints(n int, lo, hi float64) []Hyperplane {
	res := make([]Hyperplane, 0, 2*n)
	for i := 0; i < n; i++ {
		lower := make([]float64, n)
		lower[i] = 1
		res = append(res, Hyperplane{Coef: lower, Constant: lo})
		upper := make([]float64, n)
		upper[i] = -1
		res = append(res, Hyperplane{Coef: upper, Constant: -hi})
	}
	return res
}

// BoxVertices returns the 2^n corners of [lo, hi]^n. Corner k has hi on axis
// i iff bit i of k is set
func BoxVertices(n int, lo, hi float64) [][]float64 {
	if n <= 0 || n > 30 {
		return nil
	}
	res := make([][]float64, 0, 1<<uint(n))
	for k := 0; k < 1<<uint(n); k++ {
		v := make([]float64, n)
		for i := 0; i < n; i++ {
			if k&(1<<uint(i)) != 0 {
				v[i] = hi
			} else {
				v[i] = lo
			}
		}
		res = append(res, v)
	}
	return res
}

// Dot product, no length checks
func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func finiteVector(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
