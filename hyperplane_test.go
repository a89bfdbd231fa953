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

package main

import (
	"math"
	"testing"
)

func TestHyperplaneEval(t *testing.T) {
	h := Hyperplane{Coef: []float64{1, 1}, Constant: 10}
	if v := h.Eval([]float64{3, 4}); v != -3 {
		t.Errorf("Eval = %g, want -3", v)
	}
	if !h.Satisfied([]float64{5, 5}, 0) {
		t.Errorf("point on the hyperplane must satisfy it")
	}
	if h.Satisfied([]float64{5, 4.9}, 0.01) {
		t.Errorf("point below by 0.1 must not satisfy with tolerance 0.01")
	}
	if !h.Satisfied([]float64{5, 4.995}, 0.01) {
		t.Errorf("point below by 0.005 must satisfy with tolerance 0.01")
	}
}

func TestComplementIsOppositeHalfSpace(t *testing.T) {
	h := Hyperplane{Coef: []float64{2, -1}, Constant: 3}
	c := h.Complement()
	points := [][]float64{{0, 0}, {5, 1}, {-2, 7}, {1.5, 0}}
	for _, p := range points {
		if h.Eval(p)+c.Eval(p) != 0 {
			t.Errorf("Eval(h)+Eval(complement) at %v is %g, want 0", p, h.Eval(p)+c.Eval(p))
		}
	}
	if h.Coef[0] != 2 || h.Constant != 3 {
		t.Errorf("Complement modified its receiver")
	}
	// Negating the coefficients alone is the complement only through the origin
	n := h.NegateCoef()
	if n.Constant != 3 || n.Coef[0] != -2 || n.Coef[1] != 1 {
		t.Errorf("NegateCoef = %v", n)
	}
	if n.Eval([]float64{0, 0})+h.Eval([]float64{0, 0}) == 0 {
		t.Errorf("NegateCoef must differ from complement when constant != 0")
	}
}

func TestTrivialHyperplane(t *testing.T) {
	if !(Hyperplane{Coef: []float64{0, 0, 0}, Constant: 4}).Trivial() {
		t.Errorf("all-zero coefficients must be trivial")
	}
	if (Hyperplane{Coef: []float64{0, 1e-9}}).Trivial() {
		t.Errorf("nonzero coefficient must not be trivial")
	}
}

func TestHyperplaneString(t *testing.T) {
	h := Hyperplane{Coef: []float64{1, -2.5}, Constant: 7}
	if s := h.String(); s != "1x1 + -2.5x2 = 7" {
		t.Errorf("String() = %q", s)
	}
}

func TestConstraintRef(t *testing.T) {
	r := ConstraintRef(-7)
	if r.ID() != 7 || r.Positive() || r.Opposite() != 7 {
		t.Errorf("ref -7: ID=%d Positive=%v Opposite=%d", r.ID(), r.Positive(), r.Opposite())
	}
	if !ConstraintRef(3).Positive() || ConstraintRef(3).ID() != 3 {
		t.Errorf("ref 3 misreported")
	}
}

func TestBoxConstraintsAndVertices(t *testing.T) {
	box := BoxConstraints(3, -1, 2)
	if len(box) != 6 {
		t.Fatalf("got %d constraints, want 6", len(box))
	}
	verts := BoxVertices(3, -1, 2)
	if len(verts) != 8 {
		t.Fatalf("got %d vertices, want 8", len(verts))
	}
	for _, v := range verts {
		for i, h := range box {
			if !h.Satisfied(v, 0) {
				t.Errorf("corner %v violates box constraint %d (%v)", v, i, h)
			}
		}
		// every corner is on exactly 3 of the 6 faces
		on := 0
		for _, h := range box {
			if h.Eval(v) == 0 {
				on++
			}
		}
		if on != 3 {
			t.Errorf("corner %v lies on %d faces, want 3", v, on)
		}
	}
	if got := BoxVertices(2, 0, 10)[3]; got[0] != 10 || got[1] != 10 {
		t.Errorf("corner 3 = %v, want [10 10]", got)
	}
	if BoxVertices(0, 0, 1) != nil {
		t.Errorf("zero-dimensional box must have no vertices")
	}
}

func TestFiniteVector(t *testing.T) {
	if !finiteVector([]float64{1, -2, 0}) {
		t.Errorf("finite vector rejected")
	}
	if finiteVector([]float64{1, math.NaN()}) || finiteVector([]float64{math.Inf(-1)}) {
		t.Errorf("non-finite vector accepted")
	}
}
