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

// classify
package main

// Sideness of a set of vertices against a hyperplane
const (
	SIDENESS_ON        = 0x0 // every vertex within tolerance of the hyperplane
	SIDENESS_INTERSECT = 0x1 // strictly positive and strictly negative vertices both exist
	SIDENESS_POSITIVE  = 0x2
	SIDENESS_NEGATIVE  = 0x3
)

// Sideness is the full classification of a vertex set. OnPlane holds the
// vertices lying on the hyperplane (they are shared with the input, not
// copied) for anyone reconstructing the cut face
type Sideness struct {
	Positive int
	Negative int
	On       int
	OnPlane  [][]float64
}

// Side collapses counts into one of SIDENESS_* values. A set that touches the
// hyperplane from one side only is on that side
func (s Sideness) Side() int {
	switch {
	case s.Positive > 0 && s.Negative > 0:
		return SIDENESS_INTERSECT
	case s.Positive > 0:
		return SIDENESS_POSITIVE
	case s.Negative > 0:
		return SIDENESS_NEGATIVE
	}
	return SIDENESS_ON
}

func (s Sideness) Separates() bool {
	return s.Positive > 0 && s.Negative > 0
}

// PointOnSide returns +1, -1 or 0 (on the hyperplane, within tol)
func PointOnSide(h Hyperplane, x []float64, tol float64) int {
	v := h.Eval(x)
	if v > tol {
		return +1
	} else if v < -tol {
		return -1
	}
	return 0
}

// Separates reports whether some vertex is strictly positive and some other is
// strictly negative, beyond tol. Stops as soon as both were seen
func Separates(h Hyperplane, vertices [][]float64, tol float64) bool {
	pos, neg := false, false
	for _, v := range vertices {
		switch PointOnSide(h, v, tol) {
		case +1:
			pos = true
		case -1:
			neg = true
		}
		if pos && neg {
			return true
		}
	}
	return false
}

// Classify counts vertices on each side and collects the ones on the
// hyperplane itself
func Classify(h Hyperplane, vertices [][]float64, tol float64) Sideness {
	var s Sideness
	for _, v := range vertices {
		switch PointOnSide(h, v, tol) {
		case +1:
			s.Positive++
		case -1:
			s.Negative++
		default:
			s.On++
			s.OnPlane = append(s.OnPlane, v)
		}
	}
	return s
}
