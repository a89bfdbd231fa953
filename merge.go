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

// merge
package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// RefList is a persistent list of signed refs, newest first. A child shares
// its parent's list as the tail and only adds a single node, so pushing is
// O(1) and nothing is ever copied. The nil *RefList is the empty list
type RefList struct {
	ref  ConstraintRef
	next *RefList
	n    int
}

// NewRefList builds a list whose Slice() is refs, in the same order
func NewRefList(refs ...ConstraintRef) *RefList {
	var l *RefList
	for i := len(refs) - 1; i >= 0; i-- {
		l = l.Push(refs[i])
	}
	return l
}

// Push returns a new list with ref at the head; l itself is unchanged
func (l *RefList) Push(ref ConstraintRef) *RefList {
	return &RefList{ref: ref, next: l, n: l.Len() + 1}
}

func (l *RefList) Len() int {
	if l == nil {
		return 0
	}
	return l.n
}

// Head is the newest ref, 0 for an empty list
func (l *RefList) Head() ConstraintRef {
	if l == nil {
		return 0
	}
	return l.ref
}

func (l *RefList) Tail() *RefList {
	if l == nil {
		return nil
	}
	return l.next
}

func (l *RefList) Slice() []ConstraintRef {
	res := make([]ConstraintRef, 0, l.Len())
	for it := l; it != nil; it = it.Tail() {
		res = append(res, it.Head())
	}
	return res
}

// How a negative ref turns the stored hyperplane into a half-space
type SignConvention int

const (
	// −id is the complement of +id: −a·x >= −b. Used by the tree
	SignConventionComplement SignConvention = iota
	// −id negates the coefficients only: −a·x >= b. Only for reading data
	// produced by the older LP-only variant
	SignConventionNegateCoef
)

// Resolve fetches ref's hyperplane oriented as the half-space ref denotes
func Resolve(ctx context.Context, store ConstraintStore, ref ConstraintRef,
	conv SignConvention) (Hyperplane, error) {
	if ref == 0 {
		return Hyperplane{}, ErrInvalidRef
	}
	h, err := store.Get(ctx, ref.ID())
	if err != nil {
		return Hyperplane{}, errors.Wrapf(err, "resolve ref %d", ref)
	}
	if len(h.Coef) != store.Dimension() {
		return Hyperplane{}, errors.Wrapf(ErrDimensionMismatch, "hyperplane %d has %d coefficients, store dimension is %d",
			ref.ID(), len(h.Coef), store.Dimension())
	}
	if ref.Positive() {
		return h, nil
	}
	if conv == SignConventionNegateCoef {
		return h.NegateCoef(), nil
	}
	return h.Complement(), nil
}

// Merge returns the full half-space description of a cell: the initial
// constraints followed by every resolved ref, newest first. The result is a
// fresh slice; initial is only read
func Merge(ctx context.Context, store ConstraintStore, refs *RefList,
	initial []Hyperplane, conv SignConvention) ([]Hyperplane, error) {
	res := make([]Hyperplane, len(initial), len(initial)+refs.Len())
	copy(res, initial)
	for it := refs; it != nil; it = it.Tail() {
		h, err := Resolve(ctx, store, it.Head(), conv)
		if err != nil {
			return nil, err
		}
		res = append(res, h)
	}
	return res, nil
}

// mergeTimed is Merge with the store reads accounted to metrics
func mergeTimed(ctx context.Context, store ConstraintStore, refs *RefList,
	initial []Hyperplane, conv SignConvention, metrics *Metrics) ([]Hyperplane, error) {
	defer metrics.Since(OP_STORE_READ, time.Now())
	return Merge(ctx, store, refs, initial, conv)
}

// TightRefs keeps the refs whose hyperplane passes through at least minTight
// of the vertices (within tol), preserving order. A facet of an n-dimensional
// polytope contains at least n vertices, so with minTight = n whatever is
// dropped is redundant for the cell the vertices came from
func TightRefs(ctx context.Context, store ConstraintStore, refs *RefList,
	vertices [][]float64, minTight int, tol float64) (*RefList, error) {
	kept := make([]ConstraintRef, 0, refs.Len())
	for it := refs; it != nil; it = it.Tail() {
		// sign doesn't matter for |a·x − b| under the complement convention
		h, err := Resolve(ctx, store, ConstraintRef(it.Head().ID()), SignConventionComplement)
		if err != nil {
			return nil, err
		}
		touching := 0
		for _, v := range vertices {
			if PointOnSide(h, v, tol) == 0 {
				touching++
				if touching >= minTight {
					break
				}
			}
		}
		if touching >= minTight {
			kept = append(kept, it.Head())
		}
	}
	if len(kept) == refs.Len() {
		return refs, nil
	}
	return NewRefList(kept...), nil
}
