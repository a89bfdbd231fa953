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
	"testing"
)

func TestRoundPOW2(t *testing.T) {
	cases := map[uint32]uint32{0: 0, 1: 1, 2: 2, 3: 4, 5: 8, 16: 16, 17: 32, 1000: 1024}
	for in, want := range cases {
		if got := RoundPOW2_Uint32(in); got != want {
			t.Errorf("RoundPOW2_Uint32(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRingCellFIFO(t *testing.T) {
	r := CreateRingCell(5)
	cells := make([]*Cell, 10)
	for i := range cells {
		cells[i] = &Cell{Ref: ConstraintRef(i + 1)}
	}
	// 10 cells through 8 slots, so the indices wrap
	next := 0
	for i, c := range cells {
		r.Enqueue(c)
		if i%2 == 1 {
			if got := r.Dequeue(); got != cells[next] {
				t.Fatalf("dequeued ref %d, want %d", got.Ref, cells[next].Ref)
			}
			next++
		}
	}
	if r.Size() != 5 {
		t.Errorf("Size() = %d, want 5", r.Size())
	}
	for !r.Empty() {
		if got := r.Dequeue(); got != cells[next] {
			t.Fatalf("dequeued ref %d, want %d", got.Ref, cells[next].Ref)
		}
		next++
	}
	if next != len(cells) {
		t.Errorf("dequeued %d cells, want %d", next, len(cells))
	}
}

func TestRingCellDrain(t *testing.T) {
	r := CreateRingCell(2)
	r.Enqueue(&Cell{})
	r.Enqueue(&Cell{})
	if r.Size() != 2 {
		t.Errorf("ring holds %d cells, want 2", r.Size())
	}
	for !r.Empty() {
		r.Dequeue()
	}
	if r.Size() != 0 {
		t.Errorf("ring not empty after draining")
	}
	for _, c := range r.buf {
		if c != nil {
			t.Errorf("Dequeue left a cell referenced in the buffer")
		}
	}
	if CreateRingCell(0).capacity != 1 {
		t.Errorf("zero capacity ring must still hold one cell")
	}
}
