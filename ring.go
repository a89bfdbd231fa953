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

// Implements ring buffer (a fixed size power of two queue). Not intended to
// be thread-safe or such, just when I need a fast queue. The tree uses it for
// level-by-level walks, where the total number of cells bounds how many can
// ever be queued at once
// https://www.snellman.net/blog/archive/2016-12-13-ring-buffers/

const MAX_RING_CAPACITY = uint32(2147483648)

// RingCell is so called because the values stored in it are cells
// Beware: the routines perform no overflow or underflow checking for Enqueue's
// and Dequeue's. The end user is solely responsible to ascertain they don't
// dequeue an empty ring or enqueue a full ring.
type RingCell struct {
	read     uint32
	write    uint32
	capacity uint32 // never changes after initialization
	buf      []*Cell
}

// The argument capacity is how much data you expect to hold in ring buffer.
// This function will upsize it automatically to a power of two if non-power of
// two capacity is provided.
func CreateRingCell(capacity uint32) *RingCell {
	iCap := RoundPOW2_Uint32(capacity)
	if iCap < capacity {
		Log.Panic("Integer overflow when computing ring capacity (before rounding up to power of two: %d). Specified capacity clearly exceeds the possible maximum\n",
			capacity)
	}
	if iCap > MAX_RING_CAPACITY {
		Log.Panic("Exceeds maximum ring capacity: %d (%d rounded up to power of two)\n",
			iCap, capacity)
	}
	if iCap == 0 {
		iCap = 1
	}
	return &RingCell{
		capacity: iCap,
		buf:      make([]*Cell, iCap),
	}
}

func RoundPOW2_Uint32(x uint32) uint32 {
	if x <= 2 {
		return x
	}

	x--

	for tmp := x >> 1; tmp != 0; tmp >>= 1 {
		x |= tmp
	}

	return x + 1
}

func (r *RingCell) mask(val uint32) uint32 {
	return val & (r.capacity - 1)
}

func (r *RingCell) Enqueue(item *Cell) {
	r.buf[r.mask(r.write)] = item
	r.write++
}

func (r *RingCell) Dequeue() *Cell {
	idx := r.mask(r.read)
	res := r.buf[idx]
	r.buf[idx] = nil
	r.read++
	return res
}

func (r *RingCell) Empty() bool {
	return r.read == r.write
}

func (r *RingCell) Size() uint32 {
	return r.write - r.read
}
