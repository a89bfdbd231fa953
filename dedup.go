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

// dedup
package main

import (
	"encoding/binary"
	"math"
	"sort"
	"sync"
)

type DedupMode int

const (
	// Sets are equal when their coordinates are bit-for-bit equal
	DedupExact DedupMode = iota
	// Coordinates are snapped to a grid of Precision first
	DedupSnap
)

const DEFAULT_MAX_VISITS = 1

// Grid the build command snaps vertex coordinates to before comparing sets
const DEFAULT_DEDUP_PRECISION = 0.01

// Deduplicator counts how many times each vertex set was produced during one
// construction run. A set seen more than MaxVisits times belongs to a region
// that was already reached some other way. Safe for concurrent use, but the
// tree only calls it from the goroutine applying a wave, so that counts do
// not depend on scheduling
type Deduplicator struct {
	Mode      DedupMode
	Precision float64
	MaxVisits int

	mu     sync.Mutex
	log    []string // every observed set, in order
	counts map[string]int
}

func NewDeduplicator(maxVisits int) *Deduplicator {
	if maxVisits < 1 {
		maxVisits = DEFAULT_MAX_VISITS
	}
	return &Deduplicator{
		Mode:      DedupExact,
		MaxVisits: maxVisits,
		counts:    make(map[string]int),
	}
}

// NewSnapDeduplicator compares sets after snapping to a grid of precision
func NewSnapDeduplicator(maxVisits int, precision float64) *Deduplicator {
	d := NewDeduplicator(maxVisits)
	if precision > 0 {
		d.Mode = DedupSnap
		d.Precision = precision
	}
	return d
}

// Observe records the (unordered) vertex set and returns how many times an
// equal set has been seen, this time included
func (d *Deduplicator) Observe(vertices [][]float64) int {
	key := d.key(vertices)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = append(d.log, key)
	d.counts[key]++
	return d.counts[key]
}

// Redundant tells whether a count returned by Observe is over the threshold
func (d *Deduplicator) Redundant(count int) bool {
	return count > d.MaxVisits
}

// Len is the number of observations so far
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.log)
}

// Distinct is the number of different sets observed so far
func (d *Deduplicator) Distinct() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.counts)
}

func (d *Deduplicator) snap(x float64) int64 {
	if d.Mode == DedupSnap {
		return int64(math.Round(x / d.Precision))
	}
	if x == 0 {
		x = 0 // fold -0 into +0
	}
	return int64(math.Float64bits(x))
}

// key is a canonical encoding of the set: points as integer tuples, sorted,
// repeated points dropped
func (d *Deduplicator) key(vertices [][]float64) string {
	pts := make([][]int64, len(vertices))
	for i, v := range vertices {
		p := make([]int64, len(v))
		for j, x := range v {
			p[j] = d.snap(x)
		}
		pts[i] = p
	}
	sort.Sort(Int64Slice(pts))
	var buf []byte
	var tmp [8]byte
	for i, p := range pts {
		if i > 0 && equalInt64s(pts[i-1], p) {
			continue
		}
		binary.LittleEndian.PutUint64(tmp[:], uint64(len(p)))
		buf = append(buf, tmp[:]...)
		for _, c := range p {
			binary.LittleEndian.PutUint64(tmp[:], uint64(c))
			buf = append(buf, tmp[:]...)
		}
	}
	return string(buf)
}

func equalInt64s(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
