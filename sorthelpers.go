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

// sorthelpers
package main

// Implementations of sort.Interface for _stock_ Go types go here.
// Note: don't add implementations of sort.Interface of types invented for
// the project, keep those in the file where those are declared

// VertexSlice orders points lexicographically by coordinates
type VertexSlice [][]float64

func (x VertexSlice) Len() int { return len(x) }
func (x VertexSlice) Less(i, j int) bool {
	a, b := x[i], x[j]
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return len(a) < len(b)
}
func (x VertexSlice) Swap(i, j int) { x[i], x[j] = x[j], x[i] }

// Int64Slice is the same for grid-snapped points
type Int64Slice [][]int64

func (x Int64Slice) Len() int { return len(x) }
func (x Int64Slice) Less(i, j int) bool {
	a, b := x[i], x[j]
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return len(a) < len(b)
}
func (x Int64Slice) Swap(i, j int) { x[i], x[j] = x[j], x[i] }
