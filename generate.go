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

// generate
package main

import (
	"math/rand"

	"github.com/pkg/errors"
)

// GeneratorParams describe a random population: M linear functions in N
// dimensions with integer coefficients in [Low, High], and a random integer
// constant in [ConstantLow, ConstantHigh] for the difference of each pair
type GeneratorParams struct {
	M, N                      int
	Low, High                 int
	ConstantLow, ConstantHigh int
	Seed                      int64
}

func (p GeneratorParams) Validate() error {
	switch {
	case p.M < 2:
		return errors.Errorf("need at least 2 functions, got %d", p.M)
	case p.N < 1:
		return errors.Errorf("dimension must be positive, got %d", p.N)
	case p.Low > p.High:
		return errors.Errorf("coefficient range [%d, %d] is empty", p.Low, p.High)
	case p.ConstantLow > p.ConstantHigh:
		return errors.Errorf("constant range [%d, %d] is empty", p.ConstantLow, p.ConstantHigh)
	}
	return nil
}

// Count is how many hyperplanes GenerateHyperplanes makes
func (p GeneratorParams) Count() int {
	return p.M * (p.M - 1) / 2
}

func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// GenerateFunctions returns m coefficient vectors of length n
func GenerateFunctions(rng *rand.Rand, m, n, low, high int) [][]int {
	res := make([][]int, m)
	for i := range res {
		f := make([]int, n)
		for j := range f {
			f[j] = randInt(rng, low, high)
		}
		res[i] = f
	}
	return res
}

// GenerateHyperplanes makes f_i − f_j = c for every pair i < j, in that
// order, with ids counting from 1. The same params always give the same
// records
func GenerateHyperplanes(p GeneratorParams) ([]HyperplaneRecord, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(p.Seed))
	funcs := GenerateFunctions(rng, p.M, p.N, p.Low, p.High)
	res := make([]HyperplaneRecord, 0, p.Count())
	id := 1
	for i := 0; i < p.M; i++ {
		for j := i + 1; j < p.M; j++ {
			coef := make([]float64, p.N)
			for k := range coef {
				coef[k] = float64(funcs[i][k] - funcs[j][k])
			}
			res = append(res, HyperplaneRecord{
				ID: id,
				Hyperplane: Hyperplane{
					Coef:     coef,
					Constant: float64(randInt(rng, p.ConstantLow, p.ConstantHigh)),
				},
			})
			id++
		}
	}
	return res, nil
}
