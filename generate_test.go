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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHyperplanes(t *testing.T) {
	p := GeneratorParams{M: 6, N: 3, Low: -5, High: 5, ConstantLow: 0, ConstantHigh: 100, Seed: 42}
	records, err := GenerateHyperplanes(p)
	require.NoError(t, err)
	require.Len(t, records, p.Count())
	assert.Equal(t, 15, p.Count())
	for i, rec := range records {
		assert.Equal(t, i+1, rec.ID)
		require.Len(t, rec.Coef, 3)
		for _, a := range rec.Coef {
			// a difference of two coefficients in [-5, 5]
			assert.True(t, a >= -10 && a <= 10, "coefficient %g", a)
		}
		assert.True(t, rec.Constant >= 0 && rec.Constant <= 100)
	}

	again, err := GenerateHyperplanes(p)
	require.NoError(t, err)
	assert.Equal(t, records, again, "same seed, same records")

	p.Seed = 43
	other, err := GenerateHyperplanes(p)
	require.NoError(t, err)
	assert.NotEqual(t, records, other)
}

// Each hyperplane is the difference of two linear functions, so the
// differences around any triple of functions sum to zero
func TestGeneratedPairsAreDifferences(t *testing.T) {
	records, err := GenerateHyperplanes(GeneratorParams{M: 3, N: 4, High: 50, ConstantHigh: 1, Seed: 1})
	require.NoError(t, err)
	// ids 1, 2, 3 are pairs (0,1), (0,2), (1,2): f0-f1 + f1-f2 = f0-f2
	for k := 0; k < 4; k++ {
		assert.Equal(t, records[1].Coef[k], records[0].Coef[k]+records[2].Coef[k])
	}
}

func TestGeneratorParamsValidate(t *testing.T) {
	good := GeneratorParams{M: 2, N: 1, Low: 0, High: 0, ConstantLow: 3, ConstantHigh: 3}
	assert.NoError(t, good.Validate())
	bad := []GeneratorParams{
		{M: 1, N: 1},
		{M: 2, N: 0},
		{M: 2, N: 1, Low: 5, High: 4},
		{M: 2, N: 1, ConstantLow: 1, ConstantHigh: 0},
	}
	for _, p := range bad {
		assert.Error(t, p.Validate(), "%+v", p)
		_, err := GenerateHyperplanes(p)
		assert.Error(t, err)
	}
}

func TestGenerateFunctionsRange(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	funcs := GenerateFunctions(rng, 20, 3, 2, 4)
	require.Len(t, funcs, 20)
	seen := map[int]bool{}
	for _, f := range funcs {
		require.Len(t, f, 3)
		for _, a := range f {
			assert.True(t, a >= 2 && a <= 4)
			seen[a] = true
		}
	}
	assert.Len(t, seen, 3, "all values of a small range show up")
}
