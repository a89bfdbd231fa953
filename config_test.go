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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BACKEND_SQLITE, cfg.Backend)
	assert.Equal(t, 0.2, cfg.Sample)
	assert.Equal(t, "lazy", cfg.Strategy)

	opts, err := cfg.TreeOptions()
	require.NoError(t, err)
	assert.Equal(t, StrategyLazyVertices, opts.Strategy)
	assert.Equal(t, 10.0, opts.VarMax)
	assert.Equal(t, DEFAULT_MAX_VISITS, opts.MaxVisits)
	assert.Equal(t, 0.01, opts.SnapPrecision)
}

func TestConfigValidateRejects(t *testing.T) {
	bad := map[string]func(*ProgramConfig){
		"backend":    func(c *ProgramConfig) { c.Backend = "mysql" },
		"sample":     func(c *ProgramConfig) { c.Sample = 0 },
		"sample>1":   func(c *ProgramConfig) { c.Sample = 1.5 },
		"strategy":   func(c *ProgramConfig) { c.Strategy = "random" },
		"visits":     func(c *ProgramConfig) { c.MaxVisits = 0 },
		"workers":    func(c *ProgramConfig) { c.Workers = -1 },
		"tolerance":  func(c *ProgramConfig) { c.Tolerance = 0 },
		"bounds":     func(c *ProgramConfig) { c.VarMin = 10 },
		"coef range": func(c *ProgramConfig) { c.Low, c.High = 3, 2 },
		"constants":  func(c *ProgramConfig) { c.ConstantLow = 200 },
		"dims":       func(c *ProgramConfig) { c.Dims = "7..3" },
		"timeout":    func(c *ProgramConfig) { c.SolveTimeout = -time.Second },
	}
	for name, change := range bad {
		cfg := DefaultConfig()
		change(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestConfigLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitree.yaml")
	yaml := `backend: badger
var_max: 20
strategy: eager
target: [1, 2.5]
solve_timeout: 250ms
tighten: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BACKEND_BADGER, cfg.Backend)
	assert.Equal(t, 20.0, cfg.VarMax)
	assert.Equal(t, []float64{1, 2.5}, cfg.Target)
	assert.Equal(t, 250*time.Millisecond, cfg.SolveTimeout)
	assert.True(t, cfg.Tighten)
	// untouched keys keep their defaults
	assert.Equal(t, 0.2, cfg.Sample)

	opts, err := cfg.TreeOptions()
	require.NoError(t, err)
	assert.Equal(t, StrategyEagerVertices, opts.Strategy)
	assert.True(t, opts.TightenConstraints)

	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("sample: [oops"), 0644))
	assert.Error(t, cfg.LoadFile(broken))
}

func TestParsePoint(t *testing.T) {
	pt, err := ParsePoint(" 1, 2.5 ,-3")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3}, pt)
	pt, err = ParsePoint("")
	require.NoError(t, err)
	assert.Nil(t, pt)
	_, err = ParsePoint("1,x")
	assert.Error(t, err)
}

func TestParseDims(t *testing.T) {
	from, to, err := ParseDims("3..10")
	require.NoError(t, err)
	assert.Equal(t, 3, from)
	assert.Equal(t, 10, to)
	from, to, err = ParseDims("5")
	require.NoError(t, err)
	assert.Equal(t, 5, from)
	assert.Equal(t, 5, to)
	for _, s := range []string{"", "0..2", "4..3", "a..b", "3.."} {
		_, _, err := ParseDims(s)
		assert.Error(t, err, s)
	}
}
