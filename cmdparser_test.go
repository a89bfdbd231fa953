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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(cfg *ProgramConfig, args ...string) (string, error) {
	root := NewRootCommand(cfg)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommandGenerateAndBuild(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cmd.db")
	out, err := runCommand(DefaultConfig(), "generate", "5", "2", "--db", db, "--seed", "3",
		"--low=-5", "--high=5", "--constant-low=-10", "--constant-high=10")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 10 hyperplanes (m=5, n=2, seed 3)")

	cfg := DefaultConfig()
	out, err = runCommand(cfg, "build", "5", "2", "--db", db, "--sample", "1",
		"--strategy", "eager", "--progress=false", "--workers", "2", "--var-min=-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 10 IDs in table intersections_m5_n2")
	assert.Contains(t, out, "Height of the VI Tree:")
	assert.Equal(t, "eager", cfg.Strategy)
	assert.Equal(t, 1.0, cfg.Sample)
	assert.Equal(t, -10.0, cfg.VarMin)
	assert.Equal(t, 2, cfg.Workers)
}

func TestCommandDryRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "never.db")
	out, err := runCommand(DefaultConfig(), "generate", "4", "3", "--db", db, "--dry-run", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 6 hyperplanes (m=4, n=3, seed 1) to memory")
	_, err = os.Stat(db)
	assert.True(t, os.IsNotExist(err), "dry run must not touch the database")
}

func TestCommandBadArguments(t *testing.T) {
	cases := [][]string{
		{"build", "x", "2"},
		{"build", "5", "0"},
		{"build", "1", "2"},
		{"build", "5"},
		{"sweep", "m"},
		{"build", "5", "2", "--strategy", "nope"},
		{"build", "5", "2", "--sample", "2"},
		{"build", "5", "2", "--target", "1,a"},
		{"generate", "5", "2", "--low", "9", "--high", "1"},
		{"build", "5", "2", "--backend", "mongo"},
	}
	for _, args := range cases {
		cfg := DefaultConfig()
		cfg.DBPath = filepath.Join(t.TempDir(), "bad.db")
		_, err := runCommand(cfg, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitree.yaml")
	yaml := "strategy: feasibility\nsample: 0.5\nworkers: 3\ndb: " + filepath.Join(dir, "from-config.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg := DefaultConfig()
	_, err := runCommand(cfg, "build", "4", "2", "--config", path, "--strategy", "eager",
		"--target", "1,1", "-vv", "--progress=false")
	require.NoError(t, err)
	// flags given on the command line win over the file
	assert.Equal(t, "eager", cfg.Strategy)
	assert.Equal(t, 2, cfg.VerbosityLevel)
	// the rest comes from the file
	assert.Equal(t, 0.5, cfg.Sample)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, filepath.Join(dir, "from-config.db"), cfg.DBPath)
	assert.Equal(t, []float64{1, 1}, cfg.Target)
	Log.SetVerbosity(0)
}

func TestCommandVersion(t *testing.T) {
	out, err := runCommand(DefaultConfig(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, VERSION)
}
