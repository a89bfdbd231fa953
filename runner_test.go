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
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPlanes copies planeStore into the sqlite table for m = 7, n = 2
func seedPlanes(t *testing.T, cfg *ProgramConfig) {
	t.Helper()
	ctx := context.Background()
	src := planeStore()
	ids, err := src.AllIDs(ctx)
	require.NoError(t, err)
	var records []HyperplaneRecord
	for _, id := range ids {
		h, err := src.Get(ctx, id)
		require.NoError(t, err)
		records = append(records, HyperplaneRecord{ID: id, Hyperplane: h})
	}
	store, err := OpenStore(ctx, cfg.Backend, cfg.DBPath, 7, 2)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Save(ctx, records))
}

func testConfig(t *testing.T) *ProgramConfig {
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "intersections.db")
	cfg.Progress = false
	cfg.Seed = 17
	return cfg
}

func TestRunBuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sample = 0.5
	cfg.MetricsFile = filepath.Join(t.TempDir(), "metrics.prom")
	seedPlanes(t, cfg)

	report, err := RunBuild(context.Background(), cfg, 7, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, report.Total)
	// 3 misses the box and 7 only touches it
	assert.Equal(t, 5, report.Crossing)
	// half of all 7 ids, rounded down, taken from the crossing ones: 1, 2, 4
	assert.Equal(t, 3, report.Inserted)
	assert.Equal(t, 3, report.Height)
	assert.Equal(t, 8, report.Leaves)
	assert.Equal(t, 15, report.Cells)
	assert.NotEmpty(t, report.RunID)
	assert.NotEmpty(t, report.Profile)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))
	out := buf.String()
	assert.Contains(t, out, "Found 7 IDs in table intersections_m7_n2, 5 cross the domain")
	assert.Contains(t, out, "Number of intersection partitions: 3")
	assert.Contains(t, out, "Height of the VI Tree: 3")
	assert.Contains(t, out, "Number of leaf nodes in the VI Tree: 8")
	assert.Contains(t, out, "Total time in enumerate:")
	assert.True(t, strings.HasPrefix(report.SweepLine(), "m=7, n=2, Time taken: "))
	assert.True(t, strings.HasSuffix(report.SweepLine(), "Height: 3, Leaf nodes: 8"))

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "vitree_insertions_total 3")
}

func TestRunBuildStrategies(t *testing.T) {
	leaves := map[Strategy]int{
		StrategyLazyVertices:  8,
		StrategyEagerVertices: 6,
		StrategyFeasibility:   6,
	}
	for _, strategy := range allStrategies {
		cfg := testConfig(t)
		cfg.Sample = 0.5
		cfg.Strategy = strategy.String()
		seedPlanes(t, cfg)
		report, err := RunBuild(context.Background(), cfg, 7, 2, nil)
		require.NoError(t, err, strategy.String())
		assert.Equal(t, leaves[strategy], report.Leaves, strategy.String())
	}
}

func TestRunBuildEmptyTable(t *testing.T) {
	cfg := testConfig(t)
	report, err := RunBuild(context.Background(), cfg, 5, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 0, report.Height)
	assert.Equal(t, 0, report.Leaves)
}

func TestRunBuildBadStrategy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Strategy = "sideways"
	_, err := RunBuild(context.Background(), cfg, 5, 3, nil)
	assert.Error(t, err)
}

func TestRunGenerate(t *testing.T) {
	for _, backend := range []string{BACKEND_SQLITE, BACKEND_BADGER} {
		cfg := testConfig(t)
		cfg.Backend = backend
		if backend == BACKEND_BADGER {
			cfg.DBPath = t.TempDir()
		}
		var buf bytes.Buffer
		require.NoError(t, RunGenerate(context.Background(), cfg, 5, 3, &buf))
		assert.Contains(t, buf.String(), "Saved 10 hyperplanes (m=5, n=3, seed 17)")

		store, err := OpenStore(context.Background(), cfg.Backend, cfg.DBPath, 5, 3)
		require.NoError(t, err)
		ids, err := store.AllIDs(context.Background())
		store.Close()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids)
	}
}

func TestRunSweep(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dims = "2..3"
	cfg.OutFile = filepath.Join(t.TempDir(), "performance.txt")
	var buf bytes.Buffer
	require.NoError(t, RunSweep(context.Background(), cfg, 4, &buf))
	// a second sweep appends
	require.NoError(t, RunSweep(context.Background(), cfg, 4, &buf))

	data, err := os.ReadFile(cfg.OutFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "m=4, n=2, "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "m=4, n=3, "), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "m=4, n=2, "), lines[2])
	// data is generated only once per table
	assert.Equal(t, 2, strings.Count(buf.String(), "Saved 6 hyperplanes"))
}

func TestProgressBarDisabled(t *testing.T) {
	var pb *progressBar
	pb.Increment()
	pb.Abort()
	pb.Wait()
	assert.Nil(t, newProgressBar(false, 10, os.Stderr))
	assert.Nil(t, newProgressBar(true, 0, os.Stderr))
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	pb := newProgressBar(true, 3, &buf)
	require.NotNil(t, pb)
	for i := 0; i < 3; i++ {
		pb.Increment()
	}
	pb.Wait()

	// an aborted bar must not leave Wait hanging
	pb = newProgressBar(true, 5, &buf)
	pb.Increment()
	pb.Abort()
}
