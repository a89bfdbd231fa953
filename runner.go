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

// runner
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// BuildReport is what a build run prints at the end
type BuildReport struct {
	RunID    string
	M, N     int
	Total    int // ids in the table
	Crossing int // ids whose hyperplane crosses the domain
	Inserted int
	Elapsed  time.Duration
	Height   int
	Leaves   int
	Cells    int
	Profile  []OpTotal
}

func (r *BuildReport) Write(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("Run %s, m=%d, n=%d", r.RunID, r.M, r.N),
		fmt.Sprintf("Found %d IDs in table %s, %d cross the domain", r.Total, sqliteTableName(r.M, r.N), r.Crossing),
		fmt.Sprintf("Number of intersection partitions: %d", r.Inserted),
		fmt.Sprintf("Time taken to insert all records into the VI Tree: %.2f seconds", r.Elapsed.Seconds()),
		fmt.Sprintf("Height of the VI Tree: %d", r.Height),
		fmt.Sprintf("Number of leaf nodes in the VI Tree: %d", r.Leaves),
		fmt.Sprintf("Number of cells in the VI Tree: %d", r.Cells),
	}
	for _, it := range lines {
		if _, err := fmt.Fprintln(w, it); err != nil {
			return err
		}
	}
	return writeProfile(w, r.Profile)
}

// SweepLine is the one-line form appended to the sweep output file
func (r *BuildReport) SweepLine() string {
	return fmt.Sprintf("m=%d, n=%d, Time taken: %.2f seconds, Height: %d, Leaf nodes: %d",
		r.M, r.N, r.Elapsed.Seconds(), r.Height, r.Leaves)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RunGenerate creates the population for m, n and saves it to the store
func RunGenerate(ctx context.Context, cfg *ProgramConfig, m, n int, out io.Writer) error {
	params := GeneratorParams{
		M: m, N: n,
		Low: cfg.Low, High: cfg.High,
		ConstantLow: cfg.ConstantLow, ConstantHigh: cfg.ConstantHigh,
		Seed: cfg.Seed,
	}
	if params.Seed == 0 {
		params.Seed = time.Now().UnixNano()
	}
	records, err := GenerateHyperplanes(params)
	if err != nil {
		return err
	}
	store, err := OpenStore(ctx, cfg.Backend, cfg.DBPath, m, n)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(ctx, records); err != nil {
		return err
	}
	where := cfg.DBPath
	if where == "" {
		where = "memory"
	}
	_, err = fmt.Fprintf(out, "Saved %d hyperplanes (m=%d, n=%d, seed %d) to %s\n",
		len(records), m, n, params.Seed, where)
	return err
}

// RunBuild inserts a sample of the stored hyperplanes into a fresh tree over
// [VarMin, VarMax]^n. Only ids that cross the domain are offered, and of
// those only the first Sample fraction of ALL ids
func RunBuild(ctx context.Context, cfg *ProgramConfig, m, n int, progressOut io.Writer) (*BuildReport, error) {
	if progressOut == nil {
		progressOut = io.Discard
	}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	base, err := OpenStore(ctx, cfg.Backend, cfg.DBPath, m, n)
	if err != nil {
		return nil, err
	}
	defer base.Close()
	store, err := NewCachedStore(base, cfg.CacheSize, metrics)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.TreeOptions()
	if err != nil {
		return nil, err
	}
	tree, err := NewTree(store, opts, metrics, Log)
	if err != nil {
		return nil, err
	}

	ids, err := store.AllIDs(ctx)
	if err != nil {
		return nil, err
	}
	bounding := BoxConstraints(n, cfg.VarMin, cfg.VarMax)
	vertices := BoxVertices(n, cfg.VarMin, cfg.VarMax)
	var crossing []int
	for _, id := range ids {
		h, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if Separates(h, vertices, cfg.Tolerance) {
			crossing = append(crossing, id)
		}
	}
	sampled := crossing
	if size := int(cfg.Sample * float64(len(ids))); size < len(sampled) {
		sampled = sampled[:size]
	}
	Log.Verbose(1, "run %s: %d ids, %d cross the domain, inserting %d", tree.RunID(),
		len(ids), len(crossing), len(sampled))

	bar := newProgressBar(cfg.Progress, len(sampled), progressOut)
	start := time.Now()
	for _, id := range sampled {
		if err := tree.Insert(ctx, ConstraintRef(id), bounding, vertices); err != nil {
			bar.Abort()
			return nil, err
		}
		bar.Increment()
	}
	elapsed := time.Since(start)
	bar.Wait()
	Log.Flush()

	if cfg.MetricsFile != "" {
		if err := WriteMetricsFile(cfg.MetricsFile, reg); err != nil {
			return nil, errors.Wrapf(err, "write metrics to %s", cfg.MetricsFile)
		}
	}
	if Log.VerbosityLevel() >= 3 {
		if err := tree.WriteLayers(progressOut); err != nil {
			return nil, err
		}
	}
	return &BuildReport{
		RunID:    tree.RunID(),
		M:        m,
		N:        n,
		Total:    len(ids),
		Crossing: len(crossing),
		Inserted: tree.Inserted(),
		Elapsed:  elapsed,
		Height:   tree.Height(),
		Leaves:   tree.LeafCount(),
		Cells:    tree.Size(),
		Profile:  metrics.Profile(),
	}, nil
}

// RunSweep builds for every dimension in cfg.Dims and appends a line per run
// to cfg.OutFile. Tables with no data yet are generated first
func RunSweep(ctx context.Context, cfg *ProgramConfig, m int, out io.Writer) error {
	from, to, err := ParseDims(cfg.Dims)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(cfg.OutFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "open sweep output")
	}
	defer f.Close()
	for n := from; n <= to; n++ {
		if err := ensureGenerated(ctx, cfg, m, n, out); err != nil {
			return err
		}
		Log.Printf("Running build for m=%d, n=%d", m, n)
		report, err := RunBuild(ctx, cfg, m, n, out)
		if err != nil {
			return errors.Wrapf(err, "build m=%d n=%d", m, n)
		}
		if _, err := fmt.Fprintln(f, report.SweepLine()); err != nil {
			return errors.Wrap(err, "write sweep output")
		}
		if _, err := fmt.Fprintln(out, report.SweepLine()); err != nil {
			return err
		}
	}
	Log.Printf("Performance results saved to %s", cfg.OutFile)
	return nil
}

func ensureGenerated(ctx context.Context, cfg *ProgramConfig, m, n int, out io.Writer) error {
	store, err := OpenStore(ctx, cfg.Backend, cfg.DBPath, m, n)
	if err != nil {
		return err
	}
	ids, err := store.AllIDs(ctx)
	store.Close()
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return nil
	}
	return RunGenerate(ctx, cfg, m, n, out)
}

// progressBar mirrors the original tqdm bar. A nil *progressBar is a
// disabled one
type progressBar struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newProgressBar(enabled bool, total int, w io.Writer) *progressBar {
	if !enabled || total == 0 {
		return nil
	}
	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(60))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Processing records "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Name(" "),
			decor.AverageETA(decor.ET_STYLE_GO),
		),
	)
	return &progressBar{p: p, bar: bar}
}

func (pb *progressBar) Increment() {
	if pb != nil {
		pb.bar.Increment()
	}
}

func (pb *progressBar) Abort() {
	if pb != nil {
		pb.bar.Abort(false)
		pb.p.Wait()
	}
}

func (pb *progressBar) Wait() {
	if pb != nil {
		pb.p.Wait()
	}
}
