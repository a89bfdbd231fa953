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

// cmdparser
package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCommand builds the command tree over cfg. Flags write straight into
// cfg; a --config file is applied first and explicitly given flags win over it
func NewRootCommand(cfg *ProgramConfig) *cobra.Command {
	var configFile, target string
	root := &cobra.Command{
		Use:           "vitree",
		Short:         "Build VI trees over arrangements of random hyperplanes",
		Version:       VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := applyConfigFile(cmd.Flags(), cfg, configFile); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("target") {
				pt, err := ParsePoint(target)
				if err != nil {
					return errors.Wrap(err, "--target")
				}
				cfg.Target = pt
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			Log.SetVerbosity(cfg.VerbosityLevel)
			Log.Printf("VITree ver %s", VERSION)
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DBPath, "db", cfg.DBPath, "database file (badger: directory, empty for in-memory)")
	pf.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: sqlite or badger")
	pf.StringVar(&configFile, "config", "", "YAML file with default settings")
	pf.CountVarP(&cfg.VerbosityLevel, "verbose", "v", "more output (repeat for even more)")

	root.AddCommand(newGenerateCommand(cfg), newBuildCommand(cfg, &target), newSweepCommand(cfg, &target))
	return root
}

// applyConfigFile loads the YAML on top of cfg, then puts back the values of
// flags the user set explicitly
func applyConfigFile(flags *pflag.FlagSet, cfg *ProgramConfig, path string) error {
	given := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) {
		given[f.Name] = f.Value.String()
	})
	if err := cfg.LoadFile(path); err != nil {
		return err
	}
	for name, val := range given {
		if err := flags.Set(name, val); err != nil {
			return errors.Wrapf(err, "--%s", name)
		}
	}
	return nil
}

func newGenerateCommand(cfg *ProgramConfig) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "generate M N",
		Short: "Generate M random linear functions over N variables and store their pairwise differences",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, n, err := parseMN(args)
			if err != nil {
				return err
			}
			if !dryRun {
				return RunGenerate(cmd.Context(), cfg, m, n, cmd.OutOrStdout())
			}
			dry := *cfg
			dry.Backend = BACKEND_BADGER
			dry.DBPath = ""
			return RunGenerate(cmd.Context(), &dry, m, n, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Low, "low", cfg.Low, "lowest coefficient")
	f.IntVar(&cfg.High, "high", cfg.High, "highest coefficient")
	f.IntVar(&cfg.ConstantLow, "constant-low", cfg.ConstantLow, "lowest constant")
	f.IntVar(&cfg.ConstantHigh, "constant-high", cfg.ConstantHigh, "highest constant")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, 0 picks one from the clock")
	f.BoolVar(&dryRun, "dry-run", false, "generate into an in-memory store only")
	return cmd
}

func addBuildFlags(f *pflag.FlagSet, cfg *ProgramConfig, target *string) {
	f.Float64Var(&cfg.VarMin, "var-min", cfg.VarMin, "lower bound of the domain on every axis")
	f.Float64Var(&cfg.VarMax, "var-max", cfg.VarMax, "upper bound of the domain on every axis")
	f.Float64Var(&cfg.Sample, "sample", cfg.Sample, "fraction of all ids to insert")
	f.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "lazy, eager or feasibility")
	f.IntVar(&cfg.MaxVisits, "max-visits", cfg.MaxVisits, "times a vertex set may be produced before cells repeating it are skipped")
	f.StringVar(target, "target", "", "comma separated point; cells not containing it are pruned")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "goroutines per wave, 0 for one per core")
	f.BoolVar(&cfg.Tighten, "tighten", cfg.Tighten, "drop refs that are not tight at any vertex")
	f.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "side classification tolerance")
	f.DurationVar(&cfg.SolveTimeout, "solve-timeout", cfg.SolveTimeout, "time limit per LP solve, 0 for none")
	f.IntVar(&cfg.MaxCandidates, "max-candidates", cfg.MaxCandidates, "cap on vertex candidates per cell, 0 for none")
	f.Float64Var(&cfg.DedupPrecision, "dedup-precision", cfg.DedupPrecision, "grid for comparing vertex sets, 0 for exact")
	f.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "hyperplanes kept in the read cache")
	f.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write prometheus metrics to this file when done")
	f.BoolVar(&cfg.Progress, "progress", cfg.Progress, "show a progress bar")
}

func newBuildCommand(cfg *ProgramConfig, target *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build M N",
		Short: "Insert a sample of the stored hyperplanes into a VI tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, n, err := parseMN(args)
			if err != nil {
				return err
			}
			report, err := RunBuild(cmd.Context(), cfg, m, n, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout())
		},
	}
	addBuildFlags(cmd.Flags(), cfg, target)
	return cmd
}

func newSweepCommand(cfg *ProgramConfig, target *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep M",
		Short: "Run build for a range of dimensions and append the results to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := strconv.Atoi(args[0])
			if err != nil || m < 2 {
				return errors.Errorf("M must be an integer of at least 2, got %q", args[0])
			}
			return RunSweep(cmd.Context(), cfg, m, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	addBuildFlags(f, cfg, target)
	f.StringVar(&cfg.Dims, "dims", cfg.Dims, "dimensions to sweep, e.g. 3..10")
	f.StringVar(&cfg.OutFile, "out", cfg.OutFile, "file the results are appended to")
	f.IntVar(&cfg.Low, "low", cfg.Low, "lowest coefficient for generated data")
	f.IntVar(&cfg.High, "high", cfg.High, "highest coefficient for generated data")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for generated data")
	return cmd
}

func parseMN(args []string) (int, int, error) {
	m, err := strconv.Atoi(args[0])
	if err != nil || m < 2 {
		return 0, 0, errors.Errorf("M must be an integer of at least 2, got %q", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return 0, 0, errors.Errorf("N must be a positive integer, got %q", args[1])
	}
	return m, n, nil
}
