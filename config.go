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
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const VERSION = "0.3.0"

/*
vitree generate M N   Generate M random linear functions in N dimensions and
                      store the M*(M-1)/2 hyperplanes of their pairwise
                      differences.
	--low, --high     Range of the integer coefficients (default 0..100)
	--constant-low, --constant-high
	                  Range of the integer constant attached to each
	                  hyperplane (default 0..100)
	--seed            Random seed (default: time based)

vitree build M N      Build the tree from the hyperplanes generated for M, N.
	--var-min, --var-max   Domain box on every axis (default 0..10)
	--sample          Fraction of all ids offered to the tree, taken from the
	                  ones that cross the domain (default 0.2)
	--strategy        lazy (default), eager or feasibility
	--max-visits      How many times a vertex set may be produced (default 1)
	--target          Comma separated point; cells not containing it are pruned
	--workers         Goroutines per wave (default: number of cores)
	--tighten         Drop redundant refs once vertices are known
	--metrics-file    Write prometheus metrics here when done
	--progress        Progress bar (default: when stderr is a terminal)

vitree sweep M        Run build for every dimension in --dims (3..10) and
                      append one line per run to --out.

Global: --db FILE, --backend sqlite|badger, --config FILE.yaml, -v (repeat
for more verbosity)
*/

type ProgramConfig struct {
	Backend        string        `yaml:"backend" validate:"oneof=sqlite badger"`
	DBPath         string        `yaml:"db"`
	VarMin         float64       `yaml:"var_min"`
	VarMax         float64       `yaml:"var_max"`
	Sample         float64       `yaml:"sample" validate:"gt=0,lte=1"`
	Strategy       string        `yaml:"strategy" validate:"oneof=lazy eager feasibility"`
	MaxVisits      int           `yaml:"max_visits" validate:"gte=1"`
	Target         []float64     `yaml:"target"`
	Workers        int           `yaml:"workers" validate:"gte=0"`
	Tighten        bool          `yaml:"tighten"`
	Tolerance      float64       `yaml:"tolerance" validate:"gt=0"`
	SolveTimeout   time.Duration `yaml:"solve_timeout" validate:"gte=0"`
	MaxCandidates  int           `yaml:"max_candidates" validate:"gte=0"`
	DedupPrecision float64       `yaml:"dedup_precision" validate:"gte=0"` // 0 compares vertex sets exactly
	CacheSize      int           `yaml:"cache_size" validate:"gte=0"`
	MetricsFile    string        `yaml:"metrics_file"`
	Progress       bool          `yaml:"progress"`
	VerbosityLevel int           `yaml:"verbosity" validate:"gte=0"`
	// generate
	Low          int   `yaml:"low"`
	High         int   `yaml:"high"`
	ConstantLow  int   `yaml:"constant_low"`
	ConstantHigh int   `yaml:"constant_high"`
	Seed         int64 `yaml:"seed"`
	// sweep
	Dims    string `yaml:"dims"`
	OutFile string `yaml:"out"`
}

var configValidate = validator.New()

func DefaultConfig() *ProgramConfig {
	return &ProgramConfig{
		Backend:        BACKEND_SQLITE,
		DBPath:         "intersections.db",
		VarMin:         0,
		VarMax:         10,
		Sample:         0.2,
		Strategy:       StrategyLazyVertices.String(),
		MaxVisits:      DEFAULT_MAX_VISITS,
		Workers:        0,
		Tighten:        false,
		Tolerance:      SIDE_EPSILON,
		SolveTimeout:   DEFAULT_SOLVE_TIMEOUT,
		MaxCandidates:  0,
		DedupPrecision: DEFAULT_DEDUP_PRECISION,
		CacheSize:      DEFAULT_CACHE_SIZE,
		Progress:       isTerminal(os.Stderr),
		Low:            0,
		High:           100,
		ConstantLow:    0,
		ConstantHigh:   100,
		Seed:           0,
		Dims:           "3..10",
		OutFile:        "performance.txt",
	}
}

// LoadFile overlays the YAML file at path on c. Keys missing from the file
// keep their current values
func (c *ProgramConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

// Validate checks struct tags and then what they can't express
func (c *ProgramConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if !(c.VarMin < c.VarMax) {
		return errors.Errorf("invalid configuration: var-min %g must be less than var-max %g", c.VarMin, c.VarMax)
	}
	if c.Low > c.High {
		return errors.Errorf("invalid configuration: low %d is greater than high %d", c.Low, c.High)
	}
	if c.ConstantLow > c.ConstantHigh {
		return errors.Errorf("invalid configuration: constant-low %d is greater than constant-high %d",
			c.ConstantLow, c.ConstantHigh)
	}
	if _, _, err := ParseDims(c.Dims); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// TreeOptions translates the configuration for NewTree
func (c *ProgramConfig) TreeOptions() (Options, error) {
	strategy, err := ParseStrategy(c.Strategy)
	if err != nil {
		return Options{}, err
	}
	opts := DefaultOptions()
	opts.Strategy = strategy
	opts.Tolerance = c.Tolerance
	opts.VarMin = c.VarMin
	opts.VarMax = c.VarMax
	opts.MaxVisits = c.MaxVisits
	opts.SnapPrecision = c.DedupPrecision
	opts.Target = c.Target
	opts.Workers = c.Workers
	opts.TightenConstraints = c.Tighten
	opts.SolveTimeout = c.SolveTimeout
	opts.MaxCandidates = c.MaxCandidates
	return opts, nil
}

// ParsePoint reads "1,1,5" into a point. Empty string is no point
func ParsePoint(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	res := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "coordinate %d of %q", i+1, s)
		}
		res[i] = v
	}
	return res, nil
}

// ParseDims reads "3..10" (inclusive) or a single "5"
func ParseDims(s string) (int, int, error) {
	lo, hi := s, s
	if i := strings.Index(s, ".."); i >= 0 {
		lo, hi = s[:i], s[i+2:]
	}
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "dimension range %q", s)
	}
	to, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "dimension range %q", s)
	}
	if from < 1 || to < from {
		return 0, 0, errors.Errorf("dimension range %q is empty", s)
	}
	return from, to, nil
}
