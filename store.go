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

// store
package main

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrUnknownConstraint = errors.New("unknown constraint id")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrEmptyBounding     = errors.New("no bounding constraints")
	ErrInvalidRef        = errors.New("constraint reference must not be zero")
	ErrInvalidOptions    = errors.New("invalid options")
)

const (
	BACKEND_SQLITE = "sqlite"
	BACKEND_BADGER = "badger"
)

// ConstraintStore maps a positive id to its hyperplane. A miss is reported as
// ErrUnknownConstraint (wrapped), which the tree treats as fatal. During a
// construction run the store is only read, but possibly from several
// goroutines at once
type ConstraintStore interface {
	Get(ctx context.Context, id int) (Hyperplane, error)
	// AllIDs lists every stored id in ascending order
	AllIDs(ctx context.Context) ([]int, error)
	Dimension() int
}

// HyperplaneStore is a ConstraintStore that can also be populated, as the
// generate command does
type HyperplaneStore interface {
	ConstraintStore
	Save(ctx context.Context, records []HyperplaneRecord) error
	Close() error
}

type HyperplaneRecord struct {
	ID int
	Hyperplane
}

// OpenStore opens (creating as needed) the table of hyperplanes generated
// from m functions in n dimensions
func OpenStore(ctx context.Context, backend, path string, m, n int) (HyperplaneStore, error) {
	switch backend {
	case BACKEND_SQLITE:
		return OpenSQLiteStore(ctx, path, m, n)
	case BACKEND_BADGER:
		return OpenBadgerStore(path, m, n)
	}
	return nil, errors.Errorf("unknown store backend %q", backend)
}

func checkRecord(rec HyperplaneRecord, n int) error {
	if rec.ID <= 0 {
		return errors.Errorf("record id %d is not positive", rec.ID)
	}
	if len(rec.Coef) != n {
		return errors.Wrapf(ErrDimensionMismatch, "record %d has %d coefficients, want %d",
			rec.ID, len(rec.Coef), n)
	}
	return nil
}

// MemStore keeps everything in a map. Used by tests and by generate --dry-run
type MemStore struct {
	mu   sync.RWMutex
	dim  int
	rows map[int]Hyperplane
}

func NewMemStore(dim int) *MemStore {
	return &MemStore{
		dim:  dim,
		rows: make(map[int]Hyperplane),
	}
}

// Put stores h under id, replacing what was there
func (s *MemStore) Put(id int, h Hyperplane) error {
	return s.Save(context.Background(), []HyperplaneRecord{{ID: id, Hyperplane: h}})
}

func (s *MemStore) Save(ctx context.Context, records []HyperplaneRecord) error {
	for _, rec := range records {
		if err := checkRecord(rec, s.dim); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.rows[rec.ID] = rec.Hyperplane
	}
	return nil
}

func (s *MemStore) Get(ctx context.Context, id int) (Hyperplane, error) {
	s.mu.RLock()
	h, ok := s.rows[id]
	s.mu.RUnlock()
	if !ok {
		return Hyperplane{}, errors.Wrapf(ErrUnknownConstraint, "id %d", id)
	}
	return h, nil
}

func (s *MemStore) AllIDs(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Ints(ids)
	return ids, nil
}

func (s *MemStore) Dimension() int {
	return s.dim
}

func (s *MemStore) Close() error {
	return nil
}
