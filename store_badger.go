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

// store_badger
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerStore keeps hyperplanes in an embedded key-value store. Keys are
// hp/{m}/{n}/ followed by the id as 8 big-endian bytes, so a prefix scan
// yields ids in ascending order. Values are N+1 little-endian float64:
// the coefficients, then the constant
type BadgerStore struct {
	db     *badger.DB
	m, n   int
	prefix []byte
}

// badgerLogger routes badger's chatter through the program log
type badgerLogger struct {
	log *MyLogger
}

func (l badgerLogger) Errorf(s string, a ...interface{})   { l.log.Error("badger: "+s, a...) }
func (l badgerLogger) Warningf(s string, a ...interface{}) { l.log.Error("badger: "+s, a...) }
func (l badgerLogger) Infof(s string, a ...interface{})    { l.log.Verbose(2, "badger: "+s, a...) }
func (l badgerLogger) Debugf(s string, a ...interface{})   { l.log.Verbose(3, "badger: "+s, a...) }

// OpenBadgerStore opens the database directory at path. Empty path means an
// in-memory database, which is gone once closed
func OpenBadgerStore(path string, m, n int) (*BadgerStore, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrDimensionMismatch, "dimension %d", n)
	}
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(badgerLogger{log: Log})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger database %q", path)
	}
	return &BadgerStore{
		db:     db,
		m:      m,
		n:      n,
		prefix: []byte(fmt.Sprintf("hp/%d/%d/", m, n)),
	}, nil
}

func (s *BadgerStore) key(id int) []byte {
	k := make([]byte, len(s.prefix)+8)
	copy(k, s.prefix)
	binary.BigEndian.PutUint64(k[len(s.prefix):], uint64(id))
	return k
}

func (s *BadgerStore) encode(h Hyperplane) []byte {
	buf := make([]byte, 8*(s.n+1))
	for i, a := range h.Coef {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(a))
	}
	binary.LittleEndian.PutUint64(buf[8*s.n:], math.Float64bits(h.Constant))
	return buf
}

func (s *BadgerStore) decode(val []byte) (Hyperplane, error) {
	if len(val) != 8*(s.n+1) {
		return Hyperplane{}, errors.Wrapf(ErrDimensionMismatch, "stored value has %d bytes, want %d",
			len(val), 8*(s.n+1))
	}
	coef := make([]float64, s.n)
	for i := range coef {
		coef[i] = math.Float64frombits(binary.LittleEndian.Uint64(val[8*i:]))
	}
	return Hyperplane{
		Coef:     coef,
		Constant: math.Float64frombits(binary.LittleEndian.Uint64(val[8*s.n:])),
	}, nil
}

func (s *BadgerStore) Get(ctx context.Context, id int) (Hyperplane, error) {
	if err := ctx.Err(); err != nil {
		return Hyperplane{}, err
	}
	var h Hyperplane
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var derr error
			h, derr = s.decode(val)
			return derr
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Hyperplane{}, errors.Wrapf(ErrUnknownConstraint, "id %d under %s", id, s.prefix)
	}
	if err != nil {
		return Hyperplane{}, errors.Wrapf(err, "read id %d", id)
	}
	return h, nil
}

func (s *BadgerStore) AllIDs(ctx context.Context) ([]int, error) {
	var ids []int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = s.prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(s.prefix); it.ValidForPrefix(s.prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			k := it.Item().Key()
			ids = append(ids, int(binary.BigEndian.Uint64(k[len(s.prefix):])))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list ids under %s", s.prefix)
	}
	return ids, nil
}

func (s *BadgerStore) Save(ctx context.Context, records []HyperplaneRecord) error {
	for _, rec := range records {
		if err := checkRecord(rec, s.n); err != nil {
			return err
		}
	}
	wb := s.db.NewWriteBatch()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			wb.Cancel()
			return err
		}
		if err := wb.Set(s.key(rec.ID), s.encode(rec.Hyperplane)); err != nil {
			wb.Cancel()
			return errors.Wrapf(err, "write id %d", rec.ID)
		}
	}
	return errors.Wrap(wb.Flush(), "flush write batch")
}

func (s *BadgerStore) Dimension() int {
	return s.n
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
