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

// store_sqlite
package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLite limits bound parameters per statement; stay under the oldest limit
const SQLITE_MAX_PARAMS = 999

// SQLiteStore reads the table intersections_m{m}_n{n}(id, coe1..coeN,
// constant). The layout is the one the original data factory wrote, so old
// databases open as is
type SQLiteStore struct {
	db      *sql.DB
	m, n    int
	table   string
	columns []string // coe1..coeN, constant
}

func sqliteTableName(m, n int) string {
	return fmt.Sprintf("intersections_m%d_n%d", m, n)
}

func OpenSQLiteStore(ctx context.Context, path string, m, n int) (*SQLiteStore, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrDimensionMismatch, "dimension %d", n)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite database %s", path)
	}
	s := &SQLiteStore{
		db:    db,
		m:     m,
		n:     n,
		table: sqliteTableName(m, n),
	}
	for i := 1; i <= n; i++ {
		s.columns = append(s.columns, fmt.Sprintf("coe%d", i))
	}
	s.columns = append(s.columns, "constant")
	if err := s.ensureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureTable(ctx context.Context) error {
	defs := make([]string, 0, len(s.columns)+1)
	defs = append(defs, "id INTEGER PRIMARY KEY")
	for _, c := range s.columns {
		defs = append(defs, c+" REAL")
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.table, strings.Join(defs, ", ")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_id_%d_%d ON %s (id)", s.m, s.n, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "prepare table %s", s.table)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int) (Hyperplane, error) {
	query, args, err := sq.Select(s.columns...).From(s.table).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Hyperplane{}, errors.Wrap(err, "build select")
	}
	vals := make([]float64, len(s.columns))
	dest := make([]interface{}, len(vals))
	for i := range vals {
		dest[i] = &vals[i]
	}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	if err == sql.ErrNoRows {
		return Hyperplane{}, errors.Wrapf(ErrUnknownConstraint, "id %d in %s", id, s.table)
	}
	if err != nil {
		return Hyperplane{}, errors.Wrapf(err, "read id %d from %s", id, s.table)
	}
	return Hyperplane{Coef: vals[:s.n], Constant: vals[s.n]}, nil
}

func (s *SQLiteStore) AllIDs(ctx context.Context) ([]int, error) {
	query, args, err := sq.Select("id").From(s.table).OrderBy("id").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build select")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list ids of %s", s.table)
	}
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrapf(err, "list ids of %s", s.table)
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrapf(rows.Err(), "list ids of %s", s.table)
}

// Save writes records in one transaction, replacing rows with the same id
func (s *SQLiteStore) Save(ctx context.Context, records []HyperplaneRecord) error {
	for _, rec := range records {
		if err := checkRecord(rec, s.n); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	perStmt := SQLITE_MAX_PARAMS / (s.n + 2)
	if perStmt < 1 {
		perStmt = 1
	}
	cols := append([]string{"id"}, s.columns...)
	for start := 0; start < len(records); start += perStmt {
		end := start + perStmt
		if end > len(records) {
			end = len(records)
		}
		ins := sq.Replace(s.table).Columns(cols...)
		for _, rec := range records[start:end] {
			vals := make([]interface{}, 0, len(cols))
			vals = append(vals, rec.ID)
			for _, a := range rec.Coef {
				vals = append(vals, a)
			}
			vals = append(vals, rec.Constant)
			ins = ins.Values(vals...)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			tx.Rollback()
			return errors.Wrap(err, "build insert")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "write to %s", s.table)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func (s *SQLiteStore) Dimension() int {
	return s.n
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
