/*
Copyright © 2020 the G2G authors.
This file is part of G2G.

G2G is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

G2G is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with G2G.  If not, see <http://www.gnu.org/licenses/>.
*/

package output

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spatialmodel/g2g"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store keeps the series of simulation runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Run describes a stored simulation run.
type Run struct {
	ID      string
	Name    string
	Created time.Time
	Params  g2g.ParameterTable
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("output: open sqlite: %w", err)
	}
	for _, q := range []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created TEXT NOT NULL,
			params TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS series (
			run TEXT NOT NULL REFERENCES runs(id),
			step INTEGER NOT NULL,
			date TEXT NOT NULL,
			variable TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (run, step, variable)
		)`,
	} {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("output: create tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (st *Store) Close() error { return st.db.Close() }

// Save stores the series of run r, replacing any run with the same ID.
func (st *Store) Save(ctx context.Context, r Run, s *g2g.Series) (retErr error) {
	params, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Errorf("output: encode parameters: %w", err)
	}
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM series WHERE run = ?`, r.ID); err != nil {
		return fmt.Errorf("output: delete series: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs (id, name, created, params) VALUES (?, ?, ?, ?)`,
		r.ID, r.Name, r.Created.UTC().Format(time.RFC3339Nano), string(params)); err != nil {
		return fmt.Errorf("output: insert run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO series (run, step, date, variable, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("output: prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, name := range s.ColumnNames() {
		col, _ := s.Column(name)
		for t, v := range col {
			if _, err := stmt.ExecContext(ctx, r.ID, t, s.Date[t].Format(g2g.DateFormat), name, v); err != nil {
				return fmt.Errorf("output: insert %s[%d]: %w", name, t, err)
			}
		}
	}
	return tx.Commit()
}

// Runs returns the stored runs, oldest first.
func (st *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT id, name, created, params FROM runs ORDER BY created, id`)
	if err != nil {
		return nil, fmt.Errorf("output: select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var runs []Run
	for rows.Next() {
		var r Run
		var created, params string
		if err := rows.Scan(&r.ID, &r.Name, &created, &params); err != nil {
			return nil, fmt.Errorf("output: scan: %w", err)
		}
		if r.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("output: run %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
			return nil, fmt.Errorf("output: run %s: decode parameters: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Series loads the series of the run with the given ID. Columns that
// are not simulation variables are returned as extra columns in name
// order.
func (st *Store) Series(ctx context.Context, id string) (*g2g.Series, error) {
	rows, err := st.db.QueryContext(ctx,
		`SELECT step, date, variable, value FROM series WHERE run = ? ORDER BY variable, step`, id)
	if err != nil {
		return nil, fmt.Errorf("output: select series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type sample struct {
		step  int
		date  string
		value float64
	}
	cols := make(map[string][]sample)
	var order []string
	n := 0
	for rows.Next() {
		var name string
		var x sample
		if err := rows.Scan(&x.step, &x.date, &name, &x.value); err != nil {
			return nil, fmt.Errorf("output: scan: %w", err)
		}
		if _, ok := cols[name]; !ok {
			order = append(order, name)
		}
		cols[name] = append(cols[name], x)
		if x.step+1 > n {
			n = x.step + 1
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("output: no series stored for run %s", id)
	}

	s := g2g.NewSeries(n)
	for _, x := range cols[order[0]] {
		if s.Date[x.step], err = time.Parse(g2g.DateFormat, x.date); err != nil {
			return nil, fmt.Errorf("output: run %s: %w", id, err)
		}
	}
	for _, name := range order {
		dst, ok := s.Column(name)
		if !ok {
			dst = make([]float64, n)
		}
		for _, x := range cols[name] {
			dst[x.step] = x.value
		}
		if !ok {
			s.AddColumn(name, dst)
		}
	}
	return s, nil
}
