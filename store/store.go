/*
 * store.go, part of qetraj.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package store archives trajectory documents in an SQLite database.
// Documents are kept as zstd-compressed JSON, one row per document.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rmera/qetraj/traj/delta"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
	name    TEXT PRIMARY KEY,
	created INTEGER NOT NULL,
	steps   INTEGER NOT NULL,
	body    BLOB NOT NULL
)`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=10000",
	"PRAGMA synchronous=NORMAL",
}

// ErrNotFound is returned when no document has the requested name.
var ErrNotFound = errors.New("store: document not found")

// Store is an archive of documents.
type Store struct {
	db   *sql.DB
	path string
}

// Entry describes an archived document.
type Entry struct {
	Name    string
	Created time.Time
	Steps   int
}

// Open opens, or creates, the archive in the file path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) //the pragmas are per connection
	for _, p := range append(pragmas, schema) {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", path, err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the archive.
func (S *Store) Close() error {
	return S.db.Close()
}

// Put stores doc under name, replacing any document with the same name.
func (S *Store) Put(ctx context.Context, name string, doc *delta.Document) error {
	var body bytes.Buffer
	if err := delta.Write(&body, doc, delta.JSON, delta.Zstd); err != nil {
		return fmt.Errorf("store: put %s: %w", name, err)
	}
	_, err := S.db.ExecContext(ctx,
		`INSERT INTO documents (name, created, steps, body) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET created=excluded.created, steps=excluded.steps, body=excluded.body`,
		name, time.Now().Unix(), doc.Len(), body.Bytes())
	if err != nil {
		return fmt.Errorf("store: put %s: %w", name, err)
	}
	return nil
}

// Get returns the document stored under name, or ErrNotFound.
func (S *Store) Get(ctx context.Context, name string) (*delta.Document, error) {
	var body []byte
	err := S.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", name, err)
	}
	doc, err := delta.Read(bytes.NewReader(body), delta.JSON, delta.Zstd)
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", name, err)
	}
	return doc, nil
}

// List returns the archived documents sorted by name.
func (S *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := S.db.QueryContext(ctx, `SELECT name, created, steps FROM documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()
	var ret []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.Name, &created, &e.Steps); err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		e.Created = time.Unix(created, 0)
		ret = append(ret, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return ret, nil
}

// Delete removes the document stored under name, or returns ErrNotFound.
func (S *Store) Delete(ctx context.Context, name string) error {
	res, err := S.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
