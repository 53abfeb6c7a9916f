// Package store persists the dish table as CSV or SQLite.
package store

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// Store is a dish table that holds resources until closed.
type Store interface {
	catalog.Table
	Close() error
}

// Open opens the table at path. A .csv path is read as CSV; anything else is
// a SQLite database.
func Open(path string) (Store, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return NewCSV(path), nil
	}
	return New(path)
}

// SQLiteStore implements Store using SQLite. Row order is the position column.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, eris.Wrapf(err, "open sqlite %s", path)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "run migrations")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns every row in position order. An empty table is reported as
// catalog.ErrDataUnavailable.
func (s *SQLiteStore) Load(ctx context.Context) ([]catalog.Record, error) {
	var records []catalog.Record
	err := s.db.SelectContext(ctx, &records, `
		SELECT restaurant, food, price, taste, location, portion_size,
		       dish_category, description, source_url, votes_count
		FROM dishes ORDER BY position
	`)
	if err != nil {
		return nil, eris.Wrap(err, "list dishes")
	}
	if len(records) == 0 {
		return nil, eris.Wrap(catalog.ErrDataUnavailable, "dishes table is empty")
	}
	return records, nil
}

// Save replaces the whole table in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, records []catalog.Record) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin save")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM dishes"); err != nil {
		return eris.Wrap(err, "clear dishes")
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO dishes (position, restaurant, food, price, taste, location, portion_size,
		                    dish_category, description, source_url, votes_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return eris.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx, i, r.Restaurant, r.Food, r.Price, r.Taste,
			r.Location, r.PortionSize, r.Category, r.Description, r.SourceURL, r.VotesCount)
		if err != nil {
			return eris.Wrapf(err, "insert dish %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "commit save")
	}
	return nil
}

// Count returns the number of stored rows.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM dishes"); err != nil {
		return 0, eris.Wrap(err, "count dishes")
	}
	return n, nil
}
