package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"weathertrack/internal/model"
)

// Store is the durable collection of saved locations.
type Store interface {
	List(ctx context.Context) ([]model.Location, error)
	Add(ctx context.Context, loc model.Location) error
	Remove(ctx context.Context, id string) error
	// ReplaceAll swaps the full contents for the given set, atomically.
	ReplaceAll(ctx context.Context, locs []model.Location) error
	Close() error
}

// SQLiteStore persists locations in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS locations (
		id     TEXT PRIMARY KEY,
		title  TEXT NOT NULL,
		lat    REAL NOT NULL,
		lon    REAL NOT NULL,
		temp   TEXT NOT NULL,
		icon   TEXT NOT NULL,
		loc_ru TEXT NOT NULL,
		loc_en TEXT NOT NULL,
		position INTEGER
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, lat, lon, temp, icon, loc_ru, loc_en FROM locations ORDER BY position, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locs []model.Location
	for rows.Next() {
		var loc model.Location
		if err := rows.Scan(&loc.ID, &loc.Title, &loc.Lat, &loc.Lon, &loc.Temp, &loc.Icon, &loc.LocRu, &loc.LocEn); err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

func (s *SQLiteStore) Add(ctx context.Context, loc model.Location) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (id, title, lat, lon, temp, icon, loc_ru, loc_en, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM locations))`,
		loc.ID, loc.Title, loc.Lat, loc.Lon, loc.Temp, loc.Icon, loc.LocRu, loc.LocEn)
	return err
}

func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) ReplaceAll(ctx context.Context, locs []model.Location) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations`); err != nil {
		return err
	}
	for i, loc := range locs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO locations (id, title, lat, lon, temp, icon, loc_ru, loc_en, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			loc.ID, loc.Title, loc.Lat, loc.Lon, loc.Temp, loc.Icon, loc.LocRu, loc.LocEn, i+1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
