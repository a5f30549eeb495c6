package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/cryptochart/internal/domain"
)

const DefaultListLimit = 50

// SQLiteJournal keeps an audit trail of pipeline runs. Price data is never stored.
type SQLiteJournal struct {
	db *sqlx.DB
}

func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

func (j *SQLiteJournal) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS fetches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			coin_id TEXT NOT NULL,
			status TEXT NOT NULL,
			points INTEGER NOT NULL DEFAULT 0,
			last_price REAL NOT NULL DEFAULT 0,
			growth_percent REAL NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fetches_coin ON fetches(coin_id);`,
	}

	for _, q := range queries {
		if _, err := j.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (j *SQLiteJournal) RecordFetch(ctx context.Context, rec *domain.FetchRecord) error {
	query := `INSERT INTO fetches (coin_id, status, points, last_price, growth_percent, duration_ms, error, created_at)
			  VALUES (:coin_id, :status, :points, :last_price, :growth_percent, :duration_ms, :error, :created_at)`
	res, err := j.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// ListFetches returns the most recent records first.
func (j *SQLiteJournal) ListFetches(ctx context.Context, limit int) ([]*domain.FetchRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := `SELECT id, coin_id, status, points, last_price, growth_percent, duration_ms, error, created_at
			  FROM fetches ORDER BY id DESC LIMIT ?`
	var records []*domain.FetchRecord
	if err := j.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, err
	}
	return records, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
