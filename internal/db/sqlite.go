package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/RichardoC/envask/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
    id TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    query TEXT NOT NULL,
    answer TEXT NOT NULL,
    status TEXT NOT NULL,
    status_code INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS exchanges_finished_at ON exchanges(finished_at);`

// Database is the exchange journal. It is written by the form and only read
// back by the history command.
type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (db *Database) SaveExchange(ctx context.Context, ex *models.Exchange) error {
	query := `
        INSERT INTO exchanges (id, seq, query, answer, status, status_code, error, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.db.ExecContext(ctx, query,
		ex.ID, ex.Seq, ex.Query, ex.Answer, string(ex.Status),
		ex.StatusCode, ex.Error, ex.StartedAt.UTC(), ex.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save exchange %s: %w", ex.ID, err)
	}
	return nil
}

// RecentExchanges returns up to limit exchanges, newest first.
func (db *Database) RecentExchanges(ctx context.Context, limit int) ([]models.Exchange, error) {
	query := `
        SELECT id, seq, query, answer, status, status_code, error, started_at, finished_at
        FROM exchanges
        ORDER BY finished_at DESC, seq DESC
        LIMIT ?`

	rows, err := db.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := make([]models.Exchange, 0)
	for rows.Next() {
		var (
			ex     models.Exchange
			status string
		)
		if err := rows.Scan(&ex.ID, &ex.Seq, &ex.Query, &ex.Answer, &status,
			&ex.StatusCode, &ex.Error, &ex.StartedAt, &ex.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		ex.Status = models.ExchangeStatus(status)
		exchanges = append(exchanges, ex)
	}
	return exchanges, rows.Err()
}

// Prune deletes exchanges that finished before the cutoff.
func (db *Database) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := db.db.ExecContext(ctx, "DELETE FROM exchanges WHERE finished_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune exchanges: %w", err)
	}
	return res.RowsAffected()
}

func (db *Database) Close() error {
	return db.db.Close()
}
