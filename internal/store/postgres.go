// Package store persists report run history.
//
// Postgres is used when a database URL is configured; otherwise the
// in-memory ring buffer keeps the most recent runs for the process lifetime.
// Both satisfy core.History.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/BRMReports/internal/config"
	"github.com/JonMunkholm/BRMReports/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS report_runs (
    id               UUID PRIMARY KEY,
    schema_key       TEXT        NOT NULL,
    file_name        TEXT        NOT NULL,
    row_count        INTEGER     NOT NULL DEFAULT 0,
    group_count      INTEGER     NOT NULL DEFAULT 0,
    missing_key_rows INTEGER     NOT NULL DEFAULT 0,
    status           TEXT        NOT NULL,
    error            TEXT,
    client_ip        TEXT,
    user_agent       TEXT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS report_runs_created_at_idx ON report_runs (created_at DESC);
`

const insertRun = `
INSERT INTO report_runs (
    id, schema_key, file_name, row_count, group_count, missing_key_rows,
    status, error, client_ip, user_agent, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

const listRuns = `
SELECT id, schema_key, file_name, row_count, group_count, missing_key_rows,
       status, error, client_ip, user_agent, created_at
FROM report_runs
ORDER BY created_at DESC
LIMIT $1
`

const pruneRuns = `DELETE FROM report_runs WHERE created_at < $1`

// Connect opens a pgx pool with the configured limits and verifies it.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

// PostgresHistory stores runs in the report_runs table.
type PostgresHistory struct {
	pool *pgxpool.Pool
}

// NewPostgresHistory wraps a pool. Call EnsureSchema before first use.
func NewPostgresHistory(pool *pgxpool.Pool) *PostgresHistory {
	return &PostgresHistory{pool: pool}
}

// EnsureSchema creates the report_runs table if it does not exist.
func (h *PostgresHistory) EnsureSchema(ctx context.Context) error {
	if _, err := h.pool.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create report_runs: %w", err)
	}
	return nil
}

// RecordRun inserts one run.
func (h *PostgresHistory) RecordRun(ctx context.Context, rec core.RunRecord) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("record run: invalid id %q: %w", rec.ID, err)
	}

	_, err = h.pool.Exec(ctx, insertRun,
		pgtype.UUID{Bytes: id, Valid: true},
		rec.SchemaKey,
		rec.FileName,
		int32(rec.Rows),
		int32(rec.Groups),
		int32(rec.MissingKeyRows),
		string(rec.Status),
		nullText(rec.Error),
		nullText(rec.ClientIP),
		nullText(rec.UserAgent),
		pgtype.Timestamptz{Time: rec.CreatedAt, Valid: !rec.CreatedAt.IsZero()},
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (h *PostgresHistory) ListRuns(ctx context.Context, limit int) ([]core.RunRecord, error) {
	rows, err := h.pool.Query(ctx, listRuns, int32(clampLimit(limit)))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, scanRun)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// PruneRuns deletes runs created before the cutoff.
func (h *PostgresHistory) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	tag, err := h.pool.Exec(ctx, pruneRuns, pgtype.Timestamptz{Time: before, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// runRow mirrors a report_runs row.
type runRow struct {
	ID             pgtype.UUID
	SchemaKey      string
	FileName       string
	Rows           int32
	Groups         int32
	MissingKeyRows int32
	Status         string
	Error          pgtype.Text
	ClientIP       pgtype.Text
	UserAgent      pgtype.Text
	CreatedAt      pgtype.Timestamptz
}

func scanRun(row pgx.CollectableRow) (core.RunRecord, error) {
	var r runRow
	err := row.Scan(&r.ID, &r.SchemaKey, &r.FileName, &r.Rows, &r.Groups, &r.MissingKeyRows,
		&r.Status, &r.Error, &r.ClientIP, &r.UserAgent, &r.CreatedAt)
	if err != nil {
		return core.RunRecord{}, err
	}
	return r.record(), nil
}

func (r runRow) record() core.RunRecord {
	rec := core.RunRecord{
		SchemaKey:      r.SchemaKey,
		FileName:       r.FileName,
		Rows:           int(r.Rows),
		Groups:         int(r.Groups),
		MissingKeyRows: int(r.MissingKeyRows),
		Status:         core.RunStatus(r.Status),
		Error:          r.Error.String,
		ClientIP:       r.ClientIP.String,
		UserAgent:      r.UserAgent.String,
	}
	if r.ID.Valid {
		rec.ID = uuid.UUID(r.ID.Bytes).String()
	}
	if r.CreatedAt.Valid {
		rec.CreatedAt = r.CreatedAt.Time
	}
	return rec
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// Listing limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
