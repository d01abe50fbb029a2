// Package app wires the report pipeline's concrete parts together for the
// server and CLI entry points.
package app

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/BRMReports/internal/archive"
	"github.com/JonMunkholm/BRMReports/internal/config"
	"github.com/JonMunkholm/BRMReports/internal/core"
	_ "github.com/JonMunkholm/BRMReports/internal/core/schemas" // Register report schemas
	"github.com/JonMunkholm/BRMReports/internal/document"
	"github.com/JonMunkholm/BRMReports/internal/ingest"
	"github.com/JonMunkholm/BRMReports/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Decoder returns the upload decoder configured from cfg.
func Decoder(cfg *config.Config) *ingest.Decoder {
	return ingest.New(ingest.Options{
		Sheet:       cfg.Upload.Sheet,
		MaxFileSize: cfg.Upload.MaxFileSize,
	})
}

// Renderer returns the template assembler configured from cfg.
// A broken template is logged, not fatal: every run reports it as TPL001
// until the file is restored.
func Renderer(cfg *config.Config) *document.Assembler {
	assembler := document.NewAssembler(cfg.Report)
	if cfg.Report.TemplatePath != "" {
		if err := assembler.CheckTemplate(); err != nil {
			slog.Warn("report template unavailable", "path", cfg.Report.TemplatePath, "error", err)
		}
	}
	return assembler
}

// NewService builds a report service that renders with renderer and
// records runs in history.
func NewService(cfg *config.Config, renderer core.Renderer, history core.History) (*core.Service, error) {
	return core.NewService(cfg, core.ServiceDeps{
		Decoder:  Decoder(cfg),
		Renderer: renderer,
		Packager: archive.New(),
		History:  history,
	})
}

// History opens the configured run history. With DATABASE_URL set runs go
// to PostgreSQL and the returned pool must be closed by the caller;
// otherwise runs are kept in memory and the pool is nil.
func History(ctx context.Context, cfg *config.Config) (core.History, *pgxpool.Pool, error) {
	if cfg.Database.URL == "" {
		slog.Info("no database configured, keeping run history in memory", "size", cfg.History.MemorySize)
		return store.NewMemoryHistory(cfg.History.MemorySize), nil, nil
	}

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	history := store.NewPostgresHistory(pool)
	if err := history.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return history, pool, nil
}
