package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/BRMReports/internal/config"
	"github.com/JonMunkholm/BRMReports/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Decoder turns an uploaded file into a table.
type Decoder interface {
	// CheckFormat rejects unsupported file names before any bytes are read.
	CheckFormat(fileName string) error
	Decode(fileName string, body []byte) (*Table, error)
}

// Renderer writes one table into an output document.
type Renderer interface {
	Render(ctx context.Context, t *Table) ([]byte, error)
}

// Packager bundles rendered documents into one archive.
type Packager interface {
	Package(w io.Writer, docs []Document) error
}

// History records report runs.
type History interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	PruneRuns(ctx context.Context, before time.Time) (int64, error)
}

// ServiceDeps are the collaborators the pipeline hands data to.
type ServiceDeps struct {
	Decoder  Decoder
	Renderer Renderer
	Packager Packager
	History  History
}

// Service runs the decode, normalize, partition, render and package pipeline.
type Service struct {
	cfg     config.ReportConfig
	timeout time.Duration
	deps    ServiceDeps
	limiter *ReportLimiter
	now     func() time.Time
}

// NewService creates a new Service instance.
func NewService(cfg *config.Config, deps ServiceDeps) (*Service, error) {
	if deps.Decoder == nil || deps.Renderer == nil || deps.Packager == nil || deps.History == nil {
		return nil, errors.New("service: decoder, renderer, packager and history are required")
	}
	if cfg.Report.DefaultSchema != "" {
		if _, ok := Get(cfg.Report.DefaultSchema); !ok {
			return nil, fmt.Errorf("%w: default schema %q", ErrUnknownSchema, cfg.Report.DefaultSchema)
		}
	}

	return &Service{
		cfg:     cfg.Report,
		timeout: cfg.Upload.Timeout,
		deps:    deps,
		limiter: NewReportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		now:     time.Now,
	}, nil
}

// ListSchemas returns all registered schemas.
func (s *Service) ListSchemas() []Schema {
	return All()
}

// ListRuns returns the most recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	return s.deps.History.ListRuns(ctx, limit)
}

// LimiterStatus returns the current concurrency state.
func (s *Service) LimiterStatus() ReportLimiterStatus {
	return s.limiter.Status()
}

// WaitForReports blocks until running reports finish or ctx is done.
func (s *Service) WaitForReports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// resolveSchema returns the requested schema, or the default when key is empty.
func (s *Service) resolveSchema(key string) (Schema, error) {
	if key == "" {
		key = s.cfg.DefaultSchema
	}
	schema, ok := Get(key)
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownSchema, key)
	}
	return schema, nil
}

// keyColumn returns the grouping column for a schema, honoring the
// configured override.
func (s *Service) keyColumn(schema Schema) string {
	if s.cfg.KeyColumn != "" {
		return s.cfg.KeyColumn
	}
	return schema.KeyColumn
}

// Generate runs the whole pipeline for one upload and returns the archive.
// Fatal errors (unsupported format, missing key column, render failure)
// return no archive at all.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Report, error) {
	start := s.now()
	runID := uuid.New().String()
	logger := logging.WithFields(ctx, "run_id", runID, "file", req.FileName)

	rec := RunRecord{
		ID:        runID,
		SchemaKey: req.SchemaKey,
		FileName:  req.FileName,
		ClientIP:  GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
		CreatedAt: start,
	}

	report, err := s.generate(ctx, runID, req, &rec)
	if err != nil {
		rec.Status = RunFailed
		rec.Error = err.Error()
		logger.Warn("report failed", "error", err, "code", MapError(err).Code)
	} else {
		rec.Status = RunSucceeded
		report.Duration = s.now().Sub(start)
		logger.Info("report completed",
			"schema", report.SchemaKey,
			"rows", report.Rows,
			"groups", len(report.Groups),
			"missing_key_rows", report.MissingKeyRows,
			"archive_bytes", len(report.Archive),
			"duration_ms", report.Duration.Milliseconds(),
		)
	}

	// History is best effort; a storage outage must not fail the download.
	if herr := s.deps.History.RecordRun(context.WithoutCancel(ctx), rec); herr != nil {
		logger.Error("failed to record run", "error", herr)
	}

	return report, err
}

func (s *Service) generate(ctx context.Context, runID string, req GenerateRequest, rec *RunRecord) (*Report, error) {
	schema, err := s.resolveSchema(req.SchemaKey)
	if err != nil {
		return nil, err
	}
	rec.SchemaKey = schema.Key

	if err := s.deps.Decoder.CheckFormat(req.FileName); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.deps.Decoder.Decode(req.FileName, req.Body)
	if err != nil {
		return nil, err
	}

	normalizer := &Normalizer{Schema: schema, Now: s.now}
	table, stats := normalizer.NormalizeWithStats(raw)
	logNormalizeStats(ctx, runID, stats)

	parts, err := Partition(table, s.keyColumn(schema))
	if err != nil {
		return nil, err
	}
	rec.Rows = parts.Consolidated.Len()
	rec.Groups = len(parts.Groups)
	rec.MissingKeyRows = parts.MissingKeyRows()

	docs, err := s.render(ctx, runID, parts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.deps.Packager.Package(&buf, docs); err != nil {
		return nil, fmt.Errorf("package archive: %w", err)
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}

	return &Report{
		RunID:          runID,
		SchemaKey:      schema.Key,
		FileName:       req.FileName,
		ArchiveName:    s.cfg.ArchiveName,
		Archive:        buf.Bytes(),
		Documents:      names,
		Groups:         parts.Keys(),
		Rows:           rec.Rows,
		MissingKeyRows: rec.MissingKeyRows,
		Stats:          stats,
	}, nil
}

// render produces the consolidated document followed by one document per
// group. Groups render in parallel; the result keeps first-seen order.
func (s *Service) render(ctx context.Context, runID string, parts *Partitioned) ([]Document, error) {
	logger := logging.WithFields(ctx, "run_id", runID)

	docs := make([]Document, len(parts.Groups)+1)
	names := DocumentNames(s.cfg.ConsolidatedName, parts.Keys())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Workers, 1))

	g.Go(func() error {
		data, err := s.deps.Renderer.Render(gctx, parts.Consolidated)
		if err != nil {
			return fmt.Errorf("render %s: %w", names[0], err)
		}
		docs[0] = Document{Name: names[0], Data: data}
		return nil
	})

	for i, grp := range parts.Groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Debug("processing group", "key", grp.Key, "rows", grp.Table.Len())

			data, err := s.deps.Renderer.Render(gctx, grp.Table)
			if err != nil {
				return fmt.Errorf("render %s: %w", names[i+1], err)
			}
			docs[i+1] = Document{Name: names[i+1], Data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func logNormalizeStats(ctx context.Context, runID string, stats NormalizeStats) {
	logger := logging.WithFields(ctx, "run_id", runID)
	for _, cs := range stats.Columns {
		logger.Debug("column normalized",
			"column", cs.Column,
			"type", cs.Type.String(),
			"converted", cs.Converted,
			"missing", cs.Missing,
			"corrected", cs.Corrected,
		)
	}
}
