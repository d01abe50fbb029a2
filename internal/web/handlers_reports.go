package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/BRMReports/internal/core"
	"github.com/JonMunkholm/BRMReports/internal/logging"
	"github.com/go-chi/chi/v5"
)

const (
	// formOverhead leaves room for multipart boundaries and the schema field.
	formOverhead = 1 << 20

	// formMemory is how much of a form is kept in memory before spilling to disk.
	formMemory = 32 << 20
)

// handleGenerateReport accepts a multipart upload in the "file" field and
// responds with the report archive. The schema comes from the URL, then the
// "schema" form field, then the configured default.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			respondError(w, r, errTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusBadRequest)
		return
	}

	schemaKey := chi.URLParam(r, "schemaKey")
	if schemaKey == "" {
		schemaKey = r.FormValue("schema")
	}

	ctx := WithRequestMetadata(r.Context(), r)
	report, err := s.service.Generate(ctx, core.GenerateRequest{
		SchemaKey: schemaKey,
		FileName:  header.Filename,
		Body:      body,
	})
	if err != nil {
		respondError(w, r, err, statusForError(err))
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/zip")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.ArchiveName))
	h.Set("Content-Length", strconv.Itoa(len(report.Archive)))
	h.Set("X-Run-ID", report.RunID)
	h.Set("X-Report-Groups", strconv.Itoa(len(report.Groups)))
	h.Set("X-Report-Rows", strconv.Itoa(report.Rows))
	h.Set("X-Missing-Key-Rows", strconv.Itoa(report.MissingKeyRows))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(report.Archive); err != nil {
		logging.FromContext(r.Context()).Warn("archive write interrupted", "run_id", report.RunID, "error", err)
	}
}
