package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/BRMReports/internal/core"
	"github.com/JonMunkholm/BRMReports/internal/logging"
	"github.com/JonMunkholm/BRMReports/internal/web/templates"
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	schemas := s.service.ListSchemas()
	options := make([]templates.SchemaOption, 0, len(schemas))
	for _, sc := range schemas {
		options = append(options, templates.SchemaOption{
			Key:      sc.Key,
			Label:    sc.Label,
			Selected: sc.Key == s.cfg.Report.DefaultSchema,
		})
	}

	page := templates.UploadPage(templates.UploadPageData{
		Schemas:     options,
		MaxFileSize: s.cfg.Upload.MaxFileSize,
		ArchiveName: s.cfg.Report.ArchiveName,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render upload page", "error", err)
	}
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status  string                   `json:"status"`
	Schemas int                      `json:"schemas"`
	Reports core.ReportLimiterStatus `json:"reports"`
}

// handleHealth reports liveness plus current generation load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Schemas: core.SchemaCount(),
		Reports: s.service.LimiterStatus(),
	})
}

type fieldInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type schemaInfo struct {
	Key       string      `json:"key"`
	Label     string      `json:"label"`
	KeyColumn string      `json:"keyColumn"`
	Default   bool        `json:"default"`
	Fields    []fieldInfo `json:"fields"`
}

// handleListSchemas returns every registered schema with its column types.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas := s.service.ListSchemas()
	out := make([]schemaInfo, 0, len(schemas))
	for _, sc := range schemas {
		info := schemaInfo{
			Key:       sc.Key,
			Label:     sc.Label,
			KeyColumn: sc.KeyColumn,
			Default:   sc.Key == s.cfg.Report.DefaultSchema,
			Fields:    make([]fieldInfo, 0, len(sc.Fields)),
		}
		if s.cfg.Report.KeyColumn != "" {
			info.KeyColumn = s.cfg.Report.KeyColumn
		}
		for _, f := range sc.Fields {
			info.Fields = append(info.Fields, fieldInfo{Name: f.Name, Type: f.Type.String()})
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListRuns returns recent report runs, newest first.
// ?limit= caps the result; the store clamps out-of-range values.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "invalid limit",
				Message: "limit must be a non-negative integer",
				Code:    "REQ001",
			})
			return
		}
		limit = n
	}

	runs, err := s.service.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []core.RunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}
