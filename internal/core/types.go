package core

import "time"

// FieldType represents the declared data type for a report column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldDate
)

// String returns the lowercase name of the field type.
func (ft FieldType) String() string {
	switch ft {
	case FieldText:
		return "text"
	case FieldNumeric:
		return "numeric"
	case FieldDate:
		return "date"
	default:
		return "unknown"
	}
}

// FieldSpec declares the target type for a single report column.
type FieldSpec struct {
	Name string    // Column header name (must match the input exactly)
	Type FieldType // Declared type
}

// Schema is a named set of column type declarations plus the grouping key.
// Schemas are registered at init time and never mutated afterwards.
type Schema struct {
	Key       string      // Unique identifier: "beneficiary"
	Label     string      // Display name
	KeyColumn string      // Grouping key column, e.g. "BRM"
	Fields    []FieldSpec // Declared columns, in declaration order

	text    map[string]struct{}
	numeric map[string]struct{}
	date    map[string]struct{}
}

// TextColumns returns the set of columns declared as text.
func (s Schema) TextColumns() map[string]struct{} { return s.text }

// NumericColumns returns the set of columns declared as numeric.
func (s Schema) NumericColumns() map[string]struct{} { return s.numeric }

// DateColumns returns the set of columns declared as dates.
func (s Schema) DateColumns() map[string]struct{} { return s.date }

// TypeOf returns the declared type of a column.
func (s Schema) TypeOf(column string) (FieldType, bool) {
	if _, ok := s.text[column]; ok {
		return FieldText, true
	}
	if _, ok := s.numeric[column]; ok {
		return FieldNumeric, true
	}
	if _, ok := s.date[column]; ok {
		return FieldDate, true
	}
	return 0, false
}

// ColumnsOf returns the declared columns of the given type in declaration order.
func (s Schema) ColumnsOf(ft FieldType) []string {
	var cols []string
	for _, f := range s.Fields {
		if f.Type == ft {
			cols = append(cols, f.Name)
		}
	}
	return cols
}

// ColumnStats counts per-cell outcomes for one declared column.
type ColumnStats struct {
	Column    string    `json:"column"`
	Type      FieldType `json:"-"`
	Converted int       `json:"converted"`
	Missing   int       `json:"missing"`   // Cells that ended as missing (including already-missing)
	Corrected int       `json:"corrected"` // Dates shifted back by a century
}

// NormalizeStats summarizes a normalization pass.
type NormalizeStats struct {
	Rows    int           `json:"rows"`
	Columns []ColumnStats `json:"columns"`
}

// Document is a named, rendered output file.
type Document struct {
	Name string
	Data []byte
}

// GenerateRequest describes a single report run.
type GenerateRequest struct {
	SchemaKey string // Empty selects the default schema
	FileName  string // Original upload name; the extension selects the decoder
	Body      []byte
}

// Report is the result of a successful run.
type Report struct {
	RunID          string
	SchemaKey      string
	FileName       string
	ArchiveName    string
	Archive        []byte
	Documents      []string // Entry names, in archive order
	Groups         []string // Group keys, in first-seen order
	Rows           int
	MissingKeyRows int
	Stats          NormalizeStats
	Duration       time.Duration
}

// RunStatus is the terminal state of a report run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one entry in the run history.
type RunRecord struct {
	ID             string    `json:"id"`
	SchemaKey      string    `json:"schemaKey"`
	FileName       string    `json:"fileName"`
	Rows           int       `json:"rows"`
	Groups         int       `json:"groups"`
	MissingKeyRows int       `json:"missingKeyRows"`
	Status         RunStatus `json:"status"`
	Error          string    `json:"error,omitempty"`
	ClientIP       string    `json:"clientIp,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
