// Package ingest decodes uploaded report files into core tables.
//
// Two formats are accepted, chosen by file extension: Excel workbooks (.xlsx)
// read with excelize, and comma-separated files (.csv). The first non-empty
// row is the header. Cells are kept untyped except where the workbook itself
// says a cell holds a number or a date; the core normalizer does the rest.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/BRMReports/internal/core"
)

// Format identifies a supported input format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat returns the format for a file name. Extensions are matched
// case-insensitively.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, fileName)
	}
}

// Options configure a Decoder.
type Options struct {
	// Sheet is the workbook sheet to read. Empty reads the first sheet.
	Sheet string

	// MaxFileSize bounds the bytes read by ReadAll. Zero means no limit.
	MaxFileSize int64
}

// Decoder implements core.Decoder for xlsx and csv uploads.
type Decoder struct {
	opts Options
}

// New creates a Decoder.
func New(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

// CheckFormat rejects unsupported file names before any bytes are read.
func (d *Decoder) CheckFormat(fileName string) error {
	_, err := DetectFormat(fileName)
	return err
}

// Decode parses body according to the file name's extension.
func (d *Decoder) Decode(fileName string, body []byte) (*core.Table, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}
	if d.opts.MaxFileSize > 0 && int64(len(body)) > d.opts.MaxFileSize {
		return nil, fileTooLarge(d.opts.MaxFileSize)
	}

	switch format {
	case FormatXLSX:
		return decodeXLSX(bytes.NewReader(body), d.opts.Sheet)
	default:
		return decodeCSV(bytes.NewReader(body))
	}
}

// ReadAll reads an upload, failing once more than MaxFileSize bytes arrive.
func (d *Decoder) ReadAll(r io.Reader) ([]byte, error) {
	lr := newLimitReader(r, d.opts.MaxFileSize)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func fileTooLarge(limit int64) error {
	return fmt.Errorf("file too large: exceeds %s bytes", strconv.FormatInt(limit, 10))
}

// naTokens are cell texts read as missing, matching what spreadsheet and
// dataframe tools treat as not-available.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// textCell maps raw cell text to a value. Empty and NA cells are missing.
func textCell(s string) core.Value {
	if s == "" {
		return core.Missing()
	}
	if _, ok := naTokens[s]; ok {
		return core.Missing()
	}
	return core.Text(s)
}

// headerNames cleans header cells and makes them unique. Blank headers
// become "Unnamed: <index>"; repeats get ".1", ".2" suffixes.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	repeats := make(map[string]int)

	for i, h := range raw {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.TrimRight(h, "\r\n")
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}

		name := h
		for used[name] {
			repeats[h]++
			name = h + "." + strconv.Itoa(repeats[h])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// isBlankRow reports whether every cell is missing.
func isBlankRow(row []core.Value) bool {
	for _, v := range row {
		if !v.IsMissing() {
			return false
		}
	}
	return true
}

// buildTable widens the header to the longest data row, drops blank
// trailing header cells that no data row fills, then builds a rectangular
// table. Cells past the last named header become "Unnamed: <index>" columns.
func buildTable(header []string, rows [][]core.Value) *core.Table {
	for _, r := range rows {
		for len(header) < len(r) {
			header = append(header, "")
		}
	}

	width := len(header)
	for width > 0 && strings.TrimSpace(header[width-1]) == "" {
		used := false
		for _, r := range rows {
			if len(r) >= width && !r[width-1].IsMissing() {
				used = true
				break
			}
		}
		if used {
			break
		}
		width--
	}
	return core.NewTable(headerNames(header[:width]), rows)
}
