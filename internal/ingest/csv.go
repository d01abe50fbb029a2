package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/BRMReports/internal/core"
)

// decodeCSV reads a comma-separated upload. Every non-empty cell is text;
// typing is left to the normalizer. Rows may have differing widths.
func decodeCSV(r io.Reader) (*core.Table, error) {
	cr := csv.NewReader(wrapText(r))
	cr.FieldsPerRecord = -1

	var (
		header []string
		rows   [][]core.Value
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}

		if header == nil {
			if isBlankRecord(rec) {
				continue
			}
			header = append([]string(nil), rec...)
			continue
		}

		row := make([]core.Value, len(rec))
		for i, cell := range rec {
			row[i] = textCell(cell)
		}
		if isBlankRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	if header == nil {
		return nil, core.ErrEmptyFile
	}
	return buildTable(header, rows), nil
}

func isBlankRecord(rec []string) bool {
	for _, c := range rec {
		if c != "" {
			return false
		}
	}
	return true
}
