package ingest

import (
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/BRMReports/internal/core"
	"github.com/xuri/excelize/v2"
)

// decodeXLSX reads one sheet of a workbook. Numeric cells become numbers,
// or dates when their number format is a date format. Everything else is
// read as the text Excel would display.
func decodeXLSX(r io.Reader, sheet string) (*core.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, core.ErrEmptyFile
		}
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("invalid workbook: sheet %q not found", sheet)
	}

	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: read sheet %q: %w", sheet, err)
	}

	sr := &sheetReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}

	var (
		header []string
		rows   [][]core.Value
	)
	for r := range shown {
		if header == nil {
			if isBlankRecord(shown[r]) {
				continue
			}
			header = append([]string(nil), shown[r]...)
			continue
		}

		row := make([]core.Value, len(shown[r]))
		for c := range shown[r] {
			rawText := ""
			if r < len(raw) && c < len(raw[r]) {
				rawText = raw[r][c]
			}
			row[c] = sr.cell(c+1, r+1, rawText, shown[r][c])
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

// sheetReader types individual cells, caching the date check per style.
type sheetReader struct {
	f          *excelize.File
	sheet      string
	dateStyles map[int]bool
}

func (s *sheetReader) cell(col, row int, raw, shown string) core.Value {
	if raw == "" && shown == "" {
		return core.Missing()
	}

	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return textCell(shown)
	}
	ct, err := s.f.GetCellType(s.sheet, axis)
	if err != nil {
		return textCell(shown)
	}

	switch ct {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeBool:
		return textCell(shown)
	case excelize.CellTypeError:
		return core.Missing()
	case excelize.CellTypeDate:
		if t, ok := core.ParseDate(raw); ok {
			return core.Date(t)
		}
		return textCell(shown)
	}

	// Unset or explicit number: the raw value is the stored number.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return textCell(shown)
	}
	if s.isDateCell(axis) {
		if t, ok := core.SerialToDate(f); ok {
			return core.Date(t)
		}
	}
	return core.Number(f)
}

func (s *sheetReader) isDateCell(axis string) bool {
	styleID, err := s.f.GetCellStyle(s.sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if v, ok := s.dateStyles[styleID]; ok {
		return v
	}

	style, err := s.f.GetStyle(styleID)
	isDate := err == nil && core.IsDateStyle(style)
	s.dateStyles[styleID] = isDate
	return isDate
}
