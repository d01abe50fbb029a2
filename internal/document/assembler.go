// Package document renders tables into the report workbook template.
//
// Every output document starts from the same template. The data sheet is
// cleared from the start row down, the table is written in its own column
// order beginning at column A, and the workbook is flagged for a full
// recalculation when Excel opens it so template formulas pick up the data.
package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/JonMunkholm/BRMReports/internal/config"
	"github.com/JonMunkholm/BRMReports/internal/core"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the data sheet of the report template.
const DefaultSheet = "Raw Data"

// builtin number format 14 renders a date without a time part.
const dateNumFmt = 14

// rows written between context checks
const cancelCheckEvery = 500

// Assembler implements core.Renderer on top of an xlsx template.
type Assembler struct {
	TemplatePath string // empty renders into a blank workbook
	Sheet        string
	StartRow     int // 1-based

	mu       sync.Mutex
	template []byte
}

// NewAssembler creates an Assembler from report settings.
func NewAssembler(cfg config.ReportConfig) *Assembler {
	a := &Assembler{
		TemplatePath: cfg.TemplatePath,
		Sheet:        cfg.Sheet,
		StartRow:     cfg.StartRow,
	}
	if a.Sheet == "" {
		a.Sheet = DefaultSheet
	}
	if a.StartRow < 1 {
		a.StartRow = 2
	}
	return a
}

// CheckTemplate verifies the template can be opened and has the data sheet.
func (a *Assembler) CheckTemplate() error {
	f, err := a.open()
	if err != nil {
		return err
	}
	return f.Close()
}

// Render writes t into a fresh copy of the template and returns xlsx bytes.
func (a *Assembler) Render(ctx context.Context, t *core.Table) ([]byte, error) {
	f, err := a.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := a.clear(f); err != nil {
		return nil, fmt.Errorf("clear %s: %w", a.Sheet, err)
	}
	if err := a.write(ctx, f, t); err != nil {
		return nil, err
	}

	fullCalc := true
	if err := f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		return nil, fmt.Errorf("set calc props: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// open returns a new workbook: a copy of the cached template, or a blank
// workbook with the data sheet when no template is configured.
func (a *Assembler) open() (*excelize.File, error) {
	if a.TemplatePath == "" {
		f := excelize.NewFile()
		if err := f.SetSheetName("Sheet1", a.Sheet); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}

	data, err := a.templateBytes()
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrTemplate, a.TemplatePath, err)
	}
	if idx, _ := f.GetSheetIndex(a.Sheet); idx < 0 {
		f.Close()
		return nil, fmt.Errorf("%w: sheet %q not found in %s", core.ErrTemplate, a.Sheet, a.TemplatePath)
	}
	return f, nil
}

// templateBytes reads the template once. A failed read is retried on the
// next call so a template restored on disk is picked up without a restart.
func (a *Assembler) templateBytes() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.template != nil {
		return a.template, nil
	}
	data, err := os.ReadFile(a.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTemplate, err)
	}
	a.template = data
	return data, nil
}

// clear blanks every cell at or below StartRow, removing formulas too.
// Cell styles are kept.
func (a *Assembler) clear(f *excelize.File) error {
	maxRow, maxCol, err := usedRange(f, a.Sheet)
	if err != nil {
		return err
	}

	for r := a.StartRow; r <= maxRow; r++ {
		for c := 1; c <= maxCol; c++ {
			axis, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return err
			}
			if err := f.SetCellFormula(a.Sheet, axis, ""); err != nil {
				return err
			}
			if err := f.SetCellValue(a.Sheet, axis, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// usedRange returns the last row and column holding anything in sheet,
// taken from the sheet dimension and the stored rows, whichever is larger.
func usedRange(f *excelize.File, sheet string) (int, int, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, 0, err
	}

	maxRow, maxCol := len(rows), 0
	for _, r := range rows {
		maxCol = max(maxCol, len(r))
	}

	if dim, err := f.GetSheetDimension(sheet); err == nil {
		for i := len(dim) - 1; i >= 0; i-- {
			if dim[i] == ':' {
				dim = dim[i+1:]
				break
			}
		}
		if c, r, err := excelize.CellNameToCoordinates(dim); err == nil {
			maxRow, maxCol = max(maxRow, r), max(maxCol, c)
		}
	}
	return maxRow, maxCol, nil
}

// write puts the table on the data sheet. A blank workbook also gets the
// header row just above the data.
func (a *Assembler) write(ctx context.Context, f *excelize.File, t *core.Table) error {
	if a.TemplatePath == "" && a.StartRow > 1 {
		for c, name := range t.Columns {
			axis, _ := excelize.CoordinatesToCellName(c+1, a.StartRow-1)
			if err := f.SetCellValue(a.Sheet, axis, name); err != nil {
				return err
			}
		}
	}

	ds := newDateStyler(f, a.Sheet)
	for i, row := range t.Rows {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		r := a.StartRow + i
		for c, v := range row {
			if v.IsMissing() {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r)
			if err != nil {
				return err
			}
			if err := writeCell(f, a.Sheet, axis, v, ds); err != nil {
				return fmt.Errorf("write %s: %w", axis, err)
			}
		}
	}
	return nil
}

func writeCell(f *excelize.File, sheet, axis string, v core.Value, ds *dateStyler) error {
	switch v.Kind() {
	case core.KindText:
		return f.SetCellStr(sheet, axis, v.TextValue())
	case core.KindNumber:
		return f.SetCellFloat(sheet, axis, v.Float(), -1, 64)
	case core.KindDate:
		if err := f.SetCellFloat(sheet, axis, core.DateToSerial(v.Time()), -1, 64); err != nil {
			return err
		}
		return ds.apply(axis)
	}
	return nil
}

// dateStyler makes date cells display as dates. A cell whose template style
// already formats dates is left alone; any other style is copied with the
// number format swapped, so fonts and borders from the template survive.
type dateStyler struct {
	f       *excelize.File
	sheet   string
	derived map[int]int // template style id -> date style id
}

func newDateStyler(f *excelize.File, sheet string) *dateStyler {
	return &dateStyler{f: f, sheet: sheet, derived: make(map[int]int)}
}

func (d *dateStyler) apply(axis string) error {
	current, err := d.f.GetCellStyle(d.sheet, axis)
	if err != nil {
		return err
	}

	id, ok := d.derived[current]
	if !ok {
		if id, err = d.dateStyleFor(current); err != nil {
			return err
		}
		d.derived[current] = id
	}
	if id == current {
		return nil
	}
	return d.f.SetCellStyle(d.sheet, axis, axis, id)
}

func (d *dateStyler) dateStyleFor(current int) (int, error) {
	style := &excelize.Style{}
	if current != 0 {
		st, err := d.f.GetStyle(current)
		if err != nil {
			return 0, err
		}
		if core.IsDateStyle(st) {
			return current, nil
		}
		style = st
	}
	style.NumFmt = dateNumFmt
	style.CustomNumFmt = nil
	return d.f.NewStyle(style)
}
