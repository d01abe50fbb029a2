package core

// normalize.go implements the type-normalization pass over a decoded table.
//
// Every declared column is coerced to its schema type one cell at a time.
// A cell that cannot be coerced becomes the missing marker; nothing in this
// file returns an error or panics on bad data. Columns the schema does not
// declare pass through untouched, and declared columns that the input lacks
// are skipped.

import (
	"time"
)

// Plausible date window, inclusive on both ends.
const (
	MinDateYear = 1900
	MaxDateYear = 2100
)

// FutureYearSlack is how far past the current year a date may fall before it
// is treated as a century data-entry error.
const FutureYearSlack = 10

// CenturyCorrection is the number of years subtracted from such dates.
const CenturyCorrection = 100

// Normalizer coerces tables to a schema.
type Normalizer struct {
	Schema Schema

	// Now supplies the current time for the future-year check.
	// Defaults to time.Now.
	Now func() time.Time
}

// NewNormalizer creates a Normalizer for the given schema.
func NewNormalizer(schema Schema) *Normalizer {
	return &Normalizer{Schema: schema, Now: time.Now}
}

// cellOutcome is the result of coercing a single cell.
type cellOutcome struct {
	value     Value
	converted bool // false means the cell is missing after coercion
	corrected bool // a date was shifted back by CenturyCorrection years
}

func converted(v Value) cellOutcome { return cellOutcome{value: v, converted: true} }

var missingOutcome = cellOutcome{value: Missing()}

// Normalize returns a new table with every declared column coerced to its
// type. The input table is not modified.
func (n *Normalizer) Normalize(t *Table) *Table {
	out, _ := n.NormalizeWithStats(t)
	return out
}

// NormalizeWithStats is Normalize plus per-column outcome counts.
func (n *Normalizer) NormalizeWithStats(t *Table) (*Table, NormalizeStats) {
	out := t.Clone()
	stats := NormalizeStats{Rows: len(out.Rows)}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	maxYear := now().Year() + FutureYearSlack

	// Text, then numeric, then date columns, each in declaration order.
	for _, ft := range []FieldType{FieldText, FieldNumeric, FieldDate} {
		for _, col := range n.Schema.ColumnsOf(ft) {
			idx := out.ColumnIndex(col)
			if idx < 0 {
				continue
			}

			cs := ColumnStats{Column: col, Type: ft}
			for _, row := range out.Rows {
				var oc cellOutcome
				switch ft {
				case FieldText:
					oc = coerceText(row[idx])
				case FieldNumeric:
					oc = coerceNumeric(row[idx])
				case FieldDate:
					oc = coerceDate(row[idx], maxYear)
				}

				row[idx] = oc.value
				if oc.converted {
					cs.Converted++
				} else {
					cs.Missing++
				}
				if oc.corrected {
					cs.Corrected++
				}
			}
			stats.Columns = append(stats.Columns, cs)
		}
	}

	return out, stats
}

// coerceText renders any present cell as text. Missing cells stay missing.
func coerceText(v Value) cellOutcome {
	if v.IsMissing() {
		return missingOutcome
	}
	if v.Kind() == KindText {
		return converted(v)
	}
	return converted(Text(v.String()))
}

// coerceNumeric renders the cell as text, strips thousands separators and
// parses a decimal number.
func coerceNumeric(v Value) cellOutcome {
	if v.IsMissing() {
		return missingOutcome
	}
	f, ok := ParseNumeric(v.String())
	if !ok {
		return missingOutcome
	}
	return converted(Number(f))
}

// coerceDate parses the cell, applies the century correction at most once,
// then enforces the plausible window.
func coerceDate(v Value, maxYear int) cellOutcome {
	var (
		t  time.Time
		ok bool
	)
	switch v.Kind() {
	case KindDate:
		t, ok = v.Time(), true
	case KindNumber:
		t, ok = SerialToDate(v.Float())
	case KindText:
		t, ok = ParseDate(v.TextValue())
	}
	if !ok {
		return missingOutcome
	}

	corrected := false
	if t.Year() > maxYear {
		t = shiftYears(t, -CenturyCorrection)
		corrected = true
	}

	if t.Year() < MinDateYear || t.Year() > MaxDateYear {
		return cellOutcome{value: Missing(), corrected: corrected}
	}
	return cellOutcome{value: Date(t), converted: true, corrected: corrected}
}

// shiftYears moves t by the given number of years, keeping month and day.
// Feb 29 clamps to Feb 28 when the target year is not a leap year.
func shiftYears(t time.Time, years int) time.Time {
	y := t.Year() + years
	day := t.Day()
	if t.Month() == time.February && day == 29 && !isLeap(y) {
		day = 28
	}
	return time.Date(y, t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
