package core

// convert.go provides the per-cell parsers used by the Normalizer.
//
// These functions handle the messy reality of exported report data:
//   - Thousands separators in numbers ("12,345.50")
//   - Many date layouts (ISO, US, EU, month names, compact)
//   - Excel serial dates from spreadsheet cells
//
// All Parse* functions report failure through their bool result and never
// return an error; the caller decides how a failed cell is represented.

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ThousandsSeparator is stripped from numeric cells before parsing.
const ThousandsSeparator = ","

// Date layouts, tried in order. Unambiguous layouts come first. Slashed,
// dashed and dotted forms are read month-first; the day-first layouts only
// match when the first field cannot be a month.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
	"1/2/2006 15:04", "1/2/2006 15:04:05", "1/2/2006 3:04 PM", "1/2/2006 3:04:05 PM",
	"2/1/2006", "02/01/2006", "2-1-2006", "2.1.2006",
	"2/1/2006 15:04", "2/1/2006 15:04:05",
	"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006", "Jan 2 2006",
	"Jan 2, 2006 15:04", "Jan 2, 2006 3:04 PM",
	"2-Jan-2006", "2-Jan-06", "02-Jan-06",
	"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	"20060102",
}

// Excel serial dates outside this window are not treated as dates.
// 1 is 1900-01-01 and 2958465 is 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseNumeric parses a numeric cell after removing thousands separators
// and surrounding whitespace.
func ParseNumeric(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ThousandsSeparator, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Validate numeric format; ParseFloat alone would accept "inf", "NaN"
	// and hex floats.
	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDate parses a date cell using the supported layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// SerialToDate converts an Excel serial date (1900 date system).
func SerialToDate(serial float64) (time.Time, bool) {
	if serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateToSerial converts t to an Excel serial date (1900 date system),
// ignoring its location. Serials below 61 follow Excel's 1900 leap-year
// quirk.
func DateToSerial(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	serial := float64(wall.Unix()-excelEpoch.Unix()) / secondsPerDay
	if serial < 61 {
		serial--
	}
	return serial
}

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// IsBuiltinDateNumFmt reports whether a built-in number format id renders
// a date or time, including the East Asian locale ids.
func IsBuiltinDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// IsDateFormatCode reports whether a custom number format contains date or
// time tokens outside quoted literals, escapes and bracketed sections.
func IsDateFormatCode(code string) bool {
	// Only the positive section decides.
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}

	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case inBracket:
			if c == ']' {
				inBracket = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			switch c | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

// IsDateStyle reports whether an excelize style formats numbers as dates.
func IsDateStyle(st *excelize.Style) bool {
	if st == nil {
		return false
	}
	if st.CustomNumFmt != nil {
		return IsDateFormatCode(*st.CustomNumFmt)
	}
	return IsBuiltinDateNumFmt(st.NumFmt)
}
