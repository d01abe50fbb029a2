package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseNumeric Tests
// ----------------------------------------------------------------------------

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      float64
	}{
		// Valid: basic forms
		{name: "positive integer", input: "123", wantValid: true, want: 123},
		{name: "zero", input: "0", wantValid: true, want: 0},
		{name: "negative integer", input: "-456", wantValid: true, want: -456},
		{name: "explicit plus", input: "+7", wantValid: true, want: 7},
		{name: "decimal number", input: "123.45", wantValid: true, want: 123.45},
		{name: "leading decimal point", input: ".99", wantValid: true, want: 0.99},
		{name: "trailing decimal point", input: "99.", wantValid: true, want: 99},
		{name: "scientific notation", input: "1.5e3", wantValid: true, want: 1500},
		{name: "negative exponent", input: "25E-2", wantValid: true, want: 0.25},

		// Valid: cleanup
		{name: "thousands separators", input: "1,234,567.89", wantValid: true, want: 1234567.89},
		{name: "misplaced separators", input: "12,34", wantValid: true, want: 1234},
		{name: "surrounding whitespace", input: "  42 ", wantValid: true, want: 42},
		{name: "whitespace and separators", input: " 1,000 ", wantValid: true, want: 1000},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "only whitespace", input: "   ", wantValid: false},
		{name: "only separator", input: ",", wantValid: false},
		{name: "text", input: "abc", wantValid: false},
		{name: "currency symbol", input: "$100", wantValid: false},
		{name: "inner space", input: "1 000", wantValid: false},
		{name: "infinity", input: "inf", wantValid: false},
		{name: "not a number", input: "NaN", wantValid: false},
		{name: "hex", input: "0x1F", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
		{name: "percent", input: "50%", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumeric(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseNumeric(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumeric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		{name: "iso date", input: "2024-03-15", wantValid: true, want: date(2024, 3, 15)},
		{name: "iso datetime", input: "2024-03-15 10:30:00", wantValid: true, want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{name: "iso T separator", input: "2024-03-15T10:30:00", wantValid: true, want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{name: "us slashed", input: "3/15/2024", wantValid: true, want: date(2024, 3, 15)},
		{name: "us slashed padded", input: "03/05/2024", wantValid: true, want: date(2024, 3, 5)},
		{name: "dashed month first", input: "03-05-2024", wantValid: true, want: date(2024, 3, 5)},
		{name: "dotted", input: "3.5.2024", wantValid: true, want: date(2024, 3, 5)},
		{name: "year first slashed", input: "2024/03/15", wantValid: true, want: date(2024, 3, 15)},
		{name: "month name", input: "Mar 15, 2024", wantValid: true, want: date(2024, 3, 15)},
		{name: "full month name", input: "March 15, 2024", wantValid: true, want: date(2024, 3, 15)},
		{name: "day month name", input: "15 Mar 2024", wantValid: true, want: date(2024, 3, 15)},
		{name: "excel style", input: "15-Mar-24", wantValid: true, want: date(2024, 3, 15)},
		{name: "two digit year", input: "3/15/24", wantValid: true, want: date(2024, 3, 15)},
		{name: "two digit year last century", input: "3/15/85", wantValid: true, want: date(1985, 3, 15)},
		{name: "compact", input: "20240315", wantValid: true, want: date(2024, 3, 15)},
		{name: "surrounding whitespace", input: " 2024-03-15 ", wantValid: true, want: date(2024, 3, 15)},
		{name: "ambiguous stays month first", input: "05/03/2024", wantValid: true, want: date(2024, 5, 3)},
		{name: "day first slashed", input: "25/12/2024", wantValid: true, want: date(2024, 12, 25)},
		{name: "day first dotted", input: "15.03.2024", wantValid: true, want: date(2024, 3, 15)},
		{name: "day first dashed", input: "31-01-2024", wantValid: true, want: date(2024, 1, 31)},
		{name: "day first with time", input: "25/12/2024 08:15", wantValid: true, want: time.Date(2024, 12, 25, 8, 15, 0, 0, time.UTC)},
		{name: "year first unpadded", input: "2024/3/5", wantValid: true, want: date(2024, 3, 5)},
		{name: "month name with time", input: "Mar 15, 2024 10:30", wantValid: true, want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},

		{name: "empty", input: "", wantValid: false},
		{name: "garbage", input: "not a date", wantValid: false},
		{name: "invalid month either way", input: "13/13/2024", wantValid: false},
		{name: "day first invalid day", input: "32/01/2024", wantValid: false},
		{name: "invalid day", input: "2024-02-30", wantValid: false},
		{name: "serial as text", input: "45366", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseDate(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// SerialToDate Tests
// ----------------------------------------------------------------------------

func TestSerialToDate(t *testing.T) {
	tests := []struct {
		name      string
		serial    float64
		wantValid bool
		want      time.Time
	}{
		{name: "modern date", serial: 45366, wantValid: true, want: date(2024, 3, 15)},
		{name: "year 2000", serial: 36526, wantValid: true, want: date(2000, 1, 1)},
		{name: "with time part", serial: 45366.5, wantValid: true, want: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)},
		{name: "zero", serial: 0, wantValid: false},
		{name: "negative", serial: -5, wantValid: false},
		{name: "beyond 9999", serial: 3000000, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SerialToDate(tt.serial)
			if ok != tt.wantValid {
				t.Fatalf("SerialToDate(%v) valid = %v, want %v", tt.serial, ok, tt.wantValid)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("SerialToDate(%v) = %v, want %v", tt.serial, got, tt.want)
			}
		})
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateToSerial(t *testing.T) {
	tests := []struct {
		in   time.Time
		want float64
	}{
		{date(2024, 3, 15), 45366},
		{date(2000, 1, 1), 36526},
		{date(1900, 3, 1), 61},
		{date(1900, 1, 1), 1},
		{time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), 45366.5},
		{time.Date(2024, 3, 15, 0, 0, 0, 0, time.FixedZone("IST", 19800)), 45366},
	}
	for _, tt := range tests {
		if got := DateToSerial(tt.in); got != tt.want {
			t.Errorf("DateToSerial(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	back, ok := SerialToDate(DateToSerial(date(2031, 7, 4)))
	if !ok || !back.Equal(date(2031, 7, 4)) {
		t.Errorf("round trip = %v, %v", back, ok)
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"d-mmm-yy", true},
		{"[h]:mm:ss", true},
		{"dd/mm/yyyy;@", true},
		{"0.00", false},
		{"#,##0", false},
		{`"Day "0`, false},
		{`[Red]#,##0`, false},
		{`0.00\d`, false},
		{"General", false},
	}
	for _, tt := range tests {
		if got := IsDateFormatCode(tt.code); got != tt.want {
			t.Errorf("IsDateFormatCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsBuiltinDateNumFmt(t *testing.T) {
	for _, id := range []int{14, 17, 22, 45, 47} {
		if !IsBuiltinDateNumFmt(id) {
			t.Errorf("IsBuiltinDateNumFmt(%d) = false, want true", id)
		}
	}
	for _, id := range []int{0, 1, 2, 4, 10, 49} {
		if IsBuiltinDateNumFmt(id) {
			t.Errorf("IsBuiltinDateNumFmt(%d) = true, want false", id)
		}
	}
}
