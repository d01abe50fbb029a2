package core

import (
	"math"
	"testing"
	"time"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"missing", Missing(), ""},
		{"text", Text("Alice"), "Alice"},
		{"text keeps spaces", Text(" a "), " a "},
		{"integer number", Number(1500), "1500"},
		{"fractional number", Number(0.25), "0.25"},
		{"negative number", Number(-3.5), "-3.5"},
		{"date only", Date(date(2024, 3, 15)), "2024-03-15"},
		{"date with time", Date(time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC)), "2024-03-15 09:05:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumber_NaNIsMissing(t *testing.T) {
	if !Number(math.NaN()).IsMissing() {
		t.Error("Number(NaN) should be missing")
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"missing equals missing", Missing(), Missing(), true},
		{"same text", Text("x"), Text("x"), true},
		{"different text", Text("x"), Text("y"), false},
		{"text vs number", Text("1"), Number(1), false},
		{"same number", Number(2.5), Number(2.5), true},
		{"same date", Date(date(2024, 1, 1)), Date(date(2024, 1, 1)), true},
		{"different date", Date(date(2024, 1, 1)), Date(date(2024, 1, 2)), false},
		{"missing vs empty text", Missing(), Text(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTable_Rectangular(t *testing.T) {
	tbl := NewTable([]string{"A", "B", "C"}, [][]Value{
		{Text("1")},
		{Text("1"), Text("2"), Text("3"), Text("extra")},
	})

	for i, row := range tbl.Rows {
		if len(row) != 3 {
			t.Fatalf("row %d has %d cells, want 3", i, len(row))
		}
	}
	if !tbl.Rows[0][1].IsMissing() || !tbl.Rows[0][2].IsMissing() {
		t.Error("short row should be padded with missing cells")
	}
	if tbl.Rows[1][2].String() != "3" {
		t.Errorf("Rows[1][2] = %q, want %q", tbl.Rows[1][2].String(), "3")
	}
}

func TestColumnIndex_ExactMatch(t *testing.T) {
	tbl := NewTable([]string{"BRM", "BRM Name "}, nil)

	if got := tbl.ColumnIndex("BRM Name "); got != 1 {
		t.Errorf("ColumnIndex(%q) = %d, want 1", "BRM Name ", got)
	}
	if got := tbl.ColumnIndex("BRM Name"); got != -1 {
		t.Errorf("ColumnIndex(%q) = %d, want -1", "BRM Name", got)
	}
	if got := tbl.ColumnIndex("brm"); got != -1 {
		t.Errorf("ColumnIndex(%q) = %d, want -1", "brm", got)
	}
}

func TestClone_Independent(t *testing.T) {
	orig := NewTable([]string{"A"}, [][]Value{{Text("x")}})
	c := orig.Clone()

	c.Rows[0][0] = Text("changed")
	c.Columns[0] = "Z"

	if orig.Rows[0][0].String() != "x" || orig.Columns[0] != "A" {
		t.Error("modifying a clone must not change the original")
	}
	if !orig.Equal(NewTable([]string{"A"}, [][]Value{{Text("x")}})) {
		t.Error("original should be unchanged")
	}
}

func TestLen_NilTable(t *testing.T) {
	var tbl *Table
	if tbl.Len() != 0 {
		t.Errorf("nil Len() = %d, want 0", tbl.Len())
	}
}
