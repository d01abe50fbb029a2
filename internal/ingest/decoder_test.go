package ingest

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/BRMReports/internal/core"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"report.xlsx", FormatXLSX, false},
		{"REPORT.XLSX", FormatXLSX, false},
		{"data.csv", FormatCSV, false},
		{"data.Csv", FormatCSV, false},
		{"report.xls", "", true},
		{"report.pdf", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				if !errors.Is(err, core.ErrUnsupportedFormat) {
					t.Fatalf("DetectFormat(%q) error = %v, want ErrUnsupportedFormat", tt.name, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
			}
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	input := "\xEF\xBB\xBFClient Name,BRM,BRM Name ,Quoted Premium\r\n" +
		"Acme,Alice,Alice A,\"1,000\"\r\n" +
		",,,\r\n" +
		"Globex,N/A,,200\r\n"

	tbl, err := New(Options{}).Decode("data.csv", []byte(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	wantCols := []string{"Client Name", "BRM", "BRM Name ", "Quoted Premium"}
	if len(tbl.Columns) != len(wantCols) {
		t.Fatalf("Columns = %q, want %q", tbl.Columns, wantCols)
	}
	for i, c := range wantCols {
		if tbl.Columns[i] != c {
			t.Errorf("Columns[%d] = %q, want %q", i, tbl.Columns[i], c)
		}
	}

	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2 (blank row dropped)", tbl.Len())
	}
	if !tbl.Rows[0][3].Equal(core.Text("1,000")) {
		t.Errorf("premium = %q, want text 1,000", tbl.Rows[0][3].String())
	}
	if !tbl.Rows[1][1].IsMissing() {
		t.Error("N/A should decode as missing")
	}
	if !tbl.Rows[1][2].IsMissing() {
		t.Error("empty cell should decode as missing")
	}
}

func TestDecodeCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{name: "empty", input: "", wantErr: core.ErrEmptyFile},
		{name: "only blank lines", input: "\n\n,,\n", wantErr: core.ErrEmptyFile},
		{name: "bare quote", input: "a,b\nx,y\"z\n", wantMsg: "parse error on line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{}).Decode("data.csv", []byte(tt.input))
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want message containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDecodeCSV_RaggedRows(t *testing.T) {
	tbl, err := New(Options{}).Decode("data.csv", []byte("A,B,C\n1\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(tbl.Rows[0]) != 4 || !tbl.Rows[0][2].IsMissing() {
		t.Error("short row should be padded")
	}
	if len(tbl.Columns) != 4 || tbl.Columns[3] != "Unnamed: 3" {
		t.Fatalf("Columns = %q, want extra Unnamed: 3 column", tbl.Columns)
	}
	if !tbl.Rows[0][3].IsMissing() {
		t.Error("short row should be padded to the widened header")
	}
	if !tbl.Rows[1][3].Equal(core.Text("4")) {
		t.Errorf("Rows[1][3] = %q, want 4", tbl.Rows[1][3].String())
	}
}

func TestDecodeCSV_TrailingBlankColumnDropped(t *testing.T) {
	tbl, err := New(Options{}).Decode("data.csv", []byte("A,B,\n1,2,\n3,4,\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(tbl.Columns) != 2 {
		t.Errorf("Columns = %q, want [A B]", tbl.Columns)
	}
}

func TestHeaderNames(t *testing.T) {
	got := headerNames([]string{"A", "", "A", "B\r", "A", "A.1"})
	want := []string{"A", "Unnamed: 1", "A.1", "B", "A.2", "A.1.1"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("headerNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := New(Options{}).Decode("report.txt", []byte("a,b"))
	if !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	d := New(Options{MaxFileSize: 4})

	_, err := d.Decode("data.csv", []byte("a,b\n1,2\n"))
	if err == nil || core.MapError(err).Code != "FILE001" {
		t.Errorf("Decode() error = %v, want FILE001", err)
	}

	_, err = d.ReadAll(strings.NewReader("0123456789"))
	if err == nil || core.MapError(err).Code != "FILE001" {
		t.Errorf("ReadAll() error = %v, want FILE001", err)
	}

	data, err := New(Options{MaxFileSize: 10}).ReadAll(strings.NewReader("0123456789"))
	if err != nil || len(data) != 10 {
		t.Errorf("ReadAll() at the limit = %d bytes, %v", len(data), err)
	}
}

// buildWorkbook writes cells into Sheet1 of a new workbook.
func buildWorkbook(t *testing.T, cells map[string]any, setup func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for axis, v := range cells {
		if err := f.SetCellValue("Sheet1", axis, v); err != nil {
			t.Fatalf("SetCellValue(%s) error = %v", axis, err)
		}
	}
	if setup != nil {
		setup(f)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecodeXLSX(t *testing.T) {
	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	body := buildWorkbook(t, map[string]any{
		"A1": "Client Name", "B1": "BRM", "C1": "Quoted Premium", "D1": "policy_start_date", "E1": "Sr.No",
		"A2": "Acme", "B2": "Alice", "C2": 1500.5, "D2": start, "E2": 1,
		"A4": "Globex", "B4": "#N/A", "C4": "2,000", "D4": "3/15/2024",
	}, func(f *excelize.File) {
		if err := f.SetCellFormula("Sheet1", "E4", "E2+1"); err != nil {
			t.Fatal(err)
		}
	})

	tbl, err := New(Options{}).Decode("report.xlsx", body)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2 (blank row 3 dropped)", tbl.Len())
	}
	if got := tbl.ColumnIndex("policy_start_date"); got != 3 {
		t.Fatalf("ColumnIndex(policy_start_date) = %d", got)
	}

	row := tbl.Rows[0]
	if !row[0].Equal(core.Text("Acme")) {
		t.Errorf("A2 = %v %q, want text", row[0].Kind(), row[0].String())
	}
	if !row[2].Equal(core.Number(1500.5)) {
		t.Errorf("C2 = %v %q, want number 1500.5", row[2].Kind(), row[2].String())
	}
	if row[3].Kind() != core.KindDate || !row[3].Time().Equal(start) {
		t.Errorf("D2 = %v %q, want date 2024-03-15", row[3].Kind(), row[3].String())
	}
	if !row[4].Equal(core.Number(1)) {
		t.Errorf("E2 = %v %q, want number 1", row[4].Kind(), row[4].String())
	}

	row = tbl.Rows[1]
	if !row[1].IsMissing() {
		t.Errorf("B4 = %q, want missing", row[1].String())
	}
	if !row[2].Equal(core.Text("2,000")) {
		t.Errorf("C4 = %v %q, want text 2,000", row[2].Kind(), row[2].String())
	}
	if !row[3].Equal(core.Text("3/15/2024")) {
		t.Errorf("D4 = %v %q, want text", row[3].Kind(), row[3].String())
	}
}

func TestDecodeXLSX_CellsPastHeader(t *testing.T) {
	body := buildWorkbook(t, map[string]any{
		"A1": "BRM", "B1": "Quoted Premium",
		"A2": "A", "B2": 100, "C2": "extra-note",
		"A3": "B", "B3": 200, "E3": "far",
	}, nil)

	tbl, err := New(Options{}).Decode("report.xlsx", body)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []string{"BRM", "Quoted Premium", "Unnamed: 2", "Unnamed: 3", "Unnamed: 4"}
	if len(tbl.Columns) != len(want) {
		t.Fatalf("Columns = %q, want %q", tbl.Columns, want)
	}
	for i, c := range want {
		if tbl.Columns[i] != c {
			t.Errorf("Columns[%d] = %q, want %q", i, tbl.Columns[i], c)
		}
	}
	if !tbl.Rows[0][2].Equal(core.Text("extra-note")) {
		t.Errorf("C2 = %q, want extra-note", tbl.Rows[0][2].String())
	}
	if !tbl.Rows[0][4].IsMissing() {
		t.Error("E2 should be missing")
	}
	if !tbl.Rows[1][4].Equal(core.Text("far")) {
		t.Errorf("E3 = %q, want far", tbl.Rows[1][4].String())
	}
}

func TestDecodeXLSX_CustomDateFormat(t *testing.T) {
	body := buildWorkbook(t, map[string]any{
		"A1": "BRM", "B1": "Quote Creation Date", "C1": "Quoted Premium",
		"A2": "Bob", "B2": 45366, "C2": 45366,
	}, func(f *excelize.File) {
		fmtCode := `dd"/"mmm"/"yyyy`
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &fmtCode})
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetCellStyle("Sheet1", "B2", "B2", style); err != nil {
			t.Fatal(err)
		}
	})

	tbl, err := New(Options{}).Decode("report.xlsx", body)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got := tbl.Rows[0][1]; got.Kind() != core.KindDate || got.String() != "2024-03-15" {
		t.Errorf("B2 = %v %q, want date 2024-03-15", got.Kind(), got.String())
	}
	if got := tbl.Rows[0][2]; !got.Equal(core.Number(45366)) {
		t.Errorf("C2 = %v %q, want plain number", got.Kind(), got.String())
	}
}

func TestDecodeXLSX_Sheets(t *testing.T) {
	body := buildWorkbook(t, map[string]any{"A1": "BRM", "A2": "x"}, func(f *excelize.File) {
		if _, err := f.NewSheet("Other"); err != nil {
			t.Fatal(err)
		}
		if err := f.SetCellValue("Other", "A1", "Region"); err != nil {
			t.Fatal(err)
		}
	})

	tbl, err := New(Options{}).Decode("r.xlsx", body)
	if err != nil || tbl.Columns[0] != "BRM" {
		t.Fatalf("first sheet should be read by default: %v, %v", tbl, err)
	}

	tbl, err = New(Options{Sheet: "Other"}).Decode("r.xlsx", body)
	if err != nil || tbl.Columns[0] != "Region" {
		t.Fatalf("named sheet should be read: %v, %v", tbl, err)
	}

	_, err = New(Options{Sheet: "Missing"}).Decode("r.xlsx", body)
	if err == nil || core.MapError(err).Code != "FILE003" {
		t.Errorf("unknown sheet error = %v, want FILE003", err)
	}
}

func TestDecodeXLSX_Invalid(t *testing.T) {
	_, err := New(Options{}).Decode("r.xlsx", []byte("not a zip"))
	if err == nil || core.MapError(err).Code != "FILE003" {
		t.Errorf("error = %v, want FILE003", err)
	}

	empty := buildWorkbook(t, nil, nil)
	_, err = New(Options{}).Decode("r.xlsx", empty)
	if !errors.Is(err, core.ErrEmptyFile) {
		t.Errorf("error = %v, want ErrEmptyFile", err)
	}
}

func TestBOMSkipper(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...), "a,b"},
		{"without BOM", []byte("a,b"), "a,b"},
		{"empty", nil, ""},
		{"only BOM", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"partial BOM", []byte{0xEF, 0xBB, 'x'}, string([]byte{0xEF, 0xBB, 'x'})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if _, err := out.ReadFrom(newBOMSkipper(bytes.NewReader(tt.input))); err != nil {
				t.Fatalf("read error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("got %q, want %q", out.String(), tt.want)
			}
		})
	}
}

// chunkReader returns at most n bytes per Read.
type chunkReader struct {
	data []byte
	n    int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	k := min(c.n, len(p), len(c.data))
	copy(p, c.data[:k])
	c.data = c.data[k:]
	return k, nil
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		chunk int
		want  string
	}{
		{"ascii", []byte("hello"), 64, "hello"},
		{"valid multibyte", []byte("café,naïve"), 64, "café,naïve"},
		{"invalid byte", []byte{'h', 0x80, 'i'}, 64, "h?i"},
		{"rune split across reads", []byte("aé€b"), 2, "aé€b"},
		{"truncated rune at EOF", []byte{'a', 0xE2, 0x82}, 64, "a??"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			r := newUTF8Sanitizer(&chunkReader{data: tt.input, n: tt.chunk})
			if _, err := out.ReadFrom(r); err != nil {
				t.Fatalf("read error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("got %q, want %q", out.String(), tt.want)
			}
		})
	}
}
