package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ivlev/voterroll/internal/model"
	"github.com/xuri/excelize/v2"
)

var testRecords = []model.Record{
	{
		HouseNo:    model.Ptr("45"),
		Name:       model.Ptr("രാമൻ"),
		Age:        model.Ptr(61),
		Gender:     model.Ptr(model.Male),
		Identifier: model.Ptr("ABC1234567"),
		Page:       3,
	},
	{Name: model.Ptr("സീത"), Page: 4},
}

var wantRows = [][]string{
	{"House No", "Name", "Age", "Gender", "Identifier", "Page No"},
	{"45", "രാമൻ", "61", "Male", "ABC1234567", "3"},
	{"", "സീത", "", "", "", "4"},
}

func writeAll(t *testing.T, s Sink) {
	t.Helper()
	if err := s.WriteHeader(model.Columns); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	for _, rec := range testRecords {
		if err := s.WriteRecord(rec); err != nil {
			t.Fatalf("WriteRecord failed: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestReportPath(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	got := ReportPath("out", "xlsx", now)
	want := filepath.Join("out", "voter_member_wise_report_20240309_140507.xlsx")
	if got != want {
		t.Errorf("ReportPath = %q, want %q", got, want)
	}
}

func TestXLSXSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	s, path, err := New("xlsx", dir, time.Now())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	writeAll(t, s)

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Errorf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows, wantRows) {
		t.Errorf("rows = %q, want %q", rows, wantRows)
	}
}

func TestCSVSink(t *testing.T) {
	s, path, err := New("csv", t.TempDir(), time.Now())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	writeAll(t, s)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows, wantRows) {
		t.Errorf("rows = %q, want %q", rows, wantRows)
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, _, err := New("ods", t.TempDir(), time.Now()); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestXLSXSinkUnwritablePath(t *testing.T) {
	s := NewXLSXSink(filepath.Join(t.TempDir(), "missing", "report.xlsx"))
	if err := s.WriteHeader(model.Columns); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err == nil {
		t.Error("Expected error saving into a missing directory")
	}
}
