package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/drivetheory/internal/progress"
)

func sampleRecord() progress.Record {
	rec := progress.Defaults([]progress.CategorySeed{
		{ID: "road-signs", TotalQuestions: 100},
		{ID: "highway-code", TotalQuestions: 150},
	})
	rec.TotalXP = 60
	rec.QuestionsAnswered = 8
	rec.CorrectAnswers = 6
	rec.DayStreak = 2
	rec.CategoryProgress["road-signs"] = progress.CategoryProgress{Completed: 6, Total: 100, BestScore: 80}
	rec.History = []progress.HistoryPoint{
		{DateKey: "2025-03-08", TotalXP: 10, QuestionsAnswered: 2, CorrectAnswers: 1, DayStreak: 1},
		{DateKey: "2025-03-09", TotalXP: 40, QuestionsAnswered: 6, CorrectAnswers: 4, DayStreak: 2},
		{DateKey: "2025-03-10", TotalXP: 60, QuestionsAnswered: 8, CorrectAnswers: 6, DayStreak: 2},
	}
	return rec
}

// ============================================================
// Rows
// ============================================================

func TestRowsDeltas(t *testing.T) {
	rows := Rows(sampleRecord().History)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].XPGained != 0 {
		t.Fatalf("first day gain should be 0, got %d", rows[0].XPGained)
	}
	r := rows[1]
	if r.XPGained != 30 || r.Questions != 4 || r.Correct != 3 || r.Accuracy != 75 {
		t.Fatalf("unexpected second row: %+v", r)
	}
	if r.TotalXP != 40 || r.DayStreak != 2 {
		t.Fatalf("cumulative values not carried: %+v", r)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"csv", "JSON", "xlsx"} {
		if _, err := ParseFormat(s); err != nil {
			t.Fatalf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatal("expected error for pdf")
	}
}

// ============================================================
// CSV
// ============================================================

func TestHistoryToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := HistoryToCSV(sampleRecord(), path); err != nil {
		t.Fatalf("HistoryToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}
	for i, h := range header {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}
	row := records[3]
	if row[0] != "2025-03-10" || row[1] != "60" || row[2] != "20" || row[5] != "100" {
		t.Fatalf("unexpected last row: %v", row)
	}
}

func TestHistoryToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := HistoryToCSV(progress.Record{}, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestHistoryToCSVBadPath(t *testing.T) {
	if err := HistoryToCSV(sampleRecord(), "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestHistoryToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := HistoryToJSON(sampleRecord(), path); err != nil {
		t.Fatalf("HistoryToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out jsonExport
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 3 || len(out.Days) != 3 {
		t.Fatalf("expected 3 days, got count=%d len=%d", out.Count, len(out.Days))
	}
	if out.ExportedAt == "" {
		t.Fatal("exported_at should be set")
	}
	if out.Level != 1 || out.TotalXP != 60 || out.Accuracy != 75 {
		t.Fatalf("unexpected totals: %+v", out)
	}
	if len(out.Categories) != 2 || out.Categories[0].ID != "highway-code" {
		t.Fatalf("expected sorted categories, got %+v", out.Categories)
	}
	if out.Categories[1].BestScore != 80 {
		t.Fatalf("expected road-signs best score 80, got %d", out.Categories[1].BestScore)
	}
}

func TestHistoryToJSONBadPath(t *testing.T) {
	if err := HistoryToJSON(sampleRecord(), "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// XLSX
// ============================================================

func TestHistoryToXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.xlsx")
	if err := HistoryToXLSX(sampleRecord(), path); err != nil {
		t.Fatalf("HistoryToXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" || rows[2][0] != "2025-03-09" || rows[2][2] != "30" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	cats, err := f.GetRows(categoriesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected header + 2 categories, got %d", len(cats))
	}
}

func TestWriteDispatch(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []Format{FormatCSV, FormatJSON, FormatXLSX} {
		path := filepath.Join(dir, "out."+string(f))
		if err := Write(f, sampleRecord(), path); err != nil {
			t.Fatalf("Write(%s): %v", f, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s not written: %v", f, err)
		}
	}
	if err := Write("pdf", sampleRecord(), filepath.Join(dir, "x")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
