package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/drivetheory/internal/progress"
)

const (
	historySheet    = "History"
	categoriesSheet = "Categories"
)

// HistoryToXLSX writes a workbook with a History sheet (one row per day)
// and a Categories sheet.
func HistoryToXLSX(rec progress.Record, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range Rows(rec.History) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.Date, r.TotalXP, r.XPGained, r.Questions, r.Correct, r.Accuracy, r.DayStreak}
		if err := f.SetSheetRow(historySheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return fmt.Errorf("add categories sheet: %w", err)
	}
	catHeader := []any{"Category", "Completed", "Total", "Best Score (%)"}
	if err := f.SetSheetRow(categoriesSheet, "A1", &catHeader); err != nil {
		return err
	}
	for i, id := range sortedCategoryIDs(rec) {
		cp := rec.CategoryProgress[id]
		values := []any{id, cp.Completed, cp.Total, cp.BestScore}
		if err := f.SetSheetRow(categoriesSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx file: %w", err)
	}
	return nil
}

func sortedCategoryIDs(rec progress.Record) []string {
	ids := make([]string, 0, len(rec.CategoryProgress))
	for id := range rec.CategoryProgress {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
