package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/drivetheory/internal/progress"
)

func HistoryToCSV(rec progress.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range Rows(rec.History) {
		row := []string{
			r.Date,
			strconv.Itoa(r.TotalXP),
			strconv.Itoa(r.XPGained),
			strconv.Itoa(r.Questions),
			strconv.Itoa(r.Correct),
			strconv.Itoa(r.Accuracy),
			strconv.Itoa(r.DayStreak),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
