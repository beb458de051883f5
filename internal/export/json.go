package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/drivetheory/internal/progress"
)

type jsonExport struct {
	ExportedAt string         `json:"exported_at"`
	Level      int            `json:"level"`
	TotalXP    int            `json:"total_xp"`
	DayStreak  int            `json:"day_streak"`
	Accuracy   int            `json:"accuracy"`
	Categories []jsonCategory `json:"categories"`
	Count      int            `json:"count"`
	Days       []Row          `json:"days"`
}

type jsonCategory struct {
	ID        string `json:"id"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	BestScore int    `json:"best_score"`
}

func HistoryToJSON(rec progress.Record, path string) error {
	rows := Rows(rec.History)
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Level:      rec.Level(),
		TotalXP:    rec.TotalXP,
		DayStreak:  rec.DayStreak,
		Accuracy:   rec.Accuracy(),
		Count:      len(rows),
		Days:       rows,
	}
	for _, id := range sortedCategoryIDs(rec) {
		cp := rec.CategoryProgress[id]
		export.Categories = append(export.Categories, jsonCategory{
			ID:        id,
			Completed: cp.Completed,
			Total:     cp.Total,
			BestScore: cp.BestScore,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
