package export

import (
	"fmt"
	"strings"

	"github.com/sadopc/drivetheory/internal/progress"
	"github.com/sadopc/drivetheory/internal/report"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

var header = []string{"Date", "Total XP", "XP Gained", "Questions", "Correct", "Accuracy (%)", "Day Streak"}

// Row is one exported day.
type Row struct {
	Date      string `json:"date"`
	TotalXP   int    `json:"total_xp"`
	XPGained  int    `json:"xp_gained"`
	Questions int    `json:"questions"`
	Correct   int    `json:"correct"`
	Accuracy  int    `json:"accuracy"`
	DayStreak int    `json:"day_streak"`
}

// Rows pairs each history snapshot with its day-over-day gains.
func Rows(history []progress.HistoryPoint) []Row {
	ds := report.DeriveDailySeries(history)
	rows := make([]Row, 0, len(ds.XP))
	byKey := make(map[string]progress.HistoryPoint, len(history))
	for _, h := range history {
		byKey[h.DateKey] = h
	}
	for i, xp := range ds.XP {
		h := byKey[xp.DateKey]
		rows = append(rows, Row{
			Date:      xp.DateKey,
			TotalXP:   h.TotalXP,
			XPGained:  xp.Value,
			Questions: ds.Questions[i].Value,
			Correct:   ds.Correct[i].Value,
			Accuracy:  ds.Accuracy[i].Value,
			DayStreak: h.DayStreak,
		})
	}
	return rows
}

// ParseFormat accepts csv, json or xlsx in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or xlsx)", s)
}

// Write exports rec's history to path in the given format.
func Write(f Format, rec progress.Record, path string) error {
	switch f {
	case FormatCSV:
		return HistoryToCSV(rec, path)
	case FormatJSON:
		return HistoryToJSON(rec, path)
	case FormatXLSX:
		return HistoryToXLSX(rec, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}
