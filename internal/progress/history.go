package progress

import (
	"math"
	"sort"
)

// UpsertToday replaces any point sharing p's date key, keeps the ledger
// sorted ascending and trims it to the most recent HistoryCap days.
func UpsertToday(history []HistoryPoint, p HistoryPoint) []HistoryPoint {
	out := make([]HistoryPoint, 0, len(history)+1)
	for _, h := range history {
		if h.DateKey != p.DateKey {
			out = append(out, h)
		}
	}
	out = append(out, p)
	return normalizeHistory(out)
}

// normalizeHistory sorts, drops duplicate keys (last one wins) and caps.
func normalizeHistory(history []HistoryPoint) []HistoryPoint {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].DateKey < history[j].DateKey
	})
	out := history[:0]
	for i, h := range history {
		if i+1 < len(history) && history[i+1].DateKey == h.DateKey {
			continue
		}
		out = append(out, h)
	}
	if len(out) > HistoryCap {
		out = out[len(out)-HistoryCap:]
	}
	return out
}

// Backfill synthesizes seven days of history ending at todayKey by scaling
// the record's current totals linearly from day -6 up to today. Today is
// pinned to the exact current values.
func Backfill(r Record, todayKey string) []HistoryPoint {
	const days = 7
	points := make([]HistoryPoint, 0, days)
	for i := 0; i < days; i++ {
		key := AddDays(todayKey, i-(days-1))
		if i == days-1 {
			points = append(points, r.Snapshot(key))
			continue
		}
		ratio := float64(i) / float64(days-1)
		points = append(points, HistoryPoint{
			DateKey:           key,
			TotalXP:           scale(r.TotalXP, ratio),
			QuestionsAnswered: scale(r.QuestionsAnswered, ratio),
			CorrectAnswers:    scale(r.CorrectAnswers, ratio),
			DayStreak:         scale(r.DayStreak, ratio),
		})
	}
	return points
}

func scale(v int, ratio float64) int {
	return int(math.Round(float64(v) * ratio))
}
