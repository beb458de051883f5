package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/drivetheory/internal/progress"
)

// Range is a charting window.
type Range string

const (
	Range7d  Range = "7d"
	Range30d Range = "30d"
	RangeAll Range = "all"
)

var Ranges = []Range{Range7d, Range30d, RangeAll}

// ParseRange accepts "7d", "30d" or "all".
func ParseRange(s string) (Range, error) {
	for _, r := range Ranges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown range %q (want 7d, 30d or all)", s)
}

// Days is the window length, 0 for all-time.
func (r Range) Days() int {
	switch r {
	case Range7d:
		return 7
	case Range30d:
		return 30
	}
	return 0
}

func sortedCopy(history []progress.HistoryPoint) []progress.HistoryPoint {
	out := append([]progress.HistoryPoint(nil), history...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateKey < out[j].DateKey })
	return out
}

func zeroPoint(key string) progress.HistoryPoint {
	return progress.HistoryPoint{DateKey: key}
}

func fallbackRange(r Range, todayKey string) []progress.HistoryPoint {
	days := r.Days()
	if days == 0 {
		return []progress.HistoryPoint{zeroPoint(todayKey)}
	}
	out := make([]progress.HistoryPoint, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, zeroPoint(progress.AddDays(todayKey, i-(days-1))))
	}
	return out
}

// BuildDateRange selects the part of history that falls in r. For 7d and
// 30d the window ends at the later of today and the newest snapshot; both
// boundary days are always present, the start carried forward from the last
// snapshot before the window (or zero) and the end from the newest data.
// Gaps between boundaries are left for FillMissingDays.
func BuildDateRange(history []progress.HistoryPoint, r Range, today time.Time) []progress.HistoryPoint {
	todayKey := progress.DateKey(today)
	sorted := sortedCopy(history)
	if len(sorted) == 0 {
		return fallbackRange(r, todayKey)
	}
	days := r.Days()
	if days == 0 {
		return sorted
	}

	endKey := sorted[len(sorted)-1].DateKey
	if todayKey > endKey {
		endKey = todayKey
	}
	startKey := progress.AddDays(endKey, -(days - 1))

	baseline := zeroPoint(startKey)
	var window []progress.HistoryPoint
	hasStart, hasEnd := false, false
	for _, p := range sorted {
		switch {
		case p.DateKey < startKey:
			baseline = p
		case p.DateKey <= endKey:
			window = append(window, p)
			hasStart = hasStart || p.DateKey == startKey
			hasEnd = hasEnd || p.DateKey == endKey
		}
	}

	if !hasStart {
		b := baseline
		b.DateKey = startKey
		window = append([]progress.HistoryPoint{b}, window...)
	}
	if !hasEnd {
		last := window[len(window)-1]
		last.DateKey = endKey
		window = append(window, last)
	}
	return sortedCopy(window)
}

// FillMissingDays returns one point per calendar day from the first to the
// last input day, carrying the last known snapshot into days without one.
func FillMissingDays(points []progress.HistoryPoint) []progress.HistoryPoint {
	if len(points) == 0 {
		return []progress.HistoryPoint{}
	}
	sorted := sortedCopy(points)
	end := sorted[len(sorted)-1].DateKey

	var out []progress.HistoryPoint
	last := sorted[0]
	i := 0
	key := sorted[0].DateKey
	for key <= end {
		for i < len(sorted) && sorted[i].DateKey <= key {
			if sorted[i].DateKey == key {
				last = sorted[i]
			}
			i++
		}
		p := last
		p.DateKey = key
		out = append(out, p)

		next := progress.AddDays(key, 1)
		if next <= key {
			// unparseable key
			break
		}
		key = next
	}
	return out
}
