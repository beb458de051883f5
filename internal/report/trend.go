package report

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sadopc/drivetheory/internal/progress"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Trend compares the last two values of a series.
type Trend struct {
	Current      int
	Previous     int
	Delta        int
	PercentDelta int
	Direction    Direction
}

func ComputeTrend(series []ChartPoint) Trend {
	t := Trend{Direction: DirectionFlat}
	if len(series) == 0 {
		return t
	}
	t.Current = series[len(series)-1].Value
	if len(series) > 1 {
		t.Previous = series[len(series)-2].Value
	}
	t.Delta = t.Current - t.Previous

	switch {
	case t.Previous == 0 && t.Current == 0:
		t.PercentDelta = 0
	case t.Previous == 0:
		t.PercentDelta = 100
	default:
		t.PercentDelta = int(math.Round(100 * float64(t.Delta) / math.Abs(float64(t.Previous))))
	}

	switch {
	case t.Delta > 0:
		t.Direction = DirectionUp
	case t.Delta < 0:
		t.Direction = DirectionDown
	}
	return t
}

// Arrow renders the direction as a glyph.
func (d Direction) Arrow() string {
	switch d {
	case DirectionUp:
		return "▲"
	case DirectionDown:
		return "▼"
	}
	return "•"
}

// Summary is everything the progress view needs for one range and metric.
type Summary struct {
	Range   Range
	Metric  Metric
	Points  []progress.HistoryPoint
	Daily   DailySeries
	Series  []ChartPoint
	Trend   Trend
	Gained  int
	Correct int
	// Accuracy over the window, 0 when nothing was answered.
	Accuracy   int
	ActiveDays int
}

// Summarize runs the full projection for one range and metric.
func Summarize(history []progress.HistoryPoint, r Range, m Metric, today time.Time) Summary {
	points := FillMissingDays(BuildDateRange(history, r, today))
	daily := DeriveDailySeries(points)
	series := WithRangeLabels(daily.SeriesFor(m), r)

	s := Summary{
		Range:  r,
		Metric: m,
		Points: points,
		Daily:  daily,
		Series: series,
		Trend:  ComputeTrend(series),
	}

	answered := 0
	for i := range daily.Questions {
		s.Gained += daily.XP[i].Value
		answered += daily.Questions[i].Value
		s.Correct += daily.Correct[i].Value
		if daily.Questions[i].Value > 0 || daily.XP[i].Value > 0 {
			s.ActiveDays++
		}
	}
	if answered > 0 {
		s.Accuracy = int(math.Round(100 * float64(s.Correct) / float64(answered)))
	}
	return s
}

// WeeklyActivity is questions answered per day over the last seven days.
func WeeklyActivity(history []progress.HistoryPoint, today time.Time) []ChartPoint {
	points := FillMissingDays(BuildDateRange(history, Range7d, today))
	return WithRangeLabels(DeriveDailySeries(points).Questions, Range7d)
}

func ClampPercent(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%d%%", ClampPercent(v))
}

// FormatDelta renders a signed change, "+3", "-2" or "0".
func FormatDelta(v int) string {
	if v > 0 {
		return "+" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// FormatCompact abbreviates large counts: 950, 1.2K, 3.4M.
func FormatCompact(v int) string {
	abs := math.Abs(float64(v))
	switch {
	case abs < 1000:
		return strconv.Itoa(v)
	case abs < 1_000_000:
		return trimZero(float64(v)/1000) + "K"
	case abs < 1_000_000_000:
		return trimZero(float64(v)/1_000_000) + "M"
	}
	return trimZero(float64(v)/1_000_000_000) + "B"
}

func trimZero(f float64) string {
	return strconv.FormatFloat(math.Round(f*10)/10, 'f', -1, 64)
}
