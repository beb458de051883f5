package report

import (
	"math"
	"time"

	"github.com/sadopc/drivetheory/internal/progress"
)

// ChartPoint is one bar or vertex of a rendered series.
type ChartPoint struct {
	DateKey string
	Label   string
	Value   int
}

// DailySeries holds per-day deltas derived from cumulative snapshots.
type DailySeries struct {
	XP        []ChartPoint
	Questions []ChartPoint
	Correct   []ChartPoint
	Accuracy  []ChartPoint
}

// DeriveDailySeries turns cumulative snapshots into day-over-day gains.
// The first day is measured against itself, so it is always zero. Negative
// differences (e.g. after a reset) are clamped to zero.
func DeriveDailySeries(points []progress.HistoryPoint) DailySeries {
	var ds DailySeries
	if len(points) == 0 {
		return ds
	}
	sorted := sortedCopy(points)
	for i, p := range sorted {
		prev := p
		if i > 0 {
			prev = sorted[i-1]
		}
		xp := max(0, p.TotalXP-prev.TotalXP)
		answered := max(0, p.QuestionsAnswered-prev.QuestionsAnswered)
		correct := max(0, p.CorrectAnswers-prev.CorrectAnswers)
		accuracy := 0
		if answered > 0 {
			accuracy = int(math.Round(100 * float64(correct) / float64(answered)))
		}

		ds.XP = append(ds.XP, ChartPoint{DateKey: p.DateKey, Label: p.DateKey, Value: xp})
		ds.Questions = append(ds.Questions, ChartPoint{DateKey: p.DateKey, Label: p.DateKey, Value: answered})
		ds.Correct = append(ds.Correct, ChartPoint{DateKey: p.DateKey, Label: p.DateKey, Value: correct})
		ds.Accuracy = append(ds.Accuracy, ChartPoint{DateKey: p.DateKey, Label: p.DateKey, Value: accuracy})
	}
	return ds
}

// Metric selects which derived series a chart shows.
type Metric string

const (
	MetricXP        Metric = "xp"
	MetricAccuracy  Metric = "accuracy"
	MetricQuestions Metric = "questions"
)

var Metrics = []Metric{MetricXP, MetricAccuracy, MetricQuestions}

func (m Metric) Title() string {
	switch m {
	case MetricAccuracy:
		return "Accuracy"
	case MetricQuestions:
		return "Questions"
	}
	return "XP"
}

// SeriesFor picks the series for m.
func (ds DailySeries) SeriesFor(m Metric) []ChartPoint {
	switch m {
	case MetricAccuracy:
		return ds.Accuracy
	case MetricQuestions:
		return ds.Questions
	}
	return ds.XP
}

// WithRangeLabels relabels points for display: short weekday names for the
// 7d and 30d windows, "Jan 2" for all-time.
func WithRangeLabels(series []ChartPoint, r Range) []ChartPoint {
	out := make([]ChartPoint, len(series))
	for i, p := range series {
		p.Label = DateLabel(p.DateKey, r)
		out[i] = p
	}
	return out
}

// DateLabel formats a date key for an axis. Unparseable keys pass through.
func DateLabel(dateKey string, r Range) string {
	t, err := progress.ParseDateKey(dateKey, time.UTC)
	if err != nil {
		return dateKey
	}
	if r == RangeAll {
		return t.Format("Jan 2")
	}
	return t.Format("Mon")
}
