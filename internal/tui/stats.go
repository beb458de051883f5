package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/drivetheory/internal/catalog"
	"github.com/sadopc/drivetheory/internal/progress"
	"github.com/sadopc/drivetheory/internal/report"
)

type statsModel struct {
	progress *progress.Store
	now      func() time.Time
	width    int
	height   int

	rangeIdx  int
	metricIdx int
	rec       progress.Record
	summary   report.Summary

	chart barchart.Model
}

func newStatsModel(p *progress.Store, now func() time.Time) statsModel {
	return statsModel{
		progress: p,
		now:      now,
		chart:    barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

func (s statsModel) selectedRange() report.Range   { return report.Ranges[s.rangeIdx] }
func (s statsModel) selectedMetric() report.Metric { return report.Metrics[s.metricIdx] }

type statsDataMsg struct {
	rec progress.Record
}

func (s statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return statsDataMsg{rec: s.progress.Progress()}
	}
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		s.rec = msg.rec
		s.recompute()
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			s.rangeIdx = (s.rangeIdx + len(report.Ranges) - 1) % len(report.Ranges)
			s.recompute()
		case key.Matches(msg, keys.Right):
			s.rangeIdx = (s.rangeIdx + 1) % len(report.Ranges)
			s.recompute()
		case key.Matches(msg, keys.Metric):
			s.metricIdx = (s.metricIdx + 1) % len(report.Metrics)
			s.recompute()
		}
	}
	return s, nil
}

func (s *statsModel) recompute() {
	s.summary = report.Summarize(s.rec.History, s.selectedRange(), s.selectedMetric(), s.now())
	s.buildChart()
}

func (s *statsModel) buildChart() {
	chartWidth := max(20, s.width-8)
	chartHeight := 10
	if s.height > 30 {
		chartHeight = 14
	}
	s.chart = barchart.New(chartWidth, chartHeight)

	series := s.summary.Series
	// One bar per column at most; older days drop off the left.
	if limit := chartWidth / 2; len(series) > limit {
		series = series[len(series)-limit:]
	}

	style := lipgloss.NewStyle().Foreground(colorPrimary)
	var bars []barchart.BarData
	for i, p := range series {
		label := p.Label
		if s.selectedRange() != report.Range7d && i%7 != 0 {
			label = ""
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: p.DateKey, Value: float64(p.Value), Style: style}},
		})
	}
	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4

	var tabs []string
	for i, r := range report.Ranges {
		if i == s.rangeIdx {
			tabs = append(tabs, activeTabStyle.Render(string(r)))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(string(r)))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Progress"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...), "  ",
		highlightStyle.Render(s.selectedMetric().Title()),
	)

	nav := mutedStyle.Render("  ←/→: range  m: metric")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			s.renderKPIs(), "",
			s.chart.View(), "",
			s.renderCategories(w), "",
			nav,
		),
	)
}

func (s statsModel) renderKPIs() string {
	sum := s.summary
	t := sum.Trend

	arrow := mutedStyle.Render(t.Direction.Arrow())
	switch t.Direction {
	case report.DirectionUp:
		arrow = successStyle.Render(t.Direction.Arrow())
	case report.DirectionDown:
		arrow = errorStyle.Render(t.Direction.Arrow())
	}
	unit := ""
	if sum.Metric == report.MetricAccuracy {
		unit = "%"
	}
	trend := fmt.Sprintf("%s %s%s latest  %s (%+d%%) vs previous day",
		arrow, report.FormatCompact(t.Current), unit,
		report.FormatDelta(t.Delta), t.PercentDelta)

	totals := fmt.Sprintf("Total XP %s   Gained %s   Correct %s   Accuracy %d%%   Active days %d",
		highlightStyle.Render(humanize.Comma(int64(s.rec.TotalXP))),
		highlightStyle.Render("+"+humanize.Comma(int64(sum.Gained))),
		humanize.Comma(int64(sum.Correct)),
		sum.Accuracy,
		sum.ActiveDays,
	)
	return lipgloss.JoinVertical(lipgloss.Left, trend, totals)
}

func (s statsModel) renderCategories(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("By category"))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))
	for _, c := range catalog.Categories {
		cp := s.rec.CategoryProgress[c.ID]
		total := max(1, c.TotalQuestions)
		filled := min(20, cp.Completed*20/total)
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(strings.Repeat("█", filled)) +
			mutedStyle.Render(strings.Repeat("░", 20-filled))
		rows = append(rows, fmt.Sprintf("  %-20s %s %3d/%-3d best %d%%",
			c.Title, bar, cp.Completed, c.TotalQuestions, cp.BestScore))
	}
	return strings.Join(rows, "\n")
}
