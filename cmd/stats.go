package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/drivetheory/internal/catalog"
	"github.com/sadopc/drivetheory/internal/progress"
	"github.com/sadopc/drivetheory/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rangeFlag, _ := cmd.Flags().GetString("range")
		metricFlag, _ := cmd.Flags().GetString("metric")

		r, err := report.ParseRange(rangeFlag)
		if err != nil {
			return err
		}
		m, err := parseMetric(metricFlag)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		rec := e.progress.Progress()
		sum := report.Summarize(rec.History, r, m, time.Now())
		printStats(cmd.OutOrStdout(), rec, sum)
		return nil
	},
}

func init() {
	statsCmd.Flags().String("range", string(report.Range7d), "Window: 7d, 30d or all")
	statsCmd.Flags().String("metric", string(report.MetricXP), "Series: xp, accuracy or questions")
}

func parseMetric(s string) (report.Metric, error) {
	for _, m := range report.Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q (want xp, accuracy or questions)", s)
}

func printStats(w io.Writer, rec progress.Record, sum report.Summary) {
	fmt.Fprintf(w, "Level %d  (%s XP, %d to next level)\n", rec.Level(), humanize.Comma(int64(rec.TotalXP)), rec.XPToNextLevel())
	fmt.Fprintf(w, "Streak %d  Hearts %d/%d (%s)  Accuracy %d%%\n",
		rec.DayStreak, rec.Hearts, rec.MaxHearts, rec.HeartState(), rec.Accuracy())
	fmt.Fprintf(w, "Answered %s  Correct %s\n\n",
		humanize.Comma(int64(rec.QuestionsAnswered)), humanize.Comma(int64(rec.CorrectAnswers)))

	fmt.Fprintf(w, "%s per day, %s\n", sum.Metric.Title(), sum.Range)
	peak := 0
	for _, p := range sum.Series {
		peak = max(peak, p.Value)
	}
	for _, p := range sum.Series {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("█", p.Value*30/peak)
		}
		fmt.Fprintf(w, "  %s %-6s %-30s %s\n", p.DateKey, p.Label, bar, report.FormatCompact(p.Value))
	}

	t := sum.Trend
	fmt.Fprintf(w, "\nTrend %s %s (%+d%%)  Gained %s XP  Active days %d  Window accuracy %d%%\n\n",
		t.Direction.Arrow(), report.FormatDelta(t.Delta), t.PercentDelta,
		humanize.Comma(int64(sum.Gained)), sum.ActiveDays, sum.Accuracy)

	fmt.Fprintln(w, "Categories")
	for _, c := range catalog.Categories {
		cp := rec.CategoryProgress[c.ID]
		fmt.Fprintf(w, "  %-20s %3d/%-3d best %d%%\n", c.Title, cp.Completed, c.TotalQuestions, cp.BestScore)
	}
}
