package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/drivetheory/internal/catalog"
	"github.com/sadopc/drivetheory/internal/progress"
	"github.com/sadopc/drivetheory/internal/report"
	"github.com/sadopc/drivetheory/internal/store"
)

type homeModel struct {
	progress *progress.Store
	db       *store.Store
	now      func() time.Time
	width    int
	height   int

	rec       progress.Record
	sessions  []store.PracticeSession
	dailyGoal int

	goalBar progressbar.Model
	weekly  barchart.Model
}

func newHomeModel(p *progress.Store, db *store.Store, now func() time.Time) homeModel {
	return homeModel{
		progress:  p,
		db:        db,
		now:       now,
		dailyGoal: 50,
		goalBar:   progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithoutPercentage()),
		weekly:    barchart.New(40, 6),
	}
}

func (h homeModel) Init() tea.Cmd {
	return h.loadData()
}

func (h *homeModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
	h.goalBar.Width = max(10, w-30)
	h.buildChart()
}

type homeDataMsg struct {
	rec       progress.Record
	sessions  []store.PracticeSession
	dailyGoal int
}

func (h homeModel) loadData() tea.Cmd {
	return func() tea.Msg {
		sessions, _ := h.db.ListSessions(store.SessionFilter{Limit: 5})
		return homeDataMsg{
			rec:       h.progress.Progress(),
			sessions:  sessions,
			dailyGoal: h.db.IntSetting("daily_goal_xp", 50),
		}
	}
}

func (h homeModel) update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case homeDataMsg:
		h.rec = msg.rec
		h.sessions = msg.sessions
		h.dailyGoal = msg.dailyGoal
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Refill):
			if h.rec.HeartState() == progress.HeartsFull {
				return h, func() tea.Msg { return statusMsg{text: "Hearts already full"} }
			}
			h.progress.RefillHearts()
			return h, tea.Batch(changed, h.loadData())
		}
	}
	return h, nil
}

// xpToday is the XP gained on the current calendar day.
func (h homeModel) xpToday() int {
	sum := report.Summarize(h.rec.History, report.Range7d, report.MetricXP, h.now())
	if n := len(sum.Series); n > 0 && sum.Series[n-1].DateKey == progress.DateKey(h.now()) {
		return sum.Series[n-1].Value
	}
	return 0
}

func (h *homeModel) buildChart() {
	w := max(20, h.width/2-8)
	h.weekly = barchart.New(w, 6)

	var bars []barchart.BarData
	for _, p := range report.WeeklyActivity(h.rec.History, h.now()) {
		bars = append(bars, barchart.BarData{
			Label: p.Label,
			Values: []barchart.BarValue{{
				Name:  p.DateKey,
				Value: float64(p.Value),
				Style: lipgloss.NewStyle().Foreground(colorSecondary),
			}},
		})
	}
	h.weekly.PushAll(bars)
	h.weekly.Draw()
}

func (h homeModel) view() string {
	if h.width < 20 {
		return "Terminal too small"
	}
	w := h.width - 4
	return lipgloss.JoinVertical(lipgloss.Left,
		h.renderStatusPanel(w),
		h.renderGoalPanel(w),
		h.renderActivityPanel(w),
	)
}

func (h homeModel) renderStatusPanel(w int) string {
	r := h.rec
	hearts := heartStyle.Render(renderHearts(r.Hearts, r.MaxHearts))
	if r.HeartState() == progress.HeartsDepleted {
		hearts += "  " + errorStyle.Render("out of hearts, press r to refill")
	}

	line := fmt.Sprintf("%s  %s   %s  %s   %s",
		accentStyle.Render("🔥 "+formatStreak(r.DayStreak)),
		mutedStyle.Render("streak"),
		highlightStyle.Render(formatXP(r.TotalXP)),
		mutedStyle.Render(fmt.Sprintf("level %d", r.Level())),
		hearts,
	)

	pool := 0
	for _, c := range catalog.Categories {
		pool += c.TotalQuestions
	}
	answered := min(r.QuestionsAnswered, pool)

	stats := fmt.Sprintf("Accuracy %s   Practiced %d/%d questions",
		highlightStyle.Render(fmt.Sprintf("%d%%", r.Accuracy())), answered, pool)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Welcome back"),
		mutedStyle.Render("Master the UK driving theory test with daily practice sessions."),
		"",
		line,
		stats,
	)
	return panelStyle.Width(w).Render(content)
}

func (h homeModel) renderGoalPanel(w int) string {
	gained := h.xpToday()
	ratio := 0.0
	if h.dailyGoal > 0 {
		ratio = min(1, float64(gained)/float64(h.dailyGoal))
	}
	label := fmt.Sprintf("%d / %d XP", gained, h.dailyGoal)
	if ratio >= 1 {
		label = successStyle.Render(label + "  goal reached")
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Daily goal"),
		h.goalBar.ViewAs(ratio)+"  "+label,
	)
	return panelStyle.Width(w).Render(content)
}

func (h homeModel) renderActivityPanel(w int) string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Questions this week"),
		h.weekly.View(),
	)

	var rows []string
	rows = append(rows, titleStyle.Render("Recent sessions"))
	if len(h.sessions) == 0 {
		rows = append(rows, mutedStyle.Render("No sessions yet. Press 2 to practice."))
	}
	for _, s := range h.sessions {
		title := s.CategoryID
		if c, ok := catalog.Find(s.CategoryID); ok {
			title = c.Title
		}
		mark := successStyle.Render("✓")
		switch s.Status {
		case store.SessionActive:
			mark = highlightStyle.Render("●")
		case store.SessionOutOfHearts:
			mark = heartStyle.Render("♡")
		case store.SessionAbandoned:
			mark = mutedStyle.Render("-")
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %-18s %d/%d  +%d XP",
			mark, s.StartedAt.Local().Format("Jan 02 15:04"), title, s.Correct, s.Answered, s.XPEarned))
	}

	right := strings.Join(rows, "\n")
	return panelStyle.Width(w).Render(lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right))
}
