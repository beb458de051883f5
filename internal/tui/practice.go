package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/drivetheory/internal/catalog"
	"github.com/sadopc/drivetheory/internal/progress"
	"github.com/sadopc/drivetheory/internal/quiz"
	"github.com/sadopc/drivetheory/internal/store"
)

type practiceModel struct {
	progress *progress.Store
	db       *store.Store
	logger   *slog.Logger
	width    int
	height   int

	rec    progress.Record
	cursor int

	session      *quiz.Session
	optionCursor int
}

func newPracticeModel(p *progress.Store, db *store.Store, logger *slog.Logger) practiceModel {
	if logger == nil {
		logger = slog.Default()
	}
	return practiceModel{
		progress: p,
		db:       db,
		logger:   logger,
		rec:      p.Progress(),
	}
}

func (p *practiceModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

// inQuiz reports whether a quiz owns the keyboard.
func (p practiceModel) inQuiz() bool { return p.session != nil }

type practiceDataMsg struct {
	rec progress.Record
}

func (p practiceModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return practiceDataMsg{rec: p.progress.Progress()}
	}
}

func (p practiceModel) update(msg tea.Msg) (practiceModel, tea.Cmd) {
	switch msg := msg.(type) {
	case practiceDataMsg:
		p.rec = msg.rec
		return p, nil

	case tea.KeyMsg:
		if p.session != nil {
			return p.updateQuiz(msg)
		}
		return p.updateCategoryList(msg)
	}
	return p, nil
}

func (p practiceModel) updateCategoryList(msg tea.KeyMsg) (practiceModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(catalog.Categories)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		return p.startQuiz(catalog.Categories[p.cursor].ID)
	}
	return p, nil
}

func (p practiceModel) startQuiz(categoryID string) (practiceModel, tea.Cmd) {
	s, err := quiz.ForCategory(categoryID, p.progress, quiz.WithRecorder(p.db), quiz.WithLogger(p.logger))
	if err != nil {
		return p, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	if err := s.Start(); err != nil {
		if errors.Is(err, quiz.ErrOutOfHearts) {
			return p, statusCmd("Out of hearts. Refill them on Home (r).", true)
		}
		return p, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	p.session = s
	p.optionCursor = 0
	return p, tea.Batch(changed, p.refresh())
}

func (p practiceModel) updateQuiz(msg tea.KeyMsg) (practiceModel, tea.Cmd) {
	s := p.session
	switch s.Phase() {
	case quiz.PhaseAnswering:
		opts := len(s.Current().Options)
		switch {
		case key.Matches(msg, keys.Back):
			s.Abandon()
			p.session = nil
			return p, tea.Batch(p.refresh(), statusCmd("Practice abandoned", false))
		case key.Matches(msg, keys.Up):
			if p.optionCursor > 0 {
				p.optionCursor--
			}
		case key.Matches(msg, keys.Down):
			if p.optionCursor < opts-1 {
				p.optionCursor++
			}
		case key.Matches(msg, keys.Enter):
			return p.check(p.optionCursor)
		default:
			if n := optionIndex(msg.String()); n >= 0 && n < opts {
				p.optionCursor = n
				return p.check(n)
			}
		}

	case quiz.PhaseReviewing:
		switch {
		case key.Matches(msg, keys.Back):
			s.Abandon()
			p.session = nil
			return p, p.refresh()
		case key.Matches(msg, keys.Enter):
			s.Continue()
			p.optionCursor = 0
			if s.Phase() == quiz.PhaseFinished {
				return p, tea.Batch(changed, p.refresh())
			}
		}

	case quiz.PhaseFinished:
		if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Back) {
			p.session = nil
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p practiceModel) check(choice int) (practiceModel, tea.Cmd) {
	if _, err := p.session.Check(choice); err != nil {
		if errors.Is(err, quiz.ErrOutOfHearts) {
			return p, statusCmd("Out of hearts", true)
		}
		return p, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return p, tea.Batch(changed, p.refresh())
}

// optionIndex maps "1".."9" to 0..8, anything else to -1.
func optionIndex(s string) int {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '1')
	}
	return -1
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func (p practiceModel) view() string {
	w := p.width - 4
	if p.session != nil {
		return p.renderQuiz(w)
	}
	return p.renderCategoryList(w)
}

func (p practiceModel) renderCategoryList(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Practice"))
	rows = append(rows, mutedStyle.Render("Pick a category to start a session."))
	rows = append(rows, "")

	for i, c := range catalog.Categories {
		cp := p.rec.CategoryProgress[c.ID]
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		best := mutedStyle.Render("not attempted")
		if cp.BestScore > 0 {
			best = fmt.Sprintf("best %d%%", cp.BestScore)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-20s", cursor, dot, c.Title))+
			mutedStyle.Render(fmt.Sprintf(" %3d/%-3d ", cp.Completed, c.TotalQuestions))+best)
		rows = append(rows, mutedStyle.Render("     "+c.Description))
	}
	rows = append(rows, "")
	rows = append(rows, heartStyle.Render(renderHearts(p.rec.Hearts, p.rec.MaxHearts))+
		mutedStyle.Render("   enter: start  ↑/↓: move"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p practiceModel) renderQuiz(w int) string {
	s := p.session
	title := s.CategoryID()
	if c, ok := catalog.Find(s.CategoryID()); ok {
		title = c.Title
	}

	if s.Phase() == quiz.PhaseFinished {
		return activePanelStyle.Width(w).Render(p.renderResult(title))
	}

	q := s.Current()
	header := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render(title),
		mutedStyle.Render(fmt.Sprintf("question %d of %d", s.Index()+1, s.Total())),
		heartStyle.Render(renderHearts(p.rec.Hearts, p.rec.MaxHearts)),
	)

	var rows []string
	rows = append(rows, header, "", normalItemStyle.Render(q.Prompt), "")

	reviewing := s.Phase() == quiz.PhaseReviewing
	for i, opt := range q.Options {
		cursor := "  "
		style := normalItemStyle
		switch {
		case reviewing && i == q.CorrectAnswer:
			style = correctOptionStyle
		case reviewing && i == s.Selected():
			style = wrongOptionStyle
		case !reviewing && i == p.optionCursor:
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%d. %s", cursor, i+1, opt)))
	}
	rows = append(rows, "")

	if reviewing {
		if s.LastCorrect() {
			rows = append(rows, successStyle.Render(fmt.Sprintf("Correct! +%d XP", quiz.XPPerCorrect)))
		} else {
			rows = append(rows, errorStyle.Render("Not quite. You lost a heart."))
		}
		if q.Explanation != "" {
			rows = append(rows, mutedStyle.Render(q.Explanation))
		}
		rows = append(rows, "", mutedStyle.Render("  enter: continue  esc: quit session"))
	} else {
		rows = append(rows, mutedStyle.Render("  1-9 or enter: answer  ↑/↓: move  esc: quit session"))
	}

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p practiceModel) renderResult(title string) string {
	res := p.session.Result()
	verdict := successStyle.Render("Passed")
	if !res.Passed {
		verdict = warningStyle.Render(fmt.Sprintf("Keep practicing, %d%% needed to pass", quiz.PassThreshold))
	}
	if res.OutOfHearts {
		verdict = errorStyle.Render("Out of hearts")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title+" complete"),
		"",
		fmt.Sprintf("Score     %d/%d (%d%%)", res.Correct, res.Total, res.Percent),
		fmt.Sprintf("Answered  %d", res.Answered),
		fmt.Sprintf("Earned    %s", highlightStyle.Render(formatXP(res.XPEarned))),
		"",
		verdict,
		"",
		mutedStyle.Render("  enter: back to categories"),
	)
}
