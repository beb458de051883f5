package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/drivetheory/internal/progress"
)

// viewState represents the currently active view.
type viewState int

const (
	viewHome viewState = iota
	viewPractice
	viewStats
	viewProfile
)

var viewNames = []string{"Home", "Practice", "Progress", "Profile"}

// --- Messages ---

// progressChangedMsg is emitted by a view after it mutates the progress
// store; the app answers it with a persist command.
type progressChangedMsg struct{}

type savedMsg struct {
	seq uint64
	err error
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func changed() tea.Msg { return progressChangedMsg{} }

func renderHearts(hearts, maxHearts int) string {
	hearts = max(0, min(hearts, maxHearts))
	return strings.Repeat("♥", hearts) + strings.Repeat("♡", maxHearts-hearts)
}

func formatXP(xp int) string {
	return humanize.Comma(int64(xp)) + " XP"
}

func formatStreak(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func levelLine(r progress.Record) string {
	return fmt.Sprintf("Level %d  ·  %d XP to next level", r.Level(), r.XPToNextLevel())
}
