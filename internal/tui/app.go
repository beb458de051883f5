package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/drivetheory/internal/export"
	"github.com/sadopc/drivetheory/internal/progress"
	"github.com/sadopc/drivetheory/internal/store"
)

var exportFormats = []export.Format{export.FormatCSV, export.FormatJSON, export.FormatXLSX}

// Deps is everything the TUI needs from the outside.
type Deps struct {
	Progress  *progress.Store
	DB        *store.Store
	Persister *store.Persister
	Logger    *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// ExportDir defaults to the user's home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	home     homeModel
	practice practiceModel
	stats    statsModel
	profile  profileModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(d Deps) App {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.ExportDir == "" {
		d.ExportDir, _ = os.UserHomeDir()
	}
	applyTheme(d.DB.SettingOr("theme_mode", "system"))

	h := help.New()
	h.ShowAll = false

	return App{
		deps:       d,
		activeView: viewHome,
		home:       newHomeModel(d.Progress, d.DB, d.Now),
		practice:   newPracticeModel(d.Progress, d.DB, d.Logger),
		stats:      newStatsModel(d.Progress, d.Now),
		profile:    newProfileModel(d.Progress, d.DB),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return a.home.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.home.setSize(a.width, contentHeight)
		a.practice.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.profile.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A quiz or form in the active view captures all input.
		if a.isCapturingInput() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewHome
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewPractice
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewStats
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewProfile
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case progressChangedMsg:
		return a, a.persist()

	case savedMsg:
		if msg.err != nil && !errors.Is(msg.err, store.ErrStaleWrite) {
			a.deps.Logger.Error("persist progress", "seq", msg.seq, "error", msg.err)
			a.status = "Could not save progress"
			a.isErr = true
		}
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// persist snapshots the store now, in Update order, and writes it in the
// background. The persister discards snapshots older than one already saved.
func (a App) persist() tea.Cmd {
	if a.deps.Persister == nil {
		return nil
	}
	blob, err := a.deps.Progress.Serialize()
	if err != nil {
		a.deps.Logger.Error("serialize progress", "error", err)
		return nil
	}
	seq := a.deps.Persister.Next()
	p := a.deps.Persister
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return savedMsg{seq: seq, err: p.Save(ctx, seq, blob)}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case homeDataMsg, practiceDataMsg, statsDataMsg, profileDataMsg:
		// Data loads are routed by type so a view switch mid-load is harmless.
		return a.routeData(msg)
	}
	switch a.activeView {
	case viewHome:
		a.home, cmd = a.home.update(msg)
	case viewPractice:
		a.practice, cmd = a.practice.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.update(msg)
	}
	return a, cmd
}

func (a App) routeData(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case homeDataMsg:
		a.home, cmd = a.home.update(msg)
	case practiceDataMsg:
		a.practice, cmd = a.practice.update(msg)
	case statsDataMsg:
		a.stats, cmd = a.stats.update(msg)
	case profileDataMsg:
		a.profile, cmd = a.profile.update(msg)
	}
	return a, cmd
}

func (a App) isCapturingInput() bool {
	switch a.activeView {
	case viewPractice:
		return a.practice.inQuiz()
	case viewProfile:
		return a.profile.formActive()
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewHome:
		return a.home.loadData()
	case viewPractice:
		return a.practice.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewProfile:
		return a.profile.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewHome:
		content = a.home.view()
	case viewPractice:
		content = a.practice.view()
	case viewStats:
		content = a.stats.view()
	case viewProfile:
		content = a.profile.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("drivetheory")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	rec := a.deps.Progress.Progress()
	vitals := heartStyle.Render(" "+renderHearts(rec.Hearts, rec.MaxHearts)) +
		accentStyle.Render(fmt.Sprintf("  🔥%d", rec.DayStreak))

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	right := vitals + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	rec := a.deps.Progress.Progress()
	dir := a.deps.ExportDir
	dateStr := a.deps.Now().Format("2006-01-02")
	return func() tea.Msg {
		path := filepath.Join(dir, fmt.Sprintf("drivetheory-export-%s.%s", dateStr, f))
		if err := export.Write(f, rec, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
