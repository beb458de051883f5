package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/drivetheory/internal/progress"
	"github.com/sadopc/drivetheory/internal/report"
	"github.com/sadopc/drivetheory/internal/store"
)

type profileForm int

const (
	formNone profileForm = iota
	formSettings
	formReset
)

type profileModel struct {
	progress *progress.Store
	db       *store.Store
	width    int
	height   int

	rec      progress.Record
	settings []store.Setting
	levelBar progressbar.Model

	form       *huh.Form
	activeForm profileForm

	// Form values as pointers (survive value copies)
	themeMode     *string
	soundEffects  *string
	notifications *string
	dailyGoal     *string
	confirmReset  *bool
}

func newProfileModel(p *progress.Store, db *store.Store) profileModel {
	tm, se, nt, dg := "", "", "", ""
	cr := false
	return profileModel{
		progress:      p,
		db:            db,
		levelBar:      progressbar.New(progressbar.WithDefaultGradient()),
		themeMode:     &tm,
		soundEffects:  &se,
		notifications: &nt,
		dailyGoal:     &dg,
		confirmReset:  &cr,
	}
}

func (m *profileModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.levelBar.Width = max(10, w-20)
}

func (m profileModel) formActive() bool { return m.activeForm != formNone }

type profileDataMsg struct {
	rec      progress.Record
	settings []store.Setting
}

func (m profileModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := m.db.GetAllSettings()
		return profileDataMsg{rec: m.progress.Progress(), settings: settings}
	}
}

func (m profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	if m.formActive() && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case profileDataMsg:
		m.rec = msg.rec
		m.settings = msg.settings
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return m.showSettingsForm()
		case key.Matches(msg, keys.Reset):
			return m.showResetForm()
		}
	}
	return m, nil
}

func (m profileModel) showSettingsForm() (profileModel, tea.Cmd) {
	*m.themeMode = m.db.SettingOr("theme_mode", "system")
	*m.soundEffects = m.db.SettingOr("sound_effects", "on")
	*m.notifications = m.db.SettingOr("notifications", "on")
	*m.dailyGoal = m.db.SettingOr("daily_goal_xp", "50")

	onOff := []huh.Option[string]{huh.NewOption("On", "on"), huh.NewOption("Off", "off")}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("System", "system"),
					huh.NewOption("Light", "light"),
					huh.NewOption("Dark", "dark"),
				).Value(m.themeMode),
			huh.NewSelect[string]().Title("Sound effects").Options(onOff...).Value(m.soundEffects),
			huh.NewSelect[string]().Title("Notifications").Options(onOff...).Value(m.notifications),
			huh.NewInput().Title("Daily goal (XP)").Value(m.dailyGoal).Validate(validateGoal),
		).Title("Settings"),
	).WithShowHelp(true).WithShowErrors(true)

	m.activeForm = formSettings
	return m, m.form.Init()
}

func (m profileModel) showResetForm() (profileModel, tea.Cmd) {
	*m.confirmReset = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset all progress?").
				Description("XP, streak, hearts, history and category scores go back to zero.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(m.confirmReset),
		),
	)
	m.activeForm = formReset
	return m, m.form.Init()
}

func validateGoal(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return errors.New("enter a whole number of XP, at least 1")
	}
	return nil
}

func (m profileModel) updateForm(msg tea.Msg) (profileModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.activeForm = formNone
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		done := m.activeForm
		m.activeForm = formNone
		m.form = nil
		if done == formReset {
			if !*m.confirmReset {
				return m, nil
			}
			m.progress.ResetProgress()
			return m, tea.Batch(changed, m.refresh(), statusCmd("Progress reset", false))
		}
		m.saveSettings()
		return m, tea.Batch(m.refresh(), statusCmd("Settings saved", false))
	case huh.StateAborted:
		m.activeForm = formNone
		m.form = nil
		return m, nil
	}

	return m, cmd
}

func (m profileModel) saveSettings() {
	m.db.SetSetting("theme_mode", *m.themeMode)
	m.db.SetSetting("sound_effects", *m.soundEffects)
	m.db.SetSetting("notifications", *m.notifications)
	m.db.SetSetting("daily_goal_xp", *m.dailyGoal)
	applyTheme(*m.themeMode)
}

func (m profileModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Profile")

	if m.formActive() && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	r := m.rec
	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, highlightStyle.Render("Learner")+"  "+mutedStyle.Render(levelLine(r)))
	rows = append(rows, m.levelBar.ViewAs(r.LevelProgress()))
	rows = append(rows, fmt.Sprintf("%s   streak %s   accuracy %s   %s",
		formatXP(r.TotalXP),
		formatStreak(r.DayStreak),
		report.FormatPercent(float64(r.Accuracy())),
		heartStyle.Render(renderHearts(r.Hearts, r.MaxHearts)),
	))
	rows = append(rows, "", titleStyle.Render("Settings"))

	for _, s := range m.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(s.Key))
		value := highlightStyle.Render(formatSettingValue(s.Key, s.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("enter/s: edit settings  ")+errorStyle.Render("R: reset progress"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	switch k {
	case "theme_mode":
		return "Theme"
	case "sound_effects":
		return "Sound effects"
	case "notifications":
		return "Notifications"
	case "daily_goal_xp":
		return "Daily goal"
	}
	return k
}

func formatSettingValue(k, v string) string {
	if k == "daily_goal_xp" {
		if n, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d XP", n)
		}
	}
	return v
}
