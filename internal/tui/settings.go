package tui

import (
	"fmt"
	"log"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fokus/internal/session"
	"github.com/sadopc/fokus/internal/store"
	"github.com/sadopc/fokus/internal/tasks"
)

// Setting keys holding phase durations in seconds.
const (
	settingFocus      = "pomodoro_focus"
	settingShortBreak = "pomodoro_short_break"
	settingLongBreak  = "pomodoro_long_break"
)

var settingLabels = map[string]string{
	settingFocus:      "Focus",
	settingShortBreak: "Short break",
	settingLongBreak:  "Long break",
}

// LoadDurations reads the phase durations from the settings table.
func LoadDurations(s *store.Store) session.Durations {
	def := session.DefaultDurations()
	return session.Durations{
		Focus:      s.GetSettingInt(settingFocus, def.Focus),
		ShortBreak: s.GetSettingInt(settingShortBreak, def.ShortBreak),
		LongBreak:  s.GetSettingInt(settingLongBreak, def.LongBreak),
	}
}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	focus      *string
	shortBreak *string
	longBreak  *string
}

func newSettingsModel(s *store.Store) settingsModel {
	f, sb, lb := "", "", ""
	return settingsModel{
		store:      s,
		focus:      &f,
		shortBreak: &sb,
		longBreak:  &lb,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	d := LoadDurations(s.store)
	*s.focus = strconv.Itoa(d.Focus / 60)
	*s.shortBreak = strconv.Itoa(d.ShortBreak / 60)
	*s.longBreak = strconv.Itoa(d.LongBreak / 60)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus (min)").Value(s.focus).Validate(validateMinutes),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak).Validate(validateMinutes),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(validateMinutes),
		).Title("Pomodoro"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateMinutes(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > tasks.MaxMinutes {
		return fmt.Errorf("enter whole minutes between 1 and %d", tasks.MaxMinutes)
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		s.saveSettings()
		return s, tea.Batch(s.refresh(), func() tea.Msg { return durationsChangedMsg{} })
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	for k, v := range map[string]string{
		settingFocus:      *s.focus,
		settingShortBreak: *s.shortBreak,
		settingLongBreak:  *s.longBreak,
	} {
		if err := validateMinutes(v); err != nil {
			continue
		}
		if err := s.store.SetSetting(k, minToSecs(v)); err != nil {
			log.Printf("fokus: save setting %s: %v", k, err)
		}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		name := setting.Key
		if l, ok := settingLabels[name]; ok {
			name = l
		}
		label := lipgloss.NewStyle().Width(24).Render(name)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	if _, ok := settingLabels[k]; ok {
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	}
	return v
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
