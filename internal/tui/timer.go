package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fokus/internal/session"
)

// timerModel renders the session timer and maps keys onto it. The session
// owns all countdown state; this model only holds display state.
type timerModel struct {
	timer  *session.Timer
	width  int
	height int

	flashing bool
}

func newTimerModel(t *session.Timer) timerModel {
	return timerModel{timer: t}
}

func (m *timerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case flashMsg:
		m.flashing = true
		return m, tea.Tick(msg.d, func(time.Time) tea.Msg { return flashDoneMsg{} })

	case flashDoneMsg:
		m.flashing = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Toggle):
			m.timer.Toggle()
			return m, nil
		case key.Matches(msg, keys.Reset):
			m.timer.Reset()
			return m, nil
		case key.Matches(msg, keys.Focus):
			return m.setPhase(session.Focus)
		case key.Matches(msg, keys.ShortBreak):
			return m.setPhase(session.ShortBreak)
		case key.Matches(msg, keys.LongBreak):
			return m.setPhase(session.LongBreak)
		}
	}
	return m, nil
}

func (m timerModel) setPhase(p session.Phase) (timerModel, tea.Cmd) {
	if m.timer.Snapshot().Phase == p {
		return m, nil
	}
	m.timer.SetPhase(p)
	return m, func() tea.Msg {
		return statusMsg{text: p.String() + " selected"}
	}
}

func phaseStyle(p session.Phase) lipgloss.Style {
	switch p {
	case session.ShortBreak:
		return successStyle
	case session.LongBreak:
		return highlightStyle
	default:
		return accentStyle
	}
}

func (m timerModel) view() string {
	w := m.width - 4
	snap := m.timer.Snapshot()

	var tabs []string
	for _, p := range session.Phases {
		if p == snap.Phase {
			tabs = append(tabs, activeTabStyle.Render(p.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(p.String()))
		}
	}
	phaseRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	clock := timerStyle.Width(w - 6).Render(snap.Clock())
	if snap.Running {
		clock = phaseStyle(snap.Phase).Bold(true).Width(w - 6).Align(lipgloss.Center).Render(snap.Clock())
	}

	var indicator string
	switch snap.State {
	case session.RunningForeground:
		indicator = successStyle.Render("●  RUNNING")
	case session.RunningBackground:
		indicator = warningStyle.Render("◐  RUNNING (BACKGROUND)")
	default:
		indicator = mutedStyle.Render("■  STOPPED")
	}

	label := mutedStyle.Render("No task selected")
	if snap.Label != "" {
		label = highlightStyle.Render(snap.Label)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		phaseRow,
		"",
		clock,
		indicator,
		label,
		"",
		renderProgress(snap.Progress(), min(40, max(10, w-10))),
		mutedStyle.Render(fmt.Sprintf("%d completed this run", snap.Completions)),
	)

	var controls string
	if snap.Running {
		controls = mutedStyle.Render("space: stop  r: reset  f/b/B: switch phase")
	} else {
		controls = mutedStyle.Render("space: start  r: reset  f/b/B: switch phase")
	}

	style := panelStyle
	switch {
	case m.flashing:
		style = flashPanelStyle
	case snap.Running:
		style = activePanelStyle
	}
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, content, "", controls))
}

func renderProgress(frac float64, width int) string {
	frac = max(0, min(1, frac))
	filled := int(frac * float64(width))
	bar := accentStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
	return bar + mutedStyle.Render(fmt.Sprintf(" %3.0f%%", frac*100))
}
