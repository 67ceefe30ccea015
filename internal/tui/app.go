// Package tui is the Bubble Tea interface: a task list, the session timer,
// focus statistics and settings.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fokus/internal/export"
	"github.com/sadopc/fokus/internal/session"
	"github.com/sadopc/fokus/internal/store"
	"github.com/sadopc/fokus/internal/tasks"
)

const appTitle = "fokus"

type Options struct {
	Store *store.Store
	Tasks *tasks.Store
	Timer *session.Timer
	// Events carries the timer's terminal notifications, see Terminal.
	Events <-chan tea.Msg
	// ExportDir defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	timer     *session.Timer
	events    <-chan tea.Msg
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	tasks    tasksModel
	timerV   timerModel
	stats    statsModel
	settings settingsModel

	// titleID is the ongoing notification shown in the window title.
	titleID string

	help        help.Model
	status      string
	statusError bool
}

func NewApp(opts Options) App {
	h := help.New()
	h.ShowAll = false

	dir := opts.ExportDir
	if dir == "" {
		dir, _ = os.UserHomeDir()
	}

	return App{
		store:      opts.Store,
		timer:      opts.Timer,
		events:     opts.Events,
		exportDir:  dir,
		activeView: viewTasks,
		tasks:      newTasksModel(opts.Tasks),
		timerV:     newTimerModel(opts.Timer),
		stats:      newStatsModel(opts.Store),
		settings:   newSettingsModel(opts.Store),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.tasks.load(),
		a.settings.refresh(),
		a.stats.refresh(),
		tea.SetWindowTitle(appTitle),
		waitForEvent(a.events),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tasks.setSize(a.width, contentHeight)
		a.timerV.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.FocusMsg:
		a.timer.SetVisibility(session.Active)
		return a, nil

	case tea.BlurMsg:
		a.timer.SetVisibility(session.Background)
		return a, nil

	case tea.ResumeMsg:
		a.timer.SetVisibility(session.Active)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Suspend):
			a.timer.SetVisibility(session.Background)
			return a, tea.Suspend
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewStats
			return a, a.stats.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		return a, tickCmd()

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case tasksDataMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd

	case statsDataMsg:
		var cmd tea.Cmd
		a.stats, cmd = a.stats.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case launchMsg:
		return a.launch(msg.task)

	case durationsChangedMsg:
		a.timer.SetDurations(LoadDurations(a.store))
		a.status = "Durations saved"
		a.statusError = false
		return a, nil

	case notificationMsg:
		return a.showNotification(msg)

	case dismissMsg:
		var cmd tea.Cmd
		if msg.id == a.titleID {
			a.titleID = ""
			cmd = tea.SetWindowTitle(appTitle)
		}
		return a, tea.Batch(cmd, waitForEvent(a.events))

	case flashMsg:
		var cmd tea.Cmd
		a.timerV, cmd = a.timerV.update(msg)
		return a, tea.Batch(cmd, waitForEvent(a.events))

	case flashDoneMsg:
		var cmd tea.Cmd
		a.timerV, cmd = a.timerV.update(msg)
		return a, cmd

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) showNotification(msg notificationMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForEvent(a.events)}
	switch msg.note.Kind {
	case session.Ongoing:
		a.titleID = msg.id
		cmds = append(cmds, tea.SetWindowTitle(msg.note.Title))
	case session.Finished:
		a.status = msg.note.Title + ": " + msg.note.Body
		a.statusError = false
		cmds = append(cmds, a.stats.refresh())
	}
	return a, tea.Batch(cmds...)
}

// launch starts a focus session for t and shows the timer. Launching the task
// that is already running only switches views.
func (a App) launch(t tasks.Task) (tea.Model, tea.Cmd) {
	a.activeView = viewTimer
	a.tasks.active = t.Title

	snap := a.timer.Snapshot()
	if snap.Running && snap.Phase == session.Focus && snap.Label == t.Title && snap.Initial == t.FocusDurationSeconds {
		return a, nil
	}

	a.timer.Launch(t.FocusDurationSeconds, t.Title, true)
	a.status = fmt.Sprintf("Focus on %q for %s", t.Title, t.FocusClock())
	a.statusError = false
	return a, nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewTimer:
		a.timerV, cmd = a.timerV.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTasks:
		return a.tasks.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewSettings:
		return a.settings.refresh()
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
	case viewTasks:
		content = a.tasks.view()
	case viewTimer:
		content = a.timerV.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
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

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render(appTitle)
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	timerInfo := ""
	if snap := a.timer.Snapshot(); snap.Running {
		timerInfo = successStyle.Render(fmt.Sprintf(" ● %s %s", snap.Phase, snap.Clock()))
		if snap.State == session.RunningBackground {
			timerInfo = warningStyle.Render(fmt.Sprintf(" ◐ %s %s", snap.Phase, snap.Clock()))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"))
	rows = append(rows, "")
	for i, f := range export.Formats {
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

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	list := a.tasks.store.List()
	return func() tea.Msg {
		sessions, err := a.store.ListPhases(time.Time{}, time.Now().Add(time.Minute))
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		path := filepath.Join(a.exportDir, export.DefaultFilename(format, time.Now()))
		if err := export.Write(format, list, sessions, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
