package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fokus/internal/tasks"
)

type tasksModel struct {
	store  *tasks.Store
	width  int
	height int

	tasks  []tasks.Task
	cursor int
	// active is the title of the task the timer was launched with.
	active string

	formActive bool
	form       *huh.Form
	editingID  int64 // 0 while adding

	// Form field pointers (survive value copies)
	formTitle *string
	formDays  *string
	formFocus *string
}

func newTasksModel(s *tasks.Store) tasksModel {
	title, days, focus := "", "", ""
	return tasksModel{
		store:     s,
		formTitle: &title,
		formDays:  &days,
		formFocus: &focus,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// load reads the persisted list once at startup.
func (m tasksModel) load() tea.Cmd {
	return func() tea.Msg {
		m.store.Load(context.Background())
		return tasksDataMsg{tasks: m.store.List()}
	}
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return tasksDataMsg{tasks: m.store.List()}
	}
}

func (m tasksModel) selected() (tasks.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return tasks.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.tasks = msg.tasks
		if m.cursor >= len(m.tasks) {
			m.cursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateList(msg)
	}
	return m, nil
}

func (m tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	ctx := context.Background()
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		return m.showForm(nil)
	case key.Matches(msg, keys.Edit):
		if t, ok := m.selected(); ok {
			return m.showForm(&t)
		}
	case key.Matches(msg, keys.Toggle):
		if t, ok := m.selected(); ok {
			m.store.ToggleCompletion(ctx, t.ID)
			return m, m.refresh()
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := m.selected(); ok {
			m.store.Remove(ctx, t.ID)
			return m, tea.Batch(m.refresh(), func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Deleted %q", t.Title)}
			})
		}
	case key.Matches(msg, keys.Enter):
		if t, ok := m.selected(); ok {
			return m, func() tea.Msg { return launchMsg{task: t} }
		}
	}
	return m, nil
}

func (m tasksModel) showForm(editing *tasks.Task) (tasksModel, tea.Cmd) {
	*m.formTitle, *m.formDays, *m.formFocus = "", "", ""
	m.editingID = 0
	if editing != nil {
		m.editingID = editing.ID
		*m.formTitle = editing.Title
		*m.formDays = editing.Days
		*m.formFocus = editing.FocusClock()
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(m.formTitle).Validate(validateTitle),
			huh.NewInput().Title("Days").Placeholder("Mon, Wed").Value(m.formDays),
			huh.NewInput().Title("Focus (minutes or MM:SS)").Placeholder("25").
				Value(m.formFocus).Validate(validateFocus),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

func validateFocus(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if tasks.ParseDuration(s).Kind == tasks.Invalid {
		return errors.New("use minutes (25) or MM:SS (25:00)")
	}
	return nil
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m, m.saveForm()
	}

	return m, cmd
}

// saveForm applies the form values. A blank title is a no-op in the store.
func (m tasksModel) saveForm() tea.Cmd {
	ctx := context.Background()
	if m.editingID == 0 {
		t, ok := m.store.Add(ctx, *m.formTitle, *m.formDays, *m.formFocus)
		if !ok {
			if !m.store.Loaded() {
				return func() tea.Msg {
					return statusMsg{text: "Tasks are still loading", isError: true}
				}
			}
			return m.refresh()
		}
		return tea.Batch(m.refresh(), func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Added %q (%s)", t.Title, t.FocusClock())}
		})
	}
	m.store.Update(ctx, m.editingID, *m.formTitle, *m.formDays, *m.formFocus)
	return m.refresh()
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.editingID != 0 {
			title = titleStyle.Render("Edit Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tasks")
	if len(m.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	done := 0
	for _, t := range m.tasks {
		if t.Completed {
			done++
		}
	}

	var rows []string
	rows = append(rows, title+mutedStyle.Render(fmt.Sprintf("  %d/%d done", done, len(m.tasks))))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-32s %-16s %6s", "", "Task", "Days", "Focus")))

	for i, t := range m.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if t.Completed {
			check = successStyle.Render("[x]")
			if i != m.cursor {
				style = completedItemStyle
			}
		}
		marker := " "
		if t.Title == m.active {
			marker = accentStyle.Render("●")
		}
		row := fmt.Sprintf("%s%s %s", cursor, check, style.Render(fmt.Sprintf("%-32s", truncate(t.Title, 32))))
		row += mutedStyle.Render(fmt.Sprintf(" %-16s %6s ", truncate(t.Days, 16), t.FocusClock())) + marker
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: focus  space: done  n: new  e: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
