package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/fokus/internal/tasks"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewTimer
	viewStats
	viewSettings
)

var viewNames = []string{"Tasks", "Timer", "Stats", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type tasksDataMsg struct {
	tasks []tasks.Task
}

// launchMsg asks the app to run a focus session for a task.
type launchMsg struct {
	task tasks.Task
}

type durationsChangedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatMinutes(secs int64) string {
	return fmt.Sprintf("%dm", secs/60)
}
