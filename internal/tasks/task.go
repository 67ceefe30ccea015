package tasks

import (
	"encoding/json"
	"strings"
)

type Task struct {
	ID                   int64  `json:"id"`
	Title                string `json:"title"`
	Days                 string `json:"days"`
	FocusDurationSeconds int    `json:"focusDurationSeconds"`
	Completed            bool   `json:"completed"`
}

// UnmarshalJSON also accepts records written by older builds, which kept the
// title under "task" and had no duration.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var rec struct {
		plain
		Legacy string `json:"task"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*t = Task(rec.plain)
	if strings.TrimSpace(t.Title) == "" {
		t.Title = rec.Legacy
	}
	return nil
}

// FocusClock returns the focus duration as MM:SS.
func (t Task) FocusClock() string {
	return FormatClock(t.FocusDurationSeconds)
}
