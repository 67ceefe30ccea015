// Package export writes the task list and completed sessions to files.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/fokus/internal/store"
	"github.com/sadopc/fokus/internal/tasks"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{CSV, JSON, YAML}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, YAML:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Write exports in the given format. CSV carries only the task list.
func Write(f Format, list []tasks.Task, sessions []store.PhaseEntry, path string) error {
	switch f {
	case CSV:
		return ToCSV(list, path)
	case JSON:
		return ToJSON(list, sessions, path)
	case YAML:
		return ToYAML(list, sessions, path)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// DefaultFilename is fokus-export-YYYYMMDD-HHMMSS.<ext>.
func DefaultFilename(f Format, now time.Time) string {
	return fmt.Sprintf("fokus-export-%s.%s", now.Format("20060102-150405"), f)
}

type document struct {
	ExportedAt string        `json:"exported_at" yaml:"exported_at"`
	Count      int           `json:"count" yaml:"count"`
	Tasks      []taskRecord  `json:"tasks" yaml:"tasks"`
	Sessions   []phaseRecord `json:"sessions,omitempty" yaml:"sessions,omitempty"`
}

type taskRecord struct {
	ID           int64  `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Days         string `json:"days,omitempty" yaml:"days,omitempty"`
	FocusSeconds int    `json:"focus_seconds" yaml:"focus_seconds"`
	Focus        string `json:"focus" yaml:"focus"`
	Completed    bool   `json:"completed" yaml:"completed"`
}

type phaseRecord struct {
	Phase       string `json:"phase" yaml:"phase"`
	Seconds     int64  `json:"seconds" yaml:"seconds"`
	Duration    string `json:"duration" yaml:"duration"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	CompletedAt string `json:"completed_at" yaml:"completed_at"`
}

func buildDocument(list []tasks.Task, sessions []store.PhaseEntry) document {
	doc := document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(list),
	}
	for _, t := range list {
		doc.Tasks = append(doc.Tasks, taskRecord{
			ID:           t.ID,
			Title:        t.Title,
			Days:         t.Days,
			FocusSeconds: t.FocusDurationSeconds,
			Focus:        t.FocusClock(),
			Completed:    t.Completed,
		})
	}
	for _, p := range sessions {
		doc.Sessions = append(doc.Sessions, phaseRecord{
			Phase:       p.Phase,
			Seconds:     p.Seconds,
			Duration:    formatDuration(p.Seconds),
			Label:       p.Label,
			CompletedAt: p.CompletedAt.Local().Format(time.RFC3339),
		})
	}
	return doc
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
