package store

import "time"

type Setting struct {
	Key   string
	Value string
}

// PhaseEntry is one naturally completed timer phase.
type PhaseEntry struct {
	ID          int64
	Phase       string // focus, short, long
	Seconds     int64
	Label       string
	CompletedAt time.Time
}

// DailyFocus is the focus time completed on one day.
type DailyFocus struct {
	Date         string
	TotalSeconds int64
	Count        int
}
