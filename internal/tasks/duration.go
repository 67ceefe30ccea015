package tasks

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultFocusSeconds is used whenever a focus duration is missing or unusable.
const DefaultFocusSeconds = 25 * 60

// MaxMinutes bounds both input forms so every duration fits the MM:SS clock.
const MaxMinutes = 99

type DurationKind int

const (
	Invalid DurationKind = iota
	Minutes
	Seconds
)

// ParsedDuration is the result of reading a free-text duration. Value is in
// the unit named by Kind and is meaningless for Invalid.
type ParsedDuration struct {
	Kind  DurationKind
	Value int
}

var minuteSuffixes = []string{"minutes", "minute", "mins", "min", "m"}

// ParseDuration reads "30", "30m", "30 min" as minutes and "MM:SS" as seconds.
// Anything above MaxMinutes is Invalid.
func ParseDuration(input string) ParsedDuration {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ParsedDuration{}
	}

	if mm, ss, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(mm)
		if err != nil || m < 0 || m > MaxMinutes {
			return ParsedDuration{}
		}
		sec, err := strconv.Atoi(ss)
		if err != nil || sec < 0 || sec >= 60 {
			return ParsedDuration{}
		}
		return ParsedDuration{Kind: Seconds, Value: m*60 + sec}
	}

	for _, suffix := range minuteSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > MaxMinutes {
		return ParsedDuration{}
	}
	return ParsedDuration{Kind: Minutes, Value: n}
}

// Seconds converts the parsed value to seconds. Invalid yields 0.
func (d ParsedDuration) Seconds() int {
	switch d.Kind {
	case Minutes:
		return d.Value * 60
	case Seconds:
		return d.Value
	}
	return 0
}

// FocusSeconds resolves the duration for use as a task's focus time.
func (d ParsedDuration) FocusSeconds() int {
	if secs := d.Seconds(); secs > 0 {
		return secs
	}
	return DefaultFocusSeconds
}

func (d ParsedDuration) String() string {
	switch d.Kind {
	case Minutes:
		return fmt.Sprintf("Minutes(%d)", d.Value)
	case Seconds:
		return fmt.Sprintf("Seconds(%d)", d.Value)
	}
	return "Invalid"
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
