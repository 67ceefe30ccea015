package session

import "fmt"

type Phase int

const (
	Focus Phase = iota
	ShortBreak
	LongBreak
)

// Phases lists every phase in display order.
var Phases = []Phase{Focus, ShortBreak, LongBreak}

var phaseNames = map[Phase]string{
	Focus:      "Focus",
	ShortBreak: "Short Break",
	LongBreak:  "Long Break",
}

var phaseKeys = map[Phase]string{
	Focus:      "focus",
	ShortBreak: "short",
	LongBreak:  "long",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Key is the stable identifier used in storage.
func (p Phase) Key() string {
	return phaseKeys[p]
}

func (p Phase) IsBreak() bool {
	return p == ShortBreak || p == LongBreak
}

// Durations holds the configured length of each phase, in seconds.
type Durations struct {
	Focus      int
	ShortBreak int
	LongBreak  int
}

func DefaultDurations() Durations {
	return Durations{Focus: 25 * 60, ShortBreak: 5 * 60, LongBreak: 15 * 60}
}

// Of returns the duration of p, falling back to the default when unset.
func (d Durations) Of(p Phase) int {
	def := DefaultDurations()
	var v, fallback int
	switch p {
	case ShortBreak:
		v, fallback = d.ShortBreak, def.ShortBreak
	case LongBreak:
		v, fallback = d.LongBreak, def.LongBreak
	default:
		v, fallback = d.Focus, def.Focus
	}
	if v <= 0 {
		return fallback
	}
	return v
}

// State is the run state of the timer.
type State int

const (
	Idle State = iota
	RunningForeground
	RunningBackground
)

var stateNames = map[State]string{
	Idle:              "IDLE",
	RunningForeground: "RUNNING",
	RunningBackground: "RUNNING (BACKGROUND)",
}

func (s State) String() string {
	return stateNames[s]
}

// Visibility is the host application's visibility as reported by its
// lifecycle observer. Inactive and Background are treated alike.
type Visibility int

const (
	Active Visibility = iota
	Inactive
	Background
)

func (v Visibility) hidden() bool {
	return v != Active
}
