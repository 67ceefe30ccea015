package session

import (
	"context"
	"time"
)

type NotificationKind int

const (
	// Ongoing is the status notification shown while the timer runs hidden.
	Ongoing NotificationKind = iota
	// Finished is the one-shot notification for a completed phase.
	Finished
)

type Notification struct {
	Kind  NotificationKind
	Title string
	Body  string
}

// Notifier presents notifications immediately. Implementations are called
// with the timer locked and must not call back into the Timer.
type Notifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	Schedule(n Notification) (string, error)
	Dismiss(id string) error
}

type Cue int

const (
	StartCue Cue = iota
	EndCue
)

func (c Cue) String() string {
	if c == EndCue {
		return "end"
	}
	return "start"
}

// Player loads the audio cues played when a phase starts and ends.
type Player interface {
	Load(ctx context.Context, cue Cue) (Sound, error)
}

type Sound interface {
	Play() error
	Unload() error
}

type Haptics interface {
	Vibrate(d time.Duration) error
}

// History receives every naturally completed phase.
type History interface {
	RecordPhase(phase string, seconds int, label string, at time.Time) error
}

type nopNotifier struct{}

func (nopNotifier) RequestPermission(context.Context) (bool, error) { return false, nil }
func (nopNotifier) Schedule(Notification) (string, error)          { return "", nil }
func (nopNotifier) Dismiss(string) error                           { return nil }

type nopPlayer struct{}

func (nopPlayer) Load(context.Context, Cue) (Sound, error) { return nil, nil }

type nopHaptics struct{}

func (nopHaptics) Vibrate(time.Duration) error { return nil }

type nopHistory struct{}

func (nopHistory) RecordPhase(string, int, string, time.Time) error { return nil }
