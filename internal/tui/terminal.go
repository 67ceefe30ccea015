package tui

import (
	"context"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/sadopc/fokus/internal/session"
)

const eventBuffer = 64

// notificationMsg shows a timer notification: ongoing ones become the window
// title, finished ones the status line.
type notificationMsg struct {
	id   string
	note session.Notification
}

type dismissMsg struct {
	id string
}

// flashMsg highlights the timer panel for d.
type flashMsg struct {
	d time.Duration
}

type flashDoneMsg struct{}

// Terminal renders the session's notification, audio and haptic side channels
// in the terminal. The timer calls it with its lock held, so every method
// only enqueues a message for the Bubble Tea loop and never blocks.
type Terminal struct {
	events        chan tea.Msg
	notifications bool
	sounds        bool
	bell          io.Writer
}

type TerminalOptions struct {
	Notifications bool
	Sounds        bool
	// Bell receives the BEL character for audio cues.
	Bell io.Writer
}

func NewTerminal(opts TerminalOptions) *Terminal {
	return &Terminal{
		events:        make(chan tea.Msg, eventBuffer),
		notifications: opts.Notifications,
		sounds:        opts.Sounds && opts.Bell != nil,
		bell:          opts.Bell,
	}
}

// Events is drained by the App.
func (t *Terminal) Events() <-chan tea.Msg {
	return t.events
}

func (t *Terminal) send(msg tea.Msg) {
	select {
	case t.events <- msg:
	default:
		log.Printf("fokus: terminal event dropped: %T", msg)
	}
}

func (t *Terminal) RequestPermission(context.Context) (bool, error) {
	return t.notifications, nil
}

func (t *Terminal) Schedule(n session.Notification) (string, error) {
	id := uuid.NewString()
	t.send(notificationMsg{id: id, note: n})
	return id, nil
}

func (t *Terminal) Dismiss(id string) error {
	t.send(dismissMsg{id: id})
	return nil
}

func (t *Terminal) Vibrate(d time.Duration) error {
	t.send(flashMsg{d: d})
	return nil
}

// Load returns a bell for every cue, or nothing when sounds are off.
func (t *Terminal) Load(_ context.Context, cue session.Cue) (session.Sound, error) {
	if !t.sounds {
		return nil, nil
	}
	return &bellSound{w: t.bell, cue: cue}, nil
}

type bellSound struct {
	w   io.Writer
	cue session.Cue
}

func (b *bellSound) Play() error {
	n := 1
	if b.cue == session.EndCue {
		n = 2
	}
	for i := 0; i < n; i++ {
		if _, err := io.WriteString(b.w, "\a"); err != nil {
			return err
		}
	}
	return nil
}

func (b *bellSound) Unload() error { return nil }

// waitForEvent delivers the next terminal event to Update.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		return <-events
	}
}
