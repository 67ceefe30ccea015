// Package session runs one Pomodoro countdown that stays accurate while the
// host application is hidden or suspended.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sadopc/fokus/internal/tasks"
)

const (
	DefaultSettleDelay = 300 * time.Millisecond
	tickInterval       = time.Second
	vibrateDuration    = 500 * time.Millisecond
	// refreshEvery controls how often the status notification is re-issued
	// while hidden, in seconds of remaining time.
	refreshEvery = 120
	// refreshFinal re-issues the status notification on every tick at or
	// below this many seconds.
	refreshFinal = 10
)

type Options struct {
	Durations   Durations
	SettleDelay time.Duration
	Scheduler   Scheduler
	Notifier    Notifier
	Player      Player
	Haptics     Haptics
	History     History
	Now         func() time.Time
}

type anchor struct {
	at        time.Time
	remaining int
}

// Timer is safe for concurrent use. Every method takes the same lock, so
// ticks never observe a half-applied resume.
type Timer struct {
	mu sync.Mutex

	durations Durations
	settle    time.Duration
	sched     Scheduler
	notifier  Notifier
	player    Player
	haptics   Haptics
	history   History
	now       func() time.Time

	phase      Phase
	initial    int
	remaining  int
	running    bool
	visibility Visibility
	anchor     *anchor
	label      string
	custom     bool

	mounted        bool
	permission     bool
	cues           map[Cue]Sound
	notificationID string

	gen          uint64
	cancelTick   Cancel
	settleGen    uint64
	cancelSettle Cancel
	autoStart    bool

	completions int
}

// Snapshot is a consistent copy of the timer state.
type Snapshot struct {
	Phase          Phase
	Initial        int
	Remaining      int
	Running        bool
	State          State
	Visibility     Visibility
	Label          string
	Mounted        bool
	NotificationID string
	Completions    int
}

// Clock renders the remaining time as MM:SS.
func (s Snapshot) Clock() string {
	return tasks.FormatClock(s.Remaining)
}

// Progress is the elapsed fraction of the current phase in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.Initial <= 0 {
		return 0
	}
	return float64(s.Initial-s.Remaining) / float64(s.Initial)
}

func New(opts Options) *Timer {
	t := &Timer{
		durations: opts.Durations,
		settle:    opts.SettleDelay,
		sched:     opts.Scheduler,
		notifier:  opts.Notifier,
		player:    opts.Player,
		haptics:   opts.Haptics,
		history:   opts.History,
		now:       opts.Now,
		phase:     Focus,
	}
	if t.settle <= 0 {
		t.settle = DefaultSettleDelay
	}
	if t.sched == nil {
		t.sched = ClockScheduler{}
	}
	if t.notifier == nil {
		t.notifier = nopNotifier{}
	}
	if t.player == nil {
		t.player = nopPlayer{}
	}
	if t.haptics == nil {
		t.haptics = nopHaptics{}
	}
	if t.history == nil {
		t.history = nopHistory{}
	}
	if t.now == nil {
		t.now = time.Now
	}
	t.initial = t.durations.Of(Focus)
	t.remaining = t.initial
	return t
}

// Mount requests notification permission and loads the audio cues. Failures
// are logged and leave the corresponding side channel disabled. A pending
// auto-start from Launch is scheduled once mounting completes.
func (t *Timer) Mount(ctx context.Context) {
	granted, err := t.notifier.RequestPermission(ctx)
	if err != nil {
		log.Printf("fokus: request notification permission: %v", err)
		granted = false
	}
	if !granted {
		log.Printf("fokus: notifications disabled")
	}

	cues := make(map[Cue]Sound, 2)
	for _, cue := range []Cue{StartCue, EndCue} {
		s, err := t.player.Load(ctx, cue)
		if err != nil {
			log.Printf("fokus: load %s cue: %v", cue, err)
			continue
		}
		if s != nil {
			cues[cue] = s
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mounted {
		for _, s := range cues {
			unload(s)
		}
		return
	}
	t.mounted = true
	t.permission = granted
	t.cues = cues
	if t.autoStart {
		t.autoStart = false
		t.scheduleStartLocked()
	}
}

// Unmount releases everything the timer holds. It is safe to call more
// than once.
func (t *Timer) Unmount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	for cue, s := range t.cues {
		unload(s)
		delete(t.cues, cue)
	}
	t.mounted = false
}

// Launch resets the session to a Focus phase of focusSeconds (the configured
// focus duration when zero) carrying label. With autoStart the countdown
// begins after the settle delay, counted from Mount if not yet mounted.
func (t *Timer) Launch(focusSeconds int, label string, autoStart bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.phase = Focus
	t.custom = focusSeconds > 0
	if focusSeconds <= 0 {
		focusSeconds = t.durations.Of(Focus)
	}
	t.initial = focusSeconds
	t.remaining = focusSeconds
	t.label = label
	if !autoStart {
		return
	}
	if t.mounted {
		t.scheduleStartLocked()
	} else {
		t.autoStart = true
	}
}

// SetDurations replaces the configured phase durations. An idle timer that
// was not launched with an explicit duration picks up the new value.
func (t *Timer) SetDurations(d Durations) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.durations = d
	if t.running || t.custom {
		return
	}
	t.initial = d.Of(t.phase)
	t.remaining = t.initial
}

func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startLocked()
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) Toggle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.stopLocked()
	} else {
		t.startLocked()
	}
}

// Reset stops the timer and restores the full phase duration.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.remaining = t.initial
}

func (t *Timer) SetPhase(p Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == t.phase {
		return
	}
	t.stopLocked()
	t.phase = p
	t.custom = false
	t.initial = t.durations.Of(p)
	t.remaining = t.initial
}

func (t *Timer) SetVisibility(v Visibility) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.visibility
	t.visibility = v
	switch {
	case !prev.hidden() && v.hidden():
		if t.running {
			t.anchor = &anchor{at: t.now(), remaining: t.remaining}
			t.notifyStatusLocked()
		}
	case prev.hidden() && !v.hidden():
		if t.running && t.anchor != nil {
			t.reconcileLocked()
		} else if !t.running {
			t.dismissLocked()
		}
	}
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	state := Idle
	if t.running {
		state = RunningForeground
		if t.anchor != nil {
			state = RunningBackground
		}
	}
	return Snapshot{
		Phase:          t.phase,
		Initial:        t.initial,
		Remaining:      t.remaining,
		Running:        t.running,
		State:          state,
		Visibility:     t.visibility,
		Label:          t.label,
		Mounted:        t.mounted,
		NotificationID: t.notificationID,
		Completions:    t.completions,
	}
}

func (t *Timer) startLocked() {
	if t.running {
		return
	}
	if t.remaining <= 0 {
		t.remaining = t.initial
	}
	t.cancelSettleLocked()
	t.running = true
	t.gen++
	gen := t.gen
	t.cancelTick = t.sched.Every(tickInterval, func() { t.tick(gen) })
	t.play(StartCue)
	t.dismissLocked()
	if t.visibility.hidden() {
		t.anchor = &anchor{at: t.now(), remaining: t.remaining}
		t.notifyStatusLocked()
	}
}

func (t *Timer) stopLocked() {
	t.cancelSettleLocked()
	t.autoStart = false
	t.gen++
	if t.cancelTick != nil {
		t.cancelTick()
		t.cancelTick = nil
	}
	t.running = false
	t.anchor = nil
	t.dismissLocked()
}

func (t *Timer) scheduleStartLocked() {
	t.cancelSettleLocked()
	t.settleGen++
	gen := t.settleGen
	t.cancelSettle = t.sched.After(t.settle, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if gen != t.settleGen {
			return
		}
		t.cancelSettle = nil
		t.startLocked()
	})
}

func (t *Timer) cancelSettleLocked() {
	t.settleGen++
	if t.cancelSettle != nil {
		t.cancelSettle()
		t.cancelSettle = nil
	}
}

func (t *Timer) tick(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || !t.running {
		return
	}
	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.completeLocked()
		return
	}
	if t.anchor != nil && (t.remaining%refreshEvery == 0 || t.remaining <= refreshFinal) {
		t.notifyStatusLocked()
	}
}

func (t *Timer) reconcileLocked() {
	elapsed := int(t.now().Sub(t.anchor.at) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := t.anchor.remaining - elapsed
	if remaining <= 0 {
		t.remaining = 0
		t.completeLocked()
		return
	}
	t.remaining = remaining
	t.anchor = nil
	t.dismissLocked()
}

func (t *Timer) completeLocked() {
	t.stopLocked()
	t.play(EndCue)
	if err := t.haptics.Vibrate(vibrateDuration); err != nil {
		log.Printf("fokus: vibrate: %v", err)
	}
	t.notifyLocked(Notification{
		Kind:  Finished,
		Title: fmt.Sprintf("%s finished", t.phase),
		Body:  finishedBody(t.phase, t.label),
	})
	if err := t.history.RecordPhase(t.phase.Key(), t.initial, t.label, t.now()); err != nil {
		log.Printf("fokus: record phase: %v", err)
	}
	t.completions++
	t.remaining = t.initial
}

func (t *Timer) notifyStatusLocked() {
	body := "Ends at " + t.now().Add(time.Duration(t.remaining)*time.Second).Format("15:04")
	if t.label != "" {
		body = t.label + ", " + body
	}
	t.notifyLocked(Notification{
		Kind:  Ongoing,
		Title: fmt.Sprintf("Fokus - %s: %s", t.phase, tasks.FormatClock(t.remaining)),
		Body:  body,
	})
}

// notifyLocked holds at most one notification id: the previous one is
// always dismissed before a new one is scheduled.
func (t *Timer) notifyLocked(n Notification) {
	t.dismissLocked()
	if !t.permission {
		return
	}
	id, err := t.notifier.Schedule(n)
	if err != nil {
		log.Printf("fokus: schedule notification: %v", err)
		return
	}
	t.notificationID = id
}

func (t *Timer) dismissLocked() {
	if t.notificationID == "" {
		return
	}
	id := t.notificationID
	t.notificationID = ""
	if err := t.notifier.Dismiss(id); err != nil {
		log.Printf("fokus: dismiss notification: %v", err)
	}
}

func (t *Timer) play(cue Cue) {
	s, ok := t.cues[cue]
	if !ok {
		return
	}
	if err := s.Play(); err != nil {
		log.Printf("fokus: play %s cue: %v", cue, err)
	}
}

func unload(s Sound) {
	if err := s.Unload(); err != nil {
		log.Printf("fokus: unload cue: %v", err)
	}
}

func finishedBody(p Phase, label string) string {
	if !p.IsBreak() {
		if label != "" {
			return fmt.Sprintf("Focus on %q complete. Time for a break.", label)
		}
		return "Focus complete. Time for a break."
	}
	if label != "" {
		return fmt.Sprintf("Break is over. Back to %q.", label)
	}
	return "Break is over. Back to work."
}
