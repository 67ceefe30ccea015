package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeNotifier struct {
	t       *testing.T
	mu      sync.Mutex
	deny    bool
	permErr error
	seq     int
	live    map[string]Notification
	log     []string
	shown   []Notification
}

func (n *fakeNotifier) RequestPermission(context.Context) (bool, error) {
	if n.permErr != nil {
		return false, n.permErr
	}
	return !n.deny, nil
}

func (n *fakeNotifier) Schedule(note Notification) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.live) > 0 {
		n.t.Errorf("schedule %q while %d notification(s) live", note.Title, len(n.live))
	}
	n.seq++
	id := fmt.Sprintf("n%d", n.seq)
	n.live[id] = note
	n.shown = append(n.shown, note)
	n.log = append(n.log, "schedule "+id)
	return id, nil
}

func (n *fakeNotifier) Dismiss(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.live[id]; !ok {
		n.t.Errorf("dismiss of unknown id %q", id)
	}
	delete(n.live, id)
	n.log = append(n.log, "dismiss "+id)
	return nil
}

func (n *fakeNotifier) liveCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.live)
}

func (n *fakeNotifier) scheduled() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.shown)
}

func (n *fakeNotifier) last() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.shown) == 0 {
		return Notification{}
	}
	return n.shown[len(n.shown)-1]
}

type fakeSound struct {
	plays   int
	unloads int
	playErr error
}

func (s *fakeSound) Play() error {
	s.plays++
	return s.playErr
}

func (s *fakeSound) Unload() error {
	s.unloads++
	return nil
}

type fakePlayer struct {
	sounds  map[Cue]*fakeSound
	loadErr error
}

func (p *fakePlayer) Load(_ context.Context, cue Cue) (Sound, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	s := &fakeSound{}
	p.sounds[cue] = s
	return s, nil
}

type fakeHaptics struct {
	calls []time.Duration
	err   error
}

func (h *fakeHaptics) Vibrate(d time.Duration) error {
	h.calls = append(h.calls, d)
	return h.err
}

type recorded struct {
	phase   string
	seconds int
	label   string
}

type fakeHistory struct {
	entries []recorded
}

func (h *fakeHistory) RecordPhase(phase string, seconds int, label string, _ time.Time) error {
	h.entries = append(h.entries, recorded{phase, seconds, label})
	return nil
}

type harness struct {
	timer    *Timer
	sched    *ManualScheduler
	notifier *fakeNotifier
	player   *fakePlayer
	haptics  *fakeHaptics
	history  *fakeHistory
}

func newHarness(t *testing.T, d Durations) *harness {
	t.Helper()
	h := &harness{
		sched:    NewManualScheduler(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)),
		notifier: &fakeNotifier{t: t, live: map[string]Notification{}},
		player:   &fakePlayer{sounds: map[Cue]*fakeSound{}},
		haptics:  &fakeHaptics{},
		history:  &fakeHistory{},
	}
	h.timer = New(Options{
		Durations: d,
		Scheduler: h.sched,
		Notifier:  h.notifier,
		Player:    h.player,
		Haptics:   h.haptics,
		History:   h.history,
		Now:       h.sched.Now,
	})
	h.timer.Mount(context.Background())
	t.Cleanup(h.timer.Unmount)
	return h
}

func (h *harness) seconds(n int) {
	h.sched.Advance(time.Duration(n) * time.Second)
}

// ============================================================
// Phases and durations
// ============================================================

func TestPhaseNames(t *testing.T) {
	tests := []struct {
		p       Phase
		name    string
		key     string
		isBreak bool
	}{
		{Focus, "Focus", "focus", false},
		{ShortBreak, "Short Break", "short", true},
		{LongBreak, "Long Break", "long", true},
	}
	for _, tt := range tests {
		if tt.p.String() != tt.name || tt.p.Key() != tt.key {
			t.Errorf("phase %d = %q/%q, want %q/%q", tt.p, tt.p, tt.p.Key(), tt.name, tt.key)
		}
		if tt.p.IsBreak() != tt.isBreak {
			t.Errorf("%v.IsBreak() = %v", tt.p, !tt.isBreak)
		}
	}
}

func TestDurationsFallback(t *testing.T) {
	d := Durations{Focus: 60}
	if d.Of(Focus) != 60 {
		t.Fatalf("focus = %d", d.Of(Focus))
	}
	if d.Of(ShortBreak) != 300 || d.Of(LongBreak) != 900 {
		t.Fatalf("breaks = %d/%d, want defaults", d.Of(ShortBreak), d.Of(LongBreak))
	}
}

// ============================================================
// Start / stop / toggle
// ============================================================

func TestNewTimerIsIdle(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	s := h.timer.Snapshot()
	if s.State != Idle || s.Running {
		t.Fatalf("state = %v", s.State)
	}
	if s.Phase != Focus || s.Initial != 1500 || s.Remaining != 1500 {
		t.Fatalf("snapshot = %+v", s)
	}
	if s.Clock() != "25:00" {
		t.Fatalf("clock = %q", s.Clock())
	}
}

func TestStartTicks(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	if h.player.sounds[StartCue].plays != 1 {
		t.Fatal("start cue not played")
	}
	h.seconds(3)
	s := h.timer.Snapshot()
	if s.State != RunningForeground || s.Remaining != 1497 {
		t.Fatalf("after 3s: %v remaining %d", s.State, s.Remaining)
	}
	if h.notifier.scheduled() != 0 {
		t.Fatal("foreground run should not notify")
	}
}

func TestStopCancelsTick(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	h.seconds(2)
	h.timer.Stop()
	if h.sched.Pending() != 0 {
		t.Fatalf("pending callbacks after stop = %d", h.sched.Pending())
	}
	h.seconds(10)
	if r := h.timer.Snapshot().Remaining; r != 1498 {
		t.Fatalf("remaining moved after stop: %d", r)
	}
}

func TestToggle(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Toggle()
	if !h.timer.Snapshot().Running {
		t.Fatal("toggle should start")
	}
	h.timer.Toggle()
	if h.timer.Snapshot().Running {
		t.Fatal("toggle should stop")
	}
	h.timer.Toggle()
	h.seconds(1)
	if r := h.timer.Snapshot().Remaining; r != 1499 {
		t.Fatalf("remaining = %d", r)
	}
}

func TestStartTwiceRegistersOneTick(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	h.timer.Start()
	h.seconds(1)
	if r := h.timer.Snapshot().Remaining; r != 1499 {
		t.Fatalf("remaining = %d, want one decrement", r)
	}
}

func TestStaleTickIgnored(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	h.timer.mu.Lock()
	stale := h.timer.gen
	h.timer.mu.Unlock()
	h.timer.Stop()
	h.timer.Start()

	h.timer.tick(stale)
	if r := h.timer.Snapshot().Remaining; r != 1500 {
		t.Fatalf("stale tick applied: remaining %d", r)
	}
}

func TestReset(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	h.seconds(30)
	h.timer.Reset()
	s := h.timer.Snapshot()
	if s.Running || s.Remaining != 1500 {
		t.Fatalf("after reset: %+v", s)
	}
}

// ============================================================
// Phase switching
// ============================================================

func TestSetPhase(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	h.seconds(5)

	h.timer.SetPhase(Focus)
	if s := h.timer.Snapshot(); !s.Running || s.Remaining != 1495 {
		t.Fatalf("same phase should be a no-op: %+v", s)
	}

	h.timer.SetPhase(ShortBreak)
	s := h.timer.Snapshot()
	if s.Running || s.Phase != ShortBreak || s.Initial != 300 || s.Remaining != 300 {
		t.Fatalf("after switch: %+v", s)
	}
	h.timer.SetPhase(LongBreak)
	if s := h.timer.Snapshot(); s.Initial != 900 {
		t.Fatalf("long break initial = %d", s.Initial)
	}
}

func TestSetDurations(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.SetDurations(Durations{Focus: 3000, ShortBreak: 600, LongBreak: 1200})
	if s := h.timer.Snapshot(); s.Initial != 3000 || s.Remaining != 3000 {
		t.Fatalf("idle timer not updated: %+v", s)
	}
	h.timer.SetPhase(ShortBreak)
	if s := h.timer.Snapshot(); s.Initial != 600 {
		t.Fatalf("short break = %d", s.Initial)
	}

	h.timer.Launch(120, "task", false)
	h.timer.SetDurations(DefaultDurations())
	if s := h.timer.Snapshot(); s.Initial != 120 {
		t.Fatalf("launched duration overwritten: %d", s.Initial)
	}
}

// ============================================================
// Natural completion
// ============================================================

func TestNaturalCompletion(t *testing.T) {
	h := newHarness(t, Durations{Focus: 3})
	h.timer.Launch(0, "Write report", false)
	h.timer.Start()
	h.seconds(3)

	s := h.timer.Snapshot()
	if s.Running || s.State != Idle {
		t.Fatalf("timer should stop on completion: %v", s.State)
	}
	if s.Remaining != s.Initial || s.Initial != 3 {
		t.Fatalf("remaining should reset: %+v", s)
	}
	if s.Completions != 1 {
		t.Fatalf("completions = %d", s.Completions)
	}
	if h.player.sounds[EndCue].plays != 1 {
		t.Fatal("end cue not played")
	}
	if len(h.haptics.calls) != 1 || h.haptics.calls[0] != 500*time.Millisecond {
		t.Fatalf("vibrate calls = %v", h.haptics.calls)
	}
	note := h.notifier.last()
	if note.Kind != Finished || note.Title != "Focus finished" {
		t.Fatalf("finished notification = %+v", note)
	}
	if note.Body != `Focus on "Write report" complete. Time for a break.` {
		t.Fatalf("body = %q", note.Body)
	}
	if len(h.history.entries) != 1 || h.history.entries[0] != (recorded{"focus", 3, "Write report"}) {
		t.Fatalf("history = %+v", h.history.entries)
	}
	if h.sched.Pending() != 0 {
		t.Fatal("tick still registered after completion")
	}
}

func TestBreakFinishedBody(t *testing.T) {
	if got := finishedBody(ShortBreak, ""); got != "Break is over. Back to work." {
		t.Fatalf("got %q", got)
	}
	if got := finishedBody(LongBreak, "Read"); got != `Break is over. Back to "Read".` {
		t.Fatalf("got %q", got)
	}
	if got := finishedBody(Focus, ""); got != "Focus complete. Time for a break." {
		t.Fatalf("got %q", got)
	}
}

func TestStartAfterCompletionDismissesFinished(t *testing.T) {
	h := newHarness(t, Durations{Focus: 2})
	h.timer.Start()
	h.seconds(2)
	if h.notifier.liveCount() != 1 {
		t.Fatalf("live = %d, want finished notification", h.notifier.liveCount())
	}
	h.timer.Start()
	if h.notifier.liveCount() != 0 {
		t.Fatal("start should remove leftover notification")
	}
}

// ============================================================
// Background reconciliation
// ============================================================

func TestBackgroundIssuesStatusNotification(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	h.seconds(60)
	h.timer.SetVisibility(Background)

	s := h.timer.Snapshot()
	if s.State != RunningBackground {
		t.Fatalf("state = %v", s.State)
	}
	note := h.notifier.last()
	if note.Kind != Ongoing || note.Title != "Fokus - Focus: 24:00" {
		t.Fatalf("status notification = %+v", note)
	}
	if note.Body != "Ends at 09:25" {
		t.Fatalf("body = %q", note.Body)
	}
	if s.NotificationID == "" {
		t.Fatal("notification id not held")
	}
}

func TestInactiveEqualsBackground(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	h.timer.SetVisibility(Inactive)
	if h.timer.Snapshot().State != RunningBackground {
		t.Fatal("inactive should anchor")
	}
	h.timer.SetVisibility(Background)
	if h.notifier.scheduled() != 1 {
		t.Fatalf("hidden to hidden should not re-notify, scheduled %d", h.notifier.scheduled())
	}
}

func TestResumeReconciles(t *testing.T) {
	tests := []struct {
		name          string
		initial       int
		skip          int
		wantRemaining int
		wantComplete  int
	}{
		{"short suspension", 1500, 5, 1495, 0},
		{"one second left", 100, 99, 1, 0},
		{"exact expiry", 100, 100, 100, 1},
		{"long past expiry", 100, 5000, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Durations{Focus: tt.initial})
			h.timer.Start()
			h.timer.SetVisibility(Background)
			h.sched.Skip(time.Duration(tt.skip) * time.Second)
			h.timer.SetVisibility(Active)

			s := h.timer.Snapshot()
			if s.Remaining != tt.wantRemaining {
				t.Fatalf("remaining = %d, want %d", s.Remaining, tt.wantRemaining)
			}
			if s.Completions != tt.wantComplete {
				t.Fatalf("completions = %d, want %d", s.Completions, tt.wantComplete)
			}
			if tt.wantComplete == 0 {
				if s.State != RunningForeground {
					t.Fatalf("state = %v", s.State)
				}
				if h.notifier.liveCount() != 0 {
					t.Fatal("status notification should be dismissed on resume")
				}
			} else if s.Running {
				t.Fatal("completed timer still running")
			}
		})
	}
}

func TestResumeOverridesTicks(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	h.timer.SetVisibility(Background)
	h.seconds(10)
	h.sched.Skip(50 * time.Second)
	h.timer.SetVisibility(Active)
	if r := h.timer.Snapshot().Remaining; r != 1440 {
		t.Fatalf("remaining = %d, want 1440", r)
	}
}

func TestResumeCompletionHappensOnce(t *testing.T) {
	h := newHarness(t, Durations{Focus: 30})
	h.timer.Start()
	h.timer.SetVisibility(Background)
	h.sched.Skip(time.Hour)
	h.timer.SetVisibility(Active)
	h.seconds(5)
	if c := h.timer.Snapshot().Completions; c != 1 {
		t.Fatalf("completions = %d", c)
	}
	if len(h.history.entries) != 1 {
		t.Fatalf("history entries = %d", len(h.history.entries))
	}
}

func TestHiddenRefreshRule(t *testing.T) {
	h := newHarness(t, Durations{Focus: 250})
	h.timer.Start()
	h.timer.SetVisibility(Background)
	base := h.notifier.scheduled()

	// 249..241 are off-boundary.
	h.seconds(9)
	if got := h.notifier.scheduled() - base; got != 0 {
		t.Fatalf("refreshes off boundary = %d", got)
	}
	// 240 and 120 are boundaries.
	h.seconds(1)
	if got := h.notifier.scheduled() - base; got != 1 {
		t.Fatalf("refreshes at 240 = %d", got)
	}
	h.seconds(120)
	if got := h.notifier.scheduled() - base; got != 2 {
		t.Fatalf("refreshes at 120 = %d", got)
	}
	// 119..11 quiet, then 10..1 every tick.
	h.seconds(109)
	if got := h.notifier.scheduled() - base; got != 2 {
		t.Fatalf("refreshes before final stretch = %d", got)
	}
	h.seconds(9)
	if got := h.notifier.scheduled() - base; got != 11 {
		t.Fatalf("refreshes in final stretch = %d", got)
	}
	if h.notifier.liveCount() != 1 {
		t.Fatalf("live notifications = %d", h.notifier.liveCount())
	}
	if title := h.notifier.last().Title; title != "Fokus - Focus: 00:02" {
		t.Fatalf("last title = %q", title)
	}
}

func TestCompletionWhileHidden(t *testing.T) {
	h := newHarness(t, Durations{Focus: 5})
	h.timer.Start()
	h.timer.SetVisibility(Background)
	h.seconds(5)

	s := h.timer.Snapshot()
	if s.Completions != 1 || s.State != Idle {
		t.Fatalf("snapshot = %+v", s)
	}
	if h.notifier.last().Kind != Finished || h.notifier.liveCount() != 1 {
		t.Fatal("finished notification should be the only live one")
	}
	h.timer.SetVisibility(Active)
	if h.notifier.liveCount() != 0 {
		t.Fatal("idle resume should dismiss stray notification")
	}
}

func TestStartWhileHidden(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.SetVisibility(Background)
	h.timer.Start()
	s := h.timer.Snapshot()
	if s.State != RunningBackground {
		t.Fatalf("state = %v", s.State)
	}
	if h.notifier.liveCount() != 1 {
		t.Fatal("status notification should be issued immediately")
	}
	h.sched.Skip(30 * time.Second)
	h.timer.SetVisibility(Active)
	if r := h.timer.Snapshot().Remaining; r != 1470 {
		t.Fatalf("remaining = %d", r)
	}
}

func TestStopWhileHiddenClearsAnchor(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Start()
	h.timer.SetVisibility(Background)
	h.timer.Stop()
	s := h.timer.Snapshot()
	if s.State != Idle || s.NotificationID != "" {
		t.Fatalf("snapshot = %+v", s)
	}
	if h.notifier.liveCount() != 0 {
		t.Fatal("stop should dismiss")
	}
}

func TestEveryCreationDismissesPrevious(t *testing.T) {
	h := newHarness(t, Durations{Focus: 12})
	h.timer.Start()
	h.timer.SetVisibility(Background)
	h.seconds(12)

	h.notifier.mu.Lock()
	log := append([]string(nil), h.notifier.log...)
	h.notifier.mu.Unlock()
	live := ""
	for _, entry := range log {
		var op, id string
		fmt.Sscan(entry, &op, &id)
		switch op {
		case "schedule":
			if live != "" {
				t.Fatalf("schedule %s while %s live", id, live)
			}
			live = id
		case "dismiss":
			if id != live {
				t.Fatalf("dismiss %s, live was %q", id, live)
			}
			live = ""
		}
	}
}

// ============================================================
// Mount, launch, unmount
// ============================================================

func TestLaunchAutoStartAfterSettle(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Launch(1800, "Write report", true)

	s := h.timer.Snapshot()
	if s.Running || s.Initial != 1800 || s.Label != "Write report" {
		t.Fatalf("before settle: %+v", s)
	}
	h.sched.Advance(299 * time.Millisecond)
	if h.timer.Snapshot().Running {
		t.Fatal("started before settle delay")
	}
	h.sched.Advance(time.Millisecond)
	s = h.timer.Snapshot()
	if s.State != RunningForeground || s.Remaining != 1800 {
		t.Fatalf("after settle: %+v", s)
	}
}

func TestLaunchBeforeMountWaitsForMount(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	tm := New(Options{Scheduler: sched, Now: sched.Now})
	t.Cleanup(tm.Unmount)

	tm.Launch(60, "", true)
	sched.Advance(time.Second)
	if tm.Snapshot().Running {
		t.Fatal("started before mount")
	}
	tm.Mount(context.Background())
	sched.Advance(DefaultSettleDelay)
	if !tm.Snapshot().Running {
		t.Fatal("auto-start after mount did not happen")
	}
}

func TestStopBeforeMountDropsAutoStart(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	tm := New(Options{Scheduler: sched, Now: sched.Now})
	t.Cleanup(tm.Unmount)

	tm.Launch(60, "A", true)
	tm.Stop()
	tm.Mount(context.Background())
	sched.Advance(time.Second)
	if tm.Snapshot().Running {
		t.Fatal("stopped launch started after mount")
	}
}

func TestRelaunchBeforeMountWithoutAutoStart(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	tm := New(Options{Scheduler: sched, Now: sched.Now})
	t.Cleanup(tm.Unmount)

	tm.Launch(60, "A", true)
	tm.Launch(120, "B", false)
	tm.Mount(context.Background())
	sched.Advance(time.Second)
	s := tm.Snapshot()
	if s.Running {
		t.Fatalf("relaunch without auto-start is running: %+v", s)
	}
	if s.Label != "B" || s.Remaining != 120 {
		t.Fatalf("relaunch state: %+v", s)
	}
}

func TestLaunchRelaunchResets(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Launch(600, "A", true)
	h.sched.Advance(DefaultSettleDelay)
	h.seconds(20)

	h.timer.Launch(0, "B", false)
	s := h.timer.Snapshot()
	if s.Running || s.Label != "B" || s.Initial != 1500 || s.Remaining != 1500 {
		t.Fatalf("relaunch: %+v", s)
	}
	if s.Phase != Focus {
		t.Fatalf("phase = %v", s.Phase)
	}
}

func TestStopCancelsPendingAutoStart(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Launch(60, "", true)
	h.timer.Stop()
	h.sched.Advance(time.Second)
	if h.timer.Snapshot().Running {
		t.Fatal("cancelled auto-start fired")
	}
}

func TestUnmountCleansUp(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Launch(60, "", true)
	h.sched.Advance(DefaultSettleDelay)
	h.timer.SetVisibility(Background)

	h.timer.Unmount()
	h.timer.Unmount()

	if h.sched.Pending() != 0 {
		t.Fatalf("pending callbacks = %d", h.sched.Pending())
	}
	if h.notifier.liveCount() != 0 {
		t.Fatal("notification left after unmount")
	}
	for cue, s := range h.player.sounds {
		if s.unloads != 1 {
			t.Fatalf("%s cue unloaded %d times", cue, s.unloads)
		}
	}
	if h.timer.Snapshot().Mounted {
		t.Fatal("still mounted")
	}
}

func TestUnmountCancelsPendingSettle(t *testing.T) {
	h := newHarness(t, DefaultDurations())
	h.timer.Launch(60, "", true)
	h.timer.Unmount()
	h.sched.Advance(time.Second)
	if h.timer.Snapshot().Running {
		t.Fatal("settle fired after unmount")
	}
}

// ============================================================
// Degraded side channels
// ============================================================

func TestPermissionDeniedSkipsNotifications(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	n := &fakeNotifier{t: t, live: map[string]Notification{}, deny: true}
	tm := New(Options{Scheduler: sched, Notifier: n, Now: sched.Now, Durations: Durations{Focus: 10}})
	tm.Mount(context.Background())
	t.Cleanup(tm.Unmount)

	tm.Start()
	tm.SetVisibility(Background)
	sched.Advance(10 * time.Second)
	if n.scheduled() != 0 {
		t.Fatalf("scheduled %d notifications without permission", n.scheduled())
	}
	if tm.Snapshot().Completions != 1 {
		t.Fatal("timer should still complete")
	}
}

func TestPermissionErrorIsNonFatal(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	n := &fakeNotifier{t: t, live: map[string]Notification{}, permErr: errors.New("no dbus")}
	tm := New(Options{Scheduler: sched, Notifier: n, Now: sched.Now})
	tm.Mount(context.Background())
	t.Cleanup(tm.Unmount)

	tm.Start()
	sched.Advance(2 * time.Second)
	if r := tm.Snapshot().Remaining; r != 1498 {
		t.Fatalf("remaining = %d", r)
	}
}

func TestCueLoadFailureIsNonFatal(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	p := &fakePlayer{sounds: map[Cue]*fakeSound{}, loadErr: errors.New("missing asset")}
	h := &fakeHaptics{err: errors.New("unsupported")}
	tm := New(Options{Scheduler: sched, Player: p, Haptics: h, Now: sched.Now, Durations: Durations{Focus: 2}})
	tm.Mount(context.Background())
	t.Cleanup(tm.Unmount)

	if !tm.Snapshot().Mounted {
		t.Fatal("mount should complete despite load failure")
	}
	tm.Start()
	sched.Advance(2 * time.Second)
	if tm.Snapshot().Completions != 1 {
		t.Fatal("completion should survive missing cues and haptics")
	}
}

func TestNilCollaborators(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	tm := New(Options{Scheduler: sched, Now: sched.Now, Durations: Durations{Focus: 1}})
	tm.Mount(context.Background())
	tm.Start()
	tm.SetVisibility(Background)
	sched.Advance(time.Second)
	tm.SetVisibility(Active)
	tm.Unmount()
	if tm.Snapshot().Completions != 1 {
		t.Fatal("expected one completion")
	}
}

// ============================================================
// Schedulers
// ============================================================

func TestManualSchedulerOrder(t *testing.T) {
	m := NewManualScheduler(time.Unix(0, 0))
	var got []string
	m.After(2*time.Second, func() { got = append(got, "after") })
	cancel := m.Every(time.Second, func() { got = append(got, "tick") })
	m.Advance(3 * time.Second)
	cancel()
	cancel()
	m.Advance(5 * time.Second)

	want := []string{"tick", "after", "tick", "tick"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if m.Now() != time.Unix(8, 0) {
		t.Fatalf("now = %v", m.Now())
	}
}

func TestManualSchedulerSkip(t *testing.T) {
	m := NewManualScheduler(time.Unix(0, 0))
	n := 0
	m.Every(time.Second, func() { n++ })
	m.Skip(10 * time.Second)
	if n != 0 {
		t.Fatal("skip fired callbacks")
	}
	m.Advance(time.Second)
	if n != 1 {
		t.Fatalf("ticks after skip = %d", n)
	}
}

func TestClockScheduler(t *testing.T) {
	var s ClockScheduler
	fired := make(chan struct{}, 1)
	s.After(5*time.Millisecond, func() { fired <- struct{}{} })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("after did not fire")
	}

	ticks := make(chan struct{}, 10)
	cancel := s.Every(2*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	<-ticks
	cancel()
	cancel()
}
