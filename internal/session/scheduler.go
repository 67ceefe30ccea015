package session

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a scheduled callback. It is safe to call more than once.
type Cancel func()

// Scheduler runs callbacks later, on its own goroutines.
type Scheduler interface {
	Every(d time.Duration, fn func()) Cancel
	After(d time.Duration, fn func()) Cancel
}

// ClockScheduler schedules on the wall clock.
type ClockScheduler struct{}

func (ClockScheduler) Every(d time.Duration, fn func()) Cancel {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (ClockScheduler) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler fires callbacks only when Advance is called. Its clock can
// drive a Timer's Now so ticks and wall time move together.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	events []*manualEvent
}

type manualEvent struct {
	seq      int
	at       time.Time
	interval time.Duration
	fn       func()
	canceled bool
}

func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the scheduler's clock.
func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualScheduler) Every(d time.Duration, fn func()) Cancel {
	return m.add(d, d, fn)
}

func (m *ManualScheduler) After(d time.Duration, fn func()) Cancel {
	return m.add(d, 0, fn)
}

func (m *ManualScheduler) add(delay, interval time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	ev := &manualEvent{seq: m.seq, at: m.now.Add(delay), interval: interval, fn: fn}
	m.events = append(m.events, ev)
	return func() {
		m.mu.Lock()
		ev.canceled = true
		m.mu.Unlock()
	}
}

// Pending reports how many callbacks are still scheduled.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if !ev.canceled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due callbacks in time order.
// Callbacks run without the scheduler lock held.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		ev := m.nextDue(target)
		if ev == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = ev.at
		if ev.interval > 0 {
			ev.at = ev.at.Add(ev.interval)
		} else {
			ev.canceled = true
		}
		fn := ev.fn
		m.mu.Unlock()
		fn()
	}
}

// Skip moves the clock forward without firing anything, as when the host
// process is suspended. Periodic callbacks resume from the new time.
func (m *ManualScheduler) Skip(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	for _, ev := range m.events {
		if ev.canceled {
			continue
		}
		if ev.interval > 0 {
			for !ev.at.After(m.now) {
				ev.at = ev.at.Add(ev.interval)
			}
		} else if ev.at.Before(m.now) {
			ev.at = m.now
		}
	}
}

func (m *ManualScheduler) nextDue(target time.Time) *manualEvent {
	live := m.events[:0]
	for _, ev := range m.events {
		if !ev.canceled {
			live = append(live, ev)
		}
	}
	m.events = live
	sort.SliceStable(m.events, func(i, j int) bool {
		if m.events[i].at.Equal(m.events[j].at) {
			return m.events[i].seq < m.events[j].seq
		}
		return m.events[i].at.Before(m.events[j].at)
	})
	if len(m.events) == 0 || m.events[0].at.After(target) {
		return nil
	}
	return m.events[0]
}
