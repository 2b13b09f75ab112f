package testfixtures

import (
	"sort"
	"sync"
	"time"

	"github.com/example/event-calendar/internal/scheduler"
)

var referenceTime = time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures:
// 2024-01-10T08:00:00Z.
func ReferenceTime() time.Time {
	return referenceTime
}

// Clock provides a controllable time source for tests. Callbacks armed
// through AfterFunc run synchronously, on the goroutine that moves the clock
// past their due time.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	seq     uint64
	timers  []*fakeTimer
}

var _ scheduler.Clock = (*Clock)(nil)

// NewClock returns a clock initialised to the supplied time. When start is the
// zero value, the shared ReferenceTime is used.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current instant tracked by the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now as a function suitable for dependency injection.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// AfterFunc arms f to run once the clock has advanced by d.
func (c *Clock) AfterFunc(d time.Duration, f func()) scheduler.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	timer := &fakeTimer{clock: c, seq: c.seq, at: c.current.Add(d), fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

// Set moves the clock to t, firing every timer due on the way.
func (c *Clock) Set(t time.Time) {
	c.runUntil(t)
}

// Advance moves the clock forward by the provided duration, firing every
// timer due on the way, and returns the updated time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()

	c.runUntil(target)
	return target
}

// PendingTimers reports how many timers are armed and not yet fired or stopped.
func (c *Clock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *Clock) runUntil(target time.Time) {
	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.current = target
			c.mu.Unlock()
			return
		}
		c.removeLocked(next)
		next.fired = true
		if next.at.After(c.current) {
			c.current = next.at
		}
		c.mu.Unlock()

		next.fn()
	}
}

func (c *Clock) nextDueLocked(target time.Time) *fakeTimer {
	due := make([]*fakeTimer, 0, len(c.timers))
	for _, timer := range c.timers {
		if !timer.at.After(target) {
			due = append(due, timer)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	return due[0]
}

func (c *Clock) removeLocked(target *fakeTimer) {
	for i, timer := range c.timers {
		if timer == target {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

type fakeTimer struct {
	clock   *Clock
	seq     uint64
	at      time.Time
	fn      func()
	fired   bool
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	t.clock.removeLocked(t)
	return true
}
