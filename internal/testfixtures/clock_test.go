package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockNowFunc(t *testing.T) {
	clock := NewClock(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected %v from NowFunc, got %v", clock.Now(), got)
	}

	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected updated time %v, got %v", clock.Now(), got)
	}
}

func TestClockFiresTimersInDueOrder(t *testing.T) {
	clock := NewClock(time.Time{})
	start := clock.Now()

	var fired []string
	var firedAt []time.Time
	record := func(name string) func() {
		return func() {
			fired = append(fired, name)
			firedAt = append(firedAt, clock.Now())
		}
	}

	clock.AfterFunc(2*time.Hour, record("late"))
	clock.AfterFunc(time.Hour, record("early"))
	clock.AfterFunc(time.Hour, record("early-second"))
	stopped := clock.AfterFunc(90*time.Minute, record("stopped"))

	if !stopped.Stop() {
		t.Fatalf("expected Stop to report a pending timer")
	}
	if stopped.Stop() {
		t.Fatalf("expected second Stop to report false")
	}

	clock.Advance(time.Hour)
	if len(fired) != 2 || fired[0] != "early" || fired[1] != "early-second" {
		t.Fatalf("unexpected fire order after one hour: %v", fired)
	}
	if !firedAt[0].Equal(start.Add(time.Hour)) {
		t.Fatalf("expected timer to observe its due time, got %v", firedAt[0])
	}

	clock.Advance(3 * time.Hour)
	if len(fired) != 3 || fired[2] != "late" {
		t.Fatalf("unexpected fire order: %v", fired)
	}
	if !firedAt[2].Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected late timer to fire at its due time, got %v", firedAt[2])
	}
	if clock.PendingTimers() != 0 {
		t.Fatalf("expected no pending timers, got %d", clock.PendingTimers())
	}
}

func TestClockTimerArmedFromCallback(t *testing.T) {
	clock := NewClock(time.Time{})
	count := 0
	clock.AfterFunc(time.Minute, func() {
		count++
		clock.AfterFunc(time.Minute, func() { count++ })
	})

	clock.Advance(5 * time.Minute)
	if count != 2 {
		t.Fatalf("expected chained timer to fire within the same advance, got %d", count)
	}
}
