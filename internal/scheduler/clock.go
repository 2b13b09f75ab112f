package scheduler

import "time"

// Timer is a handle on a pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already ran or was stopped before.
	Stop() bool
}

// Clock is the time source used to compute delays and arm callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
