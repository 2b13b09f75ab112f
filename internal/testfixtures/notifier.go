package testfixtures

import (
	"context"
	"sync"

	"github.com/example/event-calendar/internal/application"
)

// Notifier records every payload it is asked to surface. Permission starts
// granted.
type Notifier struct {
	mu       sync.Mutex
	denied   bool
	failWith error
	payloads []application.Payload
}

var _ application.Notifier = (*Notifier)(nil)

// NewNotifier returns a notifier with permission granted.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// SetGranted toggles the permission reported by CanNotify.
func (n *Notifier) SetGranted(granted bool) {
	n.mu.Lock()
	n.denied = !granted
	n.mu.Unlock()
}

// FailWith makes Notify return err. A nil err restores success.
func (n *Notifier) FailWith(err error) {
	n.mu.Lock()
	n.failWith = err
	n.mu.Unlock()
}

func (n *Notifier) CanNotify(ctx context.Context) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.denied
}

func (n *Notifier) Notify(ctx context.Context, payload application.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.payloads = append(n.payloads, payload)
	return nil
}

// Payloads returns the surfaced payloads in order.
func (n *Notifier) Payloads() []application.Payload {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]application.Payload, len(n.payloads))
	copy(out, n.payloads)
	return out
}
