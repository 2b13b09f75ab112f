package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/event-calendar/internal/application"
)

// Sink receives surfaced payloads.
type Sink interface {
	Deliver(ctx context.Context, payload application.Payload) error
}

// Notifier gates delivery on a PermissionGate and hands each payload to
// every sink.
type Notifier struct {
	gate  *PermissionGate
	sinks []Sink
}

var _ application.Notifier = (*Notifier)(nil)

// NewNotifier combines gate and sinks. A nil gate never grants.
func NewNotifier(gate *PermissionGate, sinks ...Sink) *Notifier {
	return &Notifier{gate: gate, sinks: sinks}
}

// CanNotify reports whether the gate currently grants permission.
func (n *Notifier) CanNotify(ctx context.Context) bool {
	return n.gate != nil && n.gate.Granted()
}

// Notify delivers payload to every sink, joining their errors.
func (n *Notifier) Notify(ctx context.Context, payload application.Payload) error {
	var errs []error
	for _, sink := range n.sinks {
		if err := sink.Deliver(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes each payload to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a sink writing to logger, or slog.Default when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Deliver implements Sink.
func (l *LogNotifier) Deliver(ctx context.Context, payload application.Payload) error {
	l.logger.InfoContext(ctx, "notification",
		"title", payload.Title,
		"body", payload.Body,
		"tag", payload.Tag,
	)
	return nil
}
