package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/event-calendar/internal/application"
)

type sinkFunc func(ctx context.Context, payload application.Payload) error

func (f sinkFunc) Deliver(ctx context.Context, payload application.Payload) error {
	return f(ctx, payload)
}

func TestNotifierFollowsGate(t *testing.T) {
	ctx := context.Background()
	gate := NewPermissionGate(PermissionDefault)
	notifier := NewNotifier(gate)

	assert.False(t, notifier.CanNotify(ctx))
	gate.Set(ctx, PermissionGranted)
	assert.True(t, notifier.CanNotify(ctx))

	assert.False(t, NewNotifier(nil).CanNotify(ctx))
}

func TestNotifierDeliversToEverySink(t *testing.T) {
	var got []string
	ok := sinkFunc(func(ctx context.Context, p application.Payload) error {
		got = append(got, p.Tag)
		return nil
	})
	failing := sinkFunc(func(ctx context.Context, p application.Payload) error {
		return errors.New("sink offline")
	})

	notifier := NewNotifier(NewPermissionGate(PermissionGranted), failing, ok)
	err := notifier.Notify(context.Background(), application.Payload{Tag: "event-001"})

	assert.EqualError(t, err, "sink offline")
	assert.Equal(t, []string{"event-001"}, got, "a failing sink must not starve the others")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sink.Deliver(context.Background(), application.Payload{Title: "Standup", Body: "daily", Tag: "event-001"})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"title":"Standup"`)
	assert.Contains(t, buf.String(), `"tag":"event-001"`)
}
