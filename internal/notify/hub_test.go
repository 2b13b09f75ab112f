package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/event-calendar/internal/application"
)

func TestHubFansOut(t *testing.T) {
	hub := NewHub(2)
	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelSecond()

	payload := application.Payload{Title: "Standup", Tag: "event-001"}
	assert.Equal(t, 2, hub.Publish(payload))
	assert.Equal(t, payload, <-first)
	assert.Equal(t, payload, <-second)

	cancelFirst()
	cancelFirst()
	_, open := <-first
	assert.False(t, open, "cancelled subscriber channel must be closed")
	assert.Equal(t, 1, hub.Subscribers())

	require.NoError(t, hub.Deliver(context.Background(), payload))
	assert.Equal(t, payload, <-second)
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe()
	defer cancel()

	assert.Equal(t, 1, hub.Publish(application.Payload{Tag: "a"}))
	assert.Equal(t, 0, hub.Publish(application.Payload{Tag: "b"}))
	assert.Equal(t, "a", (<-ch).Tag)
}

func TestHubClose(t *testing.T) {
	hub := NewHub(0)
	ch, cancel := hub.Subscribe()

	hub.Close()
	_, open := <-ch
	assert.False(t, open)
	cancel()

	late, _ := hub.Subscribe()
	_, open = <-late
	assert.False(t, open)
	assert.Zero(t, hub.Publish(application.Payload{}))
}
