package persistence

import "context"

// EventFilter narrows event queries.
type EventFilter struct {
	// DatePrefix keeps events whose date starts with the value, e.g. "2024-01".
	DatePrefix string
}

// EventRepository stores calendar events in insertion order.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
