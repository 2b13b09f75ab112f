package testfixtures

import (
	"context"
	"strings"
	"sync"

	"github.com/example/event-calendar/internal/application"
)

// EventStore is an in-memory application.EventRepository for service tests.
type EventStore struct {
	mu     sync.Mutex
	events map[string]application.Event
	order  []string
}

var _ application.EventRepository = (*EventStore)(nil)

// NewEventStore returns an empty store.
func NewEventStore() *EventStore {
	return &EventStore{events: make(map[string]application.Event)}
}

func (s *EventStore) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[event.ID]; exists {
		return application.Event{}, application.ErrAlreadyExists
	}
	s.events[event.ID] = event
	s.order = append(s.order, event.ID)
	return event, nil
}

func (s *EventStore) GetEvent(ctx context.Context, id string) (application.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return application.Event{}, application.ErrNotFound
	}
	return event, nil
}

func (s *EventStore) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return application.Event{}, application.ErrNotFound
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *EventStore) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return application.ErrNotFound
	}
	delete(s.events, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *EventStore) ListEvents(ctx context.Context, filter application.EventRepositoryFilter) ([]application.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]application.Event, 0, len(s.order))
	for _, id := range s.order {
		event := s.events[id]
		if filter.DatePrefix != "" && !strings.HasPrefix(event.Date, filter.DatePrefix) {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

// Len reports how many events are stored.
func (s *EventStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
