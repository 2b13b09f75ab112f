package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/example/event-calendar/internal/persistence"
)

// Storage keeps events in process memory. Its lifetime is the lifetime of the
// service: nothing survives a restart.
type Storage struct {
	mu     sync.RWMutex
	events map[string]persistence.Event
	order  []string
}

// Open returns an empty Storage.
func Open() *Storage {
	return &Storage{events: make(map[string]persistence.Event)}
}

// Close drops every stored event.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(map[string]persistence.Event)
	s.order = nil
	return nil
}

// CreateEvent appends a new event.
func (s *Storage) CreateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; ok {
		return fmt.Errorf("memory: event %s: %w", event.ID, persistence.ErrDuplicate)
	}

	s.events[event.ID] = cloneEvent(event)
	s.order = append(s.order, event.ID)
	return nil
}

// UpdateEvent replaces an existing event in place, keeping its position.
func (s *Storage) UpdateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[event.ID]
	if !ok {
		return persistence.ErrNotFound
	}

	event.CreatedAt = existing.CreatedAt
	s.events[event.ID] = cloneEvent(event)
	return nil
}

// GetEvent retrieves an event by ID.
func (s *Storage) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return cloneEvent(event), nil
}

// ListEvents returns events in insertion order.
func (s *Storage) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]persistence.Event, 0, len(s.order))
	for _, id := range s.order {
		event := s.events[id]
		if filter.DatePrefix != "" && !strings.HasPrefix(event.Date, filter.DatePrefix) {
			continue
		}
		events = append(events, cloneEvent(event))
	}
	return events, nil
}

// DeleteEvent removes an event by ID.
func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return persistence.ErrNotFound
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

func cloneEvent(event persistence.Event) persistence.Event {
	clone := event
	if event.Attachments != nil {
		clone.Attachments = make([]persistence.Attachment, len(event.Attachments))
		copy(clone.Attachments, event.Attachments)
	}
	return clone
}
