package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/event-calendar/internal/persistence"
)

// EventRepository captures the persistence interactions needed by the service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, filter EventRepositoryFilter) ([]Event, error)
}

// EventRepositoryFilter narrows queries issued to the event repository.
type EventRepositoryFilter struct {
	DatePrefix string
}

// EventLifecycle is told about every committed change so pending
// notifications can follow the events they belong to.
type EventLifecycle interface {
	EventCreated(ctx context.Context, event Event)
	EventUpdated(ctx context.Context, event Event, patch Patch)
	EventDeleted(ctx context.Context, id string)
}

// EventService owns the event collection and dispatches every mutation.
type EventService struct {
	events      EventRepository
	lifecycle   EventLifecycle
	idGenerator func() string
	now         func() time.Time
	location    *time.Location
	logger      *slog.Logger
}

// NewEventService wires dependencies for event operations. A nil lifecycle
// disables notification scheduling; a nil location means time.Local.
func NewEventService(events EventRepository, lifecycle EventLifecycle, idGenerator func() string, now func() time.Time, location *time.Location, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &EventService{
		events:      events,
		lifecycle:   lifecycle,
		idGenerator: idGenerator,
		now:         now,
		location:    location,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// Create stores a new event built from the draft. The draft is not
// validated here; Submit applies the form gate.
func (s *EventService) Create(ctx context.Context, draft Draft) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Create")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	createdAt := s.now()
	event = Event{
		ID:                   s.idGenerator(),
		Title:                draft.Title,
		Description:          draft.Description,
		Date:                 draft.Date,
		Time:                 draft.Time,
		Attachments:          cloneAttachments(draft.Attachments),
		NotificationsEnabled: true,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}

	event, err = s.events.CreateEvent(ctx, event)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	if s.lifecycle != nil {
		s.lifecycle.EventCreated(ctx, event)
	}
	return
}

// Update merges patch over the stored event. An unknown id is a silent
// no-op reported through found.
func (s *EventService) Update(ctx context.Context, id string, patch Patch) (event Event, found bool, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Update", "event_id", id)
	defer func() {
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
		case !found:
			logger.DebugContext(ctx, "update ignored for unknown event")
		default:
			logger.InfoContext(ctx, "event updated")
		}
	}()

	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	existing, getErr := s.events.GetEvent(ctx, id)
	if getErr != nil {
		if errors.Is(mapEventRepoError(getErr), ErrNotFound) {
			return
		}
		err = mapEventRepoError(getErr)
		return
	}

	merged := patch.apply(existing)
	merged.ID = existing.ID
	merged.NotificationsEnabled = true
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, merged)
	if err != nil {
		err = mapEventRepoError(err)
		if errors.Is(err, ErrNotFound) {
			// Deleted between the read and the write.
			err = nil
			event = Event{}
		}
		return
	}
	found = true

	if s.lifecycle != nil {
		s.lifecycle.EventUpdated(ctx, event, patch)
	}
	return
}

// Delete removes the event and every fired notification sharing its id.
// An unknown id is a silent no-op.
func (s *EventService) Delete(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}

	logger := s.loggerWith(ctx, "Delete", "event_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event deleted")
	}()

	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	if delErr := s.events.DeleteEvent(ctx, id); delErr != nil {
		if mapped := mapEventRepoError(delErr); !errors.Is(mapped, ErrNotFound) {
			return mapped
		}
	}

	if s.lifecycle != nil {
		s.lifecycle.EventDeleted(ctx, id)
	}
	return nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id string) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return Event{}, fmt.Errorf("event repository not configured")
	}
	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	return event, nil
}

// List returns every event in insertion order.
func (s *EventService) List(ctx context.Context) ([]Event, error) {
	return s.list(ctx, EventRepositoryFilter{})
}

// Submit runs the form gate, then updates when the draft carries an id and
// creates otherwise. stored is false when an update targeted an unknown id.
func (s *EventService) Submit(ctx context.Context, draft Draft) (event Event, stored bool, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	if vErr := ValidateDraft(draft); vErr.HasErrors() {
		s.loggerWith(ctx, "Submit").WarnContext(ctx, "draft rejected", "error", vErr, "error_kind", ErrorKind(vErr), "fields", vErr.FieldErrors)
		err = vErr
		return
	}

	if draft.ID != "" {
		return s.Update(ctx, draft.ID, PatchFromDraft(draft))
	}

	event, err = s.Create(ctx, draft)
	if err != nil {
		return Event{}, false, err
	}
	return event, true, nil
}

// Search matches query case-insensitively against title and description
// and literally against the date. An empty query matches nothing.
func (s *EventService) Search(ctx context.Context, query string) ([]Event, error) {
	if query == "" {
		return []Event{}, nil
	}
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return SearchEvents(events, query), nil
}

// MonthGrid lays out the requested YYYY-MM month. An empty month selects
// the current month in the service's location.
func (s *EventService) MonthGrid(ctx context.Context, month string) (MonthGrid, error) {
	if s == nil {
		return MonthGrid{}, fmt.Errorf("EventService is nil")
	}

	year, mon, err := s.resolveMonth(month)
	if err != nil {
		return MonthGrid{}, err
	}

	prefix := fmt.Sprintf("%04d-%02d-", year, int(mon))
	events, err := s.list(ctx, EventRepositoryFilter{DatePrefix: prefix})
	if err != nil {
		return MonthGrid{}, err
	}
	return BuildMonthGrid(year, mon, events), nil
}

func (s *EventService) resolveMonth(month string) (int, time.Month, error) {
	if month == "" {
		now := s.now().In(s.location)
		return now.Year(), now.Month(), nil
	}
	parsed, err := time.Parse(monthLayout, month)
	if err != nil || len(month) != len(monthLayout) {
		vErr := &ValidationError{}
		vErr.add(fieldMonth, "month must be YYYY-MM")
		return 0, 0, vErr
	}
	return parsed.Year(), parsed.Month(), nil
}

func (s *EventService) list(ctx context.Context, filter EventRepositoryFilter) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}
	events, err := s.events.ListEvents(ctx, filter)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

func mapEventRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
