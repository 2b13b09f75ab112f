package main

import (
	"context"
	"strings"

	"github.com/example/event-calendar/internal/application"
	"github.com/example/event-calendar/internal/persistence"
	"github.com/example/event-calendar/internal/persistence/memory"
	"github.com/example/event-calendar/internal/persistence/sqlite"
)

// openStore selects the SQLite store when dsn is set and the in-memory store
// otherwise. The returned func releases it.
func openStore(ctx context.Context, dsn string) (persistence.EventRepository, func() error, error) {
	if strings.TrimSpace(dsn) == "" {
		storage := memory.Open()
		return storage, storage.Close, nil
	}

	pool, err := sqlite.Open(dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, nil, err
	}
	return sqlite.NewEventRepository(pool), pool.Close, nil
}

type eventRepositoryAdapter struct {
	repo persistence.EventRepository
}

var (
	_ application.EventRepository = (*eventRepositoryAdapter)(nil)
	_ application.EventLookup     = (*eventRepositoryAdapter)(nil)
)

func newEventRepositoryAdapter(repo persistence.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	return a.GetEvent(ctx, event.ID)
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.UpdateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	return a.GetEvent(ctx, event.ID)
}

func (a *eventRepositoryAdapter) DeleteEvent(ctx context.Context, id string) error {
	return a.repo.DeleteEvent(ctx, id)
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context, filter application.EventRepositoryFilter) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx, persistence.EventFilter{DatePrefix: filter.DatePrefix})
	if err != nil {
		return nil, err
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, toApplicationEvent(model))
	}
	return events, nil
}

func toApplicationEvent(model persistence.Event) application.Event {
	var attachments []application.Attachment
	if model.Attachments != nil {
		attachments = make([]application.Attachment, 0, len(model.Attachments))
		for _, a := range model.Attachments {
			attachments = append(attachments, application.Attachment{Name: a.Name})
		}
	}
	return application.Event{
		ID:                   model.ID,
		Title:                model.Title,
		Description:          model.Description,
		Date:                 model.Date,
		Time:                 model.Time,
		Attachments:          attachments,
		NotificationsEnabled: model.NotificationsEnabled,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	var attachments []persistence.Attachment
	if event.Attachments != nil {
		attachments = make([]persistence.Attachment, 0, len(event.Attachments))
		for _, a := range event.Attachments {
			attachments = append(attachments, persistence.Attachment{Name: a.Name})
		}
	}
	return persistence.Event{
		ID:                   event.ID,
		Title:                event.Title,
		Description:          event.Description,
		Date:                 event.Date,
		Time:                 event.Time,
		Attachments:          attachments,
		NotificationsEnabled: event.NotificationsEnabled,
		CreatedAt:            event.CreatedAt,
		UpdatedAt:            event.UpdatedAt,
	}
}
