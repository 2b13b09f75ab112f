package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/event-calendar/internal/application"
	"github.com/example/event-calendar/internal/config"
	httptransport "github.com/example/event-calendar/internal/http"
	"github.com/example/event-calendar/internal/maintenance"
	"github.com/example/event-calendar/internal/notify"
	"github.com/example/event-calendar/internal/scheduler"
)

// app is one wired calendar service.
type app struct {
	handler       http.Handler
	events        *application.EventService
	notifications *application.NotificationService
	timers        *scheduler.Scheduler
	gate          *notify.PermissionGate
	hub           *notify.Hub
	pruner        *maintenance.FiredPruner
	closeStore    func() error
	logger        *slog.Logger
}

// newApp wires storage, scheduling, the notification surface and the HTTP
// router from cfg. A nil clock means the system clock.
func newApp(ctx context.Context, cfg config.Config, clock scheduler.Clock, logger *slog.Logger) (*app, error) {
	permission, err := notify.ParsePermission(cfg.NotificationPermission)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(ctx, cfg.SQLiteDSN)
	if err != nil {
		return nil, err
	}
	repo := newEventRepositoryAdapter(store)

	timers := scheduler.New(clock)
	gate := notify.NewPermissionGate(permission)
	hub := notify.NewHub(0)
	notifier := notify.NewNotifier(gate, hub, notify.NewLogNotifier(logger))

	notifications := application.NewNotificationService(repo, timers, notifier, application.NotificationConfig{
		Policy:   application.ReschedulePolicy(cfg.ReschedulePolicy),
		Location: cfg.Location,
		Snooze:   cfg.SnoozeDuration,
	}, logger)
	events := application.NewEventService(repo, notifications, newEventID, timers.Now, cfg.Location, logger)

	a := &app{
		events:        events,
		notifications: notifications,
		timers:        timers,
		gate:          gate,
		hub:           hub,
		closeStore:    closeStore,
		logger:        logger,
	}

	if cfg.NotificationRetention > 0 {
		pruner, err := maintenance.NewFiredPruner(notifications, cfg.PruneSchedule, cfg.NotificationRetention, logger)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.pruner = pruner
	}

	middleware := []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)}
	if cfg.BasicAuthEnabled() {
		middleware = append(middleware, httptransport.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthHash, logger))
	}

	a.handler = httptransport.NewRouter(httptransport.RouterConfig{
		Events:        httptransport.NewEventHandler(events, logger),
		Calendar:      httptransport.NewICSHandler(events, cfg.Location, timers.Now, logger),
		Notifications: httptransport.NewNotificationHandler(notifications, gate, hub, logger),
		Middleware:    middleware,
	})

	return a, nil
}

// Start asks for notification permission and starts background jobs.
func (a *app) Start(ctx context.Context) {
	a.gate.Request(ctx)
	if a.pruner != nil {
		a.pruner.Start()
	}
}

// Close disarms every pending notification and releases storage.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.pruner != nil {
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		errs = append(errs, a.pruner.Stop(stopCtx))
		cancel()
	}
	a.timers.Close()
	a.hub.Close()
	if a.closeStore != nil {
		errs = append(errs, a.closeStore())
	}
	return errors.Join(errs...)
}

// newEventID returns a time-ordered UUIDv7.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
