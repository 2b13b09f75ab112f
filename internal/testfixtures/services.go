package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/event-calendar/internal/application"
	"github.com/example/event-calendar/internal/scheduler"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// CalendarDeps captures optional overrides for NewCalendar.
type CalendarDeps struct {
	Events   application.EventRepository
	Notifier application.Notifier
	Policy   application.ReschedulePolicy
	Location *time.Location
	Snooze   time.Duration
	Logger   *slog.Logger
}

// Calendar bundles the services of one wired calendar.
type Calendar struct {
	Events        *application.EventService
	Notifications *application.NotificationService
	Scheduler     *scheduler.Scheduler
	Store         application.EventRepository
	Notifier      application.Notifier
}

// NewCalendar wires an event service to a notification service driven by the
// factory clock. Unset dependencies default to an EventStore, a granted
// Notifier, PolicyDuplicate and UTC.
func (f *ServiceFactory) NewCalendar(deps CalendarDeps) *Calendar {
	store := deps.Events
	if store == nil {
		store = NewEventStore()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}

	timers := scheduler.New(f.Clock)
	notifications := application.NewNotificationService(store, timers, notifier, application.NotificationConfig{
		Policy:   deps.Policy,
		Location: location,
		Snooze:   deps.Snooze,
	}, deps.Logger)
	events := application.NewEventService(store, notifications, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), location, deps.Logger)

	return &Calendar{
		Events:        events,
		Notifications: notifications,
		Scheduler:     timers,
		Store:         store,
		Notifier:      notifier,
	}
}
