package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/event-calendar/internal/logging"
	"github.com/example/event-calendar/internal/scheduler"
)

const (
	// DefaultSnoozeDuration is how long a snoozed notification waits.
	DefaultSnoozeDuration = 5 * time.Minute

	snoozeTagPrefix = "snoozed-"
	snoozeBody      = "This is your snoozed reminder"
)

// Notifier is the platform notification capability.
type Notifier interface {
	CanNotify(ctx context.Context) bool
	Notify(ctx context.Context, payload Payload) error
}

// EventLookup resolves an event's current values by id.
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (Event, error)
}

// NotificationConfig tunes a NotificationService.
type NotificationConfig struct {
	Policy   ReschedulePolicy
	Location *time.Location
	Snooze   time.Duration
}

// NotificationService arms one notification per event and keeps the list of
// notifications that actually fired.
type NotificationService struct {
	events   EventLookup
	timers   *scheduler.Scheduler
	notifier Notifier
	policy   ReschedulePolicy
	location *time.Location
	snooze   time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	fired []FiredNotification
}

var _ EventLifecycle = (*NotificationService)(nil)

// NewNotificationService wires the notification scheduler. An unset or
// unknown policy means PolicyDuplicate. events is only consulted under
// PolicyReplace.
func NewNotificationService(events EventLookup, timers *scheduler.Scheduler, notifier Notifier, cfg NotificationConfig, logger *slog.Logger) *NotificationService {
	if timers == nil {
		timers = scheduler.New(nil)
	}
	if !cfg.Policy.Valid() {
		cfg.Policy = PolicyDuplicate
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Snooze <= 0 {
		cfg.Snooze = DefaultSnoozeDuration
	}
	return &NotificationService{
		events:   events,
		timers:   timers,
		notifier: notifier,
		policy:   cfg.Policy,
		location: cfg.Location,
		snooze:   cfg.Snooze,
		logger:   defaultLogger(logger),
		fired:    make([]FiredNotification, 0),
	}
}

func (s *NotificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "NotificationService", operation, attrs...)
}

// Policy reports the active rescheduling policy.
func (s *NotificationService) Policy() ReschedulePolicy {
	return s.policy
}

// EventCreated arms the notification for a new event.
func (s *NotificationService) EventCreated(ctx context.Context, event Event) {
	s.schedule(ctx, event)
}

// EventUpdated re-arms the notification for a changed event. Under
// PolicyDuplicate the earlier notification stays armed and the new one
// carries only the values present in patch.
func (s *NotificationService) EventUpdated(ctx context.Context, event Event, patch Patch) {
	if s.policy == PolicyDuplicate {
		s.schedule(ctx, patch.snapshot(event.ID))
		return
	}
	s.schedule(ctx, event)
}

// EventDeleted drops fired records for id and, under PolicyReplace, disarms
// anything still pending for it.
func (s *NotificationService) EventDeleted(ctx context.Context, id string) {
	removed := s.removeFired(id)

	cancelled := 0
	if s.policy == PolicyReplace {
		cancelled = s.timers.Cancel(id) + s.timers.Cancel(snoozeTagPrefix+id)
	}

	s.loggerWith(ctx, "EventDeleted", "event_id", id).DebugContext(ctx, "notifications cleared",
		"fired_removed", removed,
		"timers_cancelled", cancelled,
	)
}

func (s *NotificationService) schedule(ctx context.Context, event Event) {
	logger := s.loggerWith(ctx, "Schedule", "event_id", event.ID, "policy", string(s.policy))

	at, ok := eventInstant(event.Date, event.Time, s.location)
	if !ok {
		if s.policy == PolicyReplace {
			s.timers.Cancel(event.ID)
		}
		logger.DebugContext(ctx, "event has no usable date and time; nothing armed")
		return
	}

	var armed bool
	if s.policy == PolicyDuplicate {
		snapshot := event
		_, armed = s.timers.Schedule(event.ID, at, func() { s.fireSnapshot(snapshot) })
	} else {
		id := event.ID
		_, armed = s.timers.Replace(event.ID, at, func() { s.fireCurrent(id) })
	}

	if !armed {
		logger.DebugContext(ctx, "event is not in the future; nothing armed", "fire_at", at)
		return
	}
	logger.InfoContext(ctx, "notification armed", "fire_at", at)
}

func (s *NotificationService) fireSnapshot(event Event) {
	s.deliver("Fire", Payload{Title: event.Title, Body: event.Description, Tag: event.ID}, true)
}

func (s *NotificationService) fireCurrent(id string) {
	ctx := s.fireContext()
	if s.events == nil {
		s.loggerWith(ctx, "Fire", "event_id", id).WarnContext(ctx, "no event lookup configured; notification dropped")
		return
	}

	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		logger := s.loggerWith(ctx, "Fire", "event_id", id)
		if errors.Is(mapEventRepoError(err), ErrNotFound) {
			logger.DebugContext(ctx, "event no longer exists; notification dropped")
			return
		}
		logger.ErrorContext(ctx, "failed to resolve event", "error", err, "error_kind", ErrorKind(err))
		return
	}
	s.deliver("Fire", Payload{Title: event.Title, Body: event.Description, Tag: event.ID}, true)
}

func (s *NotificationService) deliver(operation string, payload Payload, record bool) {
	ctx := s.fireContext()
	logger := s.loggerWith(ctx, operation, "tag", payload.Tag)

	if s.notifier == nil || !s.notifier.CanNotify(ctx) {
		logger.DebugContext(ctx, "notification permission not granted; notification dropped")
		return
	}

	if err := s.notifier.Notify(ctx, payload); err != nil {
		logger.ErrorContext(ctx, "failed to surface notification", "error", err, "error_kind", ErrorKind(err))
		return
	}

	if record {
		s.recordFired(FiredNotification{ID: payload.Tag, Title: payload.Title, Time: s.timers.Now()})
	}
	logger.InfoContext(ctx, "notification surfaced", "title", payload.Title)
}

func (s *NotificationService) fireContext() context.Context {
	return logging.ContextWithLogger(context.Background(), s.logger)
}

// Snooze arms a reminder for a fired notification after the snooze
// duration. The fired record is left as is. It returns the reminder's due
// instant.
func (s *NotificationService) Snooze(ctx context.Context, id string) (time.Time, error) {
	logger := s.loggerWith(ctx, "Snooze", "notification_id", id)

	fired, ok := s.findFired(id)
	if !ok {
		logger.WarnContext(ctx, "snooze requested for unknown notification", "error_kind", ErrorKind(ErrNotFound))
		return time.Time{}, ErrNotFound
	}

	at := s.timers.Now().Add(s.snooze)
	payload := Payload{
		Title: "Reminder: " + fired.Title,
		Body:  snoozeBody,
		Tag:   snoozeTagPrefix + fired.ID,
	}
	if _, armed := s.timers.Schedule(payload.Tag, at, func() { s.deliver("SnoozeFire", payload, false) }); !armed {
		return time.Time{}, fmt.Errorf("snooze %s: scheduler closed", id)
	}

	logger.InfoContext(ctx, "notification snoozed", "fire_at", at)
	return at, nil
}

// Dismiss removes the fired record for id.
func (s *NotificationService) Dismiss(ctx context.Context, id string) error {
	if s.removeFired(id) == 0 {
		return ErrNotFound
	}
	s.loggerWith(ctx, "Dismiss", "notification_id", id).InfoContext(ctx, "notification dismissed")
	return nil
}

// Fired lists the fired notifications, oldest first.
func (s *NotificationService) Fired() []FiredNotification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]FiredNotification, len(s.fired))
	copy(out, s.fired)
	return out
}

// Pending lists armed notifications ordered by due time.
func (s *NotificationService) Pending() []scheduler.Entry {
	return s.timers.Pending()
}

// Prune drops fired records older than retention and returns how many were
// removed. A non-positive retention keeps everything.
func (s *NotificationService) Prune(ctx context.Context, retention time.Duration) int {
	if retention <= 0 {
		return 0
	}
	cutoff := s.timers.Now().Add(-retention)

	s.mu.Lock()
	kept := s.fired[:0]
	for _, n := range s.fired {
		if !n.Time.Before(cutoff) {
			kept = append(kept, n)
		}
	}
	removed := len(s.fired) - len(kept)
	s.fired = kept
	s.mu.Unlock()

	if removed > 0 {
		s.loggerWith(ctx, "Prune").InfoContext(ctx, "fired notifications pruned", "removed", removed, "cutoff", cutoff)
	}
	return removed
}

// recordFired appends n, replacing any earlier record with the same id.
func (s *NotificationService) recordFired(n FiredNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.fired {
		if existing.ID == n.ID {
			s.fired = append(s.fired[:i], s.fired[i+1:]...)
			break
		}
	}
	s.fired = append(s.fired, n)
}

func (s *NotificationService) findFired(id string) (FiredNotification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.fired {
		if n.ID == id {
			return n, true
		}
	}
	return FiredNotification{}, false
}

func (s *NotificationService) removeFired(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.fired[:0]
	for _, n := range s.fired {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	removed := len(s.fired) - len(kept)
	s.fired = kept
	return removed
}
