package http

import (
	"context"
	"log/slog"

	"github.com/example/event-calendar/internal/logging"
)

type contextKey string

const (
	eventIDContextKey        contextKey = "event_id"
	notificationIDContextKey contextKey = "notification_id"
)

// ContextWithEventID injects the event identifier resolved from the request path.
func ContextWithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDContextKey, eventID)
}

// EventIDFromContext extracts an event identifier previously associated with the context.
func EventIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(eventIDContextKey).(string)
	return id, ok
}

// ContextWithNotificationID injects the notification identifier resolved from the request path.
func ContextWithNotificationID(ctx context.Context, notificationID string) context.Context {
	return context.WithValue(ctx, notificationIDContextKey, notificationID)
}

// NotificationIDFromContext extracts a notification identifier previously associated with the context.
func NotificationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(notificationIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches the request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
