package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/example/event-calendar/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var ctxBuf, baseBuf bytes.Buffer
	ctxLogger := slog.New(slog.NewJSONHandler(&ctxBuf, nil))
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))

	ctx := logging.ContextWithLogger(context.Background(), ctxLogger)
	serviceLogger(ctx, base, "EventService", "Create", "event_id", "event-001").Info("event created")

	if baseBuf.Len() != 0 {
		t.Fatalf("expected base logger to stay silent")
	}

	var entry map[string]any
	if err := json.Unmarshal(ctxBuf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["service"] != "EventService" || entry["operation"] != "Create" || entry["event_id"] != "event-001" {
		t.Fatalf("unexpected log attributes: %v", entry)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                    nil,
		"not_found":           fmt.Errorf("lookup: %w", ErrNotFound),
		"already_exists":      ErrAlreadyExists,
		"invalid_credentials": ErrInvalidCredentials,
		"validation":          &ValidationError{FieldErrors: map[string]string{"title": "title is required"}},
		"unexpected":          io.EOF,
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
