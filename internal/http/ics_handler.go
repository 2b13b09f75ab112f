package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/event-calendar/internal/application"
	"github.com/example/event-calendar/internal/ics"
)

const maxImportBytes = 4 << 20

type calendarStore interface {
	List(ctx context.Context) ([]application.Event, error)
	Submit(ctx context.Context, draft application.Draft) (application.Event, bool, error)
}

// ICSHandler serves the iCalendar export and import.
type ICSHandler struct {
	events    calendarStore
	location  *time.Location
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewICSHandler(events calendarStore, location *time.Location, now func() time.Time, logger *slog.Logger) *ICSHandler {
	if location == nil {
		location = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &ICSHandler{
		events:    events,
		location:  location,
		now:       now,
		responder: newResponder(logger),
		logger:    defaultLogger(logger),
	}
}

func (h *ICSHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.events == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.events.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := ics.Export(&buf, events, h.location, h.now()); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Import submits one draft per VEVENT in the request body. Drafts the form
// gate rejects, such as a VEVENT without SUMMARY or an all-day one, are
// counted as skipped.
func (h *ICSHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.events == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	drafts, skipped, err := ics.Import(http.MaxBytesReader(w, r.Body, maxImportBytes), h.location)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created := make([]application.Event, 0, len(drafts))
	for _, draft := range drafts {
		draft.ID = ""
		event, _, err := h.events.Submit(r.Context(), draft)
		if err != nil {
			var vErr *application.ValidationError
			if errors.As(err, &vErr) {
				skipped++
				continue
			}
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		created = append(created, event)
	}

	handlerLogger(r.Context(), h.logger, "ICSHandler", "Import").
		InfoContext(r.Context(), "calendar imported", "created", len(created), "skipped", skipped)

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, importResponse{
		Events:  toEventDTOs(created),
		Skipped: skipped,
	})
}

type importResponse struct {
	Events  []eventDTO `json:"events"`
	Skipped int        `json:"skipped"`
}
