package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/event-calendar/internal/application"
)

type eventService interface {
	List(ctx context.Context) ([]application.Event, error)
	Get(ctx context.Context, id string) (application.Event, error)
	Submit(ctx context.Context, draft application.Draft) (application.Event, bool, error)
	Update(ctx context.Context, id string, patch application.Patch) (application.Event, bool, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]application.Event, error)
	MonthGrid(ctx context.Context, month string) (application.MonthGrid, error)
}

type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.service.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

// Submit handles the event form: create, or update when the body has an id.
func (h *EventHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	draft := req.toDraft()
	event, stored, err := h.service.Submit(r.Context(), draft)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	switch {
	case !stored:
		handlerLogger(r.Context(), h.logger, "EventHandler", "Submit", "event_id", draft.ID).
			DebugContext(r.Context(), "submit ignored for unknown event")
		h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
	case draft.ID == "":
		h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEventDTO(event))
	default:
		h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
	}
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	event, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

// Update applies a partial update. An unknown id is answered with 204.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, found, err := h.service.Update(r.Context(), eventID, req.toPatch())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if !found {
		h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	if err := h.service.Delete(r.Context(), eventID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

func (h *EventHandler) MonthGrid(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	grid, err := h.service.MonthGrid(r.Context(), strings.TrimSpace(r.URL.Query().Get("month")))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMonthGridDTO(grid))
}

type attachmentDTO struct {
	Name string `json:"name"`
}

type eventRequest struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Attachments []attachmentDTO `json:"attachments"`
}

func (r eventRequest) toDraft() application.Draft {
	return application.Draft{
		ID:          strings.TrimSpace(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Date:        strings.TrimSpace(r.Date),
		Time:        strings.TrimSpace(r.Time),
		Attachments: fromAttachmentDTOs(r.Attachments),
	}
}

type patchRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
	Time        *string          `json:"time"`
	Attachments *[]attachmentDTO `json:"attachments"`
}

func (r patchRequest) toPatch() application.Patch {
	patch := application.Patch{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
	}
	if r.Attachments != nil {
		attachments := fromAttachmentDTOs(*r.Attachments)
		patch.Attachments = &attachments
	}
	return patch
}

type eventDTO struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	Date                 string          `json:"date"`
	Time                 string          `json:"time"`
	Attachments          []attachmentDTO `json:"attachments"`
	NotificationsEnabled bool            `json:"notifications_enabled"`
	CreatedAt            string          `json:"created_at,omitempty"`
	UpdatedAt            string          `json:"updated_at,omitempty"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type gridDayDTO struct {
	Day    int        `json:"day"`
	Date   string     `json:"date"`
	Events []eventDTO `json:"events"`
}

type monthGridDTO struct {
	Year     int          `json:"year"`
	Month    int          `json:"month"`
	Label    string       `json:"label"`
	Weekdays []string     `json:"weekdays"`
	Offset   int          `json:"offset"`
	Days     []gridDayDTO `json:"days"`
}

func toEventDTO(event application.Event) eventDTO {
	attachments := make([]attachmentDTO, 0, len(event.Attachments))
	for _, a := range event.Attachments {
		attachments = append(attachments, attachmentDTO{Name: a.Name})
	}
	return eventDTO{
		ID:                   event.ID,
		Title:                event.Title,
		Description:          event.Description,
		Date:                 event.Date,
		Time:                 event.Time,
		Attachments:          attachments,
		NotificationsEnabled: event.NotificationsEnabled,
		CreatedAt:            formatTimestamp(event.CreatedAt),
		UpdatedAt:            formatTimestamp(event.UpdatedAt),
	}
}

func toEventDTOs(events []application.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}

func toMonthGridDTO(grid application.MonthGrid) monthGridDTO {
	days := make([]gridDayDTO, 0, len(grid.Days))
	for _, day := range grid.Days {
		days = append(days, gridDayDTO{Day: day.Day, Date: day.Date, Events: toEventDTOs(day.Events)})
	}
	return monthGridDTO{
		Year:     grid.Year,
		Month:    int(grid.Month),
		Label:    grid.Month.String(),
		Weekdays: grid.Weekdays,
		Offset:   grid.Offset,
		Days:     days,
	}
}

func fromAttachmentDTOs(in []attachmentDTO) []application.Attachment {
	if in == nil {
		return nil
	}
	out := make([]application.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, application.Attachment{Name: a.Name})
	}
	return out
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
