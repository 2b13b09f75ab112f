package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/event-calendar/internal/application"
	"github.com/example/event-calendar/internal/notify"
)

const defaultStreamHeartbeat = 25 * time.Second

type notificationService interface {
	Fired() []application.FiredNotification
	Snooze(ctx context.Context, id string) (time.Time, error)
	Dismiss(ctx context.Context, id string) error
}

type permissionGate interface {
	State() notify.Permission
	Requested() bool
	Set(ctx context.Context, p notify.Permission)
}

type payloadStream interface {
	Subscribe() (<-chan application.Payload, func())
}

type NotificationHandler struct {
	service   notificationService
	gate      permissionGate
	stream    payloadStream
	heartbeat time.Duration
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service notificationService, gate permissionGate, stream payloadStream, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service:   service,
		gate:      gate,
		stream:    stream,
		heartbeat: defaultStreamHeartbeat,
		responder: newResponder(logger),
		logger:    defaultLogger(logger),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	fired := h.service.Fired()
	out := make([]notificationDTO, 0, len(fired))
	for _, n := range fired {
		out = append(out, notificationDTO{ID: n.ID, Title: n.Title, Time: n.Time.Format(time.RFC3339)})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listNotificationsResponse{Notifications: out})
}

func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := NotificationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidNotificationID)
		return
	}

	if err := h.service.Dismiss(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *NotificationHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := NotificationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidNotificationID)
		return
	}

	at, err := h.service.Snooze(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusAccepted, snoozeResponse{ID: id, FireAt: at.Format(time.RFC3339)})
}

func (h *NotificationHandler) GetPermission(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.gate == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.writePermission(r.Context(), w)
}

func (h *NotificationHandler) PutPermission(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.gate == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req permissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	permission, err := notify.ParsePermission(req.Permission)
	if err != nil || strings.TrimSpace(req.Permission) == "" {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"permission": "permission must be default, granted or denied"},
		})
		return
	}

	h.gate.Set(r.Context(), permission)
	h.writePermission(r.Context(), w)
}

func (h *NotificationHandler) writePermission(ctx context.Context, w http.ResponseWriter) {
	h.responder.writeJSON(ctx, w, http.StatusOK, permissionResponse{
		Permission: string(h.gate.State()),
		Requested:  h.gate.Requested(),
	})
}

// Stream relays surfaced payloads as server-sent events until the client
// goes away.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.stream == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	ctx := r.Context()
	logger := handlerLogger(ctx, h.logger, "NotificationHandler", "Stream")

	payloads, cancel := h.stream.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()
	logger.InfoContext(ctx, "notification stream opened")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "notification stream closed")
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case payload, open := <-payloads:
			if !open {
				logger.InfoContext(ctx, "notification stream ended by server")
				return
			}
			data, err := json.Marshal(payloadDTO{Title: payload.Title, Body: payload.Body, Tag: payload.Tag})
			if err != nil {
				logger.ErrorContext(ctx, "failed to encode payload", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: notification\nid: %s\ndata: %s\n\n", payload.Tag, data)
			flusher.Flush()
		}
	}
}

type notificationDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Time  string `json:"time"`
}

type listNotificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

type snoozeResponse struct {
	ID     string `json:"id"`
	FireAt string `json:"fire_at"`
}

type permissionRequest struct {
	Permission string `json:"permission"`
}

type permissionResponse struct {
	Permission string `json:"permission"`
	Requested  bool   `json:"requested"`
}

type payloadDTO struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}
