// Package http provides HTTP handlers and middleware for the calendar API.
//
// The router exposes the following endpoints:
//   - GET /events, POST /events: list events, or submit the event form. A body
//     carrying "id" updates that event; otherwise a new event is created (201).
//     Submitting an unknown id changes nothing and returns 204.
//   - GET /events/{id}, PUT /events/{id}, DELETE /events/{id}: fetch, patch and
//     delete a single event. PUT takes any subset of the `eventRequest` fields
//     and returns 204 for an unknown id; DELETE always returns 204.
//   - GET /search?q=: events matching the query. An empty query yields [].
//   - GET /calendar?month=YYYY-MM: the month grid, the current month by default.
//   - GET /calendar.ics, POST /calendar.ics: iCalendar export and import.
//   - GET /notifications: fired notifications. DELETE /notifications/{id}
//     dismisses one and POST /notifications/{id}/snooze re-reminds later.
//   - GET, PUT /notifications/permission: read or resolve the notification
//     permission ("default", "granted" or "denied").
//   - GET /notifications/stream: server-sent events, one "notification" event
//     per surfaced payload.
//   - GET /health: liveness check, never behind authentication.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
