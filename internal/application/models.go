package application

import "time"

// Attachment is an opaque file handle carried with an event. Nothing reads it.
type Attachment struct {
	Name string
}

// Event is a committed calendar entry.
type Event struct {
	ID                   string
	Title                string
	Description          string
	Date                 string
	Time                 string
	Attachments          []Attachment
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Draft is the in-progress form data for an event being created or edited.
// A non-empty ID selects update on submit.
type Draft struct {
	ID          string
	Title       string
	Description string
	Date        string
	Time        string
	Attachments []Attachment
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Attachments *[]Attachment
}

// FiredNotification records a notification that was actually surfaced.
type FiredNotification struct {
	ID    string
	Title string
	Time  time.Time
}

// Payload is handed to a Notifier when a notification is surfaced.
type Payload struct {
	Title string
	Body  string
	Tag   string
}

// ReschedulePolicy selects what happens to an armed notification when its
// event changes.
type ReschedulePolicy string

const (
	// PolicyReplace cancels the armed notification before re-arming and reads
	// the event's current data when the notification fires.
	PolicyReplace ReschedulePolicy = "replace"
	// PolicyDuplicate keeps earlier notifications armed; each fires with the
	// values captured when it was scheduled.
	PolicyDuplicate ReschedulePolicy = "duplicate"
)

// Valid reports whether p names a known policy.
func (p ReschedulePolicy) Valid() bool {
	return p == PolicyReplace || p == PolicyDuplicate
}

// MonthGrid is the day-by-day layout of one calendar month.
type MonthGrid struct {
	Year     int
	Month    time.Month
	Weekdays []string
	// Offset is the weekday index of day 1, Sunday being 0.
	Offset int
	Days   []GridDay
}

// GridDay lists the events that fall on one day of a MonthGrid.
type GridDay struct {
	Day    int
	Date   string
	Events []Event
}

func (p Patch) apply(event Event) Event {
	if p.Title != nil {
		event.Title = *p.Title
	}
	if p.Description != nil {
		event.Description = *p.Description
	}
	if p.Date != nil {
		event.Date = *p.Date
	}
	if p.Time != nil {
		event.Time = *p.Time
	}
	if p.Attachments != nil {
		event.Attachments = cloneAttachments(*p.Attachments)
	}
	return event
}

// snapshot builds the event values a patch alone describes.
func (p Patch) snapshot(id string) Event {
	return p.apply(Event{ID: id, NotificationsEnabled: true})
}

// PatchFromDraft converts a full draft into a patch that overwrites every
// editable field.
func PatchFromDraft(d Draft) Patch {
	attachments := cloneAttachments(d.Attachments)
	return Patch{
		Title:       &d.Title,
		Description: &d.Description,
		Date:        &d.Date,
		Time:        &d.Time,
		Attachments: &attachments,
	}
}

// DraftFromEvent returns a draft pre-filled with an existing event.
func DraftFromEvent(e Event) Draft {
	return Draft{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Attachments: cloneAttachments(e.Attachments),
	}
}

func cloneAttachments(in []Attachment) []Attachment {
	if in == nil {
		return nil
	}
	out := make([]Attachment, len(in))
	copy(out, in)
	return out
}
