package persistence

import "time"

// Event represents a calendar entry stored in persistence.
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

// Attachment is an opaque file handle carried alongside an event.
type Attachment struct {
	Name string
}
