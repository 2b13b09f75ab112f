package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/event-calendar/internal/application"
)

var tokyo = time.FixedZone("JST", 9*60*60)

func TestExportWritesOneVEventPerEvent(t *testing.T) {
	events := []application.Event{
		{ID: "event-001", Title: "Standup", Description: "daily sync", Date: "2024-01-10", Time: "09:00", NotificationsEnabled: true},
		{ID: "event-002", Title: "Undated"},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, events, tokyo, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	out := buf.String()

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:-//event-calendar//EN")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:event-001")
	assert.Contains(t, out, "SUMMARY:Standup")
	assert.Contains(t, out, "DTSTART:20240110T000000Z", "09:00 JST is midnight UTC")
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VALARM"))
	assert.Contains(t, out, "ACTION:DISPLAY")
}

func TestExportImportRoundTrip(t *testing.T) {
	events := []application.Event{
		{ID: "event-001", Title: "Standup", Description: "daily sync", Date: "2024-01-10", Time: "09:00", NotificationsEnabled: true},
		{ID: "event-002", Title: "Retro", Date: "2024-01-12", Time: "17:30"},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, events, tokyo, time.Now()))

	drafts, skipped, err := Import(&buf, tokyo)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, drafts, 2)

	assert.Equal(t, application.Draft{Title: "Standup", Description: "daily sync", Date: "2024-01-10", Time: "09:00"}, drafts[0])
	assert.Equal(t, application.Draft{Title: "Retro", Date: "2024-01-12", Time: "17:30"}, drafts[1])
}

func TestImportFloatingAndDateOnlyValues(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:floating",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Dentist",
		"DTSTART:20240215T143000",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:all-day",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Holiday",
		"DTSTART;VALUE=DATE:20240301",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:no-start",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Someday",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	drafts, skipped, err := Import(strings.NewReader(body), tokyo)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, drafts, 2)

	assert.Equal(t, application.Draft{Title: "Dentist", Date: "2024-02-15", Time: "14:30"}, drafts[0])
	assert.Equal(t, application.Draft{Title: "Holiday", Date: "2024-03-01"}, drafts[1])
}
