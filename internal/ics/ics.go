// Package ics converts events to and from iCalendar.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/event-calendar/internal/application"
)

const (
	productID = "-//event-calendar//EN"

	floatingLayout = "20060102T150405"
	dateOnlyLayout = "20060102"
	draftDate      = "2006-01-02"
	draftClock     = "15:04"
)

// Export writes events as a VCALENDAR with one VEVENT each. Event date and
// time are read in loc; stamp becomes every DTSTAMP.
func Export(w io.Writer, events []application.Event, loc *time.Location, stamp time.Time) error {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)

	for _, event := range events {
		ve := cal.AddEvent(event.ID)
		ve.SetDtStampTime(stamp)
		ve.SetSummary(event.Title)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}

		start, ok := startOf(event, loc)
		if !ok {
			continue
		}
		ve.SetStartAt(start)

		if event.NotificationsEnabled {
			alarm := ve.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger("PT0M")
			alarm.SetProperty(ical.ComponentPropertyDescription, event.Title)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("ics: write calendar: %w", err)
	}
	return nil
}

// Import parses every VEVENT in r into a draft. DTSTART is converted to
// loc unless it is a floating or date-only value, which is taken verbatim.
// VEVENTs without a usable DTSTART are skipped and counted.
func Import(r io.Reader, loc *time.Location) (drafts []application.Draft, skipped int, err error) {
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("ics: parse calendar: %w", err)
	}

	drafts = make([]application.Draft, 0)
	for _, ve := range cal.Events() {
		draft, convErr := draftFrom(ve, loc)
		if convErr != nil {
			skipped++
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts, skipped, nil
}

func draftFrom(ve *ical.VEvent, loc *time.Location) (application.Draft, error) {
	var draft application.Draft
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		draft.Title = unescape(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		draft.Description = unescape(p.Value)
	}

	prop := ve.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil || strings.TrimSpace(prop.Value) == "" {
		return draft, errors.New("missing DTSTART")
	}
	value := strings.TrimSpace(prop.Value)

	switch {
	case hasParam(prop, "TZID") || strings.HasSuffix(value, "Z"):
		start, err := ve.GetStartAt()
		if err != nil {
			return draft, fmt.Errorf("DTSTART %q: %w", value, err)
		}
		start = start.In(loc)
		draft.Date = start.Format(draftDate)
		draft.Time = start.Format(draftClock)
	case strings.Contains(value, "T"):
		start, err := time.Parse(floatingLayout, value)
		if err != nil {
			return draft, fmt.Errorf("DTSTART %q: %w", value, err)
		}
		draft.Date = start.Format(draftDate)
		draft.Time = start.Format(draftClock)
	default:
		day, err := time.Parse(dateOnlyLayout, value)
		if err != nil {
			return draft, fmt.Errorf("DTSTART %q: %w", value, err)
		}
		draft.Date = day.Format(draftDate)
	}
	return draft, nil
}

func startOf(event application.Event, loc *time.Location) (time.Time, bool) {
	if event.Date == "" || event.Time == "" {
		return time.Time{}, false
	}
	start, err := time.ParseInLocation(draftDate+" "+draftClock, event.Date+" "+event.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}

func hasParam(prop *ical.IANAProperty, name string) bool {
	if prop.ICalParameters == nil {
		return false
	}
	values, ok := prop.ICalParameters[name]
	return ok && len(values) > 0
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescape(value string) string {
	return textUnescaper.Replace(value)
}
