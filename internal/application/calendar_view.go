package application

import (
	"fmt"
	"strings"
	"time"
)

// WeekdayHeaders are the grid column labels, Sunday first.
var WeekdayHeaders = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// BuildMonthGrid enumerates days 1..daysInMonth and attaches the events whose
// date matches each day, keeping their relative order.
func BuildMonthGrid(year int, month time.Month, events []Event) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	grid := MonthGrid{
		Year:     year,
		Month:    month,
		Weekdays: append([]string(nil), WeekdayHeaders...),
		Offset:   int(first.Weekday()),
		Days:     make([]GridDay, 0, daysInMonth),
	}

	for day := 1; day <= daysInMonth; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
		matches := make([]Event, 0)
		for _, event := range events {
			if event.Date == date {
				matches = append(matches, event)
			}
		}
		grid.Days = append(grid.Days, GridDay{Day: day, Date: date, Events: matches})
	}
	return grid
}

// SearchEvents returns the events whose title or description contains query
// ignoring case, or whose date contains query verbatim.
func SearchEvents(events []Event, query string) []Event {
	results := make([]Event, 0)
	if query == "" {
		return results
	}

	needle := strings.ToLower(query)
	for _, event := range events {
		switch {
		case strings.Contains(strings.ToLower(event.Title), needle),
			strings.Contains(strings.ToLower(event.Description), needle),
			strings.Contains(event.Date, query):
			results = append(results, event)
		}
	}
	return results
}
