package application

import (
	"testing"
	"time"
)

func TestBuildMonthGrid(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "a", Title: "Standup", Date: "2024-02-29"},
		{ID: "b", Title: "Retro", Date: "2024-02-01"},
		{ID: "c", Title: "Planning", Date: "2024-02-29"},
		{ID: "d", Title: "Elsewhere", Date: "2024-03-01"},
	}

	grid := BuildMonthGrid(2024, time.February, events)

	if len(grid.Days) != 29 {
		t.Fatalf("expected 29 days in February 2024, got %d", len(grid.Days))
	}
	// 2024-02-01 is a Thursday.
	if grid.Offset != 4 {
		t.Fatalf("expected offset 4, got %d", grid.Offset)
	}
	if len(grid.Weekdays) != 7 || grid.Weekdays[0] != "Sun" || grid.Weekdays[6] != "Sat" {
		t.Fatalf("unexpected weekday headers %v", grid.Weekdays)
	}
	if grid.Days[0].Date != "2024-02-01" || len(grid.Days[0].Events) != 1 || grid.Days[0].Events[0].ID != "b" {
		t.Fatalf("unexpected first day %+v", grid.Days[0])
	}

	last := grid.Days[28]
	if last.Day != 29 || len(last.Events) != 2 || last.Events[0].ID != "a" || last.Events[1].ID != "c" {
		t.Fatalf("unexpected last day %+v", last)
	}
	for _, day := range grid.Days[1:28] {
		if len(day.Events) != 0 {
			t.Fatalf("expected no events on %s", day.Date)
		}
	}
}

func TestBuildMonthGridMonthLengths(t *testing.T) {
	t.Parallel()

	cases := map[time.Month]int{
		time.January:  31,
		time.February: 28,
		time.April:    30,
		time.December: 31,
	}
	for month, want := range cases {
		if got := len(BuildMonthGrid(2023, month, nil).Days); got != want {
			t.Fatalf("%s 2023: expected %d days, got %d", month, want, got)
		}
	}
}

func TestSearchEvents(t *testing.T) {
	t.Parallel()

	events := []Event{
		{ID: "1", Title: "Team Standup", Description: "daily sync", Date: "2024-01-10"},
		{ID: "2", Title: "Lunch", Description: "with the STANDUP crew", Date: "2024-01-11"},
		{ID: "3", Title: "Dentist", Description: "", Date: "2024-02-10"},
	}

	cases := []struct {
		query string
		want  []string
	}{
		{query: "", want: nil},
		{query: "standup", want: []string{"1", "2"}},
		{query: "SYNC", want: []string{"1"}},
		{query: "2024-01", want: []string{"1", "2"}},
		{query: "-10", want: []string{"1", "3"}},
		{query: "nothing", want: nil},
	}

	for _, tc := range cases {
		got := SearchEvents(events, tc.query)
		if got == nil {
			t.Fatalf("query %q: expected non-nil result", tc.query)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("query %q: expected %v, got %+v", tc.query, tc.want, got)
		}
		for i, id := range tc.want {
			if got[i].ID != id {
				t.Fatalf("query %q: expected %v, got %+v", tc.query, tc.want, got)
			}
		}
	}
}
