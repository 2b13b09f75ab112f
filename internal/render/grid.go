// Package render draws calendar views for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/event-calendar/internal/application"
)

const (
	cellWidth      = 14
	eventsPerCell  = 2
	daysPerWeek    = 7
	truncateMarker = "…"
)

var (
	accent = lipgloss.Color("#D97706")
	dim    = lipgloss.Color("#6B7280")
	fg     = lipgloss.Color("#E8E6E3")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center).
			Width((cellWidth + 2) * daysPerWeek)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(fg).
			Align(lipgloss.Center).
			Width(cellWidth + 2)

	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(dim).
			Width(cellWidth).
			Height(eventsPerCell + 1)

	dayStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	eventStyle = lipgloss.NewStyle().Foreground(fg)
	moreStyle  = lipgloss.NewStyle().Foreground(dim)
)

// MonthGrid renders grid as a bordered week-by-week table.
func MonthGrid(grid application.MonthGrid) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", grid.Month, grid.Year)))
	b.WriteString("\n")

	headers := make([]string, 0, len(grid.Weekdays))
	for _, name := range grid.Weekdays {
		headers = append(headers, headerStyle.Render(name))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...))
	b.WriteString("\n")

	cells := make([]string, 0, grid.Offset+len(grid.Days))
	for i := 0; i < grid.Offset; i++ {
		cells = append(cells, cellStyle.Render(""))
	}
	for _, day := range grid.Days {
		cells = append(cells, cellStyle.Render(dayCell(day)))
	}
	for len(cells)%daysPerWeek != 0 {
		cells = append(cells, cellStyle.Render(""))
	}

	weeks := make([]string, 0, len(cells)/daysPerWeek)
	for start := 0; start < len(cells); start += daysPerWeek {
		weeks = append(weeks, lipgloss.JoinHorizontal(lipgloss.Top, cells[start:start+daysPerWeek]...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, weeks...))
	b.WriteString("\n")
	return b.String()
}

func dayCell(day application.GridDay) string {
	lines := []string{dayStyle.Render(fmt.Sprintf("%2d", day.Day))}
	for i, event := range day.Events {
		if i == eventsPerCell {
			lines[len(lines)-1] = moreStyle.Render(fmt.Sprintf("+%d more", len(day.Events)-eventsPerCell+1))
			break
		}
		lines = append(lines, eventStyle.Render(truncate(strings.TrimSpace(event.Time+" "+event.Title), cellWidth)))
	}
	return strings.Join(lines, "\n")
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width-1]) + truncateMarker
}
