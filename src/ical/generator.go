// The `ical` package serializes normalized event records into iCalendar
// text.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
//
// # Notes:
// - Write-only: there is no iCalendar parser here.
// - All timestamps are emitted in basic UTC form (`YYYYMMDDTHHMMSSZ`);
//   date-only values use `VALUE=DATE` with `YYYYMMDD`.
// - An event without an explicit end gets one derived for it: start + 2
//   hours when it has a start time, the following calendar day when it is
//   all-day.
// - Every VEVENT gets a fresh random UID per render. Output is therefore
//   not byte-stable across calls, callers should compare structure, not
//   bytes.
package ical

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"icsgen/src/event"

	"github.com/google/uuid"
)

const defaultDurationHours = 2

// Generator renders event records into a single VCALENDAR document. It
// holds calendar-level metadata only and never mutates the records it
// renders.
type Generator struct {
	calendarName string
	timezone     string
	prodID       string
}

// NewGenerator creates a generator for one target calendar.
//
// The timezone label is carried as metadata only: timestamps are always
// emitted with a trailing UTC designator, and the X-WR-TIMEZONE header is a
// pinned display string. Previously published calendars rely on both.
func NewGenerator(calendarName string, timezone string) *Generator {
	if calendarName == "" {
		calendarName = "Generated Calendar"
	}
	if timezone == "" {
		timezone = "UTC"
	}
	return &Generator{
		calendarName: calendarName,
		timezone:     timezone,
		prodID:       "-//ICS Calendar Utils//Event Calendar//EN",
	}
}

func (g *Generator) CalendarName() string {
	return g.calendarName
}

func (g *Generator) Timezone() string {
	return g.timezone
}

// Generate renders the records into iCalendar text, one VEVENT per record
// in input order, CRLF line endings with a trailing CRLF. When path is
// non-empty the exact rendered text is also written there as UTF-8; a
// write failure is returned, not swallowed.
func (g *Generator) Generate(events []event.Event, path string) (string, error) {
	var sb strings.Builder

	g.writeHeader(&sb)
	for _, ev := range events {
		g.writeEvent(&sb, ev)
	}
	sb.WriteString("END:VCALENDAR\r\n")

	content := sb.String()
	if path != "" {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("can't write calendar to %s: %w", path, err)
		}
	}
	return content, nil
}

func (g *Generator) writeHeader(sb *strings.Builder) {
	sb.WriteString("BEGIN:VCALENDAR\r\n")
	sb.WriteString("VERSION:2.0\r\n")
	sb.WriteString("PRODID:" + g.prodID + "\r\n")
	sb.WriteString("X-WR-CALNAME:" + g.calendarName + "\r\n")
	// pinned display string, independent of the configured timezone label
	sb.WriteString("X-WR-TIMEZONE:Europe/London\r\n")
	sb.WriteString("CALSCALE:GREGORIAN\r\n")
	sb.WriteString("METHOD:PUBLISH\r\n")
}

func (g *Generator) writeEvent(sb *strings.Builder, ev event.Event) {
	sb.WriteString("BEGIN:VEVENT\r\n")
	sb.WriteString("UID:" + uuid.NewString() + "\r\n")
	sb.WriteString("DTSTAMP:" + time.Now().UTC().Format("20060102T150405Z") + "\r\n")

	switch {
	case ev.StartDate != "" && ev.StartTime != "":
		sb.WriteString("DTSTART:" + combineDateTime(ev.StartDate, ev.StartTime) + "\r\n")
	case ev.StartDate != "":
		sb.WriteString("DTSTART;VALUE=DATE:" + compactDate(ev.StartDate) + "\r\n")
	}

	switch {
	case ev.EndDate != "" && ev.EndTime != "":
		sb.WriteString("DTEND:" + combineDateTime(ev.EndDate, ev.EndTime) + "\r\n")
	case ev.StartDate != "" && ev.EndDate == "":
		if ev.StartTime != "" {
			sb.WriteString("DTEND:" + addHours(ev.StartDate, ev.StartTime, defaultDurationHours) + "\r\n")
		} else {
			sb.WriteString("DTEND;VALUE=DATE:" + compactDate(nextDay(ev.StartDate)) + "\r\n")
		}
	}

	if ev.Summary != "" {
		sb.WriteString("SUMMARY:" + EscapeText(ev.Summary) + "\r\n")
	}
	if ev.Description != "" {
		sb.WriteString("DESCRIPTION:" + EscapeText(ev.Description) + "\r\n")
	}
	if ev.Location != "" {
		sb.WriteString("LOCATION:" + EscapeText(ev.Location) + "\r\n")
	}
	if ev.URL != "" {
		sb.WriteString("URL:" + ev.URL + "\r\n")
	}
	if len(ev.Categories) > 0 {
		sb.WriteString("CATEGORIES:" + strings.Join(ev.Categories, ",") + "\r\n")
	}

	sb.WriteString("END:VEVENT\r\n")
}

// "2024-12-20" + "14:00" -> "20241220T140000Z"
func combineDateTime(date string, clock string) string {
	return compactDate(date) + "T" + strings.ReplaceAll(clock, ":", "") + "00Z"
}

func compactDate(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

func addHours(date string, clock string, hours int) string {
	start, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Now().UTC().Format("20060102T150405Z")
	}
	return start.Add(time.Duration(hours) * time.Hour).Format("20060102T150405Z")
}

func nextDay(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.AddDate(0, 0, 1).Format("2006-01-02")
}

// EscapeText escapes a text value for an iCalendar content line. Backslash
// doubling must come first so the backslashes introduced by the later
// replacements survive untouched.
func EscapeText(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, ";", `\;`)
	text = strings.ReplaceAll(text, ",", `\,`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", "")
	return text
}

// Validate collects per-record issues: missing summary, missing or
// malformed start date, malformed start time. One combined message per
// offending record, 1-based positions. A whitespace-only summary counts as
// present.
func (g *Generator) Validate(events []event.Event) []string {
	var errors []string
	for i, ev := range events {
		var issues []string

		if ev.Summary == "" {
			issues = append(issues, "Missing summary/title")
		}
		if ev.StartDate == "" {
			issues = append(issues, "Missing start date")
		} else if _, err := time.Parse("2006-01-02", ev.StartDate); err != nil {
			issues = append(issues, fmt.Sprintf("Invalid date format: %s", ev.StartDate))
		}
		if ev.StartTime != "" {
			if _, err := time.Parse("15:04", ev.StartTime); err != nil {
				issues = append(issues, fmt.Sprintf("Invalid time format: %s", ev.StartTime))
			}
		}

		if len(issues) > 0 {
			errors = append(errors, fmt.Sprintf("Event %d: %s", i+1, strings.Join(issues, "; ")))
		}
	}
	return errors
}

// DateRange is the earliest/latest start date across a record set, empty
// when no record has a syntactically valid start date.
type DateRange struct {
	Earliest string
	Latest   string
}

// Stats is a read-only aggregate over a record set, recomputed on demand.
// EventsWithTime and AllDayEvents are mutually exclusive and sum to
// TotalEvents.
type Stats struct {
	TotalEvents        int
	EventsWithTime     int
	AllDayEvents       int
	EventsWithLocation int
	EventsWithURL      int
	DateRange          DateRange
}

func (g *Generator) Stats(events []event.Event) Stats {
	stats := Stats{TotalEvents: len(events)}

	var dates []string
	for _, ev := range events {
		if ev.StartTime != "" {
			stats.EventsWithTime++
		} else {
			stats.AllDayEvents++
		}
		if ev.Location != "" {
			stats.EventsWithLocation++
		}
		if ev.URL != "" {
			stats.EventsWithURL++
		}
		if ev.StartDate != "" {
			if _, err := time.Parse("2006-01-02", ev.StartDate); err == nil {
				dates = append(dates, ev.StartDate)
			}
		}
	}

	// ISO date strings sort chronologically
	if len(dates) > 0 {
		sort.Strings(dates)
		stats.DateRange.Earliest = dates[0]
		stats.DateRange.Latest = dates[len(dates)-1]
	}
	return stats
}
