// The `event` package normalizes loosely-structured event records into the
// canonical shape the `ical` package serializes.
//
// # Notes:
// - Raw records are schemaless `map[string]any` values. A configurable
//   mapping table decides which source fields land in which canonical
//   fields; later mappings override earlier ones for the same source field.
// - Free-text dates ("Saturday 20 December 2024", "16/17 May 2025",
//   "Dec 20, 2024") and times ("2:30pm", "15:30 & 17:45", "noon") are
//   parsed heuristically into `YYYY-MM-DD` and 24-hour `HH:MM`.
// - A record with an unparseable start date is dropped; a record with an
//   unparseable time merely loses that time field and becomes all-day.
//   Diagnostics for both are collected per Process call, not returned as
//   errors.
//
// # Example usage:
//
//	processor := event.NewProcessor()
//	processor.AddMapping(map[string]string{"event_name": "summary"})
//	events := processor.Process(rawEvents)
//	for _, msg := range processor.Errors() {
//		slog.Warn("event dropped or trimmed", "detail", msg)
//	}
package event

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timeTokenRe = regexp.MustCompile(`\b\d{1,2}(?::\d{2})?\s*(?:am|pm)?\b`)
	tbcNoteRe   = regexp.MustCompile(`\s*\(tbc\)`)

	dayNameRe      = regexp.MustCompile(`\b(mon|tue|wed|thu|fri|sat|sun|monday|tuesday|wednesday|thursday|friday|saturday|sunday|weekend|wknd)\b`)
	ordinalRe      = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)
	dayRangeRe     = regexp.MustCompile(`(\d{1,2})\s*/\s*\d{1,2}(\s+[a-z]+\s+\d{2,4})`)
	monthDayYearRe = regexp.MustCompile(`^([a-z]+)\s+(\d{1,2}),\s+(\d{4})`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
)

// Date layouts tried in order, first match wins. Day-first layouts come
// before the numeric US month-first fallback, so "16 05 2025" reads as
// 16 May while "05 16 2025" still parses.
var dateLayouts = []string{
	"2006-1-2",
	"2 January 2006",
	"2 Jan 2006",
	"2 January 06",
	"2 Jan 06",
	"2 1 2006",
	"2 1 06",
	"2006 1 2",
	"Jan 2 2006",
	"January 2 2006",
	"1 2 2006",
}

// Processor reshapes raw records via its mapping table and normalizes their
// date/time fields. The mapping table persists across Process calls; the
// diagnostics log is overwritten, not appended, on each call.
type Processor struct {
	mappings *FieldMap
	errorLog []string
}

// The seed mapping table: source field names seen in the wild mapped to
// canonical field names.
func DefaultMappings() map[string]string {
	return map[string]string{
		"fixture":    FieldSummary,
		"date":       FieldStartDate,
		"start_time": FieldStartTime,
		"end_time":   FieldEndTime,
		"crowd":      FieldDescription,
		"venue":      FieldLocation,
	}
}

func NewProcessor() *Processor {
	mappings := NewFieldMap()
	mappings.Merge(DefaultMappings())
	return &Processor{mappings: mappings}
}

// Merge source→canonical mappings into the table, overwriting on collision.
func (p *Processor) AddMapping(mappings map[string]string) {
	p.mappings.Merge(mappings)
}

// NormalizeTime parses a free-text time string into 24-hour "HH:MM".
//
// Empty input and the literal "tbc" mean "no time" and return "" without
// logging. When the text mentions several times ("15:30 & 17:45"), the
// earliest valid one wins. A bare token borrows its meridian from the last
// explicit am/pm marker in the text. Returns "" when nothing parses.
func (p *Processor) NormalizeTime(raw string) string {
	if raw == "" || strings.EqualFold(raw, "tbc") {
		return ""
	}

	s := strings.ToLower(raw)
	s = strings.ReplaceAll(s, "noon", "12:00pm")
	s = tbcNoteRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ".", ":")
	s = strings.ReplaceAll(s, " and ", " & ")

	tokens := timeTokenRe.FindAllString(s, -1)
	if len(tokens) == 0 {
		p.errorLog = append(p.errorLog, fmt.Sprintf("No valid time patterns found in: '%s'", raw))
		return ""
	}

	// bare tokens share the last explicit am/pm marker
	var shared string
	for i := len(tokens) - 1; i >= 0; i-- {
		if strings.Contains(tokens[i], "am") {
			shared = "am"
			break
		}
		if strings.Contains(tokens[i], "pm") {
			shared = "pm"
			break
		}
	}

	var earliest string
	for _, token := range tokens {
		clock, ok := parseClock(token, shared)
		if !ok {
			continue
		}
		if earliest == "" || clock < earliest {
			earliest = clock
		}
	}
	return earliest
}

// Parse a single candidate token ("3:30pm", "15:30", "7") into "HH:MM".
// An explicit meridian on the token overrides the shared one.
func parseClock(token string, sharedMeridian string) (string, bool) {
	token = strings.TrimSpace(token)
	meridian := sharedMeridian

	switch {
	case strings.Contains(token, "pm"):
		meridian = "pm"
		token = strings.TrimSpace(strings.Replace(token, "pm", "", 1))
	case strings.Contains(token, "am"):
		meridian = "am"
		token = strings.TrimSpace(strings.Replace(token, "am", "", 1))
	}

	var hour, minute int
	var err error
	if hourStr, minuteStr, found := strings.Cut(token, ":"); found {
		if hour, err = strconv.Atoi(hourStr); err != nil {
			return "", false
		}
		if minute, err = strconv.Atoi(minuteStr); err != nil {
			return "", false
		}
	} else {
		if hour, err = strconv.Atoi(token); err != nil {
			return "", false
		}
	}

	if meridian == "pm" && hour != 12 {
		hour += 12
	} else if meridian == "am" && hour == 12 {
		hour = 0
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// NormalizeDateRange parses a free-text date string into "YYYY-MM-DD".
//
// Day-of-week names, "weekend" markers and ordinal suffixes are stripped,
// separators are unified, and a slash day range ("16/17 May 2025") collapses
// to its first day. Two-digit years below 2000 are promoted by +2000.
// Returns "" when nothing parses.
func (p *Processor) NormalizeDateRange(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(raw)
	s = strings.TrimSpace(dayNameRe.ReplaceAllString(s, ""))
	s = ordinalRe.ReplaceAllString(s, "$1")
	s = dayRangeRe.ReplaceAllString(s, "$1$2")

	// "dec 20, 2024" reads month-first; rewrite it day-first before the
	// separator cleanup drops the comma
	if m := monthDayYearRe.FindStringSubmatch(s); m != nil {
		s = fmt.Sprintf("%s %s %s", m[2], m[1], m[3])
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	s = strings.NewReplacer("-", " ", "/", " ", ".", " ").Replace(s)
	s = strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if parsed.Year() < 2000 {
			parsed = parsed.AddDate(2000, 0, 0)
		}
		return parsed.Format("2006-01-02")
	}

	p.errorLog = append(p.errorLog, fmt.Sprintf("Failed to parse date: '%s'", raw))
	return ""
}

// Process normalizes a batch of raw records in order. Records that fail
// per-record processing are skipped without a placeholder; the diagnostics
// log from the previous call is discarded first.
func (p *Processor) Process(rawEvents []map[string]any) []Event {
	p.errorLog = p.errorLog[:0]

	processed := make([]Event, 0, len(rawEvents))
	for i, raw := range rawEvents {
		ev, ok, err := p.processSingle(raw)
		if err != nil {
			p.errorLog = append(p.errorLog, fmt.Sprintf("Error processing event %d: %s", i, err))
			continue
		}
		if !ok {
			slog.Debug("event dropped", "index", i)
			continue
		}
		processed = append(processed, ev)
	}
	return processed
}

// Apply the mapping table to one raw record. An unparseable start date
// disqualifies the whole record; an unparseable time only drops that field.
func (p *Processor) processSingle(raw map[string]any) (Event, bool, error) {
	var ev Event
	summarySet := false

	for _, source := range p.mappings.order {
		value, ok := raw[source]
		if !ok || value == nil {
			continue
		}

		switch p.mappings.targets[source] {
		case FieldStartDate:
			text, _ := value.(string)
			date := p.NormalizeDateRange(text)
			if date == "" {
				return Event{}, false, nil
			}
			ev.StartDate = date
		case FieldStartTime:
			clock, err := p.normalizeTimeValue(source, value)
			if err != nil {
				return Event{}, false, err
			}
			if clock == "" {
				continue
			}
			ev.StartTime = clock
		case FieldEndTime:
			clock, err := p.normalizeTimeValue(source, value)
			if err != nil {
				return Event{}, false, err
			}
			if clock == "" {
				continue
			}
			ev.EndTime = clock
		case FieldSummary:
			ev.Summary = asText(value)
			summarySet = true
		case FieldEndDate:
			ev.EndDate = asText(value)
		case FieldDescription:
			ev.Description = asText(value)
		case FieldLocation:
			ev.Location = asText(value)
		case FieldURL:
			ev.URL = asText(value)
		case FieldCategories:
			ev.Categories = asTextList(value)
		}
	}

	if !summarySet {
		if value, ok := raw["fixture"]; ok && value != nil {
			ev.Summary = asText(value)
		} else {
			ev.Summary = "Untitled Event"
		}
	}

	return ev, true, nil
}

func (p *Processor) normalizeTimeValue(source string, value any) (string, error) {
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected text, got %T", source, value)
	}
	return p.NormalizeTime(text), nil
}

// Errors returns a copy of the diagnostics accumulated by the most recent
// Process call.
func (p *Processor) Errors() []string {
	return append([]string(nil), p.errorLog...)
}
