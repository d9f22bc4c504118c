package event_test

import (
	"strings"
	"testing"

	"icsgen/src/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	processor := event.NewProcessor()

	cases := []struct {
		in   string
		want string
	}{
		{"2:30pm", "14:30"},
		{"14:30", "14:30"},
		{"2pm", "14:00"},
		{"noon", "12:00"},
		{"noon.", "12:00"},
		{"12:00pm", "12:00"},
		{"12:00am", "00:00"},
		{"3:45AM", "03:45"},
		{"11:59PM", "23:59"},
		{"1pm", "13:00"},
		{"12pm", "12:00"},
		{"7.30pm", "19:30"},
		{"3pm (TBC)", "15:00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, processor.NormalizeTime(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeTimeMultiple(t *testing.T) {
	processor := event.NewProcessor()

	// the earliest mentioned time wins, not the first positionally
	cases := []struct {
		in   string
		want string
	}{
		{"2:30pm & 4:00pm", "14:30"},
		{"15:30 & 17:45", "15:30"},
		{"3pm and 5pm", "15:00"},
		{"5pm and 3pm", "15:00"},
		// bare token borrows the last explicit meridian
		{"3 & 5pm", "15:00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, processor.NormalizeTime(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeTimeInvalid(t *testing.T) {
	for _, in := range []string{"", "TBC", "tbc", "invalid", "25:00", "12:60", "midnight", "13pm"} {
		processor := event.NewProcessor()
		assert.Empty(t, processor.NormalizeTime(in), "input %q", in)
	}
}

func TestNormalizeTimeLogging(t *testing.T) {
	// no digit pattern at all: logged
	processor := event.NewProcessor()
	assert.Empty(t, processor.NormalizeTime("invalid-time"))
	errors := processor.Errors()
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "No valid time patterns found")
	assert.Contains(t, errors[0], "invalid-time")

	// "no time" sentinel: not logged
	processor = event.NewProcessor()
	assert.Empty(t, processor.NormalizeTime("tbc"))
	assert.Empty(t, processor.Errors())

	// pattern matched but out of range: dropped silently
	processor = event.NewProcessor()
	assert.Empty(t, processor.NormalizeTime("12:60"))
	assert.Empty(t, processor.Errors())
}

func TestNormalizeDateRange(t *testing.T) {
	processor := event.NewProcessor()

	cases := []struct {
		in   string
		want string
	}{
		{"2024-12-20", "2024-12-20"},
		{"20/12/2024", "2024-12-20"},
		{"Dec 20, 2024", "2024-12-20"},
		{"December 20, 2024", "2024-12-20"},
		{"20 December 2024", "2024-12-20"},
		{"20 Dec 2024", "2024-12-20"},
		{"16 may 2025", "2025-05-16"},
		{"16 May 2025", "2025-05-16"},
		{"16/05/2025", "2025-05-16"},
		{"16.05.2025", "2025-05-16"},
		{"05/16/2025", "2025-05-16"}, // US numeric fallback
		{"2025-05-16", "2025-05-16"},
		{"2025 05 16", "2025-05-16"},
		{"1st May 2025", "2025-05-01"},
		{"3rd June 2025", "2025-06-03"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, processor.NormalizeDateRange(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeDateRangeDayNames(t *testing.T) {
	processor := event.NewProcessor()

	cases := []struct {
		in   string
		want string
	}{
		{"Saturday 20 December 2024", "2024-12-20"},
		{"Sun 16 May 2025", "2025-05-16"},
		{"weekend 20/12/2024", "2024-12-20"},
		{"wknd 20/12/2024", "2024-12-20"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, processor.NormalizeDateRange(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeDateRangeTwoDigitYears(t *testing.T) {
	processor := event.NewProcessor()

	assert.Equal(t, "2023-05-16", processor.NormalizeDateRange("16 may 23"))
	assert.Equal(t, "2023-08-16", processor.NormalizeDateRange("16 aug 23"))
	assert.Equal(t, "2023-05-16", processor.NormalizeDateRange("16/05/23"))
}

func TestNormalizeDateRangeCollapsesDayRanges(t *testing.T) {
	processor := event.NewProcessor()

	assert.Equal(t, "2025-05-16", processor.NormalizeDateRange("16/17 May 2025"))
	assert.Equal(t, "2025-05-16", processor.NormalizeDateRange("Sat/Sun 16/17 May 2025"))
}

func TestNormalizeDateRangeInvalid(t *testing.T) {
	for _, in := range []string{"", "invalid-date", "32/12/2024", "12/32/2024", "2024-13-01", "not a date", "TBC"} {
		processor := event.NewProcessor()
		assert.Empty(t, processor.NormalizeDateRange(in), "input %q", in)
	}
}

func TestNormalizeDateRangeLogging(t *testing.T) {
	processor := event.NewProcessor()
	assert.Empty(t, processor.NormalizeDateRange("invalid-date"))
	errors := processor.Errors()
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "Failed to parse date")
	assert.Contains(t, errors[0], "invalid-date")

	// empty input is "no date", not an error
	processor = event.NewProcessor()
	assert.Empty(t, processor.NormalizeDateRange(""))
	assert.Empty(t, processor.Errors())
}

func TestProcessBasic(t *testing.T) {
	processor := event.NewProcessor()

	events := processor.Process([]map[string]any{
		{
			"fixture":    "Test Event",
			"date":       "2024-12-20",
			"start_time": "14:00",
			"venue":      "Test Venue",
		},
	})

	require.Len(t, events, 1)
	assert.Equal(t, "Test Event", events[0].Summary)
	assert.Equal(t, "2024-12-20", events[0].StartDate)
	assert.Equal(t, "14:00", events[0].StartTime)
	assert.Equal(t, "Test Venue", events[0].Location)
	assert.Empty(t, processor.Errors())
}

func TestProcessCustomMapping(t *testing.T) {
	processor := event.NewProcessor()
	processor.AddMapping(map[string]string{
		"title":      "summary",
		"event_date": "dtstart_date",
		"tags":       "categories",
	})

	events := processor.Process([]map[string]any{
		{
			"title":      "Custom Event",
			"event_date": "21st December 2024",
			"tags":       []string{"music", "live"},
		},
	})

	require.Len(t, events, 1)
	assert.Equal(t, "Custom Event", events[0].Summary)
	assert.Equal(t, "2024-12-21", events[0].StartDate)
	assert.Equal(t, []string{"music", "live"}, events[0].Categories)
}

func TestProcessMappingOverride(t *testing.T) {
	processor := event.NewProcessor()
	// later mapping for the same source field wins
	processor.AddMapping(map[string]string{"venue": "description"})

	events := processor.Process([]map[string]any{
		{"fixture": "Derby", "date": "2024-12-20", "venue": "Town Hall"},
	})

	require.Len(t, events, 1)
	assert.Equal(t, "Town Hall", events[0].Description)
	assert.Empty(t, events[0].Location)
}

func TestProcessDropPolicy(t *testing.T) {
	processor := event.NewProcessor()

	events := processor.Process([]map[string]any{
		{"fixture": "Good Event", "date": "2024-12-20", "start_time": "14:00"},
		{"fixture": "Bad Date Event", "date": "invalid-date", "start_time": "15:00"},
		{"fixture": "Bad Time Event", "date": "2024-12-21", "start_time": "invalid-time"},
	})

	// the bad-date record vanishes, the bad-time record survives all-day
	require.Len(t, events, 2)
	assert.Equal(t, "Good Event", events[0].Summary)
	assert.Equal(t, "14:00", events[0].StartTime)
	assert.Equal(t, "Bad Time Event", events[1].Summary)
	assert.Empty(t, events[1].StartTime)

	errors := processor.Errors()
	require.NotEmpty(t, errors)
	found := false
	for _, msg := range errors {
		if strings.Contains(msg, "invalid-date") {
			found = true
		}
	}
	assert.True(t, found, "error log should mention the bad date, got %v", errors)
}

func TestProcessSummaryFallback(t *testing.T) {
	processor := event.NewProcessor()

	events := processor.Process([]map[string]any{
		{"fixture": "Named Event", "date": "2024-12-20"},
		{"date": "2024-12-21"},
	})

	require.Len(t, events, 2)
	assert.Equal(t, "Named Event", events[0].Summary)
	assert.Equal(t, "Untitled Event", events[1].Summary)
}

func TestProcessClearsDiagnostics(t *testing.T) {
	processor := event.NewProcessor()

	processor.Process([]map[string]any{{"date": "invalid-date"}})
	require.NotEmpty(t, processor.Errors())

	processor.Process([]map[string]any{{"fixture": "Clean", "date": "2024-12-20"}})
	assert.Empty(t, processor.Errors())
}

func TestProcessNonTextTimeValue(t *testing.T) {
	processor := event.NewProcessor()

	events := processor.Process([]map[string]any{
		{"fixture": "Odd Record", "date": "2024-12-20", "start_time": 1400},
	})

	// a non-text time is a per-record failure, not a per-field one
	assert.Empty(t, events)
	errors := processor.Errors()
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "Error processing event 0")
}

func TestProcessKeepsInputOrder(t *testing.T) {
	processor := event.NewProcessor()

	events := processor.Process([]map[string]any{
		{"fixture": "First", "date": "2024-12-22"},
		{"fixture": "Skipped", "date": "nope"},
		{"fixture": "Second", "date": "2024-12-20"},
	})

	require.Len(t, events, 2)
	assert.Equal(t, "First", events[0].Summary)
	assert.Equal(t, "Second", events[1].Summary)
}
