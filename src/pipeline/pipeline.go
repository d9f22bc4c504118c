// The `pipeline` package chains the event normalizer and the iCalendar
// generator into single calls for callers that don't need to hold the
// intermediate pieces.
package pipeline

import (
	"icsgen/src/event"
	"icsgen/src/ical"
)

type Options struct {
	// Calendar display name, "Generated Calendar" when empty.
	CalendarName string
	// When non-empty, the rendered calendar is also written here.
	OutputPath string
	// Extra source→canonical mappings merged over the defaults.
	FieldMapping map[string]string
	// Collect per-record validation issues into Result.ValidationErrors.
	Validate bool
}

// Result bundles every artifact of one pipeline run. It is populated even
// when every input record failed normalization: Events comes back empty,
// ProcessingErrors non-empty, and Content still holds a well-formed empty
// calendar.
type Result struct {
	Content          string
	Events           []event.Event
	ProcessingErrors []string
	ValidationErrors []string
	Stats            ical.Stats
}

// Run maps, normalizes, optionally validates, summarizes and renders a
// batch of raw records. The only error it can return is a failed write to
// Options.OutputPath; everything recoverable is reported inside Result.
func Run(rawEvents []map[string]any, opts Options) (Result, error) {
	processor := event.NewProcessor()
	if len(opts.FieldMapping) > 0 {
		processor.AddMapping(opts.FieldMapping)
	}
	generator := ical.NewGenerator(opts.CalendarName, "UTC")

	var result Result
	result.Events = processor.Process(rawEvents)
	result.ProcessingErrors = processor.Errors()
	if opts.Validate {
		result.ValidationErrors = generator.Validate(result.Events)
	}
	result.Stats = generator.Stats(result.Events)

	content, err := generator.Generate(result.Events, opts.OutputPath)
	if err != nil {
		return result, err
	}
	result.Content = content
	return result, nil
}

// CreateCalendar is the one-shot form of Run for callers that only want
// the rendered text.
func CreateCalendar(rawEvents []map[string]any, calendarName string, outputPath string, fieldMapping map[string]string) (string, error) {
	result, err := Run(rawEvents, Options{
		CalendarName: calendarName,
		OutputPath:   outputPath,
		FieldMapping: fieldMapping,
	})
	if err != nil {
		return "", err
	}
	return result.Content, nil
}
