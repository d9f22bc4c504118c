package event

import "fmt"

// Canonical field names recognized by the field mapping table. Mapping a
// source field to any other target is a no-op.
const (
	FieldSummary     = "summary"
	FieldStartDate   = "dtstart_date"
	FieldStartTime   = "dtstart_time"
	FieldEndDate     = "dtend_date"
	FieldEndTime     = "dtend_time"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldURL         = "url"
	FieldCategories  = "categories"
)

// A normalized event record. An empty string (or nil Categories) means the
// field is absent; dates are always `YYYY-MM-DD` and times always 24-hour
// `HH:MM` when set by the Processor.
type Event struct {
	Summary     string
	StartDate   string
	StartTime   string
	EndDate     string
	EndTime     string
	Description string
	Location    string
	URL         string
	Categories  []string
}

func asText(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func asTextList(value any) []string {
	switch value := value.(type) {
	case []string:
		return append([]string(nil), value...)
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, asText(item))
		}
		return out
	case string:
		if value == "" {
			return nil
		}
		return []string{value}
	default:
		return []string{asText(value)}
	}
}
