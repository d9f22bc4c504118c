package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"icsgen/src/pipeline"
	"icsgen/src/utils"

	"github.com/jessevdk/go-flags"
	"github.com/lmittmann/tint"
)

var opts struct {
	Input    string `short:"i" long:"input" description:"JSON file holding an array of raw event records" required:"true"`
	Output   string `short:"o" long:"output" description:"Path to write the .ics file; stdout when omitted"`
	Name     string `short:"n" long:"name" description:"Calendar display name"`
	Config   string `short:"c" long:"config" description:"Path to config.yaml"`
	Validate bool   `long:"validate" description:"Report per-event validation issues"`
}

func init() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg := utils.NewConfig(opts.Config)

	name := opts.Name
	if name == "" {
		name = cfg.GetString("calendar.name", "Generated Calendar")
	}
	name = utils.TidyCalendarName(name)

	output := opts.Output
	if output == "" {
		output = cfg.GetString("calendar.output", "")
	}

	raw, err := os.ReadFile(opts.Input)
	if err != nil {
		slog.Error("can't read input file", "path", opts.Input, "error", err)
		os.Exit(1)
	}
	var rawEvents []map[string]any
	if err := json.Unmarshal(raw, &rawEvents); err != nil {
		slog.Error("can't parse input file", "path", opts.Input, "error", err)
		os.Exit(1)
	}

	result, err := pipeline.Run(rawEvents, pipeline.Options{
		CalendarName: name,
		OutputPath:   output,
		FieldMapping: cfg.StringMap("field_mappings"),
		Validate:     opts.Validate,
	})
	if err != nil {
		slog.Error("can't generate calendar", "error", err)
		os.Exit(1)
	}

	for _, msg := range result.ProcessingErrors {
		slog.Warn("processing", "detail", msg)
	}
	for _, msg := range result.ValidationErrors {
		slog.Warn("validation", "detail", msg)
	}
	slog.Info("calendar generated",
		"events", result.Stats.TotalEvents,
		"with_time", result.Stats.EventsWithTime,
		"all_day", result.Stats.AllDayEvents,
		"earliest", result.Stats.DateRange.Earliest,
		"latest", result.Stats.DateRange.Latest,
	)

	if output == "" {
		fmt.Print(result.Content)
	} else {
		slog.Info("calendar written", "path", output)
	}
}
