package ingest

import (
	"log/slog"

	"mediavault/internal/logging"
)

// Event is a progress notification for one batch item. Multiple events are
// published per item as it moves through the pipeline stages.
type Event struct {
	Index   int
	Stage   Stage
	Percent float64
	Message string
}

// Reporter receives progress events. Publish is fire-and-forget: it must
// return promptly and never block the pipeline on a slow consumer.
type Reporter interface {
	Publish(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

func (f ReporterFunc) Publish(event Event) { f(event) }

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Publish(Event) {}

// NewLogReporter returns a Reporter that writes events to the logger.
func NewLogReporter(logger *slog.Logger) Reporter {
	scoped := logging.NewComponentLogger(logger, "progress")
	return ReporterFunc(func(event Event) {
		attrs := []logging.Attr{
			logging.Int("item", event.Index),
			logging.String("stage", string(event.Stage)),
		}
		if event.Percent > 0 {
			attrs = append(attrs, logging.Float64("percent", event.Percent))
		}
		if event.Message != "" {
			attrs = append(attrs, logging.String("detail", event.Message))
		}
		scoped.Info("progress", logging.Args(attrs...)...)
	})
}
