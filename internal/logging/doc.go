// Package logging constructs the process-wide slog logger and provides
// attribute helpers shared across components. Output format is either
// human-oriented text or JSON, selected by configuration.
package logging
