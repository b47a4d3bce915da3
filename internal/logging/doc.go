// Package logging builds the application's slog loggers: a compact console
// handler for interactive use and a JSON handler for log files, selected by
// configuration.
package logging
