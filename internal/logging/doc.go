// Package logging assembles structured slog loggers and formatting helpers used
// across festive.
//
// It owns the console and JSON handlers, tees terminal output into a JSON log
// file under the configured log directory, and exposes context-aware helpers so
// controller code can tag log lines with job identifiers, stages, and
// correlation IDs. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
