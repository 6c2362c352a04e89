// Package logging assembles structured slog loggers and attribute helpers used
// across moviematch.
//
// It owns the console and JSON handlers, resolves the "auto" format by checking
// whether stderr is a terminal, and exposes context-aware helpers so the
// recommendation flow can tag log lines with correlation IDs and the title being
// served. A no-op logger is provided for tests and wiring code that cannot fail.
package logging
