// Package services defines shared utilities consumed by the recommendation
// flow and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the selected title, the request surface, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let surfaces decide
//     whether a failure is fatal, a configuration problem, a not-found
//     condition, or an external-service hiccup.
//
// Use these helpers when wiring new integrations so failures are classified the
// same way by the CLI and the HTTP server.
package services
