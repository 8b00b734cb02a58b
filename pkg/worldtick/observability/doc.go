// Package observability provides structured logging, metrics, and tracing
// for worldtick: listener dispatch outcomes, listener lifecycle, and thread
// assignment.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability
