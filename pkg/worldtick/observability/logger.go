package observability

import (
	"log/slog"
)

// EnrichLogger adds listener context to a logger.
// Returns a new logger with event_type and listener_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "PlayerMoveEvent", "lst-1")
//	enriched.Info("dispatching") // includes event_type, listener_id
func EnrichLogger(logger *slog.Logger, eventType, listenerID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_type", eventType),
		slog.String("listener_id", listenerID),
	)
}

// LogListenerAdded logs a listener registration.
func LogListenerAdded(logger *slog.Logger, eventType, listenerID string) {
	if logger == nil {
		return
	}
	logger.Debug("listener added",
		slog.String("event_type", eventType),
		slog.String("listener_id", listenerID),
	)
}

// LogListenerExpired logs a listener that used up its invocation count.
func LogListenerExpired(logger *slog.Logger, eventType, listenerID string) {
	if logger == nil {
		return
	}
	logger.Debug("listener expired",
		slog.String("event_type", eventType),
		slog.String("listener_id", listenerID),
	)
}

// LogListenerStale logs a listener removed because its expiration window elapsed.
func LogListenerStale(logger *slog.Logger, eventType, listenerID string, window string) {
	if logger == nil {
		return
	}
	logger.Debug("listener window elapsed",
		slog.String("event_type", eventType),
		slog.String("listener_id", listenerID),
		slog.String("window", window),
	)
}

// LogListenerRemoved logs a listener dropped by the retention policy.
func LogListenerRemoved(logger *slog.Logger, eventType, listenerID, reason string) {
	if logger == nil {
		return
	}
	logger.Debug("listener removed",
		slog.String("event_type", eventType),
		slog.String("listener_id", listenerID),
		slog.String("reason", reason),
	)
}

// LogDispatchError logs a handler failure.
func LogDispatchError(logger *slog.Logger, eventType, listenerID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("listener handler failed",
		slog.String("event_type", eventType),
		slog.String("listener_id", listenerID),
		slog.String("error", err.Error()),
	)
}

// LogDeadLetterError logs a failure to persist a dead letter (non-fatal).
// Pass a logger from EnrichLogger so the record names the failing listener.
func LogDeadLetterError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("dead letter write failed",
		slog.String("error", err.Error()),
	)
}

// LogAssignment logs the thread layout computed for one tick.
func LogAssignment(logger *slog.Logger, strategy string, partitions, threads int) {
	if logger == nil {
		return
	}
	logger.Debug("partitions assigned",
		slog.String("strategy", strategy),
		slog.Int("partitions", partitions),
		slog.Int("threads", threads),
	)
}

// LogAssignmentError logs a partition that could not be placed.
func LogAssignmentError(logger *slog.Logger, strategy string, partitionID int, err error) {
	if logger == nil {
		return
	}
	logger.Error("partition assignment failed",
		slog.String("strategy", strategy),
		slog.Int("partition_id", partitionID),
		slog.String("error", err.Error()),
	)
}
