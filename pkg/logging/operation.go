package logging

import (
	"context"
	"log/slog"
	"time"
)

// Operation outcomes.
const (
	OutcomeStarted = "started"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// OperationEvent describes one lifecycle transition of a deployment.
type OperationEvent struct {
	Deployment  string
	Environment string
	Action      string
	Outcome     string
	OperationID string
	Force       bool
	Duration    time.Duration
	Error       string
}

// Operation logs a lifecycle transition record at INFO level.
func Operation(ev OperationEvent) {
	logger := current()
	if logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("subsystem", "Operation"),
		slog.String("deployment", ev.Deployment),
		slog.String("action", ev.Action),
		slog.String("outcome", ev.Outcome),
	}
	if ev.Environment != "" {
		attrs = append(attrs, slog.String("environment", ev.Environment))
	}
	if ev.OperationID != "" {
		attrs = append(attrs, slog.String("operation_id", ev.OperationID))
	}
	if ev.Force {
		attrs = append(attrs, slog.Bool("force", true))
	}
	if ev.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", ev.Duration))
	}
	if ev.Error != "" {
		attrs = append(attrs, slog.String("error", ev.Error))
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, "[OPERATION] "+ev.Action, attrs...)
}
