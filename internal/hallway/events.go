package hallway

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
)

// emit appends an event to the run's audit trail, stamping it with the
// clock port, and mirrors it to the structured logger and the metrics sink.
// Logging and metrics are fire-and-forget; only the appended event is
// load-bearing.
func (c *ExecutionContext) emit(ev Event) {
	if c.Ports != nil && c.Ports.Clock != nil {
		ev.TS = c.Ports.Clock.NowISO()
	}
	c.Events = append(c.Events, ev)

	if c.Ports == nil {
		return
	}

	if log := c.Ports.Log; log != nil {
		ctx := logging.WithRunID(context.Background(), c.RunID)
		ctx = logging.WithCorrelationID(ctx, c.CorrelationID)

		fields := []zap.Field{
			zap.String("phase", ev.Phase),
		}
		if ev.RoomID != "" {
			fields = append(fields, zap.String("room_id", ev.RoomID))
		}
		if ev.Reason != "" {
			fields = append(fields, zap.String("reason", ev.Reason))
		}
		if ev.HaltReason != "" {
			fields = append(fields, zap.String("halt_reason", ev.HaltReason))
		}

		if ev.Phase == PhaseHalt {
			log.Error(ctx, "hallway event", fields...)
		} else {
			log.Info(ctx, "hallway event", fields...)
		}
	}

	if metrics := c.Ports.Metrics; metrics != nil {
		switch ev.Phase {
		case PhaseHalt:
			metrics.Incr("hallway.run.halted", map[string]string{
				"reason": ev.Reason,
			})
		case PhaseGateDecision:
			allow := "true"
			if a, ok := ev.Details["allow"].(bool); ok && !a {
				allow = "false"
			}
			metrics.Incr("hallway.gate.decision", map[string]string{
				"room_id": ev.RoomID,
				"allow":   allow,
			})
		case PhaseEnd:
			metrics.Incr("hallway.run.completed", nil)
		}
	}
}
