package hallway

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

// Room output keys and next-action vocabulary of the legacy v0.1 contract.
const (
	outputKeyDisplayText   = "display_text"
	outputKeyNextAction    = "next_action"
	outputKeyDeclineReason = "_decline_reason"
	outputKeyUsage         = "_usage"

	NextActionContinue = "continue"
	NextActionHold     = "hold"
	NextActionLater    = "later"
)

// StepExecutor invokes one room through its external contract, interprets
// the result, merges outputs into run state, and classifies the outcome.
type StepExecutor struct {
	log *logging.Logger
}

// NewStepExecutor creates an executor.
func NewStepExecutor(log *logging.Logger) *StepExecutor {
	if log == nil {
		log = logging.NewNop()
	}
	return &StepExecutor{log: log}
}

// Execute runs one room step. Transient collaborator failures are retried
// up to policy limits with retries-budget accounting; business failures,
// declines and malformed outputs halt without retry. Outputs are merged
// into shared state only on OK, so run state reflects only cleanly
// completed rooms.
func (e *StepExecutor) Execute(ctx context.Context, rc *ExecutionContext, roomID string, gateDecisions []GateDecision, prevHash string) StepResult {
	if rc.Policy.DryRun {
		mock := map[string]any{"dry_run": true, "room_id": roomID}
		env := Upcast(roomID, mock, EnvelopeStatusOK, gateDecisions, prevHash)
		return StepResult{
			RoomID:   roomID,
			Status:   StatusOK,
			Outputs:  map[string]any{},
			Envelope: &env,
		}
	}

	room, ok := rc.Ports.Rooms.Lookup(roomID)
	if !ok {
		return e.haltResult(roomID, "room_not_found",
			[]string{fmt.Sprintf("room %q not found in registry", roomID)},
			gateDecisions, prevHash, nil, nil)
	}

	input := ports.RoomInput{
		SessionStateRef: rc.SessionStateRef(),
		Payload:         rc.PayloadFor(roomID),
		State:           rc.State,
	}

	stepMetrics := map[string]float64{}
	clock := rc.Ports.Clock

	var output map[string]any
	attempts := 0
	for {
		start := clock.Now()
		out, err := room.Serve(ctx, input)
		elapsedMS := float64(clock.Now().Sub(start).Milliseconds())

		rc.AddUsage(ResourceTimeMS, elapsedMS)
		stepMetrics["duration_ms"] += elapsedMS
		if rc.Ports.Metrics != nil {
			rc.Ports.Metrics.Timing("hallway.step.duration", elapsedMS, map[string]string{
				"room_id": roomID,
			})
		}

		if err == nil {
			output = out
			break
		}

		if !errors.Is(err, ports.ErrTransient) {
			// Room-reported business failure: non-retryable.
			return e.haltResult(roomID, "room_failed",
				[]string{err.Error()}, gateDecisions, prevHash, nil, stepMetrics)
		}

		if attempts >= rc.Policy.MaxRetries {
			return e.haltResult(roomID, "max_retries_exceeded",
				[]string{err.Error()}, gateDecisions, prevHash, nil, stepMetrics)
		}
		if limit, budgeted := rc.Budgets[ResourceRetries]; budgeted && rc.Usage[ResourceRetries]+1 > limit {
			return e.haltResult(roomID, ReasonBudgetExceeded,
				[]string{err.Error()}, gateDecisions, prevHash, nil, stepMetrics)
		}

		attempts++
		rc.AddUsage(ResourceRetries, 1)
		e.log.Warn(ctx, "retrying room after transient failure",
			zap.String("room_id", roomID),
			zap.Int("attempt", attempts),
			zap.Error(err),
		)
	}

	if tokens, ok := usageTokens(output); ok {
		rc.AddUsage(ResourceTokens, tokens)
		stepMetrics[ResourceTokens] = tokens
	}

	if reason, malformed := checkOutputShape(output); malformed {
		return e.haltResult(roomID, "malformed_output",
			[]string{reason}, gateDecisions, prevHash, output, stepMetrics)
	}

	if reason, declined := roomDecline(output); declined {
		env := Upcast(roomID, output, EnvelopeStatusDecline, gateDecisions, prevHash)
		return StepResult{
			RoomID:     roomID,
			Status:     StatusHalt,
			Outputs:    map[string]any{},
			HaltReason: reason,
			Metrics:    stepMetrics,
			Envelope:   &env,
		}
	}

	rc.MergeOutputs(output)
	env := Upcast(roomID, output, EnvelopeStatusOK, gateDecisions, prevHash)
	return StepResult{
		RoomID:   roomID,
		Status:   StatusOK,
		Outputs:  output,
		Metrics:  stepMetrics,
		Envelope: &env,
	}
}

// haltResult builds a HALT StepResult wrapping the failure in a decline
// envelope so the audit trail still records the step.
func (e *StepExecutor) haltResult(roomID, haltReason string, errs []string, gateDecisions []GateDecision, prevHash string, data map[string]any, metrics map[string]float64) StepResult {
	if data == nil {
		data = map[string]any{
			"error":   haltReason,
			"room_id": roomID,
		}
		if len(errs) > 0 {
			data["error_detail"] = errs[0]
		}
	}
	env := Upcast(roomID, data, EnvelopeStatusDecline, gateDecisions, prevHash)
	return StepResult{
		RoomID:     roomID,
		Status:     StatusHalt,
		Outputs:    map[string]any{},
		Errors:     errs,
		HaltReason: haltReason,
		Metrics:    metrics,
		Envelope:   &env,
	}
}

// checkOutputShape enforces the minimal legacy-shape expectation: a display
// text field and a next-action from the fixed vocabulary. The version bridge
// does no validation, so unparseable payloads are flagged here.
func checkOutputShape(output map[string]any) (string, bool) {
	if output == nil {
		return "room returned no output", true
	}
	if _, ok := output[outputKeyDisplayText].(string); !ok {
		return "missing or non-string display_text", true
	}
	action, ok := output[outputKeyNextAction].(string)
	if !ok {
		return "missing or non-string next_action", true
	}
	switch action {
	case NextActionContinue, NextActionHold, NextActionLater:
		return "", false
	default:
		return fmt.Sprintf("next_action %q not in vocabulary", action), true
	}
}

// roomDecline reports whether a well-formed output signals a decline: an
// explicit decline reason, or a next-action of hold/later.
func roomDecline(output map[string]any) (string, bool) {
	if reason, ok := output[outputKeyDeclineReason].(string); ok {
		return reason, true
	}
	switch output[outputKeyNextAction] {
	case NextActionHold:
		return "room_requested_hold", true
	case NextActionLater:
		return "room_requested_later", true
	}
	return "", false
}

// usageTokens extracts a token-cost metric from the room's reported usage.
func usageTokens(output map[string]any) (float64, bool) {
	usage, ok := output[outputKeyUsage].(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := usage[ResourceTokens].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
