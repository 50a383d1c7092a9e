package hallway

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
)

// Orchestrator is the run-loop state machine: it sequences the planned
// rooms, consulting the budget tracker and gate chain before each, and
// delegates invocation to the step executor. A run always terminates as
// either completed or halted with a fully populated exit summary; no fault
// escapes the loop.
type Orchestrator struct {
	executor *StepExecutor
	log      *logging.Logger
}

// NewOrchestrator creates a run loop around the given executor.
func NewOrchestrator(executor *StepExecutor, log *logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Orchestrator{
		executor: executor,
		log:      log,
	}
}

// Run executes the context's room plan to completion or halt.
//
// Per room, in plan order: budget check, gate chain, step execution. A
// budget overrun or a step halt is fatal-but-clean: the run stops, the halt
// is recorded, and the final output reports completed=false. A gate denial
// with stop_on_decline=false is recoverable: the declined room is skipped
// and the run continues.
func (o *Orchestrator) Run(ctx context.Context, rc *ExecutionContext) *FinalOutput {
	steps := make([]Envelope, 0, len(rc.RoomsToRun))
	prevHash := ""
	var decline *Decline

	halted := false
	for _, roomID := range rc.RoomsToRun {
		if BudgetsExceeded(rc.Budgets, rc.Usage) {
			rc.emit(Event{
				Phase:  PhaseHalt,
				RoomID: roomID,
				Reason: ReasonBudgetExceeded,
			})
			decline = &Decline{
				Reason:  ReasonBudgetExceeded,
				Message: fmt.Sprintf("budget exceeded before room %s", roomID),
				Details: budgetDetails(rc),
			}
			halted = true
			break
		}

		gateDecisions, allowed := EvaluateGateChain(rc, roomID)
		if !allowed {
			deny, _ := FirstDeny(gateDecisions)

			if rc.Policy.StopOnDecline {
				rc.emit(Event{
					Phase:      PhaseHalt,
					RoomID:     roomID,
					Reason:     ReasonStepHalted,
					HaltReason: deny.Reason,
				})
				decline = &Decline{
					Reason:  deny.Reason,
					Message: fmt.Sprintf("gate chain denied room %s", roomID),
					Details: deny.Details,
				}
				halted = true
				break
			}

			rc.emit(Event{
				Phase:  PhaseDeclineContinue,
				RoomID: roomID,
				Reason: deny.Reason,
			})
			continue
		}

		result := o.executor.Execute(ctx, rc, roomID, gateDecisions, prevHash)
		if result.Envelope != nil {
			steps = append(steps, *result.Envelope)
			prevHash = result.Envelope.Audit.StepHash
		}

		if result.Status == StatusHalt {
			rc.emit(Event{
				Phase:      PhaseHalt,
				RoomID:     roomID,
				Reason:     ReasonStepHalted,
				HaltReason: result.HaltReason,
			})
			decline = &Decline{
				Reason:  result.HaltReason,
				Message: fmt.Sprintf("room %s halted", roomID),
				Details: map[string]any{
					"room_id": roomID,
					"errors":  result.Errors,
				},
			}
			halted = true
			break
		}
	}

	if !halted {
		rc.emit(Event{Phase: PhaseEnd})
	}

	out := &FinalOutput{
		RunID:   rc.RunID,
		Outputs: finalOutputs(rc),
		Steps:   steps,
		Events:  rc.Events,
		ExitSummary: ExitSummary{
			Completed:  !halted,
			Decline:    decline,
			AuditChain: BuildAuditChain(steps),
		},
	}

	o.log.Info(ctx, "run finished",
		zap.String("run_id", rc.RunID),
		zap.Bool("completed", !halted),
		zap.Int("steps", len(steps)),
	)
	return out
}

// finalOutputs copies the merged run state, dropping the payloads input map
// and underscore-prefixed bookkeeping keys.
func finalOutputs(rc *ExecutionContext) map[string]any {
	outputs := make(map[string]any, len(rc.State))
	for k, v := range rc.State {
		if k == stateKeyPayloads || strings.HasPrefix(k, "_") {
			continue
		}
		outputs[k] = v
	}
	return outputs
}

func budgetDetails(rc *ExecutionContext) map[string]any {
	remaining := make(map[string]any, len(rc.Budgets))
	for resource, limit := range rc.Budgets {
		remaining[resource] = limit - rc.Usage[resource]
	}
	return map[string]any{"budgets_remaining": remaining}
}
