package hallway

import (
	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

// StepStatus is the outcome classification of one room step.
type StepStatus string

const (
	// StatusOK means the room completed and its outputs were merged.
	StatusOK StepStatus = "ok"

	// StatusHalt means the step cannot proceed; no outputs were merged.
	StatusHalt StepStatus = "halt"
)

// Event phases. This vocabulary is closed: nothing else is ever appended to
// the run's event log.
const (
	PhaseGateDecision    = "gate_decision"
	PhaseDeclineContinue = "decline_continue"
	PhaseHalt            = "halt"
	PhaseEnd             = "end"
)

// Halt reasons used in halt-phase events.
const (
	ReasonBudgetExceeded = "budget_exceeded"
	ReasonStepHalted     = "step_halted"
)

// Budget and usage resource keys.
const (
	ResourceTokens  = "tokens"
	ResourceTimeMS  = "time_ms"
	ResourceRetries = "retries"
)

// Well-known state keys.
const (
	stateKeySessionRef = "session_state_ref"
	stateKeyPayloads   = "payloads"
)

// Event is one append-only audit record of a run.
type Event struct {
	Phase      string         `json:"phase"`
	TS         string         `json:"ts"`
	RoomID     string         `json:"room_id,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	HaltReason string         `json:"halt_reason,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// GateDecision is the immutable result of one gate evaluation.
type GateDecision struct {
	Gate    string         `json:"gate"`
	Allow   bool           `json:"allow"`
	Reason  string         `json:"reason"`
	Details map[string]any `json:"details,omitempty"`
}

// Gate is an admission-control check run before a room. Evaluate must be a
// pure function of its inputs so audit replay stays deterministic.
type Gate interface {
	Name() string
	Evaluate(roomID, sessionStateRef string, payload map[string]any) GateDecision
}

// GateProfile names the ordered gate chain, with optional per-room
// overrides. An override fully replaces the chain for that room.
type GateProfile struct {
	Chain     []string            `json:"chain"`
	Overrides map[string][]string `json:"overrides,omitempty"`
}

// Policy is the behavioral configuration of a run.
type Policy struct {
	StopOnDecline bool
	GateProfile   GateProfile
	Gates         map[string]Gate
	MaxRetries    int
	DryRun        bool
}

// StepResult captures one room invocation as interpreted by the executor.
type StepResult struct {
	RoomID     string             `json:"room_id"`
	Status     StepStatus         `json:"status"`
	Outputs    map[string]any     `json:"outputs"`
	Errors     []string           `json:"errors,omitempty"`
	HaltReason string             `json:"halt_reason,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`

	// Envelope is the v0.2 audited wrapper of the room's legacy output,
	// recorded as the per-room summary in the final result.
	Envelope *Envelope `json:"envelope,omitempty"`
}

// ExecutionContext is the mutable state of one run. Created once per run,
// owned exclusively by the run loop, mutated in place as rooms execute, and
// discarded at run end. Not safe for concurrent use; independent runs use
// independent contexts.
type ExecutionContext struct {
	RunID         string
	CorrelationID string

	// RoomsToRun is fixed at run start by the planner; re-planning requires
	// a new context.
	RoomsToRun []string

	// State is the shared-write key/value store across rooms. Sequential
	// execution makes it single-writer-at-a-time; last writer wins.
	State map[string]any

	// Budgets are per-resource ceilings, immutable for the run's lifetime.
	Budgets map[string]float64

	// Usage counters are monotonically non-decreasing.
	Usage map[string]float64

	Ports  *ports.Ports
	Policy Policy

	// Events is the append-only audit trail.
	Events []Event
}

// NewExecutionContext builds a run context with zeroed usage counters.
func NewExecutionContext(runID, correlationID string, roomsToRun []string, state map[string]any, budgets map[string]float64, p *ports.Ports, policy Policy) *ExecutionContext {
	if state == nil {
		state = make(map[string]any)
	}
	if budgets == nil {
		budgets = make(map[string]float64)
	}
	return &ExecutionContext{
		RunID:         runID,
		CorrelationID: correlationID,
		RoomsToRun:    roomsToRun,
		State:         state,
		Budgets:       budgets,
		Usage: map[string]float64{
			ResourceTokens:  0,
			ResourceTimeMS:  0,
			ResourceRetries: 0,
		},
		Ports:  p,
		Policy: policy,
	}
}

// SessionStateRef returns the session reference from state, or "".
func (c *ExecutionContext) SessionStateRef() string {
	ref, _ := c.State[stateKeySessionRef].(string)
	return ref
}

// PayloadFor returns the caller-supplied payload for a room, or nil.
func (c *ExecutionContext) PayloadFor(roomID string) map[string]any {
	payloads, _ := c.State[stateKeyPayloads].(map[string]map[string]any)
	if payloads != nil {
		return payloads[roomID]
	}
	// Tolerate the loosely-typed shape produced by JSON/YAML decoding.
	loose, _ := c.State[stateKeyPayloads].(map[string]any)
	if loose == nil {
		return nil
	}
	payload, _ := loose[roomID].(map[string]any)
	return payload
}

// MergeOutputs folds a room's outputs into shared state, last-writer-wins.
func (c *ExecutionContext) MergeOutputs(outputs map[string]any) {
	for k, v := range outputs {
		c.State[k] = v
	}
}

// AddUsage increments a usage counter. Negative deltas are ignored to keep
// counters monotone.
func (c *ExecutionContext) AddUsage(resource string, delta float64) {
	if delta < 0 {
		return
	}
	c.Usage[resource] += delta
}

// ExitSummary reports how the run terminated.
type ExitSummary struct {
	Completed  bool     `json:"completed"`
	Decline    *Decline `json:"decline,omitempty"`
	AuditChain []string `json:"auditable_hash_chain"`
}

// Decline carries the reason a run halted before exhausting its plan.
type Decline struct {
	Reason  string         `json:"reason"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// FinalOutput is the complete, well-formed result of a run. Callers always
// receive one regardless of how the run terminated.
type FinalOutput struct {
	RunID       string         `json:"run_id"`
	Outputs     map[string]any `json:"outputs"`
	Steps       []Envelope     `json:"steps"`
	Events      []Event        `json:"events"`
	ExitSummary ExitSummary    `json:"exit_summary"`
}
