package hallway

// Contract versions of the two output schemas bridged here.
const (
	// envelopeContractVersion is the audited v0.2 envelope the core uses.
	envelopeContractVersion = "0.2.0"

	// roomContractVersion is the legacy v0.1 shape rooms implement.
	roomContractVersion = "0.1.0"
)

// Envelope statuses.
const (
	EnvelopeStatusOK      = "ok"
	EnvelopeStatusDecline = "decline"
)

// Envelope is the v0.2 audited wrapper around a legacy v0.1 room output.
// The legacy payload rides verbatim under Data; everything else is metadata
// the orchestrator adds for audit.
type Envelope struct {
	ContractVersion string         `json:"contract_version"`
	RoomID          string         `json:"room_id"`
	Status          string         `json:"status"`
	Data            map[string]any `json:"data"`
	GateDecisions   []GateDecision `json:"gate_decisions"`
	Invariants      Invariants     `json:"invariants"`
	Audit           Audit          `json:"audit"`
	Decline         *Decline       `json:"decline,omitempty"`
}

// Invariants asserts the execution guarantees of the step.
type Invariants struct {
	Deterministic  bool `json:"deterministic"`
	NoPartialWrite bool `json:"no_partial_write"`
}

// Audit chains this step's hash to its predecessor's.
type Audit struct {
	StepHash            string `json:"step_hash"`
	PrevHash            string `json:"prev_hash,omitempty"`
	RoomContractVersion string `json:"room_contract_version"`
}

// Upcast wraps a legacy v0.1 room output into a v0.2 envelope. The legacy
// payload is stored as-is, not re-serialized, so Downcast returns the exact
// value with type fidelity at every nesting level. The bridge performs no
// shape validation; the payload is opaque cargo.
func Upcast(roomID string, legacyOutput map[string]any, status string, gateDecisions []GateDecision, prevHash string) Envelope {
	env := Envelope{
		ContractVersion: envelopeContractVersion,
		RoomID:          roomID,
		Status:          status,
		Data:            legacyOutput,
		GateDecisions:   gateDecisions,
		Invariants: Invariants{
			Deterministic:  true,
			NoPartialWrite: true,
		},
		Audit: Audit{
			StepHash:            ComputeStepHash(legacyOutput),
			PrevHash:            prevHash,
			RoomContractVersion: roomContractVersion,
		},
	}

	if status == EnvelopeStatusDecline {
		env.Decline = &Decline{
			Reason:  "gate_denied_or_room_decline",
			Message: "see gate_decisions and data for details",
		}
	}

	return env
}

// Downcast returns exactly the legacy payload stored by Upcast.
func Downcast(env Envelope) map[string]any {
	return env.Data
}
