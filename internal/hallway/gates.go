package hallway

import (
	"fmt"
	"strings"
)

// EffectiveChain resolves the gate-name list for a room: the profile chain,
// unless an override is present, in which case the override fully replaces
// the chain for that one room.
func EffectiveChain(profile GateProfile, roomID string) []string {
	if override, ok := profile.Overrides[roomID]; ok {
		return override
	}
	return profile.Chain
}

// EvaluateGateChain runs every gate in the room's effective chain, in order.
// Evaluation never short-circuits: downstream audit needs the full decision
// set, so every gate runs and is recorded as a gate_decision event even
// after a deny. The aggregate verdict allows iff every decision allows; the
// first deny in chain order is authoritative for the aggregate reason.
func EvaluateGateChain(rc *ExecutionContext, roomID string) ([]GateDecision, bool) {
	chain := EffectiveChain(rc.Policy.GateProfile, roomID)
	sessionRef := rc.SessionStateRef()
	payload := rc.PayloadFor(roomID)

	decisions := make([]GateDecision, 0, len(chain))
	allowed := true

	for _, gateName := range chain {
		gate, ok := rc.Policy.Gates[gateName]

		var decision GateDecision
		if !ok {
			decision = GateDecision{
				Gate:   gateName,
				Allow:  false,
				Reason: "gate_not_registered",
				Details: map[string]any{
					"available_gates": registeredGateNames(rc.Policy.Gates),
				},
			}
		} else {
			decision = gate.Evaluate(roomID, sessionRef, payload)
		}

		decisions = append(decisions, decision)
		if !decision.Allow {
			allowed = false
		}

		rc.emit(Event{
			Phase:  PhaseGateDecision,
			RoomID: roomID,
			Reason: decision.Reason,
			Details: map[string]any{
				"gate":  decision.Gate,
				"allow": decision.Allow,
			},
		})
	}

	return decisions, allowed
}

// FirstDeny returns the first denying decision in chain order, or false
// when every gate allowed.
func FirstDeny(decisions []GateDecision) (GateDecision, bool) {
	for _, d := range decisions {
		if !d.Allow {
			return d, true
		}
	}
	return GateDecision{}, false
}

func registeredGateNames(gates map[string]Gate) []string {
	names := make([]string, 0, len(gates))
	for name := range gates {
		names = append(names, name)
	}
	return names
}

// CoherenceGate performs basic admission checks: a non-empty session
// reference and a room id drawn from the canonical room list.
type CoherenceGate struct {
	validRooms map[string]struct{}
}

// NewCoherenceGate creates a coherence gate accepting the given room ids.
func NewCoherenceGate(validRooms []string) *CoherenceGate {
	valid := make(map[string]struct{}, len(validRooms))
	for _, id := range validRooms {
		valid[id] = struct{}{}
	}
	return &CoherenceGate{validRooms: valid}
}

// Name returns the gate identifier.
func (g *CoherenceGate) Name() string {
	return "coherence_gate"
}

// Evaluate checks session reference presence and room id validity.
func (g *CoherenceGate) Evaluate(roomID, sessionStateRef string, _ map[string]any) GateDecision {
	if strings.TrimSpace(sessionStateRef) == "" {
		return GateDecision{
			Gate:   g.Name(),
			Allow:  false,
			Reason: "session_state_ref is empty or missing",
			Details: map[string]any{
				"room_id": roomID,
			},
		}
	}

	if _, ok := g.validRooms[roomID]; !ok {
		return GateDecision{
			Gate:   g.Name(),
			Allow:  false,
			Reason: fmt.Sprintf("room_id %q is not in valid room list", roomID),
			Details: map[string]any{
				"room_id": roomID,
			},
		}
	}

	return GateDecision{
		Gate:   g.Name(),
		Allow:  true,
		Reason: "all coherence checks passed",
		Details: map[string]any{
			"room_id": roomID,
		},
	}
}
