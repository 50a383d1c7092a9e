package hallway

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

// fakeClock advances a fixed step per Now call so durations are
// deterministic.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		step: 5 * time.Millisecond,
	}
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func (c *fakeClock) NowISO() string {
	return c.Now().Format(time.RFC3339Nano)
}

// fakeRoom serves canned outputs, optionally failing the first N calls.
type fakeRoom struct {
	id       string
	output   map[string]any
	err      error
	failFor  int
	calls    int
	lastSeen ports.RoomInput
}

func (r *fakeRoom) ID() string { return r.id }

func (r *fakeRoom) Serve(_ context.Context, in ports.RoomInput) (map[string]any, error) {
	r.calls++
	r.lastSeen = in
	if r.err != nil && (r.failFor == 0 || r.calls <= r.failFor) {
		return nil, r.err
	}
	return r.output, nil
}

// okOutput is a minimal well-formed room output.
func okOutput(extra map[string]any) map[string]any {
	out := map[string]any{
		"display_text": "done",
		"next_action":  NextActionContinue,
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

type fakeRegistry struct {
	rooms map[string]ports.Room
}

func newFakeRegistry(roomList ...ports.Room) *fakeRegistry {
	r := &fakeRegistry{rooms: make(map[string]ports.Room, len(roomList))}
	for _, room := range roomList {
		r.rooms[room.ID()] = room
	}
	return r
}

func (r *fakeRegistry) Lookup(id string) (ports.Room, bool) {
	room, ok := r.rooms[id]
	return room, ok
}

func (r *fakeRegistry) Available() []string {
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}

// allowGate and denyGate are fixed-verdict gates.
type allowGate struct{ name string }

func (g allowGate) Name() string { return g.name }

func (g allowGate) Evaluate(roomID, _ string, _ map[string]any) GateDecision {
	return GateDecision{Gate: g.name, Allow: true, Reason: "allowed"}
}

type denyGate struct {
	name   string
	reason string
}

func (g denyGate) Name() string { return g.name }

func (g denyGate) Evaluate(roomID, _ string, _ map[string]any) GateDecision {
	return GateDecision{
		Gate:    g.name,
		Allow:   false,
		Reason:  g.reason,
		Details: map[string]any{"room_id": roomID},
	}
}

// newTestContext builds an execution context over fake collaborators.
func newTestContext(plan []string, registry ports.RoomRegistry, policy Policy, budgets map[string]float64) *ExecutionContext {
	p := &ports.Ports{
		Clock:   newFakeClock(),
		Metrics: ports.NewNopMetrics(),
		Rooms:   registry,
		Log:     logging.NewNop(),
	}
	state := map[string]any{
		"session_state_ref": "session-test",
	}
	if policy.Gates == nil {
		policy.Gates = map[string]Gate{}
	}
	return NewExecutionContext(
		fmt.Sprintf("run-%d", len(plan)), "corr-test",
		plan, state, budgets, p, policy,
	)
}
