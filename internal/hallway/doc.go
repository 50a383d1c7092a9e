// Package hallway implements the deterministic multi-room session
// orchestrator.
//
// A run is a single pass over a planned sequence of rooms. The planner
// resolves the sequence once at run start; the run loop then walks it
// strictly sequentially, consulting the budget tracker and the gate chain
// before each room and delegating invocation to the step executor. Room
// outputs merge into a shared, last-writer-wins state store, and every
// decision of consequence is appended to an ordered event log.
//
// Rooms implement a flat legacy (v0.1) output contract; the core operates
// on an audited v0.2 envelope. Upcast and Downcast bridge the two without
// loss: the legacy payload is carried verbatim, so the envelope can evolve
// without breaking room implementations or callers that only want the
// legacy shape back.
//
// Failure handling is explicit and result-valued. Gate denials are
// policy-governed admissions, not defects: with stop_on_decline they halt
// the run, otherwise the declined room is skipped and recorded. Budget
// overruns halt cleanly and are never retried. Transient collaborator
// failures retry up to policy limits with retries-budget accounting, then
// escalate to a halt. Every run terminates as completed or halted with a
// fully populated exit summary; nothing panics across the loop boundary.
package hallway
