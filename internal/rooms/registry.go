// Package rooms provides the built-in rule-based rooms and the registry
// that resolves room identifiers to capabilities. Rooms are external
// collaborators from the orchestrator core's point of view: each is a small
// deterministic transform implementing the legacy v0.1 output contract.
package rooms

import (
	"sort"
	"sync"

	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

// Canonical room identifiers in walk order.
const (
	EntryRoomID      = "entry_room"
	DiagnosticRoomID = "diagnostic_room"
	ProtocolRoomID   = "protocol_room"
	MemoryRoomID     = "memory_room"
	ExitRoomID       = "exit_room"
)

// CanonicalSequence returns the full room ordering for a complete walk.
func CanonicalSequence() []string {
	return []string{
		EntryRoomID,
		DiagnosticRoomID,
		ProtocolRoomID,
		MemoryRoomID,
		ExitRoomID,
	}
}

// completionMarker closes every room's display text.
const completionMarker = " [[COMPLETE]]"

// Registry implements ports.RoomRegistry.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]ports.Room
}

// NewRegistry creates a registry holding the given rooms.
func NewRegistry(roomList ...ports.Room) *Registry {
	r := &Registry{rooms: make(map[string]ports.Room, len(roomList))}
	for _, room := range roomList {
		r.rooms[room.ID()] = room
	}
	return r
}

// Register adds or replaces a room.
func (r *Registry) Register(room ports.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID()] = room
}

// Lookup resolves a room id.
func (r *Registry) Lookup(id string) (ports.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// Available returns the registered room ids, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewDefaultRegistry wires the five built-in rooms against the given ports.
func NewDefaultRegistry(p *ports.Ports) *Registry {
	return NewRegistry(
		NewEntryRoom(p.Storage, p.Log),
		NewDiagnosticRoom(p.Log),
		NewProtocolRoom(p.LLM, p.Log),
		NewMemoryRoom(p.Storage, p.Vector, p.Log),
		NewExitRoom(p.Log),
	)
}

// payloadString reads a string field from a payload, with a default.
func payloadString(payload map[string]any, key, fallback string) string {
	if payload == nil {
		return fallback
	}
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
