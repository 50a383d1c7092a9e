// Package ports defines the narrow collaborator contracts the hallway core
// depends on, plus default adapters for each. The core borrows these handles
// for the duration of a run and never persists them.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
)

// Sentinel errors shared across ports and rooms.
var (
	// ErrTransient marks a recoverable collaborator failure (timeout,
	// connection reset). The step executor retries these up to policy limits.
	ErrTransient = errors.New("transient collaborator failure")

	// ErrNotFound is returned by Storage when a key is absent.
	ErrNotFound = errors.New("object not found")
)

// Message is one turn of an LLM conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLM is the language model interface. Used only inside room
// implementations, never by the orchestrator core.
type LLM interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// VectorDoc is a document to index for similarity search.
type VectorDoc struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// VectorHit is one similarity search result.
type VectorHit struct {
	ID         string
	Content    string
	Similarity float32
	Metadata   map[string]string
}

// VectorSearch is the similarity search interface. Used only inside room
// implementations.
type VectorSearch interface {
	Index(ctx context.Context, collection string, docs []VectorDoc) error
	Search(ctx context.Context, collection, query string, k int) ([]VectorHit, error)
}

// Storage is the persistent JSON object store used by rooms for session
// continuity. The core does not persist run state itself.
type Storage interface {
	PutJSON(ctx context.Context, bucket, key string, obj any) error
	GetJSON(ctx context.Context, bucket, key string, out any) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// Clock provides timestamps, injectable for testability.
type Clock interface {
	Now() time.Time
	NowISO() string
}

// IDFactory generates opaque identifiers.
type IDFactory interface {
	NewID(prefix string) string
}

// Metrics is a fire-and-forget metrics sink.
type Metrics interface {
	Incr(name string, tags map[string]string)
	Timing(name string, ms float64, tags map[string]string)
}

// RoomInput is the input handed to a room capability.
type RoomInput struct {
	// SessionStateRef correlates the run to externally persisted session
	// state. Opaque to the core.
	SessionStateRef string

	// Payload is the caller-supplied payload for this room, if any.
	Payload map[string]any

	// State is a read-only view of the merged outputs of prior rooms.
	// Rooms must not mutate it; new outputs are returned from Serve.
	State map[string]any
}

// Room is one unit of session logic with a fixed input/output contract.
// Serve returns a legacy-shaped map carrying at least a display text field
// and a next-action signal; arbitrary additional fields pass through
// opaquely.
type Room interface {
	ID() string
	Serve(ctx context.Context, in RoomInput) (map[string]any, error)
}

// RoomRegistry resolves room identifiers to capabilities.
type RoomRegistry interface {
	Lookup(id string) (Room, bool)
	Available() []string
}

// Ports bundles all collaborator handles needed for a run. Owned by the
// caller, borrowed by the core.
type Ports struct {
	LLM     LLM
	Vector  VectorSearch
	Storage Storage
	Clock   Clock
	IDs     IDFactory
	Metrics Metrics
	Rooms   RoomRegistry
	Log     *logging.Logger
}
