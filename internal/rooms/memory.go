package rooms

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

// memoryCollection is the vector collection holding walk captures.
const memoryCollection = "walk_memories"

// memoryRecallLimit bounds how many prior captures a recall surfaces.
const memoryRecallLimit = 3

// memoryRecord is the persisted shape of one walk capture.
type memoryRecord struct {
	SessionStateRef string `json:"session_state_ref"`
	Opening         string `json:"opening"`
	ToneLabel       string `json:"tone_label"`
	ResidueLabel    string `json:"residue_label"`
	ProtocolID      string `json:"protocol_id"`
}

// MemoryRoom captures the walk so far into storage and the vector index,
// then recalls similar prior captures. Capture is verbatim: what was said
// and which protocol ran, nothing inferred.
type MemoryRoom struct {
	store  ports.Storage
	vector ports.VectorSearch
	log    *logging.Logger
}

// NewMemoryRoom creates a memory room over storage and vector search.
func NewMemoryRoom(store ports.Storage, vector ports.VectorSearch, log *logging.Logger) *MemoryRoom {
	if log == nil {
		log = logging.NewNop()
	}
	return &MemoryRoom{store: store, vector: vector, log: log.Named("memory_room")}
}

// ID returns the room identifier.
func (r *MemoryRoom) ID() string {
	return MemoryRoomID
}

// Serve persists the walk capture and surfaces similar prior walks. Storage
// or index failures surface as errors so the executor's retry and halt
// handling applies; partial captures are not merged.
func (r *MemoryRoom) Serve(ctx context.Context, in ports.RoomInput) (map[string]any, error) {
	record := memoryRecord{
		SessionStateRef: in.SessionStateRef,
	}
	record.Opening, _ = in.State["entry_opening"].(string)
	record.ToneLabel, _ = in.State["tone_label"].(string)
	record.ResidueLabel, _ = in.State["residue_label"].(string)
	record.ProtocolID, _ = in.State["protocol_id"].(string)

	if r.store != nil && in.SessionStateRef != "" {
		if err := r.store.PutJSON(ctx, "memories", in.SessionStateRef, record); err != nil {
			return nil, fmt.Errorf("persisting walk capture: %w", err)
		}
	}

	recalled := []string{}
	if r.vector != nil && record.Opening != "" {
		hits, err := r.vector.Search(ctx, memoryCollection, record.Opening, memoryRecallLimit)
		if err != nil {
			return nil, fmt.Errorf("recalling prior walks: %w", err)
		}
		for _, h := range hits {
			if h.ID == in.SessionStateRef {
				continue
			}
			recalled = append(recalled, h.Content)
		}

		doc := ports.VectorDoc{
			ID:      in.SessionStateRef,
			Content: record.Opening,
			Metadata: map[string]string{
				"tone_label":  record.ToneLabel,
				"protocol_id": record.ProtocolID,
			},
		}
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("capture-%d", len(record.Opening))
		}
		if err := r.vector.Index(ctx, memoryCollection, []ports.VectorDoc{doc}); err != nil {
			return nil, fmt.Errorf("indexing walk capture: %w", err)
		}
	}

	display := "This walk has been captured."
	if len(recalled) > 0 {
		display = fmt.Sprintf("This walk has been captured. It echoes %d earlier walk(s): %s.",
			len(recalled), strings.Join(recalled, "; "))
	}

	r.log.Debug(ctx, "memory served",
		zap.Int("recalled", len(recalled)),
		zap.String("protocol_id", record.ProtocolID),
	)

	return map[string]any{
		"display_text":     display + completionMarker,
		"next_action":      "continue",
		"memory_captured":  true,
		"recalled_walks":   recalled,
		"capture_protocol": record.ProtocolID,
	}, nil
}
