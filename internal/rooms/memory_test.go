package rooms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

func newMemoryRoomForTest(t *testing.T) (*MemoryRoom, *ports.MemoryStorage, *ports.ChromemSearch) {
	t.Helper()
	store := ports.NewMemoryStorage()
	vector, err := ports.NewChromemSearch("", nil)
	require.NoError(t, err)
	return NewMemoryRoom(store, vector, nil), store, vector
}

func TestMemoryRoomCapturesWalk(t *testing.T) {
	room, store, _ := newMemoryRoomForTest(t)
	ctx := context.Background()

	out, err := room.Serve(ctx, ports.RoomInput{
		SessionStateRef: "session-1",
		State: map[string]any{
			"entry_opening": "a calm evening walk",
			"tone_label":    "calm",
			"protocol_id":   ProtocolGeneralWalk,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, true, out["memory_captured"])
	assert.Equal(t, "continue", out["next_action"])
	assert.Equal(t, ProtocolGeneralWalk, out["capture_protocol"])

	var record map[string]any
	require.NoError(t, store.GetJSON(ctx, "memories", "session-1", &record))
	assert.Equal(t, "a calm evening walk", record["opening"])
	assert.Equal(t, "calm", record["tone_label"])
}

func TestMemoryRoomRecallsSimilarWalks(t *testing.T) {
	room, _, vector := newMemoryRoomForTest(t)
	ctx := context.Background()

	prior := []ports.VectorDoc{
		{ID: "session-old-1", Content: "a calm evening by the water"},
		{ID: "session-old-2", Content: "rushed morning with too much to do"},
	}
	require.NoError(t, vector.Index(ctx, "walk_memories", prior))

	out, err := room.Serve(ctx, ports.RoomInput{
		SessionStateRef: "session-new",
		State:           map[string]any{"entry_opening": "another calm evening"},
	})
	require.NoError(t, err)

	recalled, ok := out["recalled_walks"].([]string)
	require.True(t, ok)
	require.NotEmpty(t, recalled)
	assert.Equal(t, "a calm evening by the water", recalled[0])

	display, _ := out["display_text"].(string)
	assert.Contains(t, display, "echoes")
}

func TestMemoryRoomExcludesOwnCapture(t *testing.T) {
	room, _, vector := newMemoryRoomForTest(t)
	ctx := context.Background()

	require.NoError(t, vector.Index(ctx, "walk_memories", []ports.VectorDoc{
		{ID: "session-1", Content: "the exact same opening"},
	}))

	out, err := room.Serve(ctx, ports.RoomInput{
		SessionStateRef: "session-1",
		State:           map[string]any{"entry_opening": "the exact same opening"},
	})
	require.NoError(t, err)

	recalled, ok := out["recalled_walks"].([]string)
	require.True(t, ok)
	assert.Empty(t, recalled)
}

func TestMemoryRoomEmptyOpeningSkipsRecall(t *testing.T) {
	room, _, _ := newMemoryRoomForTest(t)

	out, err := room.Serve(context.Background(), ports.RoomInput{
		SessionStateRef: "session-1",
		State:           map[string]any{},
	})
	require.NoError(t, err)

	recalled, ok := out["recalled_walks"].([]string)
	require.True(t, ok)
	assert.Empty(t, recalled)
}

func TestExitRoomSummarizesWalk(t *testing.T) {
	room := NewExitRoom(nil)

	out, err := room.Serve(context.Background(), ports.RoomInput{
		SessionStateRef: "session-1",
		State: map[string]any{
			"protocol_id":     ProtocolClearingEntry,
			"memory_captured": true,
		},
	})
	require.NoError(t, err)

	display, _ := out["display_text"].(string)
	assert.Contains(t, display, ProtocolClearingEntry)
	assert.Contains(t, display, "capture")
	assert.Equal(t, "continue", out["next_action"])
	assert.Equal(t, true, out["walk_closed"])
}

func TestExitRoomBareWalk(t *testing.T) {
	room := NewExitRoom(nil)

	out, err := room.Serve(context.Background(), ports.RoomInput{SessionStateRef: "session-1"})
	require.NoError(t, err)

	display, _ := out["display_text"].(string)
	assert.Equal(t, "The walk is complete."+completionMarker, display)
}

func TestDefaultRegistryServesCanonicalSequence(t *testing.T) {
	vector, err := ports.NewChromemSearch("", nil)
	require.NoError(t, err)
	p := &ports.Ports{
		LLM:     ports.NewTemplateLLM(),
		Vector:  vector,
		Storage: ports.NewMemoryStorage(),
	}

	registry := NewDefaultRegistry(p)

	for _, id := range CanonicalSequence() {
		room, ok := registry.Lookup(id)
		require.True(t, ok, "room %s missing", id)
		assert.Equal(t, id, room.ID())
	}
	assert.Len(t, registry.Available(), len(CanonicalSequence()))
}
