package rooms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

func TestEntryRoomReflectsVerbatim(t *testing.T) {
	store := ports.NewMemoryStorage()
	room := NewEntryRoom(store, nil)

	out, err := room.Serve(context.Background(), ports.RoomInput{
		SessionStateRef: "session-1",
		Payload:         map[string]any{"text": "I keep circling the same thought"},
	})
	require.NoError(t, err)

	assert.Equal(t, `You said: "I keep circling the same thought"`+completionMarker, out["display_text"])
	assert.Equal(t, "continue", out["next_action"])
	assert.Equal(t, "I keep circling the same thought", out["entry_opening"])
	assert.Equal(t, "session-1", out["session_state_ref"])

	// The opening is persisted for later rooms and later walks.
	var record map[string]any
	require.NoError(t, store.GetJSON(context.Background(), "sessions", "session-1", &record))
	assert.Equal(t, "I keep circling the same thought", record["opening"])
}

func TestEntryRoomConsentDeclined(t *testing.T) {
	room := NewEntryRoom(ports.NewMemoryStorage(), nil)

	out, err := room.Serve(context.Background(), ports.RoomInput{
		SessionStateRef: "session-1",
		Payload:         map[string]any{"consent": false, "text": "hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, "consent_declined", out["_decline_reason"])
	assert.Equal(t, "later", out["next_action"])
}

func TestEntryRoomPaceMapping(t *testing.T) {
	tests := []struct {
		pace string
		want string
	}{
		{pace: PaceNow, want: "continue"},
		{pace: PaceHold, want: "hold"},
		{pace: PaceSoftHold, want: "hold"},
		{pace: PaceLater, want: "later"},
		{pace: "later", want: "later"},
		{pace: "", want: "continue"},
	}

	for _, tt := range tests {
		t.Run("pace "+tt.pace, func(t *testing.T) {
			room := NewEntryRoom(nil, nil)
			out, err := room.Serve(context.Background(), ports.RoomInput{
				SessionStateRef: "session-1",
				Payload:         map[string]any{"text": "hi", "pace": tt.pace},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out["next_action"])
		})
	}
}

func TestEntryRoomSilence(t *testing.T) {
	room := NewEntryRoom(nil, nil)

	out, err := room.Serve(context.Background(), ports.RoomInput{SessionStateRef: "session-1"})
	require.NoError(t, err)

	assert.Equal(t, `You said: "(silence)"`+completionMarker, out["display_text"])
}
