package rooms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

type failingLLM struct{ err error }

func (l failingLLM) Complete(context.Context, []ports.Message) (string, error) {
	return "", l.err
}

func TestProtocolRoomDeliversSuggestedProtocol(t *testing.T) {
	room := NewProtocolRoom(ports.NewTemplateLLM(), nil)

	out, err := room.Serve(context.Background(), ports.RoomInput{
		SessionStateRef: "session-1",
		State:           map[string]any{"suggested_protocol": ProtocolResourcingMiniWalk},
	})
	require.NoError(t, err)

	assert.Equal(t, ProtocolResourcingMiniWalk, out["protocol_id"])
	assert.Equal(t, "delivered", out["protocol_outcome"])
	assert.Equal(t, "continue", out["next_action"])

	display, ok := out["display_text"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(display, completionMarker))
	assert.Contains(t, display, "steady")
}

func TestProtocolRoomPayloadOverridesSuggestion(t *testing.T) {
	room := NewProtocolRoom(ports.NewTemplateLLM(), nil)

	out, err := room.Serve(context.Background(), ports.RoomInput{
		SessionStateRef: "session-1",
		Payload:         map[string]any{"protocol_id": ProtocolClearingEntry},
		State:           map[string]any{"suggested_protocol": ProtocolIntegrationPause},
	})
	require.NoError(t, err)

	assert.Equal(t, ProtocolClearingEntry, out["protocol_id"])
}

func TestProtocolRoomUnknownProtocolFallsBack(t *testing.T) {
	room := NewProtocolRoom(ports.NewTemplateLLM(), nil)

	out, err := room.Serve(context.Background(), ports.RoomInput{
		SessionStateRef: "session-1",
		Payload:         map[string]any{"protocol_id": "no_such_protocol"},
	})
	require.NoError(t, err)

	assert.Equal(t, ProtocolGeneralWalk, out["protocol_id"])
}

func TestProtocolRoomReportsTokenUsage(t *testing.T) {
	room := NewProtocolRoom(ports.NewTemplateLLM(), nil)

	out, err := room.Serve(context.Background(), ports.RoomInput{
		SessionStateRef: "session-1",
		State:           map[string]any{"suggested_protocol": ProtocolPacingAdjustment},
	})
	require.NoError(t, err)

	usage, ok := out["_usage"].(map[string]any)
	require.True(t, ok)
	tokens, ok := usage["tokens"].(float64)
	require.True(t, ok)
	assert.Greater(t, tokens, float64(0))
}

func TestProtocolRoomLLMFailureSurfaces(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	room := NewProtocolRoom(failingLLM{err: wantErr}, nil)

	_, err := room.Serve(context.Background(), ports.RoomInput{SessionStateRef: "session-1"})
	assert.ErrorIs(t, err, wantErr)
}
