package rooms

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

func serveDiagnostic(t *testing.T, payload, state map[string]any) map[string]any {
	t.Helper()
	room := NewDiagnosticRoom(nil)
	out, err := room.Serve(context.Background(), ports.RoomInput{
		SessionStateRef: "session-1",
		Payload:         payload,
		State:           state,
	})
	require.NoError(t, err)
	return out
}

func TestDiagnosticToneDetection(t *testing.T) {
	tests := []struct {
		text     string
		tone     string
		protocol string
	}{
		{text: "I am completely overwhelmed", tone: "overwhelm", protocol: ProtocolResourcingMiniWalk},
		{text: "this feels urgent", tone: "urgency", protocol: ProtocolClearingEntry},
		{text: "feeling calm about it", tone: "calm", protocol: ProtocolGeneralWalk},
		{text: "so excited to start", tone: "excitement", protocol: ProtocolGeneralWalk},
		{text: "worried it will break", tone: "worry", protocol: ProtocolPacingAdjustment},
	}

	for _, tt := range tests {
		t.Run(tt.tone, func(t *testing.T) {
			out := serveDiagnostic(t, map[string]any{"text": tt.text}, nil)
			assert.Equal(t, tt.tone, out["tone_label"])
			assert.Equal(t, tt.protocol, out["suggested_protocol"])
		})
	}
}

func TestDiagnosticResidueDetection(t *testing.T) {
	tests := []struct {
		text     string
		residue  string
		protocol string
	}{
		{text: "it is happening again", residue: "unresolved_previous", protocol: ProtocolIntegrationPause},
		{text: "I tried this before", residue: "previous_attempts", protocol: ProtocolClearingEntry},
		{text: "maybe I should wait", residue: "deferring", protocol: ProtocolPacingAdjustment},
	}

	for _, tt := range tests {
		t.Run(tt.residue, func(t *testing.T) {
			out := serveDiagnostic(t, map[string]any{"text": tt.text}, nil)
			assert.Equal(t, tt.residue, out["residue_label"])
			assert.Equal(t, tt.protocol, out["suggested_protocol"])
		})
	}
}

func TestDiagnosticReadinessRules(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		readiness string
	}{
		{name: "overwhelm holds", text: "overwhelmed", readiness: PaceHold},
		{name: "worry holds", text: "worried", readiness: PaceHold},
		{name: "urgency is now", text: "urgent", readiness: PaceNow},
		{name: "calm is now", text: "calm", readiness: PaceNow},
		{name: "unresolved residue holds", text: "still here", readiness: PaceHold},
		{name: "previous attempts defer", text: "tried before", readiness: PaceLater},
		{name: "no signals default to now", text: "a plain sentence", readiness: PaceNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := serveDiagnostic(t, map[string]any{"text": tt.text}, nil)
			assert.Equal(t, tt.readiness, out["readiness_state"])
		})
	}
}

func TestDiagnosticExplicitLabelsWin(t *testing.T) {
	out := serveDiagnostic(t, map[string]any{
		"text":            "completely overwhelmed",
		"tone_label":      "calm",
		"readiness_state": PaceLater,
	}, nil)

	assert.Equal(t, "calm", out["tone_label"])
	assert.Equal(t, PaceLater, out["readiness_state"])
}

func TestDiagnosticFallsBackToEntryOpening(t *testing.T) {
	out := serveDiagnostic(t, nil, map[string]any{"entry_opening": "this is urgent"})

	assert.Equal(t, "urgency", out["tone_label"])
	assert.Equal(t, ProtocolClearingEntry, out["suggested_protocol"])
}

func TestDiagnosticOutputShape(t *testing.T) {
	out := serveDiagnostic(t, map[string]any{"text": "hello"}, nil)

	display, ok := out["display_text"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(display, completionMarker))
	assert.Equal(t, "continue", out["next_action"])
}
