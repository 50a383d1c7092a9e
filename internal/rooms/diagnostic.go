package rooms

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

// Protocol identifiers the diagnostic room can suggest.
const (
	ProtocolResourcingMiniWalk = "resourcing_mini_walk"
	ProtocolClearingEntry      = "clearing_entry"
	ProtocolPacingAdjustment   = "pacing_adjustment"
	ProtocolIntegrationPause   = "integration_pause"
	ProtocolGeneralWalk        = "general_walk"
)

// diagnosticSignals are the captured tone/residue/readiness labels.
// Capture-only: explicit markers in the text, no sentiment analysis.
type diagnosticSignals struct {
	Tone      string
	Residue   string
	Readiness string
}

// DiagnosticRoom senses tone and residue from the visitor's words, assesses
// readiness, and maps the signals to a suggested protocol. Every rule is
// deterministic.
type DiagnosticRoom struct {
	log *logging.Logger
}

// NewDiagnosticRoom creates a diagnostic room.
func NewDiagnosticRoom(log *logging.Logger) *DiagnosticRoom {
	if log == nil {
		log = logging.NewNop()
	}
	return &DiagnosticRoom{log: log.Named("diagnostic_room")}
}

// ID returns the room identifier.
func (r *DiagnosticRoom) ID() string {
	return DiagnosticRoomID
}

// Serve runs sensing, readiness assessment and protocol mapping over the
// visitor's text (the payload text, falling back to the entry room's
// recorded opening).
func (r *DiagnosticRoom) Serve(ctx context.Context, in ports.RoomInput) (map[string]any, error) {
	text := payloadString(in.Payload, "text", "")
	if text == "" {
		text, _ = in.State["entry_opening"].(string)
	}

	signals := senseToneAndResidue(text, in.Payload)
	readiness := assessReadiness(signals)
	protocolID, rationale := mapToProtocol(signals, readiness)

	display := fmt.Sprintf("Sensed tone %q, residue %q; readiness %s. Suggested protocol: %s (%s).",
		signals.Tone, signals.Residue, readiness, protocolID, rationale) + completionMarker

	r.log.Debug(ctx, "diagnostic served",
		zap.String("tone", signals.Tone),
		zap.String("protocol", protocolID),
	)

	return map[string]any{
		"display_text":       display,
		"next_action":        "continue",
		"tone_label":         signals.Tone,
		"residue_label":      signals.Residue,
		"readiness_state":    readiness,
		"suggested_protocol": protocolID,
	}, nil
}

// senseToneAndResidue captures explicit signal markers. Payload-provided
// labels win over text scanning.
func senseToneAndResidue(text string, payload map[string]any) diagnosticSignals {
	signals := diagnosticSignals{
		Tone:    "unspecified",
		Residue: "unspecified",
	}

	if v, ok := payload["tone_label"].(string); ok && v != "" {
		signals.Tone = v
	}
	if v, ok := payload["residue_label"].(string); ok && v != "" {
		signals.Residue = v
	}
	if v, ok := payload["readiness_state"].(string); ok && validReadiness(v) {
		signals.Readiness = v
	}

	lower := strings.ToLower(text)
	if signals.Tone == "unspecified" {
		switch {
		case strings.Contains(lower, "overwhelm"):
			signals.Tone = "overwhelm"
		case strings.Contains(lower, "urgen"):
			signals.Tone = "urgency"
		case strings.Contains(lower, "calm"), strings.Contains(lower, "peaceful"):
			signals.Tone = "calm"
		case strings.Contains(lower, "excite"):
			signals.Tone = "excitement"
		case strings.Contains(lower, "worr"):
			signals.Tone = "worry"
		}
	}
	if signals.Residue == "unspecified" {
		switch {
		case strings.Contains(lower, "still"), strings.Contains(lower, "again"):
			signals.Residue = "unresolved_previous"
		case strings.Contains(lower, "tried"), strings.Contains(lower, "attempted"):
			signals.Residue = "previous_attempts"
		case strings.Contains(lower, "wait"), strings.Contains(lower, "hold"):
			signals.Residue = "deferring"
		}
	}

	return signals
}

// assessReadiness maps signals to a readiness state; an explicit state wins.
func assessReadiness(signals diagnosticSignals) string {
	if signals.Readiness != "" {
		return signals.Readiness
	}

	switch signals.Tone {
	case "overwhelm", "worry":
		return PaceHold
	case "urgency", "calm", "excitement":
		return PaceNow
	}

	switch signals.Residue {
	case "unresolved_previous":
		return PaceHold
	case "previous_attempts", "deferring":
		return PaceLater
	}

	return PaceNow
}

// mapToProtocol selects a suggested protocol with a one-line rationale.
func mapToProtocol(signals diagnosticSignals, readiness string) (string, string) {
	switch signals.Tone {
	case "overwhelm":
		return ProtocolResourcingMiniWalk, "tone overwhelm needs resourcing"
	case "urgency":
		return ProtocolClearingEntry, "tone urgency needs clearing for focus"
	case "worry":
		return ProtocolPacingAdjustment, "tone worry needs pacing adjustment"
	}

	switch signals.Residue {
	case "unresolved_previous":
		return ProtocolIntegrationPause, "unresolved residue needs an integration pause"
	case "previous_attempts":
		return ProtocolClearingEntry, "previous attempts need a fresh start"
	case "deferring":
		return ProtocolPacingAdjustment, "deferring residue needs pacing adjustment"
	}

	switch readiness {
	case PaceHold, PaceSoftHold:
		return ProtocolIntegrationPause, "readiness hold needs an integration pause"
	case PaceLater:
		return ProtocolPacingAdjustment, "readiness later needs pacing adjustment"
	}

	return ProtocolGeneralWalk, "no specific signals captured"
}

func validReadiness(state string) bool {
	switch state {
	case PaceNow, PaceHold, PaceLater, PaceSoftHold:
		return true
	}
	return false
}
