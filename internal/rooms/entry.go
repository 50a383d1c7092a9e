package rooms

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

// Pace states a visitor can declare on entry, mapped to next-action
// signals.
const (
	PaceNow      = "NOW"
	PaceHold     = "HOLD"
	PaceLater    = "LATER"
	PaceSoftHold = "SOFT_HOLD"
)

// EntryRoom opens a walk: it reflects the visitor's words verbatim, honors
// consent and declared pace, and records the opening to session storage.
type EntryRoom struct {
	store ports.Storage
	log   *logging.Logger
}

// NewEntryRoom creates an entry room backed by session storage.
func NewEntryRoom(store ports.Storage, log *logging.Logger) *EntryRoom {
	if log == nil {
		log = logging.NewNop()
	}
	return &EntryRoom{store: store, log: log.Named("entry_room")}
}

// ID returns the room identifier.
func (r *EntryRoom) ID() string {
	return EntryRoomID
}

// Serve reflects the visitor's opening verbatim. Consent explicitly set to
// false declines the walk; a declared pace of HOLD/SOFT_HOLD or LATER maps
// to the matching next action.
func (r *EntryRoom) Serve(ctx context.Context, in ports.RoomInput) (map[string]any, error) {
	if consent, ok := in.Payload["consent"].(bool); ok && !consent {
		return map[string]any{
			"display_text":    "Consent was not given; the walk will not begin." + completionMarker,
			"next_action":     "later",
			"_decline_reason": "consent_declined",
		}, nil
	}

	opening := payloadString(in.Payload, "text", "(silence)")
	nextAction := paceToNextAction(payloadString(in.Payload, "pace", PaceNow))

	// Verbatim reflection: no paraphrase, no interpretation.
	display := fmt.Sprintf("You said: %q", opening) + completionMarker

	if r.store != nil && in.SessionStateRef != "" {
		record := map[string]any{
			"session_state_ref": in.SessionStateRef,
			"opening":           opening,
		}
		if err := r.store.PutJSON(ctx, "sessions", in.SessionStateRef, record); err != nil {
			return nil, fmt.Errorf("recording session opening: %w", err)
		}
	}

	r.log.Debug(ctx, "entry served", zap.String("next_action", nextAction))

	return map[string]any{
		"display_text":      display,
		"next_action":       nextAction,
		"session_state_ref": in.SessionStateRef,
		"entry_opening":     opening,
	}, nil
}

func paceToNextAction(pace string) string {
	switch strings.ToUpper(pace) {
	case PaceHold, PaceSoftHold:
		return "hold"
	case PaceLater:
		return "later"
	default:
		return "continue"
	}
}
