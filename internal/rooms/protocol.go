package rooms

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

// protocolPrompts are the canned walk instructions per protocol. The LLM
// port personalizes the delivery; selection itself is rule-based and never
// delegated to the model.
var protocolPrompts = map[string]string{
	ProtocolResourcingMiniWalk: "Pause. Name three things that are steady right now. Let them carry some of the weight.",
	ProtocolClearingEntry:      "Before going further, set down what you arrived carrying. Name it once, then leave it at the door.",
	ProtocolPacingAdjustment:   "Nothing here needs to happen at full speed. Choose the pace that fits, and keep only that pace.",
	ProtocolIntegrationPause:   "Something from before is still settling. Give it a moment of room before adding anything new.",
	ProtocolGeneralWalk:        "Walk at your own pace. Notice what is true right now, and let that be enough to start.",
}

// ProtocolRoom delivers the walk for the protocol the diagnostic room
// suggested. The protocol choice is deterministic; the LLM port only
// renders the delivery and its usage is reported back for budget tracking.
type ProtocolRoom struct {
	llm ports.LLM
	log *logging.Logger
}

// NewProtocolRoom creates a protocol room over the given LLM port.
func NewProtocolRoom(llm ports.LLM, log *logging.Logger) *ProtocolRoom {
	if log == nil {
		log = logging.NewNop()
	}
	return &ProtocolRoom{llm: llm, log: log.Named("protocol_room")}
}

// ID returns the room identifier.
func (r *ProtocolRoom) ID() string {
	return ProtocolRoomID
}

// Serve resolves the protocol (payload override wins over the diagnostic
// suggestion), renders its delivery through the LLM port, and reports token
// usage for the budget tracker.
func (r *ProtocolRoom) Serve(ctx context.Context, in ports.RoomInput) (map[string]any, error) {
	protocolID := payloadString(in.Payload, "protocol_id", "")
	if protocolID == "" {
		protocolID, _ = in.State["suggested_protocol"].(string)
	}
	prompt, ok := protocolPrompts[protocolID]
	if !ok {
		protocolID = ProtocolGeneralWalk
		prompt = protocolPrompts[ProtocolGeneralWalk]
	}

	delivery, err := r.llm.Complete(ctx, []ports.Message{
		{Role: "system", Content: "Deliver the following walk instruction plainly, without adding interpretation."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("rendering protocol %s: %w", protocolID, err)
	}
	delivery = strings.TrimSpace(delivery)
	if delivery == "" {
		delivery = prompt
	}

	r.log.Debug(ctx, "protocol served", zap.String("protocol_id", protocolID))

	return map[string]any{
		"display_text":     delivery + completionMarker,
		"next_action":      "continue",
		"protocol_id":      protocolID,
		"protocol_outcome": "delivered",
		"_usage": map[string]any{
			"tokens": estimateTokens(prompt) + estimateTokens(delivery),
		},
	}, nil
}

// estimateTokens approximates token usage as whitespace-separated words.
// Good enough for budget accounting against coarse limits.
func estimateTokens(text string) float64 {
	return float64(len(strings.Fields(text)))
}
