package rooms

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
	"github.com/fyrsmithlabs/hallwayd/internal/ports"
)

// ExitRoom closes the walk with a factual summary of what ran. It never
// interprets or advises; closure is a statement of record.
type ExitRoom struct {
	log *logging.Logger
}

// NewExitRoom creates an exit room.
func NewExitRoom(log *logging.Logger) *ExitRoom {
	if log == nil {
		log = logging.NewNop()
	}
	return &ExitRoom{log: log.Named("exit_room")}
}

// ID returns the room identifier.
func (r *ExitRoom) ID() string {
	return ExitRoomID
}

// Serve summarizes the walk from merged state: what protocol ran, whether a
// capture was made, and that the walk is closed.
func (r *ExitRoom) Serve(ctx context.Context, in ports.RoomInput) (map[string]any, error) {
	protocolID, _ := in.State["protocol_id"].(string)
	captured, _ := in.State["memory_captured"].(bool)

	display := "The walk is complete."
	if protocolID != "" {
		display = fmt.Sprintf("The walk is complete. Protocol %s was delivered.", protocolID)
	}
	if captured {
		display += " A capture of this walk was kept."
	}

	r.log.Debug(ctx, "exit served")

	return map[string]any{
		"display_text": display + completionMarker,
		"next_action":  "continue",
		"walk_closed":  true,
	}, nil
}
