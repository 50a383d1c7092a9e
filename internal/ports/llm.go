package ports

import (
	"context"
	"fmt"
	"strings"
)

// TemplateLLM implements LLM with a deterministic template completer so a
// walk runs offline. Rooms treat the call as their sole suspension point; a
// real provider adapter slots in behind the same interface.
type TemplateLLM struct{}

// NewTemplateLLM creates the offline completer.
func NewTemplateLLM() *TemplateLLM {
	return &TemplateLLM{}
}

// Complete returns a deterministic rendering of the last user message,
// honoring context cancellation.
func (l *TemplateLLM) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}

	var last string
	for _, m := range messages {
		if m.Role == "user" {
			last = m.Content
		}
	}
	if last == "" {
		return "", fmt.Errorf("no user message to complete")
	}

	return strings.TrimSpace(last), nil
}
