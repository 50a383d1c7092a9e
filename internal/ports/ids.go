package ports

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDFactory implements IDFactory using random UUIDs.
type UUIDFactory struct{}

// NewUUIDFactory creates a UUID-backed ID factory.
func NewUUIDFactory() *UUIDFactory {
	return &UUIDFactory{}
}

// NewID returns "<prefix>-<uuid>". An empty prefix defaults to "run".
func (f *UUIDFactory) NewID(prefix string) string {
	if prefix == "" {
		prefix = "run"
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
