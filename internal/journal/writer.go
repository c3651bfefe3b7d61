package journal

import "github.com/google/uuid"

// newWriterUUID returns a time-sortable UUIDv7, so rows from a later
// journal instance sort after rows from an earlier one.
//
// Panics if UUID generation fails (should never happen in practice).
func newWriterUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
