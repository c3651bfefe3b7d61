package journal

import (
	"context"
	"fmt"
)

// HighestSequenceNr returns the largest sequence number of persistenceID
// above fromSeqNr, or 0 when there is none. Deleted rows still count, and in
// compatibility mode so does the recorded deletion mark.
func (j *Journal) HighestSequenceNr(ctx context.Context, persistenceID string, fromSeqNr int64) (int64, error) {
	persistenceID = normalizeID(persistenceID)

	highest, err := j.store.HighestSequenceNr(ctx, j.store.DB(), persistenceID, fromSeqNr, j.cfg.CompatibilityMode)
	if err != nil {
		return 0, fmt.Errorf("highest sequence nr: %w", err)
	}
	return highest, nil
}
