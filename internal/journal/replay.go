package journal

import (
	"context"
	"fmt"
	"iter"
	"math"
	"sync/atomic"

	"github.com/roach88/journal/internal/serializer"
)

// Replay returns the live events of persistenceID with
// fromSeqNr <= SequenceNr <= toSeqNr in ascending order, at most maxEvents
// of them. Above math.MaxInt32 there is no cap; maxEvents <= 0 yields nothing.
//
// The query runs before Replay returns; events are deserialized as the
// sequence is ranged over. A row that fails to deserialize yields a failed
// Result and iteration continues. The sequence can be ranged over once.
func (j *Journal) Replay(ctx context.Context, persistenceID string, fromSeqNr, toSeqNr, maxEvents int64) (iter.Seq[Result[serializer.Event]], error) {
	if maxEvents <= 0 {
		return func(func(Result[serializer.Event]) bool) {}, nil
	}

	persistenceID = normalizeID(persistenceID)

	limit := maxEvents
	if maxEvents > math.MaxInt32 {
		limit = -1
	}

	rows, err := j.store.ReadRange(ctx, j.store.DB(), persistenceID, fromSeqNr, toSeqNr, limit)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", persistenceID, err)
	}

	var used atomic.Bool
	return func(yield func(Result[serializer.Event]) bool) {
		if used.Swap(true) {
			return
		}
		for _, row := range rows {
			ev, err := j.serializer.Deserialize(row)
			r := Ok(ev)
			if err != nil {
				r = Fail[serializer.Event](newDeserializationError(row, err))
			}
			if !yield(r) {
				return
			}
		}
	}, nil
}
