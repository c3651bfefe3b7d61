package journal

import (
	"context"
	"database/sql"

	"github.com/roach88/journal/internal/store"
)

// Delete removes the events of persistenceID up to maxSeqNr.
//
// Rows are first flagged deleted. The highest flagged row is kept as the
// high-water mark so HighestSequenceNr does not regress; everything below
// it (and within maxSeqNr) is purged unless logical delete is configured.
// In compatibility mode the mark is also recorded in the metadata table.
//
// Everything runs in one transaction. Repeating a Delete with the same
// bound changes nothing.
func (j *Journal) Delete(ctx context.Context, persistenceID string, maxSeqNr int64) error {
	persistenceID = normalizeID(persistenceID)

	tx, err := j.store.BeginTx(ctx)
	if err != nil {
		j.logger.Error("delete failed: begin transaction",
			"persistence_id", persistenceID,
			"max_seq", maxSeqNr,
			"error", err,
		)
		return newDeleteError(persistenceID, maxSeqNr, err)
	}

	if err := j.deleteInTx(ctx, tx, persistenceID, maxSeqNr); err != nil {
		rollback(j.logger, tx, "delete")
		j.logger.Error("delete failed",
			"persistence_id", persistenceID,
			"max_seq", maxSeqNr,
			"error", err,
		)
		return newDeleteError(persistenceID, maxSeqNr, err)
	}

	if err := tx.Commit(); err != nil {
		j.logger.Error("delete failed: commit",
			"persistence_id", persistenceID,
			"max_seq", maxSeqNr,
			"error", err,
		)
		return newDeleteError(persistenceID, maxSeqNr, err)
	}
	return nil
}

func (j *Journal) deleteInTx(ctx context.Context, tx *sql.Tx, persistenceID string, maxSeqNr int64) error {
	if err := j.store.MarkDeleted(ctx, tx, persistenceID, maxSeqNr); err != nil {
		return err
	}

	marked, err := j.store.MaxMarkedDeleted(ctx, tx, persistenceID)
	if err != nil {
		return err
	}

	compat := j.cfg.CompatibilityMode
	if compat && marked > 0 {
		if err := j.store.InsertMetadata(ctx, tx, store.MetadataRow{PersistenceID: persistenceID, SequenceNr: marked}); err != nil {
			return err
		}
	}

	if !j.cfg.LogicalDelete {
		purged, err := j.store.PurgeRows(ctx, tx, persistenceID, maxSeqNr, marked)
		if err != nil {
			return err
		}
		j.logger.Debug("purged rows",
			"persistence_id", persistenceID,
			"rows", purged,
			"kept_from", marked,
		)
	}

	if compat {
		if err := j.store.PurgeMetadata(ctx, tx, persistenceID, marked); err != nil {
			return err
		}
	}
	return nil
}
