package journal

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/roach88/journal/internal/config"
	"github.com/roach88/journal/internal/store"
)

// persister writes merged batches to the store.
type persister struct {
	store  *store.Store
	cfg    config.Config
	logger *slog.Logger
}

// persist writes rows atomically. A single row is inserted without an
// explicit transaction; larger batches run in one transaction at the
// dialect's isolation level. Failures are returned as PersistFailure and
// never retried.
func (p *persister) persist(ctx context.Context, rows []store.JournalRow) error {
	switch len(rows) {
	case 0:
		return nil
	case 1:
		if err := p.store.InsertRow(ctx, p.store.DB(), rows[0]); err != nil {
			p.logger.Error("persist failed", "rows", 1, "error", err)
			return newPersistError(1, err)
		}
		return nil
	}

	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		p.logger.Error("persist failed: begin transaction", "rows", len(rows), "error", err)
		return newPersistError(len(rows), err)
	}

	if err := p.insert(ctx, tx, rows); err != nil {
		rollback(p.logger, tx, "persist")
		p.logger.Error("persist failed", "rows", len(rows), "error", err)
		return newPersistError(len(rows), err)
	}

	if err := tx.Commit(); err != nil {
		p.logger.Error("persist failed: commit", "rows", len(rows), "error", err)
		return newPersistError(len(rows), err)
	}
	return nil
}

func (p *persister) insert(ctx context.Context, tx *sql.Tx, rows []store.JournalRow) error {
	if len(rows) <= p.cfg.MaxRowByRowSize {
		return p.store.InsertMultiRow(ctx, tx, rows, p.cfg.DBRoundTripBatchSize, p.cfg.PreferParametersOnMultiRowInsert)
	}
	return p.store.BulkInsert(ctx, tx, rows)
}

// rollback aborts tx. A rollback failure is logged and otherwise dropped so
// the original cause reaches the caller.
func rollback(logger *slog.Logger, tx *sql.Tx, op string) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Error("rollback failed", "op", op, "error", newRollbackError(err))
	}
}
