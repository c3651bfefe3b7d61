package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/journal/internal/config"
	"github.com/roach88/journal/internal/serializer"
	"github.com/roach88/journal/internal/store"
)

// AtomicWrite groups events of one persistence id that succeed or fail
// together. Each event must carry its SequenceNr and Payload; the journal
// stamps PersistenceID, WriterUUID and Timestamp.
type AtomicWrite struct {
	PersistenceID string
	Events        []serializer.Event
}

// Journal is the write path of an append-only event journal.
//
// Thread-safety: all methods are safe for concurrent use.
type Journal struct {
	store      *store.Store
	serializer serializer.Serializer
	cfg        config.Config
	logger     *slog.Logger
	now        func() time.Time
	writerUUID string
	queue      *writeQueue
}

// Option configures a Journal.
type Option func(*Journal)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// WithClock sets the time source for row timestamps. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		j.now = now
	}
}

// WithWriterUUID fixes the writer id stamped on rows.
// Default: a fresh UUIDv7 per Journal.
func WithWriterUUID(id string) Option {
	return func(j *Journal) {
		j.writerUUID = id
	}
}

// New creates a Journal over st and starts its write queue.
//
// The Journal does not own st; close the Journal before the store.
func New(st *store.Store, ser serializer.Serializer, cfg config.Config, opts ...Option) (*Journal, error) {
	j, err := newJournal(st, ser, cfg, opts...)
	if err != nil {
		return nil, err
	}
	j.queue.start()
	return j, nil
}

// newJournal builds a Journal whose queue is not started yet.
func newJournal(st *store.Store, ser serializer.Serializer, cfg config.Config, opts ...Option) (*Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	j := &Journal{
		store:      st,
		serializer: ser,
		cfg:        cfg,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.writerUUID == "" {
		j.writerUUID = newWriterUUID()
	}

	if cfg.LogicalDelete {
		j.logger.Warn("logical delete is deprecated and will be removed; deleted rows are kept and only flagged",
			"journal_table", cfg.JournalTable,
		)
	}

	p := &persister{store: st, cfg: cfg, logger: j.logger}
	j.queue = newWriteQueue(cfg.BufferSize, cfg.BatchSize, cfg.Parallelism, p.persist, j.logger)
	return j, nil
}

// WriterUUID returns the id stamped on rows written by this Journal.
func (j *Journal) WriterUUID() string {
	return j.writerUUID
}

// WriteMessages serializes and persists writes, returning one outcome per
// AtomicWrite in the same order.
//
// A write whose events fail to serialize contributes no rows and reports
// SerializationFailure; its siblings proceed. Every other write is handed
// to the queue as one entry, so its rows land in the same batch.
//
// If ctx is done before a write resolves, that outcome is ctx.Err(); the
// write itself may still complete.
func (j *Journal) WriteMessages(ctx context.Context, writes []AtomicWrite) []error {
	results := make([]error, len(writes))
	pending := make([]<-chan error, len(writes))

	for i, w := range writes {
		rows, err := j.serialize(w)
		if err != nil {
			results[i] = err
			continue
		}
		pending[i] = j.queue.Append(rows)
	}

	for i, ch := range pending {
		if ch == nil {
			continue
		}
		select {
		case err := <-ch:
			results[i] = err
		case <-ctx.Done():
			results[i] = ctx.Err()
		}
	}
	return results
}

func (j *Journal) serialize(w AtomicWrite) ([]store.JournalRow, error) {
	pid := normalizeID(w.PersistenceID)
	ts := j.now().UnixMilli()

	rows := make([]store.JournalRow, 0, len(w.Events))
	for _, ev := range w.Events {
		ev.PersistenceID = pid
		ev.WriterUUID = j.writerUUID
		ev.Timestamp = ts

		row, err := j.serializer.Serialize(ev)
		if err != nil {
			return nil, newSerializationError(pid, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Append enqueues pre-built rows as one entry. The returned channel
// receives exactly one outcome.
//
// Persistence ids are normalized like WriteMessages does. A row that fails
// validation rejects the whole entry with SerializationFailure before it
// reaches the queue.
func (j *Journal) Append(rows []store.JournalRow) <-chan error {
	normalized := make([]store.JournalRow, len(rows))
	for i, row := range rows {
		row.PersistenceID = normalizeID(row.PersistenceID)
		if err := row.Validate(); err != nil {
			done := make(chan error, 1)
			done <- newSerializationError(row.PersistenceID, err)
			return done
		}
		normalized[i] = row
	}
	return j.queue.Append(normalized)
}

// Update replaces the payload of an existing event in place, bypassing the
// write queue. Updating an event that does not exist is not an error.
func (j *Journal) Update(ctx context.Context, persistenceID string, seqNr int64, payload any) error {
	persistenceID = normalizeID(persistenceID)

	row, err := j.serializer.Serialize(serializer.Event{
		PersistenceID: persistenceID,
		SequenceNr:    seqNr,
		Payload:       payload,
		WriterUUID:    j.writerUUID,
	})
	if err != nil {
		return newSerializationError(persistenceID, err)
	}

	n, err := j.store.UpdateMessage(ctx, j.store.DB(), persistenceID, seqNr, row.Message, row.Manifest)
	if err != nil {
		return newPersistError(1, err)
	}
	if n == 0 {
		j.logger.Debug("update matched no row",
			"persistence_id", persistenceID,
			"seq", seqNr,
		)
	}
	return nil
}

// Close stops the write queue. Queued writes fail with QueueClosed;
// in-flight batches finish first.
func (j *Journal) Close() error {
	j.queue.Close()
	return nil
}

// normalizeID puts persistence ids in NFC so visually equal ids match.
func normalizeID(id string) string {
	return norm.NFC.String(id)
}
