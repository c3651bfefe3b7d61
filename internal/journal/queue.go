package journal

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/journal/internal/store"
)

// persistFunc writes one merged batch. The returned error is delivered to
// every caller merged into that batch.
type persistFunc func(ctx context.Context, rows []store.JournalRow) error

// writeEntry is one Append call waiting in the queue.
type writeEntry struct {
	rows []store.JournalRow
	done chan error // buffered, size 1
}

// writeBatch is a unit of merged entries. Values are never mutated in
// place; merge returns a new batch.
type writeBatch struct {
	rows    []store.JournalRow
	handles []chan error
}

func (b writeBatch) weight() int {
	return len(b.rows)
}

func (b writeBatch) empty() bool {
	return len(b.handles) == 0
}

func (b writeBatch) merge(e writeEntry) writeBatch {
	rows := make([]store.JournalRow, 0, len(b.rows)+len(e.rows))
	rows = append(rows, b.rows...)
	rows = append(rows, e.rows...)

	handles := make([]chan error, 0, len(b.handles)+1)
	handles = append(handles, b.handles...)
	handles = append(handles, e.done)

	return writeBatch{rows: rows, handles: handles}
}

// resolve completes every handle with the same outcome.
func (b writeBatch) resolve(err error) {
	for _, h := range b.handles {
		h <- err
	}
}

// writeQueue coalesces appended rows into batches and persists them.
//
// Thread-safety model:
//   - Append(): safe from any goroutine, never blocks
//   - run(): the single consumer, started once by start()
//   - Close(): safe from any goroutine, idempotent
//
// The consumer merges waiting entries while the merged weight stays within
// batchSize. When all parallelism slots are busy it keeps merging into the
// waiting unit, so callers never observe backpressure beyond overflow.
type writeQueue struct {
	entries    chan writeEntry
	slots      chan struct{}
	persist    persistFunc
	batchSize  int
	bufferSize int
	logger     *slog.Logger

	// ctx is handed to persist calls. It is never cancelled by Close so
	// in-flight batches still resolve.
	ctx context.Context

	mu       sync.RWMutex
	closed   bool
	started  bool
	stop     chan struct{}
	loopDone chan struct{}
	inflight sync.WaitGroup
}

func newWriteQueue(bufferSize, batchSize, parallelism int, persist persistFunc, logger *slog.Logger) *writeQueue {
	return &writeQueue{
		entries:    make(chan writeEntry, bufferSize),
		slots:      make(chan struct{}, parallelism),
		persist:    persist,
		batchSize:  batchSize,
		bufferSize: bufferSize,
		logger:     logger,
		ctx:        context.Background(),
		stop:       make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
}

// start launches the consumer. Entries appended before start stay queued.
func (q *writeQueue) start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.closed {
		return
	}
	q.started = true
	q.logger.Debug("write queue starting",
		"buffer_size", q.bufferSize,
		"batch_size", q.batchSize,
		"parallelism", cap(q.slots),
	)
	go q.run()
}

// Append enqueues rows as one entry. The returned channel receives exactly
// one value: nil once the rows are committed, or the failure.
//
// A full queue resolves immediately with QueueOverflow, a closed one with
// QueueClosed.
func (q *writeQueue) Append(rows []store.JournalRow) <-chan error {
	done := make(chan error, 1)

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		done <- newQueueClosedError()
		return done
	}

	select {
	case q.entries <- writeEntry{rows: rows, done: done}:
	default:
		done <- newQueueOverflowError(q.bufferSize)
	}
	return done
}

// Close stops accepting entries, fails every entry not yet dispatched with
// QueueClosed and waits for in-flight batches to finish.
func (q *writeQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	started := q.started
	close(q.stop)
	// No Append can be sending: they all hold the read lock.
	close(q.entries)
	q.mu.Unlock()

	if started {
		<-q.loopDone
	} else {
		q.failQueued(writeBatch{}, nil)
	}
	q.inflight.Wait()
	q.logger.Debug("write queue stopped")
}

func (q *writeQueue) run() {
	defer close(q.loopDone)

	var (
		pending writeBatch
		carry   *writeEntry // did not fit into pending
	)

	for {
		select {
		case <-q.stop:
			q.failQueued(pending, carry)
			return
		default:
		}

		if pending.empty() {
			if carry != nil {
				pending = pending.merge(*carry)
				carry = nil
			} else {
				select {
				case <-q.stop:
					q.failQueued(pending, nil)
					return
				case e, ok := <-q.entries:
					if !ok {
						q.failQueued(pending, nil)
						return
					}
					pending = pending.merge(e)
				}
			}
		}

		pending, carry = q.fill(pending, carry)

		// Keep merging while waiting for a slot.
		in := q.entries
		if carry != nil || pending.weight() >= q.batchSize {
			in = nil
		}

		select {
		case <-q.stop:
			q.failQueued(pending, carry)
			return
		case q.slots <- struct{}{}:
			q.dispatch(pending)
			pending = writeBatch{}
		case e, ok := <-in:
			if !ok {
				q.failQueued(pending, carry)
				return
			}
			pending, carry = q.offer(pending, e)
		}
	}
}

// fill merges already-queued entries without blocking until the budget is
// reached, an entry does not fit, or the queue is empty.
func (q *writeQueue) fill(pending writeBatch, carry *writeEntry) (writeBatch, *writeEntry) {
	for carry == nil && pending.weight() < q.batchSize {
		select {
		case e, ok := <-q.entries:
			if !ok {
				return pending, nil
			}
			pending, carry = q.offer(pending, e)
		default:
			return pending, carry
		}
	}
	return pending, carry
}

// offer merges e into pending if it fits the budget. An entry heavier than
// the budget is only accepted into an empty unit, where it goes alone.
func (q *writeQueue) offer(pending writeBatch, e writeEntry) (writeBatch, *writeEntry) {
	if pending.empty() || pending.weight()+len(e.rows) <= q.batchSize {
		return pending.merge(e), nil
	}
	return pending, &e
}

// dispatch persists b on its own goroutine. The caller holds a slot,
// which is released once every handle has been resolved.
func (q *writeQueue) dispatch(b writeBatch) {
	q.inflight.Add(1)
	q.logger.Debug("dispatching batch",
		"rows", b.weight(),
		"entries", len(b.handles),
	)

	go func() {
		defer func() {
			<-q.slots
			q.inflight.Done()
		}()
		b.resolve(q.persist(q.ctx, b.rows))
	}()
}

// failQueued resolves everything not yet dispatched with QueueClosed.
// Only called once entries has been closed.
func (q *writeQueue) failQueued(pending writeBatch, carry *writeEntry) {
	if carry != nil {
		pending = pending.merge(*carry)
	}
	for e := range q.entries {
		pending = pending.merge(e)
	}
	if pending.empty() {
		return
	}
	q.logger.Debug("failing queued entries on close", "entries", len(pending.handles))
	pending.resolve(newQueueClosedError())
}
