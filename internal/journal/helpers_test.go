package journal

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/journal/internal/config"
	"github.com/roach88/journal/internal/serializer"
	"github.com/roach88/journal/internal/store"
)

var fixedNow = time.UnixMilli(1700000000000)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DSN = filepath.Join(t.TempDir(), "journal.db")
	return cfg
}

func openStore(t *testing.T, cfg config.Config) *store.Store {
	t.Helper()
	st, err := store.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// createTestJournal opens a started journal. mutate adjusts the default
// test config before anything is opened.
func createTestJournal(t *testing.T, mutate func(*config.Config), opts ...Option) *Journal {
	t.Helper()
	j := createUnstartedJournal(t, mutate, opts...)
	j.queue.start()
	return j
}

// createUnstartedJournal lets tests fill the queue before the consumer runs,
// which makes batch composition deterministic.
func createUnstartedJournal(t *testing.T, mutate func(*config.Config), opts ...Option) *Journal {
	t.Helper()
	cfg := testConfig(t)
	if mutate != nil {
		mutate(&cfg)
	}
	st := openStore(t, cfg)

	opts = append([]Option{
		WithLogger(discardLogger()),
		WithClock(func() time.Time { return fixedNow }),
		WithWriterUUID("writer-test"),
	}, opts...)

	j, err := newJournal(st, serializer.JSON{}, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func testRow(pid string, seq int64) store.JournalRow {
	return store.JournalRow{
		PersistenceID: pid,
		SequenceNr:    seq,
		Message:       []byte(`{"seq":` + strconv.FormatInt(seq, 10) + `}`),
		Manifest:      serializer.DefaultManifest,
		WriterUUID:    "writer-test",
		Timestamp:     fixedNow.UnixMilli(),
	}
}

func event(seq int64, payload any) serializer.Event {
	return serializer.Event{SequenceNr: seq, Payload: payload}
}

// await collects one outcome from each channel, failing the test if any
// takes longer than a few seconds.
func await(t *testing.T, chans ...<-chan error) []error {
	t.Helper()
	out := make([]error, len(chans))
	for i, ch := range chans {
		select {
		case err := <-ch:
			out[i] = err
		case <-time.After(5 * time.Second):
			t.Fatalf("outcome %d not resolved", i)
		}
	}
	return out
}

// storedSeqs returns every stored sequence number of pid, deleted or not.
func storedSeqs(t *testing.T, j *Journal, pid string) []int64 {
	t.Helper()
	rows, err := j.store.ReadAll(context.Background(), j.store.DB(), pid)
	require.NoError(t, err)
	seqs := make([]int64, len(rows))
	for i, r := range rows {
		seqs[i] = r.SequenceNr
	}
	return seqs
}

// batchRecorder is a persistFunc that records batch sizes.
type batchRecorder struct {
	mu    sync.Mutex
	sizes []int
	err   error
}

func (r *batchRecorder) persist(_ context.Context, rows []store.JournalRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sizes = append(r.sizes, len(rows))
	return r.err
}

func (r *batchRecorder) batches() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.sizes...)
}
