package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/journal/internal/config"
)

func TestPersist_Paths(t *testing.T) {
	tests := []struct {
		name   string
		rows   int
		mutate func(*config.Config)
	}{
		{"single row", 1, nil},
		{"multi-row literals", 5, func(c *config.Config) {
			c.DBRoundTripBatchSize = 2
		}},
		{"multi-row parameters", 5, func(c *config.Config) {
			c.PreferParametersOnMultiRowInsert = true
			c.DBRoundTripBatchSize = 2
		}},
		{"bulk", 5, func(c *config.Config) {
			c.MaxRowByRowSize = 2
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := createUnstartedJournal(t, tt.mutate)
			p := &persister{store: j.store, cfg: j.cfg, logger: j.logger}

			err := p.persist(context.Background(), rowsOf(tt.rows))
			require.NoError(t, err)

			var want []int64
			for i := 1; i <= tt.rows; i++ {
				want = append(want, int64(i))
			}
			assert.Equal(t, want, storedSeqs(t, j, "p"))
		})
	}
}

func TestPersist_EmptyBatchIsNoop(t *testing.T) {
	j := createUnstartedJournal(t, nil)
	p := &persister{store: j.store, cfg: j.cfg, logger: j.logger}

	assert.NoError(t, p.persist(context.Background(), nil))
}

func TestPersist_FailureRollsBackWholeBatch(t *testing.T) {
	j := createUnstartedJournal(t, nil)
	p := &persister{store: j.store, cfg: j.cfg, logger: j.logger}

	rows := rowsOf(3)
	rows[2].SequenceNr = 1 // duplicate of rows[0]

	err := p.persist(context.Background(), rows)
	require.Error(t, err)
	assert.True(t, IsPersistFailure(err), "got %v", err)
	assert.Empty(t, storedSeqs(t, j, "p"))
}

func TestAppend_DuplicateBulkFailsEveryCaller(t *testing.T) {
	j := createUnstartedJournal(t, func(c *config.Config) {
		c.MaxRowByRowSize = 0 // every multi-row batch takes the bulk path
	})

	a := j.Append(rowsOf(1))
	b := j.Append(rowsOf(1))
	j.queue.start()

	for _, err := range await(t, a, b) {
		assert.True(t, IsPersistFailure(err), "got %v", err)
	}
	assert.Empty(t, storedSeqs(t, j, "p"))
}

func TestAppend_SingleRowDuplicateFails(t *testing.T) {
	j := createTestJournal(t, nil)

	require.NoError(t, await(t, j.Append(rowsOf(1)))[0])

	err := await(t, j.Append(rowsOf(1)))[0]
	assert.True(t, IsPersistFailure(err), "got %v", err)
	assert.Equal(t, []int64{1}, storedSeqs(t, j, "p"))
}
