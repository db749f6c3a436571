package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablekit/internal/store"
)

func TestSequence_NextIncrementsMonotonically(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, int64(0), seq.Current())
	assert.Equal(t, int64(1), seq.Next())
	assert.Equal(t, int64(2), seq.Next())
	assert.Equal(t, int64(2), seq.Current())

	seq.Reset()
	assert.Equal(t, int64(1), seq.Next())
}

func TestSequence_ThreadSafe(t *testing.T) {
	seq := NewSequence()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				seq.Next()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), seq.Current())
}

func TestSeedTTable(t *testing.T) {
	s := OpenStore(t, store.Options{})
	records := SeedTTable(t, s, 5)
	require.Len(t, records, 5)

	res, err := s.Execute(context.Background(), store.Statement{
		SQL:   "SELECT id, post, salary FROM ttable ORDER BY id",
		Fetch: store.FetchAll,
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 5)
	assert.Equal(t, []any{int64(1), "dev", int64(10)}, res.Rows[0])
	assert.Equal(t, []any{int64(4), "dev", int64(40)}, res.Rows[3])
	assert.NotEqual(t, records[0]["name"], records[1]["name"])
}
