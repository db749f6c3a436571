// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablekit/internal/store"
)

// TTableDDL creates the employee table most tests run against.
const TTableDDL = "CREATE TABLE ttable (id INTEGER PRIMARY KEY, name TEXT, post TEXT, salary INTEGER)"

// Posts cycles through fixture job titles.
var Posts = []string{"dev", "ops", "qa"}

// OpenStore opens a fresh database file in t's temp dir and closes it on
// cleanup.
func OpenStore(t testing.TB, opts store.Options) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// Exec runs one statement that returns no rows.
func Exec(t testing.TB, exec store.Executor, query string, args ...any) {
	t.Helper()
	_, err := exec.Execute(context.Background(), store.Statement{SQL: query, Args: args})
	require.NoError(t, err)
}

// Employee builds one ttable record with a random name.
func Employee(seq *Sequence, salary int) map[string]any {
	id := seq.Next()
	return map[string]any{
		"id":     id,
		"name":   uuid.NewString(),
		"post":   Posts[int(id-1)%len(Posts)],
		"salary": salary,
	}
}

// SeedTTable creates ttable and inserts n employees with salaries 10, 20, ...
// It returns the inserted records in id order.
func SeedTTable(t testing.TB, exec store.Executor, n int) []map[string]any {
	t.Helper()
	Exec(t, exec, TTableDDL)

	seq := NewSequence()
	records := make([]map[string]any, n)
	batch := make([][]any, n)
	for i := range n {
		rec := Employee(seq, (i+1)*10)
		records[i] = rec
		batch[i] = []any{rec["id"], rec["name"], rec["post"], rec["salary"]}
	}
	if n > 0 {
		_, err := exec.Execute(context.Background(), store.Statement{
			SQL:   "INSERT INTO ttable (id, name, post, salary) VALUES (?, ?, ?, ?)",
			Batch: batch,
		})
		require.NoError(t, err)
	}
	return records
}
