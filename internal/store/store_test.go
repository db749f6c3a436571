package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablekit/internal/sqlerr"
)

// createTestStore opens a fresh database in a temp dir.
func createTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	_, err := s.Execute(ctx, Statement{SQL: "CREATE TABLE ttable (id INTEGER PRIMARY KEY, name TEXT, salary INTEGER)"})
	require.NoError(t, err)
	_, err = s.Execute(ctx, Statement{
		SQL:   "INSERT INTO ttable (id, name, salary) VALUES (?, ?, ?)",
		Batch: [][]any{{1, "a", 10}, {2, "b", 20}, {3, nil, 30}},
	})
	require.NoError(t, err)
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, Options{})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
	assert.Equal(t, path, s.Path())
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db", Options{})
	assert.Error(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "x.db"), Options{Driver: "postgres"})
	assert.True(t, sqlerr.IsValidation(err))
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t, Options{})

	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("synchronous", "1"))
	require.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	require.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestPragmas_Options(t *testing.T) {
	s := createTestStore(t, Options{BusyTimeout: 250, DisableWAL: true})

	require.NoError(t, s.verifyPragma("journal_mode", "delete"))
	require.NoError(t, s.verifyPragma("busy_timeout", "250"))
}

func TestExecute_FetchModes(t *testing.T) {
	s := createTestStore(t, Options{})
	seed(t, s)
	ctx := context.Background()

	all, err := s.Execute(ctx, Statement{SQL: "SELECT id, name FROM ttable ORDER BY id", Fetch: FetchAll})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, all.Columns)
	require.Len(t, all.Rows, 3)
	assert.Equal(t, []any{int64(1), "a"}, all.Rows[0])
	assert.Nil(t, all.Rows[2][1])

	one, err := s.Execute(ctx, Statement{SQL: "SELECT id FROM ttable ORDER BY id", Fetch: FetchOne})
	require.NoError(t, err)
	assert.Len(t, one.Rows, 1)

	many, err := s.Execute(ctx, Statement{SQL: "SELECT id FROM ttable ORDER BY id", Fetch: FetchMany, Size: 2})
	require.NoError(t, err)
	assert.Len(t, many.Rows, 2)

	unbounded, err := s.Execute(ctx, Statement{SQL: "SELECT id FROM ttable", Fetch: FetchMany})
	require.NoError(t, err)
	assert.Len(t, unbounded.Rows, 3)

	empty, err := s.Execute(ctx, Statement{SQL: "SELECT id FROM ttable WHERE id > ?", Args: []any{100}, Fetch: FetchAll})
	require.NoError(t, err)
	assert.NotNil(t, empty.Rows)
	assert.Empty(t, empty.Rows)
}

func TestExecute_WriteReportsRowsAffected(t *testing.T) {
	s := createTestStore(t, Options{})
	seed(t, s)

	res, err := s.Execute(context.Background(), Statement{SQL: "UPDATE ttable SET salary = ? WHERE id < ?", Args: []any{1, 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RowsAffected)
}

func TestExecute_BatchPartialFailureKeepsEarlierRows(t *testing.T) {
	s := createTestStore(t, Options{})
	seed(t, s)
	ctx := context.Background()

	_, err := s.Execute(ctx, Statement{
		SQL:   "INSERT INTO ttable (id, name, salary) VALUES (?, ?, ?)",
		Batch: [][]any{{10, "x", 1}, {1, "duplicate", 1}, {11, "y", 1}},
	})
	require.Error(t, err)
	assert.True(t, sqlerr.IsEngine(err))

	res, err := s.Execute(ctx, Statement{SQL: "SELECT id FROM ttable WHERE id >= 10", Fetch: FetchAll})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(10)}}, res.Rows)
}

func TestExecute_EngineErrorCarriesStatement(t *testing.T) {
	s := createTestStore(t, Options{})

	_, err := s.Execute(context.Background(), Statement{SQL: "SELECT * FROM missing", Fetch: FetchAll})
	require.Error(t, err)
	assert.True(t, sqlerr.IsEngine(err))
	assert.Contains(t, err.Error(), "SELECT * FROM missing")
}

func TestExecute_PureGoDriver(t *testing.T) {
	s := createTestStore(t, Options{Driver: DriverPureGo})
	seed(t, s)

	res, err := s.Execute(context.Background(), Statement{SQL: "SELECT name FROM ttable WHERE id = ?", Args: []any{2}, Fetch: FetchOne})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"b"}}, res.Rows)
}

func TestFetch_String(t *testing.T) {
	assert.Equal(t, "none", FetchNone.String())
	assert.Equal(t, "all", FetchAll.String())
	assert.Equal(t, "Fetch(9)", Fetch(9).String())
}
