package ops

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablekit/internal/schema"
	"github.com/roach88/tablekit/internal/sqlerr"
	"github.com/roach88/tablekit/internal/store"
	"github.com/roach88/tablekit/internal/testutil"
)

var ttable = schema.NewTable("ttable", []string{"id", "name", "post", "salary"}, []string{"id"})

// mockDispatcher returns a Dispatcher backed by sqlmock with exact matching.
func mockDispatcher(t *testing.T) (*Dispatcher, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(store.Wrap(db, slog.New(slog.DiscardHandler)), ttable), mock
}

func TestInsert_BatchStatement(t *testing.T) {
	d, mock := mockDispatcher(t)

	prep := mock.ExpectPrepare("INSERT INTO ttable (id, name, salary) VALUES (?, ?, ?)")
	prep.ExpectExec().WithArgs(1, "ann", 10).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(2, nil, 20).WillReturnResult(sqlmock.NewResult(2, 1))

	n, err := d.Insert(context.Background(),
		map[string]any{"salary": 10, "name": "ann", "id": 1},
		map[string]any{"id": 2, "SALARY": 20, "name": nil},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestInsert_Validation(t *testing.T) {
	d, _ := mockDispatcher(t)
	ctx := context.Background()

	_, err := d.Insert(ctx)
	assert.True(t, sqlerr.IsValidation(err))

	_, err = d.Insert(ctx, map[string]any{})
	assert.True(t, sqlerr.IsValidation(err))

	_, err = d.Insert(ctx, map[string]any{"name": "a"}, map[string]any{"post": "b"})
	assert.True(t, sqlerr.IsValidation(err), "mismatched key sets")

	_, err = d.Insert(ctx, map[string]any{"name": "a"}, map[string]any{"name": "b", "post": "c"})
	assert.True(t, sqlerr.IsValidation(err), "extra key")

	_, err = d.Insert(ctx, map[string]any{"nope": 1})
	assert.True(t, sqlerr.IsSchema(err))

	_, err = d.Insert(ctx, map[string]any{"name": "a", "NAME": "b"})
	assert.True(t, sqlerr.IsValidation(err), "names colliding once folded")
}

func TestUpdate_KeywordFilterIsBound(t *testing.T) {
	d, mock := mockDispatcher(t)

	mock.ExpectExec("UPDATE ttable SET post = ?, salary = ? WHERE name IS NULL AND salary = ?").
		WithArgs("ops", 99, 10).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := d.Update(context.Background(),
		map[string]any{"salary": 99, "post": "ops"},
		Filter{Fields: map[string]any{"salary": 10, "name": nil}},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestUpdate_OrOperatorAndCondition(t *testing.T) {
	d, mock := mockDispatcher(t)

	mock.ExpectExec("UPDATE ttable SET name = ? WHERE (id = ? OR post = ?) AND (salary > 5)").
		WithArgs("x", 1, "qa").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := d.Update(context.Background(),
		map[string]any{"name": "x"},
		Filter{Fields: map[string]any{"post": "qa", "id": 1}, Operator: "or", Condition: "salary > 5"},
	)
	require.NoError(t, err)
}

func TestUpdate_RawCondition(t *testing.T) {
	d, mock := mockDispatcher(t)

	mock.ExpectExec("UPDATE ttable SET salary = ? WHERE salary < 10").
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 2))

	_, err := d.Update(context.Background(), map[string]any{"salary": 10}, Filter{Condition: "salary < 10"})
	require.NoError(t, err)
}

func TestUpdate_NoFilterUpdatesEveryRow(t *testing.T) {
	d, mock := mockDispatcher(t)

	mock.ExpectExec("UPDATE ttable SET post = ?").
		WithArgs("all").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := d.Update(context.Background(), map[string]any{"post": "all"}, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestUpdate_Validation(t *testing.T) {
	d, _ := mockDispatcher(t)
	ctx := context.Background()

	_, err := d.Update(ctx, nil, Filter{})
	assert.True(t, sqlerr.IsValidation(err))

	_, err = d.Update(ctx, map[string]any{"nope": 1}, Filter{})
	assert.True(t, sqlerr.IsSchema(err))

	_, err = d.Update(ctx, map[string]any{"name": "a"}, Filter{Fields: map[string]any{"id": 1}, Operator: "XOR"})
	assert.True(t, sqlerr.IsOperator(err))

	_, err = d.Update(ctx, map[string]any{"name": "a"}, Filter{Fields: map[string]any{"id": 1}, Operator: ","})
	assert.True(t, sqlerr.IsOperator(err))
}

func TestDelete_Statements(t *testing.T) {
	d, mock := mockDispatcher(t)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM ttable WHERE name = ? AND post IS NULL").
		WithArgs("ann").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM ttable WHERE salary >= 100").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM ttable WHERE id = ?").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := d.Delete(ctx, Filter{Fields: map[string]any{"post": nil, "name": "ann"}})
	require.NoError(t, err)
	_, err = d.Delete(ctx, Filter{Condition: "salary >= 100"})
	require.NoError(t, err)
	_, err = d.DeleteID(ctx, 7)
	require.NoError(t, err)
}

func TestDelete_EmptyFilterRejected(t *testing.T) {
	d, _ := mockDispatcher(t)

	_, err := d.Delete(context.Background(), Filter{Condition: "   "})
	assert.True(t, sqlerr.IsValidation(err))

	_, err = d.DeleteIDs(context.Background())
	assert.True(t, sqlerr.IsValidation(err))
}

func TestDeleteIDs_OneExecutionPerID(t *testing.T) {
	d, mock := mockDispatcher(t)

	prep := mock.ExpectPrepare("DELETE FROM ttable WHERE id = ?")
	prep.ExpectExec().WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := d.DeleteIDs(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestEngineErrorPropagates(t *testing.T) {
	d, mock := mockDispatcher(t)

	mock.ExpectExec("DELETE FROM ttable WHERE id = ?").
		WithArgs(1).
		WillReturnError(errors.New("database is locked"))

	_, err := d.DeleteID(context.Background(), 1)
	assert.True(t, sqlerr.IsEngine(err))
	assert.Contains(t, err.Error(), "database is locked")
}

func TestWriter_UpdateWhereNeedsFilter(t *testing.T) {
	d, _ := mockDispatcher(t)
	err := d.UpdateWhere(context.Background(), map[string]any{"name": "a"}, nil)
	assert.True(t, sqlerr.IsValidation(err))
}

func TestRoundTrip_InsertThenSelect(t *testing.T) {
	s := testutil.OpenStore(t, store.Options{})
	testutil.Exec(t, s, testutil.TTableDDL)
	d := New(s, ttable)
	ctx := context.Background()

	rec := map[string]any{"id": int64(5), "name": "ann", "post": "dev", "salary": int64(42)}
	_, err := d.Insert(ctx, rec)
	require.NoError(t, err)

	res, err := s.Execute(ctx, store.Statement{
		SQL:   "SELECT id, name, post, salary FROM ttable WHERE name = ? AND post = ?",
		Args:  []any{"ann", "dev"},
		Fetch: store.FetchOne,
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []any{int64(5), "ann", "dev", int64(42)}, res.Rows[0])
}

func TestBatchFailureKeepsEarlierRows(t *testing.T) {
	s := testutil.OpenStore(t, store.Options{})
	testutil.Exec(t, s, testutil.TTableDDL)
	d := New(s, ttable)
	ctx := context.Background()

	n, err := d.Insert(ctx,
		map[string]any{"id": 1, "name": "a"},
		map[string]any{"id": 2, "name": "b"},
		map[string]any{"id": 1, "name": "dup"},
	)
	assert.True(t, sqlerr.IsEngine(err))
	assert.Equal(t, int64(2), n)

	res, err := s.Execute(ctx, store.Statement{SQL: "SELECT COUNT(*) FROM ttable", Fetch: store.FetchOne})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Rows[0][0])
}

func TestUpdateAndDelete_RealDatabase(t *testing.T) {
	s := testutil.OpenStore(t, store.Options{})
	testutil.SeedTTable(t, s, 6)
	d := New(s, ttable)
	ctx := context.Background()

	n, err := d.Update(ctx, map[string]any{"salary": 0}, Filter{Fields: map[string]any{"post": "dev"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = d.Delete(ctx, Filter{Fields: map[string]any{"salary": 0}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = d.DeleteIDs(ctx, 2, 3, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	res, err := s.Execute(ctx, store.Statement{SQL: "SELECT id FROM ttable ORDER BY id", Fetch: store.FetchAll})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(5)}, {int64(6)}}, res.Rows)
}
