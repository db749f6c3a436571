package row

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablekit/internal/schema"
	"github.com/roach88/tablekit/internal/sqlerr"
)

type call struct {
	kind   string
	values map[string]any
	where  map[string]any
}

type recorder struct {
	calls []call
	err   error
}

func (r *recorder) UpdateWhere(_ context.Context, values, where map[string]any) error {
	r.calls = append(r.calls, call{kind: "update", values: values, where: where})
	return r.err
}

func (r *recorder) DeleteWhere(_ context.Context, where map[string]any) error {
	r.calls = append(r.calls, call{kind: "delete", where: where})
	return r.err
}

var ttable = schema.NewTable("ttable", []string{"id", "name", "post", "salary"}, []string{"id"})

func forms() []Form { return []Form{FormMap, FormStruct} }

func makeRow(t *testing.T, form Form, w Writer) Row {
	t.Helper()
	m := Materializer{Table: ttable, Writer: w, Form: form}
	r, err := m.Make([]string{"id", "name", "post", "salary"}, []any{int64(1), "ann", "dev", int64(10)})
	require.NoError(t, err)
	return r
}

func TestSetSameValueIsNotDirty(t *testing.T) {
	for _, form := range forms() {
		t.Run(form.String(), func(t *testing.T) {
			w := &recorder{}
			r := makeRow(t, form, w)

			require.NoError(t, r.Set("name", "ann"))
			require.NoError(t, r.Set("salary", 10)) // int vs int64
			assert.Empty(t, r.DirtyFields())

			require.NoError(t, r.Change(context.Background()))
			assert.Empty(t, w.calls, "clean row must not issue a statement")
		})
	}
}

func TestChangeWritesOnlyDirtyFields(t *testing.T) {
	for _, form := range forms() {
		t.Run(form.String(), func(t *testing.T) {
			w := &recorder{}
			r := makeRow(t, form, w)

			require.NoError(t, r.Set("salary", 20))
			require.NoError(t, r.Set("NAME", "bob"))
			assert.Equal(t, []string{"name", "salary"}, r.DirtyFields())

			require.NoError(t, r.Change(context.Background()))
			require.Len(t, w.calls, 1)
			assert.Equal(t, "update", w.calls[0].kind)
			assert.Equal(t, map[string]any{"name": "bob", "salary": 20}, w.calls[0].values)
			assert.Equal(t, map[string]any{"id": int64(1)}, w.calls[0].where)
			assert.Empty(t, r.DirtyFields())

			require.NoError(t, r.Change(context.Background()))
			assert.Len(t, w.calls, 1)
		})
	}
}

func TestChangedKeyUsesLoadedValue(t *testing.T) {
	w := &recorder{}
	r := makeRow(t, FormMap, w)

	require.NoError(t, r.Set("id", 7))
	require.NoError(t, r.Set("id", 8))
	require.NoError(t, r.Change(context.Background()))

	require.Len(t, w.calls, 1)
	assert.Equal(t, map[string]any{"id": 8}, w.calls[0].values)
	assert.Equal(t, map[string]any{"id": int64(1)}, w.calls[0].where)
}

func TestChangeFailureKeepsDirty(t *testing.T) {
	w := &recorder{err: errors.New("boom")}
	r := makeRow(t, FormStruct, w)

	require.NoError(t, r.Set("post", "ops"))
	require.Error(t, r.Change(context.Background()))
	assert.Equal(t, []string{"post"}, r.DirtyFields())
}

func TestClearDirty(t *testing.T) {
	w := &recorder{}
	r := makeRow(t, FormMap, w)

	require.NoError(t, r.Set("post", "ops"))
	r.ClearDirty()
	require.NoError(t, r.Change(context.Background()))
	assert.Empty(t, w.calls)

	v, _ := r.Get("post")
	assert.Equal(t, "ops", v)
}

func TestSetUnknownField(t *testing.T) {
	for _, form := range forms() {
		r := makeRow(t, form, &recorder{})
		err := r.Set("nope", 1)
		assert.True(t, sqlerr.IsSchema(err), "form %s: %v", form, err)
	}
}

func TestComputedFieldIsNotTracked(t *testing.T) {
	w := &recorder{}
	m := Materializer{Table: ttable, Writer: w}
	r, err := m.Make([]string{"id", "count"}, []any{int64(1), int64(3)})
	require.NoError(t, err)

	require.NoError(t, r.Set("count", 4))
	assert.Empty(t, r.DirtyFields())
}

func TestComputedColumnNamedLikeStoredOne(t *testing.T) {
	staff := schema.NewTable("staff", []string{"name", "salary"}, nil)
	ctx := context.Background()

	for _, form := range forms() {
		t.Run(form.String(), func(t *testing.T) {
			w := &recorder{}
			m := Materializer{Table: staff, Writer: w, Form: form, Logger: slog.New(slog.DiscardHandler)}
			// UPPER(name) AS name, salary
			rows, err := m.MakeResult([]string{"name", "salary"}, []bool{false, true}, [][]any{{"BOB", int64(10)}})
			require.NoError(t, err)
			r := rows[0]

			require.NoError(t, r.Set("name", "ALICE"))
			assert.Empty(t, r.DirtyFields())

			require.NoError(t, r.Delete(ctx))
			require.Len(t, w.calls, 1)
			assert.Equal(t, map[string]any{"salary": int64(10)}, w.calls[0].where)

			require.NoError(t, r.Set("salary", int64(99)))
			assert.Equal(t, []string{"salary"}, r.DirtyFields())
			err = r.Change(ctx)
			assert.True(t, sqlerr.IsValidation(err), "no stored field left to identify the row: %v", err)
			assert.Len(t, w.calls, 1)
			assert.Equal(t, []string{"salary"}, r.DirtyFields())
		})
	}
}

func TestComputedKeyIsNotIdentity(t *testing.T) {
	for _, form := range forms() {
		t.Run(form.String(), func(t *testing.T) {
			w := &recorder{}
			m := Materializer{Table: ttable, Writer: w, Form: form, Logger: slog.New(slog.DiscardHandler)}
			// id + 1 AS id, name
			rows, err := m.MakeResult([]string{"id", "name"}, []bool{false, true}, [][]any{{int64(2), "ann"}})
			require.NoError(t, err)

			require.NoError(t, rows[0].Delete(context.Background()))
			require.Len(t, w.calls, 1)
			assert.Equal(t, map[string]any{"name": "ann"}, w.calls[0].where)
		})
	}
}

func TestMakeResult_Rejects(t *testing.T) {
	m := Materializer{Table: ttable}

	_, err := m.MakeAll([]string{"name", "NAME"}, [][]any{{"a", "A"}})
	assert.True(t, sqlerr.IsValidation(err), "duplicate column: %v", err)

	_, err = m.MakeResult([]string{"id", "name"}, []bool{true}, nil)
	assert.True(t, sqlerr.IsValidation(err), "flag count: %v", err)
}

func TestDeleteByIdentity(t *testing.T) {
	for _, form := range forms() {
		t.Run(form.String(), func(t *testing.T) {
			w := &recorder{}
			r := makeRow(t, form, w)

			require.NoError(t, r.Delete(context.Background()))
			require.Len(t, w.calls, 1)
			assert.Equal(t, "delete", w.calls[0].kind)
			assert.Equal(t, map[string]any{"id": int64(1)}, w.calls[0].where)
		})
	}
}

func TestCompositeKeyIdentity(t *testing.T) {
	pairs := schema.NewTable("pairs", []string{"a", "b", "v"}, []string{"a", "b"})
	w := &recorder{}
	r, err := Materializer{Table: pairs, Writer: w}.Make([]string{"a", "b", "v"}, []any{"x", int64(2), nil})
	require.NoError(t, err)

	require.NoError(t, r.Set("v", "set"))
	require.NoError(t, r.Change(context.Background()))
	require.Len(t, w.calls, 1)
	assert.Equal(t, map[string]any{"a": "x", "b": int64(2)}, w.calls[0].where)
}

func TestFallbackIdentityWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	loose := schema.NewTable("loose", []string{"name", "post"}, nil)
	w := &recorder{}

	r, err := Materializer{Table: loose, Writer: w, Logger: logger}.Make([]string{"name", "post"}, []any{"ann", "dev"})
	require.NoError(t, err)

	require.NoError(t, r.Set("post", "ops"))
	require.NoError(t, r.Change(context.Background()))
	require.Len(t, w.calls, 1)
	assert.Equal(t, map[string]any{"name": "ann"}, w.calls[0].where)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "table=loose")
}

func TestFallbackIdentityNeedsUnchangedField(t *testing.T) {
	loose := schema.NewTable("loose", []string{"name"}, nil)
	w := &recorder{}
	r, err := Materializer{Table: loose, Writer: w, Logger: slog.New(slog.DiscardHandler)}.Make([]string{"name"}, []any{"ann"})
	require.NoError(t, err)

	require.NoError(t, r.Set("name", "bob"))
	err = r.Change(context.Background())
	assert.True(t, sqlerr.IsValidation(err))
	assert.Empty(t, w.calls)
}

func TestUnboundRow(t *testing.T) {
	r := makeRow(t, FormMap, nil)
	require.NoError(t, r.Set("name", "bob"))
	assert.True(t, sqlerr.IsValidation(r.Change(context.Background())))
	assert.True(t, sqlerr.IsValidation(r.Delete(context.Background())))
}

func TestMaterializeMismatch(t *testing.T) {
	_, err := Materializer{Table: ttable}.Make([]string{"id", "name"}, []any{1})
	assert.True(t, sqlerr.IsValidation(err))

	_, err = Materializer{}.Make([]string{"id"}, []any{1})
	assert.True(t, sqlerr.IsValidation(err))
}

func TestFormsAgree(t *testing.T) {
	m := makeRow(t, FormMap, nil)
	s := makeRow(t, FormStruct, nil)

	assert.Equal(t, m.Columns(), s.Columns())
	assert.Equal(t, m.Values(), s.Values())
	assert.Equal(t, []any{int64(1), "ann", "dev", int64(10)}, s.(*StructRow).Slots())
}

func TestParseForm(t *testing.T) {
	f, err := ParseForm("")
	require.NoError(t, err)
	assert.Equal(t, FormMap, f)

	f, err = ParseForm("Struct")
	require.NoError(t, err)
	assert.Equal(t, FormStruct, f)

	_, err = ParseForm("tuple")
	assert.True(t, sqlerr.IsValidation(err))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil value", nil, 0, false},
		{"int widths", int32(5), int64(5), true},
		{"uint int", uint8(5), 5, true},
		{"float widths", float32(0.5), 0.5, true},
		{"int float", 2, 2.0, true},
		{"int float differ", 2, 2.5, false},
		{"string", "a", "a", true},
		{"string int", "1", 1, false},
		{"bytes", []byte("ab"), []byte("ab"), true},
		{"bytes differ", []byte("ab"), []byte("ac"), false},
		{"decimal", decimal.RequireFromString("1.50"), decimal.RequireFromString("1.5"), true},
		{"decimal int", decimal.NewFromInt(3), int64(3), true},
		{"decimal differ", decimal.NewFromInt(3), 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}
