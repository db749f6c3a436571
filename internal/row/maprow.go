package row

import (
	"context"
	"maps"
	"slices"

	"github.com/roach88/tablekit/internal/schema"
	"github.com/roach88/tablekit/internal/sqlerr"
)

// MapRow keeps its fields in a map. Any column of the result, including
// computed ones such as "count", is readable; only stored columns are tracked.
type MapRow struct {
	state
	columns []string
	values  map[string]any
}

var _ Row = (*MapRow)(nil)

func newMapRow(st state, columns []string, values []any) *MapRow {
	r := &MapRow{state: st, columns: columns, values: make(map[string]any, len(columns))}
	for i, c := range columns {
		r.values[c] = values[i]
	}
	return r
}

func (r *MapRow) Table() *schema.Table { return r.table }

func (r *MapRow) Columns() []string { return slices.Clone(r.columns) }

func (r *MapRow) Get(field string) (any, bool) {
	v, ok := r.values[schema.Fold(field)]
	return v, ok
}

func (r *MapRow) Set(field string, value any) error {
	field = schema.Fold(field)
	prev, ok := r.values[field]
	if !ok {
		return sqlerr.Schema("set", "row of %q has no field %q", r.table.Name(), field)
	}
	r.track(field, prev, value)
	r.values[field] = value
	return nil
}

func (r *MapRow) Values() map[string]any { return maps.Clone(r.values) }

func (r *MapRow) DirtyFields() []string { return r.dirtyFields() }

func (r *MapRow) ClearDirty() { r.clear() }

func (r *MapRow) Change(ctx context.Context) error { return r.change(ctx, r) }

func (r *MapRow) Delete(ctx context.Context) error { return r.delete(ctx, r) }
