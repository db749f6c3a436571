package row

import (
	"context"
	"slices"

	"github.com/roach88/tablekit/internal/schema"
	"github.com/roach88/tablekit/internal/sqlerr"
)

// Layout is the fixed field set shared by every StructRow of one result.
type Layout struct {
	columns []string
	slot    map[string]int
}

// NewLayout indexes columns for slot access.
func NewLayout(columns []string) *Layout {
	l := &Layout{columns: slices.Clone(columns), slot: make(map[string]int, len(columns))}
	for i, c := range l.columns {
		if _, dup := l.slot[c]; !dup {
			l.slot[c] = i
		}
	}
	return l
}

// Columns returns the field names in slot order.
func (l *Layout) Columns() []string { return slices.Clone(l.columns) }

// StructRow keeps its fields in fixed slots, one per result column.
// Rows of one result share a Layout, so a field set cannot grow after load.
type StructRow struct {
	state
	layout *Layout
	slots  []any
}

var _ Row = (*StructRow)(nil)

func newStructRow(st state, layout *Layout, values []any) *StructRow {
	return &StructRow{state: st, layout: layout, slots: slices.Clone(values)}
}

func (r *StructRow) Table() *schema.Table { return r.table }

func (r *StructRow) Columns() []string { return r.layout.Columns() }

func (r *StructRow) Get(field string) (any, bool) {
	i, ok := r.layout.slot[schema.Fold(field)]
	if !ok {
		return nil, false
	}
	return r.slots[i], true
}

func (r *StructRow) Set(field string, value any) error {
	field = schema.Fold(field)
	i, ok := r.layout.slot[field]
	if !ok {
		return sqlerr.Schema("set", "row of %q has no field %q", r.table.Name(), field)
	}
	r.track(field, r.slots[i], value)
	r.slots[i] = value
	return nil
}

func (r *StructRow) Values() map[string]any {
	out := make(map[string]any, len(r.slots))
	for i, c := range r.layout.columns {
		out[c] = r.slots[i]
	}
	return out
}

// Slots returns a copy of the values in column order.
func (r *StructRow) Slots() []any { return slices.Clone(r.slots) }

func (r *StructRow) DirtyFields() []string { return r.dirtyFields() }

func (r *StructRow) ClearDirty() { r.clear() }

func (r *StructRow) Change(ctx context.Context) error { return r.change(ctx, r) }

func (r *StructRow) Delete(ctx context.Context) error { return r.delete(ctx, r) }
