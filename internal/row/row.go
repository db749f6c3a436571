// Package row materializes result tuples into Rows that track which fields
// changed since load, and writes only those fields back.
//
// Two forms share one contract: MapRow keeps a dynamic field map, StructRow
// keeps fixed slots in column order. Both mark a field dirty only when the
// new value differs by value from the stored one.
//
// # Identity
//
// Change and Delete filter on the table's identity: the declared primary key,
// else an "id" column. Key values are taken as loaded, so changing a key
// column still targets the original row. Tables with neither fall back to
// matching every unchanged field; that fallback can hit several identical
// rows and is deprecated (a warning is logged on each use).
//
// Only fields loaded straight from a table column are stored fields. A
// computed result such as UPPER(name) labeled "name" can be read and set,
// but it is never tracked, written back or used to identify the row.
package row

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/tablekit/internal/schema"
	"github.com/roach88/tablekit/internal/sqlerr"
)

// Writer issues the statements behind Change and Delete.
// ops.Dispatcher implements it.
type Writer interface {
	UpdateWhere(ctx context.Context, values map[string]any, where map[string]any) error
	DeleteWhere(ctx context.Context, where map[string]any) error
}

// Row is one materialized record.
type Row interface {
	// Table returns the source table.
	Table() *schema.Table

	// Columns returns the row's field names in result order.
	Columns() []string

	// Get returns a field value.
	Get(field string) (any, bool)

	// Set assigns a field. Unknown fields fail with a schema error.
	Set(field string, value any) error

	// Values returns a copy of every field.
	Values() map[string]any

	// DirtyFields returns changed table columns in column order.
	DirtyFields() []string

	// ClearDirty forgets every change without writing it.
	ClearDirty()

	// Change writes dirty fields back and clears them. A clean row issues
	// no statement.
	Change(ctx context.Context) error

	// Delete removes the row by identity.
	Delete(ctx context.Context) error
}

// state is the dirty-tracking core shared by MapRow and StructRow.
type state struct {
	table  *schema.Table
	writer Writer
	logger *slog.Logger
	stored map[string]bool // shared by every row of one result

	dirty  map[string]struct{}
	loaded map[string]any // value as loaded, for each dirty field
}

func newState(table *schema.Table, writer Writer, logger *slog.Logger, stored map[string]bool) state {
	if logger == nil {
		logger = slog.Default()
	}
	return state{table: table, writer: writer, logger: logger, stored: stored}
}

// track records an assignment of next over prev for field.
func (s *state) track(field string, prev, next any) {
	if !s.stored[field] || Equal(prev, next) {
		return
	}
	if s.dirty == nil {
		s.dirty = make(map[string]struct{})
		s.loaded = make(map[string]any)
	}
	if _, already := s.dirty[field]; !already {
		s.loaded[field] = prev
		s.dirty[field] = struct{}{}
	}
}

func (s *state) isDirty(field string) bool {
	_, ok := s.dirty[field]
	return ok
}

func (s *state) dirtyFields() []string {
	out := make([]string, 0, len(s.dirty))
	for f := range s.dirty {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b string) int {
		ia, _ := s.table.Index(a)
		ib, _ := s.table.Index(b)
		return ia - ib
	})
	return out
}

func (s *state) clear() {
	s.dirty = nil
	s.loaded = nil
}

// original returns the field's value as loaded.
func (s *state) original(r Row, field string) any {
	if v, ok := s.loaded[field]; ok {
		return v
	}
	v, _ := r.Get(field)
	return v
}

// identity builds the filter that selects r in its table.
func (s *state) identity(r Row) (map[string]any, error) {
	var columns []string
	for _, c := range r.Columns() {
		if s.stored[c] {
			columns = append(columns, c)
		}
	}

	if keys := s.table.Identity(); len(keys) > 0 && containsAll(columns, keys) {
		where := make(map[string]any, len(keys))
		for _, k := range keys {
			where[k] = s.original(r, k)
		}
		return where, nil
	}

	where := make(map[string]any)
	for _, c := range columns {
		if !s.isDirty(c) {
			where[c], _ = r.Get(c)
		}
	}
	if len(where) == 0 {
		return nil, sqlerr.Validation("row", "row of %q has no unchanged fields to identify it", s.table.Name())
	}
	s.logger.Warn("row identified by all unchanged fields; declare a primary key",
		"table", s.table.Name(),
		"fields", len(where),
	)
	return where, nil
}

func (s *state) change(ctx context.Context, r Row) error {
	if len(s.dirty) == 0 {
		return nil
	}
	if s.writer == nil {
		return sqlerr.Validation("change", "row is not bound to a writer")
	}

	where, err := s.identity(r)
	if err != nil {
		return err
	}

	values := make(map[string]any, len(s.dirty))
	for f := range s.dirty {
		values[f], _ = r.Get(f)
	}

	if err := s.writer.UpdateWhere(ctx, values, where); err != nil {
		return err
	}
	s.clear()
	return nil
}

func (s *state) delete(ctx context.Context, r Row) error {
	if s.writer == nil {
		return sqlerr.Validation("delete", "row is not bound to a writer")
	}
	where, err := s.identity(r)
	if err != nil {
		return err
	}
	return s.writer.DeleteWhere(ctx, where)
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}
