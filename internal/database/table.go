package database

import (
	"context"
	"iter"

	"github.com/roach88/tablekit/internal/expr"
	"github.com/roach88/tablekit/internal/filter"
	"github.com/roach88/tablekit/internal/ops"
	"github.com/roach88/tablekit/internal/query"
	"github.com/roach88/tablekit/internal/row"
	"github.com/roach88/tablekit/internal/schema"
)

// Table is the per-table entry point for reads and writes.
type Table struct {
	db     *DB
	schema *schema.Table
	ops    *ops.Dispatcher
	rows   row.Materializer
}

func newTable(db *DB, t *schema.Table) *Table {
	d := ops.New(db.store, t)
	return &Table{
		db:     db,
		schema: t,
		ops:    d,
		rows:   row.Materializer{Table: t, Writer: d, Form: db.form, Logger: db.logger},
	}
}

// Name returns the table name.
func (t *Table) Name() string { return t.schema.Name() }

// Schema returns the column descriptor.
func (t *Table) Schema() *schema.Table { return t.schema }

// Column returns a validated column reference.
func (t *Table) Column(name string) (expr.ColumnRef, error) { return t.schema.Column(name) }

// MustColumn is Column for statically known names; it panics on unknown ones.
func (t *Table) MustColumn(name string) expr.ColumnRef { return t.schema.MustColumn(name) }

// Query starts a builder over items, or every column when none are given.
func (t *Table) Query(items ...expr.Selectable) *query.Builder {
	return query.New(t.db.store, t.rows, items...)
}

// SelectOptions is a one-shot select.
type SelectOptions struct {
	// Size caps the rows read; zero reads all.
	Size int

	// Columns restricts the body; empty selects every column.
	Columns []string

	// Fields are column = value matches joined by Operator.
	Fields   map[string]any
	Operator string

	// Condition is raw SQL, ANDed after Fields.
	Condition string
}

// Select runs a one-shot query described by opts.
func (t *Table) Select(ctx context.Context, opts SelectOptions) ([]row.Row, error) {
	items := make([]expr.Selectable, 0, len(opts.Columns))
	for _, name := range opts.Columns {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}

	q := t.Query(items...).WhereFieldsOp(opts.Fields, opts.Operator, filter.And)
	if opts.Condition != "" {
		q.Where(expr.Raw(opts.Condition))
	}
	return q.All(ctx, opts.Size)
}

// All returns every row.
func (t *Table) All(ctx context.Context) ([]row.Row, error) {
	return t.Query().All(ctx, 0)
}

// Pages streams every row, pageSize at a time; zero uses the DB default.
func (t *Table) Pages(ctx context.Context, pageSize int) iter.Seq2[row.Row, error] {
	if pageSize == 0 {
		pageSize = t.db.pageSize
	}
	return t.Query().Pages(ctx, pageSize)
}

// Get returns the first row matching fields, or nil.
func (t *Table) Get(ctx context.Context, fields map[string]any) (row.Row, error) {
	return t.Query().WhereFields(fields).First(ctx)
}

// GetByID returns the row whose id column equals id, or nil.
func (t *Table) GetByID(ctx context.Context, id any) (row.Row, error) {
	return t.Get(ctx, map[string]any{"id": id})
}

// Count returns the number of rows.
func (t *Table) Count(ctx context.Context) (int64, error) {
	return t.Query().Count(ctx)
}

// Insert adds records; see ops.Dispatcher.Insert.
func (t *Table) Insert(ctx context.Context, records ...map[string]any) (int64, error) {
	return t.ops.Insert(ctx, records...)
}

// Update sets values on rows matching f. A zero filter updates every row.
func (t *Table) Update(ctx context.Context, values map[string]any, f ops.Filter) (int64, error) {
	return t.ops.Update(ctx, values, f)
}

// Delete removes rows matching f.
func (t *Table) Delete(ctx context.Context, f ops.Filter) (int64, error) {
	return t.ops.Delete(ctx, f)
}

// DeleteIDs removes rows by id.
func (t *Table) DeleteIDs(ctx context.Context, ids ...any) (int64, error) {
	return t.ops.DeleteIDs(ctx, ids...)
}

// DeleteID removes one row by id.
func (t *Table) DeleteID(ctx context.Context, id any) (int64, error) {
	return t.ops.DeleteID(ctx, id)
}

// Drop drops the table.
func (t *Table) Drop(ctx context.Context) error {
	return t.db.DropTable(ctx, t.Name())
}
