// Package ops renders Insert, Update and Delete calls into parameterized
// statements and hands them to the execution collaborator.
//
// Values are always bound as parameters. Raw conditions are passed through
// untouched; their correctness is the caller's.
package ops

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tablekit/internal/filter"
	"github.com/roach88/tablekit/internal/row"
	"github.com/roach88/tablekit/internal/schema"
	"github.com/roach88/tablekit/internal/sqlerr"
	"github.com/roach88/tablekit/internal/store"
)

// Filter selects the rows an Update or Delete touches.
type Filter struct {
	// Fields are column = value matches; nil matches IS NULL.
	Fields map[string]any

	// Operator joins Fields: AND (default) or OR.
	Operator string

	// Condition is raw SQL. When Fields are also set the two are ANDed.
	Condition string
}

// ByID matches the id column.
func ByID(id any) Filter {
	return Filter{Fields: map[string]any{"id": id}}
}

// IsZero reports whether the filter matches every row.
func (f Filter) IsZero() bool {
	return len(f.Fields) == 0 && strings.TrimSpace(f.Condition) == ""
}

// Dispatcher issues write statements against one table.
type Dispatcher struct {
	exec  store.Executor
	table *schema.Table
}

var _ row.Writer = (*Dispatcher)(nil)

// New creates a Dispatcher for table.
func New(exec store.Executor, table *schema.Table) *Dispatcher {
	return &Dispatcher{exec: exec, table: table}
}

// Table returns the target table.
func (d *Dispatcher) Table() *schema.Table { return d.table }

// Insert adds records in one batched INSERT. Every record must carry the
// same fields as the first. Returns the number of rows inserted.
func (d *Dispatcher) Insert(ctx context.Context, records ...map[string]any) (int64, error) {
	if len(records) == 0 {
		return 0, sqlerr.Validation("insert", "no records")
	}
	if len(records[0]) == 0 {
		return 0, sqlerr.Validation("insert", "record 0 has no fields")
	}

	first, err := fold(records[0])
	if err != nil {
		return 0, err
	}
	columns, err := d.table.Order(keys(first))
	if err != nil {
		return 0, err
	}

	batch := make([][]any, 0, len(records))
	for i, rec := range records {
		folded, err := fold(rec)
		if err != nil {
			return 0, err
		}
		if len(folded) != len(columns) {
			return 0, sqlerr.Validation("insert", "record %d fields differ from record 0", i)
		}
		args := make([]any, len(columns))
		for j, c := range columns {
			v, ok := folded[c]
			if !ok {
				return 0, sqlerr.Validation("insert", "record %d fields differ from record 0", i)
			}
			args[j] = v
		}
		batch = append(batch, args)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.table.Name(), strings.Join(columns, ", "), placeholders)

	res, err := d.exec.Execute(ctx, store.Statement{SQL: query, Batch: batch})
	return affected(res), err
}

// Update sets values on every row matching f. A zero filter updates every
// row in the table.
func (d *Dispatcher) Update(ctx context.Context, values map[string]any, f Filter) (int64, error) {
	if len(values) == 0 {
		return 0, sqlerr.Validation("update", "no values to set")
	}

	folded, err := fold(values)
	if err != nil {
		return 0, err
	}
	columns, err := d.table.Order(keys(folded))
	if err != nil {
		return 0, err
	}

	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns))
	for i, c := range columns {
		assignments[i] = c + " = ?"
		args = append(args, folded[c])
	}

	query := fmt.Sprintf("UPDATE %s SET %s", d.table.Name(), strings.Join(assignments, ", "))

	where, whereArgs, err := d.where(f)
	if err != nil {
		return 0, err
	}
	if where != "" {
		query += " WHERE " + where
		args = append(args, whereArgs...)
	}

	res, err := d.exec.Execute(ctx, store.Statement{SQL: query, Args: args})
	return affected(res), err
}

// Delete removes rows matching f. A zero filter is rejected.
func (d *Dispatcher) Delete(ctx context.Context, f Filter) (int64, error) {
	if f.IsZero() {
		return 0, sqlerr.Validation("delete", "no filter")
	}
	where, args, err := d.where(f)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", d.table.Name(), where)

	res, err := d.exec.Execute(ctx, store.Statement{SQL: query, Args: args})
	return affected(res), err
}

// DeleteIDs removes rows by id, one execution per id in a single batch.
func (d *Dispatcher) DeleteIDs(ctx context.Context, ids ...any) (int64, error) {
	if len(ids) == 0 {
		return 0, sqlerr.Validation("delete", "no ids")
	}
	if !d.table.Has("id") {
		return 0, sqlerr.Schema("delete", "table %q has no column %q", d.table.Name(), "id")
	}
	batch := make([][]any, len(ids))
	for i, id := range ids {
		batch[i] = []any{id}
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", d.table.Name())

	res, err := d.exec.Execute(ctx, store.Statement{SQL: query, Batch: batch})
	return affected(res), err
}

// DeleteID removes the row with the given id.
func (d *Dispatcher) DeleteID(ctx context.Context, id any) (int64, error) {
	return d.Delete(ctx, ByID(id))
}

// UpdateWhere implements row.Writer.
func (d *Dispatcher) UpdateWhere(ctx context.Context, values, where map[string]any) error {
	if len(where) == 0 {
		return sqlerr.Validation("update", "row write-back needs an identifying filter")
	}
	_, err := d.Update(ctx, values, Filter{Fields: where})
	return err
}

// DeleteWhere implements row.Writer.
func (d *Dispatcher) DeleteWhere(ctx context.Context, where map[string]any) error {
	_, err := d.Delete(ctx, Filter{Fields: where})
	return err
}

// where renders f with bound values. Fields render in column order.
func (d *Dispatcher) where(f Filter) (string, []any, error) {
	op, err := filter.NormalizeOperator(f.Operator, false)
	if err != nil {
		return "", nil, err
	}

	var (
		parts []string
		args  []any
	)
	if len(f.Fields) > 0 {
		folded, err := fold(f.Fields)
		if err != nil {
			return "", nil, err
		}
		columns, err := d.table.Order(keys(folded))
		if err != nil {
			return "", nil, err
		}
		for _, c := range columns {
			if v := folded[c]; v == nil {
				parts = append(parts, c+" IS NULL")
			} else {
				parts = append(parts, c+" = ?")
				args = append(args, v)
			}
		}
	}

	clause := strings.Join(parts, " "+op+" ")
	if cond := strings.TrimSpace(f.Condition); cond != "" {
		if clause == "" {
			clause = cond
		} else {
			clause = "(" + clause + ") AND (" + cond + ")"
		}
	}
	return clause, args, nil
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// fold lower-cases field names, rejecting names that collide once folded.
func fold(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		f := schema.Fold(k)
		if _, dup := out[f]; dup {
			return nil, sqlerr.Validation("fields", "field %q given more than once", f)
		}
		out[f] = v
	}
	return out, nil
}

func affected(res *store.Result) int64 {
	if res == nil {
		return 0
	}
	return res.RowsAffected
}
