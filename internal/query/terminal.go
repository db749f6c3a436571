package query

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/roach88/tablekit/internal/expr"
	"github.com/roach88/tablekit/internal/row"
	"github.com/roach88/tablekit/internal/sqlerr"
	"github.com/roach88/tablekit/internal/store"
)

// Exists reports whether the statement matches any row.
func (b *Builder) Exists(ctx context.Context) (bool, error) {
	inner, err := b.SQL()
	if err != nil {
		return false, err
	}
	res, err := b.exec.Execute(ctx, store.Statement{
		SQL:   "SELECT EXISTS(" + inner + ")",
		Fetch: store.FetchOne,
	})
	if err != nil {
		return false, err
	}
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return false, nil
	}
	return truthy(res.Rows[0][0]), nil
}

// Count returns how many rows the statement matches, counting the first
// body item. Ordering and limits are ignored. Grouped statements count
// groups, and a body with an aggregate counts its single result row. An
// empty body counts 0 without running a statement.
func (b *Builder) Count(ctx context.Context) (int64, error) {
	if err := b.Err(); err != nil {
		return 0, err
	}
	if len(b.body) == 0 {
		return 0, nil
	}

	c := b.Clone()
	c.orderBy = nil
	c.limit, c.offset = 0, 0

	var query string
	if len(c.groupBy) > 0 || slices.ContainsFunc(c.body, expr.IsAggregate) {
		inner, err := c.SQL()
		if err != nil {
			return 0, err
		}
		query = "SELECT COUNT(*) FROM (" + inner + ")"
	} else {
		var sb strings.Builder
		fmt.Fprintf(&sb, "SELECT COUNT(%s) FROM %s", c.body[0].SQL(), c.rows.Table.Name())
		c.renderTail(&sb)
		query = sb.String()
	}

	res, err := b.exec.Execute(ctx, store.Statement{SQL: query, Fetch: store.FetchOne})
	if err != nil {
		return 0, err
	}
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return 0, nil
	}
	n, ok := res.Rows[0][0].(int64)
	if !ok {
		return 0, sqlerr.Engine("count", query, fmt.Errorf("unexpected count type %T", res.Rows[0][0]))
	}
	return n, nil
}

// First returns the first matching row, or nil when nothing matches.
func (b *Builder) First(ctx context.Context) (row.Row, error) {
	rows, err := b.Clone().Limit(1).fetch(ctx, store.FetchOne, 0)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// One is an alias for First.
func (b *Builder) One(ctx context.Context) (row.Row, error) {
	return b.First(ctx)
}

// All returns every matching row. A positive size caps how many rows are
// read.
func (b *Builder) All(ctx context.Context, size int) ([]row.Row, error) {
	if size < 0 {
		return nil, sqlerr.Validation("all", "negative size %d", size)
	}
	if size > 0 {
		return b.fetch(ctx, store.FetchMany, size)
	}
	return b.fetch(ctx, store.FetchAll, 0)
}

// Pages streams matching rows one page of pageSize at a time, starting at
// the builder's offset. The builder's own limit is replaced by pageSize.
// Iteration stops at the first empty page or error.
//
// The sequence is single-use: ranging over it again yields nothing. Each
// page is fetched when needed, so rows changed between pages may be skipped
// or seen twice.
func (b *Builder) Pages(ctx context.Context, pageSize int) iter.Seq2[row.Row, error] {
	c := b.Clone()
	used := false
	return func(yield func(row.Row, error) bool) {
		if used {
			return
		}
		used = true

		if pageSize <= 0 {
			yield(nil, sqlerr.Validation("pages", "page size must be positive, got %d", pageSize))
			return
		}

		start := c.offset
		for page := 0; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			p := c.Clone()
			p.limit = pageSize
			p.offset = start + page*pageSize

			rows, err := p.fetch(ctx, store.FetchAll, 0)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(rows) == 0 {
				return
			}
			for _, r := range rows {
				if !yield(r, nil) {
					return
				}
			}
		}
	}
}

func (b *Builder) fetch(ctx context.Context, mode store.Fetch, size int) ([]row.Row, error) {
	query, err := b.SQL()
	if err != nil {
		return nil, err
	}
	res, err := b.exec.Execute(ctx, store.Statement{SQL: query, Fetch: mode, Size: size})
	if err != nil {
		return nil, err
	}
	return b.rows.MakeResult(b.Columns(), b.stored(), res.Rows)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case int64:
		return t != 0
	case bool:
		return t
	case nil:
		return false
	}
	return true
}
