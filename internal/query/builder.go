package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tablekit/internal/expr"
	"github.com/roach88/tablekit/internal/filter"
	"github.com/roach88/tablekit/internal/row"
	"github.com/roach88/tablekit/internal/schema"
	"github.com/roach88/tablekit/internal/sqlerr"
	"github.com/roach88/tablekit/internal/store"
)

// Sort directions accepted by OrderByDir.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Builder is a mutable single-table SELECT.
//
// The zero value is unbound; every terminal use fails until the builder is
// created with New. A Builder is not safe for concurrent use.
type Builder struct {
	exec store.Executor
	rows row.Materializer

	body    []expr.Selectable
	where   filter.ClauseSet
	having  filter.ClauseSet
	groupBy []string
	orderBy []string
	limit   int
	offset  int
	errs    []error
}

var _ expr.Subquery = (*Builder)(nil)

// New binds a builder to rows.Table, executing through exec. Without items
// the body is every column of the table.
func New(exec store.Executor, rows row.Materializer, items ...expr.Selectable) *Builder {
	b := &Builder{exec: exec, rows: rows}
	b.Reset(items...)
	return b
}

// Reset clears every accumulated clause and replaces the body, keeping the
// table binding.
func (b *Builder) Reset(items ...expr.Selectable) *Builder {
	b.body = nil
	b.where.Reset()
	b.having.Reset()
	b.groupBy = nil
	b.orderBy = nil
	b.limit = 0
	b.offset = 0
	b.errs = nil

	table := b.rows.Table
	if table == nil {
		return b
	}
	if len(items) == 0 {
		for _, c := range table.Columns() {
			b.body = append(b.body, table.MustColumn(c))
		}
		return b
	}
	b.body = slices.Clone(items)
	return b
}

// Table returns the bound table, or nil.
func (b *Builder) Table() *schema.Table { return b.rows.Table }

// Where adds p joined with AND.
func (b *Builder) Where(p expr.Predicate) *Builder {
	return b.WhereOp(filter.And, p)
}

// WhereOp adds p joined with op (AND or OR).
func (b *Builder) WhereOp(op string, p expr.Predicate) *Builder {
	b.fail(b.where.Add(p.String(), op))
	return b
}

// WhereFields adds column = value matches, ANDed together and joined with AND.
// A nil value matches IS NULL.
func (b *Builder) WhereFields(fields map[string]any) *Builder {
	return b.WhereFieldsOp(fields, filter.And, filter.And)
}

// WhereFieldsOp adds column = value matches combined with combineOp, joined to
// earlier clauses with joinOp.
func (b *Builder) WhereFieldsOp(fields map[string]any, combineOp, joinOp string) *Builder {
	b.addFields(&b.where, fields, combineOp, joinOp)
	return b
}

// Having adds p to the HAVING clause joined with AND.
func (b *Builder) Having(p expr.Predicate) *Builder {
	return b.HavingOp(filter.And, p)
}

// HavingOp adds p to the HAVING clause joined with op.
func (b *Builder) HavingOp(op string, p expr.Predicate) *Builder {
	b.fail(b.having.Add(p.String(), op))
	return b
}

// HavingFields is WhereFields for the HAVING clause.
func (b *Builder) HavingFields(fields map[string]any) *Builder {
	return b.HavingFieldsOp(fields, filter.And, filter.And)
}

// HavingFieldsOp is WhereFieldsOp for the HAVING clause.
func (b *Builder) HavingFieldsOp(fields map[string]any, combineOp, joinOp string) *Builder {
	b.addFields(&b.having, fields, combineOp, joinOp)
	return b
}

// GroupBy appends grouping terms.
func (b *Builder) GroupBy(cols ...string) *Builder {
	for _, c := range cols {
		if c = strings.TrimSpace(c); c == "" {
			b.fail(sqlerr.Validation("group by", "blank column"))
			continue
		}
		b.groupBy = append(b.groupBy, c)
	}
	return b
}

// OrderBy appends ordering terms without a direction.
func (b *Builder) OrderBy(cols ...string) *Builder {
	for _, c := range cols {
		if c = strings.TrimSpace(c); c == "" {
			b.fail(sqlerr.Validation("order by", "blank column"))
			continue
		}
		b.orderBy = append(b.orderBy, c)
	}
	return b
}

// OrderByDir appends one ordering term with a direction, asc or desc in any
// case.
func (b *Builder) OrderByDir(col, dir string) *Builder {
	col = strings.TrimSpace(col)
	d := strings.ToLower(strings.TrimSpace(dir))
	switch {
	case col == "":
		b.fail(sqlerr.Validation("order by", "blank column"))
	case d != Asc && d != Desc:
		b.fail(sqlerr.Validation("order by", "invalid direction %q for %q (want asc or desc)", dir, col))
	default:
		b.orderBy = append(b.orderBy, col+" "+d)
	}
	return b
}

// Limit caps the result. Zero removes the cap.
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		b.fail(sqlerr.Validation("limit", "negative limit %d", n))
		return b
	}
	b.limit = n
	return b
}

// Offset skips n rows. It is rendered only together with a limit.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		b.fail(sqlerr.Validation("offset", "negative offset %d", n))
		return b
	}
	b.offset = n
	return b
}

// Columns returns the result labels of the body, in order.
func (b *Builder) Columns() []string {
	out := make([]string, len(b.body))
	for i, item := range b.body {
		out[i] = item.Label()
	}
	return out
}

// stored reports, per body item, whether it reads a column of the bound
// table as is.
// Functions keep the wrapped column's name as their label, so only plain
// column references may be written back.
func (b *Builder) stored() []bool {
	out := make([]bool, len(b.body))
	for i, item := range b.body {
		c, ok := item.(expr.ColumnRef)
		out[i] = ok && c.Table() == b.rows.Table.Name()
	}
	return out
}

// Err returns the errors collected while composing, joined.
func (b *Builder) Err() error {
	if b.rows.Table == nil {
		return sqlerr.Validation("query", "builder is not bound to a table")
	}
	return errors.Join(b.errs...)
}

// SQL renders the statement. It implements expr.Subquery, so a builder can
// be the operand of In and NotIn.
func (b *Builder) SQL() (string, error) {
	if err := b.Err(); err != nil {
		return "", err
	}
	if len(b.body) == 0 {
		return "", sqlerr.Validation("query", "empty select body")
	}

	items := make([]string, len(b.body))
	labels := make([]string, len(b.body))
	for i, item := range b.body {
		items[i] = item.SelectSQL()
		labels[i] = schema.Fold(item.Label())
		if slices.Contains(labels[:i], labels[i]) {
			return "", sqlerr.Validation("query", "duplicate result column %q; alias one of them with As", item.Label())
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(items, ", "), b.rows.Table.Name())
	b.renderTail(&sb)
	return sb.String(), nil
}

// String returns the rendered statement, or the composition error.
func (b *Builder) String() string {
	s, err := b.SQL()
	if err != nil {
		return err.Error()
	}
	return s
}

// Clone returns an independent copy sharing only the table binding.
func (b *Builder) Clone() *Builder {
	c := *b
	c.body = slices.Clone(b.body)
	c.where = b.where.Clone()
	c.having = b.having.Clone()
	c.groupBy = slices.Clone(b.groupBy)
	c.orderBy = slices.Clone(b.orderBy)
	c.errs = slices.Clone(b.errs)
	return &c
}

func (b *Builder) renderTail(sb *strings.Builder) {
	if w := b.where.Render(); w != "" {
		sb.WriteString(" WHERE " + w)
	}
	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY " + strings.Join(b.groupBy, ", "))
	}
	if h := b.having.Render(); h != "" {
		sb.WriteString(" HAVING " + h)
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		fmt.Fprintf(sb, " LIMIT %d", b.limit)
		if b.offset > 0 {
			fmt.Fprintf(sb, " OFFSET %d", b.offset)
		}
	}
}

// addFields validates names against the table and renders them in column
// order, so output does not depend on map iteration.
func (b *Builder) addFields(set *filter.ClauseSet, fields map[string]any, combineOp, joinOp string) {
	table := b.rows.Table
	if table == nil || len(fields) == 0 {
		return
	}
	if _, err := filter.NormalizeOperator(combineOp, false); err != nil {
		b.fail(err)
		return
	}

	names := make([]string, 0, len(fields))
	values := make(map[string]any, len(fields))
	for name, v := range fields {
		canonical, ok := table.Lookup(name)
		if !ok {
			b.fail(sqlerr.Schema("where", "table %q has no column %q", table.Name(), name))
			return
		}
		names = append(names, canonical)
		values[canonical] = v
	}
	ordered, err := table.Order(names)
	if err != nil {
		b.fail(err)
		return
	}

	fs := make([]filter.Field, len(ordered))
	for i, n := range ordered {
		fs[i] = filter.Field{Name: n, Value: values[n]}
	}
	b.fail(set.AddFields(fs, combineOp, joinOp))
}

func (b *Builder) fail(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}
