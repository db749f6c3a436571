package expr

import (
	"fmt"

	"github.com/roach88/tablekit/internal/sqlerr"
)

// ColumnSet is the schema view a ColumnRef is validated against.
type ColumnSet interface {
	// TableName returns the owning table's name.
	TableName() string

	// Lookup returns the canonical column name and whether it exists.
	Lookup(name string) (string, bool)
}

// ColumnRef is a qualified reference to one table column.
type ColumnRef struct {
	Operand
	table string
	name  string
}

// Col resolves name against set. Unknown columns fail here, not at render
// time.
func Col(set ColumnSet, name string) (ColumnRef, error) {
	canonical, ok := set.Lookup(name)
	if !ok {
		return ColumnRef{}, sqlerr.Schema("column", "table %q has no column %q", set.TableName(), name)
	}
	return ColumnRef{
		Operand: Operand{expr: fmt.Sprintf("`%s`.%s", set.TableName(), canonical)},
		table:   set.TableName(),
		name:    canonical,
	}, nil
}

// Table returns the owning table's name.
func (c ColumnRef) Table() string { return c.table }

// Name returns the unqualified column name.
func (c ColumnRef) Name() string { return c.name }

// String returns the qualified form `table`.column.
func (c ColumnRef) String() string { return c.expr }

// Label implements Selectable; a column is labeled by its own name.
func (c ColumnRef) Label() string { return c.name }

// SelectSQL implements Selectable.
func (c ColumnRef) SelectSQL() string { return c.expr }

// As returns the column aliased in a SELECT body.
func (c ColumnRef) As(alias string) Selectable {
	return aliased{expr: c.expr, label: alias}
}

// Selectable is an item of a SELECT body.
type Selectable interface {
	// SelectSQL renders the item as it appears in the SELECT list.
	SelectSQL() string

	// SQL renders the bare expression, without alias.
	SQL() string

	// Label is the result column name the item produces.
	Label() string
}

type aliased struct {
	expr  string
	label string
}

func (a aliased) SelectSQL() string { return a.expr + " AS " + a.label }
func (a aliased) SQL() string       { return a.expr }
func (a aliased) Label() string     { return a.label }
