// Package schema is the column lookup the builder and rows validate against.
//
// A Registry maps table names to Table descriptors built once from the
// engine's catalog (sqlite_master and PRAGMA table_info). Lookups are
// explicit calls; nothing is resolved by reflection.
package schema

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/tablekit/internal/expr"
	"github.com/roach88/tablekit/internal/sqlerr"
)

var lower = cases.Lower(language.Und)

// Fold returns the canonical (lower-cased) form of a column name.
func Fold(name string) string {
	return lower.String(strings.TrimSpace(name))
}

// Table describes one table: its ordered columns and declared primary key.
type Table struct {
	name       string
	columns    []string
	index      map[string]int
	primaryKey []string
}

// NewTable builds a Table. Column names are lower-cased and de-duplicated,
// keeping first-declaration order. Primary key names are folded the same way
// and must name known columns; unknown ones are dropped.
func NewTable(name string, columns []string, primaryKey []string) *Table {
	t := &Table{name: name, index: make(map[string]int, len(columns))}
	for _, c := range columns {
		c = Fold(c)
		if c == "" {
			continue
		}
		if _, dup := t.index[c]; dup {
			continue
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	for _, pk := range primaryKey {
		pk = Fold(pk)
		if _, ok := t.index[pk]; ok && !slices.Contains(t.primaryKey, pk) {
			t.primaryKey = append(t.primaryKey, pk)
		}
	}
	return t
}

// Name returns the table name as declared.
func (t *Table) Name() string { return t.name }

// TableName implements expr.ColumnSet.
func (t *Table) TableName() string { return t.name }

// Columns returns a copy of the ordered column names.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Len returns the number of columns.
func (t *Table) Len() int { return len(t.columns) }

// Has reports whether the table has the column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[Fold(name)]
	return ok
}

// Lookup implements expr.ColumnSet.
func (t *Table) Lookup(name string) (string, bool) {
	name = Fold(name)
	_, ok := t.index[name]
	return name, ok
}

// Index returns the column's position in declaration order.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[Fold(name)]
	return i, ok
}

// PrimaryKey returns the declared primary key columns, possibly empty.
func (t *Table) PrimaryKey() []string { return slices.Clone(t.primaryKey) }

// Identity returns the columns that identify a row: the declared primary key,
// else an "id" column, else nil.
func (t *Table) Identity() []string {
	if len(t.primaryKey) > 0 {
		return slices.Clone(t.primaryKey)
	}
	if t.Has("id") {
		return []string{"id"}
	}
	return nil
}

// Column returns a validated ColumnRef.
func (t *Table) Column(name string) (expr.ColumnRef, error) {
	return expr.Col(t, name)
}

// MustColumn is like Column but panics on unknown columns.
// Intended for statically known names.
func (t *Table) MustColumn(name string) expr.ColumnRef {
	c, err := t.Column(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Order returns names sorted by column position. Unknown names fail with a
// schema error.
func (t *Table) Order(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		canonical, ok := t.Lookup(n)
		if !ok {
			return nil, sqlerr.Schema("column", "table %q has no column %q", t.name, n)
		}
		out = append(out, canonical)
	}
	slices.SortFunc(out, func(a, b string) int { return t.index[a] - t.index[b] })
	return out, nil
}
