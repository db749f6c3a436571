package database

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tablekit/internal/expr"
	"github.com/roach88/tablekit/internal/sqlerr"
)

// Storage classes accepted in Column.Type. An empty type declares an
// untyped column.
const (
	Integer = "INTEGER"
	Real    = "REAL"
	Text    = "TEXT"
	Blob    = "BLOB"
)

// Referential actions for ForeignKey.
const (
	Cascade    = "CASCADE"
	SetNull    = "SET NULL"
	SetDefault = "SET DEFAULT"
	Restrict   = "RESTRICT"
)

// Column declares one column of a new table.
type Column struct {
	Name string
	Type string

	// Default is rendered as a literal; nil means no default.
	Default any

	PrimaryKey    bool
	AutoIncrement bool // INTEGER PRIMARY KEY only
	NotNull       bool
	Unique        bool
}

// ForeignKey declares a single-column reference to another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  string
	OnUpdate  string
}

// TableDef describes a CREATE TABLE statement.
type TableDef struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string // table-level key; leave empty when a column sets PrimaryKey
	ForeignKeys []ForeignKey
	IfNotExists bool
}

// SQL renders the CREATE TABLE statement.
func (d TableDef) SQL() (string, error) {
	if strings.TrimSpace(d.Name) == "" {
		return "", sqlerr.Validation("create table", "table name is empty")
	}
	if len(d.Columns) == 0 {
		return "", sqlerr.Validation("create table", "table %q has no columns", d.Name)
	}

	parts := make([]string, 0, len(d.Columns)+len(d.ForeignKeys)+1)
	for _, c := range d.Columns {
		s, err := c.sql()
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if len(d.PrimaryKey) > 0 {
		for _, c := range d.Columns {
			if c.PrimaryKey {
				return "", sqlerr.Validation("create table", "table %q declares a primary key on column %q and on the table", d.Name, c.Name)
			}
		}
		for _, k := range d.PrimaryKey {
			if !slices.ContainsFunc(d.Columns, func(c Column) bool { return strings.EqualFold(c.Name, k) }) {
				return "", sqlerr.Validation("create table", "primary key column %q is not declared", k)
			}
		}
		parts = append(parts, "PRIMARY KEY("+strings.Join(d.PrimaryKey, ", ")+")")
	}
	for _, fk := range d.ForeignKeys {
		s, err := fk.sql()
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if d.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	fmt.Fprintf(&sb, "`%s` (%s)", d.Name, strings.Join(parts, ", "))
	return sb.String(), nil
}

func (c Column) sql() (string, error) {
	if strings.TrimSpace(c.Name) == "" {
		return "", sqlerr.Validation("create table", "column name is empty")
	}
	typ := strings.ToUpper(strings.TrimSpace(c.Type))
	switch typ {
	case "", Integer, Real, Text, Blob:
	default:
		return "", sqlerr.Validation("create table", "column %q: unsupported type %q", c.Name, c.Type)
	}
	if c.AutoIncrement && (typ != Integer || !c.PrimaryKey) {
		return "", sqlerr.Validation("create table", "column %q: AUTOINCREMENT needs INTEGER PRIMARY KEY", c.Name)
	}

	parts := []string{"`" + c.Name + "`"}
	if typ != "" {
		parts = append(parts, typ)
	}
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
		if c.AutoIncrement {
			parts = append(parts, "AUTOINCREMENT")
		}
	}
	if c.NotNull {
		parts = append(parts, "NOT NULL")
	}
	if c.Unique {
		parts = append(parts, "UNIQUE")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT "+expr.Literal(c.Default))
	}
	return strings.Join(parts, " "), nil
}

func (fk ForeignKey) sql() (string, error) {
	if fk.Column == "" || fk.RefTable == "" || fk.RefColumn == "" {
		return "", sqlerr.Validation("create table", "foreign key on %q is incomplete", fk.Column)
	}
	s := fmt.Sprintf("FOREIGN KEY(`%s`) REFERENCES `%s`(`%s`)", fk.Column, fk.RefTable, fk.RefColumn)
	for _, a := range []struct{ on, action string }{{"DELETE", fk.OnDelete}, {"UPDATE", fk.OnUpdate}} {
		if a.action == "" {
			continue
		}
		action := strings.ToUpper(strings.TrimSpace(a.action))
		switch action {
		case Cascade, SetNull, SetDefault, Restrict:
		default:
			return "", sqlerr.Validation("create table", "unsupported ON %s action %q", a.on, a.action)
		}
		s += " ON " + a.on + " " + action
	}
	return s, nil
}
