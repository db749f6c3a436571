package row

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/tablekit/internal/schema"
	"github.com/roach88/tablekit/internal/sqlerr"
)

// Form selects the Row implementation a Materializer builds.
type Form int

const (
	FormMap Form = iota
	FormStruct
)

func (f Form) String() string {
	switch f {
	case FormMap:
		return "map"
	case FormStruct:
		return "struct"
	default:
		return fmt.Sprintf("Form(%d)", int(f))
	}
}

// ParseForm parses "map" or "struct". Empty means map.
func ParseForm(s string) (Form, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "map":
		return FormMap, nil
	case "struct":
		return FormStruct, nil
	}
	return FormMap, sqlerr.Validation("row form", "unknown row form %q (want map or struct)", s)
}

// Materializer turns result tuples into Rows bound to a table and writer.
type Materializer struct {
	Table  *schema.Table
	Writer Writer
	Form   Form
	Logger *slog.Logger
}

// Make builds one Row from ordered column names and a tuple.
func (m Materializer) Make(columns []string, values []any) (Row, error) {
	rows, err := m.MakeAll(columns, [][]any{values})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// MakeAll builds one Row per tuple. Every column named like a table column
// is treated as stored.
func (m Materializer) MakeAll(columns []string, tuples [][]any) ([]Row, error) {
	return m.MakeResult(columns, nil, tuples)
}

// MakeResult builds one Row per tuple. stored marks, per column, whether the
// value was read straight from the table column of that name; nil marks
// every such column. Only stored columns are tracked and used as identity.
//
// Column names are folded once and must be unique. The struct layout is
// shared by every row.
func (m Materializer) MakeResult(columns []string, stored []bool, tuples [][]any) ([]Row, error) {
	if m.Table == nil {
		return nil, sqlerr.Validation("materialize", "no table")
	}
	if stored != nil && len(stored) != len(columns) {
		return nil, sqlerr.Validation("materialize", "%d stored flags for %d columns", len(stored), len(columns))
	}

	folded := make([]string, len(columns))
	tracked := make(map[string]bool, len(columns))
	for i, c := range columns {
		folded[i] = schema.Fold(c)
		if slices.Contains(folded[:i], folded[i]) {
			return nil, sqlerr.Validation("materialize", "duplicate column %q", folded[i])
		}
		if m.Table.Has(folded[i]) && (stored == nil || stored[i]) {
			tracked[folded[i]] = true
		}
	}

	var layout *Layout
	if m.Form == FormStruct {
		layout = NewLayout(folded)
	}

	rows := make([]Row, 0, len(tuples))
	for _, t := range tuples {
		if len(t) != len(folded) {
			return nil, sqlerr.Validation("materialize", "tuple has %d values for %d columns", len(t), len(folded))
		}
		st := newState(m.Table, m.Writer, m.Logger, tracked)
		switch m.Form {
		case FormStruct:
			rows = append(rows, newStructRow(st, layout, t))
		default:
			rows = append(rows, newMapRow(st, folded, t))
		}
	}
	return rows, nil
}
