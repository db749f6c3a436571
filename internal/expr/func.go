package expr

import (
	"fmt"
	"strings"
)

// Func is a scalar or aggregate SQL function applied to a column.
//
// In a SELECT body it renders "FN(arg) AS label"; used as a comparison
// operand it renders just "FN(arg)".
type Func struct {
	Operand
	label     string
	aggregate bool
}

// aggregates are the SQLite functions that fold many rows into one.
var aggregates = map[string]bool{
	"AVG": true, "COUNT": true, "GROUP_CONCAT": true,
	"MAX": true, "MIN": true, "SUM": true, "TOTAL": true,
}

func newFunc(name, arg, label string) Func {
	return Func{
		Operand:   Operand{expr: fmt.Sprintf("%s(%s)", name, arg)},
		label:     label,
		aggregate: aggregates[name],
	}
}

// As overrides the default alias.
func (f Func) As(alias string) Func {
	f.label = alias
	return f
}

// Aggregate reports whether the function folds rows, e.g. AVG or COUNT.
func (f Func) Aggregate() bool { return f.aggregate }

// Label implements Selectable.
func (f Func) Label() string { return f.label }

// SelectSQL implements Selectable.
func (f Func) SelectSQL() string { return f.expr + " AS " + f.label }

// Avg wraps the column in AVG().
func (c ColumnRef) Avg() Func { return newFunc("AVG", c.expr, c.name) }

// Sum wraps the column in SUM().
func (c ColumnRef) Sum() Func { return newFunc("SUM", c.expr, c.name) }

// Min wraps the column in MIN().
func (c ColumnRef) Min() Func { return newFunc("MIN", c.expr, c.name) }

// Max wraps the column in MAX().
func (c ColumnRef) Max() Func { return newFunc("MAX", c.expr, c.name) }

// Count wraps the column in COUNT().
func (c ColumnRef) Count() Func { return newFunc("COUNT", c.expr, c.name) }

// CountDistinct renders COUNT(DISTINCT column).
func (c ColumnRef) CountDistinct() Func {
	return newFunc("COUNT", "DISTINCT "+c.expr, c.name)
}

// Upper wraps the column in UPPER().
func (c ColumnRef) Upper() Func { return newFunc("UPPER", c.expr, c.name) }

// Lower wraps the column in LOWER().
func (c ColumnRef) Lower() Func { return newFunc("LOWER", c.expr, c.name) }

// Length wraps the column in LENGTH().
func (c ColumnRef) Length() Func { return newFunc("LENGTH", c.expr, c.name) }

// Substr renders SUBSTR(column, start[, length]). A length of zero or less
// takes the rest of the string.
func (c ColumnRef) Substr(start, length int) Func {
	arg := fmt.Sprintf("%s, %d", c.expr, start)
	if length > 0 {
		arg = fmt.Sprintf("%s, %d", arg, length)
	}
	return newFunc("SUBSTR", arg, c.name)
}

// CountAll renders COUNT(*) labeled "count".
func CountAll() Func { return newFunc("COUNT", "*", "count") }

// Random renders RANDOM() labeled "random".
func Random() Func { return newFunc("RANDOM", "", "random") }

// Call applies an arbitrary function name to an operand. The label defaults
// to the function name in lower case.
func Call(name string, arg Operand) Func {
	return newFunc(strings.ToUpper(name), arg.SQL(), strings.ToLower(name))
}

// IsAggregate reports whether a SELECT item is an aggregate function.
func IsAggregate(item Selectable) bool {
	a, ok := item.(interface{ Aggregate() bool })
	return ok && a.Aggregate()
}
