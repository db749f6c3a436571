package expr

import (
	"reflect"
	"strings"

	"github.com/roach88/tablekit/internal/sqlerr"
)

// Subquery is anything that renders to a SELECT statement.
// *query.Builder satisfies it, so a builder can be nested inside In / NotIn.
type Subquery interface {
	SQL() (string, error)
}

// Operand is the left-hand side of a comparison: a column or a scalar
// function applied to one. ColumnRef and Func embed it.
type Operand struct {
	expr string
}

// SQL returns the bare operand expression, without any alias.
func (o Operand) SQL() string { return o.expr }

// Eq renders "= v". A nil operand renders "IS NULL".
func (o Operand) Eq(v any) Predicate {
	if v == nil {
		return Predicate{sql: o.expr + " IS NULL"}
	}
	return o.compare("=", v)
}

// Ne renders "!= v". A nil operand renders "IS NOT NULL".
func (o Operand) Ne(v any) Predicate {
	if v == nil {
		return Predicate{sql: o.expr + " IS NOT NULL"}
	}
	return o.compare("!=", v)
}

// Lt renders "< v".
func (o Operand) Lt(v any) Predicate { return o.compare("<", v) }

// Le renders "<= v".
func (o Operand) Le(v any) Predicate { return o.compare("<=", v) }

// Gt renders "> v".
func (o Operand) Gt(v any) Predicate { return o.compare(">", v) }

// Ge renders ">= v".
func (o Operand) Ge(v any) Predicate { return o.compare(">=", v) }

// Is renders "IS v".
func (o Operand) Is(v any) Predicate { return o.compare("IS", v) }

// IsNot renders "IS NOT v".
func (o Operand) IsNot(v any) Predicate { return o.compare("IS NOT", v) }

// In renders "IN (...)". The values are either a literal list or a single
// Subquery. An empty list is a validation error.
func (o Operand) In(values ...any) (Predicate, error) {
	return o.membership("IN", values)
}

// NotIn renders "NOT IN (...)" with the same rules as In.
func (o Operand) NotIn(values ...any) (Predicate, error) {
	return o.membership("NOT IN", values)
}

func (o Operand) compare(op string, v any) Predicate {
	return Predicate{sql: o.expr + " " + op + " " + Literal(v)}
}

func (o Operand) membership(op string, values []any) (Predicate, error) {
	if len(values) == 1 {
		if sub, ok := values[0].(Subquery); ok {
			text, err := sub.SQL()
			if err != nil {
				return Predicate{}, err
			}
			return Predicate{sql: o.expr + " " + op + " (" + text + ")"}, nil
		}
		values = flatten(values[0])
	}

	if len(values) == 0 {
		return Predicate{}, sqlerr.Validation(strings.ToLower(op), "value could not be empty")
	}

	items := make([]string, len(values))
	for i, v := range values {
		items[i] = Literal(v)
	}
	return Predicate{sql: o.expr + " " + op + " (" + strings.Join(items, ", ") + ")"}, nil
}

// flatten expands a single slice argument passed without the spread
// operator, e.g. col.In(ids) instead of col.In(ids...). A []byte is one
// blob value, not a list.
func flatten(v any) []any {
	switch vs := v.(type) {
	case []any:
		return vs
	case []byte:
		return []any{v}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
