// Package filter accumulates WHERE and HAVING fragments in call order.
//
// The first clause of a set never carries a leading boolean operator; every
// later clause is prefixed with the operator chosen for its call:
//
//	var s filter.ClauseSet
//	s.Add("AND salary < 10", filter.And) // "salary < 10"
//	s.Add("name = 'x'", filter.Or)       // "salary < 10 OR name = 'x'"
package filter

import (
	"strings"

	"github.com/roach88/tablekit/internal/expr"
	"github.com/roach88/tablekit/internal/sqlerr"
)

// Boolean operator tokens.
const (
	And   = "AND"
	Or    = "OR"
	Comma = ","
)

// Field is one column = value pair of a keyword filter.
type Field struct {
	Name  string
	Value any
}

// ClauseSet is an ordered sequence of rendered clauses.
// The zero value is an empty set ready for use.
type ClauseSet struct {
	clauses []string
}

// Add appends clause joined by op.
//
// On an empty set any leading AND/OR token in clause is stripped. On a
// non-empty set the clause is prefixed by op, unless the text already leads
// with its own AND/OR token, which then stands as the operator for the call.
// Blank clauses are ignored.
func (s *ClauseSet) Add(clause, op string) error {
	op, err := NormalizeOperator(op, false)
	if err != nil {
		return err
	}

	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil
	}

	if len(s.clauses) == 0 {
		if _, rest, ok := leadingOperator(clause); ok {
			clause = rest
		}
		s.clauses = append(s.clauses, clause)
		return nil
	}

	if _, _, ok := leadingOperator(clause); ok {
		s.clauses = append(s.clauses, clause)
		return nil
	}
	s.clauses = append(s.clauses, op+" "+clause)
	return nil
}

// AddFields renders fields joined by combineOp and appends the result as a
// single clause joined by joinOp.
func (s *ClauseSet) AddFields(fields []Field, combineOp, joinOp string) error {
	if _, err := NormalizeOperator(joinOp, false); err != nil {
		return err
	}
	text, err := RenderFields(fields, combineOp)
	if err != nil {
		return err
	}
	return s.Add(text, joinOp)
}

// Render joins the stored clauses with single spaces.
// An empty set renders to "".
func (s *ClauseSet) Render() string {
	return strings.Join(s.clauses, " ")
}

// Len returns the number of stored clauses.
func (s *ClauseSet) Len() int { return len(s.clauses) }

// Reset empties the set.
func (s *ClauseSet) Reset() { s.clauses = nil }

// Clone returns an independent copy.
func (s *ClauseSet) Clone() ClauseSet {
	return ClauseSet{clauses: append([]string(nil), s.clauses...)}
}

// RenderFields renders each field as "col IS NULL" or "col = <literal>" and
// joins them with op.
func RenderFields(fields []Field, op string) (string, error) {
	op, err := NormalizeOperator(op, true)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		if f.Value == nil {
			parts[i] = f.Name + " IS NULL"
			continue
		}
		parts[i] = f.Name + " = " + expr.Literal(f.Value)
	}

	sep := " " + op + " "
	if op == Comma {
		sep = ", "
	}
	return strings.Join(parts, sep), nil
}

// NormalizeOperator validates op case-insensitively and returns its upper
// case form. An empty op means AND. The comma is accepted only when
// allowComma is set.
func NormalizeOperator(op string, allowComma bool) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(op)) {
	case "", And:
		return And, nil
	case Or:
		return Or, nil
	case Comma:
		if allowComma {
			return Comma, nil
		}
	}
	return "", sqlerr.Operator("filter", op)
}

// leadingOperator reports whether clause starts with an AND/OR keyword
// followed by whitespace or "(".
func leadingOperator(clause string) (op, rest string, ok bool) {
	for _, candidate := range []string{And, Or} {
		n := len(candidate)
		if len(clause) <= n || !strings.EqualFold(clause[:n], candidate) {
			continue
		}
		next := clause[n]
		if next == ' ' || next == '\t' || next == '\n' || next == '(' {
			return candidate, strings.TrimSpace(clause[n:]), true
		}
	}
	return "", "", false
}
