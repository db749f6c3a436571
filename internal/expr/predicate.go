package expr

import "strings"

// Predicate is a rendered boolean SQL fragment usable in WHERE and HAVING.
//
// The zero Predicate is empty. Combining with an empty Predicate returns the
// other side unchanged, so predicates can be folded from zero.
type Predicate struct {
	sql string
}

// Raw lifts caller-written condition text into a Predicate.
// The text is not validated or quoted; it is the caller's responsibility.
func Raw(text string) Predicate {
	return Predicate{sql: strings.TrimSpace(text)}
}

// String returns the rendered fragment.
func (p Predicate) String() string { return p.sql }

// IsZero reports whether the predicate is empty.
func (p Predicate) IsZero() bool { return p.sql == "" }

// And returns "p AND other".
func (p Predicate) And(other Predicate) Predicate {
	return p.combine("AND", other)
}

// Or returns "p OR other".
func (p Predicate) Or(other Predicate) Predicate {
	return p.combine("OR", other)
}

// Group wraps the predicate in parentheses.
func (p Predicate) Group() Predicate {
	if p.IsZero() {
		return p
	}
	return Predicate{sql: "(" + p.sql + ")"}
}

func (p Predicate) combine(op string, other Predicate) Predicate {
	switch {
	case p.IsZero():
		return other
	case other.IsZero():
		return p
	}
	return Predicate{sql: p.sql + " " + op + " " + other.sql}
}

// And folds predicates left to right with AND.
func And(ps ...Predicate) Predicate {
	var out Predicate
	for _, p := range ps {
		out = out.And(p)
	}
	return out
}

// Or folds predicates left to right with OR.
func Or(ps ...Predicate) Predicate {
	var out Predicate
	for _, p := range ps {
		out = out.Or(p)
	}
	return out
}
