// Package expr provides the predicate algebra used by the query builder.
//
// A ColumnRef is a validated, table-qualified column reference rendered as
// `table`.column. Comparison methods on a ColumnRef (or on a scalar Func
// wrapping one) produce a Predicate: an immutable textual boolean fragment.
//
// Predicates combine only through the named And / Or methods. Nothing is
// parenthesized automatically; use Group when precedence matters:
//
//	salary := t.MustColumn("salary")
//	name := t.MustColumn("name")
//	p := salary.Gt(10).And(name.Eq(nil).Or(name.Eq("bob")).Group())
//	// `t`.salary > 10 AND (`t`.name IS NULL OR `t`.name = 'bob')
//
// Values are inlined as SQL literals (see Literal). This is the
// literal-inlined rendering path; bound parameters live in package ops.
package expr
