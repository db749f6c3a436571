// Package query composes single-table SELECT statements and runs them.
//
// A Builder accumulates a body, WHERE and HAVING clauses, grouping, ordering
// and a limit/offset. Rendering is idempotent and always emits clauses in
// the same order:
//
//	SELECT <body> FROM <table> [WHERE ...] [GROUP BY ...] [HAVING ...]
//	[ORDER BY ...] [LIMIT n [OFFSET m]]
//
// Mistakes made while composing (unknown columns, bad directions, negative
// limits) are collected rather than panicking; SQL and every terminal method
// return them, so a statement is never run half-built.
//
// Terminal methods (Exists, Count, First, All, Pages) run against a copy
// where they need to adjust the statement, leaving the builder untouched.
package query
