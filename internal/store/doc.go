// Package store is the SQL engine collaborator: a thin SQLite wrapper that
// executes statement text with optional bound parameters and returns raw
// result tuples.
//
// # Contract
//
// Execute takes a Statement:
//   - SQL: statement text
//   - Args: bound parameters for a single execution
//   - Batch: parameter sets for a many-execution (one run per set)
//   - Fetch: none | one | many | all
//   - Size: row cap for FetchMany (0 = unbounded)
//
// Every write commits on its own. A failure part way through a batch leaves
// the earlier executions committed; there is no multi-statement transaction.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes (optional)
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: Wait for locks (default 5 seconds)
//   - foreign_keys=ON: Enforce referential integrity
//   - One pooled connection: the engine is used from a single caller
//
// # Drivers
//
//   - "sqlite3": github.com/mattn/go-sqlite3 (cgo), the default
//   - "sqlite": modernc.org/sqlite (pure Go)
//
// Shared returns one Store per normalized database path, so every handle on
// the same file shares the single connection.
package store
