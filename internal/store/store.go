package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/tablekit/internal/sqlerr"
)

// Supported driver names.
const (
	DriverCGO    = "sqlite3"
	DriverPureGo = "sqlite"
)

// DefaultBusyTimeout is the busy_timeout applied when Options leaves it zero.
const DefaultBusyTimeout = 5000

// Fetch selects how many result rows Execute reads.
type Fetch int

const (
	// FetchNone executes without reading rows (writes, DDL).
	FetchNone Fetch = iota
	// FetchOne reads at most one row.
	FetchOne
	// FetchMany reads at most Statement.Size rows.
	FetchMany
	// FetchAll reads every row.
	FetchAll
)

// String returns the fetch mode name.
func (f Fetch) String() string {
	switch f {
	case FetchNone:
		return "none"
	case FetchOne:
		return "one"
	case FetchMany:
		return "many"
	case FetchAll:
		return "all"
	default:
		return fmt.Sprintf("Fetch(%d)", int(f))
	}
}

// Statement is one unit of work for the engine.
type Statement struct {
	SQL   string
	Args  []any
	Batch [][]any // non-nil runs SQL once per parameter set
	Fetch Fetch
	Size  int
}

// Result holds what the engine returned.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// Executor is the execution contract the core depends on.
type Executor interface {
	Execute(ctx context.Context, st Statement) (*Result, error)
}

// Options configures Open.
type Options struct {
	// Driver is DriverCGO (default) or DriverPureGo.
	Driver string

	// BusyTimeout in milliseconds; zero means DefaultBusyTimeout.
	BusyTimeout int

	// DisableWAL keeps the default rollback journal.
	DisableWAL bool

	// Logger receives statement traces at debug level; nil uses slog.Default.
	Logger *slog.Logger
}

// Store executes statements against one SQLite database.
type Store struct {
	db     *sql.DB
	path   string
	key    string // registry key when opened through Shared
	logger *slog.Logger
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and pins the pool to a single connection.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes (unless disabled)
//   - NORMAL synchronous mode (balance durability/performance)
//   - busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string, opts Options) (*Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverCGO
	}
	if driver != DriverCGO && driver != DriverPureGo {
		return nil, sqlerr.Validation("open", "unsupported driver %q", driver)
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and :memory: databases
	// exist per connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, opts); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{db: db, path: path, logger: logger.With("component", "store")}, nil
}

// Wrap adopts an open database handle without touching its configuration.
// Used with sqlmock and with handles managed elsewhere.
func Wrap(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger.With("component", "store")}
}

// Close closes the database connection and forgets a shared handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if s.key != "" {
		shared.forget(s.key, s)
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer Execute.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Execute runs st and returns the fetched rows, if any.
// Engine failures are returned as sqlerr engine errors.
func (s *Store) Execute(ctx context.Context, st Statement) (*Result, error) {
	s.logger.DebugContext(ctx, "execute",
		"sql", st.SQL,
		"args", len(st.Args),
		"batch", len(st.Batch),
		"fetch", st.Fetch.String(),
	)

	if st.Batch != nil {
		return s.executeMany(ctx, st)
	}

	if st.Fetch == FetchNone {
		res, err := s.db.ExecContext(ctx, st.SQL, st.Args...)
		if err != nil {
			return nil, sqlerr.Engine("execute", st.SQL, err)
		}
		affected, _ := res.RowsAffected()
		return &Result{RowsAffected: affected}, nil
	}

	return s.query(ctx, st)
}

// executeMany runs the statement once per parameter set. Each run commits on
// its own; the first failure stops the batch.
func (s *Store) executeMany(ctx context.Context, st Statement) (*Result, error) {
	stmt, err := s.db.PrepareContext(ctx, st.SQL)
	if err != nil {
		return nil, sqlerr.Engine("execute many", st.SQL, err)
	}
	defer stmt.Close()

	result := &Result{}
	for i, args := range st.Batch {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return result, sqlerr.Engine("execute many", st.SQL, fmt.Errorf("parameter set %d: %w", i, err))
		}
		affected, _ := res.RowsAffected()
		result.RowsAffected += affected
	}
	return result, nil
}

func (s *Store) query(ctx context.Context, st Statement) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, sqlerr.Engine("query", st.SQL, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, sqlerr.Engine("query", st.SQL, err)
	}

	limit := -1
	switch st.Fetch {
	case FetchOne:
		limit = 1
	case FetchMany:
		if st.Size > 0 {
			limit = st.Size
		}
	}

	result := &Result{Columns: columns, Rows: [][]any{}}
	for (limit < 0 || len(result.Rows) < limit) && rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, sqlerr.Engine("scan", st.SQL, err)
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, sqlerr.Engine("iterate", st.SQL, err)
	}

	return result, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, opts Options) error {
	timeout := opts.BusyTimeout
	if timeout == 0 {
		timeout = DefaultBusyTimeout
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", timeout),
		"PRAGMA foreign_keys = ON",
	}
	if !opts.DisableWAL {
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
