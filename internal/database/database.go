// Package database ties the store, schema registry, builder and dispatcher
// into DB and Table handles.
//
//	db, err := database.Open(ctx, database.Options{Path: "app.db"})
//	staff, err := db.Table("ttable")
//	salary := staff.MustColumn("salary")
//	rows, err := staff.Query().Where(salary.Gt(10)).OrderBy("name").All(ctx, 0)
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/tablekit/internal/row"
	"github.com/roach88/tablekit/internal/schema"
	"github.com/roach88/tablekit/internal/sqlerr"
	"github.com/roach88/tablekit/internal/store"
)

// DefaultPageSize is used by Table.Pages when Options leaves PageSize zero.
const DefaultPageSize = 100

// Options configures Open.
type Options struct {
	// Path is the database file, or ":memory:".
	Path string

	// Store configures the shared handle on first open.
	Store store.Options

	// Form selects the Row implementation.
	Form row.Form

	// PageSize is the default page size for Table.Pages.
	PageSize int

	Logger *slog.Logger
}

// DB is an open database with its schema loaded.
type DB struct {
	store    *store.Store
	registry *schema.Registry
	form     row.Form
	pageSize int
	logger   *slog.Logger
}

// Open returns a DB over the shared store for opts.Path and loads its
// schema. Opening the same path twice shares one connection.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if opts.Path == "" {
		return nil, sqlerr.Validation("open", "database path is empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Store.Logger == nil {
		opts.Store.Logger = logger
	}

	s, err := store.Shared(opts.Path, opts.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Path, err)
	}

	registry, err := schema.Load(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	logger.Debug("database opened",
		"path", opts.Path,
		"tables", len(registry.Names()),
		"form", opts.Form.String(),
	)
	return &DB{
		store:    s,
		registry: registry,
		form:     opts.Form,
		pageSize: pageSize,
		logger:   logger,
	}, nil
}

// Close closes the underlying store. Other DBs sharing the path lose their
// connection too.
func (db *DB) Close() error {
	return db.store.Close()
}

// Store returns the execution collaborator.
func (db *DB) Store() *store.Store { return db.store }

// Table returns the handle for name. Unknown tables fail with a schema
// error; call Reload after DDL run outside this DB.
func (db *DB) Table(name string) (*Table, error) {
	t, err := db.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return newTable(db, t), nil
}

// Tables returns every table, sorted by name.
func (db *DB) Tables() []*Table {
	var out []*Table
	for _, t := range db.registry.Tables() {
		out = append(out, newTable(db, t))
	}
	return out
}

// Reload re-reads the schema from the engine catalog.
func (db *DB) Reload(ctx context.Context) error {
	return db.registry.Reload(ctx, db.store)
}

// CreateTable runs the CREATE TABLE for def and returns its handle.
func (db *DB) CreateTable(ctx context.Context, def TableDef) (*Table, error) {
	query, err := def.SQL()
	if err != nil {
		return nil, err
	}
	if _, err := db.store.Execute(ctx, store.Statement{SQL: query}); err != nil {
		return nil, err
	}
	if err := db.Reload(ctx); err != nil {
		return nil, err
	}
	db.logger.Info("table created", "table", def.Name)
	return db.Table(def.Name)
}

// DropTable drops name if it exists.
func (db *DB) DropTable(ctx context.Context, name string) error {
	if name == "" {
		return sqlerr.Validation("drop table", "table name is empty")
	}
	query := fmt.Sprintf("DROP TABLE IF EXISTS `%s`", name)
	if _, err := db.store.Execute(ctx, store.Statement{SQL: query}); err != nil {
		return err
	}
	db.logger.Info("table dropped", "table", name)
	return db.Reload(ctx)
}

// DropTables drops every table. It stops at the first failure.
func (db *DB) DropTables(ctx context.Context) error {
	for _, name := range db.registry.Names() {
		if err := db.DropTable(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
