package schema

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/tablekit/internal/sqlerr"
	"github.com/roach88/tablekit/internal/store"
)

// Registry maps table names (case-insensitively) to Tables.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRegistry builds a Registry from already known tables.
func NewRegistry(tables ...*Table) *Registry {
	r := &Registry{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		r.tables[Fold(t.Name())] = t
	}
	return r
}

// Load reads every user table from the engine catalog.
func Load(ctx context.Context, exec store.Executor) (*Registry, error) {
	r := NewRegistry()
	if err := r.Reload(ctx, exec); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rebuilds the registry from the engine catalog, e.g. after DDL.
func (r *Registry) Reload(ctx context.Context, exec store.Executor) error {
	res, err := exec.Execute(ctx, store.Statement{
		SQL:   "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
		Fetch: store.FetchAll,
	})
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}

	tables := make(map[string]*Table, len(res.Rows))
	for _, row := range res.Rows {
		name, ok := row[0].(string)
		if !ok {
			return fmt.Errorf("list tables: unexpected name type %T", row[0])
		}
		t, err := loadTable(ctx, exec, name)
		if err != nil {
			return err
		}
		tables[Fold(name)] = t
	}

	r.mu.Lock()
	r.tables = tables
	r.mu.Unlock()
	return nil
}

// loadTable reads one table's columns via PRAGMA table_info. Rows are
// (cid, name, type, notnull, dflt_value, pk); pk is the 1-based position in
// the primary key, 0 otherwise.
func loadTable(ctx context.Context, exec store.Executor, name string) (*Table, error) {
	res, err := exec.Execute(ctx, store.Statement{
		SQL:   "SELECT name, pk FROM pragma_table_info(?) ORDER BY cid",
		Args:  []any{name},
		Fetch: store.FetchAll,
	})
	if err != nil {
		return nil, fmt.Errorf("table info %q: %w", name, err)
	}

	columns := make([]string, 0, len(res.Rows))
	type keyPart struct {
		name string
		pos  int64
	}
	var keys []keyPart
	for _, row := range res.Rows {
		col, _ := row[0].(string)
		columns = append(columns, col)
		if pos, ok := row[1].(int64); ok && pos > 0 {
			keys = append(keys, keyPart{name: col, pos: pos})
		}
	}
	slices.SortFunc(keys, func(a, b keyPart) int { return int(a.pos - b.pos) })

	pk := make([]string, len(keys))
	for i, k := range keys {
		pk[i] = k.name
	}
	return NewTable(name, columns, pk), nil
}

// Lookup returns the named table.
func (r *Registry) Lookup(name string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[Fold(name)]
	if !ok {
		return nil, sqlerr.Schema("table", "unknown table %q", name)
	}
	return t, nil
}

// Tables returns every table sorted by name.
func (r *Registry) Tables() []*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Table) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// Names returns every table name sorted.
func (r *Registry) Names() []string {
	tables := r.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name()
	}
	return names
}
