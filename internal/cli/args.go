package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/tablekit/internal/expr"
	"github.com/roach88/tablekit/internal/ops"
	"github.com/roach88/tablekit/internal/query"
	"github.com/roach88/tablekit/internal/sqlerr"
)

// FilterFlags are the row-selection flags shared by select, count, update
// and delete.
type FilterFlags struct {
	Where    string   // raw condition
	Fields   []string // column=value matches
	Operator string   // joins Fields
}

// filter converts the flags into a dispatcher filter.
func (f FilterFlags) filter() (ops.Filter, error) {
	fields, err := parseAssignments(f.Fields)
	if err != nil {
		return ops.Filter{}, err
	}
	return ops.Filter{Fields: fields, Operator: f.Operator, Condition: f.Where}, nil
}

// apply adds the flags to a builder.
func (f FilterFlags) apply(q *query.Builder) error {
	fields, err := parseAssignments(f.Fields)
	if err != nil {
		return err
	}
	q.WhereFieldsOp(fields, f.Operator, "AND")
	if f.Where != "" {
		q.Where(expr.Raw(f.Where))
	}
	return nil
}

// parseAssignments parses column=value pairs. Values are read with
// parseValue.
func parseAssignments(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, sqlerr.Validation("arguments", "expected column=value, got %q", p)
		}
		out[name] = parseValue(raw)
	}
	return out, nil
}

// parseValue reads a JSON scalar (number, true/false, null, quoted string)
// and falls back to the raw text.
func parseValue(raw string) any {
	var v any
	if err := decodeJSON([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any:
		return raw
	}
	return v
}

// parseRecords reads one JSON object or an array of objects.
func parseRecords(data string) ([]map[string]any, error) {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "{") {
		var rec map[string]any
		if err := decodeJSON([]byte(data), &rec); err != nil {
			return nil, sqlerr.Validation("arguments", "invalid JSON record: %v", err)
		}
		return []map[string]any{rec}, nil
	}
	var recs []map[string]any
	if err := decodeJSON([]byte(data), &recs); err != nil {
		return nil, sqlerr.Validation("arguments", "invalid JSON records: %v", err)
	}
	return recs, nil
}

// decodeJSON decodes with integers kept exact.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data")
	}
	normalizeNumbers(v)
	return nil
}

// normalizeNumbers replaces json.Number with int64 or float64 in place.
func normalizeNumbers(v any) {
	switch t := v.(type) {
	case *any:
		*t = number(*t)
	case *map[string]any:
		for k, x := range *t {
			(*t)[k] = number(x)
		}
	case *[]map[string]any:
		for _, m := range *t {
			for k, x := range m {
				m[k] = number(x)
			}
		}
	}
}

func number(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// applyOrder adds "col" or "col:dir" terms to q.
func applyOrder(q *query.Builder, terms []string) {
	for _, t := range terms {
		col, dir, ok := strings.Cut(t, ":")
		if ok {
			q.OrderByDir(col, dir)
			continue
		}
		q.OrderBy(col)
	}
}
