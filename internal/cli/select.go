package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tablekit/internal/expr"
	"github.com/roach88/tablekit/internal/query"
	"github.com/roach88/tablekit/internal/row"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	FilterFlags
	Columns  []string
	Order    []string
	GroupBy  []string
	Limit    int
	Offset   int
	PageSize int // stream in pages of this size; 0 fetches at once
	ShowSQL  bool
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Query rows from a table",
		Long: `Query rows from a table.

Filters given with --field are matched exactly (null matches IS NULL) and
joined with --op. --where takes raw SQL and is not checked.

Examples:
  tablekit select ttable --db ./app.db
  tablekit select ttable --field post=dev --field salary=10 --op or
  tablekit select ttable --where "salary > 10" --order name --order salary:desc --limit 5
  tablekit select ttable --columns name,salary --page-size 100 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], cmd)
		},
	}

	addFilterFlags(cmd, &opts.FilterFlags)
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "columns to select (default all)")
	cmd.Flags().StringArrayVar(&opts.Order, "order", nil, "order term, column or column:asc|desc (repeatable)")
	cmd.Flags().StringSliceVar(&opts.GroupBy, "group-by", nil, "group by columns")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows (0 = no limit)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "rows to skip (needs --limit or --page-size)")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "fetch in pages of this size")
	cmd.Flags().BoolVar(&opts.ShowSQL, "show-sql", false, "print the statement instead of running it")

	return cmd
}

func addFilterFlags(cmd *cobra.Command, f *FilterFlags) {
	cmd.Flags().StringVar(&f.Where, "where", "", "raw SQL condition")
	cmd.Flags().StringArrayVar(&f.Fields, "field", nil, "column=value match (repeatable)")
	cmd.Flags().StringVar(&f.Operator, "op", "AND", "operator joining --field matches (AND|OR)")
}

func runSelect(opts *SelectOptions, tableName string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	db, err := opts.open(ctx, f)
	if err != nil {
		return err
	}
	defer closeDB(db)

	tbl, err := db.Table(tableName)
	if err != nil {
		return f.Fail("unknown table", err)
	}

	var items []expr.Selectable
	for _, name := range opts.Columns {
		c, err := tbl.Column(name)
		if err != nil {
			return f.Fail("invalid column", err)
		}
		items = append(items, c)
	}

	q := tbl.Query(items...)
	if err := opts.FilterFlags.apply(q); err != nil {
		return f.Fail("invalid filter", err)
	}
	q.GroupBy(opts.GroupBy...)
	applyOrder(q, opts.Order)
	q.Limit(opts.Limit).Offset(opts.Offset)

	if opts.ShowSQL {
		s, err := q.SQL()
		if err != nil {
			return f.Fail("invalid query", err)
		}
		return f.Success(s)
	}
	f.VerboseLog("query: %s", q.String())

	rows, err := collect(cmd, q, opts.PageSize)
	if err != nil {
		return f.Fail("query failed", err)
	}
	return f.Rows(q.Columns(), tuples(q.Columns(), rows))
}

// collect runs q at once, or page by page when pageSize is set.
func collect(cmd *cobra.Command, q *query.Builder, pageSize int) ([]row.Row, error) {
	if pageSize <= 0 {
		return q.All(cmd.Context(), 0)
	}
	var rows []row.Row
	for r, err := range q.Pages(cmd.Context(), pageSize) {
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// tuples extracts values in column order.
func tuples(columns []string, rows []row.Row) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		vals := make([]any, len(columns))
		for j, c := range columns {
			vals[j], _ = r.Get(c)
		}
		out[i] = vals
	}
	return out
}
