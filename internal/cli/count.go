package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	FilterFlags
}

// CountResult is the count command's JSON payload.
type CountResult struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count matching rows",
		Long: `Count rows of a table, optionally filtered.

Examples:
  tablekit count ttable --db ./app.db
  tablekit count ttable --field post=dev --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, args[0], cmd)
		},
	}

	addFilterFlags(cmd, &opts.FilterFlags)
	return cmd
}

func runCount(opts *CountOptions, tableName string, cmd *cobra.Command) error {
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

	q := tbl.Query()
	if err := opts.FilterFlags.apply(q); err != nil {
		return f.Fail("invalid filter", err)
	}
	n, err := q.Count(ctx)
	if err != nil {
		return f.Fail("count failed", err)
	}

	if f.Format == "json" {
		return f.Success(CountResult{Table: tbl.Name(), Count: n})
	}
	fmt.Fprintln(f.Writer, n)
	return nil
}
