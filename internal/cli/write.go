package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tablekit/internal/sqlerr"
)

// WriteResult is the JSON payload of insert, update and delete.
type WriteResult struct {
	Table        string `json:"table"`
	RowsAffected int64  `json:"rows_affected"`
}

func reportWrite(f *OutputFormatter, table, verb string, n int64) error {
	if f.Format == "json" {
		return f.Success(WriteResult{Table: table, RowsAffected: n})
	}
	fmt.Fprintf(f.Writer, "%s %d row(s) in %s\n", verb, n, table)
	return nil
}

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	Set  []string
	JSON string
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert <table>",
		Short: "Insert rows",
		Long: `Insert one row from --set pairs, or many rows from a JSON array.

All records of a batch must carry the same fields.

Examples:
  tablekit insert ttable --set name=ann --set post=dev --set salary=10
  tablekit insert ttable --json '[{"name":"ann","salary":10},{"name":"bob","salary":20}]'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "column=value (repeatable)")
	cmd.Flags().StringVar(&opts.JSON, "json", "", "JSON object or array of objects")
	cmd.MarkFlagsMutuallyExclusive("set", "json")

	return cmd
}

func runInsert(opts *InsertOptions, tableName string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	var records []map[string]any
	switch {
	case opts.JSON != "":
		recs, err := parseRecords(opts.JSON)
		if err != nil {
			return f.Fail("invalid records", err)
		}
		records = recs
	default:
		rec, err := parseAssignments(opts.Set)
		if err != nil {
			return f.Fail("invalid values", err)
		}
		if rec != nil {
			records = append(records, rec)
		}
	}

	db, err := opts.open(ctx, f)
	if err != nil {
		return err
	}
	defer closeDB(db)

	tbl, err := db.Table(tableName)
	if err != nil {
		return f.Fail("unknown table", err)
	}
	n, err := tbl.Insert(ctx, records...)
	if err != nil {
		return f.Fail("insert failed", err)
	}
	return reportWrite(f, tbl.Name(), "Inserted", n)
}

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	FilterFlags
	Set []string
	All bool
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <table>",
		Short: "Update matching rows",
		Long: `Set columns on rows matching --field or --where.

Updating without a filter touches every row and must be confirmed
with --all.

Examples:
  tablekit update ttable --set salary=20 --field name=ann
  tablekit update ttable --set post=lead --where "salary > 100"
  tablekit update ttable --set salary=0 --all`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	addFilterFlags(cmd, &opts.FilterFlags)
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "column=value (repeatable)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "allow updating every row")

	return cmd
}

func runUpdate(opts *UpdateOptions, tableName string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	values, err := parseAssignments(opts.Set)
	if err != nil {
		return f.Fail("invalid values", err)
	}
	filter, err := opts.FilterFlags.filter()
	if err != nil {
		return f.Fail("invalid filter", err)
	}
	if filter.IsZero() && !opts.All {
		return f.Fail("refusing to update", sqlerr.Validation("update", "no filter given; pass --all to update every row"))
	}

	db, err := opts.open(ctx, f)
	if err != nil {
		return err
	}
	defer closeDB(db)

	tbl, err := db.Table(tableName)
	if err != nil {
		return f.Fail("unknown table", err)
	}
	n, err := tbl.Update(ctx, values, filter)
	if err != nil {
		return f.Fail("update failed", err)
	}
	return reportWrite(f, tbl.Name(), "Updated", n)
}

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	FilterFlags
	IDs []string
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete rows by id or filter",
		Long: `Delete rows by id, by --field matches or by a raw --where condition.

A filter is required.

Examples:
  tablekit delete ttable --id 3 --id 4
  tablekit delete ttable --field post=null
  tablekit delete ttable --where "salary < 10"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	addFilterFlags(cmd, &opts.FilterFlags)
	cmd.Flags().StringSliceVar(&opts.IDs, "id", nil, "row id (repeatable)")

	return cmd
}

func runDelete(opts *DeleteOptions, tableName string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	filter, err := opts.FilterFlags.filter()
	if err != nil {
		return f.Fail("invalid filter", err)
	}

	db, err := opts.open(ctx, f)
	if err != nil {
		return err
	}
	defer closeDB(db)

	tbl, err := db.Table(tableName)
	if err != nil {
		return f.Fail("unknown table", err)
	}

	var n int64
	if len(opts.IDs) > 0 {
		ids := make([]any, len(opts.IDs))
		for i, id := range opts.IDs {
			ids[i] = parseValue(id)
		}
		n, err = tbl.DeleteIDs(ctx, ids...)
	} else {
		n, err = tbl.Delete(ctx, filter)
	}
	if err != nil {
		return f.Fail("delete failed", err)
	}
	return reportWrite(f, tbl.Name(), "Deleted", n)
}
