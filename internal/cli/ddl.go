package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tablekit/internal/database"
	"github.com/roach88/tablekit/internal/sqlerr"
)

// CreateTableOptions holds flags for the create-table command.
type CreateTableOptions struct {
	*RootOptions
	Columns     []string
	PrimaryKey  []string
	IfNotExists bool
}

// NewCreateTableCommand creates the create-table command.
func NewCreateTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateTableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create-table <name>",
		Short: "Create a table",
		Long: `Create a table from column specs.

A column spec is name[:TYPE[:flag...]] where TYPE is INTEGER, REAL, TEXT
or BLOB and flags are pk, autoincrement, notnull and unique.

Examples:
  tablekit create-table ttable --column id:INTEGER:pk --column name:TEXT --column salary:INTEGER
  tablekit create-table pairs --column a:TEXT --column b:INTEGER --primary-key a,b`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateTable(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Columns, "column", nil, "column spec (repeatable)")
	cmd.Flags().StringSliceVar(&opts.PrimaryKey, "primary-key", nil, "table-level primary key columns")
	cmd.Flags().BoolVar(&opts.IfNotExists, "if-not-exists", true, "skip if the table exists")

	return cmd
}

// parseColumn parses a name[:TYPE[:flag...]] spec.
func parseColumn(spec string) (database.Column, error) {
	parts := strings.Split(spec, ":")
	col := database.Column{Name: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		col.Type = strings.ToUpper(strings.TrimSpace(parts[1]))
	}
	for _, flag := range parts[min(2, len(parts)):] {
		switch strings.ToLower(strings.TrimSpace(flag)) {
		case "pk":
			col.PrimaryKey = true
		case "autoincrement":
			col.AutoIncrement = true
		case "notnull":
			col.NotNull = true
		case "unique":
			col.Unique = true
		default:
			return col, sqlerr.Validation("column spec", "unknown flag %q in %q", flag, spec)
		}
	}
	return col, nil
}

func runCreateTable(opts *CreateTableOptions, name string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	def := database.TableDef{Name: name, PrimaryKey: opts.PrimaryKey, IfNotExists: opts.IfNotExists}
	for _, spec := range opts.Columns {
		col, err := parseColumn(spec)
		if err != nil {
			return f.Fail("invalid column", err)
		}
		def.Columns = append(def.Columns, col)
	}

	db, err := opts.open(ctx, f)
	if err != nil {
		return err
	}
	defer closeDB(db)

	tbl, err := db.CreateTable(ctx, def)
	if err != nil {
		return f.Fail("create table failed", err)
	}

	info := TableInfo{Name: tbl.Name(), Columns: tbl.Schema().Columns(), PrimaryKey: tbl.Schema().PrimaryKey()}
	if f.Format == "json" {
		return f.Success(info)
	}
	fmt.Fprintf(f.Writer, "Created %s (%s)\n", info.Name, strings.Join(info.Columns, ", "))
	return nil
}

// DropTableOptions holds flags for the drop-table command.
type DropTableOptions struct {
	*RootOptions
	All bool
}

// NewDropTableCommand creates the drop-table command.
func NewDropTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DropTableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "drop-table [name]",
		Short: "Drop a table, or every table with --all",
		Long: `Drop a table if it exists.

Examples:
  tablekit drop-table ttable
  tablekit drop-table --all`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runDropTable(opts, name, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "drop every table")
	return cmd
}

func runDropTable(opts *DropTableOptions, name string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	if (name == "") == !opts.All {
		return f.Fail("invalid arguments", sqlerr.Validation("drop table", "give a table name or --all, not both"))
	}

	db, err := opts.open(ctx, f)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if opts.All {
		dropped := len(db.Tables())
		if err := db.DropTables(ctx); err != nil {
			return f.Fail("drop failed", err)
		}
		return f.Success(fmt.Sprintf("Dropped %d table(s)", dropped))
	}
	if err := db.DropTable(ctx, name); err != nil {
		return f.Fail("drop failed", err)
	}
	return f.Success(fmt.Sprintf("Dropped %s", name))
}
