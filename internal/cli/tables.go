package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// TableInfo describes one table in command output.
type TableInfo struct {
	Name       string   `json:"name"`
	Columns    []string `json:"columns"`
	PrimaryKey []string `json:"primary_key,omitempty"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and their columns",
		Long: `List every table in the database with its columns and primary key.

Examples:
  tablekit tables --db ./app.db
  tablekit tables --db ./app.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	db, err := opts.open(cmd.Context(), f)
	if err != nil {
		return err
	}
	defer closeDB(db)

	infos := []TableInfo{}
	for _, t := range db.Tables() {
		infos = append(infos, TableInfo{
			Name:       t.Name(),
			Columns:    t.Schema().Columns(),
			PrimaryKey: t.Schema().PrimaryKey(),
		})
	}

	if f.Format == "json" {
		return f.Success(infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(f.Writer, "No tables found")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(f.Writer, "%s (%s)", info.Name, strings.Join(info.Columns, ", "))
		if len(info.PrimaryKey) > 0 {
			fmt.Fprintf(f.Writer, " primary key: %s", strings.Join(info.PrimaryKey, ", "))
		}
		fmt.Fprintln(f.Writer)
	}
	return nil
}
