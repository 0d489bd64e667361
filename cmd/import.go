package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/homeenergy/core/history"
	infrahistory "github.com/kilianp07/homeenergy/infra/history"
	"github.com/kilianp07/homeenergy/infra/logger"
)

var importOpts struct {
	csv   string
	db    string
	table string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy a CSV dataset into a SQLite table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := background(cmd)
		policy, err := history.ParsePolicy(cfg.History.MalformedRows)
		if err != nil {
			return err
		}
		loc, err := time.LoadLocation(cfg.History.Location)
		if err != nil {
			return err
		}
		records, err := infrahistory.NewCSVSource(importOpts.csv, policy, loc).Records(ctx)
		if err != nil {
			return err
		}
		db, err := infrahistory.NewSQLiteSource(importOpts.db, importOpts.table, policy, loc)
		if err != nil {
			return err
		}
		defer db.Close()
		n, err := db.Import(ctx, records)
		if err != nil {
			return err
		}
		logger.New("import").Infow("dataset imported", map[string]any{"csv": importOpts.csv, "db": importOpts.db, "table": importOpts.table, "rows": n})
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows into %s#%s\n", n, importOpts.db, importOpts.table)
		return nil
	},
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importOpts.csv, "csv", "household_energy.csv", "source CSV file")
	f.StringVar(&importOpts.db, "db", "household_energy.db", "target SQLite database")
	f.StringVar(&importOpts.table, "table", infrahistory.DefaultTable, "target table")
	rootCmd.AddCommand(importCmd)
}
