package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/homeenergy/app"
	"github.com/kilianp07/homeenergy/pkg/export"
)

var profileFormat string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the hourly and weekday consumption profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := app.New(background(cmd), cfg, app.WithoutAlerts())
		if err != nil {
			return err
		}
		defer svc.Close()
		return export.Write(cmd.OutOrStdout(), profileFormat, export.NewReport(svc.Dataset, svc.Summary))
	},
}

func init() {
	profileCmd.Flags().StringVarP(&profileFormat, "format", "f", "table", "output format: table, csv or json")
	rootCmd.AddCommand(profileCmd)
}
