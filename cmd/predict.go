package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/homeenergy/app"
	"github.com/kilianp07/homeenergy/core/forecast"
)

var predictInput = forecast.DefaultInput()

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast consumption for one set of conditions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := background(cmd)
		svc, err := app.New(ctx, cfg, app.WithoutAlerts())
		if err != nil {
			return err
		}
		defer svc.Close()

		res, err := svc.Predict(ctx, predictInput)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Predicted consumption: %s\n", res.Display())
		fmt.Fprintf(out, "Classification: %s (baseline %.2f kWh)\n", res.Classification, res.Baseline)
		fmt.Fprintln(out, res.Classification.Advice())
		return nil
	},
}

func init() {
	f := predictCmd.Flags()
	f.Float64Var(&predictInput.IndoorTemperature, "indoor", predictInput.IndoorTemperature, "indoor temperature in °C (0-50)")
	f.Float64Var(&predictInput.OutsideTemperature, "outside", predictInput.OutsideTemperature, "outside temperature in °C (-10-50)")
	f.IntVar(&predictInput.DeviceUsage, "device", predictInput.DeviceUsage, "device usage, 0 or 1")
	f.IntVar(&predictInput.Hour, "hour", predictInput.Hour, "hour of day (0-23)")
	f.IntVar(&predictInput.Weekday, "weekday", predictInput.Weekday, "day of week, 0 is Monday")
	rootCmd.AddCommand(predictCmd)
}
