package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/paulettemal/dashboardFin/internal/config"
	"github.com/paulettemal/dashboardFin/internal/model"
	"github.com/paulettemal/dashboardFin/internal/service"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [location]",
		Short: "Fetch and print the normalized forecast for a location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := config.GetDefaultLocation()
			if len(args) == 1 {
				location = args[0]
			}
			output, _ := cmd.Flags().GetString("output")

			ctx, cancel := context.WithTimeout(cmd.Context(), config.GetProviderTimeout()*2)
			defer cancel()
			return runFetch(ctx, service.NewForecastService(nil, nil), location, output, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringP("output", "o", outputTable, "Output format (table, json)")
	return cmd
}

func runFetch(ctx context.Context, svc service.ForecastServiceInterface, location, output string, w io.Writer) error {
	if output != outputTable && output != outputJSON {
		return fmt.Errorf("unknown output format %q", output)
	}

	forecast, err := svc.GetForecast(ctx, location)
	if err != nil {
		return err
	}

	if output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(forecast)
	}
	return printTable(w, forecast)
}

func printTable(w io.Writer, f *model.Forecast) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "INDICATOR\tSUBTITLE\tVALUE")
	for _, ind := range f.Indicators {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ind.Title, ind.Subtitle, ind.Value)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "START\tEND\tTEMP\tMIN\tMAX\tHUM\tCLOUDS\tPRECIP\tWIND\tDIR\tPRESSURE\tWEATHER")
	for _, in := range f.Intervals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			oneLine(in.DateStart), oneLine(in.DateEnd),
			in.Temperature, in.TempMin, in.TempMax,
			in.Humidity, in.Clouds, in.Precipitation,
			in.WindSpeed, in.WindDirection, in.Pressure,
			in.WeatherDescription,
		)
	}
	return tw.Flush()
}

// oneLine joins the two-line date label used by the widgets.
func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
