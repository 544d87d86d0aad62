package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dashboardfin",
		Short:         "Forecast dashboard backend",
		Long:          "Fetches the OpenWeatherMap XML forecast and serves it as dashboard indicators and intervals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd(), newFetchCmd())
	return rootCmd
}
