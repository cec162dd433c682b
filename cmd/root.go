// Package cmd holds the vehicle-intake-api command line: the API server and a quote tool
// for checking pricing tables.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vehicle-intake-api",
	Short: "Vehicle intake and offer API",
	Long: `vehicle-intake-api walks a seller from VIN entry through registration, condition
assessment and auction selection to an instant cash offer.

Run without arguments to start the API server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, quoteCmd)
}
