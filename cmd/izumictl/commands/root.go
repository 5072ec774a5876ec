package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var standardsPath string

var rootCmd = &cobra.Command{
	Use:   "izumictl",
	Short: "Process groundwater sample datasets into pollution indices",
	Long: `izumictl runs the groundwater index pipeline from the command line:
it reads a CSV of samples, computes HPI/HEI/CD per sample, and either writes
the results locally (process) or stores them for the REST API (ingest).`,
}

// Execute is the entry point called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&standardsPath, "standards", "", "YAML file overriding the built-in permissible limits")
}
