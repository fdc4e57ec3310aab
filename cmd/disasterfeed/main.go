package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "disasterfeed",
	Short: "Disaster-response aggregation API",
	Long: `disasterfeed aggregates official relief bulletins (FEMA, Red Cross,
municipal emergency management, weather service) and social-media crisis
reports behind a cached JSON API, and broadcasts fresh social result sets
to subscribers.

Configuration is read from the environment (see config/config.go).`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "disasterfeed %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(updatesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(socialCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
