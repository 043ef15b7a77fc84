package cmd

import (
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var Version = "dev"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version
}

var rootCmd = &cobra.Command{
	Use:          "pglens",
	SilenceUsage: true,
	Short:        "Diagnose PostgreSQL query plans",
	Long: `pglens turns PostgreSQL EXPLAIN (FORMAT JSON) output into structured
diagnostics: cost hot spots, ranked bottlenecks, planner estimate accuracy
and concrete index/join/sort suggestions.`,
	Example: `  # Analyze a captured plan
  pglens analyze plan.json

  # Compare two plans
  pglens compare old.json new.json

  # Browse saved analyses
  pglens history list`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
