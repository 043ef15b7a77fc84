package cmd

import (
	"fmt"
	"os"

	"github.com/pglens/pglens/internal/comparator"
	"github.com/pglens/pglens/internal/output"
	"github.com/pglens/pglens/internal/plan"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file1] [file2]",
	Short: "Compare two query plans",
	Long: `Compare two EXPLAIN (FORMAT JSON) plans side by side: per-node cost,
time and row deltas, structural changes, and bottleneck movement.

Either file (but not both) can be "-" to read from stdin. If no files
are provided, enters interactive mode for both.`,
	Example: `  # Compare two captured plans
  pglens compare old.json new.json

  # Read one plan from stdin
  cat old.json | pglens compare - new.json

  # Raise the significance threshold to 5%
  pglens compare old.json new.json --threshold 5`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		threshold, _ := cmd.Flags().GetFloat64("threshold")

		if format != "text" && format != "json" {
			return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
		}
		if len(args) == 2 && args[0] == "-" && args[1] == "-" {
			return fmt.Errorf("only one input can read from stdin")
		}

		var oldFile, newFile string
		if len(args) > 0 {
			oldFile = args[0]
		}
		if len(args) > 1 {
			newFile = args[1]
		}

		oldPlan, err := plan.Resolve(oldFile, "first ")
		if err != nil {
			return err
		}
		newPlan, err := plan.Resolve(newFile, "second ")
		if err != nil {
			return err
		}

		c := comparator.Comparator{Threshold: threshold}
		result := c.Compare(oldPlan, newPlan)

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, result)
		case "text":
			return output.RenderComparisonText(os.Stdout, result)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	compareCmd.Flags().Float64("threshold", comparator.SignificanceThresholdPct, "Percentage change below which a node counts as unchanged")
}
