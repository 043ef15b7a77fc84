package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pglens/pglens/internal/analyzer"
	"github.com/pglens/pglens/internal/history"
	"github.com/pglens/pglens/internal/output"
	"github.com/pglens/pglens/internal/plan"
	"github.com/pglens/pglens/internal/profile"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a query plan",
	Long: `Analyze one PostgreSQL EXPLAIN (FORMAT JSON) plan and report cost
contributions, bottlenecks, estimate accuracy and optimization suggestions.

Input is a JSON file (EXPLAIN output). Use "-" to read from stdin.
If no file is provided, enters interactive mode.

With --save, the result is persisted to the history database (see
"pglens profile" for configuring the connection).`,
	Example: `  # Analyze from file
  pglens analyze plan.json

  # Read from stdin
  psql -XqAtc "EXPLAIN (ANALYZE, FORMAT JSON) SELECT ..." | pglens analyze -

  # Persist the result with the originating query
  pglens analyze plan.json --save --title "dashboard feed" --query feed.sql

  # Interactive mode
  pglens analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		save, _ := cmd.Flags().GetBool("save")
		title, _ := cmd.Flags().GetString("title")
		queryFile, _ := cmd.Flags().GetString("query")

		if format != "text" && format != "json" {
			return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
		}

		var file string
		if len(args) > 0 {
			file = args[0]
		}

		parsed, err := plan.Resolve(file, "")
		if err != nil {
			return err
		}

		result := analyzer.AnalyzeParsed(parsed)

		if save {
			if err := saveResult(cmd, parsed, result, title, queryFile); err != nil {
				return err
			}
		}

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, result)
		case "text":
			return output.RenderAnalysisText(os.Stdout, result)
		}

		return nil
	},
}

func saveResult(cmd *cobra.Command, parsed *plan.ParsedPlan, result *analyzer.PlanAnalysisResult, title, queryFile string) error {
	db, _ := cmd.Flags().GetString("db")
	profileName, _ := cmd.Flags().GetString("profile")

	connStr, err := profile.ResolveConnStr(db, profileName)
	if err != nil {
		return err
	}
	if connStr == "" {
		return fmt.Errorf("--save requires a history database: pass --db, --profile, or set %s", profile.EnvConnStr)
	}

	var query string
	if queryFile != "" {
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return fmt.Errorf("reading query file: %w", err)
		}
		query = string(data)
	}

	planRaw, err := json.Marshal(parsed.Root)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	rec := history.Record{
		Title:        title,
		Query:        query,
		RootNodeType: result.RootNodeType,
		TotalCost:    result.TotalCost,
		PlanRaw:      planRaw,
		Result:       result,
	}
	if result.Metrics != nil && result.Metrics.ExecutionTimeMs > 0 {
		t := result.Metrics.ExecutionTimeMs
		rec.ExecutionTimeMs = &t
	}

	ctx := cmd.Context()
	store, err := history.Open(ctx, connStr)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(ctx) }()

	if err := store.Init(ctx); err != nil {
		return err
	}

	id, err := store.Save(ctx, &rec)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Saved analysis %s\n", id)
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	analyzeCmd.Flags().Bool("save", false, "Persist the result to the history database")
	analyzeCmd.Flags().StringP("title", "t", "", "Title for the saved analysis")
	analyzeCmd.Flags().StringP("query", "q", "", "File containing the originating SQL (stored with --save)")
	analyzeCmd.Flags().StringP("db", "d", "", "History database connection string")
	analyzeCmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	analyzeCmd.MarkFlagsMutuallyExclusive("db", "profile")
}
