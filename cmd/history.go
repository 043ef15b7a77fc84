package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pglens/pglens/internal/history"
	"github.com/pglens/pglens/internal/output"
	"github.com/pglens/pglens/internal/profile"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved analyses",
	Long: `Browse analyses persisted with "pglens analyze --save".

The history database connection comes from --db, --profile, the
` + profile.EnvConnStr + ` environment variable, or the default profile.`,
}

var historyInitCmd = &cobra.Command{
	Use:     "init",
	Short:   "Create the history schema",
	Example: `  pglens history init --profile prod`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *history.Store) error {
			if err := store.Init(ctx); err != nil {
				return err
			}
			fmt.Println("History schema ready.")
			return nil
		})
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses",
	Example: `  pglens history list
  pglens history list --search dashboard --limit 20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		search, _ := cmd.Flags().GetString("search")

		return withStore(cmd, func(ctx context.Context, store *history.Store) error {
			records, err := store.List(ctx, limit, offset, search)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No saved analyses.")
				return nil
			}
			for _, rec := range records {
				title := rec.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Printf("  %s  %s  %-20s cost %.2f  %s\n",
					rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.RootNodeType, rec.TotalCost, title)
			}
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show one saved analysis",
	Example: `  pglens history show 6b4a... --format json`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "text" && format != "json" {
			return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid analysis id %q: %w", args[0], err)
		}

		return withStore(cmd, func(ctx context.Context, store *history.Store) error {
			rec, err := store.Get(ctx, id)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				return output.RenderJSON(os.Stdout, rec)
			default:
				if rec.Title != "" {
					fmt.Printf("Title: %s\n", rec.Title)
				}
				if rec.Query != "" {
					fmt.Printf("Query:\n%s\n\n", rec.Query)
				}
				return output.RenderAnalysisText(os.Stdout, rec.Result)
			}
		})
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a saved analysis",
	Example: `  pglens history rm 6b4a...`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid analysis id %q: %w", args[0], err)
		}

		return withStore(cmd, func(ctx context.Context, store *history.Store) error {
			if err := store.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted analysis %s.\n", id)
			return nil
		})
	},
}

func withStore(cmd *cobra.Command, fn func(context.Context, *history.Store) error) error {
	db, _ := cmd.Flags().GetString("db")
	profileName, _ := cmd.Flags().GetString("profile")

	connStr, err := profile.ResolveConnStr(db, profileName)
	if err != nil {
		return err
	}
	if connStr == "" {
		return fmt.Errorf("no history database configured: pass --db, --profile, or set %s", profile.EnvConnStr)
	}

	ctx := cmd.Context()
	store, err := history.Open(ctx, connStr)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(ctx) }()

	return fn(ctx, store)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyInitCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRemoveCmd)

	historyCmd.PersistentFlags().StringP("db", "d", "", "History database connection string")
	historyCmd.PersistentFlags().StringP("profile", "p", "", "Use named profile from config")
	historyCmd.MarkFlagsMutuallyExclusive("db", "profile")

	historyListCmd.Flags().Int("limit", 50, "Maximum number of analyses to list")
	historyListCmd.Flags().Int("offset", 0, "Number of analyses to skip")
	historyListCmd.Flags().StringP("search", "s", "", "Filter by title substring")
	historyShowCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
}
