package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/YuujiKamura/tonsuu-checker/internal/history"
)

func historyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage the judgment history",
	}
	cmd.AddCommand(
		historyListCommand(a),
		historyImportCommand(a),
		historyClearCommand(a),
	)
	return cmd
}

func historyListCommand(a *app) *cobra.Command {
	var (
		judgedOnly bool
		jsonOut    bool
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analyzed images, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}

			entries := store.All()
			if judgedOnly {
				entries = store.WithFeedback()
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			if jsonOut {
				return printJSON(entries)
			}

			for _, entry := range entries {
				line := fmt.Sprintf("%s  %s  %s %.2ft",
					entry.AnalyzedAt.Format("2006-01-02 15:04"),
					entry.ImageHash[:12],
					entry.Estimation.TruckType,
					entry.Estimation.EstimatedTonnage)
				if entry.ActualTonnage != nil {
					line += fmt.Sprintf("  実測 %.2ft", *entry.ActualTonnage)
				}
				fmt.Println(line)
			}
			fmt.Printf("%d entries, %d judged\n", store.Count(), store.FeedbackCount())
			return nil
		},
	}
	cmd.Flags().BoolVar(&judgedOnly, "judged", false, "Only entries with recorded feedback")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum entries to show (0 = all)")
	return cmd
}

// historyImportCommand merges entries exported from another machine. Entries
// whose digest already exists locally are left untouched.
func historyImportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [history.json]",
		Short: "Merge entries from an exported history file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var incoming map[string]history.Entry
			if err := json.Unmarshal(data, &incoming); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			store, err := a.openHistory()
			if err != nil {
				return err
			}

			digests := make([]string, 0, len(incoming))
			for digest := range incoming {
				digests = append(digests, digest)
			}
			sort.Strings(digests)

			added := 0
			for _, digest := range digests {
				ok, err := store.AddEntry(incoming[digest])
				if err != nil {
					return err
				}
				if ok {
					added++
				}
			}
			fmt.Printf("imported %d of %d entries (%d already present)\n",
				added, len(incoming), len(incoming)-added)
			return nil
		},
	}
	return cmd
}

func historyClearCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			removed, err := store.Clear()
			if err != nil {
				return err
			}
			fmt.Printf("removed %d entries\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}
