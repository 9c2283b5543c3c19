package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/YuujiKamura/tonsuu-checker/internal/history"
)

// statsCommand reports estimation accuracy over all judged entries.
func statsCommand(a *app) *cobra.Command {
	var (
		jsonOut bool
		byTruck bool
		byMat   bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report estimation accuracy against recorded feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}

			stats := store.AccuracyStats()
			if stats.SampleCount == 0 {
				fmt.Println("no judged entries yet; record feedback first")
				return nil
			}
			if jsonOut {
				return printJSON(stats)
			}

			printStats("all", stats)
			if byTruck {
				printGrouped(stats.ByTruckType())
			}
			if byMat {
				printGrouped(stats.ByMaterialType())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	cmd.Flags().BoolVar(&byTruck, "by-truck", false, "Break down by truck type")
	cmd.Flags().BoolVar(&byMat, "by-material", false, "Break down by material type")
	return cmd
}

func printStats(label string, s history.AccuracyStats) {
	fmt.Printf("%-12s n=%-3d mean=%+.2ft abs=%.2ft pct=%.1f%% rmse=%.2ft range=[%+.2ft, %+.2ft]\n",
		label, s.SampleCount, s.MeanError, s.MeanAbsError, s.MeanPercentError,
		s.RMSE, s.MinError, s.MaxError)
}

func printGrouped(groups map[string]history.AccuracyStats) {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printStats(k, groups[k])
	}
}
