package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the analysis result cache",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry count and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}
			s, err := c.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("%d entries, %.1f KiB in %s\n",
				s.EntryCount, float64(s.TotalSizeBytes)/1024, s.Dir)
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCache()
			if err != nil {
				return err
			}
			removed, err := c.Clear()
			if err != nil {
				return err
			}
			fmt.Printf("removed %d entries\n", removed)
			return nil
		},
	}

	cmd.AddCommand(stats, clear)
	return cmd
}
