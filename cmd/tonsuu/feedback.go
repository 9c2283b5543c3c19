package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YuujiKamura/tonsuu-checker/internal/cache"
	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
	"github.com/YuujiKamura/tonsuu-checker/internal/history"
)

// historyIndex is the slice of the store feedback resolution needs.
type historyIndex interface {
	All() []history.Entry
}

// feedbackCommand records the weighbridge-measured tonnage against an
// analyzed image, keyed by the image file (digested again) or a digest
// prefix already in the history.
func feedbackCommand(a *app) *cobra.Command {
	var (
		capacity float64
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "feedback [image|digest] [actual-tonnage]",
		Short: "Record the measured tonnage for an analyzed image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actual, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid tonnage %q: %w", args[1], err)
			}
			if actual <= 0 {
				return fmt.Errorf("tonnage must be positive, got %.2f", actual)
			}

			store, err := a.openHistory()
			if err != nil {
				return err
			}

			digest, err := resolveDigest(store, args[0])
			if err != nil {
				return err
			}

			var maxCapacity *float64
			if capacity > 0 {
				maxCapacity = &capacity
			}
			var notesPtr *string
			if cmd.Flags().Changed("notes") {
				notesPtr = &notes
			}

			if err := store.AddFeedback(digest, actual, maxCapacity, notesPtr); err != nil {
				return err
			}

			entry, _ := store.GetByDigest(digest)
			fmt.Printf("recorded %.2ft for %s (estimated %.2ft)\n",
				actual, entry.ImagePath, entry.Estimation.EstimatedTonnage)
			if entry.MaxCapacity != nil && *entry.MaxCapacity > 0 {
				ratio := actual / *entry.MaxCapacity
				fmt.Printf("積載率 %.0f%% %s\n", ratio*100, estimate.GradeFromRatio(ratio).Label())
			}
			return nil
		},
	}
	cmd.Flags().Float64VarP(&capacity, "capacity", "c", 0, "Registered max capacity in tonnes")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free-form memo for this judgment")
	return cmd
}

// resolveDigest accepts either an existing image file or a digest prefix of
// at least 8 characters.
func resolveDigest(store historyIndex, ref string) (string, error) {
	if digest, err := cache.FileDigest(ref); err == nil {
		return digest, nil
	}
	if len(ref) < 8 {
		return "", fmt.Errorf("%q is neither a readable image nor a digest prefix (need at least 8 chars)", ref)
	}

	var match string
	for _, entry := range store.All() {
		if len(entry.ImageHash) >= len(ref) && entry.ImageHash[:len(ref)] == ref {
			if match != "" && match != entry.ImageHash {
				return "", fmt.Errorf("digest prefix %q is ambiguous", ref)
			}
			match = entry.ImageHash
		}
	}
	if match == "" {
		return "", fmt.Errorf("no history entry matches %q", ref)
	}
	return match, nil
}
