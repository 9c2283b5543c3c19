package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/YuujiKamura/tonsuu-checker/internal/analyze"
	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
	"github.com/YuujiKamura/tonsuu-checker/internal/truckspec"
	"github.com/YuujiKamura/tonsuu-checker/internal/vehicle"
)

// analyzeFlags are shared between analyze and batch.
type analyzeFlags struct {
	truckType    string
	materialType string
	capacity     float64
	plate        string
	ensemble     int
	noCache      bool
	jsonOut      bool
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.truckType, "truck", "t", "", "Known truck type (e.g. 4tダンプ)")
	cmd.Flags().StringVarP(&f.materialType, "material", "m", "", "Known material type (e.g. 土砂)")
	cmd.Flags().Float64VarP(&f.capacity, "capacity", "c", 0, "Registered max capacity in tonnes")
	cmd.Flags().StringVarP(&f.plate, "plate", "p", "", "License plate to resolve capacity from the vehicle registry")
	cmd.Flags().IntVarP(&f.ensemble, "ensemble", "e", 0, "Number of inference passes (0 uses TONSUU_ENSEMBLE)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Skip the result cache")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print raw JSON instead of a summary")
}

// options resolves flags into analysis options, consulting the vehicle
// registry when a plate is given.
func (f *analyzeFlags) options(a *app) (analyze.Options, error) {
	opts := analyze.Options{
		EnsembleCount: f.ensemble,
		TruckType:     f.truckType,
		MaterialType:  f.materialType,
		SkipCache:     f.noCache,
	}
	if opts.EnsembleCount == 0 {
		opts.EnsembleCount = a.cfg.Ensemble
	}

	capacity := f.capacity
	if f.plate != "" {
		vehicles, err := a.openVehicles()
		if err != nil {
			return opts, err
		}
		defer vehicles.Close()

		registered, err := vehicles.Lookup(f.plate)
		if errors.Is(err, vehicle.ErrNotFound) {
			log.Warn().Str("plate", f.plate).Msg("plate not in vehicle registry")
		} else if err != nil {
			return opts, err
		} else {
			capacity = registered.MaxCapacity
		}
	}
	if capacity > 0 {
		opts.MaxCapacity = &capacity
		opts.TruckClass = truckspec.ClassFromCapacity(capacity)
	} else if f.truckType != "" {
		opts.TruckClass = truckspec.ClassFromLabel(truckspec.NormalizeType(f.truckType))
	}
	return opts, nil
}

func analyzeCommand(a *app) *cobra.Command {
	flags := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [image...]",
		Short: "Analyze truck photos and estimate load tonnage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(a)
			if err != nil {
				return err
			}
			analyzer, err := a.newAnalyzer(cmd.Context())
			if err != nil {
				return err
			}

			for _, path := range args {
				result, err := analyzer.AnalyzeImage(cmd.Context(), path, opts)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if flags.jsonOut {
					if err := printJSON(result); err != nil {
						return err
					}
					continue
				}
				printResult(path, result, opts.MaxCapacity)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func batchCommand(a *app) *cobra.Command {
	flags := &analyzeFlags{}
	var jobs int
	cmd := &cobra.Command{
		Use:   "batch [dir|image...]",
		Short: "Analyze many photos in parallel and print a summary report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectImages(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no images found")
			}

			opts, err := flags.options(a)
			if err != nil {
				return err
			}
			analyzer, err := a.newAnalyzer(cmd.Context())
			if err != nil {
				return err
			}

			workers := jobs
			if workers == 0 {
				workers = a.cfg.Jobs
			}
			progress := func(done, total int, item analyze.BatchItem) {
				status := "ok"
				if item.Err != nil {
					status = "failed"
				}
				fmt.Printf("[%d/%d] %s %s\n", done, total, filepath.Base(item.Path), status)
			}

			report, err := analyzer.AnalyzeBatch(cmd.Context(), paths, workers, opts, progress)
			if err != nil {
				return err
			}

			if flags.jsonOut {
				return printJSON(report)
			}
			fmt.Printf("\nprocessed %d images in %s: %d ok, %d failed\n",
				report.TotalProcessed(),
				report.CompletedAt.Sub(report.StartedAt).Round(10*time.Millisecond),
				report.Succeeded, report.Failed)
			for _, item := range report.Items {
				if item.Err != nil {
					fmt.Printf("  %s: %v\n", item.Path, item.Err)
					continue
				}
				printResult(item.Path, item.Result, opts.MaxCapacity)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Worker count (0 uses TONSUU_JOBS)")
	return cmd
}

// refreshCommand re-analyzes every image already in history, bypassing the
// cache, so results pick up prompt or model changes.
func refreshCommand(a *app) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-analyze all images in the history, ignoring cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}

			var paths []string
			for _, entry := range store.All() {
				if _, err := os.Stat(entry.ImagePath); err == nil {
					paths = append(paths, entry.ImagePath)
				} else {
					log.Warn().Str("image", entry.ImagePath).Msg("image file missing, skipping")
				}
			}
			if len(paths) == 0 {
				fmt.Println("nothing to refresh")
				return nil
			}

			analyzer, err := a.newAnalyzer(cmd.Context())
			if err != nil {
				return err
			}
			workers := jobs
			if workers == 0 {
				workers = a.cfg.Jobs
			}

			report, err := analyzer.AnalyzeBatch(cmd.Context(), paths, workers,
				analyze.Options{SkipCache: true, EnsembleCount: a.cfg.Ensemble}, nil)
			if err != nil {
				return err
			}
			fmt.Printf("refreshed %d images: %d ok, %d failed\n",
				report.TotalProcessed(), report.Succeeded, report.Failed)
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Worker count (0 uses TONSUU_JOBS)")
	return cmd
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".bmp": true,
}

// collectImages expands directories into their image files; plain paths pass
// through as-is.
func collectImages(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func printResult(path string, result *estimate.EstimationResult, maxCapacity *float64) {
	if !result.IsTargetDetected {
		fmt.Printf("%s: 対象なし (%s)\n", path, result.Reasoning)
		return
	}
	line := fmt.Sprintf("%s: %s %s %.2ft (%.2fm3, 信頼度 %.0f%%)",
		path, result.TruckType, result.MaterialType,
		result.EstimatedTonnage, result.EstimatedVolumeM3, result.ConfidenceScore*100)
	if maxCapacity != nil && *maxCapacity > 0 {
		ratio := result.EstimatedTonnage / *maxCapacity
		grade := estimate.GradeFromRatio(ratio)
		line += fmt.Sprintf(" | 積載率 %.0f%% %s", ratio*100, grade.Label())
	}
	fmt.Println(line)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
