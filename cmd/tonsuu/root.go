package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/YuujiKamura/tonsuu-checker/internal/analyze"
	"github.com/YuujiKamura/tonsuu-checker/internal/cache"
	"github.com/YuujiKamura/tonsuu-checker/internal/config"
	"github.com/YuujiKamura/tonsuu-checker/internal/history"
	"github.com/YuujiKamura/tonsuu-checker/internal/llm"
	"github.com/YuujiKamura/tonsuu-checker/internal/vehicle"
)

// app carries the lazily-opened stores shared by the subcommands.
type app struct {
	cfg *config.Config
}

func rootCommand() *cobra.Command {
	a := &app{}
	var debug bool

	cmd := &cobra.Command{
		Use:           "tonsuu",
		Short:         "Estimate dump truck load tonnage from photos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")

	cmd.AddCommand(
		analyzeCommand(a),
		batchCommand(a),
		feedbackCommand(a),
		historyCommand(a),
		statsCommand(a),
		cacheCommand(a),
		refreshCommand(a),
		vehicleCommand(a),
	)
	return cmd
}

func (a *app) openHistory() (*history.Store, error) {
	return history.Open(a.cfg.StoreDir())
}

func (a *app) openCache() (*cache.Cache, error) {
	return cache.New(a.cfg.CacheDir())
}

func (a *app) openVehicles() (*vehicle.Store, error) {
	return vehicle.Open(a.cfg.VehicleDBPath())
}

// newAnalyzer wires the full pipeline: backend, cache and history.
func (a *app) newAnalyzer(ctx context.Context) (*analyze.Analyzer, error) {
	backend, err := llm.New(ctx, a.cfg.Backend, a.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}
	log.Debug().Str("backend", backend.Name()).Msg("backend ready")

	resultCache, err := a.openCache()
	if err != nil {
		return nil, err
	}
	store, err := a.openHistory()
	if err != nil {
		return nil, err
	}
	return analyze.New(backend, resultCache, store), nil
}
