package analyze

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/YuujiKamura/tonsuu-checker/internal/cache"
	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
	"github.com/YuujiKamura/tonsuu-checker/internal/history"
	"github.com/YuujiKamura/tonsuu-checker/internal/llm"
	"github.com/YuujiKamura/tonsuu-checker/internal/truckspec"
)

// Analyzer runs the cache-aware single-image pipeline: digest, cache lookup,
// prompt construction, model invocation, parsing, ensemble merging, geometry
// fallback and persistence.
type Analyzer struct {
	backend llm.Backend
	cache   *cache.Cache   // nil disables caching entirely
	history *history.Store // nil disables persistence and graded references
	digests *digestMemo
}

// New creates an analyzer. The cache and history store may be nil.
func New(backend llm.Backend, resultCache *cache.Cache, store *history.Store) *Analyzer {
	return &Analyzer{
		backend: backend,
		cache:   resultCache,
		history: store,
		digests: newDigestMemo(),
	}
}

// Options control a single analysis run.
type Options struct {
	// EnsembleCount is the number of independent inference passes; values
	// below 1 run a single pass.
	EnsembleCount int

	// TruckType and MaterialType, when both set, switch to the pre-filled
	// estimation prompt.
	TruckType    string
	MaterialType string

	// TruckClass selects graded reference examples from history for the
	// staged prompt.
	TruckClass truckspec.Class

	// SkipCache bypasses the cache lookup (a fresh result still overwrites
	// the cache entry).
	SkipCache bool

	// MaxCapacity and Thumbnail are attached to the persisted history
	// entry.
	MaxCapacity *float64
	Thumbnail   string
}

// AnalyzeImage analyzes one image through the full pipeline.
func (a *Analyzer) AnalyzeImage(ctx context.Context, imagePath string, opts Options) (*estimate.EstimationResult, error) {
	digest, err := a.digests.FileDigest(imagePath)
	if err != nil {
		return nil, err
	}

	if a.cache != nil && !opts.SkipCache {
		cached, err := a.cache.Get(digest)
		if err != nil {
			log.Warn().Err(err).Str("image", imagePath).Msg("cache lookup failed")
		} else if cached != nil {
			// Return before persisting: the history entry for this digest
			// may carry operator feedback, and only a genuine model run is
			// allowed to overwrite it.
			log.Debug().Str("digest", digest[:16]).Msg("cache hit")
			return cached, nil
		}
	}

	result, err := a.runInference(ctx, imagePath, opts)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Set(digest, result); err != nil {
			log.Warn().Err(err).Str("image", imagePath).Msg("failed to cache result")
		}
	}
	a.persist(imagePath, digest, result, opts)

	return result, nil
}

// runInference performs the ensemble loop against the backend. Per-sample
// failures are isolated; only all samples failing is terminal.
func (a *Analyzer) runInference(ctx context.Context, imagePath string, opts Options) (*estimate.EstimationResult, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	images := []llm.Image{{Data: data, MIMEType: llm.MIMETypeForPath(imagePath)}}

	prompt := a.buildPrompt(opts)

	passes := opts.EnsembleCount
	if passes < 1 {
		passes = 1
	}

	results := make([]*estimate.EstimationResult, 0, passes)
	var lastErr error
	for i := 0; i < passes; i++ {
		response, err := a.backend.Invoke(ctx, prompt, images)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Str("image", imagePath).Int("sample", i+1).Msg("ensemble sample failed")
			continue
		}
		results = append(results, ParseResponse(response))
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("all ensemble samples failed: %w", lastErr)
	}

	return MergeResults(results), nil
}

func (a *Analyzer) buildPrompt(opts Options) string {
	if opts.TruckType != "" && opts.MaterialType != "" {
		return BuildEstimationPrompt(opts.TruckType, opts.MaterialType)
	}

	if a.history != nil && opts.TruckClass != truckspec.ClassUnknown {
		stock := a.history.SelectStockByGrade(opts.TruckClass)
		if len(stock) > 0 {
			log.Debug().Int("references", len(stock)).Str("class", opts.TruckClass.Label()).Msg("using graded references")
			refs := make([]GradedReference, 0, len(stock))
			for _, g := range stock {
				memo := ""
				if g.Entry.Notes != nil {
					memo = *g.Entry.Notes
				}
				refs = append(refs, GradedReference{
					GradeName:     g.Grade.Label(),
					ActualTonnage: floatOrZero(g.Entry.ActualTonnage),
					MaxCapacity:   floatOrZero(g.Entry.MaxCapacity),
					LoadRatio:     g.LoadRatio,
					Memo:          memo,
				})
			}
			return BuildStagedPrompt(refs)
		}
	}

	return BuildAnalysisPrompt()
}

func (a *Analyzer) persist(imagePath, digest string, result *estimate.EstimationResult, opts Options) {
	if a.history == nil {
		return
	}
	if _, err := a.history.Add(imagePath, digest, *result, opts.MaxCapacity, opts.Thumbnail); err != nil {
		log.Warn().Err(err).Str("image", imagePath).Msg("failed to persist history entry")
	}
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
