package analyze

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
)

// BatchItem is the outcome for one image in a batch run. Exactly one of
// Result and Err is set.
type BatchItem struct {
	Path   string
	Result *estimate.EstimationResult
	Err    error
}

// BatchReport summarizes a completed batch run. Items are sorted by path
// regardless of completion order.
type BatchReport struct {
	Items       []BatchItem
	Succeeded   int
	Failed      int
	StartedAt   time.Time
	CompletedAt time.Time
}

// TotalProcessed is the number of images attempted.
func (r *BatchReport) TotalProcessed() int {
	return len(r.Items)
}

// ProgressFunc is called after each image completes with the running done
// count and the total. Calls are serialized.
type ProgressFunc func(done, total int, item BatchItem)

// AnalyzeBatch processes all paths with a fixed-size worker pool. Workers
// claim indices from a shared atomic counter so every path is analyzed
// exactly once, with no duplication and no skips, whatever the worker count.
// Per-image failures are recorded in the report; only context cancellation
// aborts the run early.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, paths []string, workers int, opts Options, progress ProgressFunc) (*BatchReport, error) {
	report := &BatchReport{StartedAt: time.Now()}
	if len(paths) == 0 {
		report.CompletedAt = time.Now()
		return report, nil
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	var (
		next atomic.Int64
		mu   sync.Mutex
		done int
	)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				idx := int(next.Add(1)) - 1
				if idx >= len(paths) {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}

				path := paths[idx]
				result, err := a.AnalyzeImage(ctx, path, opts)
				item := BatchItem{Path: path, Result: result, Err: err}
				if err != nil {
					log.Warn().Err(err).Str("image", path).Msg("batch item failed")
				}

				mu.Lock()
				report.Items = append(report.Items, item)
				if err != nil {
					report.Failed++
				} else {
					report.Succeeded++
				}
				done++
				if progress != nil {
					progress(done, len(paths), item)
				}
				mu.Unlock()
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Items, func(i, j int) bool {
		return report.Items[i].Path < report.Items[j].Path
	})
	report.CompletedAt = time.Now()
	return report, nil
}
