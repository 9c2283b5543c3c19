package history

import (
	"sort"

	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
	"github.com/YuujiKamura/tonsuu-checker/internal/truckspec"
)

// GradedEntry is a history entry with its computed load grade. Derived, never
// persisted.
type GradedEntry struct {
	Entry Entry
	Grade estimate.LoadGrade
	// LoadRatio is actual/capacity as a percentage.
	LoadRatio float64
}

// SelectStockByGrade picks at most one representative entry per load grade
// for the given truck class: only entries with both actual tonnage and max
// capacity qualify, the capacity must resolve to the target class, and within
// each grade the most recently analyzed entry wins. Grades with no qualifying
// entry are absent from the result.
//
// The selection is injected into later prompts as grounding examples, which
// improves calibration without exposing the full history.
func (s *Store) SelectStockByGrade(target truckspec.Class) []GradedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var graded []GradedEntry
	for _, e := range s.entries {
		if e.ActualTonnage == nil || e.MaxCapacity == nil {
			continue
		}
		if truckspec.ClassFromCapacity(*e.MaxCapacity) != target {
			continue
		}
		ratio := *e.ActualTonnage / *e.MaxCapacity
		graded = append(graded, GradedEntry{
			Entry:     e,
			Grade:     estimate.GradeFromRatio(ratio),
			LoadRatio: ratio * 100,
		})
	}

	var result []GradedEntry
	for _, grade := range estimate.Grades {
		var inGrade []GradedEntry
		for _, g := range graded {
			if g.Grade == grade {
				inGrade = append(inGrade, g)
			}
		}
		if len(inGrade) == 0 {
			continue
		}
		sort.Slice(inGrade, func(i, j int) bool {
			return inGrade[i].Entry.AnalyzedAt.After(inGrade[j].Entry.AnalyzedAt)
		})
		result = append(result, inGrade[0])
	}
	return result
}
