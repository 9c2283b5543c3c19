package analyze

import (
	"fmt"

	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
)

// MergeResults combines independent inference results into one: continuous
// fields (volume, tonnage, confidence) are averaged, categorical fields take
// the plurality value, and the first sample supplies the structural base. A
// single-element list is returned unchanged.
func MergeResults(results []*estimate.EstimationResult) *estimate.EstimationResult {
	if len(results) == 0 {
		return &estimate.EstimationResult{}
	}
	if len(results) == 1 {
		return results[0]
	}

	n := float64(len(results))
	var sumVolume, sumTonnage, sumConfidence float64
	truckTypes := make([]string, 0, len(results))
	materialTypes := make([]string, 0, len(results))
	for _, r := range results {
		sumVolume += r.EstimatedVolumeM3
		sumTonnage += r.EstimatedTonnage
		sumConfidence += r.ConfidenceScore
		truckTypes = append(truckTypes, r.TruckType)
		materialTypes = append(materialTypes, r.MaterialType)
	}

	merged := *results[0]
	merged.TruckType = pluralityValue(truckTypes)
	merged.MaterialType = pluralityValue(materialTypes)
	merged.EstimatedVolumeM3 = sumVolume / n
	merged.EstimatedTonnage = sumTonnage / n
	merged.ConfidenceScore = sumConfidence / n
	count := len(results)
	merged.EnsembleCount = &count
	merged.Reasoning = fmt.Sprintf("Ensemble average of %d samples. %s", count, merged.Reasoning)

	return &merged
}

// pluralityValue returns the most common value. Ties go to the value seen
// first, keeping merges reproducible for a fixed sample order.
func pluralityValue(values []string) string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	best := ""
	bestCount := 0
	for _, v := range values {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
