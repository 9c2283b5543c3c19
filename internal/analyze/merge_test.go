package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
)

func sample(truck string, tonnage float64) *estimate.EstimationResult {
	return &estimate.EstimationResult{
		IsTargetDetected:  true,
		TruckType:         truck,
		MaterialType:      "土砂",
		EstimatedVolumeM3: tonnage / 1.71,
		EstimatedTonnage:  tonnage,
		ConfidenceScore:   0.8,
		Reasoning:         "base reasoning",
	}
}

func TestMergeSingleUnchanged(t *testing.T) {
	r := sample("4tダンプ", 3.4)
	merged := MergeResults([]*estimate.EstimationResult{r})

	assert.Same(t, r, merged)
	assert.Nil(t, merged.EnsembleCount)
	assert.Equal(t, "base reasoning", merged.Reasoning)
}

func TestMergeAveragesNumericFields(t *testing.T) {
	merged := MergeResults([]*estimate.EstimationResult{
		sample("4tダンプ", 3.0),
		sample("4tダンプ", 4.0),
		sample("4tダンプ", 5.0),
	})

	assert.InDelta(t, 4.0, merged.EstimatedTonnage, 1e-9)
	assert.InDelta(t, 0.8, merged.ConfidenceScore, 1e-9)
	require.NotNil(t, merged.EnsembleCount)
	assert.Equal(t, 3, *merged.EnsembleCount)
	assert.Equal(t, "Ensemble average of 3 samples. base reasoning", merged.Reasoning)
}

func TestMergePluralityCategorical(t *testing.T) {
	merged := MergeResults([]*estimate.EstimationResult{
		sample("10tダンプ", 9.0),
		sample("4tダンプ", 3.5),
		sample("4tダンプ", 3.7),
	})

	assert.Equal(t, "4tダンプ", merged.TruckType)
	// the first sample still supplies the structural base
	assert.True(t, merged.IsTargetDetected)
}

func TestMergeTieBreakFirstSeen(t *testing.T) {
	merged := MergeResults([]*estimate.EstimationResult{
		sample("10tダンプ", 9.0),
		sample("4tダンプ", 3.5),
	})

	assert.Equal(t, "10tダンプ", merged.TruckType)
}

func TestMergeEmptyInput(t *testing.T) {
	merged := MergeResults(nil)
	require.NotNil(t, merged)
	assert.False(t, merged.IsTargetDetected)
}
