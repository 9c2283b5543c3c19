package estimate

import (
	"math"

	"github.com/YuujiKamura/tonsuu-checker/internal/truckspec"
)

// Defaults applied when a prompt variant did not populate a field.
const (
	defaultFillRatioL = 0.8
	defaultFillRatioW = 0.5
)

// Weight converts a volume into tonnage.
//
// Formula: weight = volume × density × (1 - voidRatio)
func Weight(volumeM3, density, voidRatio float64) float64 {
	return volumeM3 * density * (1.0 - voidRatio)
}

// ApplyGeometry fills EstimatedVolumeM3 and EstimatedTonnage from whatever
// geometry fields are present on the result. With no usable height the result
// is left unchanged. The outputs are rounded to two decimals so identical
// inputs always produce byte-identical cached results.
func ApplyGeometry(r *EstimationResult) {
	height := floatOr(r.Height, 0)
	if height <= 0 {
		return
	}

	bedArea := truckspec.BedAreaFor(r.TruckType)
	fillL := floatOr(r.FillRatioL, defaultFillRatioL)
	fillW := floatOr(r.FillRatioW, defaultFillRatioW)

	// Prismatoid between the bed floor and the AI-scaled top face. A sloped
	// pile loses part of the top face, clamped so steep slopes never go
	// negative.
	top := bedArea * fillL * fillW
	if r.Slope != nil {
		slope := math.Min(math.Max(*r.Slope, 0), 90)
		top *= 1 - slope/90
	}
	volume := (top + bedArea) / 2 * height

	material := truckspec.MaterialOrDefault(r.MaterialType)
	voidRatio := material.VoidRatio
	switch {
	case r.PackingDensity != nil && *r.PackingDensity > 0 && *r.PackingDensity <= 1:
		voidRatio = 1 - *r.PackingDensity
	case r.VoidRatio != nil:
		voidRatio = *r.VoidRatio
	}

	tonnage := Weight(volume, material.Density, voidRatio)

	r.EstimatedVolumeM3 = round2(volume)
	r.EstimatedTonnage = round2(tonnage)
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
