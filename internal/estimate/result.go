// Package estimate defines the estimation result produced by one inference
// pass and the deterministic geometry that converts AI-estimated parameters
// into volume and tonnage.
package estimate

// MaterialBreakdown describes one component of a mixed load.
type MaterialBreakdown struct {
	Material   string  `json:"material"`
	Percentage float64 `json:"percentage"`
	Density    float64 `json:"density"`
}

// EstimationResult is the structured output of one inference pass. Different
// prompt variants populate different optional-field subsets; the geometric
// estimator tolerates any subset via per-field defaults.
type EstimationResult struct {
	// IsTargetDetected reports whether a dump truck with cargo was found.
	IsTargetDetected bool `json:"isTargetDetected"`

	// TruckType is a free-text class label: "2t", "4t", "増トン", "10t".
	TruckType string `json:"truckType"`

	LicensePlate  *string `json:"licensePlate,omitempty"`
	LicenseNumber *string `json:"licenseNumber,omitempty"`

	// MaterialType: "土砂", "As殻", "Co殻", "開粒度As殻".
	MaterialType string `json:"materialType"`

	// Pile height above the bed floor in meters.
	Height *float64 `json:"height,omitempty"`

	// Fraction of the bed length covered by the pile.
	FillRatioL *float64 `json:"fillRatioL,omitempty"`

	// Fraction of the bed width covered by the pile.
	FillRatioW *float64 `json:"fillRatioW,omitempty"`

	// Pile slope in degrees, estimated from the shear face.
	Slope *float64 `json:"slope,omitempty"`

	// PackingDensity is how tightly pieces are packed, in (0,1].
	PackingDensity *float64 `json:"packingDensity,omitempty"`

	// VoidRatio is the explicit air fraction (0.30-0.40 for rubble).
	VoidRatio *float64 `json:"voidRatio,omitempty"`

	EstimatedVolumeM3 float64 `json:"estimatedVolumeM3"`
	EstimatedTonnage  float64 `json:"estimatedTonnage"`

	// ConfidenceScore is in [0,1].
	ConfidenceScore float64 `json:"confidenceScore"`

	// Reasoning holds the model's calculation description, or the parse
	// diagnostics for downgraded malformed responses.
	Reasoning string `json:"reasoning"`

	MaterialBreakdown []MaterialBreakdown `json:"materialBreakdown,omitempty"`

	// EnsembleCount is set only on merged outputs.
	EnsembleCount *int `json:"ensembleCount,omitempty"`
}
