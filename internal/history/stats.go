package history

import "math"

// AccuracySample is one estimated-vs-actual pair.
type AccuracySample struct {
	Estimated    float64
	Actual       float64
	TruckType    string
	MaterialType string
}

// Error is the signed estimation error (estimated - actual).
func (s AccuracySample) Error() float64 { return s.Estimated - s.Actual }

// AbsError is the absolute estimation error.
func (s AccuracySample) AbsError() float64 { return math.Abs(s.Error()) }

// PercentError is the signed error as a percentage of the actual value, or 0
// when the actual value is not positive.
func (s AccuracySample) PercentError() float64 {
	if s.Actual > 0 {
		return s.Error() / s.Actual * 100
	}
	return 0
}

// AccuracyStats aggregates estimation error over a set of samples.
type AccuracyStats struct {
	SampleCount      int
	MeanError        float64
	MeanAbsError     float64
	MeanPercentError float64
	RMSE             float64
	MaxError         float64
	MinError         float64
	Samples          []AccuracySample
}

// StatsFromSamples computes the aggregate statistics for a sample set.
func StatsFromSamples(samples []AccuracySample) AccuracyStats {
	if len(samples) == 0 {
		return AccuracyStats{}
	}

	n := float64(len(samples))
	var sumErr, sumAbs, sumPct, sumSq float64
	maxErr := math.Inf(-1)
	minErr := math.Inf(1)

	for _, s := range samples {
		e := s.Error()
		sumErr += e
		sumAbs += s.AbsError()
		sumPct += math.Abs(s.PercentError())
		sumSq += e * e
		maxErr = math.Max(maxErr, e)
		minErr = math.Min(minErr, e)
	}

	return AccuracyStats{
		SampleCount:      len(samples),
		MeanError:        sumErr / n,
		MeanAbsError:     sumAbs / n,
		MeanPercentError: sumPct / n,
		RMSE:             math.Sqrt(sumSq / n),
		MaxError:         maxErr,
		MinError:         minErr,
		Samples:          samples,
	}
}

// ByTruckType groups the raw samples by truck type and re-runs the
// aggregation per group.
func (a AccuracyStats) ByTruckType() map[string]AccuracyStats {
	return a.groupBy(func(s AccuracySample) string { return s.TruckType })
}

// ByMaterialType groups the raw samples by material type.
func (a AccuracyStats) ByMaterialType() map[string]AccuracyStats {
	return a.groupBy(func(s AccuracySample) string { return s.MaterialType })
}

func (a AccuracyStats) groupBy(key func(AccuracySample) string) map[string]AccuracyStats {
	groups := make(map[string][]AccuracySample)
	for _, s := range a.Samples {
		groups[key(s)] = append(groups[key(s)], s)
	}

	out := make(map[string]AccuracyStats, len(groups))
	for k, v := range groups {
		out[k] = StatsFromSamples(v)
	}
	return out
}
