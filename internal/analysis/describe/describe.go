// Package describe computes summary statistics of raw channel angles.
package describe

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
)

// Summarize computes the columnar "describe" view of one channel's values.
// A single value has no sample spread; its StdDev is reported as 0.
func Summarize(values []float64) (gnomon.Summary, error) {
	const op = "describe"

	summary := gnomon.Summary{Count: len(values)}
	if len(values) == 0 {
		return summary, core.NewInvalidInputError(op, "no values")
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return summary, core.NewInvalidInputError(op, fmt.Sprintf("non-finite value at index %d", i))
		}
	}

	data := stats.Float64Data(values)

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, wrap(op, err)
	}

	var stdDev float64
	if len(values) > 1 {
		stdDev, err = stats.StandardDeviationSample(data)
		if err != nil {
			return summary, wrap(op, err)
		}
	}

	min, err := stats.Min(data)
	if err != nil {
		return summary, wrap(op, err)
	}

	max, err := stats.Max(data)
	if err != nil {
		return summary, wrap(op, err)
	}

	median, err := stats.Median(data)
	if err != nil {
		return summary, wrap(op, err)
	}

	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return summary, wrap(op, err)
	}

	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return summary, wrap(op, err)
	}

	summary.Mean = mean
	summary.StdDev = stdDev
	summary.Min = min
	summary.Q25 = q25
	summary.Median = median
	summary.Q75 = q75
	summary.Max = max

	return summary, nil
}

// Channel summarizes the raw angle column of ch. Radial channels yield one summary
// per axis, X first.
func Channel(ch gnomon.Channel) ([]gnomon.Summary, error) {
	if ch.Kind != gnomon.KindRadial {
		s, err := Summarize(ch.Angles())
		if err != nil {
			return nil, err
		}
		return []gnomon.Summary{s}, nil
	}

	xs := make([]float64, len(ch.RadialSamples))
	ys := make([]float64, len(ch.RadialSamples))
	for i, s := range ch.RadialSamples {
		xs[i] = s.AngleX
		ys[i] = s.AngleY
	}
	sx, err := Summarize(xs)
	if err != nil {
		return nil, err
	}
	sy, err := Summarize(ys)
	if err != nil {
		return nil, err
	}
	return []gnomon.Summary{sx, sy}, nil
}

func wrap(op string, err error) error {
	return core.NewNumericalError(op, err.Error())
}
