// Package outlier scores samples with Chauvenet's criterion.
//
// A score is the expected number of samples, out of n drawn from a normal model
// fitted to the same data, that would deviate from the mean at least as much as
// the scored value. The conventional decision rule treats scores below 0.5 as
// outlier candidates; Score never applies it.
package outlier

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
	"vectralab/internal/analysis/distributions"
)

// DefaultThreshold is the conventional Chauvenet rejection level.
const DefaultThreshold = 0.5

// Score returns one OutlierScore per input value, sorted by ascending value.
// Each score keeps the value's index in the caller's slice.
func Score(values []float64) ([]gnomon.OutlierScore, error) {
	const op = "chauvenet"

	n := len(values)
	if n < 2 {
		return nil, core.NewInvalidInputError(op, fmt.Sprintf("need at least 2 values, got %d", n))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, core.NewInvalidInputError(op, fmt.Sprintf("non-finite value at index %d", i))
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	mean, err := stats.Mean(values)
	if err != nil {
		return nil, core.NewNumericalError(op, err.Error())
	}
	sigma, err := stats.StandardDeviationSample(values)
	if err != nil {
		return nil, core.NewNumericalError(op, err.Error())
	}
	if sigma == 0 || math.IsNaN(sigma) {
		return nil, core.NewNumericalError(op, "zero variance: all values identical")
	}

	dist := distributions.NewDistributions()
	scores := make([]gnomon.OutlierScore, n)
	for rank, idx := range order {
		v := values[idx]
		t := math.Abs(v-mean) / sigma
		scores[rank] = gnomon.OutlierScore{
			Index:     idx,
			Value:     v,
			Criterion: dist.NormalTwoSidedTail(t) * float64(n),
		}
	}
	return scores, nil
}

// Candidates returns the scores whose criterion falls strictly below threshold,
// preserving order. Which threshold to use, and what to do with the result, is
// the caller's decision.
func Candidates(scores []gnomon.OutlierScore, threshold float64) []gnomon.OutlierScore {
	out := []gnomon.OutlierScore{}
	for _, s := range scores {
		if s.Criterion < threshold {
			out = append(out, s)
		}
	}
	return out
}
