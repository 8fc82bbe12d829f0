// Package chisquare compares two channels with a binned two-sample chi-square test.
//
// Each series is resampled onto fixed-width time bins by summing its values, both
// are aligned on the union of their bins with zero fill, and the per-bin counts are
// tested against the null hypothesis that both series share the same per-bin rate.
// Summing treats values as additive, count-like quantities; whether that is
// meaningful for a given channel is the caller's call.
package chisquare

import (
	"fmt"
	"math"
	"sort"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
	"vectralab/internal/analysis/distributions"
)

// DefaultBinWidth is the bin width, in seconds, used by the original analysis.
const DefaultBinWidth = 300.0

// Series is one channel's time column and value column.
type Series struct {
	Time  []float64
	Value []float64
}

// FromNormalized uses displacement as the binned value.
func FromNormalized(s gnomon.NormalizedSeries) Series {
	return Series{Time: s.Time, Value: s.Displacement}
}

// Compare bins both series and computes the two-sample chi-square statistic.
func Compare(a, b Series, binWidth float64) (gnomon.BinnedComparison, error) {
	const op = "chi_square_compare"

	if math.IsNaN(binWidth) || math.IsInf(binWidth, 0) || binWidth <= 0 {
		return gnomon.BinnedComparison{}, core.NewInvalidInputError(op, fmt.Sprintf("bin width must be positive, got %v", binWidth))
	}
	if err := validate(op, "A", a); err != nil {
		return gnomon.BinnedComparison{}, err
	}
	if err := validate(op, "B", b); err != nil {
		return gnomon.BinnedComparison{}, err
	}

	binsA := sumByBin(a, binWidth)
	binsB := sumByBin(b, binWidth)
	keys := unionKeys(binsA, binsB)
	if len(keys) < 2 {
		return gnomon.BinnedComparison{}, core.NewNumericalError(op, "a single bin leaves zero degrees of freedom")
	}

	var totalA, totalB float64
	for _, k := range keys {
		totalA += binsA[k]
		totalB += binsB[k]
	}
	total := totalA + totalB
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return gnomon.BinnedComparison{}, core.NewNumericalError(op, fmt.Sprintf("total observation %v cannot scale expectations", total))
	}
	shareA := totalA / total
	shareB := totalB / total

	result := gnomon.BinnedComparison{
		BinWidth: binWidth,
		Bins:     make([]gnomon.BinRow, len(keys)),
	}
	for i, k := range keys {
		obsA, obsB := binsA[k], binsB[k]
		combined := obsA + obsB
		row := gnomon.BinRow{
			Key:       k,
			ObservedA: obsA,
			ObservedB: obsB,
			ExpectedA: combined * shareA,
			ExpectedB: combined * shareB,
		}
		result.Bins[i] = row

		result.ChiSquareA += term(row.ObservedA, row.ExpectedA)
		result.ChiSquareB += term(row.ObservedB, row.ExpectedB)
	}
	result.ChiSquareTotal = result.ChiSquareA + result.ChiSquareB
	result.DegreesOfFreedom = len(keys) - 1
	result.PValue = distributions.NewDistributions().ChiSquareUpperTail(result.ChiSquareTotal, result.DegreesOfFreedom)

	return result, nil
}

// BinKey returns floor(t/width)*width.
func BinKey(t, width float64) float64 {
	return math.Floor(t/width) * width
}

// term contributes only where the expectation is strictly positive; bins with no
// expected mass add nothing.
func term(observed, expected float64) float64 {
	if expected <= 0 {
		return 0
	}
	d := observed - expected
	return d * d / expected
}

func sumByBin(s Series, width float64) map[float64]float64 {
	bins := make(map[float64]float64)
	for i, t := range s.Time {
		bins[BinKey(t, width)] += s.Value[i]
	}
	return bins
}

func unionKeys(a, b map[float64]float64) []float64 {
	seen := make(map[float64]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]float64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

func validate(op, name string, s Series) error {
	if len(s.Time) == 0 || len(s.Value) == 0 {
		return core.NewInvalidInputError(op, fmt.Sprintf("series %s is empty", name))
	}
	if len(s.Time) != len(s.Value) {
		return core.NewInvalidInputError(op, fmt.Sprintf("series %s has %d times and %d values", name, len(s.Time), len(s.Value)))
	}
	for i := range s.Time {
		if !finite(s.Time[i]) || !finite(s.Value[i]) {
			return core.NewInvalidInputError(op, fmt.Sprintf("series %s has a non-finite entry at index %d", name, i))
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
