// Package distributions wraps gonum reference distributions as tail probabilities.
package distributions

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StatisticalDistributions provides unified access to the reference distributions
// used by the significance tests.
type StatisticalDistributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *StatisticalDistributions {
	return &StatisticalDistributions{}
}

// StudentsTTwoSided returns the two-sided p-value of a t statistic with the given
// degrees of freedom. Degrees of freedom may be fractional.
func (sd *StatisticalDistributions) StudentsTTwoSided(tStatistic, degreesOfFreedom float64) float64 {
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}
	return clampProbability(2 * tDist.Survival(math.Abs(tStatistic)))
}

// ChiSquareUpperTail returns P(X >= chiSquare) for X ~ chi-square(degreesOfFreedom),
// i.e. one minus the CDF.
func (sd *StatisticalDistributions) ChiSquareUpperTail(chiSquare float64, degreesOfFreedom int) float64 {
	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return clampProbability(chiDist.Survival(chiSquare))
}

// NormalTwoSidedTail returns the probability that a standard normal deviate is at
// least |z| away from zero: erfc(|z|/sqrt2) == 1 - erf(|z|/sqrt2).
func (sd *StatisticalDistributions) NormalTwoSidedTail(z float64) float64 {
	return math.Erfc(math.Abs(z) / math.Sqrt2)
}

func clampProbability(p float64) float64 {
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
