// Package hypothesis implements the significance tests applied to a channel: a
// one-sample t-test of the raw angles and a check of a fitted period against its
// theoretical value.
package hypothesis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
	"vectralab/domain/verdict"
	"vectralab/internal/analysis/distributions"
)

// PeriodTestDOF is the degrees of freedom of the period test. A single fitted
// period is compared against its expectation, so the test is deliberately
// conservative.
const PeriodTestDOF = 1.0

// Tester runs the hypothesis tests at a fixed significance level.
type Tester struct {
	Alpha float64

	dist *distributions.StatisticalDistributions
}

// NewTester creates a tester at verdict.DefaultAlpha.
func NewTester() *Tester {
	return NewTesterWithAlpha(verdict.DefaultAlpha)
}

// NewTesterWithAlpha creates a tester at the given significance level.
func NewTesterWithAlpha(alpha float64) *Tester {
	return &Tester{Alpha: alpha, dist: distributions.NewDistributions()}
}

// OneSampleTTest tests whether the mean of values differs from referenceMean.
func (t *Tester) OneSampleTTest(values []float64, referenceMean float64) (gnomon.HypothesisResult, error) {
	const op = "one_sample_t_test"

	if len(values) < 2 {
		return gnomon.HypothesisResult{}, core.NewInvalidInputError(op, fmt.Sprintf("need at least 2 values, got %d", len(values)))
	}
	if !finite(referenceMean) {
		return gnomon.HypothesisResult{}, core.NewInvalidInputError(op, "reference mean is not finite")
	}
	for i, v := range values {
		if !finite(v) {
			return gnomon.HypothesisResult{}, core.NewInvalidInputError(op, fmt.Sprintf("non-finite value at index %d", i))
		}
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return gnomon.HypothesisResult{}, core.NewNumericalError(op, err.Error())
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return gnomon.HypothesisResult{}, core.NewNumericalError(op, err.Error())
	}
	if sd == 0 || !finite(sd) {
		return gnomon.HypothesisResult{}, core.NewNumericalError(op, "values have zero variance")
	}

	n := float64(len(values))
	stat := (mean - referenceMean) / (sd / math.Sqrt(n))
	dof := n - 1
	p := t.distributions().StudentsTTwoSided(stat, dof)

	return gnomon.HypothesisResult{
		Statistic:        stat,
		PValue:           p,
		DegreesOfFreedom: dof,
		Alpha:            t.Alpha,
		Verdict:          verdict.ForMeanTest(p, t.Alpha),
	}, nil
}

// PeriodSignificance tests a measured period against the expected one.
func (t *Tester) PeriodSignificance(measured, measuredErr, expected float64) (gnomon.HypothesisResult, error) {
	const op = "period_significance"

	if !finite(measuredErr) || measuredErr <= 0 {
		return gnomon.HypothesisResult{}, core.NewNumericalError(op, fmt.Sprintf("period uncertainty must be positive and finite, got %v", measuredErr))
	}
	if !finite(measured) || !finite(expected) {
		return gnomon.HypothesisResult{}, core.NewInvalidInputError(op, "periods must be finite")
	}

	stat := (measured - expected) / measuredErr
	p := t.distributions().StudentsTTwoSided(stat, PeriodTestDOF)

	return gnomon.HypothesisResult{
		Statistic:        stat,
		PValue:           p,
		DegreesOfFreedom: PeriodTestDOF,
		Alpha:            t.Alpha,
		Verdict:          verdict.ForPeriodTest(p, t.Alpha),
	}, nil
}

// PeriodAgainstKind tests an estimate against the period expected for kind.
func (t *Tester) PeriodAgainstKind(est gnomon.PeriodEstimate, kind gnomon.ChannelKind) (gnomon.HypothesisResult, error) {
	return t.PeriodSignificance(est.Hours, est.HoursErr, kind.ExpectedPeriodHours())
}

func (t *Tester) distributions() *distributions.StatisticalDistributions {
	if t.dist == nil {
		t.dist = distributions.NewDistributions()
	}
	return t.dist
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
