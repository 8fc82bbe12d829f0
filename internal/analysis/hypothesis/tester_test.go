package hypothesis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
	"vectralab/domain/verdict"
)

func TestOneSampleTTest_MeanEqualsReference(t *testing.T) {
	res, err := NewTester().OneSampleTTest([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)

	assert.InDelta(t, 0, res.Statistic, 1e-12)
	assert.InDelta(t, 1, res.PValue, 1e-12)
	assert.Equal(t, 4.0, res.DegreesOfFreedom)
	assert.Equal(t, verdict.FailToReject, res.Verdict)
	assert.Equal(t, verdict.DefaultAlpha, res.Alpha)
}

func TestOneSampleTTest_Rejects(t *testing.T) {
	// mean 5.2, sample variance 0.035
	res, err := NewTester().OneSampleTTest([]float64{5, 5.5, 5.2, 5.1, 5.2}, 3.2)
	require.NoError(t, err)

	assert.InDelta(t, 2/(math.Sqrt(0.035)/math.Sqrt(5)), res.Statistic, 1e-9)
	assert.Less(t, res.PValue, 0.001)
	assert.Equal(t, verdict.Reject, res.Verdict)
}

func TestOneSampleTTest_KnownPValue(t *testing.T) {
	res, err := NewTester().OneSampleTTest([]float64{1, 1.5, 2.5, 3}, 1)
	require.NoError(t, err)
	sd := math.Sqrt((1 + 0.25 + 0.25 + 1) / 3.0)
	wantT := 1 / (sd / 2)
	assert.InDelta(t, wantT, res.Statistic, 1e-12)
	assert.Greater(t, res.PValue, 0.05)
	assert.Equal(t, verdict.FailToReject, res.Verdict)
}

func TestOneSampleTTest_AlphaIsConfigurable(t *testing.T) {
	values := []float64{1, 1.5, 2.5, 3}
	loose, err := NewTesterWithAlpha(0.5).OneSampleTTest(values, 1)
	require.NoError(t, err)
	strict, err := NewTester().OneSampleTTest(values, 1)
	require.NoError(t, err)

	assert.Equal(t, loose.PValue, strict.PValue)
	assert.Equal(t, verdict.Reject, loose.Verdict)
	assert.Equal(t, verdict.FailToReject, strict.Verdict)
}

func TestOneSampleTTest_Errors(t *testing.T) {
	tester := NewTester()

	_, err := tester.OneSampleTTest([]float64{1}, 0)
	assert.True(t, core.IsInvalidInput(err))

	_, err = tester.OneSampleTTest(nil, 0)
	assert.True(t, core.IsInvalidInput(err))

	_, err = tester.OneSampleTTest([]float64{1, math.NaN()}, 0)
	assert.True(t, core.IsInvalidInput(err))

	_, err = tester.OneSampleTTest([]float64{2, 2, 2}, 0)
	assert.True(t, core.IsNumericalError(err))
}

func TestPeriodSignificance(t *testing.T) {
	tests := []struct {
		name        string
		measured    float64
		sigma       float64
		expected    float64
		wantStat    float64
		wantVerdict verdict.Verdict
	}{
		{name: "exact match", measured: 24, sigma: 0.5, expected: 24, wantStat: 0, wantVerdict: verdict.Confident},
		{name: "within a few sigma", measured: 25, sigma: 0.5, expected: 24, wantStat: 2, wantVerdict: verdict.Confident},
		{name: "far off", measured: 30, sigma: 0.1, expected: 24, wantStat: 60, wantVerdict: verdict.NotConfident},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewTester().PeriodSignificance(tt.measured, tt.sigma, tt.expected)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantStat, res.Statistic, 1e-9)
			assert.Equal(t, PeriodTestDOF, res.DegreesOfFreedom)
			assert.Equal(t, tt.wantVerdict, res.Verdict)
		})
	}
}

func TestPeriodSignificance_CauchyTail(t *testing.T) {
	// t with 1 dof is Cauchy: P(|T| >= 1) = 0.5
	res, err := NewTester().PeriodSignificance(25, 1, 24)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.PValue, 1e-9)
}

func TestPeriodSignificance_Errors(t *testing.T) {
	tester := NewTester()
	for _, sigma := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := tester.PeriodSignificance(24, sigma, 24)
		assert.True(t, core.IsNumericalError(err), "sigma=%v", sigma)
	}
}

func TestPeriodAgainstKind(t *testing.T) {
	res, err := NewTester().PeriodAgainstKind(gnomon.PeriodEstimate{Hours: gnomon.SiderealPeriodHours, HoursErr: 0.2}, gnomon.KindRadial)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Statistic, 1e-12)
	assert.Equal(t, verdict.Confident, res.Verdict)
}
