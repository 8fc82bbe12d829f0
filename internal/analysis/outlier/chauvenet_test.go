package outlier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectralab/domain/core"
)

func TestScore_FlagsDistantValue(t *testing.T) {
	values := []float64{10.0, 10.1, 9.9, 10.05, 9.95, 10.02, 9.98, 10.01, 9.99, 10.03}
	// Ten standard deviations of the cluster away
	values = append(values, 10.0+10*0.06)
	outlierIndex := len(values) - 1

	scores, err := Score(values)
	require.NoError(t, err)
	require.Len(t, scores, len(values))

	for _, s := range scores {
		if s.Index == outlierIndex {
			assert.Less(t, s.Criterion, DefaultThreshold, "outlier %v", s.Value)
		} else {
			assert.Greater(t, s.Criterion, DefaultThreshold, "inlier %v", s.Value)
		}
	}

	candidates := Candidates(scores, DefaultThreshold)
	require.Len(t, candidates, 1)
	assert.Equal(t, outlierIndex, candidates[0].Index)
}

func TestScore_SortedAndPaired(t *testing.T) {
	values := []float64{3, 1, 2, 5, 4}

	scores, err := Score(values)
	require.NoError(t, err)

	for i := 1; i < len(scores); i++ {
		assert.LessOrEqual(t, scores[i-1].Value, scores[i].Value)
	}
	for _, s := range scores {
		assert.Equal(t, values[s.Index], s.Value)
	}
	assert.Equal(t, []float64{3, 1, 2, 5, 4}, values, "input must not be reordered")
}

func TestScore_MatchesFormula(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	// mean 3, sample sd sqrt(2.5)
	sd := math.Sqrt(2.5)

	scores, err := Score(values)
	require.NoError(t, err)

	for _, s := range scores {
		tDev := math.Abs(s.Value-3) / sd
		want := (1 - math.Erf(tDev/math.Sqrt2)) * 5
		assert.InDelta(t, want, s.Criterion, 1e-12)
		assert.GreaterOrEqual(t, s.Criterion, 0.0)
		assert.LessOrEqual(t, s.Criterion, 5.0)
	}
	// The value at the mean has the largest possible score, n
	assert.InDelta(t, 5.0, scores[2].Criterion, 1e-12)
}

func TestScore_Errors(t *testing.T) {
	_, err := Score(nil)
	assert.True(t, core.IsInvalidInput(err))

	_, err = Score([]float64{1})
	assert.True(t, core.IsInvalidInput(err))

	_, err = Score([]float64{1, math.Inf(1)})
	assert.True(t, core.IsInvalidInput(err))

	_, err = Score([]float64{7, 7, 7})
	assert.True(t, core.IsNumericalError(err))
}

func TestCandidates_CallerThreshold(t *testing.T) {
	scores, err := Score([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Empty(t, Candidates(scores, DefaultThreshold))
	assert.Len(t, Candidates(scores, 5.0+1e-9), 5)
}
