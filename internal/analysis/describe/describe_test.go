package describe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{4, 8, 6, 2, 10, 12, 16, 14})
	require.NoError(t, err)

	assert.Equal(t, 8, s.Count)
	assert.InDelta(t, 9.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(24), s.StdDev, 1e-12)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 16.0, s.Max)
	assert.InDelta(t, 9.0, s.Median, 1e-12)
	assert.Equal(t, 4.0, s.Q25)
	assert.Equal(t, 12.0, s.Q75)
}

func TestSummarize_SingleValue(t *testing.T) {
	s, err := Summarize([]float64{3.5})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 3.5, s.Mean)
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, 3.5, s.Median)
}

func TestSummarize_Errors(t *testing.T) {
	_, err := Summarize(nil)
	assert.True(t, core.IsInvalidInput(err))

	_, err = Summarize([]float64{1, math.Inf(-1)})
	assert.True(t, core.IsInvalidInput(err))
}

func TestChannel_RadialSummarizesBothAxes(t *testing.T) {
	ch := gnomon.Channel{
		Name: "sidereal",
		Kind: gnomon.KindRadial,
		RadialSamples: []gnomon.RadialSample{
			{Time: 0, AngleX: 1, AngleY: 10},
			{Time: 60, AngleX: 3, AngleY: 30},
		},
	}

	out, err := Channel(ch)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, out[0].Mean)
	assert.Equal(t, 20.0, out[1].Mean)
}
