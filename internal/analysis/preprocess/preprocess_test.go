package preprocess

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
)

func TestZeroTime(t *testing.T) {
	tests := []struct {
		name  string
		input []float64
		want  []float64
	}{
		{"already zero based", []float64{0, 10, 20}, []float64{0, 10, 20}},
		{"offset", []float64{100, 160, 220}, []float64{0, 60, 120}},
		{"single sample", []float64{42}, []float64{0}},
		{"negative start", []float64{-5, 0, 5}, []float64{0, 5, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ZeroTime(tt.input)
			require.NoError(t, err)
			assert.Equal(t, 0.0, got[0])
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestZeroTime_DoesNotMutateInput(t *testing.T) {
	input := []float64{5, 6, 7}
	_, err := ZeroTime(input)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6, 7}, input)
}

func TestLinearDisplacement(t *testing.T) {
	got, err := LinearDisplacement([]float64{10, 15, 5, 10})
	require.NoError(t, err)

	want := []float64{0, 5 * math.Pi / 180, 5 * math.Pi / 180, 0}
	assert.InDeltaSlice(t, want, got, 1e-12)
	for i, d := range got {
		assert.GreaterOrEqual(t, d, 0.0, "displacement[%d] must be non-negative", i)
	}
}

func TestRadialDisplacement(t *testing.T) {
	got, err := RadialDisplacement([]float64{1, 4, 1}, []float64{2, 6, 2})
	require.NoError(t, err)

	// (3, 4) degrees from the reference is 5 degrees
	assert.InDelta(t, 0, got[0], 1e-12)
	assert.InDelta(t, 5*math.Pi/180, got[1], 1e-12)
	assert.InDelta(t, 0, got[2], 1e-12)
}

func TestDisplacement_InvalidInput(t *testing.T) {
	_, err := LinearDisplacement(nil)
	assert.True(t, core.IsInvalidInput(err))

	_, err = RadialDisplacement([]float64{1, 2}, []float64{1})
	assert.True(t, core.IsInvalidInput(err))

	_, err = RadialDisplacement(nil, nil)
	assert.True(t, core.IsInvalidInput(err))

	_, err = ZeroTime([]float64{})
	assert.True(t, core.IsInvalidInput(err))
}

func TestNormalizeLinear(t *testing.T) {
	samples := []gnomon.Sample{
		{Time: 3600, Angle: 30},
		{Time: 3660, Angle: 30.25},
		{Time: 3720, Angle: 30.5},
	}

	series, err := NormalizeLinear(samples)
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())
	assert.Equal(t, []float64{0, 60, 120}, series.Time)
	assert.InDelta(t, 0.5*math.Pi/180, series.Displacement[2], 1e-12)
}

func TestNormalizeLinear_RejectsUnsortedTime(t *testing.T) {
	samples := []gnomon.Sample{
		{Time: 0, Angle: 1},
		{Time: 120, Angle: 2},
		{Time: 60, Angle: 3},
	}

	_, err := NormalizeLinear(samples)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnsortedInput))
	assert.True(t, core.IsInvalidInput(err))
}

func TestNormalizeRadial_RejectsNonFinite(t *testing.T) {
	samples := []gnomon.RadialSample{
		{Time: 0, AngleX: 1, AngleY: 1},
		{Time: 60, AngleX: math.NaN(), AngleY: 1},
	}

	_, err := NormalizeRadial(samples)
	assert.True(t, core.IsInvalidInput(err))
}

func TestNormalizeChannel(t *testing.T) {
	ch := gnomon.Channel{
		Name: "Sidereal 1",
		Kind: gnomon.KindRadial,
		RadialSamples: []gnomon.RadialSample{
			{Time: 10, AngleX: 0, AngleY: 0},
			{Time: 20, AngleX: 3, AngleY: 4},
		},
	}

	series, err := NormalizeChannel(ch)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10}, series.Time)
	assert.InDelta(t, 5*math.Pi/180, series.Displacement[1], 1e-12)

	_, err = NormalizeChannel(gnomon.Channel{Kind: "bogus"})
	assert.True(t, core.IsInvalidInput(err))
}
