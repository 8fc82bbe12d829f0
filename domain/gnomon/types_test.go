package gnomon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelKind(t *testing.T) {
	assert.Equal(t, 24.0, KindLinear.ExpectedPeriodHours())
	assert.InDelta(t, 23.9333, KindRadial.ExpectedPeriodHours(), 1e-4)
	assert.True(t, KindLinear.Valid())
	assert.False(t, ChannelKind("auto").Valid())
}

func TestChannel_Columns(t *testing.T) {
	linear := Channel{Kind: KindLinear, Samples: []Sample{{Time: 0, Angle: 1}, {Time: 5, Angle: 2}}}
	assert.Equal(t, 2, linear.Len())
	assert.Equal(t, []float64{0, 5}, linear.Times())
	assert.Equal(t, []float64{1, 2}, linear.Angles())

	radial := Channel{Kind: KindRadial, RadialSamples: []RadialSample{{Time: 3, AngleX: 7, AngleY: 8}}}
	assert.Equal(t, 1, radial.Len())
	assert.Equal(t, []float64{3}, radial.Times())
	assert.Equal(t, []float64{7}, radial.Angles())
}

func TestFitResult(t *testing.T) {
	f := FitResult{Intercept: 0.5, Slope: -2, SlopeErr: 0.1}
	omega, omegaErr := f.AngularVelocity()
	assert.Equal(t, 2.0, omega)
	assert.Equal(t, 0.1, omegaErr)
	assert.Equal(t, -3.5, f.Predict(2))
	assert.False(t, math.IsNaN(f.Predict(0)))
}
