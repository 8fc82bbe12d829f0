package gnomon

import (
	"math"

	"vectralab/domain/verdict"
)

// ============================================================================
// RAW INPUT (owned by the caller, never mutated)
// ============================================================================

// Sample is one reading of a linear (solar) channel.
type Sample struct {
	Time  float64 `json:"time_s"`    // seconds
	Angle float64 `json:"angle_deg"` // degrees
}

// RadialSample is one reading of a radial (sidereal) channel.
type RadialSample struct {
	Time   float64 `json:"time_s"`
	AngleX float64 `json:"angle_x_deg"`
	AngleY float64 `json:"angle_y_deg"`
}

// ChannelKind selects how a channel's angles become displacement and which
// rotation period it is expected to show.
type ChannelKind string

const (
	KindLinear ChannelKind = "linear" // shadow angle, solar reference
	KindRadial ChannelKind = "radial" // angle pair, sidereal reference
)

// Expected rotation periods in hours.
const (
	SolarPeriodHours    = 24.0
	SiderealPeriodHours = 23.0 + 56.0/60.0
)

// ExpectedPeriodHours returns the theoretical period for the channel kind.
func (k ChannelKind) ExpectedPeriodHours() float64 {
	if k == KindRadial {
		return SiderealPeriodHours
	}
	return SolarPeriodHours
}

// Valid reports whether k is a known kind.
func (k ChannelKind) Valid() bool {
	return k == KindLinear || k == KindRadial
}

// Channel is a named sequence of readings as delivered by the data-acquisition layer.
// Exactly one of Samples / RadialSamples is populated, according to Kind.
type Channel struct {
	Name          string         `json:"name"`
	Kind          ChannelKind    `json:"kind"`
	Samples       []Sample       `json:"samples,omitempty"`
	RadialSamples []RadialSample `json:"radial_samples,omitempty"`
}

// Len returns the number of readings.
func (c Channel) Len() int {
	if c.Kind == KindRadial {
		return len(c.RadialSamples)
	}
	return len(c.Samples)
}

// Times returns a copy of the channel's time column.
func (c Channel) Times() []float64 {
	out := make([]float64, 0, c.Len())
	if c.Kind == KindRadial {
		for _, s := range c.RadialSamples {
			out = append(out, s.Time)
		}
		return out
	}
	for _, s := range c.Samples {
		out = append(out, s.Time)
	}
	return out
}

// Angles returns the raw angle column. For radial channels this is the X axis.
func (c Channel) Angles() []float64 {
	out := make([]float64, 0, c.Len())
	if c.Kind == KindRadial {
		for _, s := range c.RadialSamples {
			out = append(out, s.AngleX)
		}
		return out
	}
	for _, s := range c.Samples {
		out = append(out, s.Angle)
	}
	return out
}

// ============================================================================
// DERIVED VALUE OBJECTS
// ============================================================================

// NormalizedSeries holds zero-based time and non-negative angular displacement.
// INVARIANTS:
// - len(Time) == len(Displacement)
// - Time[0] == 0
// - Displacement[i] >= 0
type NormalizedSeries struct {
	Time         []float64 `json:"time_s"`
	Displacement []float64 `json:"displacement_rad"`
}

// Len returns the number of aligned points.
func (s NormalizedSeries) Len() int {
	return len(s.Time)
}

// FitResult holds the affine fit displacement = Intercept + Slope*time.
type FitResult struct {
	Intercept    float64 `json:"intercept_rad"`
	Slope        float64 `json:"slope_rad_per_s"`
	InterceptErr float64 `json:"intercept_err"`
	SlopeErr     float64 `json:"slope_err"`
	Iterations   int     `json:"iterations"`
	Points       int     `json:"points"`
}

// AngularVelocity returns |slope| and its uncertainty, the inputs of the period estimate.
func (f FitResult) AngularVelocity() (omega, omegaErr float64) {
	return math.Abs(f.Slope), f.SlopeErr
}

// Predict evaluates the fitted line at t.
func (f FitResult) Predict(t float64) float64 {
	return f.Intercept + f.Slope*t
}

// PeriodEstimate is the rotation period implied by an angular velocity.
type PeriodEstimate struct {
	Hours    float64 `json:"period_hours"`
	HoursErr float64 `json:"period_hours_err"`
}

// OutlierScore pairs a value with its Chauvenet criterion (expected count of
// deviations at least this large among n samples).
type OutlierScore struct {
	Index     int     `json:"index"` // position in the caller's input
	Value     float64 `json:"value"`
	Criterion float64 `json:"criterion"`
}

// BinRow is one time bin of a two-sample comparison.
type BinRow struct {
	Key       float64 `json:"bin_key"`
	ObservedA float64 `json:"observed_a"`
	ObservedB float64 `json:"observed_b"`
	ExpectedA float64 `json:"expected_a"`
	ExpectedB float64 `json:"expected_b"`
}

// BinnedComparison is the result of a two-sample binned chi-square test.
// INVARIANTS:
// - Bins are sorted by Key, keys unique, covering the union of both inputs
// - DegreesOfFreedom == len(Bins) - 1
type BinnedComparison struct {
	BinWidth         float64  `json:"bin_width_s"`
	Bins             []BinRow `json:"bins"`
	ChiSquareA       float64  `json:"chi2_a"`
	ChiSquareB       float64  `json:"chi2_b"`
	ChiSquareTotal   float64  `json:"chi2_total"`
	DegreesOfFreedom int      `json:"dof"`
	PValue           float64  `json:"p_value"`
}

// HypothesisResult is the outcome of a significance test.
type HypothesisResult struct {
	Statistic        float64         `json:"statistic"`
	PValue           float64         `json:"p_value"`
	DegreesOfFreedom float64         `json:"dof"`
	Alpha            float64         `json:"alpha"`
	Verdict          verdict.Verdict `json:"verdict"`
}

// Summary mirrors a columnar "describe" view of one channel.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}
