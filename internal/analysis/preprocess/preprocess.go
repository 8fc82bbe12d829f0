// Package preprocess turns raw gnomon readings into zero-based time and
// non-negative angular displacement.
//
// Every operation uses the first element of its input as the zero reference.
// The low-level functions assume the caller delivers readings in acquisition
// order; NormalizeLinear and NormalizeRadial check that precondition.
package preprocess

import (
	"math"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
)

const degToRad = math.Pi / 180

// LinearDisplacement converts degrees to radians, subtracts the first element and
// takes the absolute value.
func LinearDisplacement(anglesDeg []float64) ([]float64, error) {
	if len(anglesDeg) == 0 {
		return nil, core.NewInvalidInputError("linear_displacement", "empty angle sequence")
	}

	ref := anglesDeg[0] * degToRad
	out := make([]float64, len(anglesDeg))
	for i, a := range anglesDeg {
		out[i] = math.Abs(a*degToRad - ref)
	}
	return out, nil
}

// RadialDisplacement zeroes each axis at its own first element and returns the
// Euclidean norm of the zeroed pair, in radians.
func RadialDisplacement(anglesXDeg, anglesYDeg []float64) ([]float64, error) {
	if len(anglesXDeg) == 0 || len(anglesYDeg) == 0 {
		return nil, core.NewInvalidInputError("radial_displacement", "empty angle sequence")
	}
	if len(anglesXDeg) != len(anglesYDeg) {
		return nil, core.NewInvalidInputError("radial_displacement", "x and y lengths differ")
	}

	refX := anglesXDeg[0] * degToRad
	refY := anglesYDeg[0] * degToRad
	out := make([]float64, len(anglesXDeg))
	for i := range anglesXDeg {
		dx := anglesXDeg[i]*degToRad - refX
		dy := anglesYDeg[i]*degToRad - refY
		out[i] = math.Hypot(dx, dy)
	}
	return out, nil
}

// ZeroTime subtracts the first element from every element.
func ZeroTime(times []float64) ([]float64, error) {
	if len(times) == 0 {
		return nil, core.NewInvalidInputError("zero_time", "empty time sequence")
	}

	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = t - times[0]
	}
	return out, nil
}

// NormalizeLinear builds a NormalizedSeries from a solar channel.
func NormalizeLinear(samples []gnomon.Sample) (gnomon.NormalizedSeries, error) {
	const op = "normalize_linear"

	times := make([]float64, len(samples))
	angles := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time
		angles[i] = s.Angle
	}
	if err := checkReadings(op, times, angles); err != nil {
		return gnomon.NormalizedSeries{}, err
	}

	disp, err := LinearDisplacement(angles)
	if err != nil {
		return gnomon.NormalizedSeries{}, err
	}
	zeroed, err := ZeroTime(times)
	if err != nil {
		return gnomon.NormalizedSeries{}, err
	}
	return gnomon.NormalizedSeries{Time: zeroed, Displacement: disp}, nil
}

// NormalizeRadial builds a NormalizedSeries from a sidereal channel.
func NormalizeRadial(samples []gnomon.RadialSample) (gnomon.NormalizedSeries, error) {
	const op = "normalize_radial"

	times := make([]float64, len(samples))
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time
		xs[i] = s.AngleX
		ys[i] = s.AngleY
	}
	if err := checkReadings(op, times, xs, ys); err != nil {
		return gnomon.NormalizedSeries{}, err
	}

	disp, err := RadialDisplacement(xs, ys)
	if err != nil {
		return gnomon.NormalizedSeries{}, err
	}
	zeroed, err := ZeroTime(times)
	if err != nil {
		return gnomon.NormalizedSeries{}, err
	}
	return gnomon.NormalizedSeries{Time: zeroed, Displacement: disp}, nil
}

// NormalizeChannel dispatches on the channel kind.
func NormalizeChannel(ch gnomon.Channel) (gnomon.NormalizedSeries, error) {
	switch ch.Kind {
	case gnomon.KindLinear:
		return NormalizeLinear(ch.Samples)
	case gnomon.KindRadial:
		return NormalizeRadial(ch.RadialSamples)
	default:
		return gnomon.NormalizedSeries{}, core.NewInvalidInputError("normalize_channel", "unknown channel kind "+string(ch.Kind))
	}
}

// CheckAscending returns ErrUnsortedInput at the first index where time decreases.
func CheckAscending(op string, times []float64) error {
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return core.NewUnsortedError(op, i)
		}
	}
	return nil
}

func checkReadings(op string, times []float64, columns ...[]float64) error {
	if len(times) == 0 {
		return core.NewInvalidInputError(op, "no samples")
	}
	if !allFinite(times) {
		return core.NewInvalidInputError(op, "non-finite time")
	}
	for _, col := range columns {
		if !allFinite(col) {
			return core.NewInvalidInputError(op, "non-finite angle")
		}
	}
	return CheckAscending(op, times)
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
