// Package regression fits angular displacement against time with the affine model
// displacement = a0 + a1*time and converts the fitted angular velocity into a
// rotation period.
package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
)

// DiurnalAngularVelocity is one revolution per 86400 s, in rad/s.
const DiurnalAngularVelocity = 2 * math.Pi / 86400

const (
	defaultMaxIterations = 20
	defaultTolerance     = 1e-10
	minPoints            = 3
)

// Fitter performs Gauss-Newton least squares starting from InitialGuess.
// The default guess assumes roughly diurnal motion; replace it when fitting
// data on a different scale.
type Fitter struct {
	InitialGuess  [2]float64 // {a0, a1}
	MaxIterations int
	Tolerance     float64 // relative step norm or SSR change that ends the iteration
}

// NewFitter creates a fitter seeded with a0 = 0, a1 = 2π/86400.
func NewFitter() *Fitter {
	return &Fitter{
		InitialGuess:  [2]float64{0, DiurnalAngularVelocity},
		MaxIterations: defaultMaxIterations,
		Tolerance:     defaultTolerance,
	}
}

// FitSeries fits a normalized series without per-point uncertainty.
func (f *Fitter) FitSeries(series gnomon.NormalizedSeries) (gnomon.FitResult, error) {
	return f.Fit(series.Time, series.Displacement, nil)
}

// Fit minimizes the (optionally inverse-variance weighted) squared residuals.
//
// With uncertainty the parameter covariance is (JᵀWJ)⁻¹, treating the supplied
// sigmas as absolute. Without it the covariance is scaled by the residual
// variance SSR/(n-2). Standard errors are the square roots of its diagonal.
func (f *Fitter) Fit(time, displacement, uncertainty []float64) (gnomon.FitResult, error) {
	const op = "fit"

	n := len(time)
	if n == 0 || len(displacement) == 0 {
		return gnomon.FitResult{}, core.NewInvalidInputError(op, "empty input")
	}
	if len(displacement) != n {
		return gnomon.FitResult{}, core.NewInvalidInputError(op, fmt.Sprintf("time has %d points, displacement has %d", n, len(displacement)))
	}
	if uncertainty != nil && len(uncertainty) != n {
		return gnomon.FitResult{}, core.NewInvalidInputError(op, fmt.Sprintf("uncertainty has %d points, expected %d", len(uncertainty), n))
	}
	for i := 0; i < n; i++ {
		if !isFinite(time[i]) || !isFinite(displacement[i]) {
			return gnomon.FitResult{}, core.NewInvalidInputError(op, fmt.Sprintf("non-finite value at index %d", i))
		}
		if uncertainty != nil && (!isFinite(uncertainty[i]) || uncertainty[i] <= 0) {
			return gnomon.FitResult{}, core.NewInvalidInputError(op, fmt.Sprintf("uncertainty at index %d must be positive", i))
		}
	}
	if n < minPoints {
		return gnomon.FitResult{}, core.NewNumericalError(op, fmt.Sprintf("covariance needs at least %d points, got %d", minPoints, n))
	}

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
		if uncertainty != nil {
			weights[i] = 1 / (uncertainty[i] * uncertainty[i])
		}
	}

	// Solve in centered, scaled time u = (t-center)/span so the normal matrix stays
	// well conditioned for time spans of days; parameters map back linearly.
	center, span := timeScale(time)
	if span == 0 {
		return gnomon.FitResult{}, core.NewNumericalError(op, "singular design: all sample times are equal")
	}
	scaled := make([]float64, n)
	for i, t := range time {
		scaled[i] = (t - center) / span
	}

	// Jacobian of the affine model does not depend on the parameters.
	jac := mat.NewDense(n, 2, nil)
	for i, u := range scaled {
		jac.Set(i, 0, 1)
		jac.Set(i, 1, u)
	}
	var jtw mat.Dense
	jtw.Mul(jac.T(), mat.NewDiagDense(n, weights))

	var normal mat.Dense
	normal.Mul(&jtw, jac)

	var normalInv mat.Dense
	if err := normalInv.Inverse(&normal); err != nil {
		return gnomon.FitResult{}, core.NewNumericalError(op, fmt.Sprintf("singular design: %v", err))
	}

	// Initial guess in scaled coordinates: b0 = a0 + a1*center, b1 = a1*span.
	params := mat.NewVecDense(2, []float64{
		f.InitialGuess[0] + f.InitialGuess[1]*center,
		f.InitialGuess[1] * span,
	})
	residuals := mat.NewVecDense(n, nil)
	maxIter := f.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	// Convergence is confirmed on the residuals after the first step.
	if maxIter < 2 {
		maxIter = 2
	}
	tol := f.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}

	// Scaled parameters carry the units of displacement. Rounding after the first
	// step is relative to the data and the starting point, so steps are judged
	// against both as well as the current parameters.
	roundScale := floats.Norm(displacement, math.Inf(1)) + mat.Norm(params, 2)

	iterations := 0
	converged := false
	prevSSR := math.Inf(1)
	for iterations < maxIter {
		iterations++
		computeResiduals(residuals, scaled, displacement, params)

		// The model is affine, so once the SSR stops falling only rounding is left.
		ssr := mat.Dot(residuals, residuals)
		if iterations > 1 && prevSSR-ssr <= tol*prevSSR {
			converged = true
			break
		}
		prevSSR = ssr

		var gradient, step mat.VecDense
		gradient.MulVec(&jtw, residuals)
		step.MulVec(&normalInv, &gradient)
		params.AddVec(params, &step)

		if mat.Norm(&step, 2) <= tol*(mat.Norm(params, 2)+roundScale) {
			converged = true
			break
		}
	}
	if !converged {
		return gnomon.FitResult{}, core.NewNumericalError(op, fmt.Sprintf("no convergence after %d iterations", iterations))
	}

	computeResiduals(residuals, scaled, displacement, params)

	scale := 1.0
	if uncertainty == nil {
		ssr := 0.0
		for i := 0; i < n; i++ {
			r := residuals.AtVec(i)
			ssr += r * r
		}
		scale = ssr / float64(n-2)
	}

	// a = M b with M = [[1, -center/span], [0, 1/span]]; cov(a) = M cov(b) Mᵀ.
	back := mat.NewDense(2, 2, []float64{1, -center / span, 0, 1 / span})
	var a mat.VecDense
	a.MulVec(back, params)

	var cov mat.Dense
	cov.Product(back, &normalInv, back.T())
	cov.Scale(scale, &cov)

	errs := [2]float64{}
	for k := 0; k < 2; k++ {
		v := cov.At(k, k)
		if !isFinite(v) || v < 0 {
			return gnomon.FitResult{}, core.NewNumericalError(op, "covariance could not be estimated")
		}
		errs[k] = math.Sqrt(v)
	}

	a0, a1 := a.AtVec(0), a.AtVec(1)
	if !isFinite(a0) || !isFinite(a1) {
		return gnomon.FitResult{}, core.NewNumericalError(op, "non-finite parameters")
	}

	return gnomon.FitResult{
		Intercept:    a0,
		Slope:        a1,
		InterceptErr: errs[0],
		SlopeErr:     errs[1],
		Iterations:   iterations,
		Points:       n,
	}, nil
}

// PeriodFromAngularVelocity converts ω (rad/s) to a period in hours with
// first-order error propagation: σT = (2π/ω²)·σω/3600. The propagation is only
// meaningful for σω much smaller than ω. The sign of ω is ignored.
func PeriodFromAngularVelocity(omega, omegaErr float64) (gnomon.PeriodEstimate, error) {
	const op = "period_from_angular_velocity"

	if !isFinite(omega) || omega == 0 {
		return gnomon.PeriodEstimate{}, core.NewNumericalError(op, fmt.Sprintf("angular velocity %v has no finite period", omega))
	}
	if !isFinite(omegaErr) || omegaErr < 0 {
		return gnomon.PeriodEstimate{}, core.NewNumericalError(op, fmt.Sprintf("angular velocity uncertainty %v is not a finite non-negative number", omegaErr))
	}

	omega = math.Abs(omega)
	hours := (2 * math.Pi / omega) / 3600
	hoursErr := (2 * math.Pi / (omega * omega)) * omegaErr / 3600
	if !isFinite(hours) || !isFinite(hoursErr) {
		return gnomon.PeriodEstimate{}, core.NewNumericalError(op, "period overflow")
	}

	return gnomon.PeriodEstimate{Hours: hours, HoursErr: hoursErr}, nil
}

// PeriodFromFit applies PeriodFromAngularVelocity to |a1| and σ(a1).
func PeriodFromFit(fit gnomon.FitResult) (gnomon.PeriodEstimate, error) {
	omega, omegaErr := fit.AngularVelocity()
	return PeriodFromAngularVelocity(omega, omegaErr)
}

func computeResiduals(dst *mat.VecDense, time, displacement []float64, params *mat.VecDense) {
	a0, a1 := params.AtVec(0), params.AtVec(1)
	for i, t := range time {
		dst.SetVec(i, displacement[i]-(a0+a1*t))
	}
}

// timeScale returns the mean time and the largest distance from it.
func timeScale(time []float64) (center, span float64) {
	for _, t := range time {
		center += t
	}
	center /= float64(len(time))
	for _, t := range time {
		if d := math.Abs(t - center); d > span {
			span = d
		}
	}
	return center, span
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
