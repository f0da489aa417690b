package gev

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptySample is returned when Fit is called without observations
	ErrEmptySample = errors.New("gev: cannot fit an empty sample")
	// ErrDegenerateSample is returned when all observations are identical
	ErrDegenerateSample = errors.New("gev: cannot fit a sample with zero variance")
	// ErrNotConverged is returned when the likelihood optimizer fails
	ErrNotConverged = errors.New("gev: maximum likelihood fit did not converge")
)

// outOfSupportPenalty is added to the negative log-likelihood for every
// observation outside the support of a candidate distribution.
var outOfSupportPenalty = math.Log(math.MaxFloat64) * 100

// eulerGamma is the Euler–Mascheroni constant
const eulerGamma = 0.5772156649015329

// FitSettings tunes the Nelder-Mead search
type FitSettings struct {
	MaxIterations int     // Upper bound on simplex iterations
	Tolerance     float64 // Absolute and relative change in the objective treated as converged
	Stall         int     // Iterations without improvement before declaring convergence
}

// DefaultFitSettings is used by Fit
var DefaultFitSettings = FitSettings{
	MaxIterations: 20000,
	Tolerance:     1e-10,
	Stall:         200,
}

// FitResult holds a fitted distribution along with optimizer diagnostics
type FitResult struct {
	Dist          Dist
	LogLikelihood float64
	Iterations    int
	Evaluations   int
	Status        optimize.Status
}

// Fit estimates the GEV parameters of xs by maximum likelihood
func Fit(xs []float64) (Dist, error) {
	res, err := FitWithSettings(xs, DefaultFitSettings)
	if err != nil {
		return Dist{}, err
	}
	return res.Dist, nil
}

// FitWithSettings estimates the GEV parameters of xs by maximum likelihood.
// The search runs over (shape, location, log scale) so the scale stays
// positive, and starts from the Gumbel moment estimates of the sample.
func FitWithSettings(xs []float64, settings FitSettings) (*FitResult, error) {
	if len(xs) == 0 {
		return nil, ErrEmptySample
	}
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("gev: sample contains non-finite value %v", x)
		}
	}

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 || std == 0 || math.IsNaN(std) {
		return nil, ErrDegenerateSample
	}

	start := startingPoint(mean, std)

	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			return penalizedNLL(paramsToDist(theta), xs)
		},
	}

	result, err := optimize.Minimize(problem, start, &optimize.Settings{
		MajorIterations: settings.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   settings.Tolerance,
			Relative:   settings.Tolerance,
			Iterations: settings.Stall,
		},
	}, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConverged, err)
	}

	d := paramsToDist(result.X)
	ll := d.LogLikelihood(xs)
	if math.IsNaN(ll) || math.IsInf(ll, 0) {
		return nil, fmt.Errorf("%w: non-finite log-likelihood at %+v", ErrNotConverged, d)
	}

	return &FitResult{
		Dist:          d,
		LogLikelihood: ll,
		Iterations:    result.Stats.MajorIterations,
		Evaluations:   result.Stats.FuncEvaluations,
		Status:        result.Status,
	}, nil
}

// startingPoint uses the method-of-moments Gumbel estimates; the Gumbel
// support is the whole real line so the start is always feasible.
func startingPoint(mean, std float64) []float64 {
	scale := std * math.Sqrt(6) / math.Pi
	loc := mean - eulerGamma*scale
	return []float64{0, loc, math.Log(scale)}
}

func paramsToDist(theta []float64) Dist {
	return Dist{Shape: theta[0], Loc: theta[1], Scale: math.Exp(theta[2])}
}

// penalizedNLL is the negative log-likelihood with a fixed penalty per
// observation that falls outside the support.
func penalizedNLL(d Dist, xs []float64) float64 {
	if d.Scale <= 0 || math.IsInf(d.Scale, 0) || math.IsNaN(d.Shape) || math.IsNaN(d.Loc) {
		return math.Inf(1)
	}
	var nll float64
	var bad int
	for _, x := range xs {
		lp := d.LogPDF(x)
		if math.IsInf(lp, -1) || math.IsNaN(lp) {
			bad++
			continue
		}
		nll -= lp
	}
	return nll + float64(bad)*outOfSupportPenalty
}
