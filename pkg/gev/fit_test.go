package gev

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plottingSample returns n values at the (i-0.5)/n quantiles of d
func plottingSample(d Dist, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = d.Quantile((float64(i) + 0.5) / float64(n))
	}
	return xs
}

func TestFitRecoversParameters(t *testing.T) {
	tests := []struct {
		name string
		dist Dist
	}{
		{name: "gumbel", dist: Dist{Shape: 0, Loc: -0.5, Scale: 0.6}},
		{name: "bounded above", dist: Dist{Shape: 0.2, Loc: -0.8, Scale: 0.6}},
		{name: "heavy upper tail", dist: Dist{Shape: -0.2, Loc: 1.0, Scale: 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xs := plottingSample(tt.dist, 1000)

			res, err := FitWithSettings(xs, DefaultFitSettings)
			require.NoError(t, err)

			assert.InDelta(t, tt.dist.Shape, res.Dist.Shape, 0.05)
			assert.InDelta(t, tt.dist.Loc, res.Dist.Loc, 0.05)
			assert.InDelta(t, tt.dist.Scale, res.Dist.Scale, 0.05)

			// The optimum must be at least as likely as the generating parameters
			assert.GreaterOrEqual(t, res.LogLikelihood, tt.dist.LogLikelihood(xs)-1e-6)
		})
	}
}

func TestFitIsDeterministic(t *testing.T) {
	xs := plottingSample(Dist{Shape: 0.15, Loc: -0.6, Scale: 0.7}, 71)

	first, err := Fit(xs)
	require.NoError(t, err)
	second, err := Fit(xs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for _, p := range []float64{0.001, 0.5, 0.999} {
		assert.Equal(t, first.Quantile(p), second.Quantile(p))
	}
}

func TestFitEveryObservationInSupport(t *testing.T) {
	xs := plottingSample(Dist{Shape: 0.3, Loc: -0.9, Scale: 0.5}, 71)

	d, err := Fit(xs)
	require.NoError(t, err)
	for _, x := range xs {
		assert.False(t, math.IsInf(d.LogPDF(x), -1), "x=%v outside fitted support", x)
	}
}

func TestFitErrors(t *testing.T) {
	tests := []struct {
		name    string
		xs      []float64
		wantErr error
	}{
		{name: "empty", xs: nil, wantErr: ErrEmptySample},
		{name: "single value", xs: []float64{-1.2}, wantErr: ErrDegenerateSample},
		{name: "constant", xs: []float64{0.5, 0.5, 0.5}, wantErr: ErrDegenerateSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.xs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	_, err := Fit([]float64{1, math.NaN(), 2})
	require.Error(t, err)
}
