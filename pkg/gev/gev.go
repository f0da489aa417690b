// Package gev implements the generalized extreme value distribution and a
// maximum likelihood fit for it. The shape parameter follows the sign
// convention used by scipy's genextreme: Shape > 0 gives a distribution
// bounded above, Shape < 0 one bounded below and Shape == 0 is the Gumbel
// distribution.
package gev

import (
	"math"
)

// gumbelTolerance is the shape magnitude below which the Gumbel limit is used
const gumbelTolerance = 1e-12

// Dist is a GEV distribution with shape c, location and scale
type Dist struct {
	Shape float64
	Loc   float64
	Scale float64
}

// z returns the standardized value of x
func (d Dist) z(x float64) float64 {
	return (x - d.Loc) / d.Scale
}

func (d Dist) isGumbel() bool {
	return math.Abs(d.Shape) < gumbelTolerance
}

// reducedLog returns L = log(1 - c*z) and u = L/c, so that (1 - c*z)^(1/c) = exp(u).
// ok is false when x lies outside the support.
func (d Dist) reducedLog(x float64) (L, u float64, ok bool) {
	z := d.z(x)
	if d.isGumbel() {
		return 0, -z, true
	}
	cz := d.Shape * z
	if cz >= 1 {
		return 0, 0, false
	}
	L = math.Log1p(-cz)
	return L, L / d.Shape, true
}

// LogPDF returns the natural log of the density at x
func (d Dist) LogPDF(x float64) float64 {
	if d.Scale <= 0 || math.IsNaN(x) {
		return math.NaN()
	}
	L, u, ok := d.reducedLog(x)
	if !ok {
		return math.Inf(-1)
	}
	return -math.Log(d.Scale) + u - L - math.Exp(u)
}

// PDF returns the probability density at x
func (d Dist) PDF(x float64) float64 {
	return math.Exp(d.LogPDF(x))
}

// CDF returns the probability that a draw is at most x
func (d Dist) CDF(x float64) float64 {
	if d.Scale <= 0 || math.IsNaN(x) {
		return math.NaN()
	}
	_, u, ok := d.reducedLog(x)
	if !ok {
		// Outside the support: above the upper bound for c > 0, below the lower for c < 0
		if d.Shape > 0 {
			return 1
		}
		return 0
	}
	return math.Exp(-math.Exp(u))
}

// Quantile returns the inverse of the CDF at probability p
func (d Dist) Quantile(p float64) float64 {
	if d.Scale <= 0 || math.IsNaN(p) || p < 0 || p > 1 {
		return math.NaN()
	}
	lo, hi := d.Support()
	switch p {
	case 0:
		return lo
	case 1:
		return hi
	}
	// w = log(-log p)
	w := math.Log(-math.Log(p))
	if d.isGumbel() {
		return d.Loc - d.Scale*w
	}
	return d.Loc - d.Scale*math.Expm1(d.Shape*w)/d.Shape
}

// Median returns the 50% quantile
func (d Dist) Median() float64 {
	return d.Quantile(0.5)
}

// Support returns the interval on which the density is positive
func (d Dist) Support() (lo, hi float64) {
	switch {
	case d.isGumbel():
		return math.Inf(-1), math.Inf(1)
	case d.Shape > 0:
		return math.Inf(-1), d.Loc + d.Scale/d.Shape
	default:
		return d.Loc + d.Scale/d.Shape, math.Inf(1)
	}
}

// LogLikelihood returns the summed log density of xs
func (d Dist) LogLikelihood(xs []float64) float64 {
	var ll float64
	for _, x := range xs {
		ll += d.LogPDF(x)
	}
	return ll
}
