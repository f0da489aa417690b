// Package massbalance holds annual glacier specific mass-balance observations
// and the simple statistics the distribution figure is derived from.
package massbalance

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptySeries is returned when no complete observation is left after cleaning
var ErrEmptySeries = errors.New("massbalance: series is empty")

// Observation is the specific mass balance of a single hydrological year
type Observation struct {
	Year  int
	Value float64
}

// Series is a set of observations ordered by year with one value per year
type Series []Observation

// sortByYear orders the series in place
func (s Series) sortByYear() {
	sort.Slice(s, func(i, j int) bool { return s[i].Year < s[j].Year })
}

// Values returns the observation values in year order
func (s Series) Values() []float64 {
	vals := make([]float64, len(s))
	for i, o := range s {
		vals[i] = o.Value
	}
	return vals
}

// Years returns the observation years in order
func (s Series) Years() []int {
	years := make([]int, len(s))
	for i, o := range s {
		years[i] = o.Year
	}
	return years
}

// FirstYear returns the earliest year, or 0 for an empty series
func (s Series) FirstYear() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].Year
}

// LastYear returns the latest year, or 0 for an empty series
func (s Series) LastYear() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Year
}

// Lookup returns the value recorded for year
func (s Series) Lookup(year int) (float64, bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i].Year >= year })
	if i < len(s) && s[i].Year == year {
		return s[i].Value, true
	}
	return 0, false
}

// MaxAbs returns max(|min|, |max|) over the series values
func (s Series) MaxAbs() float64 {
	if len(s) == 0 {
		return 0
	}
	vals := s.Values()
	return math.Max(math.Abs(floats.Min(vals)), math.Abs(floats.Max(vals)))
}

// SymmetricBound returns the half-width of an axis centred on zero that
// holds every observation with the given headroom factor
func (s Series) SymmetricBound(margin float64) float64 {
	return s.MaxAbs() * margin
}

// Partition splits the series into the observations whose year is listed in
// years and all the others. Both halves keep year order.
func (s Series) Partition(years []int) (highlighted, background Series) {
	set := make(map[int]struct{}, len(years))
	for _, y := range years {
		set[y] = struct{}{}
	}
	for _, o := range s {
		if _, ok := set[o.Year]; ok {
			highlighted = append(highlighted, o)
		} else {
			background = append(background, o)
		}
	}
	return highlighted, background
}
