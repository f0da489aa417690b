// Package figure renders the mass-balance distribution figure: one vertical
// line per year, the fitted GEV density and a secondary axis of quantiles.
package figure

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strconv"

	"github.com/chrissnell/mbdist/internal/massbalance"
	"github.com/chrissnell/mbdist/pkg/gev"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// CurvePoints is the number of points the density curve is evaluated at
const CurvePoints = 100

// Highlight is a year drawn with a wide colored line and a legend entry
type Highlight struct {
	Year  int
	Color color.Color
	Label string
}

// QuantileLevel pairs a probability with its axis label
type QuantileLevel struct {
	Probability float64
	Label       string
}

// Quantile is a quantile level resolved through a fitted distribution
type Quantile struct {
	QuantileLevel
	Value float64
}

// Marker is the vertical line drawn for one year
type Marker struct {
	Year  int
	Value float64
	Color color.Color
	Width vg.Length
	Label string // Legend entry, empty for background years
}

// Input is everything Build needs to draw a figure
type Input struct {
	Series     massbalance.Series
	Dist       gev.Dist
	Highlights []Highlight
	Quantiles  []QuantileLevel
	Margin     float64
	XLabel     string
	Style      Style // DefaultStyle when zero
}

// Figure is a built plot together with the numbers it was drawn from
type Figure struct {
	Plot       *plot.Plot
	Bound      float64
	Curve      plotter.XYs
	Quantiles  []Quantile
	Markers    []Marker
	Annotation string

	// MissingGlyphs are label characters the plot fonts cannot draw
	MissingGlyphs []rune
}

// Markers returns one marker per observation in year order. Years listed in
// highlights take the highlight's color and label; highlight years with no
// observation produce nothing.
func Markers(s massbalance.Series, highlights []Highlight, style Style) []Marker {
	byYear := make(map[int]Highlight, len(highlights))
	for _, h := range highlights {
		byYear[h.Year] = h
	}

	markers := make([]Marker, len(s))
	for i, o := range s {
		if h, ok := byYear[o.Year]; ok {
			markers[i] = Marker{Year: o.Year, Value: o.Value, Color: h.Color, Width: style.HighlightWidth, Label: h.Label}
			continue
		}
		markers[i] = Marker{Year: o.Year, Value: o.Value, Color: black, Width: style.BackgroundWidth}
	}
	return markers
}

// DensityCurve evaluates the density of d at n evenly spaced points on [-bound, bound]
func DensityCurve(d gev.Dist, bound float64, n int) plotter.XYs {
	xs := make([]float64, n)
	floats.Span(xs, -bound, bound)

	xys := make(plotter.XYs, n)
	for i, x := range xs {
		xys[i].X = x
		xys[i].Y = d.PDF(x)
	}
	return xys
}

// QuantileTable resolves each level through the inverse CDF of d, keeping order
func QuantileTable(d gev.Dist, levels []QuantileLevel) []Quantile {
	out := make([]Quantile, len(levels))
	for i, l := range levels {
		out[i] = Quantile{QuantileLevel: l, Value: d.Quantile(l.Probability)}
	}
	return out
}

// Annotation returns the sample size and year range text
func Annotation(s massbalance.Series) string {
	return fmt.Sprintf("n=%d years:\n%d-%d", len(s), s.FirstYear(), s.LastYear())
}

// MissingGlyphs returns the characters of s, other than line breaks, that
// have no glyph in the font of sty
func MissingGlyphs(sty text.Style, s string) []rune {
	face := sty.Handler.Cache().Lookup(sty.Font, sty.Font.Size)
	if face.Face == nil {
		return nil
	}

	var missing []rune
	for _, r := range s {
		if r == '\n' || slices.Contains(missing, r) {
			continue
		}
		if idx, err := face.Face.GlyphIndex(nil, r); err != nil || idx == 0 {
			missing = append(missing, r)
		}
	}
	return missing
}

// XTicks returns integer major ticks over [-int(bound), int(bound)] and
// unlabelled minor ticks every 0.1 over one unit more on each side
func XTicks(bound float64) []plot.Tick {
	n := int(bound)

	var ticks []plot.Tick
	for i := -n; i <= n; i++ {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: strconv.Itoa(i)})
	}
	for k := -10 * (n + 1); k <= 10*(n+1); k++ {
		if k%10 == 0 {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: float64(k) / 10})
	}
	return ticks
}

// Build draws the figure onto a new plot. The returned plot is independent
// of any other figure.
func Build(in Input) (*Figure, error) {
	if len(in.Series) == 0 {
		return nil, massbalance.ErrEmptySeries
	}
	style := in.Style
	if style == (Style{}) {
		style = DefaultStyle
	}

	bound := in.Series.SymmetricBound(in.Margin)
	if !(bound > 0) {
		return nil, errors.New("figure: all observations are zero, axis range is empty")
	}

	curve := DensityCurve(in.Dist, bound, CurvePoints)
	yMax := floats.Max(curveYs(curve))
	if !(yMax > 0) {
		yMax = 1
	}
	top := yMax * 1.01

	quantiles := QuantileTable(in.Dist, in.Quantiles)
	markers := Markers(in.Series, in.Highlights, style)

	p := plot.New()

	for _, m := range markers {
		l, err := plotter.NewLine(plotter.XYs{{X: m.Value, Y: 0}, {X: m.Value, Y: top}})
		if err != nil {
			return nil, fmt.Errorf("failed to draw %d: %w", m.Year, err)
		}
		l.LineStyle.Color = m.Color
		l.LineStyle.Width = m.Width
		p.Add(l)
		if m.Label != "" {
			p.Legend.Add(m.Label, l)
		}
	}

	density, err := plotter.NewLine(curve)
	if err != nil {
		return nil, fmt.Errorf("failed to draw density curve: %w", err)
	}
	density.LineStyle.Color = black
	density.LineStyle.Width = style.CurveWidth
	p.Add(density)

	annotation := Annotation(in.Series)
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: -bound + 2*bound*style.AnnotationX, Y: top * style.AnnotationY}},
		Labels: []string{annotation},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to draw annotation: %w", err)
	}
	labels.TextStyle[0].Font.Size = style.AnnotationSize
	p.Add(labels)

	// Ranges are pinned after adding plotters, which widen them to their data
	p.X.Min, p.X.Max = -bound, bound
	p.Y.Min, p.Y.Max = 0, top

	p.X.Label.Text = in.XLabel
	p.X.Label.TextStyle.Font.Size = style.AxisLabelSize
	p.X.Tick.Marker = plot.ConstantTicks(XTicks(bound))
	p.X.Tick.Label.Font.Size = style.TickLabelSize
	p.X.Tick.LineStyle.Width = style.TickWidth
	p.X.LineStyle.Width = style.TickWidth

	p.HideY()

	ticks := make([]plot.Tick, len(quantiles))
	for i, q := range quantiles {
		ticks[i] = plot.Tick{Value: q.Value, Label: q.Label}
	}
	axis := newQuantileAxis(p, ticks, style)
	p.Add(axis)

	// The legend is laid out against the top of the whole plot, so it is
	// moved below the quantile axis into the data area
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = style.LegendSize
	p.Legend.YOffs = -(axis.headroom(p) + style.LegendInset)
	p.Legend.XOffs = -style.LegendInset

	missing := MissingGlyphs(p.X.Label.TextStyle, in.XLabel)
	missing = append(missing, MissingGlyphs(labels.TextStyle[0], annotation)...)
	for _, m := range markers {
		missing = append(missing, MissingGlyphs(p.Legend.TextStyle, m.Label)...)
	}
	for _, t := range ticks {
		missing = append(missing, MissingGlyphs(axis.label, t.Label)...)
	}
	slices.Sort(missing)

	return &Figure{
		Plot:          p,
		Bound:         bound,
		Curve:         curve,
		Quantiles:     quantiles,
		Markers:       markers,
		Annotation:    annotation,
		MissingGlyphs: slices.Compact(missing),
	}, nil
}

func curveYs(xys plotter.XYs) []float64 {
	ys := make([]float64, len(xys))
	for i, xy := range xys {
		ys[i] = xy.Y
	}
	return ys
}
