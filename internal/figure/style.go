package figure

import (
	"image/color"

	"gonum.org/v1/plot/vg"
)

// Style holds the line widths, font sizes and placements of a figure
type Style struct {
	HighlightWidth  vg.Length
	BackgroundWidth vg.Length
	CurveWidth      vg.Length

	TickLabelSize     vg.Length
	TickWidth         vg.Length
	AxisLabelSize     vg.Length
	LegendSize        vg.Length
	AnnotationSize    vg.Length
	QuantileLabelSize vg.Length
	QuantileTickLen   vg.Length
	QuantileTickWidth vg.Length

	// Gap between the legend and the top and right edges of the data area
	LegendInset vg.Length

	// Annotation position as a fraction of the data area
	AnnotationX float64
	AnnotationY float64
}

// DefaultStyle matches the published figure
var DefaultStyle = Style{
	HighlightWidth:  vg.Points(5),
	BackgroundWidth: vg.Points(0.5),
	CurveWidth:      vg.Points(4),

	TickLabelSize:     vg.Points(22),
	TickWidth:         vg.Points(2),
	AxisLabelSize:     vg.Points(24),
	LegendSize:        vg.Points(20),
	AnnotationSize:    vg.Points(20),
	QuantileLabelSize: vg.Points(14),
	QuantileTickLen:   vg.Points(7),
	QuantileTickWidth: vg.Points(2),

	LegendInset: vg.Points(6),

	AnnotationX: 0.77,
	AnnotationY: 0.5,
}

var black = color.Black
