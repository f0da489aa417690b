package figure

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// quantileAxis draws a secondary x axis along the top edge of the data area.
// It shares the primary axis scale and places labelled ticks at fixed values.
type quantileAxis struct {
	ticks      []plot.Tick
	line       draw.LineStyle
	tickLength vg.Length
	labelPad   vg.Length
	label      text.Style
}

func newQuantileAxis(p *plot.Plot, ticks []plot.Tick, style Style) *quantileAxis {
	label := p.X.Tick.Label
	label.Font.Size = style.QuantileLabelSize
	label.XAlign = text.XCenter
	label.YAlign = text.YBottom

	line := p.X.LineStyle
	line.Width = style.QuantileTickWidth

	return &quantileAxis{
		ticks:      ticks,
		line:       line,
		tickLength: style.QuantileTickLen,
		labelPad:   vg.Points(2),
		label:      label,
	}
}

// visible returns the ticks that fall inside the current x range
func (a *quantileAxis) visible(p *plot.Plot) []plot.Tick {
	var out []plot.Tick
	for _, t := range a.ticks {
		if t.Value >= p.X.Min && t.Value <= p.X.Max {
			out = append(out, t)
		}
	}
	return out
}

// Plot implements the plot.Plotter interface
func (a *quantileAxis) Plot(c draw.Canvas, p *plot.Plot) {
	trX, _ := p.Transforms(&c)
	top := c.Max.Y

	c.StrokeLine2(a.line, c.Min.X, top, c.Max.X, top)
	for _, t := range a.visible(p) {
		x := trX(t.Value)
		c.StrokeLine2(a.line, x, top, x, top+a.tickLength)
		if t.Label != "" {
			c.FillText(a.label, vg.Point{X: x, Y: top + a.tickLength + a.labelPad}, t.Label)
		}
	}
}

// GlyphBoxes implements the plot.GlyphBoxer interface so that the plot
// reserves room above the data area for the tick labels
func (a *quantileAxis) GlyphBoxes(p *plot.Plot) []plot.GlyphBox {
	// Anchor at the bottom edge so the plot always has a lower reference box
	boxes := []plot.GlyphBox{{X: 0.5, Y: 0}}

	offset := vg.Point{Y: a.tickLength + a.labelPad}
	for _, t := range a.visible(p) {
		r := vg.Rectangle{Max: vg.Point{Y: a.tickLength}}
		if t.Label != "" {
			r = a.label.Rectangle(t.Label).Add(offset)
		}
		boxes = append(boxes, plot.GlyphBox{
			X:         p.X.Norm(t.Value),
			Y:         1,
			Rectangle: r,
		})
	}
	return boxes
}

// headroom is the height the axis reserves above the data area
func (a *quantileAxis) headroom(p *plot.Plot) vg.Length {
	var h vg.Length
	for _, b := range a.GlyphBoxes(p) {
		if b.Y == 1 && b.Max.Y > h {
			h = b.Max.Y
		}
	}
	return h
}
