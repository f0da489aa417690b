package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Defaults reproduce the Hintereisferner figure
const (
	DefaultName          = "hef"
	DefaultGlacier       = "Hintereisferner"
	DefaultVersion       = "tc"
	DefaultInputPath     = "spec_mb_hef_kwf_oct2022.csv"
	DefaultDelimiter     = ";"
	DefaultYearColumn    = "calender year"
	DefaultValueColumn   = "HEF mass balance"
	DefaultDivisor       = 1000.0
	DefaultMargin        = 1.1
	DefaultXLabel        = "mass balance (10³ kg/m²)"
	DefaultLabelTemplate = "{prev}/{yy}"
	DefaultWidthIn       = 10.0
	DefaultHeightIn      = 6.0
)

// DefaultFormats are the two vector encodings written for every figure
var DefaultFormats = []string{"svg", "pdf"}

// DefaultHighlights marks the three most recent hydrological years with the
// seaborn "colorblind" palette entries 0, 2 and 3
func DefaultHighlights() []HighlightData {
	return []HighlightData{
		{Year: 2020, Color: "#0173b2", LabelTemplate: DefaultLabelTemplate},
		{Year: 2021, Color: "#029e73", LabelTemplate: DefaultLabelTemplate},
		{Year: 2022, Color: "#d55e00", LabelTemplate: DefaultLabelTemplate},
	}
}

// DefaultQuantiles are the annotated probability levels in ascending order
func DefaultQuantiles() []QuantileData {
	return []QuantileData{
		{Probability: 0.001, Label: "0.1%"},
		{Probability: 0.01, Label: "1%"},
		{Probability: 0.1, Label: "10%"},
		{Probability: 0.5, Label: "median"},
		{Probability: 0.9, Label: "90%"},
		{Probability: 0.99, Label: "99%"},
		{Probability: 0.999, Label: "99.9%"},
	}
}

// DefaultFigure returns the built-in Hintereisferner figure definition
func DefaultFigure() FigureData {
	f := FigureData{}
	ApplyDefaults(&f)
	return f
}

// Default returns a configuration holding only the built-in figure
func Default() *ConfigData {
	return &ConfigData{Figures: []FigureData{DefaultFigure()}}
}

// ApplyDefaults fills every unset field of f with its default value
func ApplyDefaults(f *FigureData) {
	if f.Name == "" {
		f.Name = DefaultName
	}
	if f.Glacier == "" {
		f.Glacier = DefaultGlacier
	}
	if f.Version == "" {
		f.Version = DefaultVersion
	}
	if f.Input.Path == "" {
		f.Input.Path = DefaultInputPath
	}
	if f.Input.Delimiter == "" {
		f.Input.Delimiter = DefaultDelimiter
	}
	if f.Input.YearColumn == "" {
		f.Input.YearColumn = DefaultYearColumn
	}
	if f.Input.ValueColumn == "" {
		f.Input.ValueColumn = DefaultValueColumn
	}
	if f.Input.Divisor == 0 {
		f.Input.Divisor = DefaultDivisor
	}
	if f.Highlights == nil {
		f.Highlights = DefaultHighlights()
	}
	for i := range f.Highlights {
		if f.Highlights[i].LabelTemplate == "" {
			f.Highlights[i].LabelTemplate = DefaultLabelTemplate
		}
	}
	if f.Quantiles == nil {
		f.Quantiles = DefaultQuantiles()
	}
	if f.Margin == 0 {
		f.Margin = DefaultMargin
	}
	if f.XLabel == "" {
		f.XLabel = DefaultXLabel
	}
	if f.Output.Basename == "" {
		f.Output.Basename = fmt.Sprintf("fig_1_%s_mb_distributions_%s_gev", f.Name, f.Version)
	}
	if len(f.Output.Formats) == 0 {
		f.Output.Formats = append([]string(nil), DefaultFormats...)
	}
	if f.Output.WidthIn == 0 {
		f.Output.WidthIn = DefaultWidthIn
	}
	if f.Output.HeightIn == 0 {
		f.Output.HeightIn = DefaultHeightIn
	}
}

// Label expands the highlight's legend template, e.g. "{prev}/{yy}" -> "2021/22"
func (h HighlightData) Label() string {
	tmpl := h.LabelTemplate
	if tmpl == "" {
		tmpl = DefaultLabelTemplate
	}
	r := strings.NewReplacer(
		"{year}", strconv.Itoa(h.Year),
		"{prev}", strconv.Itoa(h.Year-1),
		"{yy}", fmt.Sprintf("%02d", h.Year%100),
	)
	return r.Replace(tmpl)
}

// RGBA parses the highlight color
func (h HighlightData) RGBA() (color.RGBA, error) {
	return ParseHexColor(h.Color)
}

// ParseHexColor parses "#rrggbb" or "#rgb" into an opaque color
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
