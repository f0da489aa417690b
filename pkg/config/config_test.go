package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoGlacierYAML = `
figures:
  - name: hef
    glacier: Hintereisferner
    input:
      path: spec_mb_hef_kwf_oct2022.csv
      value_column: HEF mass balance
  - name: kwf
    glacier: Kesselwandferner
    version: tc
    input:
      path: spec_mb_hef_kwf_oct2022.csv
      value_column: KWF mass balance
      encoding: latin1
    highlights:
      - year: 2022
        color: "#d55e00"
        label_template: "{year}"
    quantiles:
      - probability: 0.05
        label: "5%"
      - probability: 0.95
        label: "95%"
    margin: 1.25
    output:
      dir: out
      formats: [svg]
`

func TestDefaultFigure(t *testing.T) {
	f := DefaultFigure()

	assert.Equal(t, "hef", f.Name)
	assert.Equal(t, "Hintereisferner", f.Glacier)
	assert.Equal(t, "fig_1_hef_mb_distributions_tc_gev", f.Output.Basename)
	assert.Equal(t, []string{"svg", "pdf"}, f.Output.Formats)
	assert.Equal(t, 1.1, f.Margin)
	assert.Equal(t, 1000.0, f.Input.Divisor)
	assert.Equal(t, ";", f.Input.Delimiter)
	require.Len(t, f.Highlights, 3)
	require.Len(t, f.Quantiles, 7)
	assert.Equal(t, QuantileData{Probability: 0.5, Label: "median"}, f.Quantiles[3])
	require.NoError(t, f.Validate())

	// Defaults must not share backing arrays between figures
	g := DefaultFigure()
	g.Output.Formats[0] = "eps"
	assert.Equal(t, "svg", DefaultFigure().Output.Formats[0])
}

func TestParseYAML(t *testing.T) {
	cfg, err := ParseYAML([]byte(twoGlacierYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Figures, 2)

	hef := cfg.Figures[0]
	assert.Equal(t, DefaultHighlights(), hef.Highlights)
	assert.Equal(t, DefaultQuantiles(), hef.Quantiles)
	assert.Equal(t, "calender year", hef.Input.YearColumn)

	kwf := cfg.Figures[1]
	assert.Equal(t, "KWF mass balance", kwf.Input.ValueColumn)
	assert.Equal(t, "latin1", kwf.Input.Encoding)
	assert.Equal(t, []HighlightData{{Year: 2022, Color: "#d55e00", LabelTemplate: "{year}"}}, kwf.Highlights)
	assert.Equal(t, []QuantileData{{0.05, "5%"}, {0.95, "95%"}}, kwf.Quantiles)
	assert.Equal(t, 1.25, kwf.Margin)
	assert.Equal(t, "out", kwf.Output.Dir)
	assert.Equal(t, []string{"svg"}, kwf.Output.Formats)
	assert.Equal(t, "fig_1_kwf_mb_distributions_tc_gev", kwf.Output.Basename)
}

func TestParseYAMLRoundTrip(t *testing.T) {
	cfg, err := ParseYAML([]byte(twoGlacierYAML))
	require.NoError(t, err)

	out, err := MarshalYAML(cfg)
	require.NoError(t, err)

	again, err := ParseYAML(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestMarshalYAMLKeepsEmptyLists(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
figures:
  - name: hef
    input:
      path: mb.csv
    highlights: []
    quantiles: []
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Figures[0].Highlights)
	assert.Empty(t, cfg.Figures[0].Highlights)

	out, err := MarshalYAML(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "highlights: []")

	again, err := ParseYAML(out)
	require.NoError(t, err)
	assert.Empty(t, again.Figures[0].Highlights)
	assert.Empty(t, again.Figures[0].Quantiles)
	assert.Equal(t, cfg, again)
}

func TestYAMLProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoGlacierYAML), 0o644))

	p := NewYAMLProvider(path)
	defer p.Close()
	assert.True(t, p.IsReadOnly())

	f, err := p.GetFigure("kwf")
	require.NoError(t, err)
	assert.Equal(t, "Kesselwandferner", f.Glacier)

	_, err = p.GetFigure("nig")
	assert.True(t, errors.Is(err, ErrFigureNotFound))

	_, err = NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestHighlightLabel(t *testing.T) {
	tests := []struct {
		highlight HighlightData
		expected  string
	}{
		{HighlightData{Year: 2022}, "2021/22"},
		{HighlightData{Year: 2000, LabelTemplate: "{prev}/{yy}"}, "1999/00"},
		{HighlightData{Year: 2005, LabelTemplate: "{year}"}, "2005"},
		{HighlightData{Year: 2005, LabelTemplate: "HY {prev}-{year}"}, "HY 2004-2005"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.highlight.Label())
		})
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#d55e00")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xd5, G: 0x5e, B: 0x00, A: 0xff}, c)

	c, err = ParseHexColor("fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)

	_, err = ParseHexColor("#12345")
	assert.Error(t, err)
	_, err = ParseHexColor("#zzzzzz")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *FigureData)
		errMsg string
	}{
		{
			name:   "bad color",
			mutate: func(f *FigureData) { f.Highlights[0].Color = "blue" },
			errMsg: "invalid color",
		},
		{
			name:   "duplicate highlight",
			mutate: func(f *FigureData) { f.Highlights[1].Year = f.Highlights[0].Year },
			errMsg: "listed twice",
		},
		{
			name:   "margin below one",
			mutate: func(f *FigureData) { f.Margin = 0.9 },
			errMsg: "margin",
		},
		{
			name:   "multi-character delimiter",
			mutate: func(f *FigureData) { f.Input.Delimiter = ";;" },
			errMsg: "delimiter",
		},
		{
			name:   "unsupported format",
			mutate: func(f *FigureData) { f.Output.Formats = []string{"svg", "gif"} },
			errMsg: "unsupported output format",
		},
		{
			name:   "quantiles out of order",
			mutate: func(f *FigureData) { f.Quantiles[0], f.Quantiles[1] = f.Quantiles[1], f.Quantiles[0] },
			errMsg: "invalid quantile levels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFigure()
			tt.mutate(&f)
			err := f.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateQuantiles(t *testing.T) {
	require.NoError(t, ValidateQuantiles(DefaultQuantiles()))
	require.NoError(t, ValidateQuantiles(nil))

	bad := [][]QuantileData{
		{{0, "0%"}},
		{{1, "100%"}},
		{{0.5, ""}},
		{{0.5, "median"}, {0.5, "median again"}},
	}
	for _, qs := range bad {
		err := ValidateQuantiles(qs)
		assert.True(t, errors.Is(err, ErrInvalidQuantiles), "%v", qs)
	}
}

func TestConfigValidateDuplicateNames(t *testing.T) {
	cfg := &ConfigData{Figures: []FigureData{DefaultFigure(), DefaultFigure()}}
	assert.ErrorContains(t, cfg.Validate(), "duplicate figure name")

	assert.Error(t, (&ConfigData{}).Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MBDIST_INPUT", "/data/hef.csv")
	t.Setenv("MBDIST_OUTPUT_DIR", "/tmp/figs")

	o, err := LoadEnvOverrides()
	require.NoError(t, err)

	cfg := Default()
	o.Apply(cfg)
	assert.Equal(t, "/data/hef.csv", cfg.Figures[0].Input.Path)
	assert.Equal(t, "/tmp/figs", cfg.Figures[0].Output.Dir)
}

func TestEnvOverridesEmptyKeepsConfig(t *testing.T) {
	cfg := Default()
	EnvOverrides{}.Apply(cfg)
	assert.Equal(t, DefaultInputPath, cfg.Figures[0].Input.Path)
	assert.Empty(t, cfg.Figures[0].Output.Dir)
}

func TestMemoryProviderReturnsCopies(t *testing.T) {
	p := NewDefaultProvider()

	figures, err := p.GetFigures()
	require.NoError(t, err)
	figures[0].Highlights[0].Year = 1900

	again, err := p.GetFigure(DefaultName)
	require.NoError(t, err)
	assert.Equal(t, 2020, again.Highlights[0].Year)
}
