package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrissnell/mbdist/internal/massbalance"
	"github.com/chrissnell/mbdist/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// writeSeries writes a 1952-2022 semicolon file in mm w.e. with a few
// incomplete rows mixed in
func writeSeries(t *testing.T) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("calender year;HEF mass balance (mm w.e.);KWF mass balance (mm w.e.)\n")
	for y := 1952; y <= 2022; y++ {
		k := float64(y - 1952)
		v := -500 + 800*math.Sin(0.7*k) - 10*k
		switch y {
		case 2020:
			v = -1900
		case 2021:
			v = -1300
		case 2022:
			v = -3300
		}
		fmt.Fprintf(&b, "%d;%.0f;%.0f\n", y, v, v/2)
	}
	b.WriteString("2023;;-100\n")
	b.WriteString("1951;NaN;-50\n")

	path := filepath.Join(t.TempDir(), "mb.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig(input, outputDir string) *config.ConfigData {
	cfg := config.Default()
	cfg.Figures[0].Input.Path = input
	cfg.Figures[0].Output.Dir = outputDir
	return cfg
}

func TestRunWritesSVGAndPDF(t *testing.T) {
	input := writeSeries(t)
	out := t.TempDir()

	a := New(config.NewMemoryProvider(testConfig(input, out)), nil, Options{})
	results, err := a.Render(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "hef", res.Figure)
	assert.Equal(t, []string{
		filepath.Join(out, "fig_1_hef_mb_distributions_tc_gev.svg"),
		filepath.Join(out, "fig_1_hef_mb_distributions_tc_gev.pdf"),
	}, res.Paths)
	for _, p := range res.Paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	require.Len(t, res.Quantiles, 7)
	assert.Equal(t, "median", res.Quantiles[3].Label)
	assert.Positive(t, res.Fit.Dist.Scale)
}

func TestRunRendersEveryFigure(t *testing.T) {
	input := writeSeries(t)
	out := t.TempDir()

	kwf := config.FigureData{
		Name:    "kwf",
		Glacier: "Kesselwandferner",
		Input: config.InputData{
			Path:        input,
			ValueColumn: "KWF mass balance",
		},
		Output: config.OutputData{Dir: out, Formats: []string{"svg"}},
	}
	config.ApplyDefaults(&kwf)

	cfg := testConfig(input, out)
	cfg.Figures = append(cfg.Figures, kwf)

	results, err := New(config.NewMemoryProvider(cfg), nil, Options{}).Render(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{filepath.Join(out, "fig_1_kwf_mb_distributions_tc_gev.svg")}, results[1].Paths)

	results, err = New(config.NewMemoryProvider(cfg), nil, Options{Figure: "kwf"}).Render(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kwf", results[0].Figure)
}

func TestOptionsOverrideConfigAndEnvironment(t *testing.T) {
	input := writeSeries(t)
	envOut := t.TempDir()
	flagOut := t.TempDir()

	t.Setenv("MBDIST_INPUT", filepath.Join(t.TempDir(), "missing.csv"))
	t.Setenv("MBDIST_OUTPUT_DIR", envOut)

	cfg := testConfig("also-missing.csv", "")
	a := New(config.NewMemoryProvider(cfg), nil, Options{Input: input, OutputDir: flagOut})
	require.NoError(t, a.Run(context.Background()))

	_, err := os.Stat(filepath.Join(flagOut, "fig_1_hef_mb_distributions_tc_gev.pdf"))
	assert.NoError(t, err)
	entries, err := os.ReadDir(envOut)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnvironmentOverridesConfig(t *testing.T) {
	input := writeSeries(t)
	out := t.TempDir()

	t.Setenv("MBDIST_INPUT", input)
	t.Setenv("MBDIST_OUTPUT_DIR", out)

	require.NoError(t, New(config.NewMemoryProvider(testConfig("missing.csv", "")), nil, Options{}).Run(context.Background()))

	_, err := os.Stat(filepath.Join(out, "fig_1_hef_mb_distributions_tc_gev.svg"))
	assert.NoError(t, err)
}

func TestRunErrors(t *testing.T) {
	input := writeSeries(t)

	tests := []struct {
		name   string
		modify func(*config.ConfigData)
		opts   Options
		is     error
	}{
		{
			name: "unknown figure",
			opts: Options{Figure: "gepatschferner"},
			is:   config.ErrFigureNotFound,
		},
		{
			name:   "unknown column",
			modify: func(c *config.ConfigData) { c.Figures[0].Input.ValueColumn = "GPF mass balance" },
			is:     massbalance.ErrColumnNotFound,
		},
		{
			name: "quantiles out of order",
			modify: func(c *config.ConfigData) {
				c.Figures[0].Quantiles = []config.QuantileData{{Probability: 0.9, Label: "90%"}, {Probability: 0.1, Label: "10%"}}
			},
			is: config.ErrInvalidQuantiles,
		},
		{
			name:   "missing input",
			modify: func(c *config.ConfigData) { c.Figures[0].Input.Path = filepath.Join(t.TempDir(), "nope.csv") },
			is:     os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			cfg := testConfig(input, out)
			if tt.modify != nil {
				tt.modify(cfg)
			}

			err := New(config.NewMemoryProvider(cfg), nil, tt.opts).Run(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)

			entries, err := os.ReadDir(out)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestEmptySeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("calender year;HEF mass balance\n2022;\n"), 0o644))

	err := New(config.NewMemoryProvider(testConfig(path, t.TempDir())), nil, Options{}).Run(context.Background())
	assert.True(t, errors.Is(err, massbalance.ErrEmptySeries), "got %v", err)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	out := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(config.NewMemoryProvider(testConfig(writeSeries(t), out)), nil, Options{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMissingHighlightYearIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := testConfig(writeSeries(t), t.TempDir())
	cfg.Figures[0].Highlights = append(cfg.Figures[0].Highlights, config.HighlightData{Year: 1900, Color: "#000", LabelTemplate: "{prev}/{yy}"})

	require.NoError(t, New(config.NewMemoryProvider(cfg), zap.New(core).Sugar(), Options{}).Run(context.Background()))

	assert.Equal(t, 1, logs.FilterMessage("some highlighted years are not in the series").Len())
	assert.Equal(t, 1, logs.FilterMessage("fitted GEV distribution").Len())
	assert.Zero(t, logs.FilterMessage("label characters have no glyph in the plot font").Len())

	years := logs.FilterMessage("highlighted year").All()
	require.Len(t, years, 3)
	last := years[2].ContextMap()
	assert.EqualValues(t, 2022, last["year"])
	assert.Equal(t, "2021/22", last["label"])
	assert.InDelta(t, -3.3, last["value"], 1e-12)
}
