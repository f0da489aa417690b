// Package app wires configuration, input parsing, distribution fitting and
// figure rendering into the mbdist run loop.
package app

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/chrissnell/mbdist/internal/figure"
	"github.com/chrissnell/mbdist/internal/massbalance"
	"github.com/chrissnell/mbdist/pkg/config"
	"github.com/chrissnell/mbdist/pkg/gev"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

// Options are command-line overrides. They take precedence over both the
// configuration and the environment.
type Options struct {
	Figure    string // Render only this figure, all when empty
	Input     string
	OutputDir string
}

// Result describes one rendered figure
type Result struct {
	Figure    string
	Fit       *gev.FitResult
	Quantiles []figure.Quantile
	Paths     []string
}

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
	opts           Options
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger, opts Options) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &App{
		configProvider: configProvider,
		logger:         logger,
		opts:           opts,
	}
}

// Run renders every selected figure in order and stops at the first error
func (a *App) Run(ctx context.Context) error {
	_, err := a.Render(ctx)
	return err
}

// Render is Run that also returns what was rendered
func (a *App) Render(ctx context.Context) ([]Result, error) {
	figures, err := a.figures()
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, f := range figures {
		if err := ctx.Err(); err != nil {
			a.logger.Info("context cancelled, stopping before next figure")
			return results, err
		}

		res, err := a.RenderFigure(f)
		if err != nil {
			return results, fmt.Errorf("figure %s: %w", f.Name, err)
		}
		results = append(results, *res)
	}

	a.logger.Infof("rendered %d figure(s)", len(results))
	return results, nil
}

// figures loads the configuration, applies the environment and command-line
// overrides, validates it and returns the selected figures
func (a *App) figures() ([]config.FigureData, error) {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	envOverrides, err := config.LoadEnvOverrides()
	if err != nil {
		return nil, err
	}
	envOverrides.Apply(cfg)
	config.EnvOverrides{Input: a.opts.Input, OutputDir: a.opts.OutputDir}.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if a.opts.Figure == "" {
		return cfg.Figures, nil
	}
	for _, f := range cfg.Figures {
		if f.Name == a.opts.Figure {
			return []config.FigureData{f}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", config.ErrFigureNotFound, a.opts.Figure)
}

// RenderFigure reads, fits and draws a single validated figure definition
func (a *App) RenderFigure(f config.FigureData) (*Result, error) {
	logger := a.logger.With("figure", f.Name, "glacier", f.Glacier)

	opts, err := readOptions(f.Input)
	if err != nil {
		return nil, err
	}
	series, err := massbalance.LoadFile(f.Input.Path, opts)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: %w", f.Input.Path, massbalance.ErrEmptySeries)
	}
	logger.Infow("loaded mass balance series",
		"path", f.Input.Path,
		"years", len(series),
		"first", series.FirstYear(),
		"last", series.LastYear())

	highlights, err := highlights(f.Highlights)
	if err != nil {
		return nil, err
	}
	years := make([]int, len(f.Highlights))
	for i, h := range f.Highlights {
		years[i] = h.Year
	}
	found, _ := series.Partition(years)
	if len(found) < len(years) {
		logger.Warnw("some highlighted years are not in the series",
			"highlighted", years,
			"present", found.Years())
	}
	for _, h := range highlights {
		if v, ok := series.Lookup(h.Year); ok {
			logger.Infow("highlighted year", "year", h.Year, "label", h.Label, "value", v)
		}
	}

	fit, err := gev.FitWithSettings(series.Values(), gev.DefaultFitSettings)
	if err != nil {
		return nil, err
	}
	logger.Infow("fitted GEV distribution",
		"shape", fit.Dist.Shape,
		"loc", fit.Dist.Loc,
		"scale", fit.Dist.Scale,
		"loglik", fit.LogLikelihood,
		"iterations", fit.Iterations)

	fig, err := figure.Build(figure.Input{
		Series:     series,
		Dist:       fit.Dist,
		Highlights: highlights,
		Quantiles:  quantileLevels(f.Quantiles),
		Margin:     f.Margin,
		XLabel:     f.XLabel,
	})
	if err != nil {
		return nil, err
	}
	if len(fig.MissingGlyphs) > 0 {
		logger.Warnw("label characters have no glyph in the plot font", "characters", string(fig.MissingGlyphs))
	}
	for _, q := range fig.Quantiles {
		logger.Debugw("quantile", "label", q.Label, "probability", q.Probability, "value", q.Value)
	}

	width := vg.Length(f.Output.WidthIn) * vg.Inch
	height := vg.Length(f.Output.HeightIn) * vg.Inch
	paths, err := figure.Save(fig.Plot, width, height, f.Output.Dir, f.Output.Basename, f.Output.Formats)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		logger.Infof("wrote %s", p)
	}

	return &Result{
		Figure:    f.Name,
		Fit:       fit,
		Quantiles: fig.Quantiles,
		Paths:     paths,
	}, nil
}

func readOptions(in config.InputData) (massbalance.ReadOptions, error) {
	delim, size := utf8.DecodeRuneInString(in.Delimiter)
	if size == 0 || size != len(in.Delimiter) {
		return massbalance.ReadOptions{}, fmt.Errorf("invalid delimiter %q", in.Delimiter)
	}
	return massbalance.ReadOptions{
		Delimiter:   delim,
		YearColumn:  in.YearColumn,
		ValueColumn: in.ValueColumn,
		Divisor:     in.Divisor,
		Encoding:    in.Encoding,
	}, nil
}

func highlights(hs []config.HighlightData) ([]figure.Highlight, error) {
	out := make([]figure.Highlight, len(hs))
	for i, h := range hs {
		c, err := h.RGBA()
		if err != nil {
			return nil, fmt.Errorf("highlight %d: %w", h.Year, err)
		}
		out[i] = figure.Highlight{Year: h.Year, Color: c, Label: h.Label()}
	}
	return out, nil
}

func quantileLevels(qs []config.QuantileData) []figure.QuantileLevel {
	out := make([]figure.QuantileLevel, len(qs))
	for i, q := range qs {
		out[i] = figure.QuantileLevel{Probability: q.Probability, Label: q.Label}
	}
	return out
}
