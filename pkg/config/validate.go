package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// ErrInvalidQuantiles is returned when the quantile list is not a strictly
// increasing sequence of probabilities inside (0, 1)
var ErrInvalidQuantiles = errors.New("config: invalid quantile levels")

var supportedFormats = map[string]bool{
	"svg": true,
	"pdf": true,
	"eps": true,
	"png": true,
}

// Validate checks every figure and that figure names are unique
func (c *ConfigData) Validate() error {
	if len(c.Figures) == 0 {
		return errors.New("config: no figures configured")
	}
	seen := make(map[string]bool, len(c.Figures))
	var errs []error
	for i := range c.Figures {
		f := &c.Figures[i]
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("config: duplicate figure name %q", f.Name))
		}
		seen[f.Name] = true
		if err := f.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("figure %q: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks a single figure definition after defaults have been applied
func (f *FigureData) Validate() error {
	var errs []error

	if f.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if f.Input.Path == "" {
		errs = append(errs, errors.New("input path is required"))
	}
	if utf8.RuneCountInString(f.Input.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("delimiter must be a single character, got %q", f.Input.Delimiter))
	}
	if f.Input.YearColumn == "" || f.Input.ValueColumn == "" {
		errs = append(errs, errors.New("year and value columns are required"))
	}
	if f.Input.Divisor == 0 || math.IsNaN(f.Input.Divisor) {
		errs = append(errs, errors.New("divisor must be non-zero"))
	}
	if !(f.Margin >= 1) {
		errs = append(errs, fmt.Errorf("margin must be at least 1, got %v", f.Margin))
	}

	years := make(map[int]bool, len(f.Highlights))
	for _, h := range f.Highlights {
		if years[h.Year] {
			errs = append(errs, fmt.Errorf("highlight year %d listed twice", h.Year))
		}
		years[h.Year] = true
		if _, err := h.RGBA(); err != nil {
			errs = append(errs, fmt.Errorf("highlight %d: %w", h.Year, err))
		}
	}

	if err := ValidateQuantiles(f.Quantiles); err != nil {
		errs = append(errs, err)
	}

	if len(f.Output.Formats) == 0 {
		errs = append(errs, errors.New("at least one output format is required"))
	}
	for _, format := range f.Output.Formats {
		if !supportedFormats[strings.ToLower(format)] {
			errs = append(errs, fmt.Errorf("unsupported output format %q", format))
		}
	}
	if f.Output.WidthIn <= 0 || f.Output.HeightIn <= 0 {
		errs = append(errs, errors.New("output size must be positive"))
	}

	return errors.Join(errs...)
}

// ValidateQuantiles checks that probabilities lie strictly inside (0, 1),
// increase strictly and each carry a label
func ValidateQuantiles(qs []QuantileData) error {
	for i, q := range qs {
		if !(q.Probability > 0 && q.Probability < 1) {
			return fmt.Errorf("%w: probability %v outside (0, 1)", ErrInvalidQuantiles, q.Probability)
		}
		if q.Label == "" {
			return fmt.Errorf("%w: probability %v has no label", ErrInvalidQuantiles, q.Probability)
		}
		if i > 0 && q.Probability <= qs[i-1].Probability {
			return fmt.Errorf("%w: %v does not follow %v", ErrInvalidQuantiles, q.Probability, qs[i-1].Probability)
		}
	}
	return nil
}
