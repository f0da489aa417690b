package config

import "errors"

// ErrFigureNotFound is returned when a named figure is not configured
var ErrFigureNotFound = errors.New("config: figure not found")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetFigures() ([]FigureData, error)
	GetFigure(name string) (*FigureData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Figures []FigureData `json:"figures"`
}

// FigureData describes one distribution figure: where the observations come
// from, which years are highlighted and which quantiles are annotated
type FigureData struct {
	Name       string          `json:"name"`    // Short glacier identifier used in output names, e.g. "hef"
	Glacier    string          `json:"glacier"` // Display name, e.g. "Hintereisferner"
	Version    string          `json:"version"` // Publication/version tag used in output names
	Input      InputData       `json:"input"`
	Highlights []HighlightData `json:"highlights,omitempty"`
	Quantiles  []QuantileData  `json:"quantiles,omitempty"`
	Margin     float64         `json:"margin,omitempty"` // Axis headroom factor applied to the largest |value|
	XLabel     string          `json:"x_label,omitempty"`
	Output     OutputData      `json:"output"`
}

// InputData describes the delimited mass-balance file
type InputData struct {
	Path        string  `json:"path"`
	Delimiter   string  `json:"delimiter,omitempty"`
	YearColumn  string  `json:"year_column"`
	ValueColumn string  `json:"value_column"`
	Divisor     float64 `json:"divisor,omitempty"`
	Encoding    string  `json:"encoding,omitempty"`
}

// HighlightData binds a year to a display color and legend label template.
// The template understands {year}, {prev} (year-1) and {yy} (last two digits).
type HighlightData struct {
	Year          int    `json:"year"`
	Color         string `json:"color"`
	LabelTemplate string `json:"label_template,omitempty"`
}

// QuantileData pairs a probability level with its axis label
type QuantileData struct {
	Probability float64 `json:"probability"`
	Label       string  `json:"label"`
}

// OutputData controls where and how the figure is written
type OutputData struct {
	Dir      string   `json:"dir,omitempty"`
	Basename string   `json:"basename,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	WidthIn  float64  `json:"width_in,omitempty"`
	HeightIn float64  `json:"height_in,omitempty"`
}
