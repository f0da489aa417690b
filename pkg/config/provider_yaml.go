package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// figureYAML mirrors FigureData with YAML tags. Highlights and quantiles are
// pointers so an absent key (defaults) differs from an empty list (none).
type figureYAML struct {
	Name       string           `yaml:"name"`
	Glacier    string           `yaml:"glacier,omitempty"`
	Version    string           `yaml:"version,omitempty"`
	Input      inputYAML        `yaml:"input"`
	Highlights *[]highlightYAML `yaml:"highlights,omitempty"`
	Quantiles  *[]quantileYAML  `yaml:"quantiles,omitempty"`
	Margin     float64          `yaml:"margin,omitempty"`
	XLabel     string           `yaml:"x_label,omitempty"`
	Output     outputYAML       `yaml:"output,omitempty"`
}

type inputYAML struct {
	Path        string  `yaml:"path"`
	Delimiter   string  `yaml:"delimiter,omitempty"`
	YearColumn  string  `yaml:"year_column,omitempty"`
	ValueColumn string  `yaml:"value_column,omitempty"`
	Divisor     float64 `yaml:"divisor,omitempty"`
	Encoding    string  `yaml:"encoding,omitempty"`
}

type highlightYAML struct {
	Year          int    `yaml:"year"`
	Color         string `yaml:"color"`
	LabelTemplate string `yaml:"label_template,omitempty"`
}

type quantileYAML struct {
	Probability float64 `yaml:"probability"`
	Label       string  `yaml:"label"`
}

type outputYAML struct {
	Dir      string   `yaml:"dir,omitempty"`
	Basename string   `yaml:"basename,omitempty"`
	Formats  []string `yaml:"formats,omitempty"`
	WidthIn  float64  `yaml:"width_in,omitempty"`
	HeightIn float64  `yaml:"height_in,omitempty"`
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}
	return ParseYAML(cfgFile)
}

// ParseYAML decodes a YAML document into configuration data with defaults applied
func ParseYAML(data []byte) (*ConfigData, error) {
	var yamlConfig struct {
		Figures []figureYAML `yaml:"figures"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config := &ConfigData{
		Figures: make([]FigureData, len(yamlConfig.Figures)),
	}

	for i, fig := range yamlConfig.Figures {
		f := FigureData{
			Name:    fig.Name,
			Glacier: fig.Glacier,
			Version: fig.Version,
			Input: InputData{
				Path:        fig.Input.Path,
				Delimiter:   fig.Input.Delimiter,
				YearColumn:  fig.Input.YearColumn,
				ValueColumn: fig.Input.ValueColumn,
				Divisor:     fig.Input.Divisor,
				Encoding:    fig.Input.Encoding,
			},
			Margin: fig.Margin,
			XLabel: fig.XLabel,
			Output: OutputData{
				Dir:      fig.Output.Dir,
				Basename: fig.Output.Basename,
				Formats:  fig.Output.Formats,
				WidthIn:  fig.Output.WidthIn,
				HeightIn: fig.Output.HeightIn,
			},
		}

		if fig.Highlights != nil {
			f.Highlights = make([]HighlightData, len(*fig.Highlights))
			for j, h := range *fig.Highlights {
				f.Highlights[j] = HighlightData{Year: h.Year, Color: h.Color, LabelTemplate: h.LabelTemplate}
			}
		}

		if fig.Quantiles != nil {
			f.Quantiles = make([]QuantileData, len(*fig.Quantiles))
			for j, q := range *fig.Quantiles {
				f.Quantiles[j] = QuantileData{Probability: q.Probability, Label: q.Label}
			}
		}

		ApplyDefaults(&f)
		config.Figures[i] = f
	}

	return config, nil
}

// GetFigures returns all figure definitions
func (y *YAMLProvider) GetFigures() ([]FigureData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.Figures, nil
}

// GetFigure returns the figure with the given name
func (y *YAMLProvider) GetFigure(name string) (*FigureData, error) {
	figures, err := y.GetFigures()
	if err != nil {
		return nil, err
	}
	return findFigure(figures, name)
}

// IsReadOnly returns true since YAML files are treated as read-only
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// MarshalYAML encodes configuration data in the format read by ParseYAML
func MarshalYAML(config *ConfigData) ([]byte, error) {
	out := struct {
		Figures []figureYAML `yaml:"figures"`
	}{Figures: make([]figureYAML, len(config.Figures))}

	for i, f := range config.Figures {
		fy := figureYAML{
			Name:    f.Name,
			Glacier: f.Glacier,
			Version: f.Version,
			Input: inputYAML{
				Path:        f.Input.Path,
				Delimiter:   f.Input.Delimiter,
				YearColumn:  f.Input.YearColumn,
				ValueColumn: f.Input.ValueColumn,
				Divisor:     f.Input.Divisor,
				Encoding:    f.Input.Encoding,
			},
			Margin: f.Margin,
			XLabel: f.XLabel,
			Output: outputYAML(f.Output),
		}
		if f.Highlights != nil {
			hs := make([]highlightYAML, len(f.Highlights))
			for j, h := range f.Highlights {
				hs[j] = highlightYAML(h)
			}
			fy.Highlights = &hs
		}
		if f.Quantiles != nil {
			qs := make([]quantileYAML, len(f.Quantiles))
			for j, q := range f.Quantiles {
				qs[j] = quantileYAML(q)
			}
			fy.Quantiles = &qs
		}
		out.Figures[i] = fy
	}

	return yaml.Marshal(&out)
}

func findFigure(figures []FigureData, name string) (*FigureData, error) {
	for i := range figures {
		if figures[i].Name == name {
			return &figures[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrFigureNotFound, name)
}
