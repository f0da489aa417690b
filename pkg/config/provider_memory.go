package config

// MemoryProvider implements ConfigProvider over configuration held in memory,
// such as the built-in default figure
type MemoryProvider struct {
	config *ConfigData
}

// NewMemoryProvider wraps an existing configuration
func NewMemoryProvider(config *ConfigData) *MemoryProvider {
	return &MemoryProvider{config: config}
}

// NewDefaultProvider serves the built-in Hintereisferner figure
func NewDefaultProvider() *MemoryProvider {
	return NewMemoryProvider(Default())
}

// LoadConfig returns a copy of the held configuration
func (m *MemoryProvider) LoadConfig() (*ConfigData, error) {
	figures, err := m.GetFigures()
	if err != nil {
		return nil, err
	}
	return &ConfigData{Figures: figures}, nil
}

// GetFigures returns a copy of the held figures
func (m *MemoryProvider) GetFigures() ([]FigureData, error) {
	figures := make([]FigureData, len(m.config.Figures))
	for i, f := range m.config.Figures {
		f.Highlights = append([]HighlightData(nil), f.Highlights...)
		f.Quantiles = append([]QuantileData(nil), f.Quantiles...)
		f.Output.Formats = append([]string(nil), f.Output.Formats...)
		figures[i] = f
	}
	return figures, nil
}

// GetFigure returns the figure with the given name
func (m *MemoryProvider) GetFigure(name string) (*FigureData, error) {
	figures, err := m.GetFigures()
	if err != nil {
		return nil, err
	}
	return findFigure(figures, name)
}

// IsReadOnly returns true
func (m *MemoryProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op
func (m *MemoryProvider) Close() error {
	return nil
}
