package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides are settings taken from the environment. They apply to every
// configured figure.
type EnvOverrides struct {
	Input     string `env:"MBDIST_INPUT"`
	OutputDir string `env:"MBDIST_OUTPUT_DIR"`
}

// LoadEnvOverrides reads the MBDIST_* environment variables
func LoadEnvOverrides() (EnvOverrides, error) {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return EnvOverrides{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return o, nil
}

// Apply sets the non-empty overrides on every figure
func (o EnvOverrides) Apply(config *ConfigData) {
	for i := range config.Figures {
		if o.Input != "" {
			config.Figures[i].Input.Path = o.Input
		}
		if o.OutputDir != "" {
			config.Figures[i].Output.Dir = o.OutputDir
		}
	}
}
