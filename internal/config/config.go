package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gwdetect/internal/condense"
	"github.com/san-kum/gwdetect/internal/power"
	"github.com/san-kum/gwdetect/internal/sweep"
)

// Config is the on-disk description of a sweep: calculator settings,
// optional condensed-mode precisions, and the batch itself.
type Config struct {
	Calculator power.Config        `yaml:"calculator"`
	Condensed  condense.Precisions `yaml:"condensed,omitempty"`
	Sweep      sweep.Spec          `yaml:"sweep"`
	Output     string              `yaml:"output,omitempty"`
	LogLevel   string              `yaml:"log_level,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Calculator: power.DefaultConfig(),
		LogLevel:   "info",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
