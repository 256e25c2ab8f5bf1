package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OutputDir    string `yaml:"output_dir"`
	OutputPrefix string `yaml:"output_prefix"`
	Ratio        string `yaml:"ratio"`
	Tolerance    int    `yaml:"tolerance"`
	Padding      int    `yaml:"padding"`
	Direction    string `yaml:"direction"`
	PDF          struct {
		Size string `yaml:"size"`
		DPI  int    `yaml:"dpi"`
	} `yaml:"pdf"`
	Web struct {
		Addr string `yaml:"addr"`
	} `yaml:"web"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.OutputPrefix == "" {
		c.OutputPrefix = "page"
	}
	if c.Ratio == "" {
		c.Ratio = "16:9"
	}
	if c.Tolerance == 0 {
		c.Tolerance = 5
	}
	if c.Padding == 0 {
		c.Padding = 20
	}
	if c.Direction == "" {
		c.Direction = "horizontal"
	}
	if c.PDF.DPI == 0 {
		c.PDF.DPI = 300
	}
	if c.Web.Addr == "" {
		c.Web.Addr = ":8899"
	}
}
