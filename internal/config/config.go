package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"

	"gopkg.in/yaml.v3"
)

//go:embed default.yml
var defaultYAML []byte

type Config struct {
	Version         string  `yaml:"version" json:"version"`
	Balance         Balance `yaml:"balance" json:"balance"`
	catalog.Catalog `yaml:",inline" json:"catalog"`
}

func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	c.Balance.ApplyDefaults()
	if c.Shop.RotationIntervalSeconds <= 0 {
		c.Shop.RotationIntervalSeconds = 3600
	}
	if c.LevelRewards == nil {
		c.LevelRewards = map[int]catalog.Reward{}
	}
}

// Parse decodes a YAML document, applies defaults and validates the catalog.
func Parse(b []byte) (*Config, error) {
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	r.ApplyDefaults()
	if err := r.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return &r, nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Default returns the embedded catalog.
func Default() *Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded config is invalid: %v", err))
	}
	return cfg
}

// LoadOrDefault reads path when set and falls back to the embedded catalog otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
