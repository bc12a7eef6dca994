package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds process settings read from the environment.
type Env struct {
	Addr         string        `env:"WIL_ADDR" envDefault:":42069"`
	DataDir      string        `env:"WIL_DATA_DIR" envDefault:"data"`
	Storage      string        `env:"WIL_STORAGE" envDefault:"file"`
	CatalogPath  string        `env:"WIL_CATALOG"`
	Difficulty   string        `env:"WIL_DIFFICULTY" envDefault:"normal"`
	Autosave     bool          `env:"WIL_AUTOSAVE" envDefault:"true"`
	TickInterval time.Duration `env:"WIL_TICK_INTERVAL" envDefault:"1s"`
	PlayerID     string        `env:"WIL_PLAYER_ID"`
}

// FromEnv loads process settings from environment variables
func FromEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	switch e.Storage {
	case "file", "sqlite", "memory":
	default:
		return Env{}, fmt.Errorf("parse env: unsupported WIL_STORAGE %q", e.Storage)
	}
	return e, nil
}
