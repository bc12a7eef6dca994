package config

import "strings"

// Balance holds gameplay balance configuration
type Balance struct {
	StartingWallet      int64   `yaml:"starting_wallet" json:"starting_wallet"`
	LevelCap            int     `yaml:"level_cap" json:"level_cap"`
	BaseXPThreshold     int64   `yaml:"base_xp_threshold" json:"base_xp_threshold"`
	ThresholdMultiplier float64 `yaml:"threshold_multiplier" json:"threshold_multiplier"`

	// Per-level currency reward is level * LevelRewardPerLevel.
	LevelRewardPerLevel int64 `yaml:"level_reward_per_level" json:"level_reward_per_level"`

	GardenPlots int `yaml:"garden_plots" json:"garden_plots"`

	XPMultiplier     float64 `yaml:"xp_multiplier" json:"xp_multiplier"`
	PayoutMultiplier float64 `yaml:"payout_multiplier" json:"payout_multiplier"`
}

func (b *Balance) ApplyDefaults() {
	d := DefaultBalance()
	if b.StartingWallet < 0 {
		b.StartingWallet = 0
	}
	if b.LevelCap <= 0 {
		b.LevelCap = d.LevelCap
	}
	if b.BaseXPThreshold <= 0 {
		b.BaseXPThreshold = d.BaseXPThreshold
	}
	if b.ThresholdMultiplier <= 1 {
		b.ThresholdMultiplier = d.ThresholdMultiplier
	}
	if b.GardenPlots <= 0 {
		b.GardenPlots = d.GardenPlots
	}
	if b.XPMultiplier <= 0 {
		b.XPMultiplier = 1
	}
	if b.PayoutMultiplier <= 0 {
		b.PayoutMultiplier = 1
	}
}

// DefaultBalance returns the default balance configuration
func DefaultBalance() Balance {
	return Balance{
		StartingWallet:      100,
		LevelCap:            50,
		BaseXPThreshold:     100,
		ThresholdMultiplier: 1.5,
		LevelRewardPerLevel: 50,
		GardenPlots:         3,
		XPMultiplier:        1,
		PayoutMultiplier:    1,
	}
}

// Casual returns easier balance for casual difficulty
func Casual() Balance {
	cfg := DefaultBalance()
	cfg.StartingWallet = 250
	cfg.XPMultiplier = 1.25
	cfg.PayoutMultiplier = 1.25
	return cfg
}

// Hard returns harder balance for experienced players
func Hard() Balance {
	cfg := DefaultBalance()
	cfg.StartingWallet = 0
	cfg.XPMultiplier = 0.8
	cfg.PayoutMultiplier = 0.75
	cfg.LevelRewardPerLevel = 25
	return cfg
}

// WithDifficulty swaps in a preset, keeping the file's balance for "" and "normal".
func (c *Config) WithDifficulty(mode string) *Config {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "casual":
		c.Balance = Casual()
	case "hard":
		c.Balance = Hard()
	}
	return c
}
