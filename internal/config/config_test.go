package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValidAndComplete(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 50, cfg.Balance.LevelCap)
	assert.Equal(t, 1.5, cfg.Balance.ThresholdMultiplier)
	assert.NotEmpty(t, cfg.Items)
	assert.NotEmpty(t, cfg.Activities)
	assert.NotEmpty(t, cfg.Jobs)
	assert.NotEmpty(t, cfg.Achievements)
	assert.Equal(t, 4, cfg.Shop.RotationSize)
	assert.Contains(t, cfg.Shop.Essentials, "hunting_rifle")

	rifle, err := cfg.Item("hunting_rifle")
	require.NoError(t, err)
	assert.False(t, rifle.Stackable())
	assert.True(t, rifle.Purchasable())

	reward, ok := cfg.LevelRewards[10]
	require.True(t, ok)
	assert.Equal(t, "xp_potion", reward.Items[0].Item)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	doc := `
items:
  - { id: stick, name: Stick, kind: collectible, tier: common, price: 10 }
shop:
  essentials: [stick]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, 50, cfg.Balance.LevelCap)
	assert.Equal(t, int64(100), cfg.Balance.BaseXPThreshold)
	assert.Equal(t, 3600, cfg.Shop.RotationIntervalSeconds)
	assert.NotNil(t, cfg.LevelRewards)
}

func TestParse_RejectsDanglingReferences(t *testing.T) {
	doc := `
items:
  - { id: stick, name: Stick, kind: collectible, tier: common, price: 10 }
activities:
  - id: hunt
    name: Hunt
    tool: rifle
    pool:
      - { kind: nothing, weight: 1 }
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool rifle")
}

func TestWithDifficulty(t *testing.T) {
	assert.Equal(t, Casual(), Default().WithDifficulty("casual").Balance)
	assert.Equal(t, Hard(), Default().WithDifficulty("HARD").Balance)
	assert.Equal(t, DefaultBalance(), Default().WithDifficulty("normal").Balance)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("WIL_STORAGE", "sqlite")
	t.Setenv("WIL_TICK_INTERVAL", "250ms")

	e, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", e.Storage)
	assert.Equal(t, 250*time.Millisecond, e.TickInterval)
	assert.Equal(t, ":42069", e.Addr)
	assert.True(t, e.Autosave)

	t.Setenv("WIL_STORAGE", "cloud")
	_, err = FromEnv()
	assert.Error(t, err)
}
