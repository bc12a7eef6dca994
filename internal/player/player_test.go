package player

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var curve = Curve{Cap: 50, Base: 100, Multiplier: 1.5}

func TestAddXP_SingleLevel(t *testing.T) {
	p := NewProfile(100)
	gained := p.AddXP(130, curve)

	assert.Equal(t, []int{2}, gained)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, int64(30), p.XP)
	assert.Equal(t, int64(150), p.XPToNext)
}

func TestAddXP_MultipleLevelsInOneGrant(t *testing.T) {
	p := NewProfile(100)
	gained := p.AddXP(100+150+225, curve)

	assert.Equal(t, []int{2, 3, 4}, gained)
	assert.Zero(t, p.XP)
	assert.Equal(t, int64(337), p.XPToNext)
}

func TestAddXP_NeverExceedsCap(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		p := NewProfile(100)
		for j := 0; j < 20; j++ {
			p.AddXP(rng.Int63n(math.MaxInt64/64), curve)
			require.LessOrEqual(t, p.Level, 50)
		}
	}
}

func TestAddXP_AccumulatesAtCap(t *testing.T) {
	p := NewProfile(100)
	p.Level = 50
	p.XPToNext = 10
	gained := p.AddXP(1000, curve)

	assert.Empty(t, gained)
	assert.Equal(t, 50, p.Level)
	assert.Equal(t, int64(1000), p.XP)
	assert.Equal(t, 1.0, p.Progress(curve))
}

func TestAddXP_IgnoresNegative(t *testing.T) {
	p := NewProfile(100)
	p.AddXP(-50, curve)
	assert.Zero(t, p.XP)
	assert.Equal(t, 1, p.Level)
}

func TestThresholdFor(t *testing.T) {
	assert.Equal(t, int64(100), curve.ThresholdFor(1))
	assert.Equal(t, int64(150), curve.ThresholdFor(2))
	assert.Equal(t, int64(225), curve.ThresholdFor(3))
	assert.Equal(t, int64(337), curve.ThresholdFor(4))
}

func TestUnlock_OnlyOnce(t *testing.T) {
	p := NewProfile(100)
	assert.True(t, p.Unlock("first_hunt"))
	assert.False(t, p.Unlock("first_hunt"))
	assert.Equal(t, []string{"first_hunt"}, p.Achievements)
}

func TestEquipTitle(t *testing.T) {
	p := NewProfile(100)
	assert.ErrorIs(t, p.EquipTitle("legend"), ErrTitleLocked)
	assert.Equal(t, DefaultTitle, p.EquippedTitle)

	assert.True(t, p.GrantTitle("legend"))
	assert.False(t, p.GrantTitle("legend"))
	require.NoError(t, p.EquipTitle("legend"))
	assert.Equal(t, "legend", p.EquippedTitle)

	require.NoError(t, p.EquipTitle(""))
	assert.Empty(t, p.EquippedTitle)
}

func TestRename(t *testing.T) {
	p := NewProfile(100)
	require.NoError(t, p.Rename("  alex "))
	assert.Equal(t, "alex", p.Username)
	assert.ErrorIs(t, p.Rename("   "), ErrInvalidUsername)
	assert.ErrorIs(t, p.Rename("this name is far too long for the board"), ErrInvalidUsername)
}

func TestNormalize_RepairsMissingFields(t *testing.T) {
	p := Normalize(Profile{
		Level:         3,
		Activity:      map[string]int64{"hunt": 4, "bogus": -1},
		Achievements:  []string{"a", "a", "b"},
		EquippedTitle: "ghost",
	}, 100)

	assert.Equal(t, DefaultUsername, p.Username)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, int64(100), p.XPToNext)
	assert.Equal(t, map[string]int64{"hunt": 4}, p.Activity)
	assert.Equal(t, []string{"a", "b"}, p.Achievements)
	assert.Equal(t, []string{DefaultTitle}, p.Titles)
	assert.Equal(t, DefaultTitle, p.EquippedTitle)
}

func TestCountAndUses(t *testing.T) {
	p := NewProfile(100)
	assert.Zero(t, p.Uses("fish"))
	assert.Equal(t, int64(1), p.Count("fish"))
	assert.Equal(t, int64(2), p.Count("fish"))
	assert.Equal(t, int64(2), p.Uses("fish"))
	assert.Equal(t, int64(2), p.Uses("fish"))
}

func TestClone_IsDeep(t *testing.T) {
	p := NewProfile(100)
	p.Count("hunt")
	c := p.Clone()
	c.Count("hunt")
	c.Titles[0] = "x"
	assert.Equal(t, int64(1), p.Activity["hunt"])
	assert.Equal(t, DefaultTitle, p.Titles[0])
}
