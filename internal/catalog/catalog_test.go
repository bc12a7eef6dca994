package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Catalog {
	return &Catalog{
		Items: []Item{
			{ID: "rifle", Name: "Rifle", Kind: KindTool, Tier: TierCommon, Price: 500, BreakChance: 0.05},
			{ID: "rabbit", Name: "Rabbit", Kind: KindCollectible, Tier: TierCommon, Price: 40},
			{ID: "cookie", Name: "Cookie", Kind: KindConsumable, Tier: TierCommon, Price: 25, BreakChance: 1,
				Effect: &Effect{Type: EffectXP, Min: 10, Max: 10}},
			{ID: "carrot", Name: "Carrot", Kind: KindCollectible, Tier: TierCommon, SellPrice: 6},
			{ID: "carrot_seed", Name: "Carrot Seed", Kind: KindSeed, Tier: TierCommon, Price: 10,
				Growth: &Growth{CropID: "carrot", GrowSeconds: 60, YieldMin: 1, YieldMax: 3}},
		},
		Activities: []Activity{
			{ID: "hunt", Name: "Hunt", CooldownSeconds: 30, Tool: "rifle", XP: 5, Pool: []PoolEntry{
				{Kind: OutcomeNothing, Weight: 1},
				{Kind: OutcomeItem, Item: "rabbit", Weight: 3},
			}},
			{ID: "search", Name: "Search", CooldownSeconds: 20, Variants: map[string][]PoolEntry{
				"park":  {{Kind: OutcomeWTC, Min: 1, Max: 5, Weight: 1}},
				"couch": {{Kind: OutcomeWTC, Min: 1, Max: 2, Weight: 1}},
			}},
		},
		Jobs:   []Job{{ID: "cashier", Name: "Cashier", Salary: 100, CooldownSeconds: 60}},
		Titles: []Title{{ID: "hunter", Name: "Hunter"}},
		Achievements: []Achievement{
			{ID: "first_hunt", Name: "First Hunt",
				Requirement: Requirement{Kind: ReqActivityCount, Activity: "hunt", Count: 1},
				Reward:      Reward{WTC: 50, Title: "hunter"}},
			{ID: "first_shift", Name: "Clocked In",
				Requirement: Requirement{Kind: ReqActivityCount, Activity: ActionWork, Count: 1}},
		},
		Shop: ShopConfig{Essentials: []string{"rifle"}, RotationSize: 2, RotationIntervalSeconds: 3600},
	}
}

func TestValidate_Sample(t *testing.T) {
	require.NoError(t, sample().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Catalog)
		want   string
	}{
		{"duplicate item", func(c *Catalog) { c.Items = append(c.Items, c.Items[0]) }, "duplicate item id"},
		{"break chance out of range", func(c *Catalog) { c.Items[0].BreakChance = 1.5 }, "break_chance"},
		{"unknown kind", func(c *Catalog) { c.Items[1].Kind = "weapon" }, "unknown kind"},
		{"consumable without effect", func(c *Catalog) { c.Items[2].Effect = nil }, "without effect"},
		{"seed with unknown crop", func(c *Catalog) { c.Items[4].Growth.CropID = "potato" }, "unknown crop"},
		{"inverted yield", func(c *Catalog) { c.Items[4].Growth.YieldMax = 0 }, "yield bounds"},
		{"unknown tool", func(c *Catalog) { c.Activities[0].Tool = "net" }, "unknown tool"},
		{"weightless pool", func(c *Catalog) {
			c.Activities[0].Pool = []PoolEntry{{Kind: OutcomeNothing, Weight: 0}}
		}, "no weight"},
		{"unknown pool item", func(c *Catalog) { c.Activities[0].Pool[1].Item = "deer" }, "unknown item deer"},
		{"unknown requirement activity", func(c *Catalog) {
			c.Achievements[0].Requirement.Activity = "sail"
		}, "unknown activity sail"},
		{"unknown reward title", func(c *Catalog) { c.Achievements[0].Reward.Title = "king" }, "unknown title"},
		{"essential without price", func(c *Catalog) { c.Shop.Essentials = []string{"carrot"} }, "has no price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sample()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLookups(t *testing.T) {
	c := sample()

	it, err := c.Item("rabbit")
	require.NoError(t, err)
	assert.Equal(t, int64(20), it.SellValue())

	carrot, err := c.Item("carrot")
	require.NoError(t, err)
	assert.Equal(t, int64(6), carrot.SellValue())
	assert.False(t, carrot.Purchasable())

	_, err = c.Item("deer")
	assert.ErrorIs(t, err, ErrUnknownItem)
	_, err = c.Activity("sail")
	assert.ErrorIs(t, err, ErrUnknownActivity)
	_, err = c.Job("pilot")
	assert.ErrorIs(t, err, ErrUnknownJob)
	_, err = c.Achievement("nope")
	assert.ErrorIs(t, err, ErrUnknownAchievement)
	_, err = c.Title("king")
	assert.ErrorIs(t, err, ErrUnknownTitle)
}

func TestActivity_PoolFor(t *testing.T) {
	c := sample()
	hunt, _ := c.Activity("hunt")
	pool, ok := hunt.PoolFor("anything")
	assert.True(t, ok)
	assert.Len(t, pool, 2)

	search, _ := c.Activity("search")
	_, ok = search.PoolFor(" Park ")
	assert.True(t, ok)
	_, ok = search.PoolFor("moon")
	assert.False(t, ok)
	assert.Equal(t, []string{"couch", "park"}, search.VariantNames())
}

func TestRotationCandidates_ExcludeEssentialsAndUnpriced(t *testing.T) {
	var ids []string
	for _, it := range sample().RotationCandidates() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"rabbit", "cookie", "carrot_seed"}, ids)
}

func TestKinds(t *testing.T) {
	assert.False(t, KindTool.Stackable())
	assert.True(t, KindSeed.Stackable())
	assert.Greater(t, TierCommon.RotationWeight(), TierMythic.RotationWeight())
	assert.Zero(t, Tier("unknown").RotationWeight())
	assert.True(t, Reward{}.Empty())
	assert.True(t, IsBuiltinAction(ActionWork))
	assert.False(t, IsBuiltinAction("hunt"))
}
