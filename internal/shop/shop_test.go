package shop

import (
	"math/rand"
	"testing"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
	"github.com/codenameoperative/what-is-life-sub001/internal/inventory"
	"github.com/codenameoperative/what-is-life-sub001/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Items: []catalog.Item{
			{ID: "shovel", Kind: catalog.KindTool, Tier: catalog.TierCommon, Price: 300},
			{ID: "cookie", Kind: catalog.KindConsumable, Tier: catalog.TierCommon, Price: 30},
			{ID: "duck", Kind: catalog.KindCollectible, Tier: catalog.TierCommon, Price: 200},
			{ID: "rock", Kind: catalog.KindCollectible, Tier: catalog.TierUncommon, Price: 800},
			{ID: "trophy", Kind: catalog.KindCollectible, Tier: catalog.TierRare, Price: 5000},
			{ID: "crown", Kind: catalog.KindCollectible, Tier: catalog.TierMythic, Price: 100000},
			{ID: "rabbit", Kind: catalog.KindCollectible, Tier: catalog.TierCommon, SellPrice: 40},
		},
		Shop: catalog.ShopConfig{
			Essentials:              []string{"shovel", "cookie"},
			RotationSize:            3,
			RotationIntervalSeconds: 60,
		},
	}
}

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestRotate_PicksDistinctNonEssentials(t *testing.T) {
	c := testCatalog()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		s := New(c.Shop)
		s.Rotate(c, rng, t0)

		require.Len(t, s.Rotating, 3)
		seen := map[string]bool{}
		for _, id := range s.Rotating {
			assert.False(t, seen[id], "duplicate %s", id)
			seen[id] = true
			assert.NotContains(t, c.Shop.Essentials, id)
			assert.NotEqual(t, "rabbit", id)
		}
		assert.Equal(t, t0.Add(time.Minute).UnixMilli(), s.NextRotationAt)
	}
}

func TestRotate_SizeLargerThanPool(t *testing.T) {
	c := testCatalog()
	c.Shop.RotationSize = 10
	s := New(c.Shop)
	s.Rotate(c, rand.New(rand.NewSource(1)), t0)
	assert.Len(t, s.Rotating, 4)
}

func TestRefresh_NoopBeforeCountdown(t *testing.T) {
	c := testCatalog()
	rng := rand.New(rand.NewSource(9))
	s := New(c.Shop)
	require.True(t, s.Refresh(c, rng, t0))
	before := s.Clone()

	assert.False(t, s.Refresh(c, rng, t0.Add(59*time.Second)))
	assert.Equal(t, before, s)
	assert.Equal(t, time.Second, s.Remaining(t0.Add(59*time.Second)))

	assert.True(t, s.Refresh(c, rng, t0.Add(time.Minute)))
	assert.Equal(t, 2, s.Rotations)
	assert.Zero(t, s.Remaining(t0.Add(5*time.Minute)))
}

func TestBuy_InsufficientWalletLeavesStateUnchanged(t *testing.T) {
	c := testCatalog()
	s := New(c.Shop)
	b := wallet.Balances{Wallet: 20}
	inv := inventory.New()
	cookie, _ := c.Item("cookie")

	_, err := s.Buy(&b, &inv, cookie, 1)
	assert.ErrorIs(t, err, ErrNotEnoughWTC)
	assert.Equal(t, int64(20), b.Wallet)
	assert.Empty(t, inv.Records)
}

func TestBuy_HugeQuantityDoesNotWrapCost(t *testing.T) {
	c := testCatalog()
	s := New(c.Shop)
	b := wallet.Balances{Wallet: 20}
	inv := inventory.New()
	cookie, _ := c.Item("cookie")

	// 30 * qty wraps int64 to a small positive number
	qty := 614891469123651721
	_, err := s.Buy(&b, &inv, cookie, qty)
	assert.ErrorIs(t, err, ErrNotEnoughWTC)
	assert.Equal(t, int64(20), b.Wallet)
	assert.Empty(t, inv.Records)

	rich := wallet.Balances{Wallet: 1 << 62}
	_, err = s.Buy(&rich, &inv, cookie, inventory.MaxStack+1)
	assert.ErrorIs(t, err, inventory.ErrInventoryFull)
	assert.Equal(t, int64(1<<62), rich.Wallet)
}

func TestBuy_Success(t *testing.T) {
	c := testCatalog()
	s := New(c.Shop)
	b := wallet.Balances{Wallet: 100}
	inv := inventory.New()
	cookie, _ := c.Item("cookie")

	cost, err := s.Buy(&b, &inv, cookie, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(90), cost)
	assert.Equal(t, int64(10), b.Wallet)
	assert.Equal(t, 3, inv.Count("cookie"))
}

func TestBuy_OutOfStock(t *testing.T) {
	c := testCatalog()
	s := New(c.Shop)
	b := wallet.Balances{Wallet: 1_000_000}
	inv := inventory.New()
	crown, _ := c.Item("crown")

	_, err := s.Buy(&b, &inv, crown, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = s.Buy(&b, &inv, crown, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSell(t *testing.T) {
	c := testCatalog()
	b := wallet.Balances{}
	inv := inventory.New()
	rabbit, _ := c.Item("rabbit")
	shovel, _ := c.Item("shovel")
	require.NoError(t, inv.Add(rabbit, 3))
	require.NoError(t, inv.Add(shovel, 1))

	got, err := Sell(&b, &inv, rabbit, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(80), got)

	got, err = Sell(&b, &inv, shovel, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150), got)
	assert.Equal(t, int64(230), b.Wallet)

	_, err = Sell(&b, &inv, rabbit, 5)
	assert.ErrorIs(t, err, inventory.ErrNotEnough)
	assert.Equal(t, int64(230), b.Wallet)
}

func TestListings(t *testing.T) {
	c := testCatalog()
	s := New(c.Shop)
	s.Rotating = []string{"trophy", "ghost"}
	ls := s.Listings(c)
	require.Len(t, ls, 3)
	assert.True(t, ls[0].Essential)
	assert.Equal(t, "trophy", ls[2].ID)
	assert.False(t, ls[2].Essential)
}
