package inventory

import (
	"math/rand"
	"testing"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	rifle  = catalog.Item{ID: "hunting_rifle", Kind: catalog.KindTool, Price: 500, BreakChance: 0.05}
	rabbit = catalog.Item{ID: "rabbit", Kind: catalog.KindCollectible, SellPrice: 40}
	cookie = catalog.Item{ID: "cookie", Kind: catalog.KindConsumable, Price: 50, BreakChance: 1}
	charm  = catalog.Item{ID: "charm", Kind: catalog.KindConsumable, BreakChance: 0}
)

type floatRNG float64

func (f floatRNG) Intn(n int) int     { return 0 }
func (f floatRNG) Float64() float64 { return float64(f) }

func TestAdd_StackableMergesIntoOneRecord(t *testing.T) {
	inv := New()
	require.NoError(t, inv.Add(rabbit, 2))
	require.NoError(t, inv.Add(rabbit, 3))

	require.Len(t, inv.Records, 1)
	assert.Equal(t, 5, inv.Records[0].Quantity)
	assert.Equal(t, 5, inv.Count("rabbit"))
}

func TestAdd_NonStackableGetsRecordPerUnit(t *testing.T) {
	inv := New()
	require.NoError(t, inv.Add(rifle, 2))
	require.NoError(t, inv.Add(rifle, 1))

	require.Len(t, inv.Records, 3)
	seen := map[string]bool{}
	for _, r := range inv.Records {
		assert.Equal(t, 1, r.Quantity)
		assert.False(t, seen[r.UID])
		seen[r.UID] = true
	}
}

func TestAdd_RejectsNonPositive(t *testing.T) {
	inv := New()
	assert.ErrorIs(t, inv.Add(rabbit, 0), ErrInvalidQuantity)
	assert.Empty(t, inv.Records)
}

func TestAddThenRemove_RestoresPriorState(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		inv := New()
		require.NoError(t, inv.Add(cookie, 1+rng.Intn(5)))
		if rng.Intn(2) == 0 {
			require.NoError(t, inv.Add(rabbit, 1+rng.Intn(5)))
		}
		before := inv.Clone()
		_, hadRabbits := before.Find("rabbit")

		qty := 1 + rng.Intn(20)
		require.NoError(t, inv.Add(rabbit, qty))
		require.NoError(t, inv.Remove("rabbit", qty))

		assert.Equal(t, before.Records, inv.Records)
		// uids are never reused, so a stack created and emptied again still spends one
		if hadRabbits {
			assert.Equal(t, before.NextUID, inv.NextUID)
		} else {
			assert.Equal(t, before.NextUID+1, inv.NextUID)
		}
	}
}

func TestAdd_CapsQuantity(t *testing.T) {
	inv := New()
	err := inv.Add(cookie, 368934881474191033)
	assert.ErrorIs(t, err, ErrInventoryFull)
	assert.Empty(t, inv.Records)

	require.NoError(t, inv.Add(cookie, MaxStack-1))
	assert.ErrorIs(t, inv.Add(cookie, 2), ErrInventoryFull)
	require.NoError(t, inv.Add(cookie, 1))
	assert.Equal(t, MaxStack, inv.Count("cookie"))

	assert.ErrorIs(t, inv.Add(rifle, MaxUnits+1), ErrInventoryFull)
	assert.Empty(t, func() []Record {
		var out []Record
		for _, r := range inv.Records {
			if r.ItemID == rifle.ID {
				out = append(out, r)
			}
		}
		return out
	}())
	require.NoError(t, inv.Add(rifle, MaxUnits))
	assert.ErrorIs(t, inv.Add(rifle, 1), ErrInventoryFull)
}

func TestNormalize_MovesNextUIDPastHighestUID(t *testing.T) {
	inv := Normalize(Inventory{
		Records: []Record{
			{UID: "r7", ItemID: "rabbit", Quantity: 368934881474191033},
			{UID: "r3", ItemID: "cookie", Quantity: 0},
			{UID: "r7", ItemID: "hunting_rifle", Quantity: 1},
			{UID: "", ItemID: "hunting_rifle", Quantity: 1},
		},
		NextUID: 2,
	})

	require.Len(t, inv.Records, 3)
	assert.Equal(t, "r7", inv.Records[0].UID)
	assert.Equal(t, MaxStack, inv.Records[0].Quantity)
	assert.Equal(t, "r8", inv.Records[1].UID)
	assert.Equal(t, "r9", inv.Records[2].UID)
	assert.Equal(t, int64(10), inv.NextUID)

	require.NoError(t, inv.Add(rifle, 1))
	assert.Equal(t, "r10", inv.Records[3].UID)
}

func TestNormalize_KeepsHealthyInventory(t *testing.T) {
	inv := New()
	require.NoError(t, inv.Add(rabbit, 2))
	require.NoError(t, inv.Add(rifle, 2))
	assert.Equal(t, inv, Normalize(inv.Clone()))
}

func TestRemove_ZeroQuantityDropsRecord(t *testing.T) {
	inv := New()
	require.NoError(t, inv.Add(rabbit, 2))
	require.NoError(t, inv.Remove("rabbit", 2))
	assert.Empty(t, inv.Records)
	_, ok := inv.Find("rabbit")
	assert.False(t, ok)
}

func TestRemove_InsufficientChangesNothing(t *testing.T) {
	inv := New()
	require.NoError(t, inv.Add(rabbit, 2))
	assert.ErrorIs(t, inv.Remove("rabbit", 3), ErrNotEnough)
	assert.ErrorIs(t, inv.Remove("bear", 1), ErrNotOwned)
	assert.Equal(t, 2, inv.Count("rabbit"))
}

func TestRemove_NonStackableNewestFirst(t *testing.T) {
	inv := New()
	require.NoError(t, inv.Add(rifle, 3))
	first := inv.Records[0].UID
	require.NoError(t, inv.Remove("hunting_rifle", 2))
	require.Len(t, inv.Records, 1)
	assert.Equal(t, first, inv.Records[0].UID)
}

func TestUse_BreakRemovesWholeRecord(t *testing.T) {
	inv := New()
	require.NoError(t, inv.Add(rifle, 1))

	res, err := inv.Use(rifle, floatRNG(0.01))
	require.NoError(t, err)
	assert.True(t, res.Broke)
	assert.Zero(t, res.Remaining)
	assert.Empty(t, inv.Records)
}

func TestUse_NoBreakLeavesToolAndDecrementsStack(t *testing.T) {
	inv := New()
	require.NoError(t, inv.Add(rifle, 1))
	require.NoError(t, inv.Add(charm, 3))

	res, err := inv.Use(rifle, floatRNG(0.99))
	require.NoError(t, err)
	assert.False(t, res.Broke)
	assert.Equal(t, 1, inv.Count("hunting_rifle"))

	res, err = inv.Use(charm, floatRNG(0.99))
	require.NoError(t, err)
	assert.False(t, res.Broke)
	assert.Equal(t, 2, res.Remaining)
}

func TestUse_StackableBreakRemovesEntireStack(t *testing.T) {
	inv := New()
	require.NoError(t, inv.Add(cookie, 4))

	res, err := inv.Use(cookie, floatRNG(0.5))
	require.NoError(t, err)
	assert.True(t, res.Broke)
	assert.Zero(t, inv.Count("cookie"))
}

func TestUse_MissingItem(t *testing.T) {
	inv := New()
	_, err := inv.Use(rifle, floatRNG(0))
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestValue(t *testing.T) {
	c := &catalog.Catalog{Items: []catalog.Item{rifle, rabbit}}
	inv := New()
	require.NoError(t, inv.Add(rifle, 1))
	require.NoError(t, inv.Add(rabbit, 3))
	assert.Equal(t, int64(250+120), inv.Value(c))
}
