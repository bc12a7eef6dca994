package shop

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
	"github.com/codenameoperative/what-is-life-sub001/internal/inventory"
	"github.com/codenameoperative/what-is-life-sub001/internal/loot"
	"github.com/codenameoperative/what-is-life-sub001/internal/wallet"
)

var (
	ErrOutOfStock      = errors.New("item not in stock")
	ErrNotEnoughWTC    = errors.New("not enough WTC")
	ErrNotSellable     = errors.New("item cannot be sold")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Shop is the current storefront.
type Shop struct {
	Essentials     []string `json:"essentials"`
	Rotating       []string `json:"rotating"`
	NextRotationAt int64    `json:"next_rotation_at"`
	Rotations      int      `json:"rotations"`
}

// Listing is one purchasable row.
type Listing struct {
	catalog.Item
	Essential bool `json:"essential"`
}

func New(cfg catalog.ShopConfig) Shop {
	return Shop{
		Essentials: append([]string{}, cfg.Essentials...),
		Rotating:   []string{},
	}
}

func (s Shop) Clone() Shop {
	out := s
	out.Essentials = append([]string{}, s.Essentials...)
	out.Rotating = append([]string{}, s.Rotating...)
	return out
}

func interval(cfg catalog.ShopConfig) time.Duration {
	secs := cfg.RotationIntervalSeconds
	if secs <= 0 {
		secs = 3600
	}
	return time.Duration(secs) * time.Second
}

// Rotate replaces the rotating stock unconditionally and restarts the countdown.
// Picks are weighted by tier and never repeat.
func (s *Shop) Rotate(c *catalog.Catalog, rng loot.RNG, now time.Time) {
	pool := c.RotationCandidates()
	size := c.Shop.RotationSize
	picked := make([]string, 0, size)

	for len(picked) < size && len(pool) > 0 {
		total := 0
		for _, it := range pool {
			total += it.Tier.RotationWeight()
		}
		if total <= 0 {
			break
		}
		roll := rng.Intn(total)
		current := 0
		for i, it := range pool {
			current += it.Tier.RotationWeight()
			if roll < current {
				picked = append(picked, it.ID)
				pool = append(pool[:i], pool[i+1:]...)
				break
			}
		}
	}

	s.Essentials = append([]string{}, c.Shop.Essentials...)
	s.Rotating = picked
	s.NextRotationAt = now.Add(interval(c.Shop)).UnixMilli()
	s.Rotations++
}

// Refresh rotates only once the countdown has elapsed. It reports whether it rotated.
func (s *Shop) Refresh(c *catalog.Catalog, rng loot.RNG, now time.Time) bool {
	if s.NextRotationAt != 0 && now.UnixMilli() < s.NextRotationAt {
		return false
	}
	s.Rotate(c, rng, now)
	return true
}

// Remaining is the time left until the next rotation.
func (s Shop) Remaining(now time.Time) time.Duration {
	d := time.UnixMilli(s.NextRotationAt).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (s Shop) InStock(itemID string) bool {
	return slices.Contains(s.Essentials, itemID) || slices.Contains(s.Rotating, itemID)
}

// Listings resolves stock against the catalog, essentials first. Unknown ids are skipped.
func (s Shop) Listings(c *catalog.Catalog) []Listing {
	out := make([]Listing, 0, len(s.Essentials)+len(s.Rotating))
	for _, id := range s.Essentials {
		if it, err := c.Item(id); err == nil {
			out = append(out, Listing{Item: it, Essential: true})
		}
	}
	for _, id := range s.Rotating {
		if it, err := c.Item(id); err == nil {
			out = append(out, Listing{Item: it})
		}
	}
	return out
}

// Buy charges the wallet and adds the items. Nothing changes on failure.
func (s Shop) Buy(b *wallet.Balances, inv *inventory.Inventory, def catalog.Item, qty int) (int64, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	if !def.Purchasable() || !s.InStock(def.ID) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfStock, def.ID)
	}
	// compare by division so price*qty cannot wrap
	if def.Price > b.Wallet/int64(qty) {
		return 0, fmt.Errorf("%w: %d x %d costs more than %d", ErrNotEnoughWTC, qty, def.Price, b.Wallet)
	}
	cost := def.Price * int64(qty)
	if err := inv.Add(def, qty); err != nil {
		return 0, err
	}
	b.Spend(cost)
	return cost, nil
}

// Sell removes the items and pays their sell value into the wallet.
func Sell(b *wallet.Balances, inv *inventory.Inventory, def catalog.Item, qty int) (int64, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	unit := def.SellValue()
	if unit <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotSellable, def.ID)
	}
	if err := inv.Remove(def.ID, qty); err != nil {
		return 0, err
	}
	payout := unit * int64(qty)
	b.Earn(payout)
	return payout, nil
}
