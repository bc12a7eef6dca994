package loot

import (
	"math"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
)

// RNG is the subset of *math/rand.Rand the game rolls with.
type RNG interface {
	Intn(n int) int
	Float64() float64
}

// Drop is the rolled result of one pool entry.
type Drop struct {
	Kind    catalog.OutcomeKind `json:"kind"`
	Item    string              `json:"item,omitempty"`
	Qty     int                 `json:"qty,omitempty"`
	WTC     int64               `json:"wtc,omitempty"`
	Message string              `json:"message,omitempty"`
}

// Table is a weighted pool.
type Table []catalog.PoolEntry

func (t Table) totalWeight() int {
	total := 0
	for _, e := range t {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	return total
}

// Pick returns the entry a single weighted roll lands on.
func (t Table) Pick(rng RNG) (catalog.PoolEntry, bool) {
	total := t.totalWeight()
	if total == 0 {
		return catalog.PoolEntry{}, false
	}
	roll := rng.Intn(total)
	current := 0
	for _, e := range t {
		if e.Weight <= 0 {
			continue
		}
		current += e.Weight
		if roll < current {
			return e, true
		}
	}
	return catalog.PoolEntry{}, false
}

// Roll picks an entry and resolves its amount.
func (t Table) Roll(rng RNG) Drop {
	e, ok := t.Pick(rng)
	if !ok {
		return Drop{Kind: catalog.OutcomeNothing}
	}
	d := Drop{Kind: e.Kind, Item: e.Item, Message: e.Message}
	switch e.Kind {
	case catalog.OutcomeItem:
		d.Qty = int(Between(rng, e.Min, e.Max))
		if d.Qty <= 0 {
			d.Qty = 1
		}
	case catalog.OutcomeWTC, catalog.OutcomeFine:
		d.WTC = Between(rng, e.Min, e.Max)
	}
	return d
}

// Between returns a uniform value in [min, max]; max below min collapses to min.
func Between(rng RNG, min, max int64) int64 {
	if max <= min {
		return min
	}
	span := max - min + 1
	if span > math.MaxInt32 {
		span = math.MaxInt32
	}
	return min + int64(rng.Intn(int(span)))
}

// Scale multiplies a currency gain. Fines and items are left alone.
func Scale(d Drop, mult float64) Drop {
	if d.Kind != catalog.OutcomeWTC || mult <= 0 || mult == 1 {
		return d
	}
	d.WTC = int64(math.Floor(float64(d.WTC) * mult))
	return d
}

// Chance reports whether a roll with probability p succeeds.
func Chance(rng RNG, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}
