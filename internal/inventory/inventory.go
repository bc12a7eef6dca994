package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
	"github.com/codenameoperative/what-is-life-sub001/internal/loot"
)

var (
	ErrNotOwned        = errors.New("item not owned")
	ErrNotEnough       = errors.New("not enough of item")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInventoryFull   = errors.New("inventory full")
)

// Per-item ceilings. A stack holds at most MaxStack units; a non-stackable item
// has at most MaxUnits records.
const (
	MaxStack = 1_000_000
	MaxUnits = 100
)

// Record is one owned entry. Stackable items share a record and carry a quantity;
// every unit of a non-stackable item is its own record with quantity 1.
type Record struct {
	UID      string `json:"uid"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Inventory is an ordered list of records.
type Inventory struct {
	Records []Record `json:"records"`
	NextUID int64    `json:"next_uid"`
}

func New() Inventory {
	return Inventory{Records: []Record{}, NextUID: 1}
}

func (inv *Inventory) newUID() string {
	if inv.NextUID <= 0 {
		inv.NextUID = 1
	}
	uid := "r" + strconv.FormatInt(inv.NextUID, 10)
	inv.NextUID++
	return uid
}

// Normalize repairs a decoded inventory. Empty records are dropped, quantities
// are clamped to MaxStack, bad or duplicate uids are reissued and NextUID moves
// past every uid in use.
func Normalize(inv Inventory) Inventory {
	records := make([]Record, 0, len(inv.Records))
	for _, r := range inv.Records {
		if r.Quantity > 0 && r.ItemID != "" {
			r.Quantity = min(r.Quantity, MaxStack)
			records = append(records, r)
		}
	}
	out := Inventory{Records: records, NextUID: inv.NextUID}
	if out.NextUID <= 0 {
		out.NextUID = 1
	}
	for _, r := range records {
		if n, ok := parseUID(r.UID); ok && n >= out.NextUID {
			out.NextUID = n + 1
		}
	}
	seen := make(map[string]bool, len(records))
	for i := range out.Records {
		if _, ok := parseUID(out.Records[i].UID); !ok || seen[out.Records[i].UID] {
			out.Records[i].UID = out.newUID()
		}
		seen[out.Records[i].UID] = true
	}
	return out
}

func parseUID(uid string) (int64, bool) {
	digits, ok := strings.CutPrefix(uid, "r")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Clone returns a deep copy.
func (inv Inventory) Clone() Inventory {
	out := Inventory{NextUID: inv.NextUID, Records: make([]Record, len(inv.Records))}
	copy(out.Records, inv.Records)
	return out
}

func (inv *Inventory) indexOf(itemID string) int {
	for i, r := range inv.Records {
		if r.ItemID == itemID {
			return i
		}
	}
	return -1
}

// Add puts qty units of def into the inventory.
func (inv *Inventory) Add(def catalog.Item, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if inv.Records == nil {
		inv.Records = []Record{}
	}
	limit := MaxUnits
	if def.Stackable() {
		limit = MaxStack
	}
	if have := inv.Count(def.ID); qty > limit || have > limit-qty {
		return fmt.Errorf("%w: %s holds at most %d", ErrInventoryFull, def.ID, limit)
	}
	if def.Stackable() {
		if i := inv.indexOf(def.ID); i >= 0 {
			inv.Records[i].Quantity += qty
			return nil
		}
		inv.Records = append(inv.Records, Record{UID: inv.newUID(), ItemID: def.ID, Quantity: qty})
		return nil
	}
	for i := 0; i < qty; i++ {
		inv.Records = append(inv.Records, Record{UID: inv.newUID(), ItemID: def.ID, Quantity: 1})
	}
	return nil
}

// Remove takes exactly qty units away or changes nothing.
func (inv *Inventory) Remove(itemID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	have := inv.Count(itemID)
	if have == 0 {
		return fmt.Errorf("%w: %s", ErrNotOwned, itemID)
	}
	if have < qty {
		return fmt.Errorf("%w: %s (have %d, need %d)", ErrNotEnough, itemID, have, qty)
	}

	remaining := qty
	for i := len(inv.Records) - 1; i >= 0 && remaining > 0; i-- {
		r := &inv.Records[i]
		if r.ItemID != itemID {
			continue
		}
		take := r.Quantity
		if take > remaining {
			take = remaining
		}
		r.Quantity -= take
		remaining -= take
	}
	inv.compact()
	return nil
}

// UseResult reports what happened to the used record.
type UseResult struct {
	ItemID    string `json:"item_id"`
	Broke     bool   `json:"broke"`
	Remaining int    `json:"remaining"`
}

// Use rolls the item's break chance. A break removes the whole record; otherwise a
// stackable record loses one unit.
func (inv *Inventory) Use(def catalog.Item, rng loot.RNG) (UseResult, error) {
	i := inv.indexOf(def.ID)
	if i < 0 {
		return UseResult{}, fmt.Errorf("%w: %s", ErrNotOwned, def.ID)
	}

	res := UseResult{ItemID: def.ID}
	if loot.Chance(rng, def.BreakChance) {
		res.Broke = true
		inv.Records = append(inv.Records[:i], inv.Records[i+1:]...)
	} else if def.Stackable() {
		inv.Records[i].Quantity--
		inv.compact()
	}
	res.Remaining = inv.Count(def.ID)
	return res, nil
}

func (inv *Inventory) compact() {
	out := inv.Records[:0]
	for _, r := range inv.Records {
		if r.Quantity > 0 {
			out = append(out, r)
		}
	}
	inv.Records = out
}

// Count returns the total owned units of an item.
func (inv Inventory) Count(itemID string) int {
	n := 0
	for _, r := range inv.Records {
		if r.ItemID == itemID {
			n += r.Quantity
		}
	}
	return n
}

func (inv Inventory) Has(itemID string, qty int) bool {
	return inv.Count(itemID) >= qty
}

// Find returns the first record for an item.
func (inv Inventory) Find(itemID string) (Record, bool) {
	for _, r := range inv.Records {
		if r.ItemID == itemID {
			return r, true
		}
	}
	return Record{}, false
}

// Totals groups owned units by item id.
func (inv Inventory) Totals() map[string]int {
	out := map[string]int{}
	for _, r := range inv.Records {
		out[r.ItemID] += r.Quantity
	}
	return out
}

// Value sums the sell value of everything owned. Unknown ids count as zero.
func (inv Inventory) Value(c *catalog.Catalog) int64 {
	var total int64
	for id, n := range inv.Totals() {
		def, err := c.Item(id)
		if err != nil {
			continue
		}
		total += def.SellValue() * int64(n)
	}
	return total
}
