package catalog

import (
	"fmt"
	"strings"
)

// Validate checks ids are unique and every reference resolves.
func (c *Catalog) Validate() error {
	items := map[string]Item{}
	for _, it := range c.Items {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			return fmt.Errorf("item with empty id")
		}
		if _, dup := items[id]; dup {
			return fmt.Errorf("duplicate item id: %s", id)
		}
		if it.BreakChance < 0 || it.BreakChance > 1 {
			return fmt.Errorf("item %s: break_chance must be within [0,1]", id)
		}
		if it.Price < 0 || it.SellPrice < 0 {
			return fmt.Errorf("item %s: negative price", id)
		}
		switch it.Kind {
		case KindTool, KindConsumable, KindCollectible, KindSeed:
		default:
			return fmt.Errorf("item %s: unknown kind %q", id, it.Kind)
		}
		if it.Kind == KindConsumable && it.Effect == nil {
			return fmt.Errorf("item %s: consumable without effect", id)
		}
		if it.Kind == KindSeed && it.Growth == nil {
			return fmt.Errorf("item %s: seed without growth", id)
		}
		items[id] = it
	}

	for _, it := range c.Items {
		if it.Growth == nil {
			continue
		}
		if _, ok := items[it.Growth.CropID]; !ok {
			return fmt.Errorf("seed %s: unknown crop %s", it.ID, it.Growth.CropID)
		}
		if it.Growth.YieldMin <= 0 || it.Growth.YieldMax < it.Growth.YieldMin {
			return fmt.Errorf("seed %s: invalid yield bounds", it.ID)
		}
	}

	checkPool := func(owner string, pool []PoolEntry) error {
		total := 0
		for _, e := range pool {
			if e.Weight < 0 {
				return fmt.Errorf("%s: negative weight", owner)
			}
			total += e.Weight
			switch e.Kind {
			case OutcomeNothing:
			case OutcomeItem:
				if _, ok := items[e.Item]; !ok {
					return fmt.Errorf("%s: unknown item %s", owner, e.Item)
				}
			case OutcomeWTC, OutcomeFine:
				if e.Min < 0 || e.Max < e.Min {
					return fmt.Errorf("%s: invalid amount bounds", owner)
				}
			default:
				return fmt.Errorf("%s: unknown outcome kind %q", owner, e.Kind)
			}
		}
		if total <= 0 {
			return fmt.Errorf("%s: pool has no weight", owner)
		}
		return nil
	}

	activities := map[string]bool{}
	for _, a := range c.Activities {
		if a.ID == "" || activities[a.ID] {
			return fmt.Errorf("invalid or duplicate activity id: %q", a.ID)
		}
		activities[a.ID] = true
		if a.Tool != "" {
			if _, ok := items[a.Tool]; !ok {
				return fmt.Errorf("activity %s: unknown tool %s", a.ID, a.Tool)
			}
		}
		if len(a.Variants) == 0 {
			if err := checkPool("activity "+a.ID, a.Pool); err != nil {
				return err
			}
		}
		for name, pool := range a.Variants {
			if err := checkPool("activity "+a.ID+"/"+name, pool); err != nil {
				return err
			}
		}
	}

	jobs := map[string]bool{}
	for _, j := range c.Jobs {
		if j.ID == "" || jobs[j.ID] {
			return fmt.Errorf("invalid or duplicate job id: %q", j.ID)
		}
		jobs[j.ID] = true
		if j.Salary < 0 {
			return fmt.Errorf("job %s: negative salary", j.ID)
		}
	}

	titles := map[string]bool{}
	for _, t := range c.Titles {
		if t.ID == "" || titles[t.ID] {
			return fmt.Errorf("invalid or duplicate title id: %q", t.ID)
		}
		titles[t.ID] = true
	}

	checkReward := func(owner string, r Reward) error {
		for _, g := range r.Items {
			if _, ok := items[g.Item]; !ok {
				return fmt.Errorf("%s: reward references unknown item %s", owner, g.Item)
			}
			if g.Qty <= 0 {
				return fmt.Errorf("%s: reward quantity must be positive", owner)
			}
		}
		if r.Title != "" && !titles[r.Title] {
			return fmt.Errorf("%s: reward references unknown title %s", owner, r.Title)
		}
		return nil
	}

	achievements := map[string]bool{}
	for _, a := range c.Achievements {
		if a.ID == "" || achievements[a.ID] {
			return fmt.Errorf("invalid or duplicate achievement id: %q", a.ID)
		}
		achievements[a.ID] = true
		req := a.Requirement
		switch req.Kind {
		case ReqActivityCount:
			if !activities[req.Activity] && !IsBuiltinAction(req.Activity) {
				return fmt.Errorf("achievement %s: unknown activity %s", a.ID, req.Activity)
			}
		case ReqItemCount:
			if _, ok := items[req.Item]; !ok {
				return fmt.Errorf("achievement %s: unknown item %s", a.ID, req.Item)
			}
		case ReqLevel, ReqTotalEarned, ReqTotalSpent, ReqNetWorth, ReqAchievements:
		default:
			return fmt.Errorf("achievement %s: unknown requirement %q", a.ID, req.Kind)
		}
		if err := checkReward("achievement "+a.ID, a.Reward); err != nil {
			return err
		}
	}

	for lvl, r := range c.LevelRewards {
		if err := checkReward(fmt.Sprintf("level %d", lvl), r); err != nil {
			return err
		}
	}

	for _, id := range c.Shop.Essentials {
		it, ok := items[id]
		if !ok {
			return fmt.Errorf("shop essential: unknown item %s", id)
		}
		if !it.Purchasable() {
			return fmt.Errorf("shop essential %s has no price", id)
		}
	}
	if c.Shop.RotationSize < 0 {
		return fmt.Errorf("shop rotation_size must not be negative")
	}
	return nil
}
