package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownItem        = errors.New("unknown item")
	ErrUnknownActivity    = errors.New("unknown activity")
	ErrUnknownJob         = errors.New("unknown job")
	ErrUnknownAchievement = errors.New("unknown achievement")
	ErrUnknownTitle       = errors.New("unknown title")
)

// Tier is an item or animal rarity bucket.
type Tier string

const (
	TierCommon    Tier = "common"
	TierUncommon  Tier = "uncommon"
	TierRare      Tier = "rare"
	TierEpic      Tier = "epic"
	TierLegendary Tier = "legendary"
	TierMythic    Tier = "mythic"
)

// Tiers lists every tier from most to least common.
var Tiers = []Tier{TierCommon, TierUncommon, TierRare, TierEpic, TierLegendary, TierMythic}

// RotationWeight is how likely an item of this tier is to show up in the rotating shop.
func (t Tier) RotationWeight() int {
	switch t {
	case TierCommon:
		return 40
	case TierUncommon:
		return 25
	case TierRare:
		return 15
	case TierEpic:
		return 10
	case TierLegendary:
		return 5
	case TierMythic:
		return 2
	}
	return 0
}

type Kind string

const (
	KindTool        Kind = "tool"
	KindConsumable  Kind = "consumable"
	KindCollectible Kind = "collectible"
	KindSeed        Kind = "seed"
)

// Stackable reports whether owned units of this kind share one record.
func (k Kind) Stackable() bool {
	switch k {
	case KindConsumable, KindCollectible, KindSeed:
		return true
	}
	return false
}

type EffectType string

const (
	EffectXP             EffectType = "xp"
	EffectWTC            EffectType = "wtc"
	EffectResetCooldowns EffectType = "reset_cooldowns"
)

// Effect is what a consumable does when used.
type Effect struct {
	Type EffectType `yaml:"type" json:"type"`
	Min  int64      `yaml:"min,omitempty" json:"min,omitempty"`
	Max  int64      `yaml:"max,omitempty" json:"max,omitempty"`
}

// Growth describes how a seed turns into a crop.
type Growth struct {
	CropID      string `yaml:"crop" json:"crop"`
	GrowSeconds int    `yaml:"grow_seconds" json:"grow_seconds"`
	YieldMin    int    `yaml:"yield_min" json:"yield_min"`
	YieldMax    int    `yaml:"yield_max" json:"yield_max"`
}

type Item struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Kind        Kind    `yaml:"kind" json:"kind"`
	Tier        Tier    `yaml:"tier" json:"tier"`
	Price       int64   `yaml:"price,omitempty" json:"price,omitempty"`
	SellPrice   int64   `yaml:"sell_price,omitempty" json:"sell_price,omitempty"`
	BreakChance float64 `yaml:"break_chance,omitempty" json:"break_chance,omitempty"`
	Effect      *Effect `yaml:"effect,omitempty" json:"effect,omitempty"`
	Growth      *Growth `yaml:"growth,omitempty" json:"growth,omitempty"`
}

func (it Item) Stackable() bool { return it.Kind.Stackable() }

// Purchasable items have a shop price.
func (it Item) Purchasable() bool { return it.Price > 0 }

// SellValue is what the shop pays per unit.
func (it Item) SellValue() int64 {
	if it.SellPrice > 0 {
		return it.SellPrice
	}
	return it.Price / 2
}

// Actions the engine counts alongside catalog activities.
const (
	ActionWork     = "work"
	ActionGarden   = "garden"
	ActionBuy      = "buy"
	ActionSell     = "sell"
	ActionUse      = "use"
	ActionDeposit  = "deposit"
	ActionWithdraw = "withdraw"
)

func IsBuiltinAction(id string) bool {
	switch id {
	case ActionWork, ActionGarden, ActionBuy, ActionSell, ActionUse, ActionDeposit, ActionWithdraw:
		return true
	}
	return false
}

type OutcomeKind string

const (
	OutcomeNothing OutcomeKind = "nothing"
	OutcomeItem    OutcomeKind = "item"
	OutcomeWTC     OutcomeKind = "wtc"
	OutcomeFine    OutcomeKind = "fine"
)

// PoolEntry is one weighted outcome of an activity roll.
type PoolEntry struct {
	Kind    OutcomeKind `yaml:"kind" json:"kind"`
	Item    string      `yaml:"item,omitempty" json:"item,omitempty"`
	Min     int64       `yaml:"min,omitempty" json:"min,omitempty"`
	Max     int64       `yaml:"max,omitempty" json:"max,omitempty"`
	Weight  int         `yaml:"weight" json:"weight"`
	Message string      `yaml:"message,omitempty" json:"message,omitempty"`
}

type Activity struct {
	ID              string                 `yaml:"id" json:"id"`
	Name            string                 `yaml:"name" json:"name"`
	CooldownSeconds int                    `yaml:"cooldown_seconds" json:"cooldown_seconds"`
	Tool            string                 `yaml:"tool,omitempty" json:"tool,omitempty"`
	XP              int64                  `yaml:"xp" json:"xp"`
	Pool            []PoolEntry            `yaml:"pool,omitempty" json:"pool,omitempty"`
	Variants        map[string][]PoolEntry `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// PoolFor returns the pool for a variant, or the base pool when the activity has no variants.
func (a Activity) PoolFor(variant string) ([]PoolEntry, bool) {
	if len(a.Variants) == 0 {
		return a.Pool, true
	}
	p, ok := a.Variants[strings.ToLower(strings.TrimSpace(variant))]
	return p, ok
}

// VariantNames returns variant keys in stable order.
func (a Activity) VariantNames() []string {
	out := make([]string, 0, len(a.Variants))
	for k := range a.Variants {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Job struct {
	ID              string `yaml:"id" json:"id"`
	Name            string `yaml:"name" json:"name"`
	Salary          int64  `yaml:"salary" json:"salary"`
	MinLevel        int    `yaml:"min_level" json:"min_level"`
	CooldownSeconds int    `yaml:"cooldown_seconds" json:"cooldown_seconds"`
	XP              int64  `yaml:"xp" json:"xp"`
}

type ItemGrant struct {
	Item string `yaml:"item" json:"item"`
	Qty  int    `yaml:"qty" json:"qty"`
}

// Reward is granted for achievements and level-ups.
type Reward struct {
	WTC   int64       `yaml:"wtc,omitempty" json:"wtc,omitempty"`
	XP    int64       `yaml:"xp,omitempty" json:"xp,omitempty"`
	Items []ItemGrant `yaml:"items,omitempty" json:"items,omitempty"`
	Title string      `yaml:"title,omitempty" json:"title,omitempty"`
}

func (r Reward) Empty() bool {
	return r.WTC == 0 && r.XP == 0 && len(r.Items) == 0 && r.Title == ""
}

type RequirementKind string

const (
	ReqActivityCount RequirementKind = "activity_count"
	ReqLevel         RequirementKind = "level"
	ReqTotalEarned   RequirementKind = "total_earned"
	ReqTotalSpent    RequirementKind = "total_spent"
	ReqNetWorth      RequirementKind = "net_worth"
	ReqItemCount     RequirementKind = "item_count"
	ReqAchievements  RequirementKind = "achievements"
)

type Requirement struct {
	Kind     RequirementKind `yaml:"kind" json:"kind"`
	Activity string          `yaml:"activity,omitempty" json:"activity,omitempty"`
	Item     string          `yaml:"item,omitempty" json:"item,omitempty"`
	Count    int64           `yaml:"count" json:"count"`
}

type Achievement struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Requirement Requirement `yaml:"requirement" json:"requirement"`
	Reward      Reward      `yaml:"reward" json:"reward"`
}

type Title struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type ShopConfig struct {
	Essentials              []string `yaml:"essentials" json:"essentials"`
	RotationSize            int      `yaml:"rotation_size" json:"rotation_size"`
	RotationIntervalSeconds int      `yaml:"rotation_interval_seconds" json:"rotation_interval_seconds"`
}

// Catalog is every static definition the game reads.
type Catalog struct {
	Items        []Item         `yaml:"items" json:"items"`
	Activities   []Activity     `yaml:"activities" json:"activities"`
	Jobs         []Job          `yaml:"jobs" json:"jobs"`
	Achievements []Achievement  `yaml:"achievements" json:"achievements"`
	Titles       []Title        `yaml:"titles" json:"titles"`
	LevelRewards map[int]Reward `yaml:"level_rewards" json:"level_rewards"`
	Shop         ShopConfig     `yaml:"shop" json:"shop"`
}

func (c *Catalog) Item(id string) (Item, error) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrUnknownItem, id)
}

func (c *Catalog) Activity(id string) (Activity, error) {
	for _, a := range c.Activities {
		if a.ID == id {
			return a, nil
		}
	}
	return Activity{}, fmt.Errorf("%w: %s", ErrUnknownActivity, id)
}

func (c *Catalog) Job(id string) (Job, error) {
	for _, j := range c.Jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return Job{}, fmt.Errorf("%w: %s", ErrUnknownJob, id)
}

func (c *Catalog) Achievement(id string) (Achievement, error) {
	for _, a := range c.Achievements {
		if a.ID == id {
			return a, nil
		}
	}
	return Achievement{}, fmt.Errorf("%w: %s", ErrUnknownAchievement, id)
}

func (c *Catalog) Title(id string) (Title, error) {
	for _, t := range c.Titles {
		if t.ID == id {
			return t, nil
		}
	}
	return Title{}, fmt.Errorf("%w: %s", ErrUnknownTitle, id)
}

// RotationCandidates are purchasable items that are not essentials.
func (c *Catalog) RotationCandidates() []Item {
	essential := make(map[string]bool, len(c.Shop.Essentials))
	for _, id := range c.Shop.Essentials {
		essential[id] = true
	}
	out := []Item{}
	for _, it := range c.Items {
		if it.Purchasable() && !essential[it.ID] {
			out = append(out, it)
		}
	}
	return out
}
