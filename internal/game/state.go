package game

import (
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/achievement"
	"github.com/codenameoperative/what-is-life-sub001/internal/config"
	"github.com/codenameoperative/what-is-life-sub001/internal/garden"
	"github.com/codenameoperative/what-is-life-sub001/internal/inventory"
	"github.com/codenameoperative/what-is-life-sub001/internal/job"
	"github.com/codenameoperative/what-is-life-sub001/internal/player"
	"github.com/codenameoperative/what-is-life-sub001/internal/shop"
	"github.com/codenameoperative/what-is-life-sub001/internal/wallet"
)

// State is everything a save holds. Times are unix milliseconds.
type State struct {
	Version    string              `json:"version"`
	PlayerID   string              `json:"player_id"`
	Balances   wallet.Balances     `json:"balances"`
	Inventory  inventory.Inventory `json:"inventory"`
	Profile    player.Profile      `json:"profile"`
	Shop       shop.Shop           `json:"shop"`
	Employment job.Employment      `json:"employment"`
	Garden     garden.Garden       `json:"garden"`
	Cooldowns  map[string]int64    `json:"cooldowns"`
	CreatedAt  int64               `json:"created_at"`
	UpdatedAt  int64               `json:"updated_at"`
	LastTickAt int64               `json:"last_tick_at"`
}

// NewState is a fresh game for playerID.
func NewState(cfg *config.Config, playerID string, now time.Time) State {
	ms := now.UnixMilli()
	return State{
		Version:    cfg.Version,
		PlayerID:   playerID,
		Balances:   wallet.Balances{Wallet: cfg.Balance.StartingWallet},
		Inventory:  inventory.New(),
		Profile:    player.NewProfile(cfg.Balance.BaseXPThreshold),
		Shop:       shop.New(cfg.Shop),
		Employment: job.Employment{},
		Garden:     garden.New(cfg.Balance.GardenPlots),
		Cooldowns:  map[string]int64{},
		CreatedAt:  ms,
		UpdatedAt:  ms,
		LastTickAt: ms,
	}
}

// Normalize fills anything a decoded state is missing so the engine never sees nil maps.
func Normalize(s State, cfg *config.Config) State {
	if s.Version == "" {
		s.Version = cfg.Version
	}
	if s.Balances.Wallet < 0 {
		s.Balances.Wallet = 0
	}
	if s.Balances.Bank < 0 {
		s.Balances.Bank = 0
	}
	if s.Balances.Stash < 0 {
		s.Balances.Stash = 0
	}

	s.Inventory = inventory.Normalize(s.Inventory)

	s.Profile = player.Normalize(s.Profile, cfg.Balance.BaseXPThreshold)
	if s.Profile.Level > cfg.Balance.LevelCap {
		s.Profile.Level = cfg.Balance.LevelCap
	}

	if s.Shop.Essentials == nil {
		s.Shop.Essentials = append([]string{}, cfg.Shop.Essentials...)
	}
	if s.Shop.Rotating == nil {
		s.Shop.Rotating = []string{}
	}

	s.Garden.Resize(cfg.Balance.GardenPlots)

	if s.Cooldowns == nil {
		s.Cooldowns = map[string]int64{}
	}
	return s
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Inventory = s.Inventory.Clone()
	out.Profile = s.Profile.Clone()
	out.Shop = s.Shop.Clone()
	out.Garden = s.Garden.Clone()
	out.Cooldowns = make(map[string]int64, len(s.Cooldowns))
	for k, v := range s.Cooldowns {
		out.Cooldowns[k] = v
	}
	return out
}

// NetWorth is every balance plus the sell value of the inventory.
func (s State) NetWorth(cfg *config.Config) int64 {
	return s.Balances.Total() + s.Inventory.Value(&cfg.Catalog)
}

// Snapshot is what achievements are checked against.
func (s State) Snapshot(cfg *config.Config) achievement.Snapshot {
	return achievement.Snapshot{
		Level:       s.Profile.Level,
		TotalEarned: s.Profile.TotalEarned,
		TotalSpent:  s.Profile.TotalSpent,
		NetWorth:    s.NetWorth(cfg),
		Activity:    s.Profile.Activity,
		Items:       s.Inventory.Totals(),
		Unlocked:    len(s.Profile.Achievements),
	}
}

// CooldownRemaining is how long until an activity may run again.
func (s State) CooldownRemaining(activity string, now time.Time) time.Duration {
	until, ok := s.Cooldowns[activity]
	if !ok {
		return 0
	}
	d := time.Duration(until-now.UnixMilli()) * time.Millisecond
	if d < 0 {
		return 0
	}
	return d
}
