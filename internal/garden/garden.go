package garden

import (
	"errors"
	"fmt"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
	"github.com/codenameoperative/what-is-life-sub001/internal/loot"
)

var (
	ErrNoSuchPlot   = errors.New("no such plot")
	ErrPlotOccupied = errors.New("plot occupied")
	ErrPlotEmpty    = errors.New("plot empty")
	ErrNotReady     = errors.New("crop not ready")
	ErrNotASeed     = errors.New("item is not a seed")
)

// Plot is empty when SeedID is blank.
type Plot struct {
	SeedID    string `json:"seed_id,omitempty"`
	PlantedAt int64  `json:"planted_at,omitempty"`
	ReadyAt   int64  `json:"ready_at,omitempty"`
}

func (p Plot) Empty() bool { return p.SeedID == "" }

func (p Plot) Ready(now time.Time) bool {
	return !p.Empty() && now.UnixMilli() >= p.ReadyAt
}

type Garden struct {
	Plots []Plot `json:"plots"`
}

func New(plots int) Garden {
	return Garden{Plots: make([]Plot, plots)}
}

func (g Garden) Clone() Garden {
	return Garden{Plots: append([]Plot{}, g.Plots...)}
}

// Resize grows or shrinks the garden to n plots. Shrinking drops trailing plots.
func (g *Garden) Resize(n int) {
	if n < 0 {
		n = 0
	}
	for len(g.Plots) < n {
		g.Plots = append(g.Plots, Plot{})
	}
	if len(g.Plots) > n {
		g.Plots = g.Plots[:n]
	}
}

func (g *Garden) plot(i int) (*Plot, error) {
	if i < 0 || i >= len(g.Plots) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchPlot, i)
	}
	return &g.Plots[i], nil
}

// Plant puts seed into plot i. The caller removes the seed from inventory.
func (g *Garden) Plant(i int, seed catalog.Item, now time.Time) error {
	if seed.Kind != catalog.KindSeed || seed.Growth == nil {
		return fmt.Errorf("%w: %s", ErrNotASeed, seed.ID)
	}
	p, err := g.plot(i)
	if err != nil {
		return err
	}
	if !p.Empty() {
		return fmt.Errorf("%w: %d", ErrPlotOccupied, i)
	}
	grow := time.Duration(seed.Growth.GrowSeconds) * time.Second
	*p = Plot{
		SeedID:    seed.ID,
		PlantedAt: now.UnixMilli(),
		ReadyAt:   now.Add(grow).UnixMilli(),
	}
	return nil
}

// Harvest is what a ready plot produced.
type Harvest struct {
	Plot   int    `json:"plot"`
	SeedID string `json:"seed_id"`
	CropID string `json:"crop_id"`
	Qty    int    `json:"qty"`
}

// Harvest empties a ready plot. seedOf resolves the planted seed's definition.
func (g *Garden) Harvest(i int, seedOf func(id string) (catalog.Item, error), rng loot.RNG, now time.Time) (Harvest, error) {
	p, err := g.plot(i)
	if err != nil {
		return Harvest{}, err
	}
	if p.Empty() {
		return Harvest{}, fmt.Errorf("%w: %d", ErrPlotEmpty, i)
	}
	if !p.Ready(now) {
		left := time.Duration(p.ReadyAt-now.UnixMilli()) * time.Millisecond
		return Harvest{}, fmt.Errorf("%w: %s left", ErrNotReady, left.Round(time.Second))
	}
	seed, err := seedOf(p.SeedID)
	if err != nil {
		return Harvest{}, err
	}
	if seed.Growth == nil {
		return Harvest{}, fmt.Errorf("%w: %s", ErrNotASeed, seed.ID)
	}
	qty := int(loot.Between(rng, int64(seed.Growth.YieldMin), int64(seed.Growth.YieldMax)))
	if qty < 1 {
		qty = 1
	}
	h := Harvest{Plot: i, SeedID: seed.ID, CropID: seed.Growth.CropID, Qty: qty}
	*p = Plot{}
	return h, nil
}

// ReadyPlots lists the indexes of plots that can be harvested.
func (g Garden) ReadyPlots(now time.Time) []int {
	out := []int{}
	for i, p := range g.Plots {
		if p.Ready(now) {
			out = append(out, i)
		}
	}
	return out
}
