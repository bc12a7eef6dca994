package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/config"
	"github.com/codenameoperative/what-is-life-sub001/internal/loot"
	"github.com/codenameoperative/what-is-life-sub001/internal/save"
	"github.com/codenameoperative/what-is-life-sub001/internal/telemetry"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// scriptRNG replays fixed rolls. Once empty, Intn returns 0 and Float64 0.999
// so tools never break unless a test asks for it.
type scriptRNG struct {
	ints   []int
	floats []float64
}

func (s *scriptRNG) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptRNG) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.999
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

type testEngine struct {
	Engine
	clock  *FakeClock
	saves  *save.MemoryRepo
	events *telemetry.MemoryRepository
}

func newTestEngine(t *testing.T, rng loot.RNG) testEngine {
	t.Helper()
	if rng == nil {
		rng = rand.New(rand.NewSource(42))
	}
	cfg := config.Default()
	clock := NewFakeClock(start)
	saves := save.NewMemoryRepo()
	events := telemetry.NewMemoryRepository().WithClock(clock.Now)

	e := Engine{
		Store:    NewStore(NewState(cfg, "player-1", start)),
		Config:   cfg,
		Saves:    saves,
		Events:   events,
		Clock:    clock,
		RNG:      rng,
		Autosave: true,
	}
	return testEngine{Engine: e, clock: clock, saves: saves, events: events}
}

// give puts items into the inventory without going through an action.
func (te testEngine) give(t *testing.T, itemID string, qty int) {
	t.Helper()
	def, err := te.Config.Catalog.Item(itemID)
	require.NoError(t, err)
	_, err = te.Store.Dispatch(func(s *State) error { return s.Inventory.Add(def, qty) })
	require.NoError(t, err)
}

func (te testEngine) setWallet(t *testing.T, wallet int64) {
	t.Helper()
	_, err := te.Store.Dispatch(func(s *State) error {
		s.Balances.Wallet = wallet
		return nil
	})
	require.NoError(t, err)
}

func (te testEngine) setPrice(itemID string, price int64) {
	for i := range te.Config.Items {
		if te.Config.Items[i].ID == itemID {
			te.Config.Items[i].Price = price
		}
	}
}

func (te testEngine) countEvents(t *testing.T, typ telemetry.EventType) int {
	t.Helper()
	evs, err := te.events.GetEvents(time.Time{}, []telemetry.EventType{typ})
	require.NoError(t, err)
	return len(evs)
}

// failingRepo fails every write.
type failingRepo struct {
	*save.MemoryRepo
}

func (failingRepo) Save(ctx context.Context, playerID string, blob []byte) error {
	return errors.New("disk full")
}
