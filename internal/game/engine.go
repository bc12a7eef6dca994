package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/achievement"
	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
	"github.com/codenameoperative/what-is-life-sub001/internal/config"
	"github.com/codenameoperative/what-is-life-sub001/internal/garden"
	"github.com/codenameoperative/what-is-life-sub001/internal/loot"
	"github.com/codenameoperative/what-is-life-sub001/internal/notice"
	"github.com/codenameoperative/what-is-life-sub001/internal/player"
	"github.com/codenameoperative/what-is-life-sub001/internal/save"
	"github.com/codenameoperative/what-is-life-sub001/internal/telemetry"
)

type Engine struct {
	Store    *Store
	Config   *config.Config
	Saves    save.Repository
	Events   telemetry.Repository
	Clock    Clock
	RNG      loot.RNG
	Logger   *log.Logger
	Autosave bool
}

// Result is what a player action produced.
type Result struct {
	State    State            `json:"state"`
	Messages []string         `json:"messages,omitempty"`
	Drop     *loot.Drop       `json:"drop,omitempty"`
	Moved    int64            `json:"moved,omitempty"`
	LevelUps []int            `json:"level_ups,omitempty"`
	Unlocked []string         `json:"unlocked,omitempty"`
	Harvest  *garden.Harvest  `json:"harvest,omitempty"`
	Notices  []notice.Notice  `json:"notices,omitempty"`
	events   []pendingEvent
}

type pendingEvent struct {
	typ  telemetry.EventType
	meta telemetry.EventMetadata
}

func (r *Result) event(t telemetry.EventType, meta telemetry.EventMetadata) {
	r.events = append(r.events, pendingEvent{typ: t, meta: meta})
}

func (r *Result) say(format string, args ...any) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

func (r *Result) toast(n notice.Notice) {
	r.Notices = append(r.Notices, n)
}

func (e Engine) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e Engine) catalog() *catalog.Catalog {
	return &e.Config.Catalog
}

func (e Engine) curve() player.Curve {
	b := e.Config.Balance
	return player.Curve{Cap: b.LevelCap, Base: b.BaseXPThreshold, Multiplier: b.ThresholdMultiplier}
}

func scale(v int64, mult float64) int64 {
	if mult <= 0 || mult == 1 {
		return v
	}
	return int64(math.Floor(float64(v) * mult))
}

// act runs one player action as a single store update, then records telemetry
// and autosaves. A failed action leaves the state untouched.
func (e Engine) act(ctx context.Context, fn func(s *State, r *Result) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	var r Result
	st, err := e.Store.Dispatch(func(s *State) error {
		r = Result{}
		if err := fn(s, &r); err != nil {
			return err
		}
		if err := e.progress(s, &r); err != nil {
			return err
		}
		s.UpdatedAt = e.now().UnixMilli()
		return nil
	})
	if err != nil {
		return Result{State: st}, err
	}
	r.State = st
	e.record(r.events)
	r.events = nil
	if e.Autosave {
		if n := e.persist(ctx, st); n != nil {
			r.toast(*n)
		}
	}
	return r, nil
}

// progress unlocks achievements until none are left to unlock. Rewards can
// satisfy further achievements, so it loops.
func (e Engine) progress(s *State, r *Result) error {
	c := e.catalog()
	for round := 0; round <= len(c.Achievements); round++ {
		newly, err := achievement.Newly(c.Achievements, s.Profile.HasAchievement,
			achievement.SnapshotEvaluator{S: s.Snapshot(e.Config)})
		if err != nil {
			return err
		}
		if len(newly) == 0 {
			return nil
		}
		for _, a := range newly {
			if !s.Profile.Unlock(a.ID) {
				continue
			}
			r.Unlocked = append(r.Unlocked, a.ID)
			r.event(telemetry.EventAchievement, telemetry.EventMetadata{"achievement": a.ID})
			r.toast(notice.Success("Achievement unlocked: %s", a.Name))
			e.grant(s, r, a.Reward)
		}
	}
	return nil
}

func (e Engine) earn(s *State, amount int64) {
	if amount <= 0 {
		return
	}
	s.Balances.Earn(amount)
	s.Profile.Earned(amount)
}

// grantXP adds XP and pays out every level reached.
func (e Engine) grantXP(s *State, r *Result, xp int64) {
	if xp <= 0 {
		return
	}
	for _, lvl := range s.Profile.AddXP(xp, e.curve()) {
		r.LevelUps = append(r.LevelUps, lvl)
		r.event(telemetry.EventLevelUp, telemetry.EventMetadata{"level": lvl})

		rw := catalog.Reward{WTC: int64(lvl) * e.Config.Balance.LevelRewardPerLevel}
		if extra, ok := e.catalog().LevelRewards[lvl]; ok {
			rw.WTC += extra.WTC
			rw.XP = extra.XP
			rw.Items = extra.Items
			rw.Title = extra.Title
		}
		r.toast(notice.Success("Level up! You reached level %d and earned %s", lvl, notice.FormatWTC(rw.WTC)))
		e.grant(s, r, rw)
	}
}

func (e Engine) grant(s *State, r *Result, rw catalog.Reward) {
	e.earn(s, rw.WTC)
	for _, g := range rw.Items {
		def, err := e.catalog().Item(g.Item)
		if err != nil {
			e.logJSON(map[string]any{"msg": "reward item missing", "item": g.Item, "err": err.Error()})
			continue
		}
		qty := g.Qty
		if qty <= 0 {
			qty = 1
		}
		if err := s.Inventory.Add(def, qty); err == nil {
			r.say("Received %d x %s", qty, def.Name)
		}
	}
	if rw.Title != "" && s.Profile.GrantTitle(rw.Title) {
		name := rw.Title
		if t, err := e.catalog().Title(rw.Title); err == nil {
			name = t.Name
		}
		r.toast(notice.Info("New title available: %s", name))
	}
	e.grantXP(s, r, rw.XP)
}

func (e Engine) record(events []pendingEvent) {
	if e.Events == nil {
		return
	}
	for _, ev := range events {
		if err := e.Events.RecordEvent(ev.typ, ev.meta); err != nil {
			e.logJSON(map[string]any{"msg": "telemetry record failed", "type": string(ev.typ), "err": err.Error()})
		}
	}
}

// persist writes the state. Failures are logged and returned as a toast; the
// action that triggered the save still stands.
func (e Engine) persist(ctx context.Context, st State) *notice.Notice {
	if e.Saves == nil {
		return nil
	}
	err := e.save(ctx, st)
	if err == nil {
		return nil
	}
	e.logJSON(map[string]any{"msg": "save failed", "player_id": st.PlayerID, "err": err.Error()})
	e.record([]pendingEvent{{typ: telemetry.EventSaveFailed, meta: telemetry.EventMetadata{"err": err.Error()}}})
	n := notice.Warn("Could not save your progress: %v", err)
	return &n
}

func (e Engine) save(ctx context.Context, st State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return e.Saves.Save(ctx, st.PlayerID, b)
}

// Save writes the current state now.
func (e Engine) Save(ctx context.Context) error {
	if e.Saves == nil {
		return errors.New("no save repository configured")
	}
	return e.save(ctx, e.Store.Snapshot())
}

// Snapshot returns a copy of the current state.
func (e Engine) Snapshot() State {
	return e.Store.Snapshot()
}

// Load replaces the store with playerID's save. A missing save starts a new
// game; an unreadable one is logged and replaced by a new game.
func (e Engine) Load(ctx context.Context, playerID string) (Result, error) {
	var r Result
	now := e.now()
	st := NewState(e.Config, playerID, now)

	if e.Saves != nil {
		b, err := e.Saves.Load(ctx, playerID)
		switch {
		case err == nil:
			loaded, derr := e.decodeState(b)
			if derr != nil {
				e.logJSON(map[string]any{"msg": "corrupted save, starting fresh", "player_id": playerID, "err": derr.Error()})
				r.toast(notice.Warn("Your save could not be read, so a new game was started."))
				break
			}
			st = loaded
			st.PlayerID = playerID
		case errors.Is(err, save.ErrNotFound):
			r.toast(notice.Info("Welcome! A new game has started."))
		default:
			return Result{}, fmt.Errorf("load save: %w", err)
		}
	}

	if st.Shop.Rotations == 0 {
		st.Shop.Rotate(e.catalog(), e.RNG, now)
	}
	r.State = e.Store.Replace(st)
	return r, nil
}

func (e Engine) decodeState(b []byte) (State, error) {
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if st.Profile.Level <= 0 && st.CreatedAt == 0 {
		return State{}, fmt.Errorf("%w: empty document", ErrInvalidSave)
	}
	return Normalize(st, e.Config), nil
}

// Export encodes the current state for copy and paste.
func (e Engine) Export(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := json.Marshal(e.Store.Snapshot())
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	return save.Encode(e.Config.Version, b)
}

// Import replaces the current state with an exported one after validating it.
func (e Engine) Import(ctx context.Context, blob string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	env, err := save.Decode(blob, e.Config.Version)
	if err != nil {
		return Result{}, err
	}
	st, err := e.decodeState(env.State)
	if err != nil {
		return Result{}, err
	}
	st.PlayerID = e.Store.Snapshot().PlayerID

	r := Result{State: e.Store.Replace(st)}
	e.record([]pendingEvent{{typ: telemetry.EventStateImported, meta: telemetry.EventMetadata{"version": env.Version}}})
	r.toast(notice.Success("Save imported."))
	if n := e.persist(ctx, r.State); n != nil {
		r.toast(*n)
	}
	return r, nil
}

// Reset throws the current game away and starts over under the same player id.
func (e Engine) Reset(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := e.now()
	st, err := e.Store.Dispatch(func(s *State) error {
		fresh := NewState(e.Config, s.PlayerID, now)
		fresh.Shop.Rotate(e.catalog(), e.RNG, now)
		*s = fresh
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	r := Result{State: st}
	e.record([]pendingEvent{{typ: telemetry.EventStateReset, meta: telemetry.EventMetadata{"player_id": st.PlayerID}}})
	r.toast(notice.Info("Progress reset."))
	if n := e.persist(ctx, st); n != nil {
		r.toast(*n)
	}
	return r, nil
}
