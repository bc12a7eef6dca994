package game

import (
	"context"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/achievement"
	"github.com/codenameoperative/what-is-life-sub001/internal/notice"
	"github.com/codenameoperative/what-is-life-sub001/internal/shop"
	"github.com/codenameoperative/what-is-life-sub001/internal/telemetry"
)

// TickResult reports what a scheduler tick changed.
type TickResult struct {
	Changed    bool   `json:"changed"`
	Rotated    bool   `json:"rotated"`
	ReadyPlots []int  `json:"ready_plots,omitempty"`
	Result     Result `json:"result"`
}

func tickDue(s State, now time.Time) bool {
	ms := now.UnixMilli()
	if s.Shop.NextRotationAt == 0 || ms >= s.Shop.NextRotationAt {
		return true
	}
	for _, p := range s.Garden.Plots {
		if !p.Empty() && p.ReadyAt > s.LastTickAt && p.ReadyAt <= ms {
			return true
		}
	}
	return false
}

// Tick rotates the shop once its countdown is over and announces plots that
// became ready since the last tick. A tick with nothing due commits nothing.
func (e Engine) Tick(ctx context.Context) (TickResult, error) {
	now := e.now()
	if !tickDue(e.Store.Snapshot(), now) {
		return TickResult{}, nil
	}

	var tr TickResult
	r, err := e.act(ctx, func(s *State, r *Result) error {
		tr = TickResult{}
		ms := now.UnixMilli()
		if s.Shop.Refresh(e.catalog(), e.RNG, now) {
			tr.Rotated = true
			r.event(telemetry.EventShopRotated, telemetry.EventMetadata{"rotating": s.Shop.Rotating})
			r.toast(notice.Info("The shop has new stock."))
		}
		for i, p := range s.Garden.Plots {
			if !p.Empty() && p.ReadyAt > s.LastTickAt && p.ReadyAt <= ms {
				tr.ReadyPlots = append(tr.ReadyPlots, i)
				r.toast(notice.Info("Plot %d is ready to harvest.", i+1))
			}
		}
		s.LastTickAt = ms
		return nil
	})
	if err != nil {
		return TickResult{}, err
	}
	tr.Changed = true
	tr.Result = r
	return tr, nil
}

// ShopView is the storefront as the player sees it.
type ShopView struct {
	Listings         []shop.Listing `json:"listings"`
	NextRotationAt   int64          `json:"next_rotation_at"`
	SecondsRemaining int64          `json:"seconds_remaining"`
}

// Shop returns the current stock, rotating first if the countdown already ran out.
func (e Engine) Shop(ctx context.Context) (ShopView, error) {
	now := e.now()
	st := e.Store.Snapshot()
	if st.Shop.NextRotationAt == 0 || now.UnixMilli() >= st.Shop.NextRotationAt {
		tr, err := e.Tick(ctx)
		if err != nil {
			return ShopView{}, err
		}
		if tr.Changed {
			st = tr.Result.State
		}
	}
	return ShopView{
		Listings:         st.Shop.Listings(e.catalog()),
		NextRotationAt:   st.Shop.NextRotationAt,
		SecondsRemaining: int64(st.Shop.Remaining(now) / time.Second),
	}, nil
}

// Achievements reports progress on every achievement.
func (e Engine) Achievements() ([]achievement.Status, error) {
	st := e.Store.Snapshot()
	return achievement.Board(e.catalog().Achievements, st.Profile.HasAchievement,
		achievement.SnapshotEvaluator{S: st.Snapshot(e.Config)})
}
