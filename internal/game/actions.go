package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
	"github.com/codenameoperative/what-is-life-sub001/internal/inventory"
	"github.com/codenameoperative/what-is-life-sub001/internal/job"
	"github.com/codenameoperative/what-is-life-sub001/internal/loot"
	"github.com/codenameoperative/what-is-life-sub001/internal/notice"
	"github.com/codenameoperative/what-is-life-sub001/internal/shop"
	"github.com/codenameoperative/what-is-life-sub001/internal/telemetry"
	"github.com/codenameoperative/what-is-life-sub001/internal/wallet"
)

const harvestXP int64 = 6

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

func (e Engine) transfer(ctx context.Context, amount float64, from, to wallet.Account, action string) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		moved := wallet.Transfer(&s.Balances, amount, from, to)
		r.Moved = moved
		if moved == 0 {
			r.say("Nothing to move.")
			return nil
		}
		if action != "" {
			s.Profile.Count(action)
		}
		r.event(telemetry.EventTransfer, telemetry.EventMetadata{"from": string(from), "to": string(to), "wtc": moved})
		r.say("Moved %s from %s to %s.", notice.FormatWTC(moved), from, to)
		return nil
	})
}

// Deposit moves WTC from the wallet to the bank. Invalid amounts move nothing.
func (e Engine) Deposit(ctx context.Context, amount float64) (Result, error) {
	return e.transfer(ctx, amount, wallet.AccountWallet, wallet.AccountBank, catalog.ActionDeposit)
}

func (e Engine) Withdraw(ctx context.Context, amount float64) (Result, error) {
	return e.transfer(ctx, amount, wallet.AccountBank, wallet.AccountWallet, catalog.ActionWithdraw)
}

func (e Engine) Stash(ctx context.Context, amount float64) (Result, error) {
	return e.transfer(ctx, amount, wallet.AccountWallet, wallet.AccountStash, "")
}

func (e Engine) Unstash(ctx context.Context, amount float64) (Result, error) {
	return e.transfer(ctx, amount, wallet.AccountStash, wallet.AccountWallet, "")
}

// Buy purchases qty of an in-stock item. A short wallet fails without charging.
func (e Engine) Buy(ctx context.Context, itemID string, qty int) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		def, err := e.catalog().Item(itemID)
		if err != nil {
			return err
		}
		s.Shop.Refresh(e.catalog(), e.RNG, e.now())
		cost, err := s.Shop.Buy(&s.Balances, &s.Inventory, def, qty)
		if err != nil {
			return err
		}
		s.Profile.Spent(cost)
		s.Profile.Count(catalog.ActionBuy)
		r.event(telemetry.EventPurchase, telemetry.EventMetadata{"item": def.ID, "qty": qty, "wtc": cost})
		r.say("Bought %d x %s for %s.", qty, def.Name, notice.FormatWTC(cost))
		return nil
	})
}

func (e Engine) Sell(ctx context.Context, itemID string, qty int) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		def, err := e.catalog().Item(itemID)
		if err != nil {
			return err
		}
		payout, err := shop.Sell(&s.Balances, &s.Inventory, def, qty)
		if err != nil {
			return err
		}
		s.Profile.Earned(payout)
		s.Profile.Count(catalog.ActionSell)
		r.event(telemetry.EventSale, telemetry.EventMetadata{"item": def.ID, "qty": qty, "wtc": payout})
		r.say("Sold %d x %s for %s.", qty, def.Name, notice.FormatWTC(payout))
		return nil
	})
}

// UseItem applies a consumable's effect and consumes one unit.
func (e Engine) UseItem(ctx context.Context, itemID string) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		def, err := e.catalog().Item(itemID)
		if err != nil {
			return err
		}
		if !s.Inventory.Has(def.ID, 1) {
			return fmt.Errorf("%w: %s", inventory.ErrNotOwned, def.ID)
		}
		if def.Kind != catalog.KindConsumable || def.Effect == nil {
			return fmt.Errorf("%w: %s", ErrNotUsable, def.ID)
		}

		switch def.Effect.Type {
		case catalog.EffectXP:
			xp := loot.Between(e.RNG, def.Effect.Min, def.Effect.Max)
			r.say("You used %s and gained %d XP.", def.Name, xp)
			e.grantXP(s, r, xp)
		case catalog.EffectWTC:
			wtc := loot.Between(e.RNG, def.Effect.Min, def.Effect.Max)
			e.earn(s, wtc)
			r.say("You opened %s and found %s.", def.Name, notice.FormatWTC(wtc))
		case catalog.EffectResetCooldowns:
			s.Cooldowns = map[string]int64{}
			s.Employment.NextShiftAt = 0
			r.say("You used %s. All cooldowns are reset.", def.Name)
		default:
			return fmt.Errorf("%w: %s has unknown effect %s", ErrNotUsable, def.ID, def.Effect.Type)
		}

		// a stack loses one unit per use, not the whole record
		if err := s.Inventory.Remove(def.ID, 1); err != nil {
			return err
		}
		s.Profile.Count(catalog.ActionUse)
		r.event(telemetry.EventItemUsed, telemetry.EventMetadata{"item": def.ID, "remaining": s.Inventory.Count(def.ID)})
		return nil
	})
}

// RunActivity performs hunt, fish, dig and the like. variant picks a location
// for activities that have them.
func (e Engine) RunActivity(ctx context.Context, activityID, variant string) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		act, err := e.catalog().Activity(activityID)
		if err != nil {
			return err
		}
		now := e.now()
		if left := s.CooldownRemaining(act.ID, now); left > 0 {
			return &CooldownError{Activity: act.ID, Remaining: left}
		}

		var tool catalog.Item
		if act.Tool != "" {
			tool, err = e.catalog().Item(act.Tool)
			if err != nil {
				return err
			}
			if !s.Inventory.Has(tool.ID, 1) {
				return fmt.Errorf("%w: %s needs a %s", ErrMissingTool, act.ID, tool.Name)
			}
		}

		pool, ok := act.PoolFor(variant)
		if !ok {
			return fmt.Errorf("%w: %s has no %q (try %s)", ErrUnknownVariant, act.ID, variant, strings.Join(act.VariantNames(), ", "))
		}

		drop := loot.Scale(loot.Table(pool).Roll(e.RNG), e.Config.Balance.PayoutMultiplier)
		if err := e.applyDrop(s, r, drop); err != nil {
			return err
		}
		r.Drop = &drop

		if act.Tool != "" {
			res, err := s.Inventory.Use(tool, e.RNG)
			if err != nil {
				return err
			}
			if res.Broke {
				r.event(telemetry.EventToolBroke, telemetry.EventMetadata{"item": tool.ID, "activity": act.ID})
				r.toast(notice.Warn("Your %s broke!", tool.Name))
			}
		}

		s.Cooldowns[act.ID] = now.Add(secs(act.CooldownSeconds)).UnixMilli()
		s.Profile.Count(act.ID)
		r.event(telemetry.EventActivity, telemetry.EventMetadata{"activity": act.ID, "variant": variant, "outcome": string(drop.Kind)})
		e.grantXP(s, r, scale(act.XP, e.Config.Balance.XPMultiplier))
		return nil
	})
}

func (e Engine) applyDrop(s *State, r *Result, d loot.Drop) error {
	switch d.Kind {
	case catalog.OutcomeItem:
		def, err := e.catalog().Item(d.Item)
		if err != nil {
			return err
		}
		if err := s.Inventory.Add(def, d.Qty); err != nil {
			return err
		}
		r.event(telemetry.EventLootCollected, telemetry.EventMetadata{"item": def.ID, "qty": d.Qty})
		if d.Message != "" {
			r.say("%s", d.Message)
		} else {
			r.say("You got %d x %s!", d.Qty, def.Name)
		}
	case catalog.OutcomeWTC:
		e.earn(s, d.WTC)
		r.event(telemetry.EventLootCollected, telemetry.EventMetadata{"wtc": d.WTC})
		if d.Message != "" {
			r.say("%s", d.Message)
		}
		r.say("You found %s.", notice.FormatWTC(d.WTC))
	case catalog.OutcomeFine:
		taken := s.Balances.Fine(d.WTC)
		r.event(telemetry.EventFined, telemetry.EventMetadata{"wtc": taken})
		if d.Message != "" {
			r.say("%s", d.Message)
		}
		r.say("You lost %s.", notice.FormatWTC(taken))
	default:
		if d.Message != "" {
			r.say("%s", d.Message)
		} else {
			r.say("You found nothing.")
		}
	}
	return nil
}

func (e Engine) ApplyJob(ctx context.Context, jobID string) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		j, err := e.catalog().Job(jobID)
		if err != nil {
			return err
		}
		if err := s.Employment.Apply(j, s.Profile.Level, e.now()); err != nil {
			return err
		}
		r.event(telemetry.EventJobApplied, telemetry.EventMetadata{"job": j.ID})
		r.say("You are now working as a %s.", j.Name)
		return nil
	})
}

// Work completes a shift at the current job.
func (e Engine) Work(ctx context.Context) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		if !s.Employment.Employed() {
			return job.ErrNotEmployed
		}
		j, err := e.catalog().Job(s.Employment.JobID)
		if err != nil {
			return err
		}
		pay, err := s.Employment.Work(j, e.now())
		if err != nil {
			return err
		}
		pay = scale(pay, e.Config.Balance.PayoutMultiplier)
		e.earn(s, pay)
		s.Profile.Count(catalog.ActionWork)
		r.event(telemetry.EventShiftWorked, telemetry.EventMetadata{"job": j.ID, "wtc": pay})
		r.say("You worked a shift as a %s and earned %s.", j.Name, notice.FormatWTC(pay))
		e.grantXP(s, r, scale(j.XP, e.Config.Balance.XPMultiplier))
		return nil
	})
}

func (e Engine) QuitJob(ctx context.Context) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		id := s.Employment.JobID
		if err := s.Employment.Quit(); err != nil {
			return err
		}
		r.event(telemetry.EventJobQuit, telemetry.EventMetadata{"job": id})
		r.say("You quit your job.")
		return nil
	})
}

// Plant moves one seed from the inventory into an empty plot.
func (e Engine) Plant(ctx context.Context, plot int, seedID string) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		def, err := e.catalog().Item(seedID)
		if err != nil {
			return err
		}
		if !s.Inventory.Has(def.ID, 1) {
			return fmt.Errorf("%w: %s", inventory.ErrNotOwned, def.ID)
		}
		if err := s.Garden.Plant(plot, def, e.now()); err != nil {
			return err
		}
		if err := s.Inventory.Remove(def.ID, 1); err != nil {
			return err
		}
		r.event(telemetry.EventPlanted, telemetry.EventMetadata{"seed": def.ID, "plot": plot})
		r.say("Planted %s in plot %d.", def.Name, plot+1)
		return nil
	})
}

func (e Engine) Harvest(ctx context.Context, plot int) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		h, err := s.Garden.Harvest(plot, e.catalog().Item, e.RNG, e.now())
		if err != nil {
			return err
		}
		crop, err := e.catalog().Item(h.CropID)
		if err != nil {
			return err
		}
		if err := s.Inventory.Add(crop, h.Qty); err != nil {
			return err
		}
		r.Harvest = &h
		s.Profile.Count(catalog.ActionGarden)
		r.event(telemetry.EventHarvested, telemetry.EventMetadata{"item": crop.ID, "qty": h.Qty})
		r.say("Harvested %d x %s.", h.Qty, crop.Name)
		e.grantXP(s, r, scale(harvestXP, e.Config.Balance.XPMultiplier))
		return nil
	})
}

// EquipTitle equips an unlocked title; an empty id unequips.
func (e Engine) EquipTitle(ctx context.Context, titleID string) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		titleID = strings.TrimSpace(titleID)
		if titleID != "" {
			if _, err := e.catalog().Title(titleID); err != nil {
				return err
			}
		}
		if err := s.Profile.EquipTitle(titleID); err != nil {
			return err
		}
		r.event(telemetry.EventTitleEquipped, telemetry.EventMetadata{"title": titleID})
		return nil
	})
}

func (e Engine) Rename(ctx context.Context, name string) (Result, error) {
	return e.act(ctx, func(s *State, r *Result) error {
		if err := s.Profile.Rename(name); err != nil {
			return err
		}
		r.event(telemetry.EventProfileRenamed, nil)
		return nil
	})
}
