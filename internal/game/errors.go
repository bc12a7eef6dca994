package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
)

var (
	ErrUnknownItem        = catalog.ErrUnknownItem
	ErrUnknownActivity    = catalog.ErrUnknownActivity
	ErrUnknownJob         = catalog.ErrUnknownJob
	ErrUnknownAchievement = catalog.ErrUnknownAchievement
	ErrUnknownTitle       = catalog.ErrUnknownTitle

	ErrUnknownVariant = errors.New("unknown variant")
	ErrOnCooldown     = errors.New("activity on cooldown")
	ErrMissingTool    = errors.New("required tool missing")
	ErrNotUsable      = errors.New("item cannot be used")
	ErrInvalidSave    = errors.New("invalid save data")
)

// CooldownError carries how long an activity still has to wait.
type CooldownError struct {
	Activity  string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %s ready in %s", ErrOnCooldown, e.Activity, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Unwrap() error { return ErrOnCooldown }
