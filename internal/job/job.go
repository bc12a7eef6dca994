package job

import (
	"errors"
	"fmt"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
)

var (
	ErrAlreadyEmployed = errors.New("already employed")
	ErrNotEmployed     = errors.New("not employed")
	ErrLevelTooLow     = errors.New("level too low")
	ErrShiftCooldown   = errors.New("shift on cooldown")
)

// Employment is the player's current job.
type Employment struct {
	JobID          string `json:"job_id,omitempty"`
	HiredAt        int64  `json:"hired_at,omitempty"`
	Shifts         int64  `json:"shifts"`
	LifetimeShifts int64  `json:"lifetime_shifts"`
	NextShiftAt    int64  `json:"next_shift_at,omitempty"`
}

func (e Employment) Employed() bool { return e.JobID != "" }

// CooldownError reports how long until the next shift.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %s left", ErrShiftCooldown, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Unwrap() error { return ErrShiftCooldown }

// Apply hires the player for j.
func (e *Employment) Apply(j catalog.Job, level int, now time.Time) error {
	if e.Employed() {
		return fmt.Errorf("%w: quit %s first", ErrAlreadyEmployed, e.JobID)
	}
	if level < j.MinLevel {
		return fmt.Errorf("%w: %s needs level %d", ErrLevelTooLow, j.ID, j.MinLevel)
	}
	*e = Employment{
		JobID:          j.ID,
		HiredAt:        now.UnixMilli(),
		LifetimeShifts: e.LifetimeShifts,
		NextShiftAt:    e.NextShiftAt,
	}
	return nil
}

// Work completes one shift and returns the salary owed.
func (e *Employment) Work(j catalog.Job, now time.Time) (int64, error) {
	if !e.Employed() {
		return 0, ErrNotEmployed
	}
	if ms := now.UnixMilli(); ms < e.NextShiftAt {
		return 0, &CooldownError{Remaining: time.Duration(e.NextShiftAt-ms) * time.Millisecond}
	}
	e.Shifts++
	e.LifetimeShifts++
	e.NextShiftAt = now.Add(time.Duration(j.CooldownSeconds) * time.Second).UnixMilli()
	return j.Salary, nil
}

// Quit leaves the job. The shift cooldown outlives it, so quitting and
// re-applying cannot skip a cooldown.
func (e *Employment) Quit() error {
	if !e.Employed() {
		return ErrNotEmployed
	}
	*e = Employment{LifetimeShifts: e.LifetimeShifts, NextShiftAt: e.NextShiftAt}
	return nil
}

// Eligible lists the jobs a player of the given level may apply for.
func Eligible(c *catalog.Catalog, level int) []catalog.Job {
	out := []catalog.Job{}
	for _, j := range c.Jobs {
		if level >= j.MinLevel {
			out = append(out, j)
		}
	}
	return out
}
