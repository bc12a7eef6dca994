package player

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	DefaultUsername = "Player"
	DefaultTitle    = "newbie"
	MaxUsernameLen  = 24
)

var (
	ErrTitleLocked     = errors.New("title not unlocked")
	ErrInvalidUsername = errors.New("invalid username")
)

// Profile is the player's progression record.
type Profile struct {
	Username      string           `json:"username"`
	Level         int              `json:"level"`
	XP            int64            `json:"xp"`
	XPToNext      int64            `json:"xp_to_next"`
	TotalEarned   int64            `json:"total_earned"`
	TotalSpent    int64            `json:"total_spent"`
	Activity      map[string]int64 `json:"activity"`
	Achievements  []string         `json:"achievements"`
	Titles        []string         `json:"titles"`
	EquippedTitle string           `json:"equipped_title"`
}

func NewProfile(baseThreshold int64) Profile {
	return Profile{
		Username:      DefaultUsername,
		Level:         1,
		XPToNext:      baseThreshold,
		Activity:      map[string]int64{},
		Achievements:  []string{},
		Titles:        []string{DefaultTitle},
		EquippedTitle: DefaultTitle,
	}
}

// Normalize repairs a profile decoded from an older or hand-edited save.
func Normalize(p Profile, baseThreshold int64) Profile {
	out := NewProfile(baseThreshold)
	if name := strings.TrimSpace(p.Username); name != "" {
		out.Username = name
	}
	if p.Level > 0 {
		out.Level = p.Level
	}
	if p.XP > 0 {
		out.XP = p.XP
	}
	if p.XPToNext > 0 {
		out.XPToNext = p.XPToNext
	}
	out.TotalEarned = max(p.TotalEarned, 0)
	out.TotalSpent = max(p.TotalSpent, 0)
	for k, v := range p.Activity {
		if v > 0 {
			out.Activity[k] = v
		}
	}
	for _, id := range p.Achievements {
		if !slices.Contains(out.Achievements, id) {
			out.Achievements = append(out.Achievements, id)
		}
	}
	for _, id := range p.Titles {
		if !slices.Contains(out.Titles, id) {
			out.Titles = append(out.Titles, id)
		}
	}
	if p.EquippedTitle == "" || slices.Contains(out.Titles, p.EquippedTitle) {
		out.EquippedTitle = p.EquippedTitle
	}
	return out
}

func (p Profile) Clone() Profile {
	out := p
	out.Activity = make(map[string]int64, len(p.Activity))
	for k, v := range p.Activity {
		out.Activity[k] = v
	}
	out.Achievements = append([]string{}, p.Achievements...)
	out.Titles = append([]string{}, p.Titles...)
	return out
}

// Count bumps the usage counter of an activity.
func (p *Profile) Count(activity string) int64 {
	if p.Activity == nil {
		p.Activity = map[string]int64{}
	}
	p.Activity[activity]++
	return p.Activity[activity]
}

// Uses reports how often an activity was counted.
func (p Profile) Uses(activity string) int64 {
	return p.Activity[activity]
}

func (p *Profile) Earned(amount int64) {
	if amount > 0 {
		p.TotalEarned += amount
	}
}

func (p *Profile) Spent(amount int64) {
	if amount > 0 {
		p.TotalSpent += amount
	}
}

func (p Profile) HasAchievement(id string) bool {
	return slices.Contains(p.Achievements, id)
}

// Unlock records an achievement. It returns false if it was already unlocked.
func (p *Profile) Unlock(id string) bool {
	if p.HasAchievement(id) {
		return false
	}
	p.Achievements = append(p.Achievements, id)
	return true
}

func (p Profile) HasTitle(id string) bool {
	return slices.Contains(p.Titles, id)
}

func (p *Profile) GrantTitle(id string) bool {
	if id == "" || p.HasTitle(id) {
		return false
	}
	p.Titles = append(p.Titles, id)
	return true
}

// EquipTitle equips an owned title. An empty id unequips.
func (p *Profile) EquipTitle(id string) error {
	id = strings.TrimSpace(id)
	if id != "" && !p.HasTitle(id) {
		return fmt.Errorf("%w: %s", ErrTitleLocked, id)
	}
	p.EquippedTitle = id
	return nil
}

func (p *Profile) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxUsernameLen {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, name)
	}
	p.Username = name
	return nil
}
