package player

import "math"

// Curve is the leveling configuration.
type Curve struct {
	Cap        int
	Base       int64
	Multiplier float64
}

func (c Curve) normalized() Curve {
	if c.Cap <= 0 {
		c.Cap = 50
	}
	if c.Base <= 0 {
		c.Base = 100
	}
	if c.Multiplier < 1 {
		c.Multiplier = 1.5
	}
	return c
}

// Next returns the threshold that follows t.
func (c Curve) Next(t int64) int64 {
	c = c.normalized()
	n := int64(math.Floor(float64(t) * c.Multiplier))
	if n < 1 {
		n = 1
	}
	return n
}

// ThresholdFor is the XP needed to leave the given level.
func (c Curve) ThresholdFor(level int) int64 {
	c = c.normalized()
	t := c.Base
	for l := 1; l < level; l++ {
		t = c.Next(t)
	}
	return t
}

// AddXP adds xp and rolls it into levels up to the cap. It returns every level reached.
// XP keeps accumulating once the cap is hit.
func (p *Profile) AddXP(xp int64, c Curve) []int {
	c = c.normalized()
	if xp > 0 {
		p.XP += xp
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XPToNext <= 0 {
		p.XPToNext = c.ThresholdFor(p.Level)
	}

	var gained []int
	for p.Level < c.Cap && p.XP >= p.XPToNext {
		p.XP -= p.XPToNext
		p.Level++
		p.XPToNext = c.Next(p.XPToNext)
		gained = append(gained, p.Level)
	}
	if p.Level > c.Cap {
		p.Level = c.Cap
	}
	return gained
}

// Progress is the fraction of the current level completed, 1 at the cap.
func (p Profile) Progress(c Curve) float64 {
	c = c.normalized()
	if p.Level >= c.Cap || p.XPToNext <= 0 {
		return 1
	}
	f := float64(p.XP) / float64(p.XPToNext)
	return math.Min(f, 1)
}
