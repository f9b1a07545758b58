package grid

import (
	"math"

	"kilo/internal/core"
)

// Reveal sequence defaults, in frames.
const (
	RevealDelay    = 3
	RevealDuration = 90
	RevealChance   = 0.1
)

// Reveal grows a circle from the viewport centre and reveals the cells it
// covers at random, a few per frame, until every cell is shown.
type Reveal struct {
	Delay    int
	Duration int
	Chance   float64

	rng    *core.RNG
	frame  int
	active bool
}

// NewReveal returns a running reveal sequence using the default timing.
func NewReveal(seed int64) *Reveal {
	return &Reveal{
		Delay:    RevealDelay,
		Duration: RevealDuration,
		Chance:   RevealChance,
		rng:      core.NewRNG(seed),
		active:   true,
	}
}

// Active reports whether the sequence is still running.
func (r *Reveal) Active() bool { return r.active }

// Restart conceals the grid and runs the sequence again.
func (r *Reveal) Restart(g *Grid) {
	g.Conceal()
	r.frame = 0
	r.active = true
}

// Progress returns how far the sequence is, in [0, 1].
func (r *Reveal) Progress() float64 {
	if !r.active {
		return 1
	}
	if r.frame <= r.Delay || r.Duration <= 0 {
		return 0
	}
	return math.Min(1, float64(r.frame-r.Delay)/float64(r.Duration))
}

// Radius returns the reveal radius for viewport v at the current progress.
func (r *Reveal) Radius(v core.Viewport) float64 {
	return r.Progress() * math.Hypot(v.W/2, v.H/2)
}

// Step advances the sequence by one frame and updates g. It returns false
// once the sequence has finished.
func (r *Reveal) Step(g *Grid) bool {
	if !r.active {
		return false
	}
	r.frame++
	if r.frame <= r.Delay {
		return true
	}
	if r.Progress() >= 1 {
		g.RevealAll()
		r.active = false
		return false
	}
	radius := r.Radius(g.Viewport())
	cells := g.Cells()
	for i := range cells {
		c := &cells[i]
		if !c.Revealed && c.DistanceFromCenter <= radius && r.rng.Chance(r.Chance) {
			c.Revealed = true
		}
	}
	return true
}

// Skip finishes the sequence immediately.
func (r *Reveal) Skip(g *Grid) {
	g.RevealAll()
	r.active = false
}
