// Package placement resolves spawn positions that avoid existing shapes.
package placement

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
)

const (
	// DefaultMaxAttempts bounds the number of collision tests per spawn.
	DefaultMaxAttempts = 30
	// DefaultStep is the upward displacement applied after each collision.
	DefaultStep = 10.0
)

// CollidesFunc reports whether candidate overlaps any of existing.
type CollidesFunc func(candidate keyshape.Geometry, existing []keyshape.Geometry) bool

// Result describes a resolved spawn.
type Result struct {
	Position r2.Vec
	Attempts int  // collision tests performed
	Resolved bool // false when every attempt collided
}

// Placer moves a candidate upward until it clears existing shapes.
type Placer struct {
	maxAttempts int
	step        float64
}

// NewPlacer creates a Placer with the default bounds.
func NewPlacer() *Placer {
	return &Placer{
		maxAttempts: DefaultMaxAttempts,
		step:        DefaultStep,
	}
}

// NewPlacerWithLimits creates a Placer with custom bounds.
func NewPlacerWithLimits(maxAttempts int, step float64) *Placer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if step <= 0 {
		step = DefaultStep
	}
	return &Placer{
		maxAttempts: maxAttempts,
		step:        step,
	}
}

// Resolve searches for a non-overlapping position starting at target.
// The last candidate is returned even when the overlap could not be removed.
func (p *Placer) Resolve(target r2.Vec, g keyshape.Geometry, existing []keyshape.Geometry, collides CollidesFunc) Result {
	if len(existing) == 0 {
		return Result{Position: target, Resolved: true}
	}

	candidate := target
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if !collides(g.At(candidate), existing) {
			return Result{Position: candidate, Attempts: attempt, Resolved: true}
		}
		candidate.Y -= p.step
	}

	return Result{Position: candidate, Attempts: p.maxAttempts, Resolved: false}
}

// ResolveSpawn resolves a spawn position with the default bounds.
func ResolveSpawn(targetX, targetY float64, g keyshape.Geometry, existing []keyshape.Geometry, collides CollidesFunc) (float64, float64) {
	res := NewPlacer().Resolve(r2.Vec{X: targetX, Y: targetY}, g, existing, collides)
	return res.Position.X, res.Position.Y
}
