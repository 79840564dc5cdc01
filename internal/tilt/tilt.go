// Package tilt converts device orientation events into a gravity direction.
package tilt

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// FullTilt is the tilt in degrees that maps to full gravity on an axis.
	FullTilt = 45.0
	// DefaultSmoothing is the fraction of the remaining distance covered per event.
	DefaultSmoothing = 0.1
)

// Sensor smooths orientation readings into a unit-scaled gravity vector.
type Sensor struct {
	mu        sync.Mutex
	enabled   bool
	strength  float64
	smoothing float64
	gravity   r2.Vec
}

// NewSensor creates a disabled sensor with gravity pointing straight down.
func NewSensor(strength float64) *Sensor {
	return &Sensor{
		strength:  strength,
		smoothing: DefaultSmoothing,
		gravity:   r2.Vec{X: 0, Y: 1},
	}
}

// SetEnabled toggles whether orientation events affect gravity.
// Disabling restores the default downward gravity.
func (s *Sensor) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enabled = enabled
	if !enabled {
		s.gravity = r2.Vec{X: 0, Y: 1}
	}
}

// Enabled reports whether the sensor is active.
func (s *Sensor) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Update folds one orientation event into the gravity estimate.
// beta is the front-back tilt, gamma the left-right tilt, both in degrees.
// Returns false when the sensor is disabled.
func (s *Sensor) Update(beta, gamma float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return false
	}

	target := r2.Vec{
		X: clamp(gamma/FullTilt, -1, 1) * s.strength,
		Y: clamp(beta/FullTilt, -1, 1) * s.strength,
	}
	s.gravity = lerp(s.gravity, target, s.smoothing)
	return true
}

// Gravity returns the current gravity direction scaled by strength.
func (s *Sensor) Gravity() r2.Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gravity
}

func lerp(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
