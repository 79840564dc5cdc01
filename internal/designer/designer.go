// Package designer drives slider-based key design with spring-smoothed values.
package designer

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/kyiku/keydrop-back/internal/keyshape"
)

// ErrUnknownSlider is returned for slider names the designer does not know.
var ErrUnknownSlider = errors.New("unknown slider")

// Slider names.
const (
	SliderHeadWidth   = "headWidth"
	SliderHeadHeight  = "headHeight"
	SliderShaftHeight = "shaftHeight"
	SliderNotchDepth  = "notchDepth" // relative to shaft height
	SliderNotchCount  = "notchCount"
	SliderRed         = "red"
	SliderGreen       = "green"
	SliderBlue        = "blue"
)

const (
	chHeadWidth = iota
	chHeadHeight
	chShaftHeight
	chNotchDepth
	chRed
	chGreen
	chBlue
	numChannels
)

var sliderChannels = map[string]int{
	SliderHeadWidth:   chHeadWidth,
	SliderHeadHeight:  chHeadHeight,
	SliderShaftHeight: chShaftHeight,
	SliderNotchDepth:  chNotchDepth,
	SliderRed:         chRed,
	SliderGreen:       chGreen,
	SliderBlue:        chBlue,
}

const (
	// DefaultFrequency is the angular frequency of the follower spring.
	DefaultFrequency = 6.0
	// criticalDamping never overshoots
	criticalDamping = 1.0
	settleEpsilon   = 0.01

	minNotches = 3
	maxNotches = 6
)

// Session eases a key design toward slider targets, one frame at a time.
type Session struct {
	mu         sync.Mutex
	spring     harmonica.Spring
	target     [numChannels]float64
	pos        [numChannels]float64
	vel        [numChannels]float64
	notchCount int
}

// NewSession starts a design from initial params, stepping at fps.
func NewSession(initial keyshape.Params, fps int) *Session {
	s := &Session{
		spring:     harmonica.NewSpring(harmonica.FPS(fps), DefaultFrequency, criticalDamping),
		notchCount: clampCount(initial.NotchCount()),
	}

	depth := 0.0
	if initial.ShaftHeight > 0 && len(initial.Notches) > 0 {
		for _, d := range initial.Notches {
			depth += d
		}
		depth /= float64(len(initial.Notches)) * initial.ShaftHeight
	}

	r, g, b := initial.Fill.RGB255()
	s.pos = [numChannels]float64{
		initial.HeadWidth,
		initial.HeadHeight,
		initial.ShaftHeight,
		depth,
		float64(r),
		float64(g),
		float64(b),
	}
	s.target = s.pos
	return s
}

// Set moves a slider target. notchCount applies immediately; every other
// slider is approached smoothly by Step.
func (s *Session) Set(slider string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("slider %s: invalid value %v", slider, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slider == SliderNotchCount {
		s.notchCount = clampCount(int(math.Round(value)))
		return nil
	}

	ch, ok := sliderChannels[slider]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlider, slider)
	}
	if ch >= chRed {
		value = math.Min(value, 255)
	}
	s.target[ch] = value
	return nil
}

// Step advances the follower by one frame and returns the current design.
func (s *Session) Step() keyshape.Params {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pos {
		s.pos[i], s.vel[i] = s.spring.Update(s.pos[i], s.vel[i], s.target[i])
	}
	return s.params()
}

// Params returns the current design without stepping.
func (s *Session) Params() keyshape.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params()
}

// Settled reports whether every value has reached its target.
func (s *Session) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pos {
		if math.Abs(s.pos[i]-s.target[i]) > settleEpsilon || math.Abs(s.vel[i]) > settleEpsilon {
			return false
		}
	}
	return true
}

func (s *Session) params() keyshape.Params {
	shaftH := math.Max(s.pos[chShaftHeight], 0)
	depth := math.Max(s.pos[chNotchDepth], 0) * shaftH

	notches := make([]float64, s.notchCount)
	for i := range notches {
		notches[i] = depth
	}

	return keyshape.Params{
		HeadWidth:   math.Max(s.pos[chHeadWidth], 0),
		HeadHeight:  math.Max(s.pos[chHeadHeight], 0),
		ShaftHeight: shaftH,
		Notches:     notches,
		Fill: colorful.Color{
			R: channel(s.pos[chRed]),
			G: channel(s.pos[chGreen]),
			B: channel(s.pos[chBlue]),
		},
	}
}

func channel(v float64) float64 {
	return math.Max(0, math.Min(255, v)) / 255
}

func clampCount(n int) int {
	if n < minNotches {
		return minNotches
	}
	if n > maxNotches {
		return maxNotches
	}
	return n
}
