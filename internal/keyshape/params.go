// Package keyshape provides procedural key shape generation and geometry.
package keyshape

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// MinSize is the smallest box dimension a caller should pass to Generate.
const MinSize = 24.0

// BoundingBox is the user-drawn rectangle that bounds a new shape.
type BoundingBox struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Usable reports whether both dimensions reach MinSize.
func (b BoundingBox) Usable() bool {
	return b.Width >= MinSize && b.Height >= MinSize
}

// Params holds the proportions of a key silhouette, in absolute units.
type Params struct {
	HeadWidth   float64
	HeadHeight  float64
	ShaftHeight float64
	Notches     []float64 // notch depths, unclamped
	Fill        colorful.Color
}

// NotchCount returns the number of notches.
func (p Params) NotchCount() int {
	return len(p.Notches)
}

// Clone returns a copy that shares no slices with p.
func (p Params) Clone() Params {
	c := p
	c.Notches = append([]float64(nil), p.Notches...)
	return c
}

// RandomSource samples uniform reals.
type RandomSource interface {
	// Uniform returns a value in [a, b).
	Uniform(a, b float64) float64
}

type mathRand struct{}

func (mathRand) Uniform(a, b float64) float64 {
	return a + rand.Float64()*(b-a)
}

// Generator creates randomized key parameters.
type Generator struct {
	rng RandomSource
}

// NewGenerator creates a new Generator backed by math/rand.
func NewGenerator() *Generator {
	return &Generator{rng: mathRand{}}
}

// NewGeneratorWithSource creates a Generator that draws from rng.
func NewGeneratorWithSource(rng RandomSource) *Generator {
	return &Generator{rng: rng}
}

// Generate derives a fresh set of key proportions from the box dimensions.
// Minimum sizes are not validated here.
func (g *Generator) Generate(boxWidth, boxHeight float64) Params {
	overall := boxHeight * 0.9

	headH := overall * g.rng.Uniform(0.30, 0.45)
	headW := math.Min(boxWidth*0.5, headH*g.rng.Uniform(0.85, 1.45))

	shaftH := overall * g.rng.Uniform(0.25, 0.35)

	count := int(math.Floor(g.rng.Uniform(3, 7)))
	notches := make([]float64, count)
	for i := range notches {
		notches[i] = g.rng.Uniform(0.35, 1.05) * shaftH
	}

	fill := colorful.Color{
		R: g.rng.Uniform(40, 255) / 255,
		G: g.rng.Uniform(40, 255) / 255,
		B: g.rng.Uniform(40, 255) / 255,
	}

	return Params{
		HeadWidth:   headW,
		HeadHeight:  headH,
		ShaftHeight: shaftH,
		Notches:     notches,
		Fill:        fill,
	}
}
