// Package render draws the board as SVG or PNG.
package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/model"
	"github.com/kyiku/keydrop-back/internal/physics"
)

// Board colors.
var (
	Background = gray(245)
	Ground     = gray(225)
)

// Scene is everything needed to draw one frame.
type Scene struct {
	Width  float64
	Height float64
	Keys   []model.PlacedShape
	// ShowGround toggles the ground strip.
	ShowGround bool
}

// NewScene builds a scene with the ground strip enabled.
func NewScene(width, height float64, keys []model.PlacedShape) Scene {
	return Scene{Width: width, Height: height, Keys: keys, ShowGround: true}
}

func (s Scene) size() (int, int) {
	return int(math.Ceil(s.Width)), int(math.Ceil(s.Height))
}

func (s Scene) groundTop() float64 {
	return s.Height - physics.GroundHeight
}

// fillOf returns the paint color of a visual part.
func fillOf(p keyshape.VisualPart, params keyshape.Params) colorful.Color {
	if p.Cutout {
		return Background
	}
	return params.Fill
}

func gray(v uint8) colorful.Color {
	c := float64(v) / 255
	return colorful.Color{R: c, G: c, B: c}
}

// outline returns the world-space polygon of a visual part on a key at pose.
func outline(p keyshape.VisualPart, position r2.Vec, angle float64) []r2.Vec {
	var local []r2.Vec
	if p.Ellipse {
		local = make([]r2.Vec, ellipseSegments)
		for i := range local {
			a := 2 * math.Pi * float64(i) / ellipseSegments
			local[i] = r2.Vec{
				X: p.Center.X + p.Width/2*math.Cos(a),
				Y: p.Center.Y + p.Height/2*math.Sin(a),
			}
		}
	} else {
		hw, hh := p.Width/2, p.Height/2
		local = []r2.Vec{
			{X: p.Center.X - hw, Y: p.Center.Y - hh},
			{X: p.Center.X + hw, Y: p.Center.Y - hh},
			{X: p.Center.X + hw, Y: p.Center.Y + hh},
			{X: p.Center.X - hw, Y: p.Center.Y + hh},
		}
	}

	sin, cos := math.Sincos(angle)
	out := make([]r2.Vec, len(local))
	for i, v := range local {
		out[i] = r2.Add(position, r2.Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos})
	}
	return out
}

const ellipseSegments = 48
