package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/model"
)

// SVG writes the scene as an SVG document.
func SVG(w io.Writer, scene Scene) {
	width, height := scene.size()
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fill(Background))

	if scene.ShowGround {
		top := round(scene.groundTop())
		canvas.Rect(0, top, width, height-top, fill(Ground))
	}

	for i := range scene.Keys {
		drawKeySVG(canvas, &scene.Keys[i])
	}
	canvas.End()
}

// KeySVG writes a single key centered in its own bounding box.
func KeySVG(w io.Writer, box keyshape.BoundingBox, params keyshape.Params) {
	width, height := round(box.Width), round(box.Height)
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Gtransform(fmt.Sprintf("translate(%.2f,%.2f)", box.Width/2, box.Height/2))
	drawParts(canvas, box, params)
	canvas.Gend()
	canvas.End()
}

func drawKeySVG(canvas *svg.SVG, s *model.PlacedShape) {
	pos := s.Position()
	deg := s.Angle() * 180 / math.Pi
	canvas.Gid(s.ID)
	canvas.Gtransform(fmt.Sprintf("translate(%.2f,%.2f) rotate(%.2f)", pos.X, pos.Y, deg))
	drawParts(canvas, s.Box, s.Params)
	canvas.Gend()
	canvas.Gend()
}

func drawParts(canvas *svg.SVG, box keyshape.BoundingBox, params keyshape.Params) {
	for _, p := range keyshape.Visual(box, params) {
		style := fill(fillOf(p, params))
		if p.Ellipse {
			canvas.Ellipse(round(p.Center.X), round(p.Center.Y), round(p.Width/2), round(p.Height/2), style)
			continue
		}
		canvas.Rect(round(p.Center.X-p.Width/2), round(p.Center.Y-p.Height/2), round(p.Width), round(p.Height), style)
	}
}

func fill(c interface{ Hex() string }) string {
	return "fill:" + c.Hex()
}

func round(v float64) int {
	return int(math.Round(v))
}
