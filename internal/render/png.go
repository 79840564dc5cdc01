package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
)

// Image rasterizes the scene.
func Image(scene Scene) *image.RGBA {
	width, height := scene.size()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	z := vector.NewRasterizer(width, height)
	if scene.ShowGround {
		top := scene.groundTop()
		fillPolygon(z, dst, []r2.Vec{
			{X: 0, Y: top},
			{X: scene.Width, Y: top},
			{X: scene.Width, Y: scene.Height},
			{X: 0, Y: scene.Height},
		}, Ground)
	}

	for i := range scene.Keys {
		s := &scene.Keys[i]
		for _, p := range keyshape.Visual(s.Box, s.Params) {
			fillPolygon(z, dst, outline(p, s.Position(), s.Angle()), fillOf(p, s.Params))
		}
	}
	return dst
}

// PNG writes the scene as a PNG image.
func PNG(w io.Writer, scene Scene) error {
	if err := png.Encode(w, Image(scene)); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// PNGBytes renders the scene into a byte slice.
func PNGBytes(scene Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := PNG(&buf, scene); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fillPolygon(z *vector.Rasterizer, dst *image.RGBA, poly []r2.Vec, c color.Color) {
	if len(poly) < 3 {
		return
	}
	b := dst.Bounds()
	z.Reset(b.Dx(), b.Dy())
	z.MoveTo(float32(poly[0].X), float32(poly[0].Y))
	for _, v := range poly[1:] {
		z.LineTo(float32(v.X), float32(v.Y))
	}
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}
