package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
)

func testShape() *PlacedShape {
	box := keyshape.BoundingBox{Width: 200, Height: 100}
	params := keyshape.Params{
		HeadWidth:   50,
		HeadHeight:  40,
		ShaftHeight: 25,
		Notches:     []float64{10, 20, 30},
		Fill:        colorful.Color{R: 1, G: 0, B: 0},
	}
	g := keyshape.Build(box, params, 0.5).At(r2.Vec{X: 10, Y: 20})
	return NewPlacedShape(box, params, g)
}

func TestPlacedShape_New(t *testing.T) {
	s := testShape()

	assert.NotEmpty(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, r2.Vec{X: 10, Y: 20}, s.Position())
	assert.Equal(t, 0.5, s.Angle())

	// UUIDフォーマットの確認
	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err, "IDはUUID形式であるべき")
}

func TestPlacedShape_MoveTo(t *testing.T) {
	s := testShape()
	before := s.Geometry.Rotate(-s.Angle()).Offsets()

	s.MoveTo(r2.Vec{X: 300, Y: 400}, 1.5)

	assert.Equal(t, r2.Vec{X: 300, Y: 400}, s.Position())
	assert.Equal(t, 1.5, s.Angle())

	// パーツの相対位置は変わらない
	after := s.Geometry.Rotate(-s.Angle()).Offsets()
	for i := range before {
		assert.InDelta(t, before[i].X, after[i].X, 1e-9)
		assert.InDelta(t, before[i].Y, after[i].Y, 1e-9)
	}
}

func TestPlacedShape_View(t *testing.T) {
	s := testShape()

	v := s.View()

	assert.Equal(t, s.ID, v.ID)
	assert.Equal(t, 10.0, v.X)
	assert.Equal(t, 200.0, v.Width)
	assert.Equal(t, "#ff0000", v.Params.Fill)
	assert.Equal(t, []float64{10, 20, 30}, v.Params.Notches)

	p := s.PoseView()
	assert.Equal(t, s.ID, p.ID)
	assert.Equal(t, 20.0, p.Y)
	assert.Equal(t, 0.5, p.Angle)
}
