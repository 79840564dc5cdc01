// Package model provides data models for the application.
package model

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
)

// WebSocketConn defines the interface for WebSocket connections.
type WebSocketConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
	Close() error
}

// PlacedShape is a committed key living on the board.
type PlacedShape struct {
	ID        string
	Box       keyshape.BoundingBox
	Params    keyshape.Params
	Geometry  keyshape.Geometry // current pose included
	CreatedAt time.Time
}

// NewPlacedShape freezes params and geometry into a new shape.
func NewPlacedShape(box keyshape.BoundingBox, params keyshape.Params, geometry keyshape.Geometry) *PlacedShape {
	return &PlacedShape{
		ID:        uuid.New().String(),
		Box:       box,
		Params:    params.Clone(),
		Geometry:  geometry,
		CreatedAt: time.Now(),
	}
}

// Position returns the world position of the shape center.
func (s *PlacedShape) Position() r2.Vec {
	return s.Geometry.Position
}

// Angle returns the current rotation in radians.
func (s *PlacedShape) Angle() float64 {
	return s.Geometry.Angle
}

// MoveTo applies a rigid motion. Part offsets are untouched.
func (s *PlacedShape) MoveTo(position r2.Vec, angle float64) {
	s.Geometry = s.Geometry.At(position).WithAngle(angle)
}

// ParamsView is the JSON form of keyshape.Params.
type ParamsView struct {
	HeadWidth   float64   `json:"head_width"`
	HeadHeight  float64   `json:"head_height"`
	ShaftHeight float64   `json:"shaft_height"`
	Notches     []float64 `json:"notches"`
	Fill        string    `json:"fill"`
}

// NewParamsView converts params for transport.
func NewParamsView(p keyshape.Params) ParamsView {
	return ParamsView{
		HeadWidth:   p.HeadWidth,
		HeadHeight:  p.HeadHeight,
		ShaftHeight: p.ShaftHeight,
		Notches:     append([]float64{}, p.Notches...),
		Fill:        p.Fill.Hex(),
	}
}

// ShapeView is the JSON form of a placed shape.
type ShapeView struct {
	ID     string     `json:"id"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Angle  float64    `json:"angle"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Params ParamsView `json:"params"`
}

// View converts the shape for transport.
func (s *PlacedShape) View() ShapeView {
	pos := s.Position()
	return ShapeView{
		ID:     s.ID,
		X:      pos.X,
		Y:      pos.Y,
		Angle:  s.Angle(),
		Width:  s.Box.Width,
		Height: s.Box.Height,
		Params: NewParamsView(s.Params),
	}
}

// PoseView is the compact per-frame form of a shape.
type PoseView struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// PoseView returns the current pose for frame broadcasts.
func (s *PlacedShape) PoseView() PoseView {
	pos := s.Position()
	return PoseView{ID: s.ID, X: pos.X, Y: pos.Y, Angle: s.Angle()}
}
