package keyshape

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	headOffsetRatio = 0.3  // head center sits at -0.3*W
	shaftWidthRatio = 0.7  // shaft spans 0.7*W
	headJoinRatio   = 0.6  // shaft starts 0.6*headW right of the head center
	tipRegionRatio  = 0.35 // notches live in the outer 35% of the shaft
	notchWidthRatio = 0.7  // notch width relative to notch spacing
	notchMinRatio   = 0.1  // physical notch height clamp, relative to shaft height
	notchMaxRatio   = 1.6
	headHullScale   = 0.95
)

// HeadSegments is the vertex count of the head collision polygon.
const HeadSegments = 20

// PartKind identifies a primitive of the key assembly.
type PartKind int

const (
	PartHead PartKind = iota
	PartShaft
	PartNotch
)

// String returns the part kind name.
func (k PartKind) String() string {
	switch k {
	case PartHead:
		return "head"
	case PartShaft:
		return "shaft"
	case PartNotch:
		return "notch"
	}
	return "unknown"
}

// Part is one primitive in the local frame of a key.
type Part struct {
	Kind   PartKind
	Center r2.Vec
	Width  float64
	Height float64
	// Vertices is the convex collision polygon in the local frame.
	Vertices []r2.Vec
}

// Geometry is the collision decomposition of a key: one head polygon, one
// shaft rectangle and its notches, plus the rigid transform of the whole
// assembly. Values are never mutated; Rotate and At return copies.
type Geometry struct {
	Box      BoundingBox
	Head     Part
	Shaft    Part
	Notches  []Part
	Angle    float64
	Position r2.Vec
}

// Build lays out the key parts for box and params, rotated by angle.
func Build(box BoundingBox, params Params, angle float64) Geometry {
	headX := -box.Width * headOffsetRatio
	head := Part{
		Kind:     PartHead,
		Center:   r2.Vec{X: headX},
		Width:    params.HeadWidth,
		Height:   params.HeadHeight,
		Vertices: ellipsePolygon(r2.Vec{X: headX}, params.HeadWidth*headHullScale, params.HeadHeight*headHullScale, HeadSegments),
	}

	shaftW := box.Width * shaftWidthRatio
	shaftH := params.ShaftHeight
	shaftX := headX + params.HeadWidth*headJoinRatio + shaftW/2
	shaft := rectPart(PartShaft, r2.Vec{X: shaftX}, shaftW, shaftH)

	regionStart, spacing := notchLayout(shaftX, shaftW, len(params.Notches))
	notchW := spacing * notchWidthRatio

	notches := make([]Part, len(params.Notches))
	for i, depth := range params.Notches {
		h := clamp(depth, shaftH*notchMinRatio, shaftH*notchMaxRatio)
		center := r2.Vec{
			X: regionStart + spacing*float64(i+1),
			Y: shaftH/2 + h/2,
		}
		notches[i] = rectPart(PartNotch, center, notchW, h)
	}

	return Geometry{
		Box:     box,
		Head:    head,
		Shaft:   shaft,
		Notches: notches,
		Angle:   angle,
	}
}

// Parts returns head, shaft and notches in that order.
func (g Geometry) Parts() []Part {
	parts := make([]Part, 0, 2+len(g.Notches))
	parts = append(parts, g.Head, g.Shaft)
	return append(parts, g.Notches...)
}

// Rotate returns a copy rotated by theta about its own center.
func (g Geometry) Rotate(theta float64) Geometry {
	g.Angle += theta
	return g
}

// WithAngle returns a copy with its rotation set to angle.
func (g Geometry) WithAngle(angle float64) Geometry {
	g.Angle = angle
	return g
}

// At returns a copy translated to position.
func (g Geometry) At(position r2.Vec) Geometry {
	g.Position = position
	return g
}

// Offsets returns the part centers relative to the shape center, after
// rotation.
func (g Geometry) Offsets() []r2.Vec {
	sin, cos := math.Sincos(g.Angle)
	parts := g.Parts()
	out := make([]r2.Vec, len(parts))
	for i, p := range parts {
		out[i] = rotate(p.Center, sin, cos)
	}
	return out
}

// LocalPolygons returns every part polygon in the unrotated local frame.
func (g Geometry) LocalPolygons() [][]r2.Vec {
	parts := g.Parts()
	out := make([][]r2.Vec, len(parts))
	for i, p := range parts {
		out[i] = p.Vertices
	}
	return out
}

// Polygons returns every part polygon in world coordinates.
func (g Geometry) Polygons() [][]r2.Vec {
	sin, cos := math.Sincos(g.Angle)
	local := g.LocalPolygons()
	out := make([][]r2.Vec, len(local))
	for i, verts := range local {
		world := make([]r2.Vec, len(verts))
		for j, v := range verts {
			world[j] = r2.Add(rotate(v, sin, cos), g.Position)
		}
		out[i] = world
	}
	return out
}

// Bounds returns the world-space axis aligned bounding box.
func (g Geometry) Bounds() (lo, hi r2.Vec) {
	lo = r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi = r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, poly := range g.Polygons() {
		for _, v := range poly {
			lo.X = math.Min(lo.X, v.X)
			lo.Y = math.Min(lo.Y, v.Y)
			hi.X = math.Max(hi.X, v.X)
			hi.Y = math.Max(hi.Y, v.Y)
		}
	}
	return lo, hi
}

func notchLayout(shaftX, shaftW float64, count int) (regionStart, spacing float64) {
	regionEnd := shaftX + shaftW/2
	regionStart = regionEnd - shaftW*tipRegionRatio
	spacing = (regionEnd - regionStart) / float64(count+1)
	return regionStart, spacing
}

func rectPart(kind PartKind, center r2.Vec, w, h float64) Part {
	hw, hh := w/2, h/2
	return Part{
		Kind:   kind,
		Center: center,
		Width:  w,
		Height: h,
		Vertices: []r2.Vec{
			{X: center.X - hw, Y: center.Y - hh},
			{X: center.X + hw, Y: center.Y - hh},
			{X: center.X + hw, Y: center.Y + hh},
			{X: center.X - hw, Y: center.Y + hh},
		},
	}
}

func ellipsePolygon(center r2.Vec, w, h float64, steps int) []r2.Vec {
	rx, ry := w/2, h/2
	verts := make([]r2.Vec, steps)
	for i := range verts {
		t := float64(i) / float64(steps) * 2 * math.Pi
		verts[i] = r2.Vec{X: center.X + math.Cos(t)*rx, Y: center.Y + math.Sin(t)*ry}
	}
	return verts
}

func rotate(v r2.Vec, sin, cos float64) r2.Vec {
	return r2.Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
