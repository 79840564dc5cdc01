// Package physics binds key geometry to the cp rigid body engine.
package physics

import (
	"github.com/jakecoffman/cp/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
)

// Collision categories.
const (
	categoryKey uint = 1 << iota
	categoryBounds
	categoryProbe

	allCategories = ^uint(0)
)

var (
	keyFilter    = cp.ShapeFilter{Group: 0, Categories: categoryKey, Mask: allCategories}
	boundsFilter = cp.ShapeFilter{Group: 0, Categories: categoryBounds, Mask: allCategories}
	// probes only see keys
	probeFilter = cp.ShapeFilter{Group: 0, Categories: categoryProbe, Mask: categoryKey}
)

// Collides reports whether candidate overlaps any of existing, using the
// narrow phase of a throwaway cp space. It satisfies placement.CollidesFunc.
func Collides(candidate keyshape.Geometry, existing []keyshape.Geometry) bool {
	if len(existing) == 0 {
		return false
	}

	space := cp.NewSpace()
	for _, g := range existing {
		body := cp.NewStaticBody()
		body.SetPosition(vec(g.Position))
		body.SetAngle(g.Angle)
		space.AddBody(body)
		for _, shape := range attachParts(body, g) {
			shape.SetFilter(keyFilter)
			space.AddShape(shape)
		}
	}

	return probe(space, candidate)
}

// probe tests candidate against the keys in space without adding it.
func probe(space *cp.Space, candidate keyshape.Geometry) bool {
	body := cp.NewKinematicBody()
	body.SetPosition(vec(candidate.Position))
	body.SetAngle(candidate.Angle)

	for _, shape := range attachParts(body, candidate) {
		shape.SetFilter(probeFilter)
		if space.ShapeQuery(shape, nil) {
			return true
		}
	}
	return false
}

// attachParts creates one polygon shape per key part on body. Vertices stay
// in the local frame so the body transform places the whole assembly.
func attachParts(body *cp.Body, g keyshape.Geometry) []*cp.Shape {
	polys := g.LocalPolygons()
	shapes := make([]*cp.Shape, 0, len(polys))
	for _, poly := range polys {
		verts := vecs(poly)
		shapes = append(shapes, cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), 0))
	}
	return shapes
}

func vec(v r2.Vec) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func vecs(vs []r2.Vec) []cp.Vector {
	out := make([]cp.Vector, len(vs))
	for i, v := range vs {
		out[i] = vec(v)
	}
	return out
}

func fromVec(v cp.Vector) r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}
