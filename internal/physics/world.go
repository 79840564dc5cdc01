package physics

import (
	"math"

	"github.com/jakecoffman/cp/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
)

// Material and bounds constants.
const (
	Density        = 0.002
	PartFriction   = 0.6
	PartElasticity = 0.05

	GroundHeight     = 36.0
	GroundFriction   = 0.9
	GroundElasticity = 0.05
	WallThickness    = 90.0
	WallFriction     = 0.85
	WallElasticity   = 0.05

	// GrabRestLength is the rest length of the grab spring.
	GrabRestLength = 18.0
	grabStiffness  = 40.0 // per unit of grabbed mass
	grabDamping    = 2.0
)

// Pose is the rigid transform of a body.
type Pose struct {
	Position r2.Vec
	Angle    float64
}

type grab struct {
	keyID   string
	pointer *cp.Body
	spring  *cp.Constraint
}

// World is a 2D rigid body simulation of keys inside a walled viewport.
// World is not safe for concurrent use.
type World struct {
	space   *cp.Space
	width   float64
	height  float64
	gravity r2.Vec
	bounds  []*cp.Shape
	bodies  map[string]*cp.Body
	grabs   map[string]*grab
}

// NewWorld creates a world whose viewport is width x height, with y growing
// downward and gravity pointing down.
func NewWorld(width, height, gravity float64) *World {
	w := &World{
		space:  cp.NewSpace(),
		bodies: make(map[string]*cp.Body),
		grabs:  make(map[string]*grab),
	}
	w.SetGravity(r2.Vec{X: 0, Y: gravity})
	w.Resize(width, height)
	return w
}

// Size returns the viewport dimensions.
func (w *World) Size() (float64, float64) {
	return w.width, w.height
}

// Resize rebuilds the ground and walls for a new viewport.
func (w *World) Resize(width, height float64) {
	for _, s := range w.bounds {
		w.space.RemoveShape(s)
	}
	w.bounds = w.bounds[:0]
	w.width, w.height = width, height

	static := w.space.StaticBody
	t := WallThickness

	ground := cp.NewBox2(static, cp.BB{L: 0, B: height - GroundHeight, R: width, T: height}, 0)
	ground.SetFriction(GroundFriction)
	ground.SetElasticity(GroundElasticity)
	w.addBound(ground)

	// left, right, top, bottom; all outside the viewport
	walls := []cp.BB{
		{L: -t, B: 0, R: 0, T: height},
		{L: width, B: 0, R: width + t, T: height},
		{L: 0, B: -t, R: width, T: 0},
		{L: 0, B: height, R: width, T: height + t},
	}
	for _, bb := range walls {
		wall := cp.NewBox2(static, bb, 0)
		wall.SetFriction(WallFriction)
		wall.SetElasticity(WallElasticity)
		w.addBound(wall)
	}
}

func (w *World) addBound(s *cp.Shape) {
	s.SetFilter(boundsFilter)
	w.space.AddShape(s)
	w.bounds = append(w.bounds, s)
}

// SetGravity sets the gravity vector.
func (w *World) SetGravity(g r2.Vec) {
	w.gravity = g
	w.space.SetGravity(vec(g))
}

// Gravity returns the gravity vector.
func (w *World) Gravity() r2.Vec {
	return w.gravity
}

// Add creates a dynamic body for g at its position and angle. The body
// origin stays at the geometry origin; it rotates about the area-weighted
// centroid of its parts.
func (w *World) Add(id string, g keyshape.Geometry) {
	mass, moment, cog := massProperties(g.LocalPolygons())

	body := w.space.AddBody(cp.NewBody(mass, moment))
	body.SetCenterOfGravity(cog)
	// angle first: SetPosition places the origin using the current rotation
	body.SetAngle(g.Angle)
	body.SetPosition(vec(g.Position))
	body.UserData = id

	for _, shape := range attachParts(body, g) {
		shape.SetFriction(PartFriction)
		shape.SetElasticity(PartElasticity)
		shape.SetFilter(keyFilter)
		w.space.AddShape(shape)
	}

	w.bodies[id] = body
}

// massProperties returns the total mass, the moment about the centroid and
// the centroid of a set of uniform-density polygons in body-local space.
func massProperties(polys [][]r2.Vec) (mass, moment float64, cog cp.Vector) {
	masses := make([]float64, len(polys))
	centroids := make([]cp.Vector, len(polys))
	for i, poly := range polys {
		verts := vecs(poly)
		masses[i] = math.Abs(cp.AreaForPoly(len(verts), verts, 0)) * Density
		centroids[i] = cp.CentroidForPoly(len(verts), verts)
		mass += masses[i]
		cog = cog.Add(centroids[i].Mult(masses[i]))
	}
	if mass == 0 {
		return 0, 0, cp.Vector{}
	}
	cog = cog.Mult(1 / mass)

	for i, poly := range polys {
		verts := vecs(poly)
		moment += cp.MomentForPoly(masses[i], len(verts), verts, cog.Neg(), 0)
	}
	return mass, moment, cog
}

// Remove deletes the body of a key. Grabs holding it are released.
func (w *World) Remove(id string) {
	body, ok := w.bodies[id]
	if !ok {
		return
	}
	for pointer, gr := range w.grabs {
		if gr.keyID == id {
			w.Release(pointer)
		}
	}
	w.removeBody(body)
	delete(w.bodies, id)
}

// Clear removes every key body.
func (w *World) Clear() {
	for pointer := range w.grabs {
		w.Release(pointer)
	}
	for id, body := range w.bodies {
		w.removeBody(body)
		delete(w.bodies, id)
	}
}

func (w *World) removeBody(body *cp.Body) {
	var shapes []*cp.Shape
	body.EachShape(func(s *cp.Shape) {
		shapes = append(shapes, s)
	})
	for _, s := range shapes {
		w.space.RemoveShape(s)
	}
	w.space.RemoveBody(body)
}

// Len returns the number of key bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// Pose returns the current transform of a key body.
func (w *World) Pose(id string) (Pose, bool) {
	body, ok := w.bodies[id]
	if !ok {
		return Pose{}, false
	}
	return Pose{Position: fromVec(body.Position()), Angle: body.Angle()}, true
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	w.space.Step(dt)
}

// Grab attaches a damped spring between the pointer and the key under p.
// It returns the grabbed key ID.
func (w *World) Grab(pointer string, p r2.Vec) (string, bool) {
	w.Release(pointer)

	info := w.space.PointQueryNearest(vec(p), 0, probeFilter)
	if info.Shape == nil {
		return "", false
	}
	body := info.Shape.Body()
	id, ok := body.UserData.(string)
	if !ok {
		return "", false
	}

	pointerBody := cp.NewKinematicBody()
	pointerBody.SetPosition(vec(p))
	w.space.AddBody(pointerBody)

	mass := body.Mass()
	spring := cp.NewDampedSpring(pointerBody, body, cp.Vector{}, body.WorldToLocal(vec(p)),
		GrabRestLength, mass*grabStiffness, mass*grabDamping)
	w.space.AddConstraint(spring)

	w.grabs[pointer] = &grab{keyID: id, pointer: pointerBody, spring: spring}
	return id, true
}

// MoveGrab moves the anchor of a pointer's grab spring.
func (w *World) MoveGrab(pointer string, p r2.Vec) bool {
	gr, ok := w.grabs[pointer]
	if !ok {
		return false
	}
	gr.pointer.SetPosition(vec(p))
	return true
}

// Release drops the pointer's grab, if any.
func (w *World) Release(pointer string) {
	gr, ok := w.grabs[pointer]
	if !ok {
		return
	}
	w.space.RemoveConstraint(gr.spring)
	w.space.RemoveBody(gr.pointer)
	delete(w.grabs, pointer)
}

// Grabbed returns the key held by pointer.
func (w *World) Grabbed(pointer string) (string, bool) {
	gr, ok := w.grabs[pointer]
	if !ok {
		return "", false
	}
	return gr.keyID, true
}
