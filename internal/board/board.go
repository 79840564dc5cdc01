// Package board owns the placed keys and the world they live in.
package board

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/model"
	"github.com/kyiku/keydrop-back/internal/physics"
	"github.com/kyiku/keydrop-back/internal/placement"
	"github.com/kyiku/keydrop-back/internal/tilt"
)

var (
	// ErrTooSmall is returned for boxes below keyshape.MinSize.
	ErrTooSmall = errors.New("bounding box too small")
	// ErrNotFound is returned for unknown shape IDs.
	ErrNotFound = errors.New("shape not found")
)

// Logger is the subset of the echo logger the board writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Options configures a Board.
type Options struct {
	Width        float64
	Height       float64
	GravityScale float64
	MaxAttempts  int
	Step         float64
}

// Board is the shared key board. It is safe for concurrent use.
type Board struct {
	mu           sync.RWMutex
	gen          *keyshape.Generator
	placer       *placement.Placer
	collides     placement.CollidesFunc
	world        *physics.World
	sensor       *tilt.Sensor
	gravityScale float64
	shapes       map[string]*model.PlacedShape
	order        []string
	logger       Logger
}

// New creates an empty board.
func New(opts Options, gen *keyshape.Generator, logger Logger) *Board {
	return &Board{
		gen:          gen,
		placer:       placement.NewPlacerWithLimits(opts.MaxAttempts, opts.Step),
		collides:     physics.Collides,
		world:        physics.NewWorld(opts.Width, opts.Height, opts.GravityScale),
		sensor:       tilt.NewSensor(1),
		gravityScale: opts.GravityScale,
		shapes:       make(map[string]*model.PlacedShape),
		logger:       logger,
	}
}

// SetCollides replaces the overlap predicate used during spawn placement.
func (b *Board) SetCollides(fn placement.CollidesFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collides = fn
}

// Preview generates ephemeral params for a box. Nothing is stored.
func (b *Board) Preview(box keyshape.BoundingBox) (keyshape.Params, error) {
	if !box.Usable() {
		return keyshape.Params{}, ErrTooSmall
	}
	return b.gen.Generate(box.Width, box.Height), nil
}

// Spawn commits a new key centered near center. When params is nil a fresh
// set is generated. The spawn position is moved up until it clears the
// current poses of existing keys, within the placer's bounds.
func (b *Board) Spawn(box keyshape.BoundingBox, center r2.Vec, angle float64, params *keyshape.Params) (*model.PlacedShape, error) {
	if !box.Usable() {
		return nil, fmt.Errorf("spawn %.1fx%.1f: %w", box.Width, box.Height, ErrTooSmall)
	}

	var p keyshape.Params
	if params != nil {
		p = params.Clone()
	} else {
		p = b.gen.Generate(box.Width, box.Height)
	}
	g := keyshape.Build(box, p, angle)

	b.mu.Lock()
	defer b.mu.Unlock()

	existing := make([]keyshape.Geometry, 0, len(b.order))
	for _, id := range b.order {
		existing = append(existing, b.shapes[id].Geometry)
	}

	res := b.placer.Resolve(center, g, existing, b.collides)
	if !res.Resolved {
		b.logger.Warnf("spawn overlap unresolved after %d attempts at (%.1f, %.1f)", res.Attempts, res.Position.X, res.Position.Y)
	}

	shape := model.NewPlacedShape(box, p, g.At(res.Position))
	b.world.Add(shape.ID, shape.Geometry)
	b.shapes[shape.ID] = shape
	b.order = append(b.order, shape.ID)

	b.logger.Infof("spawned key %s at (%.1f, %.1f) after %d attempts", shape.ID, res.Position.X, res.Position.Y, res.Attempts)
	return shape, nil
}

// Get returns a snapshot of one shape.
func (b *Board) Get(id string) (model.PlacedShape, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.shapes[id]
	if !ok {
		return model.PlacedShape{}, ErrNotFound
	}
	return *s, nil
}

// List returns snapshots of all shapes in spawn order.
func (b *Board) List() []model.PlacedShape {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.PlacedShape, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.shapes[id])
	}
	return out
}

// Len returns the number of placed shapes.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Clear destroys every placed shape.
func (b *Board) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.order)
	b.world.Clear()
	b.shapes = make(map[string]*model.PlacedShape)
	b.order = b.order[:0]

	b.logger.Infof("cleared %d keys", n)
	return n
}

// Step advances the world by dt seconds and syncs shape poses from it.
func (b *Board) Step(dt float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sensor.Enabled() {
		b.world.SetGravity(r2.Scale(b.gravityScale, b.sensor.Gravity()))
	}
	b.world.Step(dt)

	for id, s := range b.shapes {
		if pose, ok := b.world.Pose(id); ok {
			s.MoveTo(pose.Position, pose.Angle)
		}
	}
}

// Size returns the world viewport.
func (b *Board) Size() (float64, float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.world.Size()
}

// Resize rebuilds the world bounds for a new viewport.
func (b *Board) Resize(width, height float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.world.Resize(width, height)
}

// SetGyro enables or disables tilt driven gravity.
func (b *Board) SetGyro(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sensor.SetEnabled(enabled)
	if !enabled {
		b.world.SetGravity(r2.Vec{X: 0, Y: b.gravityScale})
	}
}

// Tilt feeds one device orientation event. It returns the resulting gravity
// and whether tilt gravity is enabled.
func (b *Board) Tilt(beta, gamma float64) (r2.Vec, bool) {
	ok := b.sensor.Update(beta, gamma)
	return r2.Scale(b.gravityScale, b.sensor.Gravity()), ok
}

// Grab attaches pointer to the key under p.
func (b *Board) Grab(pointer string, p r2.Vec) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.world.Grab(pointer, p)
}

// MoveGrab moves a pointer's grab anchor.
func (b *Board) MoveGrab(pointer string, p r2.Vec) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.world.MoveGrab(pointer, p)
}

// Release drops a pointer's grab.
func (b *Board) Release(pointer string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.world.Release(pointer)
}
