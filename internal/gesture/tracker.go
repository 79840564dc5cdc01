// Package gesture tracks in-flight pointer gestures on the board.
package gesture

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/model"
)

// ErrUnknownGesture is returned for gesture IDs that are not in flight.
var ErrUnknownGesture = errors.New("unknown gesture")

const (
	// RotateStep is the angle applied per rotate key repeat.
	RotateStep = math.Pi / 48
	// DefaultTTL is how long an idle gesture survives.
	DefaultTTL = 30 * time.Second
)

// Kind distinguishes drawing a new key from dragging an existing one.
type Kind int

const (
	KindDraw Kind = iota
	KindGrab
)

func (k Kind) String() string {
	if k == KindGrab {
		return "grab"
	}
	return "draw"
}

// Board is what the tracker needs from the shared board.
type Board interface {
	Preview(box keyshape.BoundingBox) (keyshape.Params, error)
	Spawn(box keyshape.BoundingBox, center r2.Vec, angle float64, params *keyshape.Params) (*model.PlacedShape, error)
	Grab(pointer string, p r2.Vec) (string, bool)
	MoveGrab(pointer string, p r2.Vec) bool
	Release(pointer string)
}

// State is a snapshot of one gesture.
type State struct {
	ID      string
	Kind    Kind
	Start   r2.Vec
	Current r2.Vec
	Angle   float64
	Preview *keyshape.Params
	KeyID   string
}

// Box returns the rectangle spanned by the gesture.
func (s State) Box() keyshape.BoundingBox {
	return keyshape.BoundingBox{
		Width:  math.Abs(s.Current.X - s.Start.X),
		Height: math.Abs(s.Current.Y - s.Start.Y),
	}
}

// Center returns the midpoint of the spanned rectangle.
func (s State) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(s.Start, s.Current))
}

// Outcome reports what ending a gesture did.
type Outcome struct {
	Kind     Kind
	Spawned  *model.PlacedShape
	Released string
}

// Discarded reports whether a draw gesture ended without spawning.
func (o Outcome) Discarded() bool {
	return o.Kind == KindDraw && o.Spawned == nil
}

type entry struct {
	state      State
	previewBox keyshape.BoundingBox // box state.Preview was generated for
	timer      *time.Timer
	gen        uint64 // bumped on every touch; stale timer fires are ignored
}

// Tracker keeps one record per in-flight gesture. It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	board    Board
	ttl      time.Duration
	gestures map[string]*entry
	onExpire func(id string)
}

// NewTracker creates a Tracker. A non-positive ttl uses DefaultTTL.
func NewTracker(b Board, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		board:    b,
		ttl:      ttl,
		gestures: make(map[string]*entry),
	}
}

// SetExpireHandler registers fn to run after an idle gesture is dropped.
func (t *Tracker) SetExpireHandler(fn func(id string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpire = fn
}

// Begin starts a gesture at p. A key under p is grabbed, otherwise a draw
// gesture starts.
func (t *Tracker) Begin(p r2.Vec) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.New().String()
	st := State{ID: id, Kind: KindDraw, Start: p, Current: p}
	if keyID, ok := t.board.Grab(id, p); ok {
		st.Kind = KindGrab
		st.KeyID = keyID
	}

	e := &entry{state: st}
	t.gestures[id] = e
	t.armLocked(id, e)
	return st
}

// Move updates the pointer. Draw gestures regenerate their preview.
func (t *Tracker) Move(id string, p r2.Vec) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.touch(id)
	if !ok {
		return State{}, ErrUnknownGesture
	}
	t.moveLocked(e, p)
	return e.state, nil
}

// Rotate adds delta radians to a draw gesture's angle.
func (t *Tracker) Rotate(id string, delta float64) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.touch(id)
	if !ok {
		return State{}, ErrUnknownGesture
	}
	if e.state.Kind == KindDraw {
		e.state.Angle += delta
	}
	return e.state, nil
}

// ResetAngle sets a draw gesture's angle back to zero.
func (t *Tracker) ResetAngle(id string) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.touch(id)
	if !ok {
		return State{}, ErrUnknownGesture
	}
	e.state.Angle = 0
	return e.state, nil
}

// End finishes a gesture at p. Grabs are released. Draw gestures spawn the
// last preview when the box is large enough and are discarded otherwise.
// Fresh params are generated only when no preview exists for the final box.
func (t *Tracker) End(id string, p r2.Vec) (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.gestures[id]
	if !ok {
		return Outcome{}, ErrUnknownGesture
	}
	e.state.Current = p
	if e.state.Kind == KindGrab {
		t.board.MoveGrab(id, p)
	}
	t.dropLocked(id, e)

	st := e.state
	if st.Kind == KindGrab {
		return Outcome{Kind: KindGrab, Released: st.KeyID}, nil
	}

	box := st.Box()
	if !box.Usable() {
		return Outcome{Kind: KindDraw}, nil
	}

	params := st.Preview
	if params == nil || e.previewBox != box {
		fresh, err := t.board.Preview(box)
		if err != nil {
			return Outcome{Kind: KindDraw}, fmt.Errorf("end gesture %s: %w", id, err)
		}
		params = &fresh
	}
	shape, err := t.board.Spawn(box, st.Center(), st.Angle, params)
	if err != nil {
		return Outcome{Kind: KindDraw}, fmt.Errorf("end gesture %s: %w", id, err)
	}
	return Outcome{Kind: KindDraw, Spawned: shape}, nil
}

// Cancel abandons a gesture without spawning.
func (t *Tracker) Cancel(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.gestures[id]
	if !ok {
		return ErrUnknownGesture
	}
	t.dropLocked(id, e)
	return nil
}

// Get returns a snapshot of a gesture.
func (t *Tracker) Get(id string) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.gestures[id]
	if !ok {
		return State{}, ErrUnknownGesture
	}
	return e.state, nil
}

// Len returns the number of in-flight gestures.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.gestures)
}

func (t *Tracker) touch(id string) (*entry, bool) {
	e, ok := t.gestures[id]
	if !ok {
		return nil, false
	}
	e.timer.Stop()
	t.armLocked(id, e)
	return e, true
}

// armLocked starts a fresh TTL timer tagged with a new generation.
func (t *Tracker) armLocked(id string, e *entry) {
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(t.ttl, func() { t.expire(id, gen) })
}

func (t *Tracker) moveLocked(e *entry, p r2.Vec) {
	e.state.Current = p
	if e.state.Kind == KindGrab {
		t.board.MoveGrab(e.state.ID, p)
		return
	}

	box := e.state.Box()
	params, err := t.board.Preview(box)
	if err != nil {
		e.state.Preview = nil
		return
	}
	e.state.Preview = &params
	e.previewBox = box
}

func (t *Tracker) dropLocked(id string, e *entry) {
	e.timer.Stop()
	delete(t.gestures, id)
	if e.state.Kind == KindGrab {
		t.board.Release(id)
	}
}

// expire drops the gesture unless it was touched after the timer of
// generation gen was armed.
func (t *Tracker) expire(id string, gen uint64) {
	t.mu.Lock()
	e, ok := t.gestures[id]
	if !ok || e.gen != gen {
		t.mu.Unlock()
		return
	}
	t.dropLocked(id, e)
	fn := t.onExpire
	t.mu.Unlock()

	if fn != nil {
		fn(id)
	}
}
