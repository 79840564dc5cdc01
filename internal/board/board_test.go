package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/physics"
	"github.com/kyiku/keydrop-back/internal/stream"
	"github.com/kyiku/keydrop-back/internal/testutil"
)

func newTestBoard() *Board {
	return New(Options{
		Width:        1024,
		Height:       768,
		GravityScale: 900,
		MaxAttempts:  30,
		Step:         10,
	}, keyshape.NewGenerator(), testutil.NewTestLogger())
}

func TestBoard_Spawn(t *testing.T) {
	tests := []struct {
		name    string
		box     keyshape.BoundingBox
		wantErr error
	}{
		{
			name: "正常系: 通常サイズ",
			box:  keyshape.BoundingBox{Width: 200, Height: 100},
		},
		{
			name: "正常系: 最小サイズ",
			box:  keyshape.BoundingBox{Width: 24, Height: 24},
		},
		{
			name:    "異常系: 幅が小さすぎる",
			box:     keyshape.BoundingBox{Width: 10, Height: 100},
			wantErr: ErrTooSmall,
		},
		{
			name:    "異常系: 高さが小さすぎる",
			box:     keyshape.BoundingBox{Width: 100, Height: 23},
			wantErr: ErrTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard()

			shape, err := b.Spawn(tt.box, r2.Vec{X: 500, Y: 400}, 0.2, nil)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Equal(t, 0, b.Len())
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, shape.ID)
			// 最初の1つは目標位置そのまま
			assert.Equal(t, r2.Vec{X: 500, Y: 400}, shape.Position())
			assert.Equal(t, 0.2, shape.Angle())
			assert.LessOrEqual(t, shape.Params.HeadWidth, tt.box.Width*0.5)
			assert.Equal(t, 1, b.Len())
		})
	}
}

func TestBoard_SpawnAvoidsOverlap(t *testing.T) {
	b := newTestBoard()
	box := keyshape.BoundingBox{Width: 200, Height: 100}
	center := r2.Vec{X: 500, Y: 400}

	first, err := b.Spawn(box, center, 0, nil)
	require.NoError(t, err)

	second, err := b.Spawn(box, center, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, center.X, second.Position().X)
	assert.Less(t, second.Position().Y, center.Y)
	assert.False(t, physics.Collides(second.Geometry, []keyshape.Geometry{first.Geometry}))
}

func TestBoard_SpawnCommittedParams(t *testing.T) {
	b := newTestBoard()
	box := keyshape.BoundingBox{Width: 200, Height: 100}
	params, err := b.Preview(box)
	require.NoError(t, err)

	shape, err := b.Spawn(box, r2.Vec{X: 300, Y: 300}, 0, &params)
	require.NoError(t, err)

	assert.Equal(t, params, shape.Params)

	// 呼び出し側の変更は反映されない
	params.Notches[0] = -1
	got, err := b.Get(shape.ID)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, got.Params.Notches[0])
}

func TestBoard_SpawnUnresolved(t *testing.T) {
	b := newTestBoard()
	b.SetCollides(func(keyshape.Geometry, []keyshape.Geometry) bool { return true })
	box := keyshape.BoundingBox{Width: 100, Height: 60}

	_, err := b.Spawn(box, r2.Vec{X: 500, Y: 500}, 0, nil)
	require.NoError(t, err)

	shape, err := b.Spawn(box, r2.Vec{X: 500, Y: 500}, 0, nil)
	require.NoError(t, err)

	// ベストエフォート: 30回 × 10 上に移動
	assert.InDelta(t, 200.0, shape.Position().Y, 1e-9)
}

func TestBoard_Preview(t *testing.T) {
	b := newTestBoard()

	_, err := b.Preview(keyshape.BoundingBox{Width: 5, Height: 5})
	assert.ErrorIs(t, err, ErrTooSmall)

	p, err := b.Preview(keyshape.BoundingBox{Width: 120, Height: 80})
	require.NoError(t, err)
	assert.LessOrEqual(t, p.HeadWidth, 60.0)
	assert.Equal(t, 0, b.Len())
}

func TestBoard_ListGetClear(t *testing.T) {
	b := newTestBoard()
	box := keyshape.BoundingBox{Width: 100, Height: 60}

	a, err := b.Spawn(box, r2.Vec{X: 200, Y: 300}, 0, nil)
	require.NoError(t, err)
	c, err := b.Spawn(box, r2.Vec{X: 700, Y: 300}, 0, nil)
	require.NoError(t, err)

	list := b.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)

	got, err := b.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = b.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 2, b.Clear())
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.List())
}

func TestBoard_StepSyncsPose(t *testing.T) {
	b := newTestBoard()
	shape, err := b.Spawn(keyshape.BoundingBox{Width: 150, Height: 80}, r2.Vec{X: 500, Y: 200}, 0, nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		b.Step(1.0 / 60)
	}

	got, err := b.Get(shape.ID)
	require.NoError(t, err)
	assert.Greater(t, got.Position().Y, 200.0)
}

func TestBoard_Gyro(t *testing.T) {
	b := newTestBoard()

	_, ok := b.Tilt(0, 45)
	assert.False(t, ok)

	b.SetGyro(true)
	g, ok := b.Tilt(0, 45)
	require.True(t, ok)
	assert.Greater(t, g.X, 0.0)

	b.Step(1.0 / 60)
	assert.Greater(t, b.world.Gravity().X, 0.0)

	b.SetGyro(false)
	assert.Equal(t, r2.Vec{X: 0, Y: 900}, b.world.Gravity())
}

func TestBoard_GrabRelease(t *testing.T) {
	b := newTestBoard()
	shape, err := b.Spawn(keyshape.BoundingBox{Width: 200, Height: 100}, r2.Vec{X: 500, Y: 400}, 0, nil)
	require.NoError(t, err)

	shaft := r2.Add(shape.Position(), shape.Geometry.Offsets()[1])
	id, ok := b.Grab("p1", shaft)
	require.True(t, ok)
	assert.Equal(t, shape.ID, id)

	assert.True(t, b.MoveGrab("p1", r2.Vec{X: 500, Y: 200}))
	b.Release("p1")
	assert.False(t, b.MoveGrab("p1", r2.Vec{X: 500, Y: 200}))
}

func TestBoard_Resize(t *testing.T) {
	b := newTestBoard()

	b.Resize(640, 480)

	w, h := b.Size()
	assert.Equal(t, 640.0, w)
	assert.Equal(t, 480.0, h)
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
}

func (r *recordingBroadcaster) Broadcast(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, v)
}

func (r *recordingBroadcaster) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func TestRunner_Run(t *testing.T) {
	b := newTestBoard()
	_, err := b.Spawn(keyshape.BoundingBox{Width: 100, Height: 60}, r2.Vec{X: 300, Y: 100}, 0, nil)
	require.NoError(t, err)

	out := &recordingBroadcaster{}
	runner := NewRunner(b, out, 100, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}

	assert.Greater(t, out.count(), 0)

	msg, ok := out.messages[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "frame", msg["type"])
}

func TestRunner_RunThroughHub(t *testing.T) {
	b := newTestBoard()
	_, err := b.Spawn(keyshape.BoundingBox{Width: 100, Height: 60}, r2.Vec{X: 300, Y: 100}, 0, nil)
	require.NoError(t, err)

	hub := stream.NewHub()
	conn := testutil.NewMockWebSocketConn()
	hub.Add("client1", conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewRunner(b, hub, 100, 1).Run(ctx)

	msgs := testutil.WaitForMessages(conn, 3, 2*time.Second)
	require.GreaterOrEqual(t, len(msgs), 3)
	cancel()

	for _, msg := range msgs {
		assert.Equal(t, "frame", msg["type"])
		keys := msg["keys"].([]interface{})
		assert.Len(t, keys, 1)
	}
	// 重力で落下している
	first := msgs[0]["keys"].([]interface{})[0].(map[string]interface{})
	last := msgs[len(msgs)-1]["keys"].([]interface{})[0].(map[string]interface{})
	assert.Greater(t, last["y"].(float64), first["y"].(float64))
}
