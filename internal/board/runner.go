package board

import (
	"context"
	"time"

	"github.com/kyiku/keydrop-back/internal/model"
)

// Broadcaster fans a message out to connected clients.
type Broadcaster interface {
	Broadcast(v interface{})
}

// Runner drives the board simulation at a fixed tick rate.
type Runner struct {
	board      *Board
	out        Broadcaster
	tickRate   int
	frameEvery int // broadcast one frame per this many ticks
}

// NewRunner creates a Runner stepping tickRate times per second.
func NewRunner(b *Board, out Broadcaster, tickRate, frameEvery int) *Runner {
	if tickRate <= 0 {
		tickRate = 60
	}
	if frameEvery <= 0 {
		frameEvery = 1
	}
	return &Runner{
		board:      b,
		out:        out,
		tickRate:   tickRate,
		frameEvery: frameEvery,
	}
}

// Run steps the board until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	dt := 1.0 / float64(r.tickRate)
	ticker := time.NewTicker(time.Second / time.Duration(r.tickRate))
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.board.Step(dt)
			tick++
			if tick%r.frameEvery == 0 && r.out != nil {
				r.out.Broadcast(FrameMessage(r.board.List()))
			}
		}
	}
}

// FrameMessage builds the per-frame pose broadcast.
func FrameMessage(shapes []model.PlacedShape) map[string]interface{} {
	poses := make([]model.PoseView, len(shapes))
	for i := range shapes {
		poses[i] = shapes[i].PoseView()
	}
	return map[string]interface{}{
		"type": "frame",
		"keys": poses,
	}
}
