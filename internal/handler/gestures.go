package handler

import (
	"github.com/labstack/echo/v4"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/gesture"
	"github.com/kyiku/keydrop-back/internal/model"
	"github.com/kyiku/keydrop-back/internal/response"
)

// GestureHandler exposes pointer gestures over HTTP.
type GestureHandler struct {
	tracker *gesture.Tracker
	out     Broadcaster
}

// NewGestureHandler creates a new GestureHandler.
func NewGestureHandler(tracker *gesture.Tracker, out Broadcaster) *GestureHandler {
	return &GestureHandler{tracker: tracker, out: out}
}

// RotateRequest rotates a draw gesture by Steps increments, or resets it.
type RotateRequest struct {
	Steps int  `json:"steps"`
	Reset bool `json:"reset"`
}

// GestureView is the JSON form of a gesture.
type GestureView struct {
	ID      string            `json:"id"`
	Kind    string            `json:"kind"`
	X       float64           `json:"x"`
	Y       float64           `json:"y"`
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
	Angle   float64           `json:"angle"`
	Preview *model.ParamsView `json:"preview,omitempty"`
	KeyID   string            `json:"key_id,omitempty"`
}

func newGestureView(st gesture.State) GestureView {
	box := st.Box()
	center := st.Center()
	v := GestureView{
		ID:     st.ID,
		Kind:   st.Kind.String(),
		X:      center.X,
		Y:      center.Y,
		Width:  box.Width,
		Height: box.Height,
		Angle:  st.Angle,
		KeyID:  st.KeyID,
	}
	if st.Preview != nil {
		p := model.NewParamsView(*st.Preview)
		v.Preview = &p
	}
	return v
}

func bindPoint(c echo.Context) (r2.Vec, bool) {
	var req PointRequest
	if err := c.Bind(&req); err != nil || !finite(req.X, req.Y) {
		return r2.Vec{}, false
	}
	return r2.Vec{X: req.X, Y: req.Y}, true
}

// Begin starts a gesture at the pointer.
func (h *GestureHandler) Begin(c echo.Context) error {
	p, ok := bindPoint(c)
	if !ok {
		return response.BadRequest(c, "座標が不正です")
	}

	st := h.tracker.Begin(p)
	return response.Created(c, map[string]interface{}{
		"gesture": newGestureView(st),
	})
}

// Move updates the pointer of a gesture.
func (h *GestureHandler) Move(c echo.Context) error {
	p, ok := bindPoint(c)
	if !ok {
		return response.BadRequest(c, "座標が不正です")
	}

	st, err := h.tracker.Move(c.Param("id"), p)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"gesture": newGestureView(st),
	})
}

// Rotate adjusts the angle of a draw gesture.
func (h *GestureHandler) Rotate(c echo.Context) error {
	var req RotateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "リクエストが不正です")
	}

	id := c.Param("id")
	var (
		st  gesture.State
		err error
	)
	if req.Reset {
		st, err = h.tracker.ResetAngle(id)
	} else {
		st, err = h.tracker.Rotate(id, float64(req.Steps)*gesture.RotateStep)
	}
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"gesture": newGestureView(st),
	})
}

// End finishes a gesture: releases a grab or spawns the previewed key.
func (h *GestureHandler) End(c echo.Context) error {
	p, ok := bindPoint(c)
	if !ok {
		return response.BadRequest(c, "座標が不正です")
	}

	out, err := h.tracker.End(c.Param("id"), p)
	if err != nil {
		return domainError(c, err)
	}

	resp := map[string]interface{}{
		"kind":      out.Kind.String(),
		"discarded": out.Discarded(),
	}
	if out.Released != "" {
		resp["released"] = out.Released
	}
	if out.Spawned != nil {
		view := out.Spawned.View()
		resp["key"] = view
		if h.out != nil {
			h.out.Broadcast(SpawnMessage(view))
		}
	}
	return response.Success(c, resp)
}

// Cancel abandons a gesture.
func (h *GestureHandler) Cancel(c echo.Context) error {
	if err := h.tracker.Cancel(c.Param("id")); err != nil {
		return domainError(c, err)
	}
	return response.Success(c, nil)
}
