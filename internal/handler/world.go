package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kyiku/keydrop-back/internal/board"
	"github.com/kyiku/keydrop-back/internal/response"
)

// WorldHandler handles gravity and viewport changes.
type WorldHandler struct {
	board *board.Board
	out   Broadcaster
}

// NewWorldHandler creates a new WorldHandler.
func NewWorldHandler(b *board.Board, out Broadcaster) *WorldHandler {
	return &WorldHandler{board: b, out: out}
}

// TiltRequest is one device orientation event, in degrees.
type TiltRequest struct {
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// GyroRequest toggles tilt driven gravity.
type GyroRequest struct {
	Enabled bool `json:"enabled"`
}

// Tilt feeds an orientation event into the gravity sensor.
func (h *WorldHandler) Tilt(c echo.Context) error {
	var req TiltRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "リクエストが不正です")
	}

	g, enabled := h.board.Tilt(req.Beta, req.Gamma)
	return response.Success(c, map[string]interface{}{
		"enabled": enabled,
		"gravity": map[string]float64{"x": g.X, "y": g.Y},
	})
}

// Gyro enables or disables tilt gravity.
func (h *WorldHandler) Gyro(c echo.Context) error {
	var req GyroRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "リクエストが不正です")
	}

	h.board.SetGyro(req.Enabled)
	if h.out != nil {
		h.out.Broadcast(map[string]interface{}{
			"type":    "gyro",
			"enabled": req.Enabled,
		})
	}
	return response.Success(c, map[string]interface{}{
		"enabled": req.Enabled,
	})
}

// Resize rebuilds the world bounds for a new viewport.
func (h *WorldHandler) Resize(c echo.Context) error {
	var req BoxRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "リクエストが不正です")
	}
	if !finite(req.Width, req.Height) || req.Width <= 0 || req.Height <= 0 {
		return response.BadRequest(c, "サイズが不正です")
	}

	h.board.Resize(req.Width, req.Height)
	return response.Success(c, map[string]interface{}{
		"width":  req.Width,
		"height": req.Height,
	})
}
