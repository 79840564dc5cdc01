package handler

import (
	"github.com/labstack/echo/v4"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/board"
	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/model"
	"github.com/kyiku/keydrop-back/internal/response"
)

// KeysHandler handles spawning, listing and clearing keys.
type KeysHandler struct {
	board *board.Board
	out   Broadcaster
}

// NewKeysHandler creates a new KeysHandler.
func NewKeysHandler(b *board.Board, out Broadcaster) *KeysHandler {
	return &KeysHandler{board: b, out: out}
}

// SpawnRequest represents a direct spawn request.
type SpawnRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

// List returns every placed key.
func (h *KeysHandler) List(c echo.Context) error {
	shapes := h.board.List()
	views := make([]model.ShapeView, len(shapes))
	for i := range shapes {
		views[i] = shapes[i].View()
	}
	return response.Success(c, map[string]interface{}{
		"keys":  views,
		"count": len(views),
	})
}

// Spawn places a new key centered at (x, y).
func (h *KeysHandler) Spawn(c echo.Context) error {
	var req SpawnRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "リクエストが不正です")
	}
	if !finite(req.X, req.Y, req.Width, req.Height, req.Angle) {
		return response.BadRequest(c, "数値が不正です")
	}

	box := keyshape.BoundingBox{Width: req.Width, Height: req.Height}
	shape, err := h.board.Spawn(box, r2.Vec{X: req.X, Y: req.Y}, req.Angle, nil)
	if err != nil {
		return domainError(c, err)
	}

	view := shape.View()
	h.broadcast(SpawnMessage(view))
	return response.Created(c, map[string]interface{}{
		"key": view,
	})
}

// Clear removes every placed key.
func (h *KeysHandler) Clear(c echo.Context) error {
	n := h.board.Clear()
	h.broadcast(ClearMessage(n))
	return response.Success(c, map[string]interface{}{
		"cleared": n,
	})
}

// Preview returns ephemeral params for a box without placing anything.
func (h *KeysHandler) Preview(c echo.Context) error {
	var req BoxRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "リクエストが不正です")
	}
	if !finite(req.Width, req.Height) {
		return response.BadRequest(c, "数値が不正です")
	}

	params, err := h.board.Preview(keyshape.BoundingBox{Width: req.Width, Height: req.Height})
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"params": model.NewParamsView(params),
	})
}

func (h *KeysHandler) broadcast(v interface{}) {
	if h.out != nil {
		h.out.Broadcast(v)
	}
}

// SpawnMessage is the stream event for a new key.
func SpawnMessage(view model.ShapeView) map[string]interface{} {
	return map[string]interface{}{
		"type": "spawn",
		"key":  view,
	}
}

// ClearMessage is the stream event for clear-all.
func ClearMessage(n int) map[string]interface{} {
	return map[string]interface{}{
		"type":  "clear",
		"count": n,
	}
}
