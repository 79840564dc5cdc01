package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/board"
	"github.com/kyiku/keydrop-back/internal/designer"
	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/model"
	"github.com/kyiku/keydrop-back/internal/stream"
	"github.com/kyiku/keydrop-back/internal/websocket"
)

// designBox is the box the designer starts from.
var designBox = keyshape.BoundingBox{Width: 240, Height: 120}

// StreamHandler handles WebSocket connections.
type StreamHandler struct {
	hub       *stream.Hub
	board     *board.Board
	upgrader  gorilla.Upgrader
	designFPS int
	logger    Logger
}

// NewStreamHandler creates a new StreamHandler. checkOrigin may be nil to
// accept any origin.
func NewStreamHandler(hub *stream.Hub, b *board.Board, checkOrigin func(r *http.Request) bool, logger Logger) *StreamHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &StreamHandler{
		hub:   hub,
		board: b,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		designFPS: 30,
		logger:    logger,
	}
}

// Connect upgrades the request and serves the stream until the client leaves.
func (h *StreamHandler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warnf("websocket upgrade failed: %v", err)
		return nil
	}

	id := uuid.New().String()
	client := h.hub.Add(id, conn)
	h.logger.Infof("stream client %s connected (%d total)", id, h.hub.Len())

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer func() {
		cancel()
		h.hub.Remove(id)
		_ = conn.Close()
		h.logger.Infof("stream client %s disconnected", id)
	}()

	if err := client.Send(h.helloMessage(id)); err != nil {
		return nil
	}

	initial, _ := h.board.Preview(designBox)
	design := designer.NewSession(initial, h.designFPS)
	go h.runDesigner(ctx, client, design)

	router := websocket.NewRouter(client)
	router.On("slider", func(msg websocket.Message) error {
		return design.Set(msg.Slider, msg.Value)
	})
	router.On("drop", func(msg websocket.Message) error {
		return h.drop(design, msg)
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return nil
		}
		if err := router.Handle(raw); err != nil {
			_ = client.Send(map[string]interface{}{
				"type":    "error",
				"message": err.Error(),
			})
		}
	}
}

func (h *StreamHandler) helloMessage(id string) map[string]interface{} {
	shapes := h.board.List()
	views := make([]model.ShapeView, len(shapes))
	for i := range shapes {
		views[i] = shapes[i].View()
	}
	w, hgt := h.board.Size()
	return map[string]interface{}{
		"type":   "hello",
		"id":     id,
		"width":  w,
		"height": hgt,
		"keys":   views,
	}
}

// runDesigner streams design frames while the designer is easing.
func (h *StreamHandler) runDesigner(ctx context.Context, client *stream.Client, design *designer.Session) {
	ticker := time.NewTicker(time.Second / time.Duration(h.designFPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if design.Settled() {
				continue
			}
			if err := client.Send(DesignMessage(design.Step())); err != nil {
				return
			}
		}
	}
}

// drop spawns the current design into the board.
func (h *StreamHandler) drop(design *designer.Session, msg websocket.Message) error {
	if !finite(msg.X, msg.Y, msg.Width, msg.Height, msg.Angle) {
		return errors.New("invalid drop")
	}
	box := keyshape.BoundingBox{Width: msg.Width, Height: msg.Height}
	if box.Width == 0 && box.Height == 0 {
		box = designBox
	}

	params := design.Params()
	shape, err := h.board.Spawn(box, r2.Vec{X: msg.X, Y: msg.Y}, msg.Angle, &params)
	if err != nil {
		return err
	}
	h.hub.Broadcast(SpawnMessage(shape.View()))
	return nil
}

// DesignMessage is the stream event for one designer frame.
func DesignMessage(p keyshape.Params) map[string]interface{} {
	return map[string]interface{}{
		"type":   "design",
		"params": model.NewParamsView(p),
	}
}
