package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/keydrop-back/internal/board"
	"github.com/kyiku/keydrop-back/internal/render"
	"github.com/kyiku/keydrop-back/internal/response"
	"github.com/kyiku/keydrop-back/internal/storage"
)

// SnapshotStore stores rendered board images.
type SnapshotStore interface {
	UploadSnapshot(data []byte) (storage.Snapshot, error)
	GetSnapshot(id string) ([]byte, error)
	ListSnapshots() ([]storage.Snapshot, error)
}

// RenderHandler serves board images and snapshots.
type RenderHandler struct {
	board     *board.Board
	snapshots SnapshotStore
	logger    Logger
}

// NewRenderHandler creates a new RenderHandler. snapshots may be nil when
// storage is not configured.
func NewRenderHandler(b *board.Board, snapshots SnapshotStore, logger Logger) *RenderHandler {
	return &RenderHandler{board: b, snapshots: snapshots, logger: logger}
}

func (h *RenderHandler) scene() render.Scene {
	w, hgt := h.board.Size()
	return render.NewScene(w, hgt, h.board.List())
}

// SVG renders the board as SVG.
func (h *RenderHandler) SVG(c echo.Context) error {
	var buf bytes.Buffer
	render.SVG(&buf, h.scene())
	return c.Blob(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// PNG renders the board as PNG.
func (h *RenderHandler) PNG(c echo.Context) error {
	data, err := render.PNGBytes(h.scene())
	if err != nil {
		h.logger.Errorf("render png: %v", err)
		return domainError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// Snapshot renders the board and stores it.
func (h *RenderHandler) Snapshot(c echo.Context) error {
	if h.snapshots == nil {
		return response.Unavailable(c, "S3")
	}

	data, err := render.PNGBytes(h.scene())
	if err != nil {
		h.logger.Errorf("render snapshot: %v", err)
		return domainError(c, err)
	}

	snap, err := h.snapshots.UploadSnapshot(data)
	if err != nil {
		h.logger.Errorf("upload snapshot: %v", err)
		if errors.Is(err, storage.ErrInvalidSnapshot) {
			return response.BadRequest(c, "スナップショットが不正です")
		}
		return domainError(c, err)
	}

	h.logger.Infof("stored snapshot %s", snap.Key)
	return response.Created(c, map[string]interface{}{
		"snapshot": snap,
	})
}

// ListSnapshots lists stored snapshots.
func (h *RenderHandler) ListSnapshots(c echo.Context) error {
	if h.snapshots == nil {
		return response.Unavailable(c, "S3")
	}

	snaps, err := h.snapshots.ListSnapshots()
	if err != nil {
		h.logger.Errorf("list snapshots: %v", err)
		return domainError(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"snapshots": snaps,
	})
}

// GetSnapshot serves the PNG of one stored snapshot.
func (h *RenderHandler) GetSnapshot(c echo.Context) error {
	if h.snapshots == nil {
		return response.Unavailable(c, "S3")
	}

	data, err := h.snapshots.GetSnapshot(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidSnapshotID) {
			return response.BadRequest(c, "スナップショットIDが不正です")
		}
		h.logger.Warnf("get snapshot: %v", err)
		return response.ErrorWithCode(c, http.StatusNotFound, response.CodeNotFound, "スナップショットが見つかりません")
	}
	return c.Blob(http.StatusOK, "image/png", data)
}
