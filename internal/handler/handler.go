// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/keydrop-back/internal/board"
	"github.com/kyiku/keydrop-back/internal/gesture"
	"github.com/kyiku/keydrop-back/internal/response"
)

// Broadcaster fans a message out to stream clients.
type Broadcaster interface {
	Broadcast(v interface{})
}

// Logger is the subset of the echo logger handlers write to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// PointRequest carries a pointer position.
type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoxRequest carries a bounding box size.
type BoxRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// domainError maps domain errors onto API error responses.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, board.ErrTooSmall):
		return response.ErrorWithCode(c, http.StatusUnprocessableEntity, response.CodeBoxTooSmall, "枠が小さすぎます")
	case errors.Is(err, board.ErrNotFound):
		return response.ErrorWithCode(c, http.StatusNotFound, response.CodeNotFound, "キーが見つかりません")
	case errors.Is(err, gesture.ErrUnknownGesture):
		return response.ErrorWithCode(c, http.StatusNotFound, response.CodeNotFound, "ジェスチャーが見つかりません")
	default:
		return response.ErrorWithCode(c, http.StatusInternalServerError, response.CodeInternalError, "サーバーエラーが発生しました")
	}
}
