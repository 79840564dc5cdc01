package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Counter reports a size, such as placed keys or connected clients.
type Counter interface {
	Len() int
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	keys    Counter
	clients Counter
}

// NewHealthHandler creates a new HealthHandler. Either counter may be nil.
func NewHealthHandler(keys, clients Counter) *HealthHandler {
	return &HealthHandler{keys: keys, clients: clients}
}

// Check returns the health status of the server.
func (h *HealthHandler) Check(c echo.Context) error {
	resp := map[string]interface{}{
		"status": "ok",
	}
	if h.keys != nil {
		resp["keys"] = h.keys.Len()
	}
	if h.clients != nil {
		resp["clients"] = h.clients.Len()
	}
	return c.JSON(http.StatusOK, resp)
}
