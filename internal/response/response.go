// Package response provides helpers for consistent API responses.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error codes shared by handlers.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeBoxTooSmall    = "BOX_TOO_SMALL"
	CodeNotFound       = "NOT_FOUND"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Success sends a successful JSON response with the given data.
// The response will always include "error": false.
func Success(c echo.Context, data map[string]interface{}) error {
	return successWithStatus(c, http.StatusOK, data)
}

// Created is Success with 201 Created.
func Created(c echo.Context, data map[string]interface{}) error {
	return successWithStatus(c, http.StatusCreated, data)
}

func successWithStatus(c echo.Context, status int, data map[string]interface{}) error {
	resp := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		resp[k] = v
	}
	resp["error"] = false

	return c.JSON(status, resp)
}

// Error sends an error JSON response with the given status code and message.
func Error(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}

// ErrorWithCode sends an error response with a specific error code.
// This is useful for clients that need to handle specific error types.
func ErrorWithCode(c echo.Context, statusCode int, code string, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"code":    code,
		"message": message,
	})
}

// BadRequest sends a 400 with CodeInvalidRequest.
func BadRequest(c echo.Context, message string) error {
	return ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, message)
}

// Unavailable sends a 503 for a backing service that is not configured.
func Unavailable(c echo.Context, service string) error {
	return ErrorWithCode(c, http.StatusServiceUnavailable, CodeUnavailable, service+" is not configured")
}
