// Package apperr defines the single structured error type used across
// services and handlers, plus the Echo error handler that turns any
// error into the API's JSON error shape.
package apperr

import (
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
)

// Error carries an HTTP status and a client-facing message. All domain
// failures (validation, auth, conflicts, missing entities) are raised
// as *Error; anything else reaching the boundary is treated as an
// internal error.
type Error struct {
	Status  int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// New builds an *Error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Convenience constructors for the common taxonomy.
func BadRequest(msg string) *Error   { return New(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, msg) }
func NotFound(msg string) *Error     { return New(http.StatusNotFound, msg) }
func Internal(msg string) *Error     { return New(http.StatusInternalServerError, msg) }

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Handler returns an echo.HTTPErrorHandler that serializes errors as
// {code, message}. In production the message of an unexpected error is
// replaced with a generic string so internals never leak; in any other
// environment (development, test) the response also carries a stack
// trace and the error is logged in full.
func Handler(env string) echo.HTTPErrorHandler {
	dev := env != "production"
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := errorBody{Code: http.StatusInternalServerError, Message: "Internal Server Error"}

		var appErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			body.Code = appErr.Status
			body.Message = appErr.Message
		case errors.As(err, &httpErr):
			body.Code = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				body.Message = m
			}
		default:
			if dev {
				body.Message = err.Error()
			}
		}

		if dev {
			body.Stack = string(debug.Stack())
			log.Printf("request error: %v", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(body.Code)
			return
		}
		_ = c.JSON(body.Code, body)
	}
}
