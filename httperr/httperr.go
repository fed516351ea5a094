// Package httperr defines the request error taxonomy and the single place
// where errors become HTTP responses. Every failure body has the same shape:
// {title, message, stackTrace}.
package httperr

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

const exposeKey = "httperr.exposeStacks"

// Error is a request failure with its HTTP mapping already decided.
type Error struct {
	Status  int
	Title   string
	Message string
	Stack   string
}

func (e *Error) Error() string { return e.Message }

func newError(status int, title, message string) *Error {
	return &Error{
		Status:  status,
		Title:   title,
		Message: message,
		Stack:   string(debug.Stack()),
	}
}

// Validation: missing or malformed input.
func Validation(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, "Validation Failed", fmt.Sprintf(format, args...))
}

// Conflict: a unique field collided. Surfaced as 400 like validation
// failures, with a message naming the field(s).
func Conflict(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, "Validation Failed", fmt.Sprintf(format, args...))
}

// Unauthorized: missing, invalid, expired or revoked token, or bad
// credentials.
func Unauthorized(format string, args ...any) *Error {
	return newError(http.StatusUnauthorized, "Unauthorized Request", fmt.Sprintf(format, args...))
}

// NotFound: a referenced resource is absent. This service surfaces it as
// 401, not 404.
func NotFound(format string, args ...any) *Error {
	return newError(http.StatusUnauthorized, "Resource Not Found", fmt.Sprintf(format, args...))
}

// Internal wraps an unexpected error as a 500.
func Internal(err error) *Error {
	return newError(http.StatusInternalServerError, "Internal Server Error", err.Error())
}

// Abort writes the error body and halts the request so no downstream
// handler runs.
func Abort(c *gin.Context, e *Error) {
	_ = c.Error(e)
	c.AbortWithStatusJSON(e.Status, body(c, e))
}

func body(c *gin.Context, e *Error) gin.H {
	out := gin.H{
		"title":   e.Title,
		"message": e.Message,
	}
	if c.GetBool(exposeKey) {
		out["stackTrace"] = e.Stack
	}
	return out
}

// Handler installs the error plumbing: it records whether stack traces may
// be exposed and converts panics into 500 responses with the standard body.
// It replaces gin.Recovery so that panics and raised errors share one shape.
func Handler(exposeStacks bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(exposeKey, exposeStacks)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				e := Internal(fmt.Errorf("%v", r))
				c.AbortWithStatusJSON(e.Status, body(c, e))
			}
		}()
		c.Next()
	}
}
