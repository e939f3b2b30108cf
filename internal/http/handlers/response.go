// Package handlers implements the poll API endpoints over the service layer.
//
// Every failure leaves as an ErrorResponse with a stable code; service errors
// are translated in errors.go so handlers never pick status codes for them.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Akins-Coded/Online-Poll-System/internal/http/middleware"
)

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Machine-readable code, see errors.go
	Code string `json:"code" example:"already_voted"`
	// Safe to show to users
	Message string `json:"message" example:"you have already voted in this poll"`
}

// fail aborts with an ErrorResponse. Server errors are logged on the request
// logger so they carry the request id.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail lets the router answer NoRoute/NoMethod in the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }
