// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Service errors are translated by failErr through a single
// table, so a sentinel maps to the same status and code on every route.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "already_voted",
//	  "message": "user has already voted on this poll"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Akins-Coded/Online-Poll-System/internal/http/middleware"
	"github.com/Akins-Coded/Online-Poll-System/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodePollExpired    = "poll_expired"
	ErrCodeAlreadyVoted   = "already_voted"
	ErrCodeVotesImmutable = "votes_immutable"
)

// errMapping binds a service sentinel to its HTTP status and code.
type errMapping struct {
	target error
	status int
	code   string
}

var errTable = []errMapping{
	{services.ErrEmptyTitle, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrTitleTooLong, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrEmptyOptionText, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrOptionTooLong, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrInvalidExpiry, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrMissingOption, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrOptionPollMismatch, http.StatusBadRequest, ErrCodeBadRequest},

	{services.ErrPollExpired, http.StatusBadRequest, ErrCodePollExpired},
	{services.ErrAlreadyVoted, http.StatusBadRequest, ErrCodeAlreadyVoted},
	{services.ErrVotesImmutable, http.StatusBadRequest, ErrCodeVotesImmutable},

	{services.ErrPollNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrOptionNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrVoteNotFound, http.StatusNotFound, ErrCodeNotFound},

	{services.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{services.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
}

// failErr writes the envelope for a service error. Unmapped errors become a
// generic 500; the underlying error is logged but never sent to the client.
func failErr(c *gin.Context, err error) {
	for _, m := range errTable {
		if errors.Is(err, m.target) {
			fail(c, m.status, m.code, m.target.Error())
			return
		}
	}
	middleware.LoggerFrom(c).Error().Err(err).Msg("unhandled service error")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}
