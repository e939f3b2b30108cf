// Package services defines the business logic for polls, votes and results.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"

	"github.com/Akins-Coded/Online-Poll-System/internal/domain"
)

// Caller errors.
var (
	// ErrUnauthenticated is returned when an operation requires a user id
	// and the principal is anonymous.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the principal lacks the admin role.
	ErrForbidden = errors.New("admin role required")
)

// Poll lifecycle errors.
var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title must be at most 255 characters")
	ErrEmptyOptionText = errors.New("option text is required")
	ErrOptionTooLong   = errors.New("option text must be at most 255 characters")
	ErrInvalidExpiry   = errors.New("expires_at must be in the future")

	// ErrPollNotFound indicates that the requested poll does not exist.
	ErrPollNotFound = errors.New("poll not found")

	// ErrPollExpired is returned for writes against a poll whose expiry has
	// passed.
	ErrPollExpired = errors.New("this poll has expired")
)

// Voting errors.
var (
	ErrMissingOption  = errors.New("option_id is required")
	ErrOptionNotFound = errors.New("option not found")

	// ErrOptionPollMismatch is returned when the submitted option belongs to
	// a different poll than the one addressed.
	ErrOptionPollMismatch = errors.New("option does not belong to this poll")

	// ErrAlreadyVoted is returned when the user already holds a vote on the
	// poll. It is derived from the ledger's unique constraint.
	ErrAlreadyVoted = errors.New("user has already voted on this poll")

	// ErrVoteNotFound is returned by MyVote when the user has not voted.
	ErrVoteNotFound = errors.New("vote not found")

	// ErrVotesImmutable is returned for any attempt to change a cast vote.
	ErrVotesImmutable = domain.ErrVotesImmutable
)
