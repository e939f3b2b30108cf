// Package services – VoteService
//
// This file implements the VoteService. A (user, poll) pair moves from
// "no vote" to "voted" exactly once; the transition is decided by the
// ledger's unique index, not by a preceding read. Votes are immutable.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Akins-Coded/Online-Poll-System/internal/domain"
	"github.com/Akins-Coded/Online-Poll-System/internal/repo"
)

// VoteService records and reads ballots.
type VoteService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Cache receives invalidations after committed votes. May be nil.
	Cache *ResultCache
	// Now is the clock; defaults to time.Now().UTC().
	Now func() time.Time
}

// NewVoteService constructs a VoteService.
func NewVoteService(db *gorm.DB, rc *ResultCache) *VoteService {
	return &VoteService{DB: db, Cache: rc}
}

// CastVote records voter's choice of optionID on pollID.
//
// The option must belong to pollID (ErrOptionPollMismatch otherwise) and the
// poll must be active. A second vote by the same user on the same poll fails
// with ErrAlreadyVoted. After the insert commits the poll's cached results
// and the voter's cached vote are evicted before returning.
func (s *VoteService) CastVote(ctx context.Context, pollID, optionID string, voter domain.Principal) (_ *domain.Vote, err error) {
	tr := otel.Tracer("services/VoteService")
	ctx, span := tr.Start(ctx, "CastVote",
		trace.WithAttributes(
			attribute.String("poll.id", pollID),
			attribute.String("option.id", optionID),
			attribute.String("user.id", voter.UserID),
		),
	)
	defer span.End()

	defer func() {
		outcome := voteOutcome(err)
		votesCast.WithLabelValues(outcome).Inc()
		span.SetAttributes(attribute.String("vote.outcome", outcome))
	}()

	if voter.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	if optionID == "" {
		return nil, ErrMissingOption
	}

	poll, err := repo.GetPoll(ctx, s.DB, pollID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	opt, err := repo.GetOption(ctx, s.DB, optionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}
	if opt.PollID != poll.ID {
		return nil, ErrOptionPollMismatch
	}

	now := nowOr(s.Now)
	if !poll.IsActive(now) {
		return nil, ErrPollExpired
	}

	v, err := repo.InsertVote(ctx, s.DB, voter.UserID, poll.ID, opt.ID, now)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyVoted
		}
		return nil, err
	}

	if s.Cache != nil {
		cacheInvalidations.WithLabelValues("vote").Inc()
		if err := s.Cache.Invalidate(ctx, poll.ID, voter.UserID); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// UpdateVote always fails: a cast vote cannot be changed.
func (s *VoteService) UpdateVote(ctx context.Context, pollID, optionID string, voter domain.Principal) error {
	return ErrVotesImmutable
}

// MyVote returns the vote voter cast on pollID, or ErrVoteNotFound.
func (s *VoteService) MyVote(ctx context.Context, pollID string, voter domain.Principal) (*domain.Vote, error) {
	tr := otel.Tracer("services/VoteService")
	ctx, span := tr.Start(ctx, "MyVote",
		trace.WithAttributes(attribute.String("poll.id", pollID)),
	)
	defer span.End()

	if voter.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	// The poll is checked first so cached entries of a deleted poll are
	// never served.
	if _, err := repo.GetPoll(ctx, s.DB, pollID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	if s.Cache != nil {
		if v, ok := s.Cache.UserVote(ctx, pollID, voter.UserID); ok {
			return v, nil
		}
	}

	v, err := repo.GetUserVote(ctx, s.DB, pollID, voter.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVoteNotFound
		}
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.StoreUserVote(ctx, v)
	}
	return v, nil
}

func voteOutcome(err error) string {
	switch {
	case err == nil:
		return voteRecorded
	case errors.Is(err, ErrAlreadyVoted):
		return voteAlreadyVoted
	case errors.Is(err, ErrPollExpired):
		return voteExpired
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrMissingOption),
		errors.Is(err, ErrPollNotFound),
		errors.Is(err, ErrOptionNotFound),
		errors.Is(err, ErrOptionPollMismatch):
		return voteRejected
	default:
		return voteFailed
	}
}
