// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the vote ledger.
//
// Error semantics:
//   - A second vote for the same (user_id, poll_id) is rejected by the
//     ux_vote_user_poll unique index and returned as ErrDuplicate. No
//     existence read precedes the insert; the index is the only arbiter.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Akins-Coded/Online-Poll-System/internal/domain"
)

// InsertVote records a vote. It returns ErrDuplicate when the user already
// holds a vote on the poll.
func InsertVote(ctx context.Context, db *gorm.DB, userID, pollID, optionID string, now time.Time) (*domain.Vote, error) {
	v := &domain.Vote{
		ID:        uuid.NewString(),
		UserID:    userID,
		PollID:    pollID,
		OptionID:  optionID,
		CreatedAt: now,
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return v, nil
}

// GetUserVote returns the vote userID cast on pollID, or ErrNotFound.
func GetUserVote(ctx context.Context, db *gorm.DB, pollID, userID string) (*domain.Vote, error) {
	var v domain.Vote
	err := db.WithContext(ctx).
		Where("poll_id = ? AND user_id = ?", pollID, userID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CountVotes returns the number of vote rows recorded for pollID.
func CountVotes(ctx context.Context, db *gorm.DB, pollID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("poll_id = ?", pollID).
		Count(&n).Error
	return n, err
}
