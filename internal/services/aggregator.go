// Package services – Aggregator
//
// This file implements the aggregation engine that turns the vote ledger
// into a result snapshot: one grouped LEFT JOIN query per poll, so options
// without votes are reported with a zero count.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Akins-Coded/Online-Poll-System/internal/repo"
)

// OptionResult is one option's line in a result snapshot.
type OptionResult struct {
	ID         string `json:"id"          example:"0b3e5c4e-6a0e-4f57-9a51-2f2b0f4b6a10"`
	Text       string `json:"text"        example:"Pizza"`
	VotesCount int64  `json:"votes_count" example:"2"`
}

// ResultSnapshot is the aggregated view of a poll at ComputedAt.
// TotalVotes always equals the sum of the options' VotesCount.
type ResultSnapshot struct {
	PollID     string         `json:"poll_id"     example:"5d7c1c0a-2f57-4d8e-8f0a-3f7e9b7e2c11"`
	Title      string         `json:"title"       example:"Favorite Food"`
	TotalVotes int64          `json:"total_votes" example:"3"`
	Options    []OptionResult `json:"options"`
	ComputedAt time.Time      `json:"computed_at"`
}

// Aggregator computes result snapshots from the ledger.
type Aggregator struct {
	DB *gorm.DB
	// Now stamps ComputedAt; defaults to time.Now().UTC().
	Now func() time.Time
}

// ComputeResults counts the votes of every option of pollID.
// It returns ErrPollNotFound for unknown polls.
func (a *Aggregator) ComputeResults(ctx context.Context, pollID string) (*ResultSnapshot, error) {
	tr := otel.Tracer("services/Aggregator")
	ctx, span := tr.Start(ctx, "ComputeResults",
		trace.WithAttributes(attribute.String("poll.id", pollID)),
	)
	defer span.End()

	poll, err := repo.GetPoll(ctx, a.DB, pollID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	rows, err := repo.TallyVotes(ctx, a.DB, pollID)
	if err != nil {
		return nil, err
	}

	snap := &ResultSnapshot{
		PollID:     poll.ID,
		Title:      poll.Title,
		Options:    make([]OptionResult, 0, len(rows)),
		ComputedAt: nowOr(a.Now),
	}
	for _, r := range rows {
		snap.Options = append(snap.Options, OptionResult{ID: r.OptionID, Text: r.Text, VotesCount: r.VotesCount})
		snap.TotalVotes += r.VotesCount
	}
	span.SetAttributes(attribute.Int64("poll.total_votes", snap.TotalVotes))
	return snap, nil
}

// nowOr returns fn() when set, otherwise the current UTC time.
func nowOr(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now().UTC()
}
