// Package services – ResultCache
//
// This file implements the read-through cache in front of the Aggregator.
//
// Keys are scoped per poll:
//
//	poll:<id>:gen              generation counter, bumped by every invalidation
//	poll:<id>:results:<gen>    JSON snapshot, expires after TTL
//	poll:<id>:vote:<user>      the user's vote, expires after VoteTTL
//
// A reader stores its snapshot under the generation it observed before
// computing. If a write commits and invalidates in the meantime, the snapshot
// lands under an obsolete generation that no later reader consults, so a
// stale tally can never be served after the write's invalidation returns.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Akins-Coded/Online-Poll-System/internal/cache"
	"github.com/Akins-Coded/Online-Poll-System/internal/domain"
)

// Default lifetimes used when the corresponding field is unset.
const (
	DefaultResultsTTL  = 60 * time.Second
	DefaultUserVoteTTL = 5 * time.Minute
)

// ResultsComputer produces a fresh snapshot from the ledger.
type ResultsComputer interface {
	ComputeResults(ctx context.Context, pollID string) (*ResultSnapshot, error)
}

// ResultCache serves result snapshots and per-user vote lookups from a
// cache.Store. The store is never a source of truth: read failures fall back
// to the ledger.
type ResultCache struct {
	Store    cache.Store
	Computer ResultsComputer
	TTL      time.Duration
	VoteTTL  time.Duration
}

// NewResultCache wires a cache over store and computer with default TTLs.
func NewResultCache(store cache.Store, computer ResultsComputer) *ResultCache {
	return &ResultCache{
		Store:    store,
		Computer: computer,
		TTL:      DefaultResultsTTL,
		VoteTTL:  DefaultUserVoteTTL,
	}
}

func genKey(pollID string) string { return fmt.Sprintf("poll:%s:gen", pollID) }

func resultsKey(pollID string, gen int64) string {
	return fmt.Sprintf("poll:%s:results:%d", pollID, gen)
}

func userVoteKey(pollID, userID string) string {
	return fmt.Sprintf("poll:%s:vote:%s", pollID, userID)
}

// generation returns the poll's current generation (0 before any invalidation).
func (rc *ResultCache) generation(ctx context.Context, pollID string) (int64, error) {
	raw, err := rc.Store.Get(ctx, genKey(pollID))
	if errors.Is(err, cache.ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

// GetResults returns a cached snapshot when one exists for the current
// generation, otherwise computes, stores and returns a fresh one.
func (rc *ResultCache) GetResults(ctx context.Context, pollID string) (*ResultSnapshot, error) {
	tr := otel.Tracer("services/ResultCache")
	ctx, span := tr.Start(ctx, "GetResults",
		trace.WithAttributes(attribute.String("poll.id", pollID)),
	)
	defer span.End()

	gen, err := rc.generation(ctx, pollID)
	if err != nil {
		resultsCacheRequests.WithLabelValues(cacheError).Inc()
		span.SetAttributes(attribute.String("cache.result", cacheError))
		log.Warn().Err(err).Str("poll_id", pollID).Msg("result cache unavailable; reading ledger")
		return rc.Computer.ComputeResults(ctx, pollID)
	}

	key := resultsKey(pollID, gen)
	raw, err := rc.Store.Get(ctx, key)
	switch {
	case err == nil:
		var snap ResultSnapshot
		if uerr := json.Unmarshal(raw, &snap); uerr == nil {
			resultsCacheRequests.WithLabelValues(cacheHit).Inc()
			span.SetAttributes(attribute.String("cache.result", cacheHit))
			return &snap, nil
		}
		// Undecodable entry: recompute and overwrite it.
		resultsCacheRequests.WithLabelValues(cacheMiss).Inc()
	case errors.Is(err, cache.ErrMiss):
		resultsCacheRequests.WithLabelValues(cacheMiss).Inc()
		span.SetAttributes(attribute.String("cache.result", cacheMiss))
	default:
		resultsCacheRequests.WithLabelValues(cacheError).Inc()
		span.SetAttributes(attribute.String("cache.result", cacheError))
		log.Warn().Err(err).Str("poll_id", pollID).Msg("result cache read failed; reading ledger")
		return rc.Computer.ComputeResults(ctx, pollID)
	}

	snap, err := rc.Computer.ComputeResults(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if b, merr := json.Marshal(snap); merr == nil {
		if serr := rc.Store.Set(ctx, key, b, rc.ttl()); serr != nil {
			log.Warn().Err(serr).Str("poll_id", pollID).Msg("result cache write failed")
		}
	}
	return snap, nil
}

// Invalidate evicts the poll's snapshot and the listed users' vote entries.
// It bumps the generation first so concurrent readers cannot repopulate the
// evicted entry.
func (rc *ResultCache) Invalidate(ctx context.Context, pollID string, userIDs ...string) error {
	gen, err := rc.Store.Incr(ctx, genKey(pollID))
	if err != nil {
		return fmt.Errorf("invalidate poll %s: %w", pollID, err)
	}
	keys := []string{resultsKey(pollID, gen-1)}
	for _, u := range userIDs {
		keys = append(keys, userVoteKey(pollID, u))
	}
	if err := rc.Store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate poll %s: %w", pollID, err)
	}
	return nil
}

// UserVote returns the cached vote of userID on pollID, if any.
func (rc *ResultCache) UserVote(ctx context.Context, pollID, userID string) (*domain.Vote, bool) {
	raw, err := rc.Store.Get(ctx, userVoteKey(pollID, userID))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Str("poll_id", pollID).Msg("user vote cache read failed")
		}
		return nil, false
	}
	var v domain.Vote
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// StoreUserVote caches a recorded vote. Failures are logged and ignored.
func (rc *ResultCache) StoreUserVote(ctx context.Context, v *domain.Vote) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := rc.Store.Set(ctx, userVoteKey(v.PollID, v.UserID), b, rc.voteTTL()); err != nil {
		log.Warn().Err(err).Str("poll_id", v.PollID).Msg("user vote cache write failed")
	}
}

func (rc *ResultCache) ttl() time.Duration {
	if rc.TTL > 0 {
		return rc.TTL
	}
	return DefaultResultsTTL
}

func (rc *ResultCache) voteTTL() time.Duration {
	if rc.VoteTTL > 0 {
		return rc.VoteTTL
	}
	return DefaultUserVoteTTL
}
