// Package services – PollService
//
// This file implements the PollService, which manages the lifecycle of polls:
// creation with an initial option set, appending options while the poll is
// active, listing active polls with pagination, and administrative deletion.
//
// Every write that changes what a poll's results would show invalidates the
// poll's cached snapshot synchronously, after the transaction has committed.
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
	"github.com/Akins-Coded/Online-Poll-System/internal/utils"
)

// ScopeCreatePoll is the idempotency scope of poll creation requests.
const ScopeCreatePoll = "polls:create"

// Pagination bounds for ListActive.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NewPoll is the input of CreatePoll. A nil ExpiresAt selects the default
// lifetime.
type NewPoll struct {
	Title       string
	Description string
	ExpiresAt   *time.Time
	Options     []string
}

// PollService provides poll-level operations. Writes require an admin
// principal; reads are public.
type PollService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Cache receives invalidations after committed writes. May be nil.
	Cache *ResultCache

	// DefaultLifetime is applied when a poll is created without an expiry.
	DefaultLifetime time.Duration
	// PageSize is the default page size of ListActive.
	PageSize int
	// IdempotencyTTL bounds how long a create request can be replayed.
	IdempotencyTTL time.Duration
	// Now is the clock; defaults to time.Now().UTC().
	Now func() time.Time
}

// NewPollService constructs a PollService with default settings.
func NewPollService(db *gorm.DB, rc *ResultCache) *PollService {
	return &PollService{
		DB:              db,
		Cache:           rc,
		DefaultLifetime: domain.DefaultPollLifetime,
		PageSize:        DefaultPageSize,
		IdempotencyTTL:  24 * time.Hour,
	}
}

func (s *PollService) now() time.Time { return nowOr(s.Now) }

// requireAdmin distinguishes anonymous callers from authenticated non-admins.
func requireAdmin(p domain.Principal) error {
	if p.IsAnonymous() {
		return ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// buildPoll validates the input and returns the poll to persist.
func (s *PollService) buildPoll(in NewPoll, creator domain.Principal, now time.Time) (*domain.Poll, error) {
	if err := requireAdmin(creator); err != nil {
		return nil, err
	}
	title, err := cleanTitle(in.Title)
	if err != nil {
		return nil, err
	}

	expires := now.Add(s.lifetime())
	if in.ExpiresAt != nil {
		if !in.ExpiresAt.After(now) {
			return nil, ErrInvalidExpiry
		}
		expires = in.ExpiresAt.UTC()
	}

	p := &domain.Poll{
		Title:       title,
		Description: normalizeText(in.Description),
		CreatedBy:   creator.UserID,
		CreatedAt:   now,
		ExpiresAt:   expires,
		Options:     make([]domain.Option, 0, len(in.Options)),
	}
	for i, raw := range in.Options {
		text, err := cleanOption(raw)
		if err != nil {
			return nil, err
		}
		p.Options = append(p.Options, domain.Option{Text: text, Position: i, CreatedAt: now})
	}
	return p, nil
}

func (s *PollService) lifetime() time.Duration {
	if s.DefaultLifetime > 0 {
		return s.DefaultLifetime
	}
	return domain.DefaultPollLifetime
}

// CreatePoll validates and persists a poll and its options in one transaction.
// Duplicate option texts are accepted as given.
func (s *PollService) CreatePoll(ctx context.Context, in NewPoll, creator domain.Principal) (*domain.Poll, error) {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "CreatePoll",
		trace.WithAttributes(
			attribute.String("user.id", creator.UserID),
			attribute.Int("poll.options", len(in.Options)),
		),
	)
	defer span.End()

	p, err := s.buildPoll(in, creator, s.now())
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.CreatePoll(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("poll.id", p.ID))
	return p, nil
}

// errReplay aborts a create transaction that lost an idempotency race.
var errReplay = errors.New("idempotent replay")

// CreatePollIdempotent behaves like CreatePoll but records the result under
// (creator, key). A retry with the same key returns the poll created first
// and replayed=true. An empty key disables the behavior.
func (s *PollService) CreatePollIdempotent(ctx context.Context, in NewPoll, creator domain.Principal, key string) (*domain.Poll, bool, error) {
	if key == "" {
		p, err := s.CreatePoll(ctx, in, creator)
		return p, false, err
	}

	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "CreatePollIdempotent",
		trace.WithAttributes(attribute.String("user.id", creator.UserID)),
	)
	defer span.End()

	now := s.now()
	p, err := s.buildPoll(in, creator, now)
	if err != nil {
		return nil, false, err
	}

	var replayID string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.PurgeExpiredIdempotency(ctx, tx, creator.UserID, ScopeCreatePoll, key, now); err != nil {
			return err
		}
		if rec, err := repo.GetIdempotency(ctx, tx, creator.UserID, ScopeCreatePoll, key, now); err == nil {
			replayID = rec.ResourceID
			return errReplay
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		if err := repo.CreatePoll(ctx, tx, p); err != nil {
			return err
		}
		_, err := repo.CreateIdempotency(ctx, tx, creator.UserID, ScopeCreatePoll, key, p.ID, 201, s.idempotencyTTL())
		if errors.Is(err, repo.ErrDuplicate) {
			return errReplay
		}
		return err
	})

	switch {
	case err == nil:
		span.SetAttributes(attribute.String("poll.id", p.ID))
		return p, false, nil
	case !errors.Is(err, errReplay):
		return nil, false, err
	}

	if replayID == "" {
		rec, gerr := repo.GetIdempotency(ctx, s.DB, creator.UserID, ScopeCreatePoll, key, now)
		if gerr != nil {
			return nil, false, gerr
		}
		replayID = rec.ResourceID
	}
	existing, err := s.GetPoll(ctx, replayID)
	if err != nil {
		return nil, false, err
	}
	span.SetAttributes(attribute.Bool("idempotency.replayed", true))
	return existing, true, nil
}

func (s *PollService) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

// IsActive reports whether p accepts votes and new options at now.
func (s *PollService) IsActive(p *domain.Poll, now time.Time) bool {
	return p.IsActive(now)
}

// AddOption appends an option to an active poll.
func (s *PollService) AddOption(ctx context.Context, pollID, text string, requester domain.Principal) (*domain.Option, error) {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "AddOption",
		trace.WithAttributes(attribute.String("poll.id", pollID)),
	)
	defer span.End()

	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	text, err := cleanOption(text)
	if err != nil {
		return nil, err
	}

	var opt *domain.Option
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetPoll(ctx, tx, pollID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPollNotFound
			}
			return err
		}
		if !s.IsActive(p, s.now()) {
			return ErrPollExpired
		}
		pos, err := repo.NextOptionPosition(ctx, tx, pollID)
		if err != nil {
			return err
		}
		opt, err = repo.CreateOption(ctx, tx, pollID, text, pos)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.invalidate(ctx, "option", pollID); err != nil {
		return nil, err
	}
	return opt, nil
}

// DeletePoll removes a poll with its options and votes.
func (s *PollService) DeletePoll(ctx context.Context, pollID string, requester domain.Principal) error {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "DeletePoll",
		trace.WithAttributes(attribute.String("poll.id", pollID)),
	)
	defer span.End()

	if err := requireAdmin(requester); err != nil {
		return err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeletePoll(ctx, tx, pollID)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPollNotFound
	}
	if err != nil {
		return err
	}
	return s.invalidate(ctx, "delete", pollID)
}

// GetPoll returns the poll with its options in display order.
func (s *PollService) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	p, err := repo.GetPollWithOptions(ctx, s.DB, pollID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPollNotFound
	}
	return p, err
}

// ListActive returns a page of non-expired polls, newest first, plus the
// total number of active polls. Invalid page values fall back to defaults;
// pageSize is capped at MaxPageSize.
func (s *PollService) ListActive(ctx context.Context, page, pageSize int) ([]domain.Poll, int64, error) {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "ListActive",
		trace.WithAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize)),
	)
	defer span.End()

	defSize := s.PageSize
	if defSize <= 0 {
		defSize = DefaultPageSize
	}
	pg := utils.ClampPage(page, pageSize, defSize, MaxPageSize)

	now := s.now()
	total, err := repo.CountActivePolls(ctx, s.DB, now)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Poll{}, 0, nil
	}
	items, err := repo.ListActivePollsPage(ctx, s.DB, now, pg.Offset(), pg.Size)
	return items, total, err
}

func (s *PollService) invalidate(ctx context.Context, trigger, pollID string) error {
	if s.Cache == nil {
		return nil
	}
	cacheInvalidations.WithLabelValues(trigger).Inc()
	return s.Cache.Invalidate(ctx, pollID)
}
