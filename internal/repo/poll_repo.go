// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Poll model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business rules, only persistence and query composition.
//
// Error semantics:
//   - When a poll is not found, functions return ErrNotFound.
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

// orderOptions preloads options in display order; ties on position fall
// back to id so the order is stable.
func orderOptions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("id ASC")
}

// CreatePoll inserts p together with its Options. Missing ids are generated
// and every option is bound to the poll.
func CreatePoll(ctx context.Context, db *gorm.DB, p *domain.Poll) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Options {
		if p.Options[i].ID == "" {
			p.Options[i].ID = uuid.NewString()
		}
		p.Options[i].PollID = p.ID
		if p.Options[i].CreatedAt.IsZero() {
			p.Options[i].CreatedAt = p.CreatedAt
		}
	}
	return db.WithContext(ctx).Create(p).Error
}

// GetPoll fetches the poll row without its options.
func GetPoll(ctx context.Context, db *gorm.DB, id string) (*domain.Poll, error) {
	var p domain.Poll
	err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPollWithOptions fetches the poll and its options ordered by position.
func GetPollWithOptions(ctx context.Context, db *gorm.DB, id string) (*domain.Poll, error) {
	var p domain.Poll
	err := db.WithContext(ctx).
		Preload("Options", orderOptions).
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountActivePolls returns the number of polls with expires_at > now.
func CountActivePolls(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Poll{}).
		Where("expires_at > ?", now).
		Count(&total).Error
	return total, err
}

// ListActivePollsPage returns a page of non-expired polls, newest first,
// with options preloaded. Use CountActivePolls for pagination metadata.
func ListActivePollsPage(ctx context.Context, db *gorm.DB, now time.Time, offset, limit int) ([]domain.Poll, error) {
	var out []domain.Poll
	err := db.WithContext(ctx).
		Preload("Options", orderOptions).
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeletePoll removes the poll's votes, then its options, then the poll row.
// Callers run it inside a transaction. It returns ErrNotFound when no poll
// row was deleted.
func DeletePoll(ctx context.Context, db *gorm.DB, id string) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("poll_id = ?", id).Delete(&domain.Vote{}).Error; err != nil {
		return err
	}
	if err := tx.Where("poll_id = ?", id).Delete(&domain.Option{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&domain.Poll{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
