package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Akins-Coded/Online-Poll-System/internal/domain"
)

// GetOption fetches a single option by id, or ErrNotFound.
func GetOption(ctx context.Context, db *gorm.DB, id string) (*domain.Option, error) {
	var o domain.Option
	err := db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// NextOptionPosition returns the position a newly appended option should take.
func NextOptionPosition(ctx context.Context, db *gorm.DB, pollID string) (int, error) {
	var next int
	err := db.WithContext(ctx).
		Model(&domain.Option{}).
		Where("poll_id = ?", pollID).
		Select("COALESCE(MAX(position), -1) + 1").
		Scan(&next).Error
	return next, err
}

// CreateOption appends an option to pollID at the given position.
func CreateOption(ctx context.Context, db *gorm.DB, pollID, text string, position int) (*domain.Option, error) {
	o := &domain.Option{
		ID:        uuid.NewString(),
		PollID:    pollID,
		Text:      text,
		Position:  position,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}
