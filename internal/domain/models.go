// Package domain defines the persistence models for polls, their options and
// the vote ledger. These types are mapped with GORM and form the core data
// layer of the poll service.
package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// DefaultPollLifetime is applied when a poll is persisted without an expiry.
const DefaultPollLifetime = 7 * 24 * time.Hour

// ErrVotesImmutable is returned by any attempt to modify a recorded vote.
var ErrVotesImmutable = errors.New("votes cannot be changed once cast")

// Poll is a question with a fixed expiry. A poll accepts votes while
// now < ExpiresAt; the expiry is set once at creation and never extended.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Title: required, at most 255 characters.
//   - Description: optional free text.
//   - CreatedBy: user id of the administrator who created the poll.
//   - CreatedAt: creation timestamp; listings are ordered by it (newest first).
//   - ExpiresAt: NOT NULL; defaults to CreatedAt + 7 days.
//   - Options: owned options, cascade-deleted with the poll.
type Poll struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Title       string    `json:"title"       gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text;not null;default:''"`
	CreatedBy   string    `json:"created_by"  gorm:"type:varchar(64);not null;index"`
	CreatedAt   time.Time `json:"created_at"  gorm:"not null;index:idx_polls_created"`
	ExpiresAt   time.Time `json:"expires_at"  gorm:"not null;index:idx_polls_expires"`

	Options []Option `json:"options" gorm:"foreignKey:PollID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Poll.
func (Poll) TableName() string { return "polls" }

// BeforeCreate fills CreatedAt and the default expiry when the caller left
// them unset.
func (p *Poll) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = p.CreatedAt.Add(DefaultPollLifetime)
	}
	return nil
}

// IsActive reports whether the poll accepts votes at the given instant.
func (p *Poll) IsActive(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}

// Option is one selectable answer of a poll. Position orders options for
// display; it is assigned sequentially as options are added.
type Option struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	PollID    string    `json:"poll_id"    gorm:"type:char(36);not null;index:idx_poll_options,priority:1"`
	Text      string    `json:"text"       gorm:"type:varchar(255);not null"`
	Position  int       `json:"position"   gorm:"not null;default:0;index:idx_poll_options,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Option.
func (Option) TableName() string { return "options" }

// Vote is a single ballot. A user holds at most one vote per poll, enforced
// by the ux_vote_user_poll unique index. PollID duplicates the option's poll
// so that the constraint can be declared on the votes table itself.
type Vote struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_vote_user_poll,priority:1"`
	PollID    string    `json:"poll_id"    gorm:"type:char(36);not null;index;uniqueIndex:ux_vote_user_poll,priority:2"`
	OptionID  string    `json:"option_id"  gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"created_at"`

	Poll   Poll   `json:"-" gorm:"foreignKey:PollID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Option Option `json:"-" gorm:"foreignKey:OptionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string { return "votes" }

// BeforeUpdate rejects every update; votes are append-only.
func (v *Vote) BeforeUpdate(tx *gorm.DB) error {
	return ErrVotesImmutable
}
