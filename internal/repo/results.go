// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate query behind poll results.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// OptionTally is one row of a poll's grouped vote count.
type OptionTally struct {
	OptionID   string
	Text       string
	Position   int
	VotesCount int64
}

// TallyVotes counts votes per option for pollID in a single grouped query.
//
// The LEFT JOIN keeps options without votes (VotesCount = 0), including
// options appended after voting started. Rows are returned in display order.
// An unknown poll yields an empty slice; callers check existence separately.
func TallyVotes(ctx context.Context, db *gorm.DB, pollID string) ([]OptionTally, error) {
	var rows []OptionTally
	err := db.WithContext(ctx).
		Table("options AS o").
		Select("o.id AS option_id, o.text AS text, o.position AS position, COUNT(v.id) AS votes_count").
		Joins("LEFT JOIN votes AS v ON v.option_id = o.id AND v.poll_id = o.poll_id").
		Where("o.poll_id = ?", pollID).
		Group("o.id, o.text, o.position").
		Order("o.position ASC").
		Order("o.id ASC").
		Scan(&rows).Error
	return rows, err
}
