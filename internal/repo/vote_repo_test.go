package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestInsertVote_DuplicateMapsToErrDuplicate(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()
	p := mustCreatePoll(t, db, "t", now, now.Add(time.Hour), "a", "b")

	v, err := InsertVote(context.Background(), db, "u1", p.ID, p.Options[0].ID, now)
	if err != nil || v == nil || v.ID == "" {
		t.Fatalf("first vote: v=%+v err=%v", v, err)
	}
	if _, err := InsertVote(context.Background(), db, "u1", p.ID, p.Options[1].ID, now); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second vote: expected ErrDuplicate, got %v", err)
	}
	if n, _ := CountVotes(context.Background(), db, p.ID); n != 1 {
		t.Fatalf("expected exactly one vote row, got %d", n)
	}
}

func TestInsertVote_ConcurrentSameUser_ExactlyOneWins(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()
	p := mustCreatePoll(t, db, "t", now, now.Add(time.Hour), "a", "b")

	// Shared-cache SQLite reports table locks instead of waiting; a single
	// connection serializes statements while the goroutines still race.
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	const workers = 16
	var (
		wg   sync.WaitGroup
		okN  atomic.Int32
		dupN atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opt := p.Options[i%2].ID
			_, err := InsertVote(context.Background(), db, "racer", p.ID, opt, now)
			switch {
			case err == nil:
				okN.Add(1)
			case errors.Is(err, ErrDuplicate):
				dupN.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if okN.Load() != 1 || dupN.Load() != workers-1 {
		t.Fatalf("expected 1 success and %d duplicates, got ok=%d dup=%d", workers-1, okN.Load(), dupN.Load())
	}
	if n, _ := CountVotes(context.Background(), db, p.ID); n != 1 {
		t.Fatalf("expected one vote row, got %d", n)
	}
}

func TestInsertVote_UnknownOptionViolatesForeignKey(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()
	p := mustCreatePoll(t, db, "t", now, now.Add(time.Hour), "a")

	_, err := InsertVote(context.Background(), db, "u1", p.ID, "no-such-option", now)
	if err == nil || errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected a foreign key error, got %v", err)
	}
}

func TestGetUserVote(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()
	p := mustCreatePoll(t, db, "t", now, now.Add(time.Hour), "a")

	if _, err := GetUserVote(context.Background(), db, p.ID, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before voting, got %v", err)
	}
	if _, err := InsertVote(context.Background(), db, "u1", p.ID, p.Options[0].ID, now); err != nil {
		t.Fatalf("InsertVote: %v", err)
	}
	v, err := GetUserVote(context.Background(), db, p.ID, "u1")
	if err != nil || v.OptionID != p.Options[0].ID {
		t.Fatalf("GetUserVote = (%+v, %v)", v, err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"pg 23505", &pgconn.PgError{Code: "23505"}, true},
		{"pg fk violation", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite text", errors.New("constraint failed: UNIQUE constraint failed: votes.user_id, votes.poll_id (2067)"), true},
		{"pg text", errors.New(`ERROR: duplicate key value violates unique constraint "ux_vote_user_poll"`), true},
		{"other", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v) = %v; want %v", tc.err, got, tc.want)
			}
		})
	}
}
