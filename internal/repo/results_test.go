package repo

import (
	"context"
	"testing"
	"time"
)

func TestTallyVotes_IncludesZeroVoteOptions(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()
	p := mustCreatePoll(t, db, "Favorite food", now, now.Add(time.Hour), "Pizza", "Sushi", "Tacos")
	other := mustCreatePoll(t, db, "Other", now, now.Add(time.Hour), "x")

	for i, user := range []string{"u1", "u2", "u3"} {
		opt := p.Options[0].ID
		if i == 2 {
			opt = p.Options[1].ID
		}
		if _, err := InsertVote(context.Background(), db, user, p.ID, opt, now); err != nil {
			t.Fatalf("InsertVote(%s): %v", user, err)
		}
	}
	// A vote on another poll must not leak into this tally.
	if _, err := InsertVote(context.Background(), db, "u1", other.ID, other.Options[0].ID, now); err != nil {
		t.Fatalf("InsertVote other: %v", err)
	}

	rows, err := TallyVotes(context.Background(), db, p.ID)
	if err != nil {
		t.Fatalf("TallyVotes: %v", err)
	}
	want := []struct {
		text  string
		count int64
	}{{"Pizza", 2}, {"Sushi", 1}, {"Tacos", 0}}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), rows)
	}
	for i, w := range want {
		if rows[i].Text != w.text || rows[i].VotesCount != w.count || rows[i].OptionID != p.Options[i].ID {
			t.Fatalf("row %d = %+v; want %s=%d", i, rows[i], w.text, w.count)
		}
	}
}

func TestTallyVotes_OptionAddedLaterAppearsWithZero(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()
	p := mustCreatePoll(t, db, "t", now, now.Add(time.Hour), "a")
	if _, err := InsertVote(context.Background(), db, "u1", p.ID, p.Options[0].ID, now); err != nil {
		t.Fatalf("InsertVote: %v", err)
	}

	pos, err := NextOptionPosition(context.Background(), db, p.ID)
	if err != nil || pos != 1 {
		t.Fatalf("NextOptionPosition = (%d, %v); want 1", pos, err)
	}
	if _, err := CreateOption(context.Background(), db, p.ID, "late", pos); err != nil {
		t.Fatalf("CreateOption: %v", err)
	}

	rows, err := TallyVotes(context.Background(), db, p.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("TallyVotes = (%+v, %v)", rows, err)
	}
	if rows[1].Text != "late" || rows[1].VotesCount != 0 || rows[1].Position != 1 {
		t.Fatalf("late option row unexpected: %+v", rows[1])
	}
}

func TestTallyVotes_UnknownPollIsEmpty(t *testing.T) {
	db := newRepoDB(t)
	rows, err := TallyVotes(context.Background(), db, "missing")
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected empty tally, got (%+v, %v)", rows, err)
	}
}

func TestNextOptionPosition_EmptyPollStartsAtZero(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()
	p := mustCreatePoll(t, db, "t", now, now.Add(time.Hour))
	pos, err := NextOptionPosition(context.Background(), db, p.ID)
	if err != nil || pos != 0 {
		t.Fatalf("NextOptionPosition = (%d, %v); want 0", pos, err)
	}
}
