package services

import (
	"context"
	"errors"
	"testing"
)

func TestComputeResults_ZeroVotesAndLateOptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agg := &Aggregator{DB: f.db, Now: f.clock.Now}
	p := f.mustPoll(t, "t", "a", "b")

	if _, err := f.votes.CastVote(ctx, p.ID, p.Options[0].ID, voter1); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	late, err := f.polls.AddOption(ctx, p.ID, "c", admin)
	if err != nil {
		t.Fatalf("AddOption: %v", err)
	}
	if _, err := f.votes.CastVote(ctx, p.ID, late.ID, voter2); err != nil {
		t.Fatalf("CastVote late: %v", err)
	}

	snap, err := agg.ComputeResults(ctx, p.ID)
	if err != nil {
		t.Fatalf("ComputeResults: %v", err)
	}
	if snap.PollID != p.ID || snap.Title != "t" || !snap.ComputedAt.Equal(f.clock.Now()) {
		t.Fatalf("unexpected header: %+v", snap)
	}
	want := []struct {
		text  string
		votes int64
	}{{"a", 1}, {"b", 0}, {"c", 1}}
	if len(snap.Options) != len(want) {
		t.Fatalf("got %d options, want %d", len(snap.Options), len(want))
	}
	var sum int64
	for i, w := range want {
		o := snap.Options[i]
		if o.Text != w.text || o.VotesCount != w.votes {
			t.Fatalf("option %d = %+v; want %s/%d", i, o, w.text, w.votes)
		}
		sum += o.VotesCount
	}
	if snap.TotalVotes != sum || sum != 2 {
		t.Fatalf("total %d must equal sum %d", snap.TotalVotes, sum)
	}
}

func TestComputeResults_PollWithoutOptions(t *testing.T) {
	f := newFixture(t)
	p := f.mustPoll(t, "empty")
	snap, err := (&Aggregator{DB: f.db}).ComputeResults(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ComputeResults: %v", err)
	}
	if snap.TotalVotes != 0 || snap.Options == nil || len(snap.Options) != 0 {
		t.Fatalf("expected empty non-nil options, got %+v", snap)
	}
	if snap.ComputedAt.IsZero() {
		t.Fatalf("ComputedAt should default to wall clock")
	}
}

func TestComputeResults_UnknownPoll(t *testing.T) {
	f := newFixture(t)
	if _, err := (&Aggregator{DB: f.db}).ComputeResults(context.Background(), "nope"); !errors.Is(err, ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}
}
