package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Akins-Coded/Online-Poll-System/internal/domain"
	"github.com/Akins-Coded/Online-Poll-System/internal/repo"
)

func optionByText(t *testing.T, p *domain.Poll, text string) string {
	t.Helper()
	for _, o := range p.Options {
		if o.Text == text {
			return o.ID
		}
	}
	t.Fatalf("option %q not found", text)
	return ""
}

func TestCastVote_FavoriteFood(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustPoll(t, "Favorite Food", "Pizza", "Burger", "Sushi")
	pizza, burger := optionByText(t, p, "Pizza"), optionByText(t, p, "Burger")

	for _, c := range []struct {
		who domain.Principal
		opt string
	}{{voter1, pizza}, {voter2, pizza}, {voter3, burger}} {
		if _, err := f.votes.CastVote(ctx, p.ID, c.opt, c.who); err != nil {
			t.Fatalf("CastVote(%s): %v", c.who.UserID, err)
		}
	}

	res, err := f.rc.GetResults(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	want := map[string]int64{"Pizza": 2, "Burger": 1, "Sushi": 0}
	if res.TotalVotes != 3 || len(res.Options) != 3 {
		t.Fatalf("unexpected snapshot: %+v", res)
	}
	for _, o := range res.Options {
		if o.VotesCount != want[o.Text] {
			t.Fatalf("%s: got %d votes, want %d", o.Text, o.VotesCount, want[o.Text])
		}
	}

	if _, err := f.votes.CastVote(ctx, p.ID, burger, voter1); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("second vote: expected ErrAlreadyVoted, got %v", err)
	}
	again, _ := f.rc.GetResults(ctx, p.ID)
	if again.TotalVotes != 3 {
		t.Fatalf("rejected vote must not change totals, got %d", again.TotalVotes)
	}
}

func TestCastVote_ConcurrentSameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustPoll(t, "race", "a", "b")

	sqlDB, _ := f.db.DB()
	sqlDB.SetMaxOpenConns(1)

	const workers = 20
	var (
		wg      sync.WaitGroup
		okN     atomic.Int32
		dupN    atomic.Int32
		otherMu sync.Mutex
		other   []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.votes.CastVote(ctx, p.ID, p.Options[i%2].ID, voter1)
			switch {
			case err == nil:
				okN.Add(1)
			case errors.Is(err, ErrAlreadyVoted):
				dupN.Add(1)
			default:
				otherMu.Lock()
				other = append(other, err)
				otherMu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if okN.Load() != 1 || dupN.Load() != workers-1 {
		t.Fatalf("expected 1 success and %d duplicates, got %d/%d", workers-1, okN.Load(), dupN.Load())
	}
	if n, _ := repo.CountVotes(ctx, f.db, p.ID); n != 1 {
		t.Fatalf("expected one ledger row, got %d", n)
	}
	res, _ := f.rc.GetResults(ctx, p.ID)
	if res.TotalVotes != 1 {
		t.Fatalf("expected total 1, got %d", res.TotalVotes)
	}
}

func TestCastVote_ConcurrentDistinctUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustPoll(t, "crowd", "a", "b", "c")

	sqlDB, _ := f.db.DB()
	sqlDB.SetMaxOpenConns(1)

	const users = 30
	var wg sync.WaitGroup
	var failed atomic.Int32
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			who := domain.Principal{UserID: fmt.Sprintf("user-%d", i), Role: domain.RoleVoter}
			if _, err := f.votes.CastVote(ctx, p.ID, p.Options[i%3].ID, who); err != nil {
				failed.Add(1)
			}
			_, _ = f.rc.GetResults(ctx, p.ID)
		}(i)
	}
	wg.Wait()

	if failed.Load() != 0 {
		t.Fatalf("%d votes failed", failed.Load())
	}
	res, err := f.rc.GetResults(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if res.TotalVotes != users {
		t.Fatalf("cached total %d does not match ledger %d", res.TotalVotes, users)
	}
	for _, o := range res.Options {
		if o.VotesCount != users/3 {
			t.Fatalf("option %s: got %d, want %d", o.Text, o.VotesCount, users/3)
		}
	}
}

func TestCastVote_Expiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exp := f.clock.Now().Add(time.Hour)
	p, err := f.polls.CreatePoll(ctx, NewPoll{Title: "t", ExpiresAt: &exp, Options: []string{"a"}}, admin)
	if err != nil {
		t.Fatalf("CreatePoll: %v", err)
	}

	f.clock.Set(exp.Add(-time.Second))
	if _, err := f.votes.CastVote(ctx, p.ID, p.Options[0].ID, voter1); err != nil {
		t.Fatalf("vote before expiry: %v", err)
	}

	for _, at := range []time.Time{exp, exp.Add(time.Second), exp.Add(24 * time.Hour)} {
		f.clock.Set(at)
		_, err := f.votes.CastVote(ctx, p.ID, p.Options[0].ID, voter2)
		if !errors.Is(err, ErrPollExpired) {
			t.Fatalf("at %v: expected ErrPollExpired, got %v", at, err)
		}
	}
	if n, _ := repo.CountVotes(ctx, f.db, p.ID); n != 1 {
		t.Fatalf("expired poll accepted a vote: %d rows", n)
	}
}

func TestCastVote_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustPoll(t, "A", "a1")
	b := f.mustPoll(t, "B", "b1")

	cases := []struct {
		name   string
		poll   string
		option string
		who    domain.Principal
		want   error
	}{
		{"anonymous", a.ID, a.Options[0].ID, domain.Principal{}, ErrUnauthenticated},
		{"missing option", a.ID, "", voter1, ErrMissingOption},
		{"unknown poll", "nope", a.Options[0].ID, voter1, ErrPollNotFound},
		{"unknown option", a.ID, "nope", voter1, ErrOptionNotFound},
		{"option of another poll", a.ID, b.Options[0].ID, voter1, ErrOptionPollMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.votes.CastVote(ctx, tc.poll, tc.option, tc.who); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	var n int64
	f.db.Model(&domain.Vote{}).Count(&n)
	if n != 0 {
		t.Fatalf("rejected votes must not be recorded, found %d", n)
	}
	// The mismatch did not consume voter1's vote on either poll.
	if _, err := f.votes.CastVote(ctx, b.ID, b.Options[0].ID, voter1); err != nil {
		t.Fatalf("vote on B after mismatch: %v", err)
	}
}

func TestCastVote_InvalidatesCachedResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustPoll(t, "t", "a", "b")

	warm, err := f.rc.GetResults(ctx, p.ID)
	if err != nil || warm.TotalVotes != 0 {
		t.Fatalf("warm: %+v %v", warm, err)
	}
	if _, err := f.votes.CastVote(ctx, p.ID, p.Options[1].ID, voter1); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	res, err := f.rc.GetResults(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if res.TotalVotes != 1 || res.Options[1].VotesCount != 1 {
		t.Fatalf("stale snapshot after vote: %+v", res)
	}
}

func TestCastVote_Metrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustPoll(t, "t", "a")

	recorded := testutil.ToFloat64(votesCast.WithLabelValues(voteRecorded))
	dup := testutil.ToFloat64(votesCast.WithLabelValues(voteAlreadyVoted))
	rejected := testutil.ToFloat64(votesCast.WithLabelValues(voteRejected))
	invalidations := testutil.ToFloat64(cacheInvalidations.WithLabelValues("vote"))

	_, _ = f.votes.CastVote(ctx, p.ID, p.Options[0].ID, voter1)
	_, _ = f.votes.CastVote(ctx, p.ID, p.Options[0].ID, voter1)
	_, _ = f.votes.CastVote(ctx, p.ID, "", voter2)

	if got := testutil.ToFloat64(votesCast.WithLabelValues(voteRecorded)) - recorded; got != 1 {
		t.Fatalf("recorded delta = %v", got)
	}
	if got := testutil.ToFloat64(votesCast.WithLabelValues(voteAlreadyVoted)) - dup; got != 1 {
		t.Fatalf("already_voted delta = %v", got)
	}
	if got := testutil.ToFloat64(votesCast.WithLabelValues(voteRejected)) - rejected; got != 1 {
		t.Fatalf("rejected delta = %v", got)
	}
	if got := testutil.ToFloat64(cacheInvalidations.WithLabelValues("vote")) - invalidations; got != 1 {
		t.Fatalf("invalidation delta = %v", got)
	}
}

func TestUpdateVote_Immutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustPoll(t, "t", "a", "b")
	v, err := f.votes.CastVote(ctx, p.ID, p.Options[0].ID, voter1)
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	if err := f.votes.UpdateVote(ctx, p.ID, p.Options[1].ID, voter1); !errors.Is(err, ErrVotesImmutable) {
		t.Fatalf("expected ErrVotesImmutable, got %v", err)
	}
	err = f.db.Model(v).Update("option_id", p.Options[1].ID).Error
	if !errors.Is(err, ErrVotesImmutable) {
		t.Fatalf("direct update must be rejected by the model hook, got %v", err)
	}
	got, _ := repo.GetUserVote(ctx, f.db, p.ID, voter1.UserID)
	if got.OptionID != p.Options[0].ID {
		t.Fatalf("vote changed to %s", got.OptionID)
	}
}

func TestMyVote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustPoll(t, "t", "a", "b")

	if _, err := f.votes.MyVote(ctx, p.ID, domain.Principal{}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := f.votes.MyVote(ctx, "nope", voter1); !errors.Is(err, ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}
	if _, err := f.votes.MyVote(ctx, p.ID, voter1); !errors.Is(err, ErrVoteNotFound) {
		t.Fatalf("expected ErrVoteNotFound, got %v", err)
	}
	if _, ok := f.rc.UserVote(ctx, p.ID, voter1.UserID); ok {
		t.Fatalf("negative lookups must not be cached")
	}

	if _, err := f.votes.CastVote(ctx, p.ID, p.Options[1].ID, voter1); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	v, err := f.votes.MyVote(ctx, p.ID, voter1)
	if err != nil || v.OptionID != p.Options[1].ID || v.UserID != voter1.UserID {
		t.Fatalf("MyVote = %+v, %v", v, err)
	}
	cached, ok := f.rc.UserVote(ctx, p.ID, voter1.UserID)
	if !ok || cached.ID != v.ID {
		t.Fatalf("positive lookup should be cached, got %+v ok=%v", cached, ok)
	}

	// Served from the cache once populated.
	if err := f.db.Where("id = ?", v.ID).Delete(&domain.Vote{}).Error; err != nil {
		t.Fatalf("delete row: %v", err)
	}
	again, err := f.votes.MyVote(ctx, p.ID, voter1)
	if err != nil || again.ID != v.ID {
		t.Fatalf("expected cached vote, got %+v %v", again, err)
	}
}
