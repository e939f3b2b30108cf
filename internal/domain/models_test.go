package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:domain_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&Poll{}, &Option{}, &Vote{}, &Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Poll{}).TableName():        "polls",
		(Option{}).TableName():      "options",
		(Vote{}).TableName():        "votes",
		(Idempotency{}).TableName(): "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	for _, tbl := range []any{&Poll{}, &Option{}, &Vote{}, &Idempotency{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&Vote{}, "ux_vote_user_poll") {
		t.Fatalf("expected unique index ux_vote_user_poll on votes")
	}
	if !m.HasIndex(&Option{}, "idx_poll_options") {
		t.Fatalf("expected index idx_poll_options on options")
	}
	if !m.HasIndex(&Idempotency{}, "ux_user_scope_key") {
		t.Fatalf("expected unique index ux_user_scope_key on idempotency")
	}
}

func TestPoll_BeforeCreate_DefaultsExpiry(t *testing.T) {
	db := newDomainDB(t)

	p := &Poll{ID: "p1", Title: "T", CreatedBy: "admin"}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create poll: %v", err)
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt should be filled")
	}
	if got := p.ExpiresAt.Sub(p.CreatedAt); got != DefaultPollLifetime {
		t.Fatalf("default lifetime = %v; want %v", got, DefaultPollLifetime)
	}

	explicit := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	p2 := &Poll{ID: "p2", Title: "T2", CreatedBy: "admin", ExpiresAt: explicit}
	if err := db.Create(p2).Error; err != nil {
		t.Fatalf("create poll: %v", err)
	}
	if !p2.ExpiresAt.Equal(explicit) {
		t.Fatalf("explicit expiry overwritten: %v", p2.ExpiresAt)
	}
}

func TestPoll_IsActive(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &Poll{ExpiresAt: exp}
	if !p.IsActive(exp.Add(-time.Nanosecond)) {
		t.Fatalf("poll should be active just before expiry")
	}
	if p.IsActive(exp) {
		t.Fatalf("poll should be inactive at expires_at")
	}
	if p.IsActive(exp.Add(time.Hour)) {
		t.Fatalf("poll should be inactive after expiry")
	}
}

func TestVote_UniquePerUserAndPoll(t *testing.T) {
	db := newDomainDB(t)
	seedPoll(t, db, "p1", "o1", "o2")

	if err := db.Create(&Vote{ID: "v1", UserID: "u1", PollID: "p1", OptionID: "o1"}).Error; err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := db.Create(&Vote{ID: "v2", UserID: "u1", PollID: "p1", OptionID: "o2"}).Error; err == nil {
		t.Fatalf("expected unique violation for second vote by the same user")
	}
	if err := db.Create(&Vote{ID: "v3", UserID: "u2", PollID: "p1", OptionID: "o2"}).Error; err != nil {
		t.Fatalf("other user should be able to vote: %v", err)
	}
}

func TestVote_BeforeUpdate_Rejects(t *testing.T) {
	db := newDomainDB(t)
	seedPoll(t, db, "p1", "o1", "o2")

	v := &Vote{ID: "v1", UserID: "u1", PollID: "p1", OptionID: "o1"}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("vote: %v", err)
	}
	err := db.Model(v).Update("option_id", "o2").Error
	if !errors.Is(err, ErrVotesImmutable) {
		t.Fatalf("expected ErrVotesImmutable, got %v", err)
	}

	var got Vote
	if err := db.First(&got, "id = ?", "v1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.OptionID != "o1" {
		t.Fatalf("vote changed despite hook: %+v", got)
	}
}

func TestCascades_PollDeleteRemovesOptionsAndVotes(t *testing.T) {
	db := newDomainDB(t)
	seedPoll(t, db, "p1", "o1", "o2")
	if err := db.Create(&Vote{ID: "v1", UserID: "u1", PollID: "p1", OptionID: "o1"}).Error; err != nil {
		t.Fatalf("vote: %v", err)
	}

	// Deleting an option removes the votes cast for it.
	if err := db.Delete(&Option{}, "id = ?", "o1").Error; err != nil {
		t.Fatalf("delete option: %v", err)
	}
	var cnt int64
	db.Model(&Vote{}).Where("option_id = ?", "o1").Count(&cnt)
	if cnt != 0 {
		t.Fatalf("expected votes to cascade-delete with option, got %d", cnt)
	}

	// Deleting the poll removes the remaining options.
	if err := db.Delete(&Poll{}, "id = ?", "p1").Error; err != nil {
		t.Fatalf("delete poll: %v", err)
	}
	db.Model(&Option{}).Where("poll_id = ?", "p1").Count(&cnt)
	if cnt != 0 {
		t.Fatalf("expected options to cascade-delete with poll, got %d", cnt)
	}
}

func seedPoll(t *testing.T, db *gorm.DB, pollID string, optionIDs ...string) {
	t.Helper()
	p := &Poll{ID: pollID, Title: "Favorite food", CreatedBy: "admin"}
	for i, id := range optionIDs {
		p.Options = append(p.Options, Option{ID: id, Text: "opt " + id, Position: i})
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed poll: %v", err)
	}
}
