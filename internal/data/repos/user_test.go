package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deenkids/deenkids-backend/internal/data/repos/testutil"
	types "github.com/deenkids/deenkids-backend/internal/domain"
)

func TestSetChatCounter(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewUserRepo(gdb, log)
	u := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev", types.RoleGuardian)

	now := time.Now()
	if err := repo.SetChatCounter(ctx, tx, u.ID, 2, now); err != nil {
		t.Fatalf("set counter: %v", err)
	}

	users, err := repo.GetByIDs(ctx, tx, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := users[0]
	if got.DailyChatCount != 2 {
		t.Fatalf("count = %d, want 2", got.DailyChatCount)
	}
	if got.LastChatAt == nil {
		t.Fatal("LastChatAt not stamped")
	}
}

func TestTouchLastSeen(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewUserRepo(gdb, log)
	u := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev", types.RoleScholar)

	if err := repo.TouchLastSeen(ctx, tx, u.ID, time.Now()); err != nil {
		t.Fatalf("touch: %v", err)
	}

	users, err := repo.GetByIDs(ctx, tx, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if users[0].LastSeenAt == nil {
		t.Fatal("LastSeenAt not stamped")
	}
}

func TestGetByEmails(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewUserRepo(gdb, log)
	email := uuid.New().String() + "@test.dev"
	seeded := testutil.SeedUser(t, ctx, tx, email, types.RoleGuardian)

	users, err := repo.GetByEmails(ctx, tx, []string{email})
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if len(users) != 1 || users[0].ID != seeded.ID {
		t.Fatalf("lookup = %+v, want %s", users, seeded.ID)
	}
}
