package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deenkids/deenkids-backend/internal/data/repos/testutil"
	types "github.com/deenkids/deenkids-backend/internal/domain"
	pkgerrors "github.com/deenkids/deenkids-backend/internal/pkg/errors"
)

func TestResolveByIDAndName(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewLearnerRepo(gdb, log)
	guardian := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev", types.RoleGuardian)
	learner := testutil.SeedLearner(t, ctx, tx, guardian.ID, "Maryam")

	byID, err := repo.Resolve(ctx, tx, guardian.ID, learner.ID.String())
	if err != nil {
		t.Fatalf("resolve by id: %v", err)
	}
	if byID.ID != learner.ID {
		t.Fatalf("resolved %s, want %s", byID.ID, learner.ID)
	}

	byName, err := repo.Resolve(ctx, tx, guardian.ID, "Maryam")
	if err != nil {
		t.Fatalf("resolve by name: %v", err)
	}
	if byName.ID != learner.ID {
		t.Fatalf("resolved %s, want %s", byName.ID, learner.ID)
	}
}

func TestResolveEnforcesOwnership(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewLearnerRepo(gdb, log)
	owner := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev", types.RoleGuardian)
	other := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev", types.RoleGuardian)
	learner := testutil.SeedLearner(t, ctx, tx, owner.ID, "Bilal")

	// Another guardian's ID resolves to not-found, never to the learner.
	if _, err := repo.Resolve(ctx, tx, other.ID, learner.ID.String()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("cross-guardian resolve: err = %v, want not found", err)
	}
	if _, err := repo.Resolve(ctx, tx, other.ID, "Bilal"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("cross-guardian name resolve: err = %v, want not found", err)
	}
}

func TestUpdateSnapshot(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewLearnerRepo(gdb, log)
	guardian := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev", types.RoleGuardian)
	learner := testutil.SeedLearner(t, ctx, tx, guardian.ID, "Khalid")

	now := time.Now()
	if err := repo.UpdateSnapshot(ctx, tx, learner.ID, 320, 4, 5, now); err != nil {
		t.Fatalf("update snapshot: %v", err)
	}

	got, err := repo.GetOwned(ctx, tx, learner.ID, guardian.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.XP != 320 || got.Level != 4 || got.LessonsCompleted != 5 {
		t.Fatalf("snapshot = xp %d level %d lessons %d, want 320/4/5", got.XP, got.Level, got.LessonsCompleted)
	}
}
