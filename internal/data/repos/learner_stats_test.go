package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deenkids/deenkids-backend/internal/data/repos/testutil"
	types "github.com/deenkids/deenkids-backend/internal/domain"
)

func TestLearnerStatsUpsertKeepsDailyLimit(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewLearnerStatsRepo(gdb, log)
	learnerID := uuid.New()

	if err := repo.SetDailyLimit(ctx, tx, learnerID, 30); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	now := time.Now()
	if err := repo.Upsert(ctx, tx, &types.LearnerStats{
		LearnerID:        learnerID,
		TotalXP:          250,
		Level:            3,
		LessonsCompleted: 4,
		BadgesEarned:     3,
		LastActivityAt:   &now,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rows, err := repo.GetByLearnerIDs(ctx, tx, []uuid.UUID{learnerID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	got := rows[0]
	if got.TotalXP != 250 || got.Level != 3 {
		t.Fatalf("totals not written: %+v", got)
	}
	// The recompute path must never clobber the guardian's setting.
	if got.DailyLimitMinutes == nil || *got.DailyLimitMinutes != 30 {
		t.Fatalf("daily limit = %v, want 30", got.DailyLimitMinutes)
	}
}

func TestLearnerStatsSetDailyLimitUpdatesExisting(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := NewLearnerStatsRepo(gdb, log)
	learnerID := uuid.New()

	if err := repo.Upsert(ctx, tx, &types.LearnerStats{LearnerID: learnerID, TotalXP: 50, Level: 1, BadgesEarned: 1}); err != nil {
		t.Fatalf("seed stats: %v", err)
	}
	if err := repo.SetDailyLimit(ctx, tx, learnerID, 60); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	rows, err := repo.GetByLearnerIDs(ctx, tx, []uuid.UUID{learnerID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rows[0].DailyLimitMinutes == nil || *rows[0].DailyLimitMinutes != 60 {
		t.Fatalf("daily limit = %v, want 60", rows[0].DailyLimitMinutes)
	}
	if rows[0].TotalXP != 50 {
		t.Fatalf("setting the limit clobbered totals: %+v", rows[0])
	}

	// A freshly upserted row carries no limit yet; callers fall back to the
	// configured default rather than reading a fake zero.
	other := uuid.New()
	if err := repo.Upsert(ctx, tx, &types.LearnerStats{LearnerID: other, Level: 1}); err != nil {
		t.Fatalf("seed other: %v", err)
	}
	rows, err = repo.GetByLearnerIDs(ctx, tx, []uuid.UUID{other})
	if err != nil {
		t.Fatalf("get other: %v", err)
	}
	if rows[0].DailyLimitMinutes != nil {
		t.Fatalf("unset daily limit = %v, want nil", *rows[0].DailyLimitMinutes)
	}
}
