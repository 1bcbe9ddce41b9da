package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/deenkids/deenkids-backend/internal/data/repos"
	"github.com/deenkids/deenkids-backend/internal/data/repos/testutil"
	types "github.com/deenkids/deenkids-backend/internal/domain"
	pkgerrors "github.com/deenkids/deenkids-backend/internal/pkg/errors"
)

func newLearnerService(t *testing.T) (LearnerService, ProgressService, QuotaService, uuid.UUID) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	guardian := testutil.SeedUser(t, ctx, gdb, uuid.New().String()+"@test.dev", types.RoleGuardian)

	learnerRepo := repos.NewLearnerRepo(gdb, log)
	ledgerRepo := repos.NewLessonProgressRepo(gdb, log)
	statsRepo := repos.NewLearnerStatsRepo(gdb, log)
	activityRepo := repos.NewDailyActivityRepo(gdb, log)
	userRepo := repos.NewUserRepo(gdb, log)

	stats := NewStatsService(gdb, log, ledgerRepo, statsRepo, learnerRepo, DefaultLadder(), 150)
	learners := NewLearnerService(gdb, log, learnerRepo, ledgerRepo, statsRepo, activityRepo, stats, DefaultLadder(), 45)
	progress := NewProgressService(gdb, log, ledgerRepo, activityRepo, stats, nopSink{})
	quota := NewQuotaService(gdb, log, userRepo, statsRepo, activityRepo, nopSink{}, 3, 45)

	return learners, progress, quota, guardian.ID
}

func TestDashboardReflectsProgress(t *testing.T) {
	learners, progress, _, guardianID := newLearnerService(t)
	ctx := context.Background()

	l, err := learners.CreateLearner(ctx, guardianID, "Sumayya", 7)
	if err != nil {
		t.Fatalf("create learner: %v", err)
	}

	for _, lesson := range []string{"l1", "l2", "l3"} {
		if _, err := progress.RecordProgress(ctx, l.ID, RecordProgressInput{
			LessonID:  lesson,
			XPAward:   100,
			Completed: true,
		}); err != nil {
			t.Fatalf("record %s: %v", lesson, err)
		}
	}

	snap, err := learners.GetDashboard(ctx, guardianID, l.ID.String())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if snap.Totals.TotalXP != 300 {
		t.Fatalf("TotalXP = %d, want 300", snap.Totals.TotalXP)
	}
	if snap.Totals.Rank.Level != 4 {
		t.Fatalf("Level = %d, want 4", snap.Totals.Rank.Level)
	}
	if len(snap.Badges) != 4 {
		t.Fatalf("badges = %d, want 4 (one per level)", len(snap.Badges))
	}
	if snap.Totals.LessonsCompleted != 3 {
		t.Fatalf("LessonsCompleted = %d, want 3", snap.Totals.LessonsCompleted)
	}
	if snap.DailyLimitMinutes != 45 {
		t.Fatalf("default daily limit = %d, want 45", snap.DailyLimitMinutes)
	}
	if len(snap.RecentLessons) != 3 {
		t.Fatalf("recent lessons = %d, want 3", len(snap.RecentLessons))
	}
}

func TestDashboardByName(t *testing.T) {
	learners, _, _, guardianID := newLearnerService(t)
	ctx := context.Background()

	if _, err := learners.CreateLearner(ctx, guardianID, "Ruqayya", 6); err != nil {
		t.Fatalf("create learner: %v", err)
	}

	snap, err := learners.GetDashboard(ctx, guardianID, "Ruqayya")
	if err != nil {
		t.Fatalf("dashboard by name: %v", err)
	}
	if snap.Learner.Name != "Ruqayya" {
		t.Fatalf("resolved %q, want Ruqayya", snap.Learner.Name)
	}
}

func TestDashboardOwnershipGate(t *testing.T) {
	learners, _, _, guardianID := newLearnerService(t)
	gdb := testutil.DB(t)
	ctx := context.Background()

	stranger := testutil.SeedUser(t, ctx, gdb, uuid.New().String()+"@test.dev", types.RoleGuardian)
	l, err := learners.CreateLearner(ctx, guardianID, "Talha", 9)
	if err != nil {
		t.Fatalf("create learner: %v", err)
	}

	if _, err := learners.GetDashboard(ctx, stranger.ID, l.ID.String()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("stranger dashboard: err = %v, want not found", err)
	}
}

func TestUpdateDailyLimit(t *testing.T) {
	learners, _, quota, guardianID := newLearnerService(t)
	ctx := context.Background()

	l, err := learners.CreateLearner(ctx, guardianID, "Safiyya", 8)
	if err != nil {
		t.Fatalf("create learner: %v", err)
	}

	if err := learners.UpdateDailyLimit(ctx, guardianID, l.ID.String(), 20); err != nil {
		t.Fatalf("update limit: %v", err)
	}
	if err := learners.UpdateDailyLimit(ctx, guardianID, l.ID.String(), -1); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("negative limit: err = %v, want invalid argument", err)
	}

	// The tightened limit drives the session pre-check.
	if err := quota.LogActivity(ctx, l.ID, 20); err != nil {
		t.Fatalf("log activity: %v", err)
	}
	result, err := quota.AllowSessionStart(ctx, l.ID)
	if err != nil {
		t.Fatalf("allow check: %v", err)
	}
	if result.Allowed {
		t.Fatalf("start allowed at %d/%d minutes", result.MinutesToday, result.LimitMinutes)
	}
	if result.LimitMinutes != 20 {
		t.Fatalf("limit = %d, want 20", result.LimitMinutes)
	}
}

func TestZeroDailyLimitDisablesSessions(t *testing.T) {
	learners, _, quota, guardianID := newLearnerService(t)
	ctx := context.Background()

	l, err := learners.CreateLearner(ctx, guardianID, "Hamza", 6)
	if err != nil {
		t.Fatalf("create learner: %v", err)
	}

	// 0 is a valid setting that switches sessions off, not "unset".
	if err := learners.UpdateDailyLimit(ctx, guardianID, l.ID.String(), 0); err != nil {
		t.Fatalf("update limit to 0: %v", err)
	}

	result, err := quota.AllowSessionStart(ctx, l.ID)
	if err != nil {
		t.Fatalf("allow check: %v", err)
	}
	if result.Allowed {
		t.Fatalf("start allowed with a zero daily limit (limit reported %d, minutes %d)",
			result.LimitMinutes, result.MinutesToday)
	}
	if result.LimitMinutes != 0 {
		t.Fatalf("limit = %d, want 0", result.LimitMinutes)
	}

	snap, err := learners.GetDashboard(ctx, guardianID, l.ID.String())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if snap.DailyLimitMinutes != 0 {
		t.Fatalf("dashboard limit = %d, want 0", snap.DailyLimitMinutes)
	}
}

func TestChatQuotaLifecycle(t *testing.T) {
	_, _, quota, guardianID := newLearnerService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := quota.CheckAndCountChat(ctx, guardianID)
		if err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
		if !result.Allowed {
			t.Fatalf("attempt %d rejected", i+1)
		}
		if result.Remaining != 2-i {
			t.Fatalf("attempt %d remaining = %d, want %d", i+1, result.Remaining, 2-i)
		}
	}

	rejected, err := quota.CheckAndCountChat(ctx, guardianID)
	if err != nil {
		t.Fatalf("fourth attempt: %v", err)
	}
	if rejected.Allowed {
		t.Fatal("fourth attempt allowed past the limit")
	}
	if rejected.Message == "" {
		t.Fatal("rejection carries no child-friendly message")
	}
}
