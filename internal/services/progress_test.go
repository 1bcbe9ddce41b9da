package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deenkids/deenkids-backend/internal/data/repos"
	"github.com/deenkids/deenkids-backend/internal/data/repos/testutil"
	types "github.com/deenkids/deenkids-backend/internal/domain"
)

// nopSink satisfies EventSink for tests that don't assert on analytics.
type nopSink struct{}

func (nopSink) Emit(uuid.UUID, string, map[string]interface{}) {}
func (nopSink) Start(context.Context)                          {}
func (nopSink) Close()                                         {}

func newProgressService(t *testing.T) (ProgressService, StatsService, uuid.UUID) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	guardian := testutil.SeedUser(t, ctx, gdb, uuid.New().String()+"@test.dev", types.RoleGuardian)
	learner := testutil.SeedLearner(t, ctx, gdb, guardian.ID, "Amina")

	ledgerRepo := repos.NewLessonProgressRepo(gdb, log)
	statsRepo := repos.NewLearnerStatsRepo(gdb, log)
	learnerRepo := repos.NewLearnerRepo(gdb, log)
	activityRepo := repos.NewDailyActivityRepo(gdb, log)

	stats := NewStatsService(gdb, log, ledgerRepo, statsRepo, learnerRepo, DefaultLadder(), 150)
	progress := NewProgressService(gdb, log, ledgerRepo, activityRepo, stats, nopSink{})
	return progress, stats, learner.ID
}

func TestRecordProgressFirstCompletion(t *testing.T) {
	svc, _, learnerID := newProgressService(t)
	ctx := context.Background()

	result, err := svc.RecordProgress(ctx, learnerID, RecordProgressInput{
		LessonID:  "surah-al-fatiha",
		XPAward:   100,
		Completed: true,
	})
	if err != nil {
		t.Fatalf("record progress: %v", err)
	}
	if !result.FirstCompleted {
		t.Fatal("expected first completion")
	}
	if result.Entry.XPEarned != 100 {
		t.Fatalf("XPEarned = %d, want 100", result.Entry.XPEarned)
	}
	if result.Totals.TotalXP != 100 {
		t.Fatalf("TotalXP = %d, want 100", result.Totals.TotalXP)
	}
	if result.Totals.Rank.Level != 2 {
		t.Fatalf("Level = %d, want 2", result.Totals.Rank.Level)
	}
}

func TestRecordProgressIdempotentXP(t *testing.T) {
	svc, _, learnerID := newProgressService(t)
	ctx := context.Background()

	input := RecordProgressInput{LessonID: "surah-al-ikhlas", XPAward: 80, Completed: true}
	first, err := svc.RecordProgress(ctx, learnerID, input)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Same completion again: accepted, but XP must not move.
	second, err := svc.RecordProgress(ctx, learnerID, input)
	if err != nil {
		t.Fatalf("repeat submit: %v", err)
	}
	if second.FirstCompleted {
		t.Fatal("repeat submit reported as first completion")
	}
	if second.Entry.XPEarned != first.Entry.XPEarned {
		t.Fatalf("XPEarned changed on repeat: %d -> %d", first.Entry.XPEarned, second.Entry.XPEarned)
	}
	if second.Totals.TotalXP != first.Totals.TotalXP {
		t.Fatalf("TotalXP changed on repeat: %d -> %d", first.Totals.TotalXP, second.Totals.TotalXP)
	}
	if second.Entry.CompletedAt == nil {
		t.Fatal("CompletedAt cleared on repeat submit")
	}
	if second.Entry.CompletedAt.Sub(*first.Entry.CompletedAt) > time.Second {
		t.Fatal("CompletedAt moved on repeat submit")
	}
}

func TestRecordProgressQuizAttemptCap(t *testing.T) {
	svc, _, learnerID := newProgressService(t)
	ctx := context.Background()

	for i := 0; i < types.MaxQuizAttempts+1; i++ {
		_, err := svc.RecordProgress(ctx, learnerID, RecordProgressInput{
			LessonID:   "quiz-lesson",
			QuizResult: &types.QuizAttempt{Score: i, Total: 10, TakenAt: time.Now()},
		})
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	result, err := svc.RecordProgress(ctx, learnerID, RecordProgressInput{LessonID: "quiz-lesson"})
	if err != nil {
		t.Fatalf("final read: %v", err)
	}

	var attempts []types.QuizAttempt
	if err := json.Unmarshal(result.Entry.QuizAttempts, &attempts); err != nil {
		t.Fatalf("decode attempts: %v", err)
	}
	if len(attempts) != types.MaxQuizAttempts {
		t.Fatalf("kept %d attempts, want %d", len(attempts), types.MaxQuizAttempts)
	}
	// Oldest (score 0) dropped, newest retained.
	if attempts[0].Score != 1 {
		t.Fatalf("oldest retained score = %d, want 1", attempts[0].Score)
	}
	if attempts[len(attempts)-1].Score != types.MaxQuizAttempts {
		t.Fatalf("newest score = %d, want %d", attempts[len(attempts)-1].Score, types.MaxQuizAttempts)
	}
}

func TestRecomputeTotalsClampsPerLesson(t *testing.T) {
	_, stats, learnerID := newProgressService(t)
	gdb := testutil.DB(t)
	ctx := context.Background()

	// A corrupted historical row with over-cap XP: clamped at read time,
	// never rewritten.
	testutil.SeedProgress(t, ctx, gdb, learnerID, "corrupt-lesson", 500, true)
	testutil.SeedProgress(t, ctx, gdb, learnerID, "normal-lesson", 90, true)

	totals, err := stats.RecomputeTotals(ctx, nil, learnerID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if totals.TotalXP != 240 {
		t.Fatalf("TotalXP = %d, want 240 (150 clamped + 90)", totals.TotalXP)
	}
	if totals.LessonsCompleted != 2 {
		t.Fatalf("LessonsCompleted = %d, want 2", totals.LessonsCompleted)
	}

	var row types.LessonProgress
	if err := gdb.WithContext(ctx).Where("learner_id = ? AND lesson_id = ?", learnerID, "corrupt-lesson").First(&row).Error; err != nil {
		t.Fatalf("reload ledger row: %v", err)
	}
	if row.XPEarned != 500 {
		t.Fatalf("ledger row mutated: XPEarned = %d, want 500", row.XPEarned)
	}
}

func TestRecordProgressRejectsBadInput(t *testing.T) {
	svc, _, learnerID := newProgressService(t)
	ctx := context.Background()

	if _, err := svc.RecordProgress(ctx, learnerID, RecordProgressInput{LessonID: "  "}); err == nil {
		t.Fatal("blank lesson_id accepted")
	}
	if _, err := svc.RecordProgress(ctx, learnerID, RecordProgressInput{LessonID: "x", XPAward: -5}); err == nil {
		t.Fatal("negative xp_award accepted")
	}
}
