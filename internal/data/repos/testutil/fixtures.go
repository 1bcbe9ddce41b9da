package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/deenkids/deenkids-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Name:     "Test User",
		Role:     role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedLearner(tb testing.TB, ctx context.Context, tx *gorm.DB, guardianID uuid.UUID, name string) *types.Learner {
	tb.Helper()
	l := &types.Learner{
		ID:         uuid.New(),
		GuardianID: guardianID,
		Name:       name,
		Age:        8,
		Level:      1,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed learner: %v", err)
	}
	return l
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, scholarID, guardianID, learnerID uuid.UUID, status types.SessionStatus) *types.LiveSession {
	tb.Helper()
	now := time.Now()
	s := &types.LiveSession{
		ID:           uuid.New(),
		ScholarID:    scholarID,
		GuardianID:   guardianID,
		LearnerID:    learnerID,
		Status:       status,
		AccessMode:   types.AccessOpen,
		CurrentSurah: 1,
		CurrentAyah:  1,
	}
	if status != types.SessionWaiting {
		s.StartedAt = &now
	}
	if status == types.SessionEnded {
		s.EndedAt = &now
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, lessonID string, xp int, completed bool) *types.LessonProgress {
	tb.Helper()
	now := time.Now()
	p := &types.LessonProgress{
		ID:        uuid.New(),
		LearnerID: learnerID,
		LessonID:  lessonID,
		XPEarned:  xp,
	}
	if completed {
		p.CompletedAt = &now
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}
