package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/deenkids/deenkids-backend/internal/data/repos"
	types "github.com/deenkids/deenkids-backend/internal/domain"
	pkgerrors "github.com/deenkids/deenkids-backend/internal/pkg/errors"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

// RecordProgressInput is one lesson interaction from a learner's client.
type RecordProgressInput struct {
	LessonID     string             `json:"lesson_id"`
	LessonTitle  string             `json:"lesson_title"`
	Badge        string             `json:"badge"`
	XPAward      int                `json:"xp_award"`
	QuizResult   *types.QuizAttempt `json:"quiz_result,omitempty"`
	VideoWatched bool               `json:"video_watched"`
	Completed    bool               `json:"completed"`
}

// RecordProgressResult carries the updated ledger entry plus fresh totals so
// the caller's response reflects the recompute that ran before replying.
type RecordProgressResult struct {
	Entry          *types.LessonProgress `json:"entry"`
	Totals         *Totals               `json:"totals"`
	FirstCompleted bool                  `json:"first_completed"`
}

type ProgressService interface {
	RecordProgress(ctx context.Context, learnerID uuid.UUID, input RecordProgressInput) (*RecordProgressResult, error)
	GetLedger(ctx context.Context, learnerID uuid.UUID) ([]*types.LessonProgress, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	ledgerRepo   repos.LessonProgressRepo
	activityRepo repos.DailyActivityRepo
	stats        StatsService
	sink         EventSink
}

func NewProgressService(db *gorm.DB, baseLog *logger.Logger, ledgerRepo repos.LessonProgressRepo, activityRepo repos.DailyActivityRepo, stats StatsService, sink EventSink) ProgressService {
	return &progressService{
		db:           db,
		log:          baseLog.With("service", "ProgressService"),
		ledgerRepo:   ledgerRepo,
		activityRepo: activityRepo,
		stats:        stats,
		sink:         sink,
	}
}

func (s *progressService) RecordProgress(ctx context.Context, learnerID uuid.UUID, input RecordProgressInput) (*RecordProgressResult, error) {
	lessonID := strings.TrimSpace(input.LessonID)
	if lessonID == "" {
		return nil, fmt.Errorf("%w: lesson_id is required", pkgerrors.ErrInvalidArgument)
	}
	if input.XPAward < 0 {
		return nil, fmt.Errorf("%w: xp_award must not be negative", pkgerrors.ErrInvalidArgument)
	}

	now := time.Now()

	entry, err := s.ledgerRepo.GetByLearnerAndLesson(ctx, nil, learnerID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("look up ledger entry: %w", err)
	}

	created := false
	if entry == nil {
		entry = &types.LessonProgress{
			ID:        uuid.New(),
			LearnerID: learnerID,
			LessonID:  lessonID,
		}
		created = true
	}

	if input.LessonTitle != "" {
		entry.LessonTitle = input.LessonTitle
	}
	if input.Badge != "" {
		entry.Badge = input.Badge
	}
	if input.VideoWatched && entry.VideoWatchedAt == nil {
		entry.VideoWatchedAt = &now
	}
	if input.QuizResult != nil {
		attempt := *input.QuizResult
		if attempt.TakenAt.IsZero() {
			attempt.TakenAt = now
		}
		attempts, err := appendQuizAttempt(entry.QuizAttempts, attempt)
		if err != nil {
			return nil, fmt.Errorf("append quiz attempt: %w", err)
		}
		entry.QuizAttempts = attempts
	}

	// The idempotence guard: XP moves only on the first transition into
	// completed. A repeat completed=true submission is accepted for the
	// metadata above but must never inflate XPEarned.
	firstCompleted := input.Completed && entry.CompletedAt == nil
	if firstCompleted {
		entry.CompletedAt = &now
		entry.XPEarned += input.XPAward
	}

	if created {
		if _, err := s.ledgerRepo.Create(ctx, nil, []*types.LessonProgress{entry}); err != nil {
			return nil, fmt.Errorf("create ledger entry: %w", err)
		}
		s.sink.Emit(learnerID, types.EventLessonStarted, map[string]interface{}{
			"lesson_id": lessonID,
		})
	} else {
		if err := s.ledgerRepo.Save(ctx, nil, entry); err != nil {
			return nil, fmt.Errorf("update ledger entry: %w", err)
		}
	}

	result := &RecordProgressResult{Entry: entry, FirstCompleted: firstCompleted}

	if firstCompleted {
		if err := s.activityRepo.IncrementLessons(ctx, nil, learnerID, types.DayKey(now)); err != nil {
			return nil, fmt.Errorf("bump daily lesson count: %w", err)
		}
		s.sink.Emit(learnerID, types.EventLessonCompleted, map[string]interface{}{
			"lesson_id": lessonID,
			"xp_earned": entry.XPEarned,
		})
	}

	// The reply must reflect up-to-date totals, so the recompute runs
	// synchronously before returning.
	totals, err := s.stats.RecomputeTotals(ctx, nil, learnerID)
	if err != nil {
		return nil, err
	}
	result.Totals = totals

	return result, nil
}

func (s *progressService) GetLedger(ctx context.Context, learnerID uuid.UUID) ([]*types.LessonProgress, error) {
	return s.ledgerRepo.GetByLearnerID(ctx, nil, learnerID)
}

// appendQuizAttempt adds an attempt to the JSON list, retaining only the most
// recent MaxQuizAttempts entries (oldest dropped first).
func appendQuizAttempt(raw datatypes.JSON, attempt types.QuizAttempt) (datatypes.JSON, error) {
	var attempts []types.QuizAttempt
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &attempts); err != nil {
			return nil, err
		}
	}
	attempts = append(attempts, attempt)
	if len(attempts) > types.MaxQuizAttempts {
		attempts = attempts[len(attempts)-types.MaxQuizAttempts:]
	}
	out, err := json.Marshal(attempts)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(out), nil
}
