package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/deenkids/deenkids-backend/internal/data/repos"
	types "github.com/deenkids/deenkids-backend/internal/domain"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

// Totals is the recomputed aggregate for one learner.
type Totals struct {
	TotalXP          int      `json:"total_xp"`
	LessonsCompleted int      `json:"lessons_completed"`
	Rank             RankInfo `json:"rank"`
}

// StatsService recomputes a learner's totals from the ledger and writes them
// into both denormalized caches (learner_stats and the profile snapshot).
// It is the only writer of those fields; running it twice produces the same
// result, so it doubles as a repair pass.
type StatsService interface {
	RecomputeTotals(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) (*Totals, error)
}

type statsService struct {
	db           *gorm.DB
	log          *logger.Logger
	ledgerRepo   repos.LessonProgressRepo
	statsRepo    repos.LearnerStatsRepo
	learnerRepo  repos.LearnerRepo
	ladder       Ladder
	maxPerLesson int
}

func NewStatsService(db *gorm.DB, baseLog *logger.Logger, ledgerRepo repos.LessonProgressRepo, statsRepo repos.LearnerStatsRepo, learnerRepo repos.LearnerRepo, ladder Ladder, maxXPPerLesson int) StatsService {
	return &statsService{
		db:           db,
		log:          baseLog.With("service", "StatsService"),
		ledgerRepo:   ledgerRepo,
		statsRepo:    statsRepo,
		learnerRepo:  learnerRepo,
		ladder:       ladder,
		maxPerLesson: maxXPPerLesson,
	}
}

func (s *statsService) RecomputeTotals(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) (*Totals, error) {
	entries, err := s.ledgerRepo.GetByLearnerID(ctx, tx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("read ledger for recompute: %w", err)
	}

	totalXP := 0
	completed := 0
	var lastActivity time.Time
	for _, e := range entries {
		// Clamp at read time: historical rows may carry corrupted over-cap
		// XP, and the recompute heals the totals without mutating the ledger.
		xp := e.XPEarned
		if xp > s.maxPerLesson {
			xp = s.maxPerLesson
		}
		if xp < 0 {
			xp = 0
		}
		totalXP += xp
		if e.CompletedAt != nil {
			completed++
		}
		if e.UpdatedAt.After(lastActivity) {
			lastActivity = e.UpdatedAt
		}
	}
	if lastActivity.IsZero() {
		lastActivity = time.Now()
	}

	rank := s.ladder.Rank(totalXP)

	stats := &types.LearnerStats{
		LearnerID:        learnerID,
		TotalXP:          totalXP,
		Level:            rank.Level,
		LessonsCompleted: completed,
		BadgesEarned:     rank.Level,
		LastActivityAt:   &lastActivity,
	}

	if tx != nil {
		// A gorm transaction is bound to one connection, so the two cache
		// writes stay sequential inside an explicit tx.
		if err := s.statsRepo.Upsert(ctx, tx, stats); err != nil {
			return nil, fmt.Errorf("write recomputed totals: %w", err)
		}
		if err := s.learnerRepo.UpdateSnapshot(ctx, tx, learnerID, totalXP, rank.Level, completed, lastActivity); err != nil {
			return nil, fmt.Errorf("write recomputed totals: %w", err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.statsRepo.Upsert(gctx, nil, stats)
		})
		g.Go(func() error {
			return s.learnerRepo.UpdateSnapshot(gctx, nil, learnerID, totalXP, rank.Level, completed, lastActivity)
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("write recomputed totals: %w", err)
		}
	}

	return &Totals{
		TotalXP:          totalXP,
		LessonsCompleted: completed,
		Rank:             rank,
	}, nil
}
