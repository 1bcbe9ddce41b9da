package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deenkids/deenkids-backend/internal/data/repos"
	types "github.com/deenkids/deenkids-backend/internal/domain"
	pkgerrors "github.com/deenkids/deenkids-backend/internal/pkg/errors"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

// DashboardSnapshot is the guardian-facing view of one learner. Totals come
// from a fresh recompute, never from the cached snapshot alone.
type DashboardSnapshot struct {
	Learner           *types.Learner          `json:"learner"`
	Totals            *Totals                 `json:"totals"`
	Badges            []string                `json:"badges"`
	ActivityLog       []*types.DailyActivity  `json:"activity_log"`
	RecentLessons     []*types.LessonProgress `json:"recent_lessons"`
	DailyLimitMinutes int                     `json:"daily_limit_minutes"`
}

type LearnerService interface {
	CreateLearner(ctx context.Context, guardianID uuid.UUID, name string, age int) (*types.Learner, error)
	ListLearners(ctx context.Context, guardianID uuid.UUID) ([]*types.Learner, error)
	// ResolveOwned is the single ownership gate used by every learner-scoped
	// operation: learner ID first, profile name as fallback, not-found when
	// the guardian does not own the match.
	ResolveOwned(ctx context.Context, guardianID uuid.UUID, learnerRef string) (*types.Learner, error)
	GetDashboard(ctx context.Context, guardianID uuid.UUID, learnerRef string) (*DashboardSnapshot, error)
	UpdateDailyLimit(ctx context.Context, guardianID uuid.UUID, learnerRef string, minutes int) error
}

type learnerService struct {
	db           *gorm.DB
	log          *logger.Logger
	learnerRepo  repos.LearnerRepo
	ledgerRepo   repos.LessonProgressRepo
	statsRepo    repos.LearnerStatsRepo
	activityRepo repos.DailyActivityRepo
	stats        StatsService
	ladder       Ladder
	defaultDaily int
}

func NewLearnerService(db *gorm.DB, baseLog *logger.Logger, learnerRepo repos.LearnerRepo, ledgerRepo repos.LessonProgressRepo, statsRepo repos.LearnerStatsRepo, activityRepo repos.DailyActivityRepo, stats StatsService, ladder Ladder, defaultDailyMinutes int) LearnerService {
	return &learnerService{
		db:           db,
		log:          baseLog.With("service", "LearnerService"),
		learnerRepo:  learnerRepo,
		ledgerRepo:   ledgerRepo,
		statsRepo:    statsRepo,
		activityRepo: activityRepo,
		stats:        stats,
		ladder:       ladder,
		defaultDaily: defaultDailyMinutes,
	}
}

func (s *learnerService) CreateLearner(ctx context.Context, guardianID uuid.UUID, name string, age int) (*types.Learner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: learner name is required", pkgerrors.ErrInvalidArgument)
	}
	if age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", pkgerrors.ErrInvalidArgument)
	}

	l := &types.Learner{
		ID:         uuid.New(),
		GuardianID: guardianID,
		Name:       name,
		Age:        age,
		Level:      1,
	}
	if _, err := s.learnerRepo.Create(ctx, nil, []*types.Learner{l}); err != nil {
		return nil, fmt.Errorf("create learner profile: %w", err)
	}
	return l, nil
}

func (s *learnerService) ListLearners(ctx context.Context, guardianID uuid.UUID) ([]*types.Learner, error) {
	return s.learnerRepo.GetByGuardianID(ctx, nil, guardianID)
}

func (s *learnerService) ResolveOwned(ctx context.Context, guardianID uuid.UUID, learnerRef string) (*types.Learner, error) {
	learnerRef = strings.TrimSpace(learnerRef)
	if learnerRef == "" {
		return nil, fmt.Errorf("%w: learner reference is required", pkgerrors.ErrInvalidArgument)
	}
	return s.learnerRepo.Resolve(ctx, nil, guardianID, learnerRef)
}

func (s *learnerService) GetDashboard(ctx context.Context, guardianID uuid.UUID, learnerRef string) (*DashboardSnapshot, error) {
	l, err := s.ResolveOwned(ctx, guardianID, learnerRef)
	if err != nil {
		return nil, err
	}

	// Recompute-on-read keeps the dashboard honest even when a previous
	// ledger write raced or partially failed.
	totals, err := s.stats.RecomputeTotals(ctx, nil, l.ID)
	if err != nil {
		return nil, err
	}

	activity, err := s.activityRepo.GetRecentByLearner(ctx, nil, l.ID, 7)
	if err != nil {
		return nil, fmt.Errorf("load activity log: %w", err)
	}

	lessons, err := s.ledgerRepo.GetByLearnerID(ctx, nil, l.ID)
	if err != nil {
		return nil, fmt.Errorf("load recent lessons: %w", err)
	}
	if len(lessons) > 10 {
		lessons = lessons[:10]
	}

	limit := s.defaultDaily
	stats, err := s.statsRepo.GetByLearnerIDs(ctx, nil, []uuid.UUID{l.ID})
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if len(stats) > 0 && stats[0].DailyLimitMinutes != nil {
		limit = *stats[0].DailyLimitMinutes
	}

	return &DashboardSnapshot{
		Learner:           l,
		Totals:            totals,
		Badges:            s.ladder.Badges(totals.Rank.Level),
		ActivityLog:       activity,
		RecentLessons:     lessons,
		DailyLimitMinutes: limit,
	}, nil
}

func (s *learnerService) UpdateDailyLimit(ctx context.Context, guardianID uuid.UUID, learnerRef string, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("%w: daily limit must not be negative", pkgerrors.ErrInvalidArgument)
	}
	l, err := s.ResolveOwned(ctx, guardianID, learnerRef)
	if err != nil {
		return err
	}
	return s.statsRepo.SetDailyLimit(ctx, nil, l.ID, minutes)
}
