package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/deenkids/deenkids-backend/internal/domain"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

type LearnerStatsRepo interface {
	GetByLearnerIDs(ctx context.Context, tx *gorm.DB, learnerIDs []uuid.UUID) ([]*types.LearnerStats, error)
	// Upsert writes the recomputed totals, keyed by learner_id. The daily
	// limit column is left alone so a recompute never clobbers settings.
	Upsert(ctx context.Context, tx *gorm.DB, stats *types.LearnerStats) error
	SetDailyLimit(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, minutes int) error
}

type learnerStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearnerStatsRepo(db *gorm.DB, baseLog *logger.Logger) LearnerStatsRepo {
	return &learnerStatsRepo{db: db, log: baseLog.With("repo", "LearnerStatsRepo")}
}

func (r *learnerStatsRepo) GetByLearnerIDs(ctx context.Context, tx *gorm.DB, learnerIDs []uuid.UUID) ([]*types.LearnerStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LearnerStats
	if len(learnerIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("learner_id IN ?", learnerIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learnerStatsRepo) Upsert(ctx context.Context, tx *gorm.DB, stats *types.LearnerStats) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if stats.ID == uuid.Nil {
		stats.ID = uuid.New()
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "learner_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_xp":          stats.TotalXP,
				"level":             stats.Level,
				"lessons_completed": stats.LessonsCompleted,
				"badges_earned":     stats.BadgesEarned,
				"last_activity_at":  stats.LastActivityAt,
				"updated_at":        time.Now(),
			}),
		}).
		Create(stats).Error
}

func (r *learnerStatsRepo) SetDailyLimit(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, minutes int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "learner_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"daily_limit_minutes": minutes,
				"updated_at":          time.Now(),
			}),
		}).
		Create(&types.LearnerStats{
			ID:                uuid.New(),
			LearnerID:         learnerID,
			Level:             1,
			DailyLimitMinutes: &minutes,
		}).Error
}
