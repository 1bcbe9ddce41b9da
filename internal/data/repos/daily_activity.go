package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/deenkids/deenkids-backend/internal/domain"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

type DailyActivityRepo interface {
	// GetByLearnerAndDay returns (nil, nil) when no row exists for the day.
	GetByLearnerAndDay(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, day string) (*types.DailyActivity, error)
	GetRecentByLearner(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, limit int) ([]*types.DailyActivity, error)
	// AddMinutes upserts the (learner, day) row and adds minutes atomically.
	AddMinutes(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, day string, minutes int) error
	// IncrementLessons upserts the (learner, day) row and bumps the day's
	// completed-lesson count by one.
	IncrementLessons(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, day string) error
}

type dailyActivityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyActivityRepo(db *gorm.DB, baseLog *logger.Logger) DailyActivityRepo {
	return &dailyActivityRepo{db: db, log: baseLog.With("repo", "DailyActivityRepo")}
}

func (r *dailyActivityRepo) GetByLearnerAndDay(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, day string) (*types.DailyActivity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.DailyActivity
	err := transaction.WithContext(ctx).
		Where("learner_id = ? AND day = ?", learnerID, day).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *dailyActivityRepo) GetRecentByLearner(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, limit int) ([]*types.DailyActivity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 7
	}

	var results []*types.DailyActivity
	if err := transaction.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("day DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dailyActivityRepo) AddMinutes(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, day string, minutes int) error {
	return r.upsertAdd(ctx, tx, learnerID, day, map[string]interface{}{
		"minutes_spent": gorm.Expr("daily_activity.minutes_spent + ?", minutes),
		"updated_at":    time.Now(),
	}, &types.DailyActivity{
		ID:           uuid.New(),
		LearnerID:    learnerID,
		Day:          day,
		MinutesSpent: minutes,
	})
}

func (r *dailyActivityRepo) IncrementLessons(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, day string) error {
	return r.upsertAdd(ctx, tx, learnerID, day, map[string]interface{}{
		"lessons_completed": gorm.Expr("daily_activity.lessons_completed + 1"),
		"updated_at":        time.Now(),
	}, &types.DailyActivity{
		ID:               uuid.New(),
		LearnerID:        learnerID,
		Day:              day,
		LessonsCompleted: 1,
	})
}

func (r *dailyActivityRepo) upsertAdd(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, day string, assignments map[string]interface{}, insert *types.DailyActivity) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(insert).Error
}
