package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/deenkids/deenkids-backend/internal/domain"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

type LessonProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.LessonProgress) ([]*types.LessonProgress, error)
	// GetByLearnerAndLesson returns (nil, nil) when no entry exists yet.
	GetByLearnerAndLesson(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, lessonID string) (*types.LessonProgress, error)
	GetByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.LessonProgress, error)
	Save(ctx context.Context, tx *gorm.DB, entry *types.LessonProgress) error
}

type lessonProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	return &lessonProgressRepo{db: db, log: baseLog.With("repo", "LessonProgressRepo")}
}

func (r *lessonProgressRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.LessonProgress) ([]*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entries) == 0 {
		return []*types.LessonProgress{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *lessonProgressRepo) GetByLearnerAndLesson(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, lessonID string) (*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.LessonProgress
	err := transaction.WithContext(ctx).
		Where("learner_id = ? AND lesson_id = ?", learnerID, lessonID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *lessonProgressRepo) GetByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LessonProgress
	if err := transaction.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonProgressRepo) Save(ctx context.Context, tx *gorm.DB, entry *types.LessonProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(entry).Error
}
