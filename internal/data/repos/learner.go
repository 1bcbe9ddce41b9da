package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/deenkids/deenkids-backend/internal/domain"
	pkgerrors "github.com/deenkids/deenkids-backend/internal/pkg/errors"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

type LearnerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, learners []*types.Learner) ([]*types.Learner, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, learnerIDs []uuid.UUID) ([]*types.Learner, error)
	GetByGuardianID(ctx context.Context, tx *gorm.DB, guardianID uuid.UUID) ([]*types.Learner, error)
	// GetOwned returns the learner only when it belongs to the guardian;
	// any miss (absent or not owned) is pkgerrors.ErrNotFound.
	GetOwned(ctx context.Context, tx *gorm.DB, learnerID, guardianID uuid.UUID) (*types.Learner, error)
	// Resolve locates a guardian's learner from a loose reference: a learner
	// ID takes precedence, a profile name is the fallback.
	Resolve(ctx context.Context, tx *gorm.DB, guardianID uuid.UUID, ref string) (*types.Learner, error)
	UpdateSnapshot(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, xp, level, lessonsCompleted int, lastActivityAt time.Time) error
}

type learnerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearnerRepo(db *gorm.DB, baseLog *logger.Logger) LearnerRepo {
	return &learnerRepo{db: db, log: baseLog.With("repo", "LearnerRepo")}
}

func (r *learnerRepo) Create(ctx context.Context, tx *gorm.DB, learners []*types.Learner) ([]*types.Learner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(learners) == 0 {
		return []*types.Learner{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&learners).Error; err != nil {
		return nil, err
	}
	return learners, nil
}

func (r *learnerRepo) GetByIDs(ctx context.Context, tx *gorm.DB, learnerIDs []uuid.UUID) ([]*types.Learner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Learner
	if len(learnerIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", learnerIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learnerRepo) GetByGuardianID(ctx context.Context, tx *gorm.DB, guardianID uuid.UUID) ([]*types.Learner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Learner
	if err := transaction.WithContext(ctx).
		Where("guardian_id = ?", guardianID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learnerRepo) GetOwned(ctx context.Context, tx *gorm.DB, learnerID, guardianID uuid.UUID) (*types.Learner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Learner
	err := transaction.WithContext(ctx).
		Where("id = ? AND guardian_id = ?", learnerID, guardianID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *learnerRepo) Resolve(ctx context.Context, tx *gorm.DB, guardianID uuid.UUID, ref string) (*types.Learner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id, err := uuid.Parse(ref); err == nil {
		return r.GetOwned(ctx, transaction, id, guardianID)
	}

	var result types.Learner
	err := transaction.WithContext(ctx).
		Where("guardian_id = ? AND name = ?", guardianID, ref).
		Order("created_at ASC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *learnerRepo) UpdateSnapshot(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, xp, level, lessonsCompleted int, lastActivityAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Learner{}).
		Where("id = ?", learnerID).
		Updates(map[string]interface{}{
			"xp":                xp,
			"level":             level,
			"lessons_completed": lessonsCompleted,
			"last_activity_at":  lastActivityAt,
		}).Error
}
