package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/deenkids/deenkids-backend/internal/domain"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

type LiveSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.LiveSession) ([]*types.LiveSession, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.LiveSession, error)
	// GetOpenByPair returns the most recent non-ended session for the
	// (guardian, learner) pair, or (nil, nil). Duplicate open sessions can
	// exist after a concurrent start; most recent wins.
	GetOpenByPair(ctx context.Context, tx *gorm.DB, guardianID, learnerID uuid.UUID) (*types.LiveSession, error)
	Save(ctx context.Context, tx *gorm.DB, session *types.LiveSession) error
	UpdatePosition(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, surah, ayah int) error
}

type liveSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLiveSessionRepo(db *gorm.DB, baseLog *logger.Logger) LiveSessionRepo {
	return &liveSessionRepo{db: db, log: baseLog.With("repo", "LiveSessionRepo")}
}

func (r *liveSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.LiveSession) ([]*types.LiveSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(sessions) == 0 {
		return []*types.LiveSession{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *liveSessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.LiveSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LiveSession
	if len(sessionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", sessionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *liveSessionRepo) GetOpenByPair(ctx context.Context, tx *gorm.DB, guardianID, learnerID uuid.UUID) (*types.LiveSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.LiveSession
	err := transaction.WithContext(ctx).
		Where("guardian_id = ? AND learner_id = ? AND status <> ?", guardianID, learnerID, types.SessionEnded).
		Order("created_at DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *liveSessionRepo) Save(ctx context.Context, tx *gorm.DB, session *types.LiveSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(session).Error
}

func (r *liveSessionRepo) UpdatePosition(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, surah, ayah int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.LiveSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"current_surah": surah,
			"current_ayah":  ayah,
			"updated_at":    time.Now(),
		}).Error
}
