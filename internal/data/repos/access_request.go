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

type AccessRequestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, requests []*types.AccessRequest) ([]*types.AccessRequest, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, requestIDs []uuid.UUID) ([]*types.AccessRequest, error)
	// GetPendingByActor returns (nil, nil) when the actor has no pending
	// request. Only a pending request blocks a new one.
	GetPendingByActor(ctx context.Context, tx *gorm.DB, actorID uuid.UUID) (*types.AccessRequest, error)
	Resolve(ctx context.Context, tx *gorm.DB, requestID uuid.UUID, status types.RequestStatus, resolvedBy uuid.UUID) error
}

type accessRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccessRequestRepo(db *gorm.DB, baseLog *logger.Logger) AccessRequestRepo {
	return &accessRequestRepo{db: db, log: baseLog.With("repo", "AccessRequestRepo")}
}

func (r *accessRequestRepo) Create(ctx context.Context, tx *gorm.DB, requests []*types.AccessRequest) ([]*types.AccessRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(requests) == 0 {
		return []*types.AccessRequest{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *accessRequestRepo) GetByIDs(ctx context.Context, tx *gorm.DB, requestIDs []uuid.UUID) ([]*types.AccessRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AccessRequest
	if len(requestIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", requestIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *accessRequestRepo) GetPendingByActor(ctx context.Context, tx *gorm.DB, actorID uuid.UUID) (*types.AccessRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AccessRequest
	err := transaction.WithContext(ctx).
		Where("actor_id = ? AND status = ?", actorID, types.RequestPending).
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

func (r *accessRequestRepo) Resolve(ctx context.Context, tx *gorm.DB, requestID uuid.UUID, status types.RequestStatus, resolvedBy uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.AccessRequest{}).
		Where("id = ? AND status = ?", requestID, types.RequestPending).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_by": resolvedBy,
			"resolved_at": now,
		}).Error
}
