package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/deenkids/deenkids-backend/internal/domain"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

type SessionAttendanceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.SessionAttendance) ([]*types.SessionAttendance, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionAttendance, error)
}

type sessionAttendanceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionAttendanceRepo(db *gorm.DB, baseLog *logger.Logger) SessionAttendanceRepo {
	return &sessionAttendanceRepo{db: db, log: baseLog.With("repo", "SessionAttendanceRepo")}
}

func (r *sessionAttendanceRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.SessionAttendance) ([]*types.SessionAttendance, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.SessionAttendance{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sessionAttendanceRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionAttendance, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SessionAttendance
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("joined_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
