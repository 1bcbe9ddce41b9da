package progress

import (
	"time"

	"github.com/google/uuid"
)

// LearnerStats is the denormalized summary record kept for fast dashboard
// reads. Recomputed from the ledger, never trusted incrementally.
type LearnerStats struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"learner_id"`

	TotalXP          int        `gorm:"not null;default:0;column:total_xp" json:"total_xp"`
	Level            int        `gorm:"not null;default:1;column:level" json:"level"`
	LessonsCompleted int        `gorm:"not null;default:0;column:lessons_completed" json:"lessons_completed"`
	BadgesEarned     int        `gorm:"not null;default:0;column:badges_earned" json:"badges_earned"`
	LastActivityAt   *time.Time `gorm:"column:last_activity_at" json:"last_activity_at,omitempty"`

	// Per-learner override of the daily screen-time ceiling, in minutes.
	// NULL means the guardian never set one and the configured default
	// applies; an explicit 0 disables sessions entirely.
	DailyLimitMinutes *int `gorm:"column:daily_limit_minutes" json:"daily_limit_minutes,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LearnerStats) TableName() string { return "learner_stats" }
