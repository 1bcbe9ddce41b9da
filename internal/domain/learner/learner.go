package learner

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Learner is the guardian-linked child profile. The XP/Level/LessonsCompleted
// block is a cached projection of the lesson_progress ledger, written only by
// the stats service; the ledger stays the source of truth.
type Learner struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GuardianID uuid.UUID `gorm:"type:uuid;not null;index" json:"guardian_id"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	Age        int       `gorm:"column:age" json:"age"`

	XP               int        `gorm:"not null;default:0;column:xp" json:"xp"`
	Level            int        `gorm:"not null;default:1;column:level" json:"level"`
	LessonsCompleted int        `gorm:"not null;default:0;column:lessons_completed" json:"lessons_completed"`
	LastActivityAt   *time.Time `gorm:"column:last_activity_at" json:"last_activity_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Learner) TableName() string { return "learner" }
