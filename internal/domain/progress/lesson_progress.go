package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxQuizAttempts bounds the attempt list on a ledger entry; appending an
// attempt past the cap drops the oldest first.
const MaxQuizAttempts = 10

// QuizAttempt is one element of the JSON attempt list on a ledger entry.
type QuizAttempt struct {
	Score   int       `json:"score"`
	Total   int       `json:"total"`
	TakenAt time.Time `json:"taken_at"`
}

// LessonProgress is the per-(learner, lesson) ledger entry and the only source
// of truth for XP. CompletedAt is set at most once; once set, later completed
// submissions never change XPEarned.
type LessonProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LearnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learner_lesson" json:"learner_id"`
	LessonID    string    `gorm:"not null;uniqueIndex:idx_learner_lesson;column:lesson_id" json:"lesson_id"`
	LessonTitle string    `gorm:"column:lesson_title" json:"lesson_title"`
	Badge       string    `gorm:"column:badge" json:"badge"`

	VideoWatchedAt *time.Time     `gorm:"column:video_watched_at" json:"video_watched_at,omitempty"`
	CompletedAt    *time.Time     `gorm:"column:completed_at;index" json:"completed_at,omitempty"`
	QuizAttempts   datatypes.JSON `gorm:"column:quiz_attempts;type:jsonb" json:"quiz_attempts,omitempty"`
	XPEarned       int            `gorm:"not null;default:0;column:xp_earned" json:"xp_earned"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }
