package live

import (
	"time"

	"github.com/google/uuid"
)

// SessionAttendance is an append-only join log: one row per join event, never
// updated or deduplicated. A rejoin produces a new row.
type SessionAttendance struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"actor_id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"learner_id"`
	Role      string    `gorm:"not null;column:role" json:"role"`
	JoinedAt  time.Time `gorm:"not null;default:now();column:joined_at" json:"joined_at"`
}

func (SessionAttendance) TableName() string { return "session_attendance" }
