package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Analytics event types emitted by the progress and session services.
const (
	EventLessonStarted    = "lesson_started"
	EventLessonCompleted  = "lesson_completed"
	EventSessionStarted   = "session_started"
	EventSessionJoined    = "session_joined"
	EventSessionEnded     = "session_ended"
	EventChatLimitReached = "chat_limit_reached"
)

// UserEvent is an append-only analytics row. Writes are fire-and-forget; a
// failed insert is logged and dropped, never surfaced to the caller.
type UserEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	EventType  string         `gorm:"not null;index;column:event_type" json:"event_type"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	OccurredAt time.Time      `gorm:"not null;default:now();index" json:"occurred_at"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (UserEvent) TableName() string { return "user_event" }
