package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleGuardian = "guardian"
	RoleScholar  = "scholar"
	RoleAdmin    = "admin"
)

// User is the account record: identity, role, and the daily chat counter.
// A guardian account owns learner profiles; scholars own live sessions.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Role     string    `gorm:"not null;default:guardian;column:role" json:"role"`

	// Daily chat quota counter. Reset lazily when LastChatAt falls on an
	// earlier calendar day than the current attempt.
	DailyChatCount int        `gorm:"not null;default:0;column:daily_chat_count" json:"daily_chat_count"`
	LastChatAt     *time.Time `gorm:"column:last_chat_at" json:"last_chat_at,omitempty"`

	// Coarse presence heartbeat, display only.
	LastSeenAt *time.Time `gorm:"column:last_seen_at;index" json:"last_seen_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
