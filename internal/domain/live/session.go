package live

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionStatus string

const (
	StatusWaiting SessionStatus = "waiting"
	StatusActive  SessionStatus = "active"
	StatusEnded   SessionStatus = "ended"
)

type AccessMode string

const (
	AccessOpen       AccessMode = "open"
	AccessRestricted AccessMode = "restricted"
)

// LiveSession is one scholar-led classroom instance. Ended is terminal: no
// transition ever leaves it. At most one non-ended session should exist per
// (guardian, learner) pair; duplicates created under a concurrent start race
// are tolerated by readers, most recent wins.
type LiveSession struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ScholarID  uuid.UUID `gorm:"type:uuid;not null;index" json:"scholar_id"`
	GuardianID uuid.UUID `gorm:"type:uuid;not null;index:idx_session_pair" json:"guardian_id"`
	LearnerID  uuid.UUID `gorm:"type:uuid;not null;index:idx_session_pair" json:"learner_id"`

	Status     SessionStatus `gorm:"not null;default:waiting;column:status" json:"status"`
	AccessMode AccessMode    `gorm:"not null;default:open;column:access_mode" json:"access_mode"`

	// Guardian IDs admitted in restricted mode, stored as a JSON string list.
	AllowedGuardians datatypes.JSON `gorm:"column:allowed_guardians;type:jsonb" json:"allowed_guardians,omitempty"`

	// Shared lesson position every viewer should see.
	CurrentSurah int `gorm:"not null;default:1;column:current_surah" json:"current_surah"`
	CurrentAyah  int `gorm:"not null;default:1;column:current_ayah" json:"current_ayah"`

	StartedAt *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LiveSession) TableName() string { return "live_session" }

func (s *LiveSession) Ended() bool { return s.Status == StatusEnded }
