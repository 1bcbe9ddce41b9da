package live

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// AccessRequest asks the session owner to admit an actor to a restricted
// session. At most one pending request per actor at a time; resolved requests
// are kept for audit and no longer block new ones.
type AccessRequest struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID     `gorm:"type:uuid;not null;index" json:"session_id"`
	ActorID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"actor_id"`
	Status    RequestStatus `gorm:"not null;default:pending;column:status;index" json:"status"`

	ResolvedBy *uuid.UUID `gorm:"type:uuid;column:resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AccessRequest) TableName() string { return "access_request" }
