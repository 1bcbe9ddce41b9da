package progress

import (
	"time"

	"github.com/google/uuid"
)

// DayFormat is the calendar-day key for daily activity rows, in the
// platform's local timezone. Unused quota never rolls over to the next day.
const DayFormat = "2006-01-02"

// DailyActivity is the lazy per-(learner, day) counter row, created on first
// activity of the day.
type DailyActivity struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learner_day" json:"learner_id"`
	Day       string    `gorm:"not null;uniqueIndex:idx_learner_day;column:day" json:"day"`

	MinutesSpent     int `gorm:"not null;default:0;column:minutes_spent" json:"minutes_spent"`
	LessonsCompleted int `gorm:"not null;default:0;column:lessons_completed" json:"lessons_completed"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (DailyActivity) TableName() string { return "daily_activity" }

// DayKey renders t as a DailyActivity.Day value in local time.
func DayKey(t time.Time) string { return t.Local().Format(DayFormat) }
