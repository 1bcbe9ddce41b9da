// Package domain re-exports the bounded-context types so repos and services
// can import a single package.
package domain

import (
	"github.com/deenkids/deenkids-backend/internal/domain/learner"
	"github.com/deenkids/deenkids-backend/internal/domain/live"
	"github.com/deenkids/deenkids-backend/internal/domain/progress"
	"github.com/deenkids/deenkids-backend/internal/domain/user"
)

const (
	RoleGuardian = user.RoleGuardian
	RoleScholar  = user.RoleScholar
	RoleAdmin    = user.RoleAdmin

	EventLessonStarted    = user.EventLessonStarted
	EventLessonCompleted  = user.EventLessonCompleted
	EventSessionStarted   = user.EventSessionStarted
	EventSessionJoined    = user.EventSessionJoined
	EventSessionEnded     = user.EventSessionEnded
	EventChatLimitReached = user.EventChatLimitReached

	SessionWaiting = live.StatusWaiting
	SessionActive  = live.StatusActive
	SessionEnded   = live.StatusEnded

	AccessOpen       = live.AccessOpen
	AccessRestricted = live.AccessRestricted

	RequestPending  = live.RequestPending
	RequestApproved = live.RequestApproved
	RequestRejected = live.RequestRejected

	MaxQuizAttempts = progress.MaxQuizAttempts
)

type (
	User      = user.User
	UserToken = user.UserToken
	UserEvent = user.UserEvent

	Learner = learner.Learner

	LessonProgress = progress.LessonProgress
	QuizAttempt    = progress.QuizAttempt
	LearnerStats   = progress.LearnerStats
	DailyActivity  = progress.DailyActivity

	LiveSession       = live.LiveSession
	SessionStatus     = live.SessionStatus
	AccessMode        = live.AccessMode
	SessionAttendance = live.SessionAttendance
	AccessRequest     = live.AccessRequest
	RequestStatus     = live.RequestStatus
)

// DayKey renders a time as a daily_activity day key in local time.
var DayKey = progress.DayKey
