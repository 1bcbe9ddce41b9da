package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deenkids/deenkids-backend/internal/data/repos"
	types "github.com/deenkids/deenkids-backend/internal/domain"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

// ChatQuotaResult is a business outcome, not an error: a rejected attempt is
// still a successful request with Allowed=false.
type ChatQuotaResult struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message,omitempty"`
}

// TimeQuotaResult reports whether a new session/activity may start today.
type TimeQuotaResult struct {
	Allowed      bool `json:"allowed"`
	MinutesToday int  `json:"minutes_today"`
	LimitMinutes int  `json:"limit_minutes"`
}

type QuotaService interface {
	// CheckAndCountChat applies the daily chat ceiling for the account. On
	// acceptance the counter is incremented and stamped; on rejection nothing
	// changes.
	CheckAndCountChat(ctx context.Context, userID uuid.UUID) (*ChatQuotaResult, error)
	// AllowSessionStart is a pre-check at session-start time only, not a
	// continuous enforcement loop. Lookup failures fail closed.
	AllowSessionStart(ctx context.Context, learnerID uuid.UUID) (*TimeQuotaResult, error)
	// LogActivity adds active minutes to today's counter for the learner.
	LogActivity(ctx context.Context, learnerID uuid.UUID, minutes int) error
}

type quotaService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	statsRepo     repos.LearnerStatsRepo
	activityRepo  repos.DailyActivityRepo
	sink          EventSink
	chatLimit     int
	defaultDaily  int
}

func NewQuotaService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, statsRepo repos.LearnerStatsRepo, activityRepo repos.DailyActivityRepo, sink EventSink, chatLimit, defaultDailyMinutes int) QuotaService {
	return &quotaService{
		db:           db,
		log:          baseLog.With("service", "QuotaService"),
		userRepo:     userRepo,
		statsRepo:    statsRepo,
		activityRepo: activityRepo,
		sink:         sink,
		chatLimit:    chatLimit,
		defaultDaily: defaultDailyMinutes,
	}
}

// NextChatCount is the pure day-boundary counter rule: the stored count
// resets when the last stamp falls on an earlier local calendar day, then the
// attempt is allowed while the (possibly reset) count is below the limit.
// Returns the count to persist on acceptance.
func NextChatCount(count int, last *time.Time, now time.Time, limit int) (int, bool) {
	if last == nil || beforeLocalDay(*last, now) {
		count = 0
	}
	if count >= limit {
		return count, false
	}
	return count + 1, true
}

func beforeLocalDay(a, b time.Time) bool {
	al, bl := a.Local(), b.Local()
	ay, am, ad := al.Date()
	by, bm, bd := bl.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func (s *quotaService) CheckAndCountChat(ctx context.Context, userID uuid.UUID) (*ChatQuotaResult, error) {
	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load account for chat quota: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("account %s not found", userID)
	}
	u := users[0]

	now := time.Now()
	next, allowed := NextChatCount(u.DailyChatCount, u.LastChatAt, now, s.chatLimit)
	if !allowed {
		s.sink.Emit(userID, types.EventChatLimitReached, map[string]interface{}{"count": u.DailyChatCount})
		return &ChatQuotaResult{
			Allowed:   false,
			Remaining: 0,
			Message:   "That's all the questions for today! Come back tomorrow, insha'Allah.",
		}, nil
	}

	if err := s.userRepo.SetChatCounter(ctx, nil, userID, next, now); err != nil {
		return nil, fmt.Errorf("persist chat counter: %w", err)
	}
	return &ChatQuotaResult{Allowed: true, Remaining: s.chatLimit - next}, nil
}

func (s *quotaService) AllowSessionStart(ctx context.Context, learnerID uuid.UUID) (*TimeQuotaResult, error) {
	limit := s.defaultDaily
	stats, err := s.statsRepo.GetByLearnerIDs(ctx, nil, []uuid.UUID{learnerID})
	if err != nil {
		// Fail closed: an unreadable settings row never grants extra time.
		return nil, fmt.Errorf("load daily limit: %w", err)
	}
	// A stored limit is authoritative, including an explicit 0 (sessions
	// disabled). Only a missing setting falls back to the default.
	if len(stats) > 0 && stats[0].DailyLimitMinutes != nil {
		limit = *stats[0].DailyLimitMinutes
	}

	row, err := s.activityRepo.GetByLearnerAndDay(ctx, nil, learnerID, types.DayKey(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("load today's activity: %w", err)
	}

	minutes := 0
	if row != nil {
		minutes = row.MinutesSpent
	}
	return &TimeQuotaResult{
		Allowed:      minutes < limit,
		MinutesToday: minutes,
		LimitMinutes: limit,
	}, nil
}

func (s *quotaService) LogActivity(ctx context.Context, learnerID uuid.UUID, minutes int) error {
	if minutes <= 0 {
		return nil
	}
	return s.activityRepo.AddMinutes(ctx, nil, learnerID, types.DayKey(time.Now()), minutes)
}
