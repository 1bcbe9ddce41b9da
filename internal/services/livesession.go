package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/deenkids/deenkids-backend/internal/data/repos"
	types "github.com/deenkids/deenkids-backend/internal/domain"
	pkgerrors "github.com/deenkids/deenkids-backend/internal/pkg/errors"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
	"github.com/deenkids/deenkids-backend/internal/realtime"
)

// OnlineWindow is the staleness cutoff for the presence heartbeat. Display
// only; presence never drives session state transitions.
const OnlineWindow = 2 * time.Minute

// IsOnline reports whether a heartbeat is fresh enough to show as online.
func IsOnline(lastSeen *time.Time, now time.Time) bool {
	if lastSeen == nil {
		return false
	}
	return now.Sub(*lastSeen) < OnlineWindow
}

// StartSessionResult distinguishes quota rejection (a business outcome) from
// a started/reused session.
type StartSessionResult struct {
	Allowed bool               `json:"allowed"`
	Quota   *TimeQuotaResult   `json:"quota,omitempty"`
	Session *types.LiveSession `json:"session,omitempty"`
}

type LiveSessionService interface {
	// StartOrReuse consults the time quota before touching any session
	// record, then reuses the open session for the (guardian, learner) pair
	// or creates a new active one.
	StartOrReuse(ctx context.Context, guardianID, learnerID, scholarID uuid.UUID) (*StartSessionResult, error)
	// Start is the owner/admin transition waiting → active; idempotent when
	// already active, and it always stamps StartedAt.
	Start(ctx context.Context, sessionID, actorID uuid.UUID, role string) (*types.LiveSession, error)
	Join(ctx context.Context, sessionID, actorID, learnerID uuid.UUID, role string) (*types.LiveSession, error)
	// AdvancePosition moves the shared lesson position. Any participant may
	// call it in a non-ended state; it is a sync point, not an
	// access-controlled action.
	AdvancePosition(ctx context.Context, sessionID uuid.UUID, surah, ayah int) (*types.LiveSession, error)
	// End is owner/admin only and terminal. Ending an already-ended session
	// is not a state error.
	End(ctx context.Context, sessionID, actorID uuid.UUID, role string) (*types.LiveSession, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*types.LiveSession, []*types.SessionAttendance, error)
	RequestAccess(ctx context.Context, sessionID, actorID uuid.UUID) (*types.AccessRequest, error)
	ResolveAccess(ctx context.Context, requestID, actorID uuid.UUID, role string, approve bool) (*types.AccessRequest, error)
}

type liveSessionService struct {
	log            *logger.Logger
	sessionRepo    repos.LiveSessionRepo
	attendanceRepo repos.SessionAttendanceRepo
	requestRepo    repos.AccessRequestRepo
	quota          QuotaService
	sink           EventSink
	hub            *realtime.Hub
	bus            realtime.Publisher
}

func NewLiveSessionService(baseLog *logger.Logger, sessionRepo repos.LiveSessionRepo, attendanceRepo repos.SessionAttendanceRepo, requestRepo repos.AccessRequestRepo, quota QuotaService, sink EventSink, hub *realtime.Hub, bus realtime.Publisher) LiveSessionService {
	return &liveSessionService{
		log:            baseLog.With("service", "LiveSessionService"),
		sessionRepo:    sessionRepo,
		attendanceRepo: attendanceRepo,
		requestRepo:    requestRepo,
		quota:          quota,
		sink:           sink,
		hub:            hub,
		bus:            bus,
	}
}

func (s *liveSessionService) StartOrReuse(ctx context.Context, guardianID, learnerID, scholarID uuid.UUID) (*StartSessionResult, error) {
	quota, err := s.quota.AllowSessionStart(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if !quota.Allowed {
		return &StartSessionResult{Allowed: false, Quota: quota}, nil
	}

	now := time.Now()

	session, err := s.sessionRepo.GetOpenByPair(ctx, nil, guardianID, learnerID)
	if err != nil {
		return nil, fmt.Errorf("look up open session: %w", err)
	}
	if session != nil {
		changed := false
		if session.Status == types.SessionWaiting {
			session.Status = types.SessionActive
			changed = true
		}
		if session.StartedAt == nil {
			session.StartedAt = &now
			changed = true
		}
		if changed {
			if err := s.sessionRepo.Save(ctx, nil, session); err != nil {
				return nil, fmt.Errorf("activate reused session: %w", err)
			}
		}
		return &StartSessionResult{Allowed: true, Quota: quota, Session: session}, nil
	}

	if scholarID == uuid.Nil {
		return nil, fmt.Errorf("%w: scholar_id is required for a new session", pkgerrors.ErrInvalidArgument)
	}

	session = &types.LiveSession{
		ID:         uuid.New(),
		ScholarID:  scholarID,
		GuardianID: guardianID,
		LearnerID:  learnerID,
		Status:     types.SessionActive,
		AccessMode: types.AccessOpen,
		StartedAt:  &now,
	}
	if _, err := s.sessionRepo.Create(ctx, nil, []*types.LiveSession{session}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.sink.Emit(guardianID, types.EventSessionStarted, map[string]interface{}{
		"session_id": session.ID.String(),
		"learner_id": learnerID.String(),
	})
	s.broadcast(ctx, realtime.Message{
		Channel: realtime.SessionChannel(session.ID.String()),
		Event:   realtime.EventSessionStarted,
		Data:    session,
	})
	return &StartSessionResult{Allowed: true, Quota: quota, Session: session}, nil
}

func (s *liveSessionService) Start(ctx context.Context, sessionID, actorID uuid.UUID, role string) (*types.LiveSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canControl(session, actorID, role) {
		return nil, fmt.Errorf("%w: only the session owner may start it", pkgerrors.ErrForbidden)
	}
	if session.Ended() {
		return nil, fmt.Errorf("%w: session has ended", pkgerrors.ErrInvalidArgument)
	}

	now := time.Now()
	session.Status = types.SessionActive
	session.StartedAt = &now
	if err := s.sessionRepo.Save(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	s.broadcast(ctx, realtime.Message{
		Channel: realtime.SessionChannel(session.ID.String()),
		Event:   realtime.EventSessionStarted,
		Data:    session,
	})
	return session, nil
}

func (s *liveSessionService) Join(ctx context.Context, sessionID, actorID, learnerID uuid.UUID, role string) (*types.LiveSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Ended() {
		return nil, fmt.Errorf("%w: session has ended", pkgerrors.ErrInvalidArgument)
	}
	if session.AccessMode == types.AccessRestricted && !allowListed(session.AllowedGuardians, actorID) && !canControl(session, actorID, role) {
		return nil, fmt.Errorf("%w: not admitted to this session", pkgerrors.ErrForbidden)
	}

	// Append-only: a rejoin writes another row on purpose.
	row := &types.SessionAttendance{
		ID:        uuid.New(),
		SessionID: session.ID,
		ActorID:   actorID,
		LearnerID: learnerID,
		Role:      role,
		JoinedAt:  time.Now(),
	}
	if _, err := s.attendanceRepo.Create(ctx, nil, []*types.SessionAttendance{row}); err != nil {
		return nil, fmt.Errorf("log attendance: %w", err)
	}

	s.sink.Emit(actorID, types.EventSessionJoined, map[string]interface{}{
		"session_id": session.ID.String(),
	})
	s.broadcast(ctx, realtime.Message{
		Channel: realtime.SessionChannel(session.ID.String()),
		Event:   realtime.EventParticipantJoined,
		Data:    row,
	})
	return session, nil
}

func (s *liveSessionService) AdvancePosition(ctx context.Context, sessionID uuid.UUID, surah, ayah int) (*types.LiveSession, error) {
	if surah < 1 || ayah < 1 {
		return nil, fmt.Errorf("%w: surah and ayah must be positive", pkgerrors.ErrInvalidArgument)
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Ended() {
		return nil, fmt.Errorf("%w: session has ended", pkgerrors.ErrInvalidArgument)
	}

	if err := s.sessionRepo.UpdatePosition(ctx, nil, sessionID, surah, ayah); err != nil {
		return nil, fmt.Errorf("advance position: %w", err)
	}
	session.CurrentSurah = surah
	session.CurrentAyah = ayah

	s.broadcast(ctx, realtime.Message{
		Channel: realtime.SessionChannel(session.ID.String()),
		Event:   realtime.EventPositionChanged,
		Data:    map[string]interface{}{"surah": surah, "ayah": ayah},
	})
	return session, nil
}

func (s *liveSessionService) End(ctx context.Context, sessionID, actorID uuid.UUID, role string) (*types.LiveSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canControl(session, actorID, role) {
		return nil, fmt.Errorf("%w: only the session owner may end it", pkgerrors.ErrForbidden)
	}
	if session.Ended() {
		// Terminal and idempotent: a second end is a no-op after the
		// ownership re-check above.
		return session, nil
	}

	now := time.Now()
	session.Status = types.SessionEnded
	session.EndedAt = &now
	if err := s.sessionRepo.Save(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}

	s.sink.Emit(actorID, types.EventSessionEnded, map[string]interface{}{
		"session_id": session.ID.String(),
	})
	s.broadcast(ctx, realtime.Message{
		Channel: realtime.SessionChannel(session.ID.String()),
		Event:   realtime.EventSessionEnded,
		Data:    session,
	})
	return session, nil
}

func (s *liveSessionService) Get(ctx context.Context, sessionID uuid.UUID) (*types.LiveSession, []*types.SessionAttendance, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	attendance, err := s.attendanceRepo.GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load attendance: %w", err)
	}
	return session, attendance, nil
}

func (s *liveSessionService) RequestAccess(ctx context.Context, sessionID, actorID uuid.UUID) (*types.AccessRequest, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Ended() {
		return nil, fmt.Errorf("%w: session has ended", pkgerrors.ErrInvalidArgument)
	}

	pending, err := s.requestRepo.GetPendingByActor(ctx, nil, actorID)
	if err != nil {
		return nil, fmt.Errorf("check pending requests: %w", err)
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: a request is already pending", pkgerrors.ErrInvalidArgument)
	}

	req := &types.AccessRequest{
		ID:        uuid.New(),
		SessionID: sessionID,
		ActorID:   actorID,
		Status:    types.RequestPending,
	}
	if _, err := s.requestRepo.Create(ctx, nil, []*types.AccessRequest{req}); err != nil {
		return nil, fmt.Errorf("create access request: %w", err)
	}
	return req, nil
}

func (s *liveSessionService) ResolveAccess(ctx context.Context, requestID, actorID uuid.UUID, role string, approve bool) (*types.AccessRequest, error) {
	requests, err := s.requestRepo.GetByIDs(ctx, nil, []uuid.UUID{requestID})
	if err != nil {
		return nil, fmt.Errorf("load access request: %w", err)
	}
	if len(requests) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	req := requests[0]
	if req.Status != types.RequestPending {
		return nil, fmt.Errorf("%w: request already resolved", pkgerrors.ErrInvalidArgument)
	}

	session, err := s.getSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !canControl(session, actorID, role) {
		return nil, fmt.Errorf("%w: only the session owner may resolve requests", pkgerrors.ErrForbidden)
	}

	status := types.RequestRejected
	if approve {
		status = types.RequestApproved
		session.AllowedGuardians = appendAllowList(session.AllowedGuardians, req.ActorID)
		if err := s.sessionRepo.Save(ctx, nil, session); err != nil {
			return nil, fmt.Errorf("update allow-list: %w", err)
		}
	}
	if err := s.requestRepo.Resolve(ctx, nil, requestID, status, actorID); err != nil {
		return nil, fmt.Errorf("resolve access request: %w", err)
	}

	now := time.Now()
	req.Status = status
	req.ResolvedBy = &actorID
	req.ResolvedAt = &now
	return req, nil
}

func (s *liveSessionService) getSession(ctx context.Context, sessionID uuid.UUID) (*types.LiveSession, error) {
	sessions, err := s.sessionRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(sessions) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return sessions[0], nil
}

// broadcast fans out through exactly one emitter. With a bus wired, local
// clients receive via the forwarder replaying bus traffic into the hub, so
// pushing to the hub here as well would deliver every event twice. Best
// effort on the bus leg; a failed publish falls back to the hub and is
// logged, never surfaced.
func (s *liveSessionService) broadcast(ctx context.Context, msg realtime.Message) {
	if s.bus != nil {
		err := s.bus.Publish(ctx, msg)
		if err == nil {
			return
		}
		s.log.Warn("session bus publish failed", "channel", msg.Channel, "error", err)
	}
	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
}

func canControl(session *types.LiveSession, actorID uuid.UUID, role string) bool {
	return session.ScholarID == actorID || role == types.RoleAdmin
}

func allowListed(raw datatypes.JSON, actorID uuid.UUID) bool {
	for _, id := range decodeAllowList(raw) {
		if id == actorID.String() {
			return true
		}
	}
	return false
}

func appendAllowList(raw datatypes.JSON, actorID uuid.UUID) datatypes.JSON {
	ids := decodeAllowList(raw)
	for _, id := range ids {
		if id == actorID.String() {
			return raw
		}
	}
	ids = append(ids, actorID.String())
	out, err := json.Marshal(ids)
	if err != nil {
		return raw
	}
	return datatypes.JSON(out)
}

func decodeAllowList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}
