package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/deenkids/deenkids-backend/internal/data/repos"
	types "github.com/deenkids/deenkids-backend/internal/domain"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

// EventSink is the fire-and-forget analytics boundary. Emit never blocks the
// caller and never reports failure back; a full buffer or failed insert is
// logged and dropped.
type EventSink interface {
	Emit(actorID uuid.UUID, eventType string, metadata map[string]interface{})
	Start(ctx context.Context)
	Close()
}

type eventSink struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   repos.UserEventRepo
	queue  chan *types.UserEvent
	wg     sync.WaitGroup
	stop   chan struct{}
	closed sync.Once
}

func NewEventSink(db *gorm.DB, baseLog *logger.Logger, repo repos.UserEventRepo) EventSink {
	return &eventSink{
		db:    db,
		log:   baseLog.With("service", "EventSink"),
		repo:  repo,
		queue: make(chan *types.UserEvent, 256),
		stop:  make(chan struct{}),
	}
}

func (s *eventSink) Emit(actorID uuid.UUID, eventType string, metadata map[string]interface{}) {
	var meta datatypes.JSON
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			s.log.Warn("dropping analytics event, metadata not serializable", "event_type", eventType, "error", err)
			return
		}
		meta = datatypes.JSON(raw)
	}

	ev := &types.UserEvent{
		ID:         uuid.New(),
		UserID:     actorID,
		EventType:  eventType,
		Metadata:   meta,
		OccurredAt: time.Now().UTC(),
	}

	select {
	case s.queue <- ev:
	default:
		s.log.Warn("dropping analytics event, queue full", "event_type", eventType)
	}
}

func (s *eventSink) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case ev := <-s.queue:
				s.flush(ev)
			case <-s.stop:
				s.drain()
				return
			case <-ctx.Done():
				s.drain()
				return
			}
		}
	}()
}

func (s *eventSink) Close() {
	s.closed.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *eventSink) flush(ev *types.UserEvent) {
	insertCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.repo.Create(insertCtx, nil, []*types.UserEvent{ev}); err != nil {
		s.log.Warn("analytics insert failed, event dropped", "event_type", ev.EventType, "error", err)
	}
}

func (s *eventSink) drain() {
	for {
		select {
		case ev := <-s.queue:
			s.flush(ev)
		default:
			return
		}
	}
}
