package realtime

import (
	"testing"

	"github.com/google/uuid"

	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewHub(log)
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := newTestHub(t)

	a := hub.NewClient(uuid.New())
	b := hub.NewClient(uuid.New())
	other := hub.NewClient(uuid.New())

	channel := SessionChannel(uuid.New().String())
	hub.Subscribe(a, channel)
	hub.Subscribe(b, channel)
	hub.Subscribe(other, SessionChannel(uuid.New().String()))

	msg := Message{Channel: channel, Event: EventPositionChanged, Data: map[string]int{"surah": 2}}
	hub.Broadcast(msg)

	for _, c := range []*Client{a, b} {
		select {
		case got := <-c.Outbound:
			if got.Event != EventPositionChanged {
				t.Fatalf("event = %s, want %s", got.Event, EventPositionChanged)
			}
		default:
			t.Fatal("subscriber did not receive the broadcast")
		}
	}

	select {
	case <-other.Outbound:
		t.Fatal("message leaked to an unrelated channel")
	default:
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub(t)

	c := hub.NewClient(uuid.New())
	channel := SessionChannel(uuid.New().String())
	hub.Subscribe(c, channel)

	// Fill the outbound buffer without draining; further broadcasts must
	// drop rather than block.
	for i := 0; i < cap(c.Outbound)+5; i++ {
		hub.Broadcast(Message{Channel: channel, Event: EventPositionChanged})
	}

	if len(c.Outbound) != cap(c.Outbound) {
		t.Fatalf("buffered = %d, want full buffer %d", len(c.Outbound), cap(c.Outbound))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := newTestHub(t)

	c := hub.NewClient(uuid.New())
	channel := SessionChannel(uuid.New().String())
	hub.Subscribe(c, channel)
	hub.Unsubscribe(c, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventSessionEnded})

	select {
	case <-c.Outbound:
		t.Fatal("received a message after unsubscribe")
	default:
	}
}

func TestRemoveClientClosesDone(t *testing.T) {
	hub := newTestHub(t)

	c := hub.NewClient(uuid.New())
	hub.Subscribe(c, "session:x")
	hub.RemoveClient(c)

	select {
	case <-hub.Done(c):
	default:
		t.Fatal("done channel not closed on removal")
	}

	// Removing twice must not panic.
	hub.RemoveClient(c)
}
