package realtime

import "context"

// Publisher pushes a message beyond the local process, typically onto a
// redis channel shared by all API replicas.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Event names broadcast on session channels.
type Event string

const (
	EventSessionStarted    Event = "SessionStarted"
	EventSessionEnded      Event = "SessionEnded"
	EventPositionChanged   Event = "PositionChanged"
	EventParticipantJoined Event = "ParticipantJoined"
)

// Message is one broadcast unit; Channel addresses a session stream
// ("session:<id>").
type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// SessionChannel builds the channel name for a live session ID.
func SessionChannel(sessionID string) string { return "session:" + sessionID }
