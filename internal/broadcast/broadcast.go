// Package broadcast fans freshly computed result sets out to live subscribers.
package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/rajasatyajit/DisasterFeed/internal/logger"
)

// Event names
const (
	EventSocialMediaUpdate = "social_media_update"
	EventOfficialUpdates   = "official_updates"
)

// Broadcaster delivers a named event to every subscriber. Delivery is fire
// and forget; an error only reports that the event could not be handed off.
type Broadcaster interface {
	Emit(ctx context.Context, event string, payload any) error
	Close() error
}

// Message is the wire form of an emitted event
type Message struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage wraps payload in a Message with a fresh id and timestamp
func NewMessage(event string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		ID:        uuid.NewString(),
		Event:     event,
		Timestamp: time.Now().UTC(),
		Source:    "disasterfeed",
		Version:   "1.0",
		Payload:   data,
	}, nil
}

// LogBroadcaster only records events in the log. Used when no message broker is configured.
type LogBroadcaster struct{}

func NewLogBroadcaster() *LogBroadcaster { return &LogBroadcaster{} }

func (b *LogBroadcaster) Emit(ctx context.Context, event string, payload any) error {
	logger.WithContext(ctx).Debug("Broadcast event", "event", event)
	return nil
}

func (b *LogBroadcaster) Close() error { return nil }
