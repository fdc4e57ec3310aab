// Package broadcasttest provides an in-memory Broadcaster for tests.
package broadcasttest

import (
	"context"
	"sync"

	"github.com/rajasatyajit/DisasterFeed/internal/broadcast"
)

// Recorder keeps emitted messages in memory. A non-nil Err is returned from
// every Emit instead of recording.
type Recorder struct {
	mu       sync.Mutex
	messages []broadcast.Message
	Err      error
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Emit(ctx context.Context, event string, payload any) error {
	if r.Err != nil {
		return r.Err
	}
	msg, err := broadcast.NewMessage(event, payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

// Messages returns a snapshot of everything emitted so far
func (r *Recorder) Messages() []broadcast.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]broadcast.Message(nil), r.messages...)
}
