package broadcast

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rajasatyajit/DisasterFeed/config"
)

func TestNew_WithoutBroker(t *testing.T) {
	if _, ok := New(config.BroadcastConfig{}).(*LogBroadcaster); !ok {
		t.Error("expected log broadcaster without NATS URL")
	}
	if _, ok := New(config.BroadcastConfig{NATSURL: "nats://127.0.0.1:1"}).(*LogBroadcaster); !ok {
		t.Error("expected log broadcaster when NATS is unreachable")
	}
	if err := NewLogBroadcaster().Emit(context.Background(), EventOfficialUpdates, nil); err != nil {
		t.Errorf("log broadcaster must not fail: %v", err)
	}
}

func TestNATSBroadcaster_Subject(t *testing.T) {
	b := &NATSBroadcaster{prefix: "disasterfeed"}
	if got := b.Subject(EventSocialMediaUpdate); got != "disasterfeed.social_media_update" {
		t.Errorf("Subject = %s", got)
	}
	b.prefix = ""
	if got := b.Subject(EventOfficialUpdates); got != "official_updates" {
		t.Errorf("Subject = %s", got)
	}
}

// Requires a running broker; set NATS_URL to enable.
func TestNATSBroadcaster_Emit(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}

	b, err := NewNATSBroadcaster(config.BroadcastConfig{NATSURL: url, SubjectPrefix: "disasterfeed-test", ClientName: "test"})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	sub, err := nats.Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	ch := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe("disasterfeed-test.social_media_update", ch)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Unsubscribe()
	_ = sub.Flush()

	if err := b.Emit(context.Background(), EventSocialMediaUpdate, map[string]string{"provider": "fixtures"}); err != nil {
		t.Fatal(err)
	}

	select {
	case m := <-ch:
		var msg Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Event != EventSocialMediaUpdate {
			t.Errorf("unexpected event %s", msg.Event)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
