package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rajasatyajit/DisasterFeed/config"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/metrics"
)

// NATSBroadcaster publishes each event on "<prefix>.<event>"
type NATSBroadcaster struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSBroadcaster connects to the broker
func NewNATSBroadcaster(cfg config.BroadcastConfig) (*NATSBroadcaster, error) {
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name(cfg.ClientName),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	return &NATSBroadcaster{
		conn:   nc,
		prefix: cfg.SubjectPrefix,
	}, nil
}

// Subject returns the subject an event is published on
func (b *NATSBroadcaster) Subject(event string) string {
	if b.prefix == "" {
		return event
	}
	return b.prefix + "." + event
}

func (b *NATSBroadcaster) Emit(ctx context.Context, event string, payload any) error {
	msg, err := NewMessage(event, payload)
	if err != nil {
		metrics.RecordBroadcast(event, "error")
		return fmt.Errorf("encode event: %w", err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		metrics.RecordBroadcast(event, "error")
		return fmt.Errorf("encode message: %w", err)
	}

	if err := b.conn.Publish(b.Subject(event), data); err != nil {
		metrics.RecordBroadcast(event, "error")
		return fmt.Errorf("publish %s: %w", event, err)
	}

	metrics.RecordBroadcast(event, "success")
	logger.WithContext(ctx).Debug("Published event", "event", event, "id", msg.ID, "bytes", len(data))
	return nil
}

// Close drains pending messages and closes the connection
func (b *NATSBroadcaster) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Drain()
}

// New returns a NATS broadcaster when a broker URL is configured, otherwise a
// log-only broadcaster. A connection failure also falls back to logging.
func New(cfg config.BroadcastConfig) Broadcaster {
	if cfg.NATSURL != "" {
		b, err := NewNATSBroadcaster(cfg)
		if err == nil {
			logger.Info("Broadcasting events over NATS", "prefix", cfg.SubjectPrefix)
			return b
		}
		logger.Warn("NATS unavailable, broadcasting to log only", "error", err)
	}
	return NewLogBroadcaster()
}
