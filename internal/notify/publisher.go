package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event is the envelope of every change notification.
type Event struct {
	Type      string      `json:"type"`
	Action    string      `json:"action,omitempty"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Publisher delivers change events to dashboards.
type Publisher interface {
	Publish(subject string, event Event) error
	Close()
}

// NATSPublisher publishes JSON events on a core NATS connection.
type NATSPublisher struct {
	nc  *nats.Conn
	log *zap.Logger
}

// Connect dials the NATS server and keeps reconnecting in the background.
func Connect(url, name string, log *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Warn("nats error", zap.Error(err))
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, log: log}, nil
}

func (p *NATSPublisher) Publish(subject string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("nats drain failed", zap.Error(err))
		p.nc.Close()
	}
}

// Nop drops every event. It is used when no NATS URL is configured.
type Nop struct{}

func (Nop) Publish(string, Event) error { return nil }
func (Nop) Close()                      {}
