// Package events publishes domain events to the configured broker after a ledger change commits.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/matchday-bet/matchday/internal/config"
	"github.com/matchday-bet/matchday/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Event types.
const (
	TypeBetPlaced           = "bet.placed"
	TypeBetSettled          = "bet.settled"
	TypeSpinAwarded         = "spin.awarded"
	TypeVIPActivated        = "vip.activated"
	TypeWithdrawalRequested = "withdrawal.requested"
	TypeUserRegistered      = "user.registered"
)

// Event is the broker envelope.
type Event struct {
	Type       string         `json:"type"`
	UserID     uint64         `json:"userId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data,omitempty"`
}

// New stamps an event with the current time.
func New(eventType string, userID uint64, data map[string]any) Event {
	return Event{Type: eventType, UserID: userID, OccurredAt: time.Now().UTC(), Data: data}
}

// Key is the partitioning key of the event.
func (e Event) Key() string {
	return strconv.FormatUint(e.UserID, 10)
}

// Encode returns the JSON body of the event.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Emit publishes event and logs failures. Domain operations never fail because of the broker.
func Emit(ctx context.Context, publisher Publisher, event Event) {
	if publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := publisher.Publish(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		log.WithError(err).WithFields(log.Fields{"type": event.Type, "user_id": event.UserID}).Warn("events: publish failed")
		return
	}
	metrics.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// NewPublisher builds the publisher selected by cfg.Driver.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Driver {
	case "":
		return NopPublisher{}, nil
	case "kafka":
		return NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	case "nats":
		return NewNATSPublisher(cfg.URL, cfg.Topic)
	case "amqp":
		return NewAMQPPublisher(cfg.URL, cfg.Exchange)
	default:
		return nil, fmt.Errorf("events: unknown driver %q", cfg.Driver)
	}
}
