// internal/adapter/events/bus.go

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"villrein/internal/domain/fetch"
)

// Event types
const (
	TypeProgress  = "progress"
	TypeCompleted = "completed"
)

// Conn is the part of *nats.Conn the bus uses
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Event is the envelope published for every fetch notification
type Event struct {
	Type string      `json:"type"`
	Time time.Time   `json:"time"`
	Data interface{} `json:"data"`
}

// Completion summarizes a finished year fetch
type Completion struct {
	RunID       string          `json:"runId"`
	Year        int             `json:"year"`
	Individuals int             `json:"individuals"`
	Positions   int             `json:"positions"`
	Failures    []fetch.Failure `json:"failures,omitempty"`
}

// Bus publishes fetch events to NATS under <topic>.progress and
// <topic>.completed, and relays them to subscribers
type Bus struct {
	conn   Conn
	topic  string
	logger *zap.Logger
	now    func() time.Time
}

// NewBus creates a new event bus
func NewBus(conn Conn, topic string, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		conn:   conn,
		topic:  topic,
		logger: logger,
		now:    time.Now,
	}
}

// Report publishes a progress event. Publish failures are logged; they never
// interrupt the fetch.
func (b *Bus) Report(ctx context.Context, p fetch.Progress) {
	if err := b.publish(TypeProgress, p); err != nil {
		b.logger.Warn("failed to publish progress",
			zap.String("run", p.RunID),
			zap.Error(err),
		)
	}
}

// Completed publishes the summary of a finished year fetch
func (b *Bus) Completed(ctx context.Context, result fetch.YearResult) error {
	positions := 0
	for _, ind := range result.Document.VM {
		positions += len(ind.Positions)
	}

	return b.publish(TypeCompleted, Completion{
		RunID:       result.RunID,
		Year:        result.Year,
		Individuals: len(result.Document.VM),
		Positions:   positions,
		Failures:    result.Failures,
	})
}

// Subscribe delivers the raw JSON of every fetch event to handler until the
// returned function is called
func (b *Bus) Subscribe(handler func(data []byte)) (func(), error) {
	sub, err := b.conn.Subscribe(b.topic+".>", func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.topic, err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			b.logger.Debug("unsubscribe failed", zap.Error(err))
		}
	}, nil
}

func (b *Bus) publish(eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{
		Type: eventType,
		Time: b.now(),
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("error marshaling %s event: %w", eventType, err)
	}

	if err := b.conn.Publish(b.topic+"."+eventType, payload); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}
