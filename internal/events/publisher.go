package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shenikar/fleet_location_core/internal/models"
)

const (
	ExchangeName = "fleet.events"
	QueueName    = "geofence_events"
)

// Channel - часть amqp.Channel, нужная для публикации
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// GeofencePublisher публикует события геозон в fanout exchange
type GeofencePublisher struct {
	mu sync.Mutex
	ch Channel
}

// NewGeofencePublisher открывает канал и объявляет exchange, очередь и привязку
func NewGeofencePublisher(conn *amqp.Connection) (*GeofencePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("events: rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("events: declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("events: declare queue: %w", err)
	}
	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("events: bind queue: %w", err)
	}
	return newGeofencePublisher(ch), nil
}

func newGeofencePublisher(ch Channel) *GeofencePublisher {
	return &GeofencePublisher{ch: ch}
}

type eventMessage struct {
	EventID    string                   `json:"event_id"`
	GeofenceID string                   `json:"geofence_id"`
	EntityID   string                   `json:"entity_id"`
	EntityType models.EntityType        `json:"entity_type"`
	Event      models.GeofenceEventType `json:"event"`
	Location   eventLocation            `json:"location"`
	Timestamp  int64                    `json:"timestamp"`
	Metadata   map[string]any           `json:"metadata,omitempty"`
}

type eventLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PublishGeofenceEvent отправляет событие как persistent JSON-сообщение
func (p *GeofencePublisher) PublishGeofenceEvent(ctx context.Context, e *models.GeofenceEvent) error {
	body, err := json.Marshal(eventMessage{
		EventID:    e.ID.String(),
		GeofenceID: e.GeofenceID.String(),
		EntityID:   e.EntityID,
		EntityType: e.EntityType,
		Event:      e.EventType,
		Location:   eventLocation{Latitude: e.Latitude, Longitude: e.Longitude},
		Timestamp:  e.Timestamp.Unix(),
		Metadata:   e.Metadata,
	})
	if err != nil {
		return fmt.Errorf("events: marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID.String(),
		Timestamp:    time.Now().UTC(),
		Type:         string(e.EventType),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", e.ID, err)
	}
	return nil
}

func (p *GeofencePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}
