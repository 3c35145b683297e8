package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/fleet_location_core/internal/models"
)

const (
	webhookQueueKey = "webhook_events"

	EventTypeGeofence = "geofence_event"
)

// WebhookEvent - структура для данных вебхука
type WebhookEvent struct {
	Type       string                   `json:"type"`
	EventID    string                   `json:"event_id"`
	EntityID   string                   `json:"entity_id"`
	EntityType models.EntityType        `json:"entity_type"`
	GeofenceID string                   `json:"geofence_id"`
	EventType  models.GeofenceEventType `json:"event_type"`
	Latitude   float64                  `json:"latitude"`
	Longitude  float64                  `json:"longitude"`
	Timestamp  time.Time                `json:"timestamp"`
	Metadata   map[string]any           `json:"metadata,omitempty"`
	QueuedAt   time.Time                `json:"queued_at"`
}

// NewGeofenceWebhookEvent упаковывает событие геозоны для доставки
func NewGeofenceWebhookEvent(e *models.GeofenceEvent, queuedAt time.Time) WebhookEvent {
	return WebhookEvent{
		Type:       EventTypeGeofence,
		EventID:    e.ID.String(),
		EntityID:   e.EntityID,
		EntityType: e.EntityType,
		GeofenceID: e.GeofenceID.String(),
		EventType:  e.EventType,
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		Timestamp:  e.Timestamp,
		Metadata:   e.Metadata,
		QueuedAt:   queuedAt,
	}
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH кладет в голову списка, воркер забирает с хвоста через BRPOP
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
