package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/models"
)

const relayChannel = "live:updates"

// relayEnvelope - обновление, пересылаемое между экземплярами
type relayEnvelope struct {
	Kind     MessageType           `json:"kind"`
	Position *models.Position      `json:"position,omitempty"`
	Event    *models.GeofenceEvent `json:"event,omitempty"`
}

// Relay публикует обновления в Redis, а Run раздает полученное из канала в локальный хаб.
// Так подписчик получает обновление независимо от того, какой экземпляр его принял.
type Relay struct {
	redisClient *redis.Client
	hub         *Hub
	logger      *logrus.Logger
}

func NewRelay(client *redis.Client, hub *Hub, logger *logrus.Logger) *Relay {
	return &Relay{redisClient: client, hub: hub, logger: logger}
}

func (r *Relay) BroadcastPosition(ctx context.Context, pos *models.Position) error {
	return r.publish(ctx, relayEnvelope{Kind: MessagePositionUpdate, Position: pos})
}

func (r *Relay) BroadcastEvent(ctx context.Context, event *models.GeofenceEvent) error {
	return r.publish(ctx, relayEnvelope{Kind: MessageGeofenceEvent, Event: event})
}

func (r *Relay) publish(ctx context.Context, env relayEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("broadcast: failed to marshal relay message: %w", err)
	}
	if err := r.redisClient.Publish(ctx, relayChannel, payload).Err(); err != nil {
		return fmt.Errorf("broadcast: failed to publish to %s: %w", relayChannel, err)
	}
	return nil
}

// Run слушает канал до отмены ctx
func (r *Relay) Run(ctx context.Context) error {
	log := r.logger.WithFields(logrus.Fields{"component": "live_relay", "channel": relayChannel})

	pubsub := r.redisClient.Subscribe(ctx, relayChannel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			log.WithError(err).Warn("Failed to close relay subscription")
		}
	}()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("broadcast: subscribe %s: %w", relayChannel, err)
	}
	log.Info("Live relay started")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info("Live relay stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := r.dispatch(ctx, []byte(msg.Payload)); err != nil {
				log.WithError(err).Warn("Dropping malformed relay message")
			}
		}
	}
}

func (r *Relay) dispatch(ctx context.Context, payload []byte) error {
	var env relayEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	switch {
	case env.Kind == MessagePositionUpdate && env.Position != nil:
		return r.hub.BroadcastPosition(ctx, env.Position)
	case env.Kind == MessageGeofenceEvent && env.Event != nil:
		return r.hub.BroadcastEvent(ctx, env.Event)
	}
	return fmt.Errorf("unexpected relay message kind %q", env.Kind)
}
