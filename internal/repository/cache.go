package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/fleet_location_core/internal/models"
)

var ErrCacheConflict = errors.New("position cache: too many concurrent updates")

// PositionCache - кеш последних положений в Redis
type PositionCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewPositionCache(redisClient *redis.Client, ttl time.Duration) *PositionCache {
	return &PositionCache{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func positionKey(entityID string, entityType models.EntityType) string {
	return fmt.Sprintf("position:%s:%s", entityType, entityID)
}

// Get пытается получить положение из Redis, nil при промахе
func (c *PositionCache) Get(ctx context.Context, entityID string, entityType models.EntityType) (*models.Position, error) {
	val, err := c.redisClient.Get(ctx, positionKey(entityID, entityType)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get position from cache: %w", err)
	}
	return decodeCachedPosition(val)
}

func decodeCachedPosition(val []byte) (*models.Position, error) {
	pos := &models.Position{}
	if err := json.Unmarshal(val, pos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal position from cache: %w", err)
	}
	return pos, nil
}

// Set сохраняет положение, если в кеше нет более нового. Сравнение и запись идут под WATCH ключа.
func (c *PositionCache) Set(ctx context.Context, pos *models.Position) error {
	val, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal position for cache: %w", err)
	}
	key := positionKey(pos.EntityID, pos.EntityType)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			// Нечитаемое значение перезаписывается
			if cached, derr := decodeCachedPosition(raw); derr == nil && cachedIsNewer(cached, pos) {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, c.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxStateUpdateAttempts; attempt++ {
		err := c.redisClient.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("failed to set position in cache: %w", err)
	}
	return ErrCacheConflict
}

// cachedIsNewer - в кеше уже положение новее записываемого
func cachedIsNewer(cached, pos *models.Position) bool {
	return cached.Timestamp.After(pos.Timestamp)
}

// Delete удаляет положение из кеша
func (c *PositionCache) Delete(ctx context.Context, entityID string, entityType models.EntityType) error {
	if err := c.redisClient.Del(ctx, positionKey(entityID, entityType)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate position cache: %w", err)
	}
	return nil
}
