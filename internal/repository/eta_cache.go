package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
)

const etaScanCount = 100

// ETACache хранит посчитанные ETA в Redis
type ETACache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewETACache(redisClient *redis.Client, ttl time.Duration) *ETACache {
	return &ETACache{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// etaKey - назначение округляется до трех знаков, это около 100 м
func etaKey(ref models.EntityRef, dest geo.LatLng, withRoute bool) string {
	mode := "direct"
	if withRoute {
		mode = "route"
	}
	return fmt.Sprintf("%s%.3f:%.3f:%s", etaKeyPrefix(ref), dest.Lat, dest.Lon, mode)
}

func etaKeyPrefix(ref models.EntityRef) string {
	return fmt.Sprintf("eta:%s:%s:", ref.EntityType, ref.EntityID)
}

func (c *ETACache) Get(ctx context.Context, ref models.EntityRef, dest geo.LatLng, withRoute bool) (*models.ETAResult, error) {
	val, err := c.redisClient.Get(ctx, etaKey(ref, dest, withRoute)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get eta from cache: %w", err)
	}
	result := &models.ETAResult{}
	if err := json.Unmarshal(val, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal eta from cache: %w", err)
	}
	return result, nil
}

func (c *ETACache) Set(ctx context.Context, ref models.EntityRef, dest geo.LatLng, withRoute bool, result *models.ETAResult) error {
	val, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal eta for cache: %w", err)
	}
	if err := c.redisClient.Set(ctx, etaKey(ref, dest, withRoute), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set eta in cache: %w", err)
	}
	return nil
}

// Invalidate удаляет все ETA сущности и возвращает число удаленных ключей
func (c *ETACache) Invalidate(ctx context.Context, ref models.EntityRef) (int, error) {
	pattern := etaKeyPrefix(ref) + "*"
	deleted := 0
	iter := c.redisClient.Scan(ctx, 0, pattern, etaScanCount).Iterator()
	batch := make([]string, 0, etaScanCount)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.redisClient.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("failed to delete eta keys: %w", err)
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == etaScanCount {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan eta keys: %w", err)
	}
	if err := flush(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// DriverBehaviorStore читает множители поведения водителя, которые пишет внешняя аналитика
type DriverBehaviorStore struct {
	redisClient *redis.Client
}

func NewDriverBehaviorStore(redisClient *redis.Client) *DriverBehaviorStore {
	return &DriverBehaviorStore{redisClient: redisClient}
}

func driverBehaviorKey(entityID string) string {
	return "driver_behavior:" + entityID
}

// Factor - множитель времени в пути, nil если его нет или он не положительный
func (s *DriverBehaviorStore) Factor(ctx context.Context, entityID string) (*float64, error) {
	val, err := s.redisClient.Get(ctx, driverBehaviorKey(entityID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get driver behavior factor: %w", err)
	}
	return parseBehaviorFactor(val)
}

func parseBehaviorFactor(val string) (*float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed driver behavior factor %q: %w", val, err)
	}
	if f <= 0 {
		return nil, nil
	}
	return &f, nil
}
