package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/service"
)

const maxStateUpdateAttempts = 5

var ErrStateConflict = errors.New("geofence state: too many concurrent updates")

// GeofenceStateStore хранит состояние пар (сущность, зона) в Redis.
// Ключ состояния и множество зон, внутри которых находится сущность, меняются одной транзакцией.
type GeofenceStateStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewGeofenceStateStore(redisClient *redis.Client, ttl time.Duration) *GeofenceStateStore {
	return &GeofenceStateStore{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func stateKey(ref models.EntityRef, geofenceID uuid.UUID) string {
	return fmt.Sprintf("geofence_state:%s:%s:%s", ref.EntityType, ref.EntityID, geofenceID)
}

func insideKey(ref models.EntityRef) string {
	return fmt.Sprintf("geofence_inside:%s:%s", ref.EntityType, ref.EntityID)
}

// Update - оптимистичное чтение-изменение-запись под WATCH. При конфликте попытка повторяется.
// Ошибка fn возвращается как есть и не считается сбоем хранилища.
func (s *GeofenceStateStore) Update(ctx context.Context, ref models.EntityRef, geofenceID uuid.UUID, fn service.StateUpdateFunc) error {
	key := stateKey(ref, geofenceID)
	inside := insideKey(ref)

	txf := func(tx *redis.Tx) error {
		current, err := readState(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return &callbackError{err: err}
		}
		if next == nil {
			return nil
		}
		val, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal geofence state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, s.ttl)
			if next.IsInside {
				pipe.SAdd(ctx, inside, geofenceID.String())
				pipe.Expire(ctx, inside, s.ttl)
			} else {
				pipe.SRem(ctx, inside, geofenceID.String())
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxStateUpdateAttempts; attempt++ {
		err := s.redisClient.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		var cbErr *callbackError
		if errors.As(err, &cbErr) {
			return cbErr.err
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("failed to update geofence state: %w", err)
	}
	return ErrStateConflict
}

// InsideGeofences - зоны, внутри которых сущность находится по сохраненному состоянию
func (s *GeofenceStateStore) InsideGeofences(ctx context.Context, ref models.EntityRef) ([]uuid.UUID, error) {
	members, err := s.redisClient.SMembers(ctx, insideKey(ref)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read inside geofences: %w", err)
	}
	return parseGeofenceIDs(members), nil
}

func readState(ctx context.Context, tx *redis.Tx, key string) (*models.GeofenceState, error) {
	val, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read geofence state: %w", err)
	}
	st := &models.GeofenceState{}
	if err := json.Unmarshal(val, st); err != nil {
		// Испорченное состояние восстанавливается по журналу событий
		return nil, nil
	}
	return st, nil
}

// parseGeofenceIDs пропускает мусорные элементы множества
func parseGeofenceIDs(members []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

type callbackError struct {
	err error
}

func (e *callbackError) Error() string { return e.err.Error() }
func (e *callbackError) Unwrap() error { return e.err }
