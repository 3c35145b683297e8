package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/softfail"
	"github.com/shenikar/fleet_location_core/internal/webhook"
)

const (
	defaultHistoryWindow = 24 * time.Hour
	defaultHistoryLimit  = 100
	maxHistoryLimit      = 1000
	defaultNearbyLimit   = 100
	maxNearbyLimit       = 1000
	speedHistoryLimit    = 10000
)

// PositionRepository определяет контракт хранилища текущих положений и истории
type PositionRepository interface {
	GetCurrent(ctx context.Context, entityID string, entityType models.EntityType) (*models.Position, error)
	// Upsert сохраняет положение и возвращает признак архивирования предыдущего
	Upsert(ctx context.Context, pos *models.Position) (bool, error)
	BulkUpsert(ctx context.Context, positions []*models.Position) ([]bool, error)
	GetOrCreateDefault(ctx context.Context, def *models.Position) (*models.Position, bool, error)
	Delete(ctx context.Context, entityID string, entityType models.EntityType) (bool, error)
	Nearby(ctx context.Context, q models.NearbyQuery) ([]*models.EntityPosition, error)
	History(ctx context.Context, q models.HistoryQuery) ([]*models.Position, error)
	AverageReportedSpeed(ctx context.Context, entityID string, entityType models.EntityType, since time.Time) (*float64, error)
}

// PositionCache - кеш последних положений
type PositionCache interface {
	Get(ctx context.Context, entityID string, entityType models.EntityType) (*models.Position, error)
	Set(ctx context.Context, pos *models.Position) error
	Delete(ctx context.Context, entityID string, entityType models.EntityType) error
}

// TransitionDetector вычисляет события геозон для нового положения
type TransitionDetector interface {
	Detect(ctx context.Context, pos *models.Position) ([]*models.GeofenceEvent, error)
}

// LiveBroadcaster рассылает обновления живым подписчикам
type LiveBroadcaster interface {
	BroadcastPosition(ctx context.Context, pos *models.Position) error
	BroadcastEvent(ctx context.Context, event *models.GeofenceEvent) error
}

// EventPublisher публикует события геозон во внешнюю шину
type EventPublisher interface {
	PublishGeofenceEvent(ctx context.Context, event *models.GeofenceEvent) error
}

// PositionService определяет контракт записи и чтения положений
type PositionService interface {
	UpdatePosition(ctx context.Context, update *models.PositionUpdate) (*models.PositionUpdateResult, error)
	BulkUpdatePositions(ctx context.Context, updates []*models.PositionUpdate) ([]*models.PositionUpdateResult, error)
	DeletePosition(ctx context.Context, entityID string, entityType models.EntityType) (bool, error)
	GetCurrentPosition(ctx context.Context, entityID string, entityType models.EntityType) (*models.Position, error)
	GetCurrentPositions(ctx context.Context, refs []models.EntityRef) ([]*models.Position, error)
	EnsurePosition(ctx context.Context, update *models.PositionUpdate) (*models.Position, bool, error)
	GetPositionHistory(ctx context.Context, q models.HistoryQuery) ([]*models.Position, error)
	GetNearbyEntities(ctx context.Context, q models.NearbyQuery) ([]*models.EntityPosition, error)
	CalculateDistance(ctx context.Context, from, to models.EntityRef) (*float64, error)
	CalculateAverageSpeed(ctx context.Context, ref models.EntityRef, window time.Duration) (*float64, error)
}

type positionService struct {
	repo        PositionRepository
	cache       PositionCache
	detector    TransitionDetector
	broadcaster LiveBroadcaster
	publishers  []EventPublisher
	webhooks    webhook.WebhookPublisher
	sink        softfail.Sink
	logger      *logrus.Logger
	cfg         *config.Config
	now         func() time.Time
}

// PositionOption настраивает необязательные зависимости сервиса
type PositionOption func(*positionService)

func WithBroadcaster(b LiveBroadcaster) PositionOption {
	return func(s *positionService) { s.broadcaster = b }
}

func WithEventPublisher(p EventPublisher) PositionOption {
	return func(s *positionService) { s.publishers = append(s.publishers, p) }
}

func WithWebhookPublisher(p webhook.WebhookPublisher) PositionOption {
	return func(s *positionService) { s.webhooks = p }
}

func WithSoftFailSink(sink softfail.Sink) PositionOption {
	return func(s *positionService) { s.sink = sink }
}

func WithClock(now func() time.Time) PositionOption {
	return func(s *positionService) { s.now = now }
}

func NewPositionService(repo PositionRepository, cache PositionCache, detector TransitionDetector, logger *logrus.Logger, cfg *config.Config, opts ...PositionOption) PositionService {
	s := &positionService{
		repo:     repo,
		cache:    cache,
		detector: detector,
		sink:     softfail.NewLogSink(logger),
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdatePosition валидирует и сохраняет положение, затем запускает детектор геозон и рассылку
func (s *positionService) UpdatePosition(ctx context.Context, update *models.PositionUpdate) (*models.PositionUpdateResult, error) {
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("service: invalid position update: %w", err)
	}
	log := s.logger.WithFields(logrus.Fields{
		"service":     "position",
		"method":      "UpdatePosition",
		"entity_id":   update.EntityID,
		"entity_type": update.EntityType,
	})

	pos := update.ToPosition(s.now())
	archived, err := s.repo.Upsert(ctx, pos)
	if err != nil {
		log.WithError(err).Error("Failed to store position")
		return nil, fmt.Errorf("service: could not store position: %w", err)
	}
	log.WithField("archived", archived).Debug("Position stored")

	return s.afterWrite(ctx, pos, archived), nil
}

// BulkUpdatePositions применяет пакет целиком: либо все, либо ничего
func (s *positionService) BulkUpdatePositions(ctx context.Context, updates []*models.PositionUpdate) ([]*models.PositionUpdateResult, error) {
	if len(updates) == 0 {
		return []*models.PositionUpdateResult{}, nil
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "position",
		"method":  "BulkUpdatePositions",
		"count":   len(updates),
	})

	now := s.now()
	positions := make([]*models.Position, len(updates))
	for i, u := range updates {
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("service: invalid position update at index %d: %w", i, err)
		}
		positions[i] = u.ToPosition(now)
	}

	archived, err := s.repo.BulkUpsert(ctx, positions)
	if err != nil {
		log.WithError(err).Error("Failed to store position batch")
		return nil, fmt.Errorf("service: could not store position batch: %w", err)
	}

	// Срок записи пачки не переносится на побочные эффекты: у каждого элемента свой
	results := make([]*models.PositionUpdateResult, len(positions))
	for i, pos := range positions {
		itemCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Tuning.SideEffectTimeout)
		results[i] = s.afterWrite(itemCtx, pos, i < len(archived) && archived[i])
		cancel()
	}
	log.Debug("Position batch stored")
	return results, nil
}

// afterWrite - все побочные эффекты записи. Ни один из них не отменяет уже сохраненное положение.
func (s *positionService) afterWrite(ctx context.Context, pos *models.Position, archived bool) *models.PositionUpdateResult {
	fields := logrus.Fields{"entity_id": pos.EntityID, "entity_type": pos.EntityType, "timestamp": pos.Timestamp}

	if s.cache != nil {
		if err := s.cache.Set(ctx, pos); err != nil {
			s.sink.Warn("position_cache.set", err, fields)
		}
	}

	events := []*models.GeofenceEvent{}
	if s.detector != nil {
		detected, err := s.detector.Detect(ctx, pos)
		if err != nil {
			s.sink.Warn("geofence.detect", err, fields)
		}
		if detected != nil {
			events = detected
		}
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastPosition(ctx, pos); err != nil {
			s.sink.Warn("live.broadcast_position", err, fields)
		}
	}
	for _, e := range events {
		s.fanOutEvent(ctx, e)
	}

	return &models.PositionUpdateResult{Position: pos, Archived: archived, Events: events}
}

func (s *positionService) fanOutEvent(ctx context.Context, e *models.GeofenceEvent) {
	fields := logrus.Fields{
		"entity_id":   e.EntityID,
		"entity_type": e.EntityType,
		"geofence_id": e.GeofenceID,
		"event_type":  e.EventType,
		"timestamp":   e.Timestamp,
	}
	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastEvent(ctx, e); err != nil {
			s.sink.Warn("live.broadcast_event", err, fields)
		}
	}
	for _, p := range s.publishers {
		if err := p.PublishGeofenceEvent(ctx, e); err != nil {
			s.sink.Warn("events.publish", err, fields)
		}
	}
	if s.webhooks != nil {
		if err := s.webhooks.Publish(ctx, webhook.NewGeofenceWebhookEvent(e, s.now())); err != nil {
			s.sink.Warn("webhook.publish", err, fields)
		}
	}
}

// DeletePosition удаляет текущее положение и сбрасывает кеш. История не трогается.
func (s *positionService) DeletePosition(ctx context.Context, entityID string, entityType models.EntityType) (bool, error) {
	if err := validateRef(entityID, entityType); err != nil {
		return false, err
	}
	log := s.logger.WithFields(logrus.Fields{
		"service":     "position",
		"method":      "DeletePosition",
		"entity_id":   entityID,
		"entity_type": entityType,
	})

	deleted, err := s.repo.Delete(ctx, entityID, entityType)
	if err != nil {
		log.WithError(err).Error("Failed to delete position")
		return false, fmt.Errorf("service: could not delete position: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, entityID, entityType); err != nil {
			s.sink.Warn("position_cache.delete", err, logrus.Fields{"entity_id": entityID, "entity_type": entityType})
		}
	}
	log.WithField("deleted", deleted).Info("Position deleted")
	return deleted, nil
}

// GetCurrentPosition читает через кеш. Отсутствие положения - nil без ошибки.
func (s *positionService) GetCurrentPosition(ctx context.Context, entityID string, entityType models.EntityType) (*models.Position, error) {
	if err := validateRef(entityID, entityType); err != nil {
		return nil, err
	}
	fields := logrus.Fields{"entity_id": entityID, "entity_type": entityType}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, entityID, entityType)
		if err != nil {
			s.sink.Warn("position_cache.get", err, fields)
		} else if cached != nil {
			return cached, nil
		}
	}

	pos, err := s.repo.GetCurrent(ctx, entityID, entityType)
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Error("Failed to get current position")
		return nil, fmt.Errorf("service: could not get current position: %w", err)
	}
	if pos == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, pos); err != nil {
			s.sink.Warn("position_cache.set", err, fields)
		}
	}
	return pos, nil
}

// GetCurrentPositions - положения для списка сущностей. Ссылка без типа проверяет все типы.
func (s *positionService) GetCurrentPositions(ctx context.Context, refs []models.EntityRef) ([]*models.Position, error) {
	out := make([]*models.Position, 0, len(refs))
	for _, ref := range refs {
		types := []models.EntityType{ref.EntityType}
		if ref.EntityType == "" {
			types = models.EntityTypes()
		}
		for _, t := range types {
			pos, err := s.GetCurrentPosition(ctx, ref.EntityID, t)
			if err != nil {
				return nil, err
			}
			if pos != nil {
				out = append(out, pos)
			}
		}
	}
	return out, nil
}

// EnsurePosition - явное "создать, если нет". Возвращает текущее положение и признак создания.
func (s *positionService) EnsurePosition(ctx context.Context, update *models.PositionUpdate) (*models.Position, bool, error) {
	if err := update.Validate(); err != nil {
		return nil, false, fmt.Errorf("service: invalid default position: %w", err)
	}
	log := s.logger.WithFields(logrus.Fields{
		"service":     "position",
		"method":      "EnsurePosition",
		"entity_id":   update.EntityID,
		"entity_type": update.EntityType,
	})

	def := update.ToPosition(s.now())
	if update.Source == "" {
		def.Source = models.SourceSystem
	}
	pos, created, err := s.repo.GetOrCreateDefault(ctx, def)
	if err != nil {
		log.WithError(err).Error("Failed to get or create default position")
		return nil, false, fmt.Errorf("service: could not ensure position: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, pos); err != nil {
			s.sink.Warn("position_cache.set", err, logrus.Fields{"entity_id": pos.EntityID, "entity_type": pos.EntityType})
		}
	}
	log.WithField("created", created).Info("Position ensured")
	return pos, created, nil
}

// GetPositionHistory возвращает архив положений в окне времени по возрастанию
func (s *positionService) GetPositionHistory(ctx context.Context, q models.HistoryQuery) ([]*models.Position, error) {
	if err := validateRef(q.EntityID, q.EntityType); err != nil {
		return nil, err
	}
	if q.End.IsZero() {
		q.End = s.now()
	}
	if q.Start.IsZero() {
		q.Start = q.End.Add(-defaultHistoryWindow)
	}
	if q.Start.After(q.End) {
		return nil, fmt.Errorf("service: %w: history start is after end", models.ErrValidation)
	}
	if q.Limit <= 0 {
		q.Limit = defaultHistoryLimit
	}
	if q.Limit > maxHistoryLimit {
		q.Limit = maxHistoryLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	history, err := s.repo.History(ctx, q)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":   "position",
			"method":    "GetPositionHistory",
			"entity_id": q.EntityID,
		}).WithError(err).Error("Failed to get position history")
		return nil, fmt.Errorf("service: could not get position history: %w", err)
	}
	return history, nil
}

// GetNearbyEntities ищет сущности в радиусе (мили), ближайшие первыми
func (s *positionService) GetNearbyEntities(ctx context.Context, q models.NearbyQuery) ([]*models.EntityPosition, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("service: invalid nearby query: %w", err)
	}
	if q.Limit <= 0 {
		q.Limit = defaultNearbyLimit
	}
	if q.Limit > maxNearbyLimit {
		q.Limit = maxNearbyLimit
	}

	found, err := s.repo.Nearby(ctx, q)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":      "position",
			"method":       "GetNearbyEntities",
			"radius_miles": q.RadiusMiles,
		}).WithError(err).Error("Failed to query nearby entities")
		return nil, fmt.Errorf("service: could not query nearby entities: %w", err)
	}
	return found, nil
}

// CalculateDistance - расстояние между текущими положениями двух сущностей, км.
// nil, если хотя бы одно положение неизвестно.
func (s *positionService) CalculateDistance(ctx context.Context, from, to models.EntityRef) (*float64, error) {
	a, err := s.GetCurrentPosition(ctx, from.EntityID, from.EntityType)
	if err != nil {
		return nil, err
	}
	b, err := s.GetCurrentPosition(ctx, to.EntityID, to.EntityType)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	d := geo.DistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	return &d, nil
}

// CalculateAverageSpeed - пройденный путь по истории за окно, деленный на затраченное время, км/ч
func (s *positionService) CalculateAverageSpeed(ctx context.Context, ref models.EntityRef, window time.Duration) (*float64, error) {
	if err := validateRef(ref.EntityID, ref.EntityType); err != nil {
		return nil, err
	}
	if window <= 0 {
		return nil, fmt.Errorf("service: %w: window must be positive", models.ErrValidation)
	}
	end := s.now()
	history, err := s.repo.History(ctx, models.HistoryQuery{
		EntityID:   ref.EntityID,
		EntityType: ref.EntityType,
		Start:      end.Add(-window),
		End:        end,
		Limit:      speedHistoryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("service: could not load history for average speed: %w", err)
	}

	current, err := s.GetCurrentPosition(ctx, ref.EntityID, ref.EntityType)
	if err != nil {
		return nil, err
	}
	if current != nil && !current.Timestamp.Before(end.Add(-window)) &&
		(len(history) == 0 || current.Timestamp.After(history[len(history)-1].Timestamp)) {
		history = append(history, current)
	}

	if len(history) < 2 {
		return nil, nil
	}
	elapsed := history[len(history)-1].Timestamp.Sub(history[0].Timestamp)
	if elapsed <= 0 {
		return nil, nil
	}
	points := make([]geo.LatLng, len(history))
	for i, p := range history {
		points[i] = geo.LatLng{Lat: p.Latitude, Lon: p.Longitude}
	}
	speed := geo.PathLengthKm(points) / elapsed.Hours()
	return &speed, nil
}

func validateRef(entityID string, entityType models.EntityType) error {
	if entityID == "" {
		return fmt.Errorf("service: %w: entity_id is required", models.ErrValidation)
	}
	if !entityType.Valid() {
		return fmt.Errorf("service: %w: unknown entity type %q", models.ErrValidation, entityType)
	}
	return nil
}

// IsValidation - ошибка относится к невалидным данным
func IsValidation(err error) bool {
	return errors.Is(err, models.ErrValidation)
}
