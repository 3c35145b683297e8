package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/models"
)

// GeofenceRepository определяет контракт администрирования геозон
type GeofenceRepository interface {
	Create(ctx context.Context, g *models.Geofence) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Geofence, error)
	List(ctx context.Context, page, pageSize int) ([]*models.Geofence, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, filter models.GeofenceFilter) ([]*models.Geofence, error)
	ContainsPoint(ctx context.Context, geofenceID uuid.UUID, lat, lon float64) (bool, error)
	ListEvents(ctx context.Context, ref models.EntityRef, limit int) ([]*models.GeofenceEvent, error)
}

// GeofenceService определяет контракт управления геозонами
type GeofenceService interface {
	CreateGeofence(ctx context.Context, g *models.Geofence) error
	GetGeofence(ctx context.Context, id uuid.UUID) (*models.Geofence, error)
	ListGeofences(ctx context.Context, page, pageSize int) ([]*models.Geofence, error)
	DeactivateGeofence(ctx context.Context, id uuid.UUID) error
	ContainingGeofences(ctx context.Context, lat, lon float64, entityType models.EntityType, entityID string) ([]*models.Geofence, error)
	ListEntityEvents(ctx context.Context, ref models.EntityRef, limit int) ([]*models.GeofenceEvent, error)
}

type geofenceService struct {
	repo   GeofenceRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewGeofenceService(repo GeofenceRepository, logger *logrus.Logger) GeofenceService {
	return &geofenceService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// CreateGeofence создает геозону
func (s *geofenceService) CreateGeofence(ctx context.Context, g *models.Geofence) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "geofence",
		"method":  "CreateGeofence",
		"name":    g.Name,
	})
	log.Info("Attempting to create a new geofence")

	if err := g.Validate(); err != nil {
		log.WithError(err).Warn("Geofence rejected")
		return fmt.Errorf("service: invalid geofence: %w", err)
	}
	g.IsActive = true
	if err := s.repo.Create(ctx, g); err != nil {
		log.WithError(err).Error("Failed to create geofence in repository")
		return fmt.Errorf("service: could not create geofence: %w", err)
	}

	log.WithField("geofence_id", g.ID).Info("Geofence created successfully")
	return nil
}

// GetGeofence получает геозону по ID, nil если ее нет
func (s *geofenceService) GetGeofence(ctx context.Context, id uuid.UUID) (*models.Geofence, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":     "geofence",
			"method":      "GetGeofence",
			"geofence_id": id,
		}).WithError(err).Error("Failed to get geofence in repository")
		return nil, fmt.Errorf("service: not get geofence: %w", err)
	}
	return g, nil
}

// ListGeofences возвращает список геозон с пагинацией
func (s *geofenceService) ListGeofences(ctx context.Context, page, pageSize int) ([]*models.Geofence, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "geofence",
		"method":    "ListGeofences",
		"page":      page,
		"page_size": pageSize,
	})

	geofences, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list geofences from repository")
		return nil, fmt.Errorf("service: could not list geofences: %w", err)
	}
	log.WithField("count", len(geofences)).Debug("Geofences listed")
	return geofences, nil
}

// DeactivateGeofence деактивирует геозону. Сущности внутри получат EXIT при следующем положении.
func (s *geofenceService) DeactivateGeofence(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "geofence",
		"method":      "DeactivateGeofence",
		"geofence_id": id,
	})
	log.Info("Attempting to deactivate geofence")

	if err := s.repo.Deactivate(ctx, id); err != nil {
		log.WithError(err).Error("Failed to deactivate geofence in repository")
		return fmt.Errorf("service: could not deactivate geofence: %w", err)
	}
	log.Info("Geofence deactivated successfully")
	return nil
}

// ContainingGeofences - активные зоны, содержащие точку
func (s *geofenceService) ContainingGeofences(ctx context.Context, lat, lon float64, entityType models.EntityType, entityID string) ([]*models.Geofence, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "geofence",
		"method":      "ContainingGeofences",
		"entity_type": entityType,
	})
	if !entityType.Valid() {
		return nil, fmt.Errorf("service: %w: unknown entity type %q", models.ErrValidation, entityType)
	}

	now := s.now()
	candidates, err := s.repo.FindNearby(ctx, lat, lon, 0, models.GeofenceFilter{EntityType: entityType, EntityID: entityID, At: now})
	if err != nil {
		log.WithError(err).Error("Failed to find candidate geofences")
		return nil, fmt.Errorf("service: failed to find geofences: %w", err)
	}

	out := make([]*models.Geofence, 0, len(candidates))
	for _, g := range candidates {
		if err := g.Validate(); err != nil {
			log.WithError(err).WithField("geofence_id", g.ID).Warn("Skipping invalid geofence")
			continue
		}
		var inside bool
		if poly, ok := g.Geometry.(models.PolygonGeometry); ok {
			inside = poly.Contains(lat, lon)
		} else if inside, err = s.repo.ContainsPoint(ctx, g.ID, lat, lon); err != nil {
			log.WithError(err).WithField("geofence_id", g.ID).Warn("Containment check failed")
			continue
		}
		if inside {
			out = append(out, g)
		}
	}
	return out, nil
}

// ListEntityEvents - журнал переходов сущности, новые первыми
func (s *geofenceService) ListEntityEvents(ctx context.Context, ref models.EntityRef, limit int) ([]*models.GeofenceEvent, error) {
	if err := validateRef(ref.EntityID, ref.EntityType); err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	events, err := s.repo.ListEvents(ctx, ref, limit)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":     "geofence",
			"method":      "ListEntityEvents",
			"entity_id":   ref.EntityID,
			"entity_type": ref.EntityType,
		}).WithError(err).Error("Failed to list geofence events")
		return nil, fmt.Errorf("service: could not list geofence events: %w", err)
	}
	return events, nil
}
