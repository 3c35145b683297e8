package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/softfail"
)

// GeofenceStore - то, что детектору нужно от хранилища геозон и событий
type GeofenceStore interface {
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, filter models.GeofenceFilter) ([]*models.Geofence, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Geofence, error)
	ContainsPoint(ctx context.Context, geofenceID uuid.UUID, lat, lon float64) (bool, error)
	SaveEvent(ctx context.Context, event *models.GeofenceEvent) error
	LatestEvent(ctx context.Context, ref models.EntityRef, geofenceID uuid.UUID) (*models.GeofenceEvent, error)
}

// StateUpdateFunc получает текущее состояние (nil, если его нет) и возвращает новое
type StateUpdateFunc func(current *models.GeofenceState) (*models.GeofenceState, error)

// GeofenceStateStore хранит состояние пар (сущность, зона). Update атомарен по ключу пары.
type GeofenceStateStore interface {
	Update(ctx context.Context, ref models.EntityRef, geofenceID uuid.UUID, fn StateUpdateFunc) error
	InsideGeofences(ctx context.Context, ref models.EntityRef) ([]uuid.UUID, error)
}

type geofenceDetector struct {
	store          GeofenceStore
	states         GeofenceStateStore
	sink           softfail.Sink
	logger         *logrus.Logger
	searchRadius   float64
	dwellThreshold time.Duration
}

func NewGeofenceDetector(store GeofenceStore, states GeofenceStateStore, logger *logrus.Logger, sink softfail.Sink, cfg *config.Config) TransitionDetector {
	return &geofenceDetector{
		store:          store,
		states:         states,
		sink:           sink,
		logger:         logger,
		searchRadius:   cfg.Tuning.GeofenceSearchRadiusMeters,
		dwellThreshold: cfg.Tuning.DwellThreshold,
	}
}

// Detect прогоняет положение через автомат каждой зоны-кандидата.
// Ошибка одной зоны не мешает остальным: события возвращаются вместе с объединенной ошибкой.
func (d *geofenceDetector) Detect(ctx context.Context, pos *models.Position) ([]*models.GeofenceEvent, error) {
	ref := pos.Key()
	log := d.logger.WithFields(logrus.Fields{
		"service":     "geofence_detector",
		"method":      "Detect",
		"entity_id":   pos.EntityID,
		"entity_type": pos.EntityType,
	})

	candidates, err := d.candidates(ctx, pos)
	if err != nil {
		log.WithError(err).Error("Failed to load candidate geofences")
		return nil, fmt.Errorf("service: could not load candidate geofences: %w", err)
	}

	events := make([]*models.GeofenceEvent, 0)
	var errs []error
	for _, g := range candidates {
		event, err := d.evaluate(ctx, ref, pos, g)
		if err != nil {
			log.WithError(err).WithField("geofence_id", g.ID).Warn("Geofence skipped")
			errs = append(errs, fmt.Errorf("geofence %s: %w", g.ID, err))
			continue
		}
		if event == nil {
			continue
		}
		if err := d.store.SaveEvent(ctx, event); err != nil {
			d.sink.Warn("geofence_event.save", err, eventFields(event))
		}
		events = append(events, event)
	}

	if len(events) > 0 {
		log.WithField("events", len(events)).Info("Geofence transitions detected")
	}
	return events, errors.Join(errs...)
}

// candidates - ближайшие активные зоны плюс зоны, внутри которых сущность числится сейчас.
// Вторые нужны, чтобы сущность, резко ушедшая далеко, все равно получила EXIT.
func (d *geofenceDetector) candidates(ctx context.Context, pos *models.Position) ([]*models.Geofence, error) {
	filter := models.GeofenceFilter{EntityType: pos.EntityType, EntityID: pos.EntityID, At: pos.Timestamp}
	nearby, err := d.store.FindNearby(ctx, pos.Latitude, pos.Longitude, d.searchRadius, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(nearby))
	out := make([]*models.Geofence, 0, len(nearby))
	for _, g := range nearby {
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		out = append(out, g)
	}

	insideIDs, err := d.states.InsideGeofences(ctx, pos.Key())
	if err != nil {
		d.sink.Warn("geofence_state.inside", err, logrus.Fields{"entity_id": pos.EntityID, "entity_type": pos.EntityType})
		return out, nil
	}
	var missing []uuid.UUID
	for _, id := range insideIDs {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
			seen[id] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return out, nil
	}
	extra, err := d.store.GetByIDs(ctx, missing)
	if err != nil {
		d.sink.Warn("geofence.get_by_ids", err, logrus.Fields{"entity_id": pos.EntityID, "geofences": len(missing)})
		return out, nil
	}
	return append(out, extra...), nil
}

func (d *geofenceDetector) evaluate(ctx context.Context, ref models.EntityRef, pos *models.Position, g *models.Geofence) (*models.GeofenceEvent, error) {
	inside, err := d.contains(ctx, pos, g)
	if err != nil {
		return nil, err
	}

	var (
		event *models.GeofenceEvent
		fnErr error
	)
	err = d.states.Update(ctx, ref, g.ID, func(current *models.GeofenceState) (*models.GeofenceState, error) {
		event, fnErr = nil, nil
		if current == nil {
			last, err := d.store.LatestEvent(ctx, ref, g.ID)
			if err != nil {
				fnErr = fmt.Errorf("could not derive state from last event: %w", err)
				return nil, fnErr
			}
			current = models.StateFromEvent(last)
		}
		next, eventType := Transition(*current, inside, pos.Timestamp, d.dwellThreshold)
		if eventType != "" {
			event = newEvent(pos, g, eventType, *current)
		}
		return &next, nil
	})
	if err == nil {
		return event, nil
	}
	if fnErr != nil {
		return nil, fnErr
	}

	// Хранилище состояний недоступно: состояние восстанавливается по последнему событию,
	// переход считается без сохранения. События в БД остаются источником правды.
	d.sink.Warn("geofence_state.update", err, logrus.Fields{
		"entity_id":   ref.EntityID,
		"entity_type": ref.EntityType,
		"geofence_id": g.ID,
		"timestamp":   pos.Timestamp,
	})
	last, lerr := d.store.LatestEvent(ctx, ref, g.ID)
	if lerr != nil {
		return nil, fmt.Errorf("state store failed (%v) and last event unavailable: %w", err, lerr)
	}
	current := models.StateFromEvent(last)
	_, eventType := Transition(*current, inside, pos.Timestamp, d.dwellThreshold)
	if eventType == "" {
		return nil, nil
	}
	return newEvent(pos, g, eventType, *current), nil
}

// contains - полигон проверяется локально, остальные формы предикатом хранилища.
// Неактивная или чужая зона считается не содержащей точку.
func (d *geofenceDetector) contains(ctx context.Context, pos *models.Position, g *models.Geofence) (bool, error) {
	if err := g.Validate(); err != nil {
		return false, err
	}
	if !g.ActiveAt(pos.Timestamp) || !g.AppliesTo(pos.EntityID, pos.EntityType) {
		return false, nil
	}
	if poly, ok := g.Geometry.(models.PolygonGeometry); ok {
		return poly.Contains(pos.Latitude, pos.Longitude), nil
	}
	inside, err := d.store.ContainsPoint(ctx, g.ID, pos.Latitude, pos.Longitude)
	if err != nil {
		return false, fmt.Errorf("containment check failed: %w", err)
	}
	return inside, nil
}

// Transition - чистый шаг автомата. Возвращает новое состояние и тип события ("" - события нет).
// Положение старше уже учтенного не меняет состояние.
func Transition(current models.GeofenceState, inside bool, at time.Time, dwell time.Duration) (models.GeofenceState, models.GeofenceEventType) {
	if at.Before(current.ObservedAt) {
		return current, ""
	}
	next, eventType := step(current, inside, at, dwell)
	next.ObservedAt = at
	return next, eventType
}

func step(current models.GeofenceState, inside bool, at time.Time, dwell time.Duration) (models.GeofenceState, models.GeofenceEventType) {
	switch {
	case !current.IsInside && inside:
		return models.GeofenceState{IsInside: true, Since: at, LastEventType: models.GeofenceEnter}, models.GeofenceEnter

	case current.IsInside && !inside:
		return models.GeofenceState{IsInside: false, Since: at, LastEventType: models.GeofenceExit}, models.GeofenceExit

	case current.IsInside && inside:
		if at.Sub(current.Since) < dwell {
			return current, ""
		}
		if current.LastDwellAt != nil && at.Sub(*current.LastDwellAt) < dwell {
			return current, ""
		}
		next := current
		dwellAt := at
		next.LastDwellAt = &dwellAt
		next.LastEventType = models.GeofenceDwell
		return next, models.GeofenceDwell
	}
	return current, ""
}

func newEvent(pos *models.Position, g *models.Geofence, eventType models.GeofenceEventType, prev models.GeofenceState) *models.GeofenceEvent {
	meta := map[string]any{
		"geofence_name": g.Name,
		"geofence_type": string(g.Type()),
		"source":        string(pos.Source),
	}
	switch eventType {
	case models.GeofenceDwell:
		meta["entered_at"] = prev.Since.UTC().Format(time.RFC3339Nano)
		meta["dwell_seconds"] = pos.Timestamp.Sub(prev.Since).Seconds()
	case models.GeofenceExit:
		if !prev.Since.IsZero() {
			meta["entered_at"] = prev.Since.UTC().Format(time.RFC3339Nano)
			meta["inside_seconds"] = pos.Timestamp.Sub(prev.Since).Seconds()
		}
		if !g.ActiveAt(pos.Timestamp) {
			meta["reason"] = "geofence_inactive"
		}
	}
	return &models.GeofenceEvent{
		ID:         uuid.New(),
		GeofenceID: g.ID,
		EntityID:   pos.EntityID,
		EntityType: pos.EntityType,
		EventType:  eventType,
		Latitude:   pos.Latitude,
		Longitude:  pos.Longitude,
		Timestamp:  pos.Timestamp,
		Metadata:   meta,
	}
}

func eventFields(e *models.GeofenceEvent) logrus.Fields {
	return logrus.Fields{
		"entity_id":   e.EntityID,
		"entity_type": e.EntityType,
		"geofence_id": e.GeofenceID,
		"event_type":  e.EventType,
		"timestamp":   e.Timestamp,
	}
}
