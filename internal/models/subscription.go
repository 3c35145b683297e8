package models

import (
	"fmt"

	"github.com/shenikar/fleet_location_core/internal/geo"
)

// SubscriptionFilter - фильтр живой подписки.
// Либо явный список сущностей, либо центр с радиусом (и необязательным списком типов).
type SubscriptionFilter struct {
	Entities    []EntityRef  `json:"entities,omitempty"`
	EntityTypes []EntityType `json:"entity_types,omitempty"`
	Center      *geo.LatLng  `json:"center,omitempty"`
	RadiusMiles float64      `json:"radius_miles,omitempty"`
}

// Validate проверяет, что фильтр задан одним из двух способов
func (f *SubscriptionFilter) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: subscription is required", ErrValidation)
	}
	hasGeo := f.Center != nil
	if len(f.Entities) == 0 && !hasGeo {
		return fmt.Errorf("%w: subscription needs entities or center and radius", ErrValidation)
	}
	for _, e := range f.Entities {
		if e.EntityID == "" {
			return fmt.Errorf("%w: subscription entity without id", ErrValidation)
		}
		if e.EntityType != "" && !e.EntityType.Valid() {
			return fmt.Errorf("%w: unknown entity type %q", ErrValidation, e.EntityType)
		}
	}
	for _, t := range f.EntityTypes {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown entity type %q", ErrValidation, t)
		}
	}
	if hasGeo {
		if !geo.ValidCoordinates(f.Center.Lat, f.Center.Lon) {
			return fmt.Errorf("%w: subscription center out of range", ErrValidation)
		}
		if f.RadiusMiles <= 0 {
			return fmt.Errorf("%w: subscription radius must be positive", ErrValidation)
		}
	}
	return nil
}

// IsGeographic - подписка по области, а не по списку сущностей
func (f *SubscriptionFilter) IsGeographic() bool {
	return len(f.Entities) == 0 && f.Center != nil
}

// MatchesEntity проверяет сущность и точку против фильтра
func (f *SubscriptionFilter) MatchesEntity(entityID string, entityType EntityType, lat, lon float64) bool {
	if f == nil {
		return false
	}
	for _, e := range f.Entities {
		if e.EntityID == entityID && (e.EntityType == "" || e.EntityType == entityType) {
			return true
		}
	}
	if f.Center == nil {
		return false
	}
	if !f.allowsType(entityType) {
		return false
	}
	return geo.KmToMiles(geo.DistanceKm(f.Center.Lat, f.Center.Lon, lat, lon)) <= f.RadiusMiles
}

func (f *SubscriptionFilter) allowsType(t EntityType) bool {
	if len(f.EntityTypes) == 0 {
		return true
	}
	for _, allowed := range f.EntityTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

// MatchesPosition - фильтр для обновления положения
func (f *SubscriptionFilter) MatchesPosition(p *Position) bool {
	return f.MatchesEntity(p.EntityID, p.EntityType, p.Latitude, p.Longitude)
}

// MatchesEvent - фильтр для события геозоны
func (f *SubscriptionFilter) MatchesEvent(e *GeofenceEvent) bool {
	return f.MatchesEntity(e.EntityID, e.EntityType, e.Latitude, e.Longitude)
}
