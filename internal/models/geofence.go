package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shenikar/fleet_location_core/internal/geo"
)

type GeofenceType string

const (
	GeofenceCircle   GeofenceType = "circle"
	GeofencePolygon  GeofenceType = "polygon"
	GeofenceCorridor GeofenceType = "corridor"
)

// Geometry - закрытый набор форм геозоны. Реализации есть только в этом пакете.
type Geometry interface {
	Type() GeofenceType
	Validate() error
	// Contains - проверка попадания точки, выполняемая в процессе
	Contains(lat, lon float64) bool
	Bounds() geo.Bounds
	isGeometry()
}

// CircleGeometry - круг с центром и радиусом
type CircleGeometry struct {
	Center       geo.LatLng `json:"center"`
	RadiusMeters float64    `json:"radius_meters"`
}

func (CircleGeometry) Type() GeofenceType { return GeofenceCircle }
func (CircleGeometry) isGeometry()        {}

func (g CircleGeometry) Validate() error {
	if !geo.ValidCoordinates(g.Center.Lat, g.Center.Lon) {
		return fmt.Errorf("%w: circle center out of range", ErrValidation)
	}
	if g.RadiusMeters <= 0 {
		return fmt.Errorf("%w: circle radius must be positive", ErrValidation)
	}
	return nil
}

func (g CircleGeometry) Contains(lat, lon float64) bool {
	return geo.DistanceMeters(g.Center.Lat, g.Center.Lon, lat, lon) <= g.RadiusMeters
}

func (g CircleGeometry) Bounds() geo.Bounds {
	return geo.BoundsOf([]geo.LatLng{g.Center}).Expand(g.RadiusMeters)
}

// PolygonGeometry - упорядоченный список вершин
type PolygonGeometry struct {
	Vertices []geo.LatLng `json:"vertices"`
}

func (PolygonGeometry) Type() GeofenceType { return GeofencePolygon }
func (PolygonGeometry) isGeometry()        {}

func (g PolygonGeometry) Validate() error {
	if len(g.Vertices) < 3 {
		return fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrValidation, len(g.Vertices))
	}
	for i, v := range g.Vertices {
		if !geo.ValidCoordinates(v.Lat, v.Lon) {
			return fmt.Errorf("%w: polygon vertex %d out of range", ErrValidation, i)
		}
	}
	return nil
}

func (g PolygonGeometry) Contains(lat, lon float64) bool {
	return geo.PointInPolygon(geo.LatLng{Lat: lat, Lon: lon}, g.Vertices)
}

func (g PolygonGeometry) Bounds() geo.Bounds {
	return geo.BoundsOf(g.Vertices)
}

// CorridorGeometry - коридор заданной ширины вдоль осевой линии
type CorridorGeometry struct {
	Centerline  []geo.LatLng `json:"centerline"`
	WidthMeters float64      `json:"width_meters"`
}

func (CorridorGeometry) Type() GeofenceType { return GeofenceCorridor }
func (CorridorGeometry) isGeometry()        {}

func (g CorridorGeometry) Validate() error {
	if len(g.Centerline) < 2 {
		return fmt.Errorf("%w: corridor needs at least 2 centerline points, got %d", ErrValidation, len(g.Centerline))
	}
	for i, v := range g.Centerline {
		if !geo.ValidCoordinates(v.Lat, v.Lon) {
			return fmt.Errorf("%w: corridor point %d out of range", ErrValidation, i)
		}
	}
	if g.WidthMeters <= 0 {
		return fmt.Errorf("%w: corridor width must be positive", ErrValidation)
	}
	return nil
}

// Contains - точка не дальше половины ширины от осевой линии
func (g CorridorGeometry) Contains(lat, lon float64) bool {
	return geo.DistanceToPolylineMeters(geo.LatLng{Lat: lat, Lon: lon}, g.Centerline) <= g.WidthMeters/2
}

func (g CorridorGeometry) Bounds() geo.Bounds {
	return geo.BoundsOf(g.Centerline).Expand(g.WidthMeters / 2)
}

// Geofence - именованная географическая зона
type Geofence struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id,omitempty"`
	Geometry   Geometry   `json:"-"`
	IsActive   bool       `json:"is_active"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// GeometryErr - геометрию из хранилища не удалось собрать
	GeometryErr error `json:"-"`
}

// Type возвращает тип геометрии
func (g *Geofence) Type() GeofenceType {
	if g.Geometry == nil {
		return ""
	}
	return g.Geometry.Type()
}

// Validate проверяет геометрию и окно действия
func (g *Geofence) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("%w: geofence name is required", ErrValidation)
	}
	if !g.EntityType.Valid() {
		return fmt.Errorf("%w: unknown entity type %q", ErrValidation, g.EntityType)
	}
	if g.GeometryErr != nil {
		return fmt.Errorf("geofence %s: %w", g.ID, g.GeometryErr)
	}
	if g.Geometry == nil {
		return fmt.Errorf("%w: geofence %s has no geometry", ErrValidation, g.ID)
	}
	if g.StartsAt != nil && g.EndsAt != nil && g.EndsAt.Before(*g.StartsAt) {
		return fmt.Errorf("%w: geofence window ends before it starts", ErrValidation)
	}
	return g.Geometry.Validate()
}

// ActiveAt - зона активна и момент t попадает в окно действия
func (g *Geofence) ActiveAt(t time.Time) bool {
	if !g.IsActive {
		return false
	}
	if g.StartsAt != nil && t.Before(*g.StartsAt) {
		return false
	}
	if g.EndsAt != nil && t.After(*g.EndsAt) {
		return false
	}
	return true
}

// AppliesTo - зона относится к сущности (тип и необязательная привязка к id)
func (g *Geofence) AppliesTo(entityID string, entityType EntityType) bool {
	if g.EntityType != entityType {
		return false
	}
	return g.EntityID == "" || g.EntityID == entityID
}

// geofenceJSON - плоское представление для API и кеша
type geofenceJSON struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	GeofenceType GeofenceType `json:"geofence_type"`
	EntityType   EntityType   `json:"entity_type"`
	EntityID     string       `json:"entity_id,omitempty"`
	Center       *geo.LatLng  `json:"center,omitempty"`
	RadiusMeters float64      `json:"radius_meters,omitempty"`
	Vertices     []geo.LatLng `json:"vertices,omitempty"`
	Centerline   []geo.LatLng `json:"centerline,omitempty"`
	WidthMeters  float64      `json:"width_meters,omitempty"`
	IsActive     bool         `json:"is_active"`
	StartsAt     *time.Time   `json:"starts_at,omitempty"`
	EndsAt       *time.Time   `json:"ends_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (g Geofence) MarshalJSON() ([]byte, error) {
	out := geofenceJSON{
		ID:         g.ID,
		Name:       g.Name,
		EntityType: g.EntityType,
		EntityID:   g.EntityID,
		IsActive:   g.IsActive,
		StartsAt:   g.StartsAt,
		EndsAt:     g.EndsAt,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
	switch v := g.Geometry.(type) {
	case CircleGeometry:
		out.GeofenceType = GeofenceCircle
		center := v.Center
		out.Center = &center
		out.RadiusMeters = v.RadiusMeters
	case PolygonGeometry:
		out.GeofenceType = GeofencePolygon
		out.Vertices = v.Vertices
	case CorridorGeometry:
		out.GeofenceType = GeofenceCorridor
		out.Centerline = v.Centerline
		out.WidthMeters = v.WidthMeters
	}
	return json.Marshal(out)
}

func (g *Geofence) UnmarshalJSON(data []byte) error {
	var in geofenceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	geometry, err := NewGeometry(in.GeofenceType, in.Center, in.RadiusMeters, in.Vertices, in.Centerline, in.WidthMeters)
	if err != nil {
		return err
	}
	*g = Geofence{
		ID:         in.ID,
		Name:       in.Name,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		Geometry:   geometry,
		IsActive:   in.IsActive,
		StartsAt:   in.StartsAt,
		EndsAt:     in.EndsAt,
		CreatedAt:  in.CreatedAt,
		UpdatedAt:  in.UpdatedAt,
	}
	return nil
}

// NewGeometry собирает геометрию нужного типа из плоских полей и сразу ее проверяет
func NewGeometry(t GeofenceType, center *geo.LatLng, radius float64, vertices, centerline []geo.LatLng, width float64) (Geometry, error) {
	var g Geometry
	switch t {
	case GeofenceCircle:
		if center == nil {
			return nil, fmt.Errorf("%w: circle geofence requires a center", ErrValidation)
		}
		g = CircleGeometry{Center: *center, RadiusMeters: radius}
	case GeofencePolygon:
		g = PolygonGeometry{Vertices: vertices}
	case GeofenceCorridor:
		g = CorridorGeometry{Centerline: centerline, WidthMeters: width}
	default:
		return nil, fmt.Errorf("%w: unknown geofence type %q", ErrValidation, t)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// GeofenceFilter - фильтр поиска зон-кандидатов
type GeofenceFilter struct {
	EntityType EntityType
	EntityID   string
	At         time.Time
}

type GeofenceEventType string

const (
	GeofenceEnter GeofenceEventType = "enter"
	GeofenceExit  GeofenceEventType = "exit"
	GeofenceDwell GeofenceEventType = "dwell"
)

// GeofenceEvent - зафиксированный переход, не изменяется после создания
type GeofenceEvent struct {
	ID         uuid.UUID         `json:"event_id"`
	GeofenceID uuid.UUID         `json:"geofence_id"`
	EntityID   string            `json:"entity_id"`
	EntityType EntityType        `json:"entity_type"`
	EventType  GeofenceEventType `json:"event_type"`
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

// GeofenceState - эфемерное состояние пары (сущность, зона)
type GeofenceState struct {
	IsInside      bool              `json:"is_inside"`
	Since         time.Time         `json:"since"`
	LastEventType GeofenceEventType `json:"last_event_type,omitempty"`
	LastDwellAt   *time.Time        `json:"last_dwell_at,omitempty"`
	// ObservedAt - время последнего учтенного положения, более старые игнорируются
	ObservedAt time.Time `json:"observed_at"`
}

// StateFromEvent восстанавливает состояние по последнему сохраненному событию
func StateFromEvent(e *GeofenceEvent) *GeofenceState {
	if e == nil {
		return &GeofenceState{}
	}
	st := &GeofenceState{
		IsInside:      e.EventType == GeofenceEnter || e.EventType == GeofenceDwell,
		Since:         e.Timestamp,
		LastEventType: e.EventType,
		ObservedAt:    e.Timestamp,
	}
	if e.EventType == GeofenceDwell {
		ts := e.Timestamp
		st.LastDwellAt = &ts
		if enteredAt, ok := e.Metadata["entered_at"].(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, enteredAt); err == nil {
				st.Since = t
			}
		}
	}
	return st
}
