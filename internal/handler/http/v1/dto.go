package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
)

// PositionUpdateRequest DTO для обновления положения
// @Description DTO для обновления положения. Широта и долгота обязательны.
type PositionUpdateRequest struct {
	EntityID   string     `json:"entity_id" validate:"required"`
	EntityType string     `json:"entity_type" validate:"required,oneof=driver vehicle load smart_hub"`
	Latitude   *float64   `json:"latitude" validate:"required,latitude"`
	Longitude  *float64   `json:"longitude" validate:"required,longitude"`
	Heading    *float64   `json:"heading,omitempty" validate:"omitempty,gte=0,lt=360"`
	Speed      *float64   `json:"speed,omitempty" validate:"omitempty,gte=0"`
	Accuracy   *float64   `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	Source     string     `json:"source,omitempty" validate:"omitempty,oneof=mobile_app eld gps_device manual system"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// BulkPositionUpdateRequest DTO для пакетного обновления
// @Description DTO для пакетного обновления положений
type BulkPositionUpdateRequest struct {
	Updates []PositionUpdateRequest `json:"updates" validate:"required,min=1,max=1000,dive"`
}

// EntityRefsRequest DTO со списком сущностей
// @Description Список сущностей. Тип можно не указывать.
type EntityRefsRequest struct {
	Entities []models.EntityRef `json:"entities" validate:"required,min=1,max=500,dive"`
}

// PositionResponse DTO текущего или исторического положения
// @Description DTO положения сущности
type PositionResponse struct {
	EntityID   string    `json:"entity_id"`
	EntityType string    `json:"entity_type"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Heading    float64   `json:"heading"`
	Speed      float64   `json:"speed"`
	Accuracy   float64   `json:"accuracy"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

// NearbyEntityResponse DTO найденной рядом сущности
// @Description Положение и расстояние до точки запроса в милях
type NearbyEntityResponse struct {
	PositionResponse
	DistanceMiles float64 `json:"distance_miles"`
}

// GeofenceEventResponse DTO события геозоны
// @Description DTO события геозоны
type GeofenceEventResponse struct {
	EventID    uuid.UUID      `json:"event_id"`
	GeofenceID uuid.UUID      `json:"geofence_id"`
	EntityID   string         `json:"entity_id"`
	EntityType string         `json:"entity_type"`
	EventType  string         `json:"event_type"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// PositionUpdateResponse DTO результата записи
// @Description Сохраненное положение, признак архивирования и события геозон
type PositionUpdateResponse struct {
	Position PositionResponse        `json:"position"`
	Archived bool                    `json:"archived"`
	Events   []GeofenceEventResponse `json:"events"`
}

// EnsurePositionResponse DTO ответа "создать, если нет"
// @Description Текущее положение и признак того, что оно только что создано
type EnsurePositionResponse struct {
	Position PositionResponse `json:"position"`
	Created  bool             `json:"created"`
}

// DistanceResponse DTO расстояния
// @Description Расстояние в километрах
type DistanceResponse struct {
	DistanceKm float64 `json:"distance_km"`
}

// AverageSpeedResponse DTO средней скорости
// @Description Средняя скорость за окно, км/ч
type AverageSpeedResponse struct {
	SpeedKmh      float64 `json:"speed_kmh"`
	WindowSeconds float64 `json:"window_seconds"`
}

// ETARequest DTO запроса ETA
// @Description Сущность, точка назначения и необязательный маршрут
type ETARequest struct {
	EntityID    string       `json:"entity_id" validate:"required"`
	EntityType  string       `json:"entity_type" validate:"required,oneof=driver vehicle load smart_hub"`
	Destination geo.LatLng   `json:"destination"`
	Route       []geo.LatLng `json:"route,omitempty" validate:"max=1000"`
	LoadStatus  string       `json:"load_status,omitempty" validate:"omitempty,oneof=in_transit loaded at_pickup at_dropoff delayed exception"`
}

// MultiEntityETARequest DTO ETA для нескольких сущностей
// @Description Несколько сущностей, одна точка назначения
type MultiEntityETARequest struct {
	Entities    []models.EntityRef `json:"entities" validate:"required,min=1,max=100,dive"`
	Destination geo.LatLng         `json:"destination"`
}

// MultiDestinationETARequest DTO ETA до нескольких точек
// @Description Одна сущность, несколько точек назначения
type MultiDestinationETARequest struct {
	EntityID     string       `json:"entity_id" validate:"required"`
	EntityType   string       `json:"entity_type" validate:"required,oneof=driver vehicle load smart_hub"`
	Destinations []geo.LatLng `json:"destinations" validate:"required,min=1,max=100"`
}

// RemainingDistanceResponse DTO оставшегося расстояния
// @Description Оставшееся расстояние в километрах
type RemainingDistanceResponse struct {
	DistanceKm float64 `json:"distance_km"`
}

// InvalidateResponse DTO сброса кеша
// @Description Число удаленных ключей
type InvalidateResponse struct {
	Deleted int `json:"deleted"`
}

// CreateGeofenceRequest DTO для создания геозоны
// @Description Геозона одного из типов circle, polygon, corridor
type CreateGeofenceRequest struct {
	Name         string       `json:"name" validate:"required,min=2,max=255"`
	GeofenceType string       `json:"geofence_type" validate:"required,oneof=circle polygon corridor"`
	EntityType   string       `json:"entity_type" validate:"required,oneof=driver vehicle load smart_hub"`
	EntityID     string       `json:"entity_id,omitempty"`
	Center       *geo.LatLng  `json:"center,omitempty"`
	RadiusMeters float64      `json:"radius_meters,omitempty" validate:"gte=0"`
	Vertices     []geo.LatLng `json:"vertices,omitempty"`
	Centerline   []geo.LatLng `json:"centerline,omitempty"`
	WidthMeters  float64      `json:"width_meters,omitempty" validate:"gte=0"`
	StartsAt     *time.Time   `json:"starts_at,omitempty"`
	EndsAt       *time.Time   `json:"ends_at,omitempty"`
}

// GeofenceResponse DTO геозоны
// @Description DTO геозоны. Заполнены только поля ее типа.
type GeofenceResponse struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	GeofenceType string       `json:"geofence_type"`
	EntityType   string       `json:"entity_type"`
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

// GeofenceCheckRequest DTO для проверки точки
// @Description Точка и сущность, для которой ищутся содержащие ее зоны
type GeofenceCheckRequest struct {
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`
	EntityType string  `json:"entity_type" validate:"required,oneof=driver vehicle load smart_hub"`
	EntityID   string  `json:"entity_id,omitempty"`
}

// HealthResponse DTO состояния сервиса
// @Description Общий статус и готовность потребителей
type HealthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components,omitempty"`
}
