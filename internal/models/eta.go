package models

import (
	"time"

	"github.com/shenikar/fleet_location_core/internal/geo"
)

type LoadStatus string

const (
	LoadInTransit LoadStatus = "in_transit"
	LoadLoaded    LoadStatus = "loaded"
	LoadAtPickup  LoadStatus = "at_pickup"
	LoadAtDropoff LoadStatus = "at_dropoff"
	LoadDelayed   LoadStatus = "delayed"
	LoadException LoadStatus = "exception"
)

// ETARequest - запрос оценки времени прибытия
type ETARequest struct {
	EntityID    string       `json:"entity_id" validate:"required"`
	EntityType  EntityType   `json:"entity_type" validate:"required,oneof=driver vehicle load smart_hub"`
	Destination geo.LatLng   `json:"destination"`
	Route       []geo.LatLng `json:"route,omitempty"`
	LoadStatus  LoadStatus   `json:"load_status,omitempty"`
}

// SegmentETA - оценка по одному участку маршрута
type SegmentETA struct {
	From            geo.LatLng `json:"from"`
	To              geo.LatLng `json:"to"`
	DistanceKm      float64    `json:"distance_km"`
	TrafficFactor   float64    `json:"traffic_factor"`
	DurationMinutes float64    `json:"duration_minutes"`
}

// ETAFactors - какие сигналы участвовали в расчете
type ETAFactors struct {
	CurrentSpeedKmh      float64    `json:"current_speed_kmh"`
	HistoricalSpeedKmh   *float64   `json:"historical_speed_kmh,omitempty"`
	EffectiveSpeedKmh    float64    `json:"effective_speed_kmh"`
	TrafficFactor        *float64   `json:"traffic_factor,omitempty"`
	DriverBehaviorFactor *float64   `json:"driver_behavior_factor,omitempty"`
	UsedRoute            bool       `json:"used_route"`
	UsedDefaultSpeed     bool       `json:"used_default_speed"`
	LoadStatus           LoadStatus `json:"load_status,omitempty"`
}

// ETAResult - оценка времени прибытия
type ETAResult struct {
	EntityID                 string       `json:"entity_id"`
	EntityType               EntityType   `json:"entity_type"`
	Destination              geo.LatLng   `json:"destination"`
	ArrivalTime              time.Time    `json:"arrival_time"`
	EstimatedDurationMinutes float64      `json:"estimated_duration_minutes"`
	RemainingDistanceKm      float64      `json:"remaining_distance_km"`
	Confidence               float64      `json:"confidence"`
	Factors                  ETAFactors   `json:"factors"`
	Segments                 []SegmentETA `json:"segments,omitempty"`
	CalculatedAt             time.Time    `json:"calculated_at"`
}

// EntityETA - результат для одной сущности в пакетном запросе
type EntityETA struct {
	EntityRef
	Result *ETAResult `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// DestinationETA - результат для одной точки назначения
type DestinationETA struct {
	Destination geo.LatLng `json:"destination"`
	Result      *ETAResult `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}
