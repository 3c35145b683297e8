package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrStaleUpdate = fmt.Errorf("%w: position is older than the stored one", ErrValidation)
)

type EntityType string

const (
	EntityDriver   EntityType = "driver"
	EntityVehicle  EntityType = "vehicle"
	EntityLoad     EntityType = "load"
	EntitySmartHub EntityType = "smart_hub"
)

// EntityTypes - все известные типы сущностей
func EntityTypes() []EntityType {
	return []EntityType{EntityDriver, EntityVehicle, EntityLoad, EntitySmartHub}
}

// Valid проверяет, что тип сущности известен
func (t EntityType) Valid() bool {
	switch t {
	case EntityDriver, EntityVehicle, EntityLoad, EntitySmartHub:
		return true
	}
	return false
}

type Source string

const (
	SourceMobileApp Source = "mobile_app"
	SourceELD       Source = "eld"
	SourceGPSDevice Source = "gps_device"
	SourceManual    Source = "manual"
	SourceSystem    Source = "system"
)

// Position - текущее или историческое положение сущности
type Position struct {
	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Heading    float64    `json:"heading"`
	Speed      float64    `json:"speed"`
	Accuracy   float64    `json:"accuracy"`
	Source     Source     `json:"source"`
	Timestamp  time.Time  `json:"timestamp"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

// Key возвращает ключ сущности
func (p *Position) Key() EntityRef {
	return EntityRef{EntityID: p.EntityID, EntityType: p.EntityType}
}

// PositionUpdate - входящее обновление положения.
// Широта и долгота указатели, чтобы отличать отсутствующее значение от нуля.
type PositionUpdate struct {
	EntityID   string     `json:"entity_id" validate:"required"`
	EntityType EntityType `json:"entity_type" validate:"required,oneof=driver vehicle load smart_hub"`
	Latitude   *float64   `json:"latitude" validate:"required,latitude"`
	Longitude  *float64   `json:"longitude" validate:"required,longitude"`
	Heading    *float64   `json:"heading,omitempty" validate:"omitempty,gte=0,lt=360"`
	Speed      *float64   `json:"speed,omitempty" validate:"omitempty,gte=0"`
	Accuracy   *float64   `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	Source     Source     `json:"source,omitempty" validate:"omitempty,oneof=mobile_app eld gps_device manual system"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

var validate = validator.New()

// Validate проверяет обязательные поля и диапазоны, ошибка оборачивает ErrValidation
func (u *PositionUpdate) Validate() error {
	if u == nil {
		return fmt.Errorf("%w: empty update", ErrValidation)
	}
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ToPosition нормализует обновление: подставляет источник и время по умолчанию
func (u *PositionUpdate) ToPosition(now time.Time) *Position {
	pos := &Position{
		EntityID:   u.EntityID,
		EntityType: u.EntityType,
		Latitude:   *u.Latitude,
		Longitude:  *u.Longitude,
		Source:     u.Source,
		Timestamp:  now,
	}
	if u.Heading != nil {
		pos.Heading = *u.Heading
	}
	if u.Speed != nil {
		pos.Speed = *u.Speed
	}
	if u.Accuracy != nil {
		pos.Accuracy = *u.Accuracy
	}
	if pos.Source == "" {
		pos.Source = SourceMobileApp
	}
	if u.Timestamp != nil && !u.Timestamp.IsZero() {
		pos.Timestamp = *u.Timestamp
	}
	return pos
}

// NewPositionUpdate - удобный конструктор для обязательных полей
func NewPositionUpdate(entityID string, entityType EntityType, lat, lon float64) *PositionUpdate {
	return &PositionUpdate{
		EntityID:   entityID,
		EntityType: entityType,
		Latitude:   &lat,
		Longitude:  &lon,
	}
}

type EntityRef struct {
	EntityID   string     `json:"entity_id" validate:"required"`
	EntityType EntityType `json:"entity_type,omitempty"`
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%s", r.EntityType, r.EntityID)
}

// EntityPosition - позиция с расстоянием до точки запроса
type EntityPosition struct {
	Position
	DistanceMiles float64 `json:"distance_miles"`
}

// NearbyQuery - поиск сущностей в радиусе
type NearbyQuery struct {
	Latitude    float64    `json:"latitude" validate:"latitude"`
	Longitude   float64    `json:"longitude" validate:"longitude"`
	RadiusMiles float64    `json:"radius_miles" validate:"gt=0"`
	EntityType  EntityType `json:"entity_type,omitempty" validate:"omitempty,oneof=driver vehicle load smart_hub"`
	Limit       int        `json:"limit,omitempty" validate:"gte=0"`
}

// HistoryQuery - выборка истории положений
type HistoryQuery struct {
	EntityID   string
	EntityType EntityType
	Start      time.Time
	End        time.Time
	Limit      int
	Offset     int
}

// PositionUpdateResult - результат применения обновления
type PositionUpdateResult struct {
	Position *Position        `json:"position"`
	Archived bool             `json:"archived"`
	Events   []*GeofenceEvent `json:"events"`
}

// Validate проверяет параметры поиска
func (q NearbyQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
