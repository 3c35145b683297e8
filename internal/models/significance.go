package models

import (
	"time"

	"github.com/shenikar/fleet_location_core/internal/geo"
)

// SignificanceThresholds определяет, когда новое положение нужно архивировать
type SignificanceThresholds struct {
	DistanceKm     float64       `yaml:"distance_km" validate:"gt=0"`
	Interval       time.Duration `yaml:"interval" validate:"gt=0"`
	HeadingDegrees float64       `yaml:"heading_degrees" validate:"gt=0,lte=180"`
}

func DefaultSignificanceThresholds() SignificanceThresholds {
	return SignificanceThresholds{
		DistanceKm:     0.1,
		Interval:       5 * time.Minute,
		HeadingDegrees: 30,
	}
}

// IsSignificant сравнивает новое положение с сохраненным.
// Без сохраненного положения архивировать нечего.
func (t SignificanceThresholds) IsSignificant(prev, next *Position) bool {
	if prev == nil || next == nil {
		return false
	}
	if geo.DistanceKm(prev.Latitude, prev.Longitude, next.Latitude, next.Longitude) > t.DistanceKm {
		return true
	}
	if next.Timestamp.Sub(prev.Timestamp) > t.Interval {
		return true
	}
	return geo.HeadingDelta(prev.Heading, next.Heading) > t.HeadingDegrees
}
