package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(34.05, -118.24, 34.05, -118.24))

	// Лос-Анджелес - Сан-Франциско, около 559 км
	d := DistanceKm(34.0522, -118.2437, 37.7749, -122.4194)
	assert.InDelta(t, 559, d, 5)

	// 0.001 градуса широты ~ 111 м
	assert.InDelta(t, 111.2, DistanceMeters(0, 0, 0.001, 0), 0.5)
}

func TestHeadingDelta(t *testing.T) {
	tests := []struct {
		name   string
		h1, h2 float64
		want   float64
	}{
		{"same", 90, 90, 0},
		{"simple", 10, 40, 30},
		{"wraps around north", 350, 10, 20},
		{"opposite", 0, 180, 180},
		{"reversed order", 270, 80, 170},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, HeadingDelta(tt.h1, tt.h2), 1e-9)
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []LatLng{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

	assert.True(t, PointInPolygon(LatLng{0.5, 0.5}, square))
	assert.False(t, PointInPolygon(LatLng{1.5, 0.5}, square))
	assert.False(t, PointInPolygon(LatLng{0.5, -0.1}, square))

	// вогнутый полигон в форме буквы L
	l := []LatLng{{0, 0}, {0, 2}, {1, 2}, {1, 1}, {2, 1}, {2, 0}}
	assert.True(t, PointInPolygon(LatLng{1.5, 0.5}, l))
	assert.False(t, PointInPolygon(LatLng{1.5, 1.5}, l))

	assert.False(t, PointInPolygon(LatLng{0, 0}, []LatLng{{0, 0}, {1, 1}}))
}

func TestDistanceToPolylineMeters(t *testing.T) {
	line := []LatLng{{0, 0}, {0, 1}}

	// точка над серединой отрезка, 0.001 градуса к северу
	assert.InDelta(t, 111.2, DistanceToPolylineMeters(LatLng{0.001, 0.5}, line), 0.5)
	// за концом отрезка расстояние считается до ближайшей вершины
	assert.InDelta(t, DistanceMeters(0, 1.01, 0, 1), DistanceToPolylineMeters(LatLng{0, 1.01}, line), 0.5)
	assert.InDelta(t, DistanceMeters(0, 0, 1, 1), DistanceToPolylineMeters(LatLng{1, 1}, []LatLng{{0, 0}}), 1e-6)
}

func TestPathHelpers(t *testing.T) {
	route := []LatLng{{0, 0}, {0, 1}, {0, 2}}
	assert.InDelta(t, 2*DistanceKm(0, 0, 0, 1), PathLengthKm(route), 1e-9)
	assert.Equal(t, 1, ClosestPointIndex(LatLng{0.1, 1.2}, route))
	assert.Equal(t, -1, ClosestPointIndex(LatLng{0, 0}, nil))
	assert.InDelta(t, 16.09344, MilesToKm(10), 1e-9)
	assert.InDelta(t, 10, KmToMiles(16.09344), 1e-9)
}
