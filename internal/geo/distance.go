package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const (
	EarthRadiusKm     = 6371.0
	EarthRadiusMeters = EarthRadiusKm * 1000

	KmPerMile = 1.609344

	metersPerDegreeLat = EarthRadiusMeters * math.Pi / 180
)

// LatLng - точка в градусах
type LatLng struct {
	Lat float64 `json:"latitude" yaml:"latitude"`
	Lon float64 `json:"longitude" yaml:"longitude"`
}

// DistanceKm возвращает расстояние по большому кругу между двумя точками в километрах
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// DistanceMeters - то же самое, но в метрах
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceKm(lat1, lon1, lat2, lon2) * 1000
}

// Distance считает расстояние между двумя LatLng в километрах
func Distance(a, b LatLng) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

// HeadingDelta возвращает угол между двумя курсами, приведенный к [0, 180]
func HeadingDelta(h1, h2 float64) float64 {
	d := math.Mod(math.Abs(h1-h2), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// PathLengthKm - суммарная длина ломаной в километрах
func PathLengthKm(points []LatLng) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// ClosestPointIndex возвращает индекс ближайшей к p точки маршрута, -1 для пустого маршрута
func ClosestPointIndex(p LatLng, points []LatLng) int {
	best := -1
	bestDist := math.MaxFloat64
	for i, pt := range points {
		if d := Distance(p, pt); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func MilesToKm(miles float64) float64 {
	return miles * KmPerMile
}

func KmToMiles(km float64) float64 {
	return km / KmPerMile
}
