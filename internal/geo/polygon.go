package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// PointInPolygon проверяет попадание точки в полигон методом трассировки луча.
// Полигон считается замкнутым, последнюю вершину повторять не нужно.
func PointInPolygon(p LatLng, polygon []LatLng) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		vi, vj := polygon[i], polygon[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) {
			crossLon := (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat) + vi.Lon
			if p.Lon < crossLon {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// DistanceToPolylineMeters возвращает минимальное расстояние от точки до ломаной
func DistanceToPolylineMeters(p LatLng, line []LatLng) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return DistanceMeters(p.Lat, p.Lon, line[0].Lat, line[0].Lon)
	}

	x := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		a := s2.PointFromLatLng(s2.LatLngFromDegrees(line[i-1].Lat, line[i-1].Lon))
		b := s2.PointFromLatLng(s2.LatLngFromDegrees(line[i].Lat, line[i].Lon))
		if d := s2.DistanceFromSegment(x, a, b).Radians() * EarthRadiusMeters; d < best {
			best = d
		}
	}
	return best
}

// ValidCoordinates проверяет диапазоны широты и долготы
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Bounds - ограничивающий прямоугольник в градусах
type Bounds struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// BoundsOf строит прямоугольник по точкам
func BoundsOf(points []LatLng) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{MinLat: points[0].Lat, MaxLat: points[0].Lat, MinLon: points[0].Lon, MaxLon: points[0].Lon}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}
	return b
}

// Expand расширяет прямоугольник на meters во все стороны. Антимеридиан не обрабатывается.
func (b Bounds) Expand(meters float64) Bounds {
	dLat := meters / metersPerDegreeLat
	// долгота сжимается к полюсам, берем широту с худшим косинусом
	maxAbsLat := math.Min(math.Max(math.Abs(b.MinLat), math.Abs(b.MaxLat)), 89.9)
	dLon := meters / (metersPerDegreeLat * math.Cos(maxAbsLat*math.Pi/180))
	return Bounds{
		MinLat: math.Max(b.MinLat-dLat, -90),
		MaxLat: math.Min(b.MaxLat+dLat, 90),
		MinLon: math.Max(b.MinLon-dLon, -180),
		MaxLon: math.Min(b.MaxLon+dLon, 180),
	}
}

// Contains - точка внутри прямоугольника, границы включены
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Intersects - прямоугольники пересекаются
func (b Bounds) Intersects(o Bounds) bool {
	return b.MaxLat >= o.MinLat && b.MinLat <= o.MaxLat && b.MaxLon >= o.MinLon && b.MinLon <= o.MaxLon
}
