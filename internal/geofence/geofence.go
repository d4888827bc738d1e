package geofence

import "math"

const earthRadiusMeters = 6371000

type Point struct {
	Latitude  float64
	Longitude float64
}

type Zone struct {
	Center       Point
	RadiusMeters float64
}

type Result struct {
	Inside         bool
	DistanceMeters float64
}

// Valid reports whether the point is a usable WGS84 coordinate.
// Callers must reject invalid points before evaluating.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Distance returns the great-circle distance between two points in
// meters, via the haversine formula.
func Distance(a, b Point) float64 {
	dLat := deg2rad(a.Latitude - b.Latitude)
	dLng := deg2rad(a.Longitude - b.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(b.Latitude))*math.Cos(deg2rad(a.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Evaluate decides whether the point falls inside the zone. The raw
// distance is returned either way so callers can report "estás a N
// metros" on rejection.
func Evaluate(p Point, z Zone) Result {
	d := Distance(p, z.Center)
	return Result{
		Inside:         d <= z.RadiusMeters,
		DistanceMeters: d,
	}
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}
