// Package geo provides basic great-circle math for geographic points.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6371000.0

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance calculates the distance between two points in meters using
// the Haversine formula.
func Distance(a, b Point) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Displace moves a point by the given east/north offsets in meters
// using a local flat-earth approximation, adequate for the short
// distances plume tracing works over.
func Displace(p Point, eastMeters, northMeters float64) Point {
	latRad := p.Lat * math.Pi / 180

	dLat := northMeters / EarthRadiusMeters * 180 / math.Pi
	dLon := eastMeters / (EarthRadiusMeters * math.Cos(latRad)) * 180 / math.Pi

	return Point{Lat: p.Lat + dLat, Lon: p.Lon + dLon}
}

// Valid reports whether the point is within geographic bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
