package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used by all spherical calculations.
const EarthRadiusKm = 6371.0

// Point represents a geographic coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// ToDegrees converts radians to degrees.
func ToDegrees(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

// DistanceKm calculates the Haversine distance between two points in kilometers.
func DistanceKm(p1, p2 Point) float64 {
	dLat := ToRadians(p2.Lat - p1.Lat)
	dLon := ToRadians(p2.Lon - p1.Lon)
	lat1 := ToRadians(p1.Lat)
	lat2 := ToRadians(p2.Lat)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	// Rounding pushes a just past 1 for exact antipodes
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Bearing calculates the initial bearing (forward azimuth) from p1 to p2 in degrees [0, 360).
// Coincident points yield 0.
func Bearing(p1, p2 Point) float64 {
	if p1 == p2 {
		return 0
	}
	lat1 := ToRadians(p1.Lat)
	lat2 := ToRadians(p2.Lat)
	dLon := ToRadians(p2.Lon - p1.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Atan2(y, x)

	b := math.Mod(ToDegrees(brng)+360.0, 360.0)
	if b >= 360.0 {
		// Mod can round up to exactly 360 for tiny negative inputs
		return 0
	}
	return b
}

// NormalizeAngle wraps an angle difference into [-180, 180).
func NormalizeAngle(angleDeg float64) float64 {
	a := math.Mod(angleDeg+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}

// Valid reports whether the point lies within the legal latitude/longitude ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Orb returns the point in orb's [lon, lat] order.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// LineString builds an orb.LineString from a sequence of points.
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, p.Orb())
	}
	return ls
}
