package flight

import (
	"math"

	"github.com/paulmach/orb/geojson"

	"travelglobe/pkg/geo"
	"travelglobe/pkg/model"
)

const (
	// CruisingAltitude is the peak of the synthetic altitude arc.
	CruisingAltitude = 0.02
	// DefaultSegments is the sample count used when none is given.
	DefaultSegments = 50
	// AverageSpeedKm converts distance into duration units.
	AverageSpeedKm = 800.0
	// MinSegmentDuration keeps short hops visible.
	MinSegmentDuration = 2.0

	degenerateEpsilonKm = 1e-9
	antipodalEpsilon    = 1e-12
)

// InterpolateGreatCircle returns the point at fraction progress along the great circle
// from -> to. Progress is not clamped; values outside [0,1] extrapolate along the circle.
// Coincident endpoints return from.
func InterpolateGreatCircle(from, to geo.Point, progress float64) model.FlightPoint {
	alt := CruisingAltitude * math.Sin(progress*math.Pi)

	d := geo.DistanceKm(from, to)
	if d < degenerateEpsilonKm {
		return model.FlightPoint{Lat: from.Lat, Lng: from.Lon, Altitude: alt}
	}

	delta := d / geo.EarthRadiusKm
	sinDelta := math.Sin(delta)
	if math.Abs(sinDelta) < antipodalEpsilon {
		// Antipodal: every great circle qualifies, fall back to a linear blend.
		return model.FlightPoint{
			Lat:      from.Lat + (to.Lat-from.Lat)*progress,
			Lng:      from.Lon + (to.Lon-from.Lon)*progress,
			Altitude: alt,
		}
	}

	a := math.Sin((1-progress)*delta) / sinDelta
	b := math.Sin(progress*delta) / sinDelta

	lat1, lon1 := geo.ToRadians(from.Lat), geo.ToRadians(from.Lon)
	lat2, lon2 := geo.ToRadians(to.Lat), geo.ToRadians(to.Lon)

	x := a*math.Cos(lat1)*math.Cos(lon1) + b*math.Cos(lat2)*math.Cos(lon2)
	y := a*math.Cos(lat1)*math.Sin(lon1) + b*math.Cos(lat2)*math.Sin(lon2)
	z := a*math.Sin(lat1) + b*math.Sin(lat2)

	return model.FlightPoint{
		Lat:      geo.ToDegrees(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Lng:      geo.ToDegrees(math.Atan2(y, x)),
		Altitude: alt,
	}
}

// SegmentDuration estimates traversal time for a leg of the given length.
func SegmentDuration(distanceKm float64) float64 {
	return math.Max(distanceKm/AverageSpeedKm, MinSegmentDuration)
}

// GeneratePath samples the great circle at segments+1 evenly spaced points.
// A segment count below 1 uses DefaultSegments.
func GeneratePath(from, to geo.Point, segments int) model.FlightPath {
	if segments < 1 {
		segments = DefaultSegments
	}

	points := make([]model.FlightPoint, 0, segments+1)
	for i := 0; i <= segments; i++ {
		points = append(points, InterpolateGreatCircle(from, to, float64(i)/float64(segments)))
	}

	distance := geo.DistanceKm(from, to)
	return model.FlightPath{
		Points:   points,
		Distance: distance,
		Duration: SegmentDuration(distance),
		Bearing:  geo.Bearing(from, to),
	}
}

// PathFeature exports a path as a GeoJSON LineString feature.
func PathFeature(p model.FlightPath) *geojson.Feature {
	pts := make([]geo.Point, 0, len(p.Points))
	alts := make([]float64, 0, len(p.Points))
	for _, fp := range p.Points {
		pts = append(pts, geo.Point{Lat: fp.Lat, Lon: fp.Lng})
		alts = append(alts, fp.Altitude)
	}

	f := geojson.NewFeature(geo.LineString(pts))
	f.Properties["distance_km"] = p.Distance
	f.Properties["duration"] = p.Duration
	f.Properties["bearing"] = p.Bearing
	f.Properties["altitudes"] = alts
	return f
}
