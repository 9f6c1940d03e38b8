package flight

import (
	"math"

	"travelglobe/pkg/geo"
	"travelglobe/pkg/model"
)

const (
	MinFlightSpeed = 0.005
	MaxFlightSpeed = 0.02
	// ReferenceDistanceKm is roughly the longest practical great-circle hop.
	ReferenceDistanceKm = 15000.0

	// BankAngleFactor caps the bank angle in degrees.
	BankAngleFactor = 30.0
	bankScale       = 0.5
	// MaxPitch caps the pitch angle in degrees.
	MaxPitch = 15.0
	// PitchDistanceProxy scales altitude deltas into a plausible pitch range.
	PitchDistanceProxy = 0.1
)

// Speed maps leg distance to normalized progress-per-tick. Longer hops animate faster.
func Speed(distanceKm float64) float64 {
	n := clamp(distanceKm/ReferenceDistanceKm, 0, 1)
	return MinFlightSpeed + (MaxFlightSpeed-MinFlightSpeed)*n
}

// Rotation derives heading, pitch and bank from two consecutive samples and the
// bearing of the previous frame.
func Rotation(current, next model.FlightPoint, prevBearing float64) model.Rotation {
	heading := geo.Bearing(
		geo.Point{Lat: current.Lat, Lon: current.Lng},
		geo.Point{Lat: next.Lat, Lon: next.Lng},
	)

	bank := clamp(geo.NormalizeAngle(heading-prevBearing)*bankScale, -BankAngleFactor, BankAngleFactor)

	pitch := geo.ToDegrees(math.Atan2(next.Altitude-current.Altitude, PitchDistanceProxy))
	pitch = clamp(pitch, -MaxPitch, MaxPitch)

	return model.Rotation{Heading: heading, Pitch: pitch, Bank: bank}
}

// SmoothEaseInOut is the cubic smoothstep t²(3-2t).
func SmoothEaseInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
