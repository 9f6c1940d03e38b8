package flight

import (
	"math"

	"travelglobe/pkg/geo"
	"travelglobe/pkg/model"
)

const (
	// LookAheadStep is how far past the current progress the camera samples.
	LookAheadStep = 0.1
	// ApproachCameraFloor is the minimum camera altitude in the first half of a leg.
	ApproachCameraFloor = 0.15
	// ArrivalCameraAltitude is the fixed camera altitude in the second half of a leg.
	ArrivalCameraAltitude = 0.12
)

// OptimalCameraPosition leans the camera toward the target while approaching and
// settles it onto the target once progress reaches 0.5. The altitude snaps from the
// approach floor to the arrival altitude at exactly 0.5.
func OptimalCameraPosition(airplane, target model.FlightPoint, progress float64) model.CameraPosition {
	if progress >= 0.5 {
		return model.CameraPosition{Lat: target.Lat, Lng: target.Lng, Altitude: ArrivalCameraAltitude}
	}

	ahead := InterpolateGreatCircle(
		geo.Point{Lat: airplane.Lat, Lon: airplane.Lng},
		geo.Point{Lat: target.Lat, Lon: target.Lng},
		math.Min(progress+LookAheadStep, 1),
	)
	return model.CameraPosition{
		Lat:      ahead.Lat,
		Lng:      ahead.Lng,
		Altitude: math.Max(ApproachCameraFloor, ahead.Altitude),
	}
}
