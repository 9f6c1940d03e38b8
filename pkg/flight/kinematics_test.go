package flight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"travelglobe/pkg/model"
)

func TestSpeed(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"Zero", 0, MinFlightSpeed},
		{"Half", 7500, (MinFlightSpeed + MaxFlightSpeed) / 2},
		{"Reference", 15000, MaxFlightSpeed},
		{"BeyondReference", 20000, MaxFlightSpeed},
		{"Negative", -50, MinFlightSpeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Speed(tt.distance), 1e-12)
		})
	}

	for d := 0.0; d <= 30000; d += 250 {
		s := Speed(d)
		if s < MinFlightSpeed || s > MaxFlightSpeed {
			t.Fatalf("Speed(%v) = %v out of bounds", d, s)
		}
	}
}

func TestSmoothEaseInOut(t *testing.T) {
	assert.Equal(t, 0.0, SmoothEaseInOut(0))
	assert.Equal(t, 1.0, SmoothEaseInOut(1))
	assert.Equal(t, 0.5, SmoothEaseInOut(0.5))

	prev := SmoothEaseInOut(0)
	for i := 1; i <= 1000; i++ {
		cur := SmoothEaseInOut(float64(i) / 1000)
		if cur < prev {
			t.Fatalf("ease not monotonic at %d: %v < %v", i, cur, prev)
		}
		prev = cur
	}
}

func TestRotation_Heading(t *testing.T) {
	cur := model.FlightPoint{Lat: 0, Lng: 0}
	east := model.FlightPoint{Lat: 0, Lng: 1}

	rot := Rotation(cur, east, 90)
	assert.InDelta(t, 90, rot.Heading, 0.01)
	assert.InDelta(t, 0, rot.Bank, 0.01)
	assert.InDelta(t, 0, rot.Pitch, 1e-9)
}

func TestRotation_Bank(t *testing.T) {
	cur := model.FlightPoint{Lat: 0, Lng: 0}
	east := model.FlightPoint{Lat: 0, Lng: 1}

	tests := []struct {
		name        string
		prevBearing float64
		want        float64
	}{
		{"GentleRight", 70, 10},  // turn +20 -> bank 10
		{"GentleLeft", 110, -10}, // turn -20 -> bank -10
		{"HardRightClamped", 0, 30},
		{"HardLeftClamped", 180, -30},
		{"WrapAround", 350, 30}, // turn +100 across north
		{"Reversal", 270, -30},  // turn of exactly 180 wraps to -180
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rot := Rotation(cur, east, tt.prevBearing)
			assert.InDelta(t, tt.want, rot.Bank, 0.05)
		})
	}
}

func TestRotation_Clamps(t *testing.T) {
	cur := model.FlightPoint{Lat: 10, Lng: 10, Altitude: 0}
	for prev := 0.0; prev < 360; prev += 7.5 {
		for _, next := range []model.FlightPoint{
			{Lat: 11, Lng: 10, Altitude: 5},
			{Lat: 9, Lng: 12, Altitude: -5},
			{Lat: 10, Lng: 9, Altitude: 0.001},
		} {
			rot := Rotation(cur, next, prev)
			if math.Abs(rot.Bank) > BankAngleFactor {
				t.Errorf("bank %v exceeds cap for prev=%v", rot.Bank, prev)
			}
			if math.Abs(rot.Pitch) > MaxPitch {
				t.Errorf("pitch %v exceeds cap", rot.Pitch)
			}
		}
	}
}

func TestRotation_Pitch(t *testing.T) {
	cur := model.FlightPoint{Lat: 0, Lng: 0, Altitude: 0}
	climb := model.FlightPoint{Lat: 0, Lng: 1, Altitude: 0.01}

	rot := Rotation(cur, climb, 90)
	want := math.Atan2(0.01, PitchDistanceProxy) * 180 / math.Pi
	assert.InDelta(t, want, rot.Pitch, 1e-9)

	steep := model.FlightPoint{Lat: 0, Lng: 1, Altitude: -1}
	assert.Equal(t, -MaxPitch, Rotation(cur, steep, 90).Pitch)
}
