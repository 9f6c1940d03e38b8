package model

import (
	"time"
)

// FlightPoint is a sampled position along a flight arc.
// Altitude is unitless and scaled against the cruising constant.
type FlightPoint struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude"`
}

// FlightPath is a materialized great-circle path between two coordinates.
type FlightPath struct {
	Points   []FlightPoint `json:"points"`
	Distance float64       `json:"distance"` // km
	Duration float64       `json:"duration"` // time units, derived from distance
	Bearing  float64       `json:"bearing"`  // degrees [0, 360)
}

// Rotation describes aircraft orientation in degrees.
type Rotation struct {
	Heading float64 `json:"heading"`
	Pitch   float64 `json:"pitch"`
	Bank    float64 `json:"bank"`
}

// AirplaneState is the per-frame state handed to position listeners.
type AirplaneState struct {
	Position FlightPoint `json:"position"`
	Rotation Rotation    `json:"rotation"`
	Speed    float64     `json:"speed"`
}

// CameraPosition is the per-frame camera target.
type CameraPosition struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude"`
}

// TravelTimelineEntry is one visited waypoint as supplied by the data store.
type TravelTimelineEntry struct {
	ID            string    `json:"id" yaml:"id"`
	Year          int       `json:"year" yaml:"year"`
	SequenceOrder int       `json:"sequenceOrder" yaml:"sequence_order"`
	CityID        *string   `json:"cityId,omitempty" yaml:"city_id,omitempty"`
	CountryID     *string   `json:"countryId,omitempty" yaml:"country_id,omitempty"`
	VisitDate     time.Time `json:"visitDate" yaml:"visit_date"`
	Latitude      float64   `json:"latitude" yaml:"latitude"`
	Longitude     float64   `json:"longitude" yaml:"longitude"`
	AlbumCount    int       `json:"albumCount" yaml:"album_count"`
	PhotoCount    int       `json:"photoCount" yaml:"photo_count"`
	LocationName  *string   `json:"locationName,omitempty" yaml:"location_name,omitempty"`
}

// Name returns the location name, or empty if unset.
func (e *TravelTimelineEntry) Name() string {
	if e.LocationName == nil {
		return ""
	}
	return *e.LocationName
}

// Progress reports where playback is within the selected timeline.
type Progress struct {
	Segment    int     `json:"segment"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}
