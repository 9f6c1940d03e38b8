package geo

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

// DefaultCellResolution groups waypoints at roughly city scale (~250 km² cells).
const DefaultCellResolution = 5

// CellID returns the H3 cell index containing the point at the given resolution.
func CellID(p Point, res int) (string, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lon), res)
	if err != nil {
		return "", fmt.Errorf("h3 cell for %.4f,%.4f: %w", p.Lat, p.Lon, err)
	}
	return cell.String(), nil
}

// UniqueCells counts the distinct H3 cells covered by points.
// Points that cannot be indexed are ignored.
func UniqueCells(points []Point, res int) int {
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		id, err := CellID(p, res)
		if err != nil {
			continue
		}
		seen[id] = struct{}{}
	}
	return len(seen)
}
