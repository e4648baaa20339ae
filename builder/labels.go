package builder

import (
	"strings"

	"github.com/elipaulman/hack-ohio-2025/geometry"
)

// Calibration labels. They are kept as nodes but never indexed as rooms.
const (
	LabelOrigin = "ori"
)

var calibrationLabels = []string{LabelOrigin, "ref", "ori-tr", "tr-ori"}

// IsCalibrationLabel reports whether label is a reserved calibration tag.
func IsCalibrationLabel(label string) bool {
	label = strings.TrimSpace(label)
	for _, tag := range calibrationLabels {
		if strings.EqualFold(label, tag) {
			return true
		}
	}
	return false
}

// IsReferenceLabel reports whether label marks the reference calibration point.
func IsReferenceLabel(label string) bool {
	return IsCalibrationLabel(label) && !strings.EqualFold(strings.TrimSpace(label), LabelOrigin)
}

// NormalizeRoom maps a door label or user supplied room name to its room
// identity: trimmed, upper-cased, everything from the first '_' dropped.
// "e100_a" and "E100" both normalize to "E100".
func NormalizeRoom(name string) string {
	name = strings.TrimSpace(name)
	if base, _, found := strings.Cut(name, "_"); found {
		name = base
	}
	return strings.ToUpper(name)
}

// LabeledPoint is one row of a floor's label file.
type LabeledPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Point returns the label's position.
func (lp LabeledPoint) Point() geometry.Point {
	return geometry.Pt(lp.X, lp.Y)
}

var stairwellSuffixes = []string{"S", "SS", "SN", "SW", "SE"}

// IsStairwell reports whether a room name follows the stairwell naming
// convention (suffix S, SS, SN, SW or SE).
func IsStairwell(room string) bool {
	room = NormalizeRoom(room)
	for _, suffix := range stairwellSuffixes {
		if strings.HasSuffix(room, suffix) {
			return true
		}
	}
	return false
}
