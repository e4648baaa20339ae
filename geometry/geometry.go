// Package geometry provides the planar primitives of a floor plan: points in
// drawing units and the corridor line segments drawn between them.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrInvalidGeometry is returned for non-finite coordinates.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Point is a 2D coordinate in a floor's local drawing units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Orb converts p to an orb.Point.
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(other Point) float64 {
	return planar.Distance(p.Orb(), other.Orb())
}

// Valid reports whether both coordinates are finite.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// NearOrigin reports whether p lies within tol of (0,0) on both axes.
func (p Point) NearOrigin(tol float64) bool {
	return math.Abs(p.X) < tol && math.Abs(p.Y) < tol
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Validate returns ErrInvalidGeometry when p is not finite.
func (p Point) Validate() error {
	if !p.Valid() {
		return fmt.Errorf("%w: non-finite point %s", ErrInvalidGeometry, p)
	}
	return nil
}
