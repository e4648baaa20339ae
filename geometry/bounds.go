package geometry

import "github.com/paulmach/orb"

// BoundOf returns the smallest box containing every point, padded by pad.
// An empty input yields a box of size 2*pad around the origin.
func BoundOf(points []Point, pad float64) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}.Pad(pad)
	}
	b := points[0].Orb().Bound()
	for _, p := range points[1:] {
		b = b.Extend(p.Orb())
	}
	return b.Pad(pad)
}

// AroundPoint returns the square of half-width r centered on p.
func AroundPoint(p Point, r float64) orb.Bound {
	return p.Orb().Bound().Pad(r)
}
