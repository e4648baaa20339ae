package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Segment is a drawn corridor line from Start to End.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Seg is shorthand for a segment between (x1,y1) and (x2,y2).
func Seg(x1, y1, x2, y2 float64) Segment {
	return Segment{Start: Pt(x1, y1), End: Pt(x2, y2)}
}

// Validate checks both endpoints are finite.
func (s Segment) Validate() error {
	if !s.Start.Valid() || !s.End.Valid() {
		return fmt.Errorf("%w: non-finite segment %s-%s", ErrInvalidGeometry, s.Start, s.End)
	}
	return nil
}

// LengthSquared returns the squared length of the segment.
func (s Segment) LengthSquared() float64 {
	return planar.DistanceSquared(s.Start.Orb(), s.End.Orb())
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return planar.Distance(s.Start.Orb(), s.End.Orb())
}

// Degenerate reports whether the segment has zero length.
func (s Segment) Degenerate() bool {
	return s.LengthSquared() == 0
}

// DistanceTo returns the distance from p to the closest point of the segment.
// For a degenerate segment this is the distance to Start.
func (s Segment) DistanceTo(p Point) float64 {
	return planar.DistanceFromSegment(s.Start.Orb(), s.End.Orb(), p.Orb())
}

// Project returns the unclamped parameter t of p's projection onto the
// infinite line through the segment, where t=0 is Start and t=1 is End.
// ok is false for degenerate segments.
func (s Segment) Project(p Point) (t float64, ok bool) {
	lenSq := s.LengthSquared()
	if lenSq == 0 {
		return 0, false
	}
	dx, dy := s.End.X-s.Start.X, s.End.Y-s.Start.Y
	t = ((p.X-s.Start.X)*dx + (p.Y-s.Start.Y)*dy) / lenSq
	return t, true
}

// OnLine reports whether p lies on the segment: closer than maxDist and with a
// projection parameter inside [-slack, 1+slack]. The parameter is returned for
// ordering points along the line.
func (s Segment) OnLine(p Point, maxDist, slack float64) (float64, bool) {
	if s.DistanceTo(p) >= maxDist {
		return 0, false
	}
	t, ok := s.Project(p)
	if !ok || t < -slack || t > 1+slack {
		return 0, false
	}
	return t, true
}

// Bound returns the segment's bounding box padded by pad on every side.
func (s Segment) Bound(pad float64) orb.Bound {
	return orb.LineString{s.Start.Orb(), s.End.Orb()}.Bound().Pad(pad)
}
