package floors

import (
	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/geometry"
	"github.com/elipaulman/hack-ohio-2025/query"
)

// FloorTransition is the Floor value of the transition marker waypoint.
const FloorTransition = "transition"

// Transition describes the floor change of a cross-floor route.
type Transition struct {
	Type        ConnectorClass `json:"transition_type"`
	ExitStair   string         `json:"exit_stair"`
	ArriveStair string         `json:"arrive_stair"`
	FromFloor   string         `json:"from_floor"`
	ToFloor     string         `json:"to_floor"`
}

// Waypoint is one step of a route. The transition marker has Floor set to
// FloorTransition, NodeID -1 and Transition set.
type Waypoint struct {
	Floor        string         `json:"floor"`
	Index        int            `json:"index"`
	NodeID       int32          `json:"node_id"`
	Coords       geometry.Point `json:"coords"`
	PixelCoords  geometry.Point `json:"pixel_coords"`
	Label        string         `json:"label,omitempty"`
	Distance     float64        `json:"distance"`
	IsTransition bool           `json:"is_transition,omitempty"`
	Transition   *Transition    `json:"transition,omitempty"`
}

// Segment is the part of a route on one floor.
type Segment struct {
	Floor     string     `json:"floor"`
	Waypoints []Waypoint `json:"waypoints"`
	Distance  float64    `json:"distance"`
}

// Route is a single- or cross-floor route.
type Route struct {
	StartRoom     string      `json:"start_room"`
	StartFloor    string      `json:"start_floor"`
	EndRoom       string      `json:"end_room"`
	EndFloor      string      `json:"end_floor"`
	Mode          Mode        `json:"mode"`
	TotalDistance float64     `json:"total_distance"`
	Distance      float64     `json:"distance"` // same as TotalDistance
	Floors        []string    `json:"floors"`
	Transition    *Transition `json:"transition,omitempty"`
	Segments      []Segment   `json:"segments"`
	Waypoints     []Waypoint  `json:"waypoints"`
}

// CrossesFloors reports whether the route changes floor.
func (r *Route) CrossesFloors() bool {
	return r.Transition != nil
}

type routeAssembler struct {
	route *Route
	next  int
}

// addSegment appends a floor leg. marker is the stair label flagged as a
// transition point, if any.
func (ra *routeAssembler) addSegment(floor string, p *query.Path, marker string) {
	seg := Segment{Floor: floor, Distance: p.Distance}
	for _, wp := range p.Waypoints {
		w := Waypoint{
			Floor:       floor,
			Index:       ra.next,
			NodeID:      wp.NodeID,
			Coords:      wp.Coords,
			PixelCoords: wp.PixelCoords,
			Label:       wp.Label,
			Distance:    wp.Distance,
		}
		if marker != "" && wp.Label != "" && builder.NormalizeRoom(wp.Label) == marker {
			w.IsTransition = true
		}
		seg.Waypoints = append(seg.Waypoints, w)
		ra.route.Waypoints = append(ra.route.Waypoints, w)
		ra.next++
	}
	ra.route.Segments = append(ra.route.Segments, seg)
	ra.route.TotalDistance += seg.Distance
	ra.route.Distance = ra.route.TotalDistance
}

func (ra *routeAssembler) addTransition(t *Transition) {
	ra.route.Transition = t
	ra.route.Waypoints = append(ra.route.Waypoints, Waypoint{
		Floor:      FloorTransition,
		Index:      ra.next,
		NodeID:     -1,
		Transition: t,
	})
	ra.next++
}
