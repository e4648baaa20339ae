package query

import (
	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/geometry"
)

// Waypoint is one node of a route.
type Waypoint struct {
	Index       int            `json:"index"`
	NodeID      int32          `json:"node_id"`
	Coords      geometry.Point `json:"coords"`
	PixelCoords geometry.Point `json:"pixel_coords"`
	Label       string         `json:"label,omitempty"`
	Distance    float64        `json:"distance"` // from the previous waypoint
}

// Path is a single-floor route between two rooms. Paths may be shared
// through the route cache and must not be modified.
type Path struct {
	Floor     string     `json:"floor"`
	StartRoom string     `json:"start_room"`
	EndRoom   string     `json:"end_room"`
	Distance  float64    `json:"distance"`
	Waypoints []Waypoint `json:"waypoints"`
}

// NodeIDs returns the node ids of the path in order.
func (p *Path) NodeIDs() []int32 {
	ids := make([]int32, len(p.Waypoints))
	for i, wp := range p.Waypoints {
		ids[i] = wp.NodeID
	}
	return ids
}

// First returns the first waypoint.
func (p *Path) First() Waypoint {
	return p.Waypoints[0]
}

// Last returns the last waypoint.
func (p *Path) Last() Waypoint {
	return p.Waypoints[len(p.Waypoints)-1]
}

func newPath(navData *builder.NavigationData, startRoom, endRoom string, nodeIDs []int32, distance float64) *Path {
	path := &Path{
		Floor:     navData.Floor,
		StartRoom: startRoom,
		EndRoom:   endRoom,
		Distance:  distance,
		Waypoints: make([]Waypoint, len(nodeIDs)),
	}
	var prev geometry.Point
	for i, id := range nodeIDs {
		node := navData.Nodes[id]
		p := node.Point()
		wp := Waypoint{
			Index:       i,
			NodeID:      id,
			Coords:      p,
			PixelCoords: navData.ToPixel(p),
			Label:       node.Label,
		}
		if i > 0 {
			wp.Distance = prev.Distance(p)
		}
		path.Waypoints[i] = wp
		prev = p
	}
	return path
}
