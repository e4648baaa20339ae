package builder

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/elipaulman/hack-ohio-2025/geometry"
)

// DefaultPixelsPerUnit is the drawing-unit to floor-plan-pixel scale of the
// reference building's plans.
const DefaultPixelsPerUnit = 25.4

// Node is a graph vertex. IDs are dense and assigned in creation order.
type Node struct {
	ID    int32   `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// Point returns the node position.
func (n Node) Point() geometry.Point {
	return geometry.Pt(n.X, n.Y)
}

// IsPathway reports whether the node came from line geometry only.
func (n Node) IsPathway() bool {
	return n.Label == ""
}

// IsCalibration reports whether the node is a calibration anchor.
func (n Node) IsCalibration() bool {
	return n.Label != "" && IsCalibrationLabel(n.Label)
}

// IsDoor reports whether the node is a room entry.
func (n Node) IsDoor() bool {
	return n.Label != "" && !IsCalibrationLabel(n.Label)
}

// Room returns the normalized room a door node belongs to, or "".
func (n Node) Room() string {
	if !n.IsDoor() {
		return ""
	}
	return NormalizeRoom(n.Label)
}

// Edge is an undirected weighted connection, stored once.
type Edge struct {
	NodeAID int32   `json:"from"`
	NodeBID int32   `json:"to"`
	Cost    float64 `json:"distance"`
}

// Neighbor is one adjacency entry.
type Neighbor struct {
	ID   int32
	Cost float64
}

// NavigationData is the routable graph of one floor. It is immutable once
// built or loaded; the derived indexes are computed exactly once, so a
// single value can serve concurrent queries.
type NavigationData struct {
	Floor         string          `json:"floor"`
	Nodes         []Node          `json:"nodes"`
	Edges         []Edge          `json:"edges"`
	Origin        *geometry.Point `json:"origin,omitempty"`
	PixelsPerUnit float64         `json:"pixels_per_unit"`

	once      sync.Once
	adjacency [][]Neighbor
	rooms     map[string][]int32
	roomNames []string
	anchor    geometry.Point
}

// GetNodeCount returns the number of nodes.
func (nd *NavigationData) GetNodeCount() int {
	return len(nd.Nodes)
}

// GetEdgeCount returns the number of undirected edges.
func (nd *NavigationData) GetEdgeCount() int {
	return len(nd.Edges)
}

// FindNodeByID returns the node with the given id, or nil.
func (nd *NavigationData) FindNodeByID(id int32) *Node {
	if id < 0 || int(id) >= len(nd.Nodes) {
		return nil
	}
	return &nd.Nodes[id]
}

// GetNeighbors returns the adjacency of nodeID in edge insertion order.
func (nd *NavigationData) GetNeighbors(nodeID int32) []Neighbor {
	nd.BuildIndexes()
	if nodeID < 0 || int(nodeID) >= len(nd.adjacency) {
		return nil
	}
	return nd.adjacency[nodeID]
}

// HasEdge reports whether a and b are adjacent.
func (nd *NavigationData) HasEdge(a, b int32) bool {
	for _, n := range nd.GetNeighbors(a) {
		if n.ID == b {
			return true
		}
	}
	return false
}

// RoomDoors returns the door node ids of a room, ascending. The name is
// normalized first.
func (nd *NavigationData) RoomDoors(room string) []int32 {
	nd.BuildIndexes()
	return nd.rooms[NormalizeRoom(room)]
}

// Rooms returns every indexed room name, sorted.
func (nd *NavigationData) Rooms() []string {
	nd.BuildIndexes()
	return nd.roomNames
}

// DisconnectedDoors returns door nodes without any edge.
func (nd *NavigationData) DisconnectedDoors() []int32 {
	nd.BuildIndexes()
	var out []int32
	for _, n := range nd.Nodes {
		if n.IsDoor() && len(nd.adjacency[n.ID]) == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}

// ToPixel maps drawing coordinates to floor-plan pixels relative to the
// "ori" calibration label (or (0,0) when there is none).
func (nd *NavigationData) ToPixel(p geometry.Point) geometry.Point {
	nd.BuildIndexes()
	scale := nd.PixelsPerUnit
	if scale <= 0 {
		scale = DefaultPixelsPerUnit
	}
	return geometry.Pt((p.X-nd.anchor.X)*scale, (p.Y-nd.anchor.Y)*scale)
}

// BuildIndexes builds the adjacency list and the room index. Only the first
// call does any work.
func (nd *NavigationData) BuildIndexes() {
	nd.once.Do(func() {
		nd.adjacency = make([][]Neighbor, len(nd.Nodes))
		for _, edge := range nd.Edges {
			if !nd.validID(edge.NodeAID) || !nd.validID(edge.NodeBID) {
				continue
			}
			nd.adjacency[edge.NodeAID] = append(nd.adjacency[edge.NodeAID], Neighbor{ID: edge.NodeBID, Cost: edge.Cost})
			nd.adjacency[edge.NodeBID] = append(nd.adjacency[edge.NodeBID], Neighbor{ID: edge.NodeAID, Cost: edge.Cost})
		}

		nd.rooms = make(map[string][]int32)
		for _, node := range nd.Nodes {
			switch {
			case node.IsDoor():
				if room := node.Room(); room != "" {
					nd.rooms[room] = append(nd.rooms[room], node.ID)
				}
			case node.IsCalibration() && !IsReferenceLabel(node.Label):
				nd.anchor = node.Point()
			}
		}
		nd.roomNames = make([]string, 0, len(nd.rooms))
		for room := range nd.rooms {
			nd.roomNames = append(nd.roomNames, room)
		}
		sort.Strings(nd.roomNames)
	})
}

func (nd *NavigationData) validID(id int32) bool {
	return id >= 0 && int(id) < len(nd.Nodes)
}

// Validate checks the structural invariants of the graph: dense ids, finite
// coordinates, and edges that reference known nodes with a finite
// non-negative cost, no self-loops and no duplicate pairs.
func (nd *NavigationData) Validate() error {
	for i, node := range nd.Nodes {
		if node.ID != int32(i) {
			return fmt.Errorf("node ID mismatch at index %d: expected %d, got %d", i, i, node.ID)
		}
		if err := node.Point().Validate(); err != nil {
			return fmt.Errorf("node %d: %w", node.ID, err)
		}
	}

	type pair struct{ a, b int32 }
	seen := make(map[pair]struct{}, len(nd.Edges))
	for i, edge := range nd.Edges {
		if !nd.validID(edge.NodeAID) {
			return fmt.Errorf("edge %d has invalid NodeAID: %d", i, edge.NodeAID)
		}
		if !nd.validID(edge.NodeBID) {
			return fmt.Errorf("edge %d has invalid NodeBID: %d", i, edge.NodeBID)
		}
		if edge.NodeAID == edge.NodeBID {
			return fmt.Errorf("edge %d is a self-loop on node %d", i, edge.NodeAID)
		}
		if edge.Cost < 0 || math.IsNaN(edge.Cost) || math.IsInf(edge.Cost, 0) {
			return fmt.Errorf("edge %d has invalid cost: %f", i, edge.Cost)
		}
		k := pair{edge.NodeAID, edge.NodeBID}
		if k.a > k.b {
			k.a, k.b = k.b, k.a
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("edge %d duplicates %d-%d", i, k.a, k.b)
		}
		seen[k] = struct{}{}
	}

	if nd.Origin != nil {
		if err := nd.Origin.Validate(); err != nil {
			return fmt.Errorf("origin: %w", err)
		}
	}
	if nd.PixelsPerUnit < 0 || math.IsNaN(nd.PixelsPerUnit) || math.IsInf(nd.PixelsPerUnit, 0) {
		return fmt.Errorf("invalid pixels per unit: %f", nd.PixelsPerUnit)
	}
	return nil
}
