package query

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/elipaulman/hack-ohio-2025/geometry"
)

type ExportNode struct {
	ID    int32   `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label *string `json:"label"`
	Type  string  `json:"type"` // "room" or "pathway"
}

type ExportEdge struct {
	From     int32          `json:"from"`
	To       int32          `json:"to"`
	Distance float64        `json:"distance"`
	Start    geometry.Point `json:"start"`
	End      geometry.Point `json:"end"`
}

type ExportDoor struct {
	ID          int32          `json:"id"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	PixelCoords geometry.Point `json:"pixel_coords"`
}

// NavigationExport is the floor graph in the shape consumed by map
// front ends.
type NavigationExport struct {
	Floor string                  `json:"floor"`
	Nodes []ExportNode            `json:"nodes"`
	Edges []ExportEdge            `json:"edges"`
	Rooms map[string][]ExportDoor `json:"rooms"`
}

// Export converts the floor graph for visualization.
func (nq *NavigationQuery) Export() NavigationExport {
	nd := nq.navData
	out := NavigationExport{
		Floor: nd.Floor,
		Nodes: make([]ExportNode, len(nd.Nodes)),
		Edges: make([]ExportEdge, len(nd.Edges)),
		Rooms: make(map[string][]ExportDoor),
	}

	for i, node := range nd.Nodes {
		en := ExportNode{ID: node.ID, X: node.X, Y: node.Y, Type: "pathway"}
		if node.Label != "" {
			label := node.Label
			en.Label = &label
		}
		if node.IsDoor() {
			en.Type = "room"
		}
		out.Nodes[i] = en
	}

	for i, edge := range nd.Edges {
		out.Edges[i] = ExportEdge{
			From:     edge.NodeAID,
			To:       edge.NodeBID,
			Distance: edge.Cost,
			Start:    nd.Nodes[edge.NodeAID].Point(),
			End:      nd.Nodes[edge.NodeBID].Point(),
		}
	}

	for _, room := range nd.Rooms() {
		for _, id := range nd.RoomDoors(room) {
			node := nd.Nodes[id]
			out.Rooms[room] = append(out.Rooms[room], ExportDoor{
				ID:          id,
				X:           node.X,
				Y:           node.Y,
				PixelCoords: nd.ToPixel(node.Point()),
			})
		}
	}
	return out
}

// ExportGeoJSON returns the floor graph as a GeoJSON feature collection in
// drawing units: one Point per node and one LineString per edge.
func (nq *NavigationQuery) ExportGeoJSON() *geojson.FeatureCollection {
	nd := nq.navData
	fc := geojson.NewFeatureCollection()

	for _, node := range nd.Nodes {
		f := geojson.NewFeature(node.Point().Orb())
		f.ID = node.ID
		f.Properties["floor"] = nd.Floor
		f.Properties["type"] = "pathway"
		if node.Label != "" {
			f.Properties["label"] = node.Label
		}
		if node.IsDoor() {
			f.Properties["type"] = "room"
			f.Properties["room"] = node.Room()
		}
		fc.Append(f)
	}

	for _, edge := range nd.Edges {
		f := geojson.NewFeature(orb.LineString{
			nd.Nodes[edge.NodeAID].Point().Orb(),
			nd.Nodes[edge.NodeBID].Point().Orb(),
		})
		f.Properties["from"] = edge.NodeAID
		f.Properties["to"] = edge.NodeBID
		f.Properties["distance"] = edge.Cost
		fc.Append(f)
	}
	return fc
}
