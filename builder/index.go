package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"

	"github.com/elipaulman/hack-ohio-2025/geometry"
)

// IndexKind selects the SpatialIndex implementation used while building.
type IndexKind string

const (
	IndexLinear   IndexKind = "linear"
	IndexQuadtree IndexKind = "quadtree"
)

// ParseIndexKind parses "linear" or "quadtree"; empty means linear.
func ParseIndexKind(s string) (IndexKind, error) {
	switch IndexKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", IndexLinear:
		return IndexLinear, nil
	case IndexQuadtree:
		return IndexQuadtree, nil
	}
	return "", fmt.Errorf("unknown spatial index %q", s)
}

// SpatialIndex answers box queries over node positions. Within must return
// ids in ascending order so that "first created wins" holds for every
// implementation.
type SpatialIndex interface {
	Add(id int32, p geometry.Point)
	Within(b orb.Bound) []int32
}

// NewSpatialIndex returns an index of the given kind. bound is only a hint
// for the quadtree; points outside it are still indexed.
func NewSpatialIndex(kind IndexKind, bound orb.Bound) SpatialIndex {
	if kind == IndexQuadtree {
		return NewQuadtreeIndex(bound)
	}
	return NewLinearIndex()
}

// LinearIndex scans every point. Fine for the few hundred endpoints of a
// floor plan.
type LinearIndex struct {
	ids    []int32
	points []orb.Point
}

func NewLinearIndex() *LinearIndex {
	return &LinearIndex{}
}

func (li *LinearIndex) Add(id int32, p geometry.Point) {
	li.ids = append(li.ids, id)
	li.points = append(li.points, p.Orb())
}

func (li *LinearIndex) Within(b orb.Bound) []int32 {
	var out []int32
	for i, p := range li.points {
		if b.Contains(p) {
			out = append(out, li.ids[i])
		}
	}
	sortIDs(out)
	return out
}

type indexedPoint struct {
	id int32
	p  orb.Point
}

func (ip indexedPoint) Point() orb.Point { return ip.p }

// QuadtreeIndex is backed by orb/quadtree. Points that fall outside the
// tree's bound are kept in a linear overflow list.
type QuadtreeIndex struct {
	tree     *quadtree.Quadtree
	overflow LinearIndex
	buf      []orb.Pointer
}

func NewQuadtreeIndex(bound orb.Bound) *QuadtreeIndex {
	return &QuadtreeIndex{tree: quadtree.New(bound)}
}

func (qi *QuadtreeIndex) Add(id int32, p geometry.Point) {
	if err := qi.tree.Add(indexedPoint{id: id, p: p.Orb()}); err != nil {
		qi.overflow.Add(id, p)
	}
}

func (qi *QuadtreeIndex) Within(b orb.Bound) []int32 {
	qi.buf = qi.tree.InBound(qi.buf[:0], b)
	out := make([]int32, 0, len(qi.buf))
	for _, ptr := range qi.buf {
		out = append(out, ptr.(indexedPoint).id)
	}
	out = append(out, qi.overflow.Within(b)...)
	sortIDs(out)
	return out
}

func sortIDs(ids []int32) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// GeometryIndex owns the node table while a floor is being built and snaps
// raw coordinates onto canonical nodes.
type GeometryIndex struct {
	nodes     []Node
	spatial   SpatialIndex
	tolerance float64
	originTol float64
	endpoints map[geometry.Point]int32
	origin    *geometry.Point
}

// NewGeometryIndex creates an empty index. tolerance is the snap distance,
// originTol the per-axis distance from (0,0) that marks the origin.
func NewGeometryIndex(spatial SpatialIndex, tolerance, originTol float64) *GeometryIndex {
	return &GeometryIndex{
		spatial:   spatial,
		tolerance: tolerance,
		originTol: originTol,
		endpoints: make(map[geometry.Point]int32),
	}
}

// Snap returns the lowest-id node within the snap tolerance of p, creating a
// new pathway node when there is none.
func (gi *GeometryIndex) Snap(p geometry.Point) int32 {
	if id, ok := gi.endpoints[p]; ok {
		return id
	}
	for _, id := range gi.spatial.Within(geometry.AroundPoint(p, gi.tolerance)) {
		if gi.nodes[id].Point().Distance(p) <= gi.tolerance {
			gi.endpoints[p] = id
			return id
		}
	}

	id := gi.add(p, "")
	gi.endpoints[p] = id
	if gi.origin == nil && p.NearOrigin(gi.originTol) {
		origin := p
		gi.origin = &origin
	}
	return id
}

// AddLabeled always creates a new node carrying label.
func (gi *GeometryIndex) AddLabeled(p geometry.Point, label string) int32 {
	return gi.add(p, label)
}

func (gi *GeometryIndex) add(p geometry.Point, label string) int32 {
	id := int32(len(gi.nodes))
	gi.nodes = append(gi.nodes, Node{ID: id, X: p.X, Y: p.Y, Label: label})
	gi.spatial.Add(id, p)
	return id
}

// Resolve returns the node a raw endpoint coordinate was snapped to.
func (gi *GeometryIndex) Resolve(p geometry.Point) (int32, bool) {
	id, ok := gi.endpoints[p]
	return id, ok
}

// Near returns the ids of nodes inside b, ascending.
func (gi *GeometryIndex) Near(b orb.Bound) []int32 {
	return gi.spatial.Within(b)
}

// Node returns the node with the given id.
func (gi *GeometryIndex) Node(id int32) Node {
	return gi.nodes[id]
}

// Nodes returns the node table.
func (gi *GeometryIndex) Nodes() []Node {
	return gi.nodes
}

// Len returns the number of nodes.
func (gi *GeometryIndex) Len() int {
	return len(gi.nodes)
}

// Origin returns the first endpoint found at the drawing origin.
func (gi *GeometryIndex) Origin() (geometry.Point, bool) {
	if gi.origin == nil {
		return geometry.Point{}, false
	}
	return *gi.origin, true
}
