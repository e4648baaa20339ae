package builder

import (
	"fmt"
	"time"

	"github.com/elipaulman/hack-ohio-2025/geometry"
	"github.com/elipaulman/hack-ohio-2025/logger"
)

// Options tunes the construction pipeline. Distances are in drawing units.
type Options struct {
	SnapTolerance    float64   // endpoints closer than this share a node
	OriginTolerance  float64   // per-axis distance from (0,0) that marks the origin
	LineTolerance    float64   // max distance for a node to count as on a line
	ProjectionSlack  float64   // allowed overshoot of the projection parameter
	DoorSnapDistance float64   // max door-to-line distance for attachment
	DoorMaxLink      float64   // max door-to-node link length
	MaxDoorLinks     int       // attachment edges per door
	Index            IndexKind // spatial index strategy
	PixelsPerUnit    float64
}

// DefaultOptions returns the tolerances tuned for the reference floor plans.
func DefaultOptions() Options {
	return Options{
		SnapTolerance:    0.05,
		OriginTolerance:  0.01,
		LineTolerance:    0.5,
		ProjectionSlack:  0.05,
		DoorSnapDistance: 2.0,
		DoorMaxLink:      20,
		MaxDoorLinks:     2,
		Index:            IndexLinear,
		PixelsPerUnit:    DefaultPixelsPerUnit,
	}
}

// Builder turns raw segments and labeled points into NavigationData.
type Builder struct {
	floor    string
	opts     Options
	segments []geometry.Segment
	labels   []LabeledPoint

	index   *GeometryIndex
	graph   *graph
	segEnds [][2]int32
}

// NewBuilder creates a builder for one floor.
func NewBuilder(floor string, opts Options) *Builder {
	return &Builder{
		floor: floor,
		opts:  opts,
	}
}

// AddSegment adds one corridor line.
func (nb *Builder) AddSegment(s geometry.Segment) {
	nb.segments = append(nb.segments, s)
}

// AddSegments adds corridor lines in order.
func (nb *Builder) AddSegments(segments []geometry.Segment) {
	nb.segments = append(nb.segments, segments...)
}

// AddLabel adds one labeled point.
func (nb *Builder) AddLabel(lp LabeledPoint) {
	nb.labels = append(nb.labels, lp)
}

// AddLabels adds labeled points in order.
func (nb *Builder) AddLabels(labels []LabeledPoint) {
	nb.labels = append(nb.labels, labels...)
}

// GetIndex returns the geometry index of the last Build.
func (nb *Builder) GetIndex() *GeometryIndex {
	return nb.index
}

func (nb *Builder) validate() error {
	if nb.opts.SnapTolerance < 0 || nb.opts.LineTolerance <= 0 || nb.opts.MaxDoorLinks < 0 {
		return fmt.Errorf("%w: invalid build options %+v", geometry.ErrInvalidGeometry, nb.opts)
	}
	for i, s := range nb.segments {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	for i, lp := range nb.labels {
		if err := lp.Point().Validate(); err != nil {
			return fmt.Errorf("label %d (%q): %w", i, lp.Label, err)
		}
		if lp.Label == "" {
			return fmt.Errorf("%w: label %d at %s is empty", geometry.ErrInvalidGeometry, i, lp.Point())
		}
	}
	return nil
}

func (nb *Builder) allPoints() []geometry.Point {
	points := make([]geometry.Point, 0, 2*len(nb.segments)+len(nb.labels))
	for _, s := range nb.segments {
		points = append(points, s.Start, s.End)
	}
	for _, lp := range nb.labels {
		points = append(points, lp.Point())
	}
	return points
}

// Build runs the pipeline: endpoint snapping, label nodes, line threading
// and door attachment. The input is rejected as a whole on the first
// malformed element. Build can be called again and produces the same graph.
func (nb *Builder) Build() (*NavigationData, error) {
	startTime := time.Now()
	log := logger.Logger().With("floor", nb.floor)

	if err := nb.validate(); err != nil {
		return nil, err
	}

	bound := geometry.BoundOf(nb.allPoints(), 1+nb.opts.DoorSnapDistance)
	nb.index = NewGeometryIndex(NewSpatialIndex(nb.opts.Index, bound), nb.opts.SnapTolerance, nb.opts.OriginTolerance)
	nb.graph = newGraph()

	// 1. snap endpoints
	nb.segEnds = make([][2]int32, len(nb.segments))
	for i, s := range nb.segments {
		nb.segEnds[i] = [2]int32{nb.index.Snap(s.Start), nb.index.Snap(s.End)}
	}
	corridorNodes := nb.index.Len()
	log.Debug("endpoints snapped", "segments", len(nb.segments), "nodes", corridorNodes)

	// 2. label nodes go in before threading so doors on a line get chained
	for _, lp := range nb.labels {
		if !IsCalibrationLabel(lp.Label) && NormalizeRoom(lp.Label) == "" {
			log.Warn("skipping door label with no room name", "label", lp.Label, "x", lp.X, "y", lp.Y)
			continue
		}
		nb.index.AddLabeled(lp.Point(), lp.Label)
	}

	// 3. intermediate points along lines
	lineEdges := nb.threadLines()
	log.Debug("lines threaded", "edges", lineEdges)

	// 4. doors left off the lines
	doorEdges, orphans := nb.attachDoors()
	log.Debug("doors attached", "edges", doorEdges)
	for _, id := range orphans {
		n := nb.index.Node(id)
		log.Warn("door not connected to any corridor", "label", n.Label, "x", n.X, "y", n.Y)
	}

	nodes := make([]Node, nb.index.Len())
	copy(nodes, nb.index.Nodes())
	edges := make([]Edge, len(nb.graph.edges))
	copy(edges, nb.graph.edges)

	navData := &NavigationData{
		Floor:         nb.floor,
		Nodes:         nodes,
		Edges:         edges,
		PixelsPerUnit: nb.opts.PixelsPerUnit,
	}
	if origin, ok := nb.index.Origin(); ok {
		navData.Origin = &origin
	}
	if err := navData.Validate(); err != nil {
		return nil, fmt.Errorf("built graph is inconsistent: %w", err)
	}
	navData.BuildIndexes()

	log.Info("floor built",
		"nodes", len(nodes),
		"corridor_nodes", corridorNodes,
		"rooms", len(navData.Rooms()),
		"edges", len(edges),
		"door_edges", doorEdges,
		"disconnected_doors", len(orphans),
		"took", time.Since(startTime),
	)
	return navData, nil
}

// BuildFloor builds a floor in one call.
func BuildFloor(floor string, segments []geometry.Segment, labels []LabeledPoint, opts Options) (*NavigationData, error) {
	nb := NewBuilder(floor, opts)
	nb.AddSegments(segments)
	nb.AddLabels(labels)
	return nb.Build()
}
