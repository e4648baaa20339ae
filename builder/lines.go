package builder

import (
	"sort"

	"github.com/elipaulman/hack-ohio-2025/geometry"
)

type onLine struct {
	id int32
	t  float64
}

// nodesOnSegment returns every node lying on s, ordered by position along
// the line (ties keep ascending id order).
func (nb *Builder) nodesOnSegment(s geometry.Segment, pathwayOnly bool) []onLine {
	var found []onLine
	for _, id := range nb.index.Near(s.Bound(nb.opts.LineTolerance)) {
		node := nb.index.Node(id)
		if pathwayOnly && !node.IsPathway() {
			continue
		}
		if t, ok := s.OnLine(node.Point(), nb.opts.LineTolerance, nb.opts.ProjectionSlack); ok {
			found = append(found, onLine{id: id, t: t})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].t < found[j].t })
	return found
}

// threadLines connects, for every segment, the consecutive nodes found along
// it: the two snapped endpoints bracket any door or intersection node that
// lies on the line. It returns the number of edges added.
func (nb *Builder) threadLines() int {
	added := 0
	for i, s := range nb.segments {
		start, end := nb.segEnds[i][0], nb.segEnds[i][1]
		if start == end {
			continue
		}

		chain := make([]int32, 0, 4)
		chain = append(chain, start)
		seen := map[int32]bool{start: true, end: true}
		for _, ol := range nb.nodesOnSegment(s, false) {
			if seen[ol.id] {
				continue
			}
			seen[ol.id] = true
			chain = append(chain, ol.id)
		}
		chain = append(chain, end)

		for j := 0; j+1 < len(chain); j++ {
			a, b := chain[j], chain[j+1]
			cost := nb.index.Node(a).Point().Distance(nb.index.Node(b).Point())
			if nb.graph.addEdge(a, b, cost) {
				added++
			}
		}
	}
	return added
}
