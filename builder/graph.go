package builder

type edgeKey struct{ a, b int32 }

func keyOf(a, b int32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// graph is the mutable edge set used during construction.
type graph struct {
	edges  []Edge
	pairs  map[edgeKey]struct{}
	degree map[int32]int
}

func newGraph() *graph {
	return &graph{
		pairs:  make(map[edgeKey]struct{}),
		degree: make(map[int32]int),
	}
}

func (g *graph) has(a, b int32) bool {
	_, ok := g.pairs[keyOf(a, b)]
	return ok
}

// addEdge connects a and b unless they are the same node or already
// adjacent. It reports whether an edge was added.
func (g *graph) addEdge(a, b int32, cost float64) bool {
	if a == b || g.has(a, b) {
		return false
	}
	g.pairs[keyOf(a, b)] = struct{}{}
	g.edges = append(g.edges, Edge{NodeAID: a, NodeBID: b, Cost: cost})
	g.degree[a]++
	g.degree[b]++
	return true
}
