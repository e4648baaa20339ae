package query

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/geometry"
	"github.com/elipaulman/hack-ohio-2025/logger"
)

// NavigationQuery answers route queries on one floor. It never modifies the
// navigation data, so one value serves any number of goroutines.
type NavigationQuery struct {
	navData *builder.NavigationData
	opts    Options
	cache   *Cache[routeKey, *Path]
}

type routeKey struct {
	start, end string
}

// NewNavigationQuery validates navData and prepares it for querying.
func NewNavigationQuery(navData *builder.NavigationData, opts Options) (*NavigationQuery, error) {
	if err := navData.Validate(); err != nil {
		return nil, fmt.Errorf("invalid navigation data: %w", err)
	}
	navData.BuildIndexes()

	nq := &NavigationQuery{
		navData: navData,
		opts:    opts,
	}
	if opts.CacheSize > 0 {
		nq.cache = NewCache[routeKey, *Path](opts.CacheSize)
	}
	return nq, nil
}

// GetNavData returns the underlying floor graph.
func (nq *NavigationQuery) GetNavData() *builder.NavigationData {
	return nq.navData
}

// Floor returns the floor name.
func (nq *NavigationQuery) Floor() string {
	return nq.navData.Floor
}

// FindRoute returns the cheapest path from any door of start to any door of
// end. Room names are normalized first.
func (nq *NavigationQuery) FindRoute(start, end string) (*Path, error) {
	startRoom, endRoom := builder.NormalizeRoom(start), builder.NormalizeRoom(end)
	key := routeKey{startRoom, endRoom}
	if nq.cache != nil {
		if path, ok := nq.cache.Get(key); ok {
			return path, nil
		}
	}

	startDoors := nq.navData.RoomDoors(startRoom)
	if len(startDoors) == 0 {
		return nil, fmt.Errorf("%w: %q on floor %s", ErrRoomNotFound, start, nq.navData.Floor)
	}
	endDoors := nq.navData.RoomDoors(endRoom)
	if len(endDoors) == 0 {
		return nil, fmt.Errorf("%w: %q on floor %s", ErrRoomNotFound, end, nq.navData.Floor)
	}

	startTime := time.Now()
	var best []int32
	bestCost := math.Inf(1)
	limited := false
	for _, s := range startDoors {
		for _, e := range endDoors {
			nodePath, cost, err := nq.astar(s, e)
			if err != nil {
				limited = limited || errors.Is(err, ErrSearchLimit)
				continue
			}
			if cost < bestCost {
				best, bestCost = nodePath, cost
			}
		}
	}
	if best == nil {
		if limited {
			return nil, fmt.Errorf("%w: %s to %s on floor %s after %d iterations", ErrSearchLimit, startRoom, endRoom, nq.navData.Floor, nq.opts.MaxIterations)
		}
		return nil, fmt.Errorf("%w: %s to %s on floor %s", ErrNoPathFound, startRoom, endRoom, nq.navData.Floor)
	}

	path := newPath(nq.navData, startRoom, endRoom, best, bestCost)
	logger.Logger().Debug("route found",
		"floor", nq.navData.Floor,
		"start", startRoom,
		"end", endRoom,
		"distance", bestCost,
		"waypoints", len(best),
		"took", time.Since(startTime),
	)
	if nq.cache != nil {
		nq.cache.Put(key, path)
	}
	return path, nil
}

// FindPath runs A* between two node ids and returns the node sequence and
// its cost.
func (nq *NavigationQuery) FindPath(startNodeID, endNodeID int32) ([]int32, float64, error) {
	if nq.navData.FindNodeByID(startNodeID) == nil || nq.navData.FindNodeByID(endNodeID) == nil {
		return nil, 0, fmt.Errorf("unknown node %d or %d", startNodeID, endNodeID)
	}
	nodePath, cost, err := nq.astar(startNodeID, endNodeID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: node %d to node %d", err, startNodeID, endNodeID)
	}
	return nodePath, cost, nil
}

// astar is A* with lazy deletion: improved nodes are pushed again and stale
// entries are skipped when popped. It fails with ErrNoPathFound when the open
// set runs dry and ErrSearchLimit when MaxIterations expansions were spent.
func (nq *NavigationQuery) astar(startNodeID, endNodeID int32) ([]int32, float64, error) {
	if startNodeID == endNodeID {
		return []int32{startNodeID}, 0, nil
	}

	n := len(nq.navData.Nodes)
	gScore := make([]float64, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	cameFrom := make([]int32, n)
	closed := make([]bool, n)
	goal := nq.navData.Nodes[endNodeID].Point()

	openSet := &nodeHeap{}
	defer openSet.Clear()
	var seq uint64

	gScore[startNodeID] = 0
	cameFrom[startNodeID] = -1
	heap.Push(openSet, newHeapNode(startNodeID, nq.heuristic(startNodeID, goal), seq))
	seq++

	iterations := 0
	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*heapNode)
		currentID := current.nodeID
		heapNodePool.Put(current)

		if closed[currentID] {
			continue
		}
		if currentID == endNodeID {
			return reconstruct(cameFrom, endNodeID), gScore[endNodeID], nil
		}
		closed[currentID] = true

		iterations++
		if nq.opts.MaxIterations > 0 && iterations > nq.opts.MaxIterations {
			logger.Logger().Warn("A* iteration limit reached", "floor", nq.navData.Floor, "limit", nq.opts.MaxIterations)
			return nil, 0, ErrSearchLimit
		}

		for _, neighbor := range nq.navData.GetNeighbors(currentID) {
			if closed[neighbor.ID] {
				continue
			}
			tentativeG := gScore[currentID] + neighbor.Cost
			if tentativeG < gScore[neighbor.ID] {
				gScore[neighbor.ID] = tentativeG
				cameFrom[neighbor.ID] = currentID
				heap.Push(openSet, newHeapNode(neighbor.ID, tentativeG+nq.heuristic(neighbor.ID, goal), seq))
				seq++
			}
		}
	}
	return nil, 0, ErrNoPathFound
}

func (nq *NavigationQuery) heuristic(nodeID int32, goal geometry.Point) float64 {
	return nq.navData.Nodes[nodeID].Point().Distance(goal)
}

func reconstruct(cameFrom []int32, endNodeID int32) []int32 {
	var path []int32
	for id := endNodeID; id != -1; id = cameFrom[id] {
		path = append(path, id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Rooms returns every room on the floor, sorted.
func (nq *NavigationQuery) Rooms() []string {
	return nq.navData.Rooms()
}

// HasRoom reports whether the room has at least one door on this floor.
func (nq *NavigationQuery) HasRoom(room string) bool {
	return len(nq.navData.RoomDoors(room)) > 0
}

// Stairwells returns the rooms that follow the stairwell naming convention,
// sorted.
func (nq *NavigationQuery) Stairwells() []string {
	var stairs []string
	for _, room := range nq.navData.Rooms() {
		if builder.IsStairwell(room) {
			stairs = append(stairs, room)
		}
	}
	return stairs
}

// RoomMatch is the result of a nearest-room lookup.
type RoomMatch struct {
	Room        string         `json:"room_id"`
	NodeID      int32          `json:"node_id"`
	Coords      geometry.Point `json:"coords"`
	PixelCoords geometry.Point `json:"pixel_coords"`
	Distance    float64        `json:"distance"`
}

// NearestRoom returns the room whose door is closest to p, in drawing units.
func (nq *NavigationQuery) NearestRoom(p geometry.Point) (RoomMatch, bool) {
	return nq.nearestRoom(p, false)
}

// NearestRoomPixel is NearestRoom for a point given in floor-plan pixels.
func (nq *NavigationQuery) NearestRoomPixel(p geometry.Point) (RoomMatch, bool) {
	return nq.nearestRoom(p, true)
}

func (nq *NavigationQuery) nearestRoom(p geometry.Point, pixel bool) (RoomMatch, bool) {
	var best RoomMatch
	found := false
	for _, node := range nq.navData.Nodes {
		if !node.IsDoor() {
			continue
		}
		coords := node.Point()
		px := nq.navData.ToPixel(coords)
		d := coords.Distance(p)
		if pixel {
			d = px.Distance(p)
		}
		if !found || d < best.Distance {
			best = RoomMatch{Room: node.Room(), NodeID: node.ID, Coords: coords, PixelCoords: px, Distance: d}
			found = true
		}
	}
	return best, found
}

// NavigationStats summarizes a floor graph.
type NavigationStats struct {
	Floor             string      `json:"floor"`
	NodeCount         int         `json:"node_count"`
	EdgeCount         int         `json:"edge_count"`
	RoomCount         int         `json:"room_count"`
	StairwellCount    int         `json:"stairwell_count"`
	DisconnectedDoors []string    `json:"disconnected_doors,omitempty"`
	Cache             *CacheStats `json:"cache,omitempty"`
}

// GetStats returns graph and cache statistics.
func (nq *NavigationQuery) GetStats() NavigationStats {
	stats := NavigationStats{
		Floor:          nq.navData.Floor,
		NodeCount:      nq.navData.GetNodeCount(),
		EdgeCount:      nq.navData.GetEdgeCount(),
		RoomCount:      len(nq.navData.Rooms()),
		StairwellCount: len(nq.Stairwells()),
	}
	for _, id := range nq.navData.DisconnectedDoors() {
		stats.DisconnectedDoors = append(stats.DisconnectedDoors, nq.navData.Nodes[id].Label)
	}
	if nq.cache != nil {
		cs := nq.cache.GetStats()
		stats.Cache = &cs
	}
	return stats
}
