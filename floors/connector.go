package floors

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/ingest"
	"github.com/elipaulman/hack-ohio-2025/logger"
	"github.com/elipaulman/hack-ohio-2025/query"
)

// RouteRequest names the two endpoints of a route.
type RouteRequest struct {
	StartFloor string
	StartRoom  string
	EndFloor   string
	EndRoom    string
	Mode       Mode
}

// FindRoute routes within one floor or across two floors joined by a
// declared connector. Routes needing more than one floor change fail with
// ErrNoCrossFloorPath.
func (r *Registry) FindRoute(req RouteRequest) (*Route, error) {
	startFloor, endFloor := ingest.NormalizeFloor(req.StartFloor), ingest.NormalizeFloor(req.EndFloor)
	startQ, err := r.Floor(startFloor)
	if err != nil {
		return nil, err
	}
	endQ, err := r.Floor(endFloor)
	if err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeStairs
	}

	route := &Route{
		StartRoom:  builder.NormalizeRoom(req.StartRoom),
		StartFloor: startFloor,
		EndRoom:    builder.NormalizeRoom(req.EndRoom),
		EndFloor:   endFloor,
		Mode:       mode,
	}
	ra := &routeAssembler{route: route}

	if startFloor == endFloor {
		path, err := startQ.FindRoute(route.StartRoom, route.EndRoom)
		if err != nil {
			return nil, err
		}
		route.Floors = []string{startFloor}
		ra.addSegment(startFloor, path, "")
		return route, nil
	}

	if !startQ.HasRoom(route.StartRoom) {
		return nil, fmt.Errorf("%w: %q on floor %s", query.ErrRoomNotFound, req.StartRoom, startFloor)
	}
	if !endQ.HasRoom(route.EndRoom) {
		return nil, fmt.Errorf("%w: %q on floor %s", query.ErrRoomNotFound, req.EndRoom, endFloor)
	}

	leg1, leg2, conn, err := r.bestConnector(startQ, endQ, route.StartRoom, route.EndRoom, startFloor, endFloor, mode.Class())
	if err != nil {
		return nil, err
	}

	route.Floors = []string{startFloor, endFloor}
	ra.addSegment(startFloor, leg1, conn.Exit)
	ra.addTransition(&Transition{
		Type:        conn.Class,
		ExitStair:   conn.Exit,
		ArriveStair: conn.Arrive,
		FromFloor:   startFloor,
		ToFloor:     endFloor,
	})
	ra.addSegment(endFloor, leg2, conn.Arrive)
	return route, nil
}

// bestConnector tries every connector leaving the start floor for the end
// floor and keeps the cheapest pair of legs.
func (r *Registry) bestConnector(startQ, endQ *query.NavigationQuery, startRoom, endRoom, from, to string, class ConnectorClass) (*query.Path, *query.Path, Connector, error) {
	startTime := time.Now()
	log := logger.Logger().With("from", from, "to", to, "class", class)

	var (
		best1, best2 *query.Path
		bestConn     Connector
		bestCost     = math.Inf(1)
		tried        int
		lastErr      error
		limited      bool
	)
	for _, room := range startQ.Rooms() {
		if class == ClassStairs && !builder.IsStairwell(room) {
			continue
		}
		conn, ok := r.stairs.Lookup(room, from, to, class)
		if !ok {
			continue
		}
		tried++

		leg1, err := startQ.FindRoute(startRoom, conn.Exit)
		if err != nil {
			log.Debug("connector leg failed", "stair", conn.Stair, "leg", 1, "error", err)
			lastErr, limited = err, limited || errors.Is(err, query.ErrSearchLimit)
			continue
		}
		leg2, err := endQ.FindRoute(conn.Arrive, endRoom)
		if err != nil {
			log.Debug("connector leg failed", "stair", conn.Stair, "leg", 2, "error", err)
			lastErr, limited = err, limited || errors.Is(err, query.ErrSearchLimit)
			continue
		}
		if cost := leg1.Distance + leg2.Distance; cost < bestCost {
			best1, best2, bestConn, bestCost = leg1, leg2, conn, cost
		}
	}

	if tried == 0 {
		return nil, nil, Connector{}, fmt.Errorf("%w: no %s connector from %s to %s", ErrNoCrossFloorPath, class, from, to)
	}
	if best1 == nil && limited {
		return nil, nil, Connector{}, fmt.Errorf("%w: %s to %s via %d connector(s): %v", query.ErrSearchLimit, startRoom, endRoom, tried, lastErr)
	}
	if best1 == nil {
		return nil, nil, Connector{}, fmt.Errorf("%w: %s to %s via %d connector(s): %v", ErrNoCrossFloorPath, startRoom, endRoom, tried, lastErr)
	}
	log.Debug("connector chosen", "exit", bestConn.Exit, "arrive", bestConn.Arrive, "tried", tried, "distance", bestCost, "took", time.Since(startTime))
	return best1, best2, bestConn, nil
}

// IsRouteNotFound reports whether err means the endpoints exist but are not
// connected.
func IsRouteNotFound(err error) bool {
	return errors.Is(err, query.ErrNoPathFound) || errors.Is(err, ErrNoCrossFloorPath)
}
