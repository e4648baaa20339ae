package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/elipaulman/hack-ohio-2025/floors"
	"github.com/elipaulman/hack-ohio-2025/geometry"
	"github.com/elipaulman/hack-ohio-2025/logger"
	"github.com/elipaulman/hack-ohio-2025/query"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// errBadRequest marks errors caused by missing or malformed parameters.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// errorStatus maps an error to an HTTP status and a machine-readable code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, query.ErrRoomNotFound):
		return http.StatusNotFound, "room_not_found"
	case errors.Is(err, query.ErrNoPathFound):
		return http.StatusNotFound, "no_path"
	case errors.Is(err, query.ErrSearchLimit):
		return http.StatusUnprocessableEntity, "search_limit"
	case errors.Is(err, floors.ErrFloorNotLoaded):
		return http.StatusNotFound, "floor_not_loaded"
	case errors.Is(err, floors.ErrNoCrossFloorPath):
		return http.StatusNotFound, "no_cross_floor_path"
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Logger().Warn("write response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, RequestID: RequestID(r.Context())})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Logger().Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
	}
	writeJSONError(w, r, status, code, err.Error())
}

func (s *Server) floorQuery(r *http.Request) (*query.NavigationQuery, error) {
	return s.store.Load().Floor(mux.Vars(r)["floor"])
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"floors": s.store.Load().Floors(),
	})
}

func (s *Server) floorsHandler(w http.ResponseWriter, r *http.Request) {
	reg := s.store.Load()
	stats := make([]query.NavigationStats, 0, len(reg.Floors()))
	for _, name := range reg.Floors() {
		nq, err := reg.Floor(name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		stats = append(stats, nq.GetStats())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"floors":     stats,
		"connectors": reg.Stairs().Len(),
	})
}

func (s *Server) roomsHandler(w http.ResponseWriter, r *http.Request) {
	nq, err := s.floorQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"floor":      nq.Floor(),
		"rooms":      nq.Rooms(),
		"stairwells": nq.Stairwells(),
	})
}

func (s *Server) navigationHandler(w http.ResponseWriter, r *http.Request) {
	nq, err := s.floorQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nq.Export())
}

func (s *Server) geojsonHandler(w http.ResponseWriter, r *http.Request) {
	nq, err := s.floorQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	data, err := nq.ExportGeoJSON().MarshalJSON()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := w.Write(data); err != nil {
		logger.Logger().Warn("write response", "path", r.URL.Path, "error", err)
	}
}

func parsePoint(r *http.Request, xKey, yKey string) (geometry.Point, error) {
	q := r.URL.Query()
	x, err := strconv.ParseFloat(q.Get(xKey), 64)
	if err != nil {
		return geometry.Point{}, badRequest("%s must be a number", xKey)
	}
	y, err := strconv.ParseFloat(q.Get(yKey), 64)
	if err != nil {
		return geometry.Point{}, badRequest("%s must be a number", yKey)
	}
	p := geometry.Pt(x, y)
	if !p.Valid() {
		return geometry.Point{}, badRequest("%s/%s must be finite", xKey, yKey)
	}
	return p, nil
}

// closestHandler finds the room nearest to x,y. Coordinates are floor-plan
// pixels unless space=drawing.
func (s *Server) closestHandler(w http.ResponseWriter, r *http.Request) {
	nq, err := s.floorQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := parsePoint(r, "x", "y")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var (
		match query.RoomMatch
		ok    bool
	)
	switch space := r.URL.Query().Get("space"); space {
	case "", "pixel":
		match, ok = nq.NearestRoomPixel(p)
	case "drawing":
		match, ok = nq.NearestRoom(p)
	default:
		writeError(w, r, badRequest("unknown space %q", space))
		return
	}
	if !ok {
		writeError(w, r, fmt.Errorf("%w: floor %s has no rooms", query.ErrRoomNotFound, nq.Floor()))
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// routeRequest reads the query parameters of /api/route. floor is the
// default for start_floor and end_floor; start_x/start_y pick the room
// nearest to that pixel position when start is empty.
func (s *Server) routeRequest(r *http.Request, reg *floors.Registry) (floors.RouteRequest, error) {
	q := r.URL.Query()
	req := floors.RouteRequest{
		StartFloor: q.Get("start_floor"),
		StartRoom:  q.Get("start"),
		EndFloor:   q.Get("end_floor"),
		EndRoom:    q.Get("end"),
	}
	if floor := q.Get("floor"); floor != "" {
		if req.StartFloor == "" {
			req.StartFloor = floor
		}
		if req.EndFloor == "" {
			req.EndFloor = floor
		}
	}
	if req.StartFloor == "" || req.EndFloor == "" {
		return req, badRequest("start and end floors are required")
	}
	if req.EndRoom == "" {
		return req, badRequest("end room is required")
	}

	if req.StartRoom == "" {
		if q.Get("start_x") == "" && q.Get("start_y") == "" {
			return req, badRequest("start room or start_x/start_y is required")
		}
		p, err := parsePoint(r, "start_x", "start_y")
		if err != nil {
			return req, err
		}
		nq, err := reg.Floor(req.StartFloor)
		if err != nil {
			return req, err
		}
		match, ok := nq.NearestRoomPixel(p)
		if !ok {
			return req, fmt.Errorf("%w: floor %s has no rooms", query.ErrRoomNotFound, nq.Floor())
		}
		req.StartRoom = match.Room
	}

	mode, err := floors.ParseMode(q.Get("mode"))
	if err != nil {
		return req, badRequest("%v", err)
	}
	if v := q.Get("ada_compliance"); v != "" {
		ada, err := strconv.ParseBool(v)
		if err != nil {
			return req, badRequest("ada_compliance must be a boolean")
		}
		if ada {
			mode = floors.ModeAccessible
		}
	}
	req.Mode = mode
	return req, nil
}

func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	reg := s.store.Load()
	req, err := s.routeRequest(r, reg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	route, err := reg.FindRoute(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// ReloadResponse reports the outcome of a registry reload.
type ReloadResponse struct {
	Floors []string          `json:"floors"`
	Failed map[string]string `json:"failed,omitempty"`
}

func (s *Server) reloadHandler(w http.ResponseWriter, r *http.Request) {
	reg, failed, err := s.reload(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.store.Swap(reg)

	resp := ReloadResponse{Floors: reg.Floors()}
	if len(failed) > 0 {
		resp.Failed = make(map[string]string, len(failed))
		for name, ferr := range failed {
			resp.Failed[name] = ferr.Error()
		}
	}
	logger.Logger().Info("registry reloaded", "floors", len(resp.Floors), "failed", len(resp.Failed))
	writeJSON(w, http.StatusOK, resp)
}
