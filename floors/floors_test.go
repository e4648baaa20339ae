package floors

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/geometry"
	"github.com/elipaulman/hack-ohio-2025/ingest"
	"github.com/elipaulman/hack-ohio-2025/query"
)

func floorQuery(t *testing.T, name string, segments []geometry.Segment, labels []builder.LabeledPoint) *query.NavigationQuery {
	t.Helper()
	navData, err := builder.BuildFloor(name, segments, labels, builder.DefaultOptions())
	if err != nil {
		t.Fatalf("BuildFloor(%s): %v", name, err)
	}
	nq, err := query.NewNavigationQuery(navData, query.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return nq
}

// floor_1: E100, W101S and E102S on one corridor.
func floorOne(t *testing.T) *query.NavigationQuery {
	return floorQuery(t, "floor_1",
		[]geometry.Segment{geometry.Seg(0, 0, 20, 0)},
		[]builder.LabeledPoint{
			{X: 2, Y: 0.1, Label: "E100"},
			{X: 10, Y: 0.1, Label: "W101S"},
			{X: 18, Y: 0.1, Label: "E102S"},
		})
}

// basement: E002S and W066, no W001S.
func basement(t *testing.T) *query.NavigationQuery {
	return floorQuery(t, "basement",
		[]geometry.Segment{geometry.Seg(0, 0, 0, 20)},
		[]builder.LabeledPoint{
			{X: 0.1, Y: 1, Label: "E002S"},
			{X: 0.1, Y: 15, Label: "W066"},
		})
}

func defaultRegistry(t *testing.T, floors ...*query.NavigationQuery) *Registry {
	t.Helper()
	table, err := DefaultStairTable()
	if err != nil {
		t.Fatalf("DefaultStairTable: %v", err)
	}
	reg, err := NewRegistry(table, floors...)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestCrossFloorRoute(t *testing.T) {
	reg := defaultRegistry(t, floorOne(t), basement(t))

	route, err := reg.FindRoute(RouteRequest{
		StartFloor: "floor_1", StartRoom: "E100",
		EndFloor: "Basement", EndRoom: "w066",
	})
	if err != nil {
		t.Fatalf("FindRoute: %v", err)
	}

	if route.Transition == nil || route.Transition.ExitStair != "E102S" || route.Transition.ArriveStair != "E002S" {
		t.Fatalf("transition = %+v", route.Transition)
	}
	if route.Transition.FromFloor != "floor_1" || route.Transition.ToFloor != "basement" || route.Transition.Type != ClassStairs {
		t.Fatalf("transition floors = %+v", route.Transition)
	}
	if len(route.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(route.Segments))
	}
	if route.TotalDistance != route.Segments[0].Distance+route.Segments[1].Distance {
		t.Fatalf("total %v != %v + %v", route.TotalDistance, route.Segments[0].Distance, route.Segments[1].Distance)
	}
	if math.Abs(route.TotalDistance-30) > 1e-9 || route.Distance != route.TotalDistance {
		t.Fatalf("total = %f, distance = %f, want 30", route.TotalDistance, route.Distance)
	}
	if !reflect.DeepEqual(route.Floors, []string{"floor_1", "basement"}) {
		t.Fatalf("floors = %v", route.Floors)
	}
	if route.StartRoom != "E100" || route.EndRoom != "W066" {
		t.Fatalf("rooms = %s, %s", route.StartRoom, route.EndRoom)
	}

	seg1, seg2 := route.Segments[0], route.Segments[1]
	if len(route.Waypoints) != len(seg1.Waypoints)+1+len(seg2.Waypoints) {
		t.Fatalf("flat waypoints = %d", len(route.Waypoints))
	}
	marker := route.Waypoints[len(seg1.Waypoints)]
	if marker.Floor != FloorTransition || marker.Transition == nil || marker.NodeID != -1 {
		t.Fatalf("marker = %+v", marker)
	}
	for i, wp := range route.Waypoints {
		if wp.Index != i {
			t.Fatalf("waypoint %d has index %d", i, wp.Index)
		}
	}
	if last := seg1.Waypoints[len(seg1.Waypoints)-1]; last.Label != "E102S" || !last.IsTransition {
		t.Fatalf("first leg ends at %+v", last)
	}
	if first := seg2.Waypoints[0]; first.Label != "E002S" || !first.IsTransition || first.Floor != "basement" {
		t.Fatalf("second leg starts at %+v", first)
	}
}

func TestSameFloorRoute(t *testing.T) {
	reg := defaultRegistry(t, floorOne(t))
	route, err := reg.FindRoute(RouteRequest{StartFloor: "floor_1", StartRoom: "E100", EndFloor: "floor_1", EndRoom: "E102S"})
	if err != nil {
		t.Fatal(err)
	}
	if route.Transition != nil || len(route.Segments) != 1 || !reflect.DeepEqual(route.Floors, []string{"floor_1"}) {
		t.Fatalf("route = %+v", route)
	}
	if math.Abs(route.TotalDistance-16) > 1e-9 || route.Distance != route.TotalDistance {
		t.Fatalf("total = %f, distance = %f, want 16", route.TotalDistance, route.Distance)
	}
	if route.Mode != ModeStairs {
		t.Fatalf("mode = %q", route.Mode)
	}
}

func TestAsymmetricStairwell(t *testing.T) {
	f1 := floorQuery(t, "floor_1",
		[]geometry.Segment{geometry.Seg(0, 0, 20, 0)},
		[]builder.LabeledPoint{
			{X: 2, Y: 0.1, Label: "W100"},
			{X: 10, Y: 0.1, Label: "W103SN"},
			{X: 18, Y: 0.1, Label: "W103SS"},
		})
	f2 := floorQuery(t, "floor_2",
		[]geometry.Segment{geometry.Seg(0, 0, 20, 0)},
		[]builder.LabeledPoint{
			{X: 2, Y: 0.1, Label: "W203SN"},
			{X: 12, Y: 0.1, Label: "W250"},
		})
	reg := defaultRegistry(t, f1, f2)

	route, err := reg.FindRoute(RouteRequest{StartFloor: "floor_1", StartRoom: "W100", EndFloor: "floor_2", EndRoom: "W250"})
	if err != nil {
		t.Fatal(err)
	}
	if route.Transition.ExitStair != "W103SS" || route.Transition.ArriveStair != "W203SN" {
		t.Fatalf("transition = %+v", route.Transition)
	}
	if math.Abs(route.TotalDistance-26) > 1e-9 {
		t.Fatalf("total = %f, want 26", route.TotalDistance)
	}
}

func TestCrossFloorErrors(t *testing.T) {
	f2 := floorQuery(t, "floor_2",
		[]geometry.Segment{geometry.Seg(0, 0, 20, 0)},
		[]builder.LabeledPoint{
			{X: 2, Y: 0.1, Label: "E204S"},
			{X: 12, Y: 0.1, Label: "E250"},
		})
	reg := defaultRegistry(t, floorOne(t), basement(t), f2)

	tests := []struct {
		name string
		req  RouteRequest
		want error
	}{
		{"floor not loaded", RouteRequest{StartFloor: "roof", StartRoom: "E100", EndFloor: "floor_1", EndRoom: "E102S"}, ErrFloorNotLoaded},
		{"unknown start room", RouteRequest{StartFloor: "floor_1", StartRoom: "X1", EndFloor: "basement", EndRoom: "W066"}, query.ErrRoomNotFound},
		{"unknown end room", RouteRequest{StartFloor: "floor_1", StartRoom: "E100", EndFloor: "basement", EndRoom: "X1"}, query.ErrRoomNotFound},
		{"two floor changes", RouteRequest{StartFloor: "floor_2", StartRoom: "E250", EndFloor: "basement", EndRoom: "W066"}, ErrNoCrossFloorPath},
		{"no elevator connectors", RouteRequest{StartFloor: "floor_1", StartRoom: "E100", EndFloor: "basement", EndRoom: "W066", Mode: ModeAccessible}, ErrNoCrossFloorPath},
		{"arrive stair missing", RouteRequest{StartFloor: "floor_1", StartRoom: "E100", EndFloor: "floor_2", EndRoom: "E250"}, ErrNoCrossFloorPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.FindRoute(tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCrossFloorSearchLimit(t *testing.T) {
	navData, err := builder.BuildFloor("floor_1",
		[]geometry.Segment{geometry.Seg(0, 0, 10, 0), geometry.Seg(10, 0, 20, 0)},
		[]builder.LabeledPoint{
			{X: 1, Y: 0.1, Label: "E100"},
			{X: 19, Y: 0.1, Label: "E102S"},
		}, builder.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	limited, err := query.NewNavigationQuery(navData, query.Options{MaxIterations: 1})
	if err != nil {
		t.Fatal(err)
	}
	reg := defaultRegistry(t, limited, basement(t))

	_, err = reg.FindRoute(RouteRequest{StartFloor: "floor_1", StartRoom: "E100", EndFloor: "basement", EndRoom: "W066"})
	if !errors.Is(err, query.ErrSearchLimit) {
		t.Fatalf("err = %v, want ErrSearchLimit", err)
	}
	if IsRouteNotFound(err) {
		t.Fatalf("search limit reported as a missing route: %v", err)
	}
}

func TestElevatorConnector(t *testing.T) {
	table, err := NewStairTable([]Connector{
		{Stair: "ELEV1", From: "floor_1", To: "basement", Arrive: "ELEV0", Class: ClassElevator},
	})
	if err != nil {
		t.Fatal(err)
	}
	f1 := floorQuery(t, "floor_1",
		[]geometry.Segment{geometry.Seg(0, 0, 20, 0)},
		[]builder.LabeledPoint{{X: 2, Y: 0.1, Label: "E100"}, {X: 6, Y: 0.1, Label: "ELEV1"}})
	b := floorQuery(t, "basement",
		[]geometry.Segment{geometry.Seg(0, 0, 20, 0)},
		[]builder.LabeledPoint{{X: 6, Y: 0.1, Label: "ELEV0"}, {X: 9, Y: 0.1, Label: "W066"}})
	reg, err := NewRegistry(table, f1, b)
	if err != nil {
		t.Fatal(err)
	}

	req := RouteRequest{StartFloor: "floor_1", StartRoom: "E100", EndFloor: "basement", EndRoom: "W066"}
	if _, err := reg.FindRoute(req); !errors.Is(err, ErrNoCrossFloorPath) {
		t.Fatalf("stairs mode used an elevator: %v", err)
	}
	req.Mode = ModeAccessible
	route, err := reg.FindRoute(req)
	if err != nil {
		t.Fatal(err)
	}
	if route.Transition.Type != ClassElevator || math.Abs(route.TotalDistance-7) > 1e-9 {
		t.Fatalf("route = %+v", route)
	}
}

func TestStairTable(t *testing.T) {
	table, err := DefaultStairTable()
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 29 {
		t.Fatalf("default table has %d rows", table.Len())
	}
	c, ok := table.Lookup("w103sn", "Floor_1", "floor_2", ClassStairs)
	if !ok || c.Exit != "W103SS" || c.Arrive != "W203SN" {
		t.Fatalf("W103SN = %+v, %v", c, ok)
	}
	c, ok = table.Lookup("E102S", "floor_1", "basement", ClassStairs)
	if !ok || c.Exit != "E102S" || c.Arrive != "E002S" {
		t.Fatalf("E102S = %+v, %v", c, ok)
	}
	if _, ok := table.Lookup("E102S", "floor_1", "basement", ClassElevator); ok {
		t.Fatalf("elevator lookup matched a stair row")
	}
	if _, ok := table.Lookup("E104S", "floor_1", "basement", ClassStairs); ok {
		t.Fatalf("E104S does not reach the basement")
	}
}

func TestStairTableInvalid(t *testing.T) {
	tests := map[string]string{
		"duplicate":     `{"connectors":[{"stair":"A1S","from":"a","to":"b","arrive":"B1S"},{"stair":"a1s","from":"A","to":"b","arrive":"B2S"}]}`,
		"no arrive":     `{"connectors":[{"stair":"A1S","from":"a","to":"b"}]}`,
		"same floor":    `{"connectors":[{"stair":"A1S","from":"a","to":"a","arrive":"B1S"}]}`,
		"bad class":     `{"connectors":[{"stair":"A1S","from":"a","to":"b","arrive":"B1S","class":"ramp"}]}`,
		"unknown field": `{"connectors":[{"stair":"A1S","from":"a","to":"b","arrive":"B1S","bidirectional":true}]}`,
		"not json":      `connectors`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadStairTable(strings.NewReader(in))
			if !errors.Is(err, ErrFloorConfigInvalid) {
				t.Fatalf("err = %v, want ErrFloorConfigInvalid", err)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeStairs, "Stairs": ModeStairs, "accessible": ModeAccessible, "ADA": ModeAccessible, "elevator": ModeAccessible} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("teleport"); err == nil {
		t.Error("ParseMode accepted an unknown mode")
	}
	if ModeAccessible.Class() != ClassElevator || ModeStairs.Class() != ClassStairs {
		t.Error("mode classes mismatch")
	}
}

func TestRegistryRejectsDuplicateFloors(t *testing.T) {
	_, err := NewRegistry(nil, floorOne(t), floorOne(t))
	if !errors.Is(err, ErrFloorConfigInvalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestNilTableMeansNoConnectors(t *testing.T) {
	reg, err := NewRegistry(nil, floorOne(t), basement(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = reg.FindRoute(RouteRequest{StartFloor: "floor_1", StartRoom: "E100", EndFloor: "basement", EndRoom: "W066"})
	if !errors.Is(err, ErrNoCrossFloorPath) {
		t.Fatalf("err = %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f1.json", `[{"start":{"x":0,"y":0},"end":{"x":20,"y":0}}]`)
	writeFile(t, dir, "f1.csv", "x,y,room_name\n2,0.1,E100\n18,0.1,E102S\n")
	writeFile(t, dir, "bad.json", `[{"start":{"x":0,"y":0}}]`)

	bnav, err := builder.BuildFloor("basement",
		[]geometry.Segment{geometry.Seg(0, 0, 0, 20)},
		[]builder.LabeledPoint{{X: 0.1, Y: 1, Label: "E002S"}, {X: 0.1, Y: 15, Label: "W066"}},
		builder.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.Save(bnav, filepath.Join(dir, "basement.nav")); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "floors.json", `{"floors":[
		{"name":"floor_1","segments":"f1.json","labels":"f1.csv","pixels_per_unit":10},
		{"name":"basement","snapshot":"basement.nav"},
		{"name":"floor_2","segments":"bad.json"},
		{"name":"floor_3","segments":"missing.json"}
	]}`)
	m, err := ingest.LoadManifest(filepath.Join(dir, "floors.json"))
	if err != nil {
		t.Fatal(err)
	}
	table, err := DefaultStairTable()
	if err != nil {
		t.Fatal(err)
	}

	reg, failed, err := LoadRegistry(context.Background(), m, table, LoadOptions{
		Build:       builder.DefaultOptions(),
		Parallelism: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(reg.Floors(), []string{"basement", "floor_1"}) {
		t.Fatalf("floors = %v", reg.Floors())
	}
	if len(failed) != 2 || failed["floor_2"] == nil || failed["floor_3"] == nil {
		t.Fatalf("failed = %v", failed)
	}
	if !errors.Is(failed["floor_2"], ingest.ErrMalformedInput) {
		t.Fatalf("floor_2 error = %v", failed["floor_2"])
	}

	f1, err := reg.Floor("floor_1")
	if err != nil {
		t.Fatal(err)
	}
	if f1.GetNavData().PixelsPerUnit != 10 {
		t.Fatalf("pixels per unit = %f", f1.GetNavData().PixelsPerUnit)
	}

	route, err := reg.FindRoute(RouteRequest{StartFloor: "floor_1", StartRoom: "E100", EndFloor: "basement", EndRoom: "W066"})
	if err != nil {
		t.Fatal(err)
	}
	if route.Transition.ArriveStair != "E002S" {
		t.Fatalf("transition = %+v", route.Transition)
	}
}

func TestLoadRegistryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := ingest.ReadManifest(strings.NewReader(`{"floors":[{"name":"a","segments":"a.json"}]}`), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadRegistry(ctx, m, nil, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestStoreSwap(t *testing.T) {
	first := defaultRegistry(t, floorOne(t))
	second := defaultRegistry(t, floorOne(t), basement(t))

	s := NewStore(first)
	if s.Load() != first {
		t.Fatal("Load did not return the initial registry")
	}
	if prev := s.Swap(second); prev != first {
		t.Fatal("Swap returned the wrong registry")
	}
	if len(s.Load().Floors()) != 2 {
		t.Fatal("Swap did not publish the new registry")
	}
}

func TestConcurrentCrossFloorRoutes(t *testing.T) {
	reg := defaultRegistry(t, floorOne(t), basement(t))
	req := RouteRequest{StartFloor: "floor_1", StartRoom: "E100", EndFloor: "basement", EndRoom: "W066"}
	want, err := reg.FindRoute(req)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := reg.FindRoute(req)
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- errors.New("concurrent route differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
