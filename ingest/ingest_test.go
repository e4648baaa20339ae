package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/geometry"
)

func TestReadSegmentsJSON(t *testing.T) {
	in := `[{"start":{"x":0,"y":0},"end":{"x":10,"y":0}},{"start":{"x":10,"y":0},"end":{"x":10,"y":5.5}}]`
	got, err := ReadSegmentsJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []geometry.Segment{geometry.Seg(0, 0, 10, 0), geometry.Seg(10, 0, 10, 5.5)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReadSegmentsJSONMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":      `{`,
		"missing end":   `[{"start":{"x":0,"y":0}}]`,
		"missing y":     `[{"start":{"x":0},"end":{"x":1,"y":1}}]`,
		"wrong type":    `[{"start":{"x":"a","y":0},"end":{"x":1,"y":1}}]`,
		"object at top": `{"start":{"x":0,"y":0}}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSegmentsJSON(strings.NewReader(in))
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("err = %v, want ErrMalformedInput", err)
			}
		})
	}
}

const svgFixture = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100">
  <line x1="0" y1="0" x2="10" y2="0"/>
  <g id="corridors">
    <polyline points="10,0 10,10 0,10"/>
    <line x1="0" y1="10" x2="0" y2="0.5"/>
  </g>
  <circle cx="5" cy="5" r="1"/>
</svg>`

func TestReadSegmentsSVG(t *testing.T) {
	got, err := ReadSegmentsSVG(strings.NewReader(svgFixture))
	if err != nil {
		t.Fatal(err)
	}
	want := []geometry.Segment{
		geometry.Seg(0, 0, 10, 0),
		geometry.Seg(10, 0, 10, 10),
		geometry.Seg(10, 10, 0, 10),
		geometry.Seg(0, 10, 0, 0.5),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReadSegmentsSVGMalformed(t *testing.T) {
	tests := map[string]string{
		"not svg":        `<html></html>`,
		"missing attr":   `<svg><line x1="0" y1="0" x2="1"/></svg>`,
		"bad number":     `<svg><line x1="0" y1="0" x2="1" y2="one"/></svg>`,
		"odd polyline":   `<svg><polyline points="0,0 1"/></svg>`,
		"unclosed":       `<svg><line`,
		"polyline no pt": `<svg><polyline/></svg>`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSegmentsSVG(strings.NewReader(in))
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("err = %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestReadSegmentsSVGRejectsNaN(t *testing.T) {
	_, err := ReadSegmentsSVG(strings.NewReader(`<svg><line x1="NaN" y1="0" x2="1" y2="1"/></svg>`))
	if !errors.Is(err, geometry.ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestReadLabelsCSV(t *testing.T) {
	in := "room_name,x,y,notes\n" +
		"ori,0,0,\n" +
		"E100_a, 2.5 ,0.2,main\n" +
		",3,3,blank\n" +
		"E102S,5,10.2,\n"
	got, err := ReadLabelsCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []builder.LabeledPoint{
		{X: 0, Y: 0, Label: "ori"},
		{X: 2.5, Y: 0.2, Label: "E100_a"},
		{X: 5, Y: 10.2, Label: "E102S"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReadLabelsCSVMalformed(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"no label col": "x,y,name\n1,2,E1\n",
		"bad x":        "x,y,room_name\none,2,E1\n",
		"short row":    "x,y,room_name\n1,2\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadLabelsCSV(strings.NewReader(in))
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("err = %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestReadLabelsJSON(t *testing.T) {
	got, err := ReadLabelsJSON(strings.NewReader(`[{"x":1,"y":2,"label":" W066 "}]`))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []builder.LabeledPoint{{X: 1, Y: 2, Label: "W066"}}) {
		t.Fatalf("got %v", got)
	}

	_, err = ReadLabelsJSON(strings.NewReader(`[{"x":1,"label":"W066"}]`))
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f1.svg", svgFixture)
	writeFile(t, dir, "f1.csv", "x,y,room_name\n2,0.2,E100\n")
	path := writeFile(t, dir, "floors.json", `{"floors":[
		{"name":" Floor_1 ","segments":"f1.svg","labels":"f1.csv","pixels_per_unit":12},
		{"name":"basement","snapshot":"/abs/basement.nav"}
	]}`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	fs, ok := m.Floor("FLOOR_1")
	if !ok || fs.Name != "floor_1" || fs.PixelsPerUnit != 12 {
		t.Fatalf("Floor = %+v, %v", fs, ok)
	}
	if got := m.Resolve("f1.svg"); got != filepath.Join(dir, "f1.svg") {
		t.Fatalf("Resolve = %q", got)
	}
	if got := m.Resolve("/abs/basement.nav"); got != "/abs/basement.nav" {
		t.Fatalf("Resolve absolute = %q", got)
	}

	segments, labels, err := m.ReadFloorInput(fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 4 || len(labels) != 1 || labels[0].Label != "E100" {
		t.Fatalf("segments %v labels %v", segments, labels)
	}
}

func TestManifestInvalid(t *testing.T) {
	tests := map[string]string{
		"duplicate":     `{"floors":[{"name":"a","segments":"x"},{"name":"A","segments":"y"}]}`,
		"no name":       `{"floors":[{"segments":"x"}]}`,
		"no input":      `{"floors":[{"name":"a"}]}`,
		"unknown field": `{"floors":[{"name":"a","segments":"x","scale":2}]}`,
		"negative ppu":  `{"floors":[{"name":"a","segments":"x","pixels_per_unit":-1}]}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadManifest(strings.NewReader(in), "")
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("err = %v, want ErrMalformedInput", err)
			}
		})
	}
}
