package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/geometry"
)

// FloorSpec names the input files of one floor. Snapshot, when set, takes
// precedence over Segments and Labels.
type FloorSpec struct {
	Name          string  `json:"name"`
	Segments      string  `json:"segments,omitempty"`
	Labels        string  `json:"labels,omitempty"`
	Snapshot      string  `json:"snapshot,omitempty"`
	PixelsPerUnit float64 `json:"pixels_per_unit,omitempty"`
}

// Manifest lists the floors of a building.
type Manifest struct {
	Floors []FloorSpec `json:"floors"`

	dir string
}

// NormalizeFloor is the canonical form of a floor name.
func NormalizeFloor(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ReadManifest decodes a manifest. Relative paths resolve against dir.
func ReadManifest(r io.Reader, dir string) (*Manifest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	m := &Manifest{dir: dir}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrMalformedInput, err)
	}

	seen := map[string]bool{}
	for i := range m.Floors {
		fs := &m.Floors[i]
		fs.Name = NormalizeFloor(fs.Name)
		switch {
		case fs.Name == "":
			return nil, fmt.Errorf("%w: manifest floor %d has no name", ErrMalformedInput, i)
		case seen[fs.Name]:
			return nil, fmt.Errorf("%w: manifest floor %q listed twice", ErrMalformedInput, fs.Name)
		case fs.Snapshot == "" && fs.Segments == "":
			return nil, fmt.Errorf("%w: manifest floor %q needs segments or snapshot", ErrMalformedInput, fs.Name)
		case fs.PixelsPerUnit < 0:
			return nil, fmt.Errorf("%w: manifest floor %q has negative pixels_per_unit", ErrMalformedInput, fs.Name)
		}
		seen[fs.Name] = true
	}
	return m, nil
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadManifest(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Resolve returns p relative to the manifest directory.
func (m *Manifest) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

// Floor returns the spec of a floor.
func (m *Manifest) Floor(name string) (FloorSpec, bool) {
	name = NormalizeFloor(name)
	for _, fs := range m.Floors {
		if fs.Name == name {
			return fs, true
		}
	}
	return FloorSpec{}, false
}

// ReadFloorInput reads the segments and labels of a floor.
func (m *Manifest) ReadFloorInput(fs FloorSpec) ([]geometry.Segment, []builder.LabeledPoint, error) {
	segments, err := ReadSegmentsFile(m.Resolve(fs.Segments))
	if err != nil {
		return nil, nil, err
	}
	var labels []builder.LabeledPoint
	if fs.Labels != "" {
		if labels, err = ReadLabelsFile(m.Resolve(fs.Labels)); err != nil {
			return nil, nil, err
		}
	}
	return segments, labels, nil
}
