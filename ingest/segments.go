// Package ingest reads floor inputs: corridor segments, labeled points and
// the floor manifest.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/geometry"
)

// ErrMalformedInput is returned for missing fields and unparseable values.
var ErrMalformedInput = errors.New("malformed input")

type pointJSON struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p *pointJSON) point() (geometry.Point, bool) {
	if p == nil || p.X == nil || p.Y == nil {
		return geometry.Point{}, false
	}
	return geometry.Pt(*p.X, *p.Y), true
}

type segmentJSON struct {
	Start *pointJSON `json:"start"`
	End   *pointJSON `json:"end"`
}

// ReadSegmentsJSON decodes `[{"start":{"x","y"},"end":{"x","y"}}]`.
func ReadSegmentsJSON(r io.Reader) ([]geometry.Segment, error) {
	var raw []segmentJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: segments: %v", ErrMalformedInput, err)
	}

	segments := make([]geometry.Segment, len(raw))
	for i, s := range raw {
		start, ok := s.Start.point()
		if !ok {
			return nil, fmt.Errorf("%w: segment %d: missing start", ErrMalformedInput, i)
		}
		end, ok := s.End.point()
		if !ok {
			return nil, fmt.Errorf("%w: segment %d: missing end", ErrMalformedInput, i)
		}
		seg := geometry.Segment{Start: start, End: end}
		if err := seg.Validate(); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments[i] = seg
	}
	return segments, nil
}

// ReadSegmentsFile reads segments from a .json or .svg file.
func ReadSegmentsFile(path string) ([]geometry.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var segments []geometry.Segment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		segments, err = ReadSegmentsSVG(f)
	default:
		segments, err = ReadSegmentsJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return segments, nil
}

// ReadLabelsFile reads labeled points from a .csv or .json file.
func ReadLabelsFile(path string) ([]builder.LabeledPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []builder.LabeledPoint
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		labels, err = ReadLabelsJSON(f)
	default:
		labels, err = ReadLabelsCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return labels, nil
}
