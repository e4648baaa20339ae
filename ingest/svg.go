package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/elipaulman/hack-ohio-2025/geometry"
)

func attrFloat64(el *etree.Element, key string) (float64, error) {
	a := el.SelectAttr(key)
	if a == nil {
		return 0, fmt.Errorf("%w: <%s> missing %q", ErrMalformedInput, el.Tag, key)
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: <%s %s=%q>", ErrMalformedInput, el.Tag, key, a.Value)
	}
	return val, nil
}

func ingestLine(el *etree.Element) (geometry.Segment, error) {
	var v [4]float64
	for i, key := range []string{"x1", "y1", "x2", "y2"} {
		f, err := attrFloat64(el, key)
		if err != nil {
			return geometry.Segment{}, err
		}
		v[i] = f
	}
	return geometry.Seg(v[0], v[1], v[2], v[3]), nil
}

// ingestPolyline turns "x1,y1 x2,y2 ..." into consecutive segments.
func ingestPolyline(el *etree.Element) ([]geometry.Segment, error) {
	a := el.SelectAttr("points")
	if a == nil {
		return nil, fmt.Errorf("%w: <%s> missing \"points\"", ErrMalformedInput, el.Tag)
	}
	fields := strings.FieldsFunc(a.Value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("%w: <%s> odd coordinate count", ErrMalformedInput, el.Tag)
	}

	points := make([]geometry.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, errX := strconv.ParseFloat(fields[i], 64)
		y, errY := strconv.ParseFloat(fields[i+1], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: <%s> bad point %q,%q", ErrMalformedInput, el.Tag, fields[i], fields[i+1])
		}
		points = append(points, geometry.Pt(x, y))
	}

	var segments []geometry.Segment
	for i := 0; i+1 < len(points); i++ {
		segments = append(segments, geometry.Segment{Start: points[i], End: points[i+1]})
	}
	return segments, nil
}

// ReadSegmentsSVG collects every <line> and <polyline> in document order.
// Transforms are not applied; coordinates are taken as drawing units.
func ReadSegmentsSVG(r io.Reader) ([]geometry.Segment, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: svg: %v", ErrMalformedInput, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return nil, fmt.Errorf("%w: svg: missing <svg> root", ErrMalformedInput)
	}

	var segments []geometry.Segment
	var walk func(el *etree.Element) error
	walk = func(el *etree.Element) error {
		for _, child := range el.ChildElements() {
			switch child.Tag {
			case "line":
				seg, err := ingestLine(child)
				if err != nil {
					return err
				}
				segments = append(segments, seg)
			case "polyline":
				segs, err := ingestPolyline(child)
				if err != nil {
					return err
				}
				segments = append(segments, segs...)
			default:
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}

	for i, s := range segments {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("svg segment %d: %w", i, err)
		}
	}
	return segments, nil
}
