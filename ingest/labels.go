package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/logger"
)

// label column names accepted in CSV headers, in order of preference
var labelColumns = []string{"room_name", "label"}

// ReadLabelsCSV reads a CSV with a header naming the x, y and room_name
// (or label) columns. Other columns are ignored. Rows with an empty label
// are skipped.
func ReadLabelsCSV(r io.Reader) ([]builder.LabeledPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: labels header: %v", ErrMalformedInput, err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	xi, okX := col["x"]
	yi, okY := col["y"]
	li := -1
	for _, name := range labelColumns {
		if i, ok := col[name]; ok {
			li = i
			break
		}
	}
	if !okX || !okY || li < 0 {
		return nil, fmt.Errorf("%w: labels header %v needs x, y and room_name", ErrMalformedInput, header)
	}

	var labels []builder.LabeledPoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: labels line %d: %v", ErrMalformedInput, line, err)
		}
		if xi >= len(rec) || yi >= len(rec) || li >= len(rec) {
			return nil, fmt.Errorf("%w: labels line %d: too few columns", ErrMalformedInput, line)
		}

		label := strings.TrimSpace(rec[li])
		if label == "" {
			logger.Logger().Warn("skipping unlabeled point", "line", line)
			continue
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[xi]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: labels line %d: x %q", ErrMalformedInput, line, rec[xi])
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[yi]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: labels line %d: y %q", ErrMalformedInput, line, rec[yi])
		}
		lp := builder.LabeledPoint{X: x, Y: y, Label: label}
		if err := lp.Point().Validate(); err != nil {
			return nil, fmt.Errorf("labels line %d: %w", line, err)
		}
		labels = append(labels, lp)
	}
	return labels, nil
}

type labelJSON struct {
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Label string   `json:"label"`
}

// ReadLabelsJSON decodes `[{"x","y","label"}]`.
func ReadLabelsJSON(r io.Reader) ([]builder.LabeledPoint, error) {
	var raw []labelJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: labels: %v", ErrMalformedInput, err)
	}
	labels := make([]builder.LabeledPoint, 0, len(raw))
	for i, l := range raw {
		if l.X == nil || l.Y == nil || strings.TrimSpace(l.Label) == "" {
			return nil, fmt.Errorf("%w: label %d: missing x, y or label", ErrMalformedInput, i)
		}
		lp := builder.LabeledPoint{X: *l.X, Y: *l.Y, Label: strings.TrimSpace(l.Label)}
		if err := lp.Point().Validate(); err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		labels = append(labels, lp)
	}
	return labels, nil
}
