package floors

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/ingest"
)

// ConnectorClass tags a connector with the kind of vertical circulation it
// uses.
type ConnectorClass string

const (
	ClassStairs   ConnectorClass = "stairs"
	ClassElevator ConnectorClass = "elevator"
)

// Mode is the routing mode requested by the caller.
type Mode string

const (
	ModeStairs     Mode = "stairs"
	ModeAccessible Mode = "accessible"
)

// ParseMode accepts "", "stairs", "accessible", "elevator" and "ada".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stairs":
		return ModeStairs, nil
	case "accessible", "elevator", "ada":
		return ModeAccessible, nil
	}
	return "", fmt.Errorf("unknown routing mode %q", s)
}

// Class returns the connector class a mode may use.
func (m Mode) Class() ConnectorClass {
	if m == ModeAccessible {
		return ClassElevator
	}
	return ClassStairs
}

// Connector is one row of the stair connection table: leaving floor From
// for floor To through Stair means walking to Exit and arriving at Arrive.
type Connector struct {
	Stair  string         `json:"stair"`
	From   string         `json:"from"`
	To     string         `json:"to"`
	Exit   string         `json:"exit,omitempty"`
	Arrive string         `json:"arrive"`
	Class  ConnectorClass `json:"class,omitempty"`
}

type connectorKey struct {
	stair, from, to string
	class           ConnectorClass
}

// StairTable is an immutable connector lookup table.
type StairTable struct {
	connectors []Connector
	index      map[connectorKey]Connector
}

// NewStairTable normalizes and indexes rows. Exit defaults to Stair and
// Class to stairs; duplicate keys are rejected.
func NewStairTable(rows []Connector) (*StairTable, error) {
	st := &StairTable{index: make(map[connectorKey]Connector, len(rows))}
	for i, c := range rows {
		c.Stair = builder.NormalizeRoom(c.Stair)
		c.Exit = builder.NormalizeRoom(c.Exit)
		c.Arrive = builder.NormalizeRoom(c.Arrive)
		c.From = ingest.NormalizeFloor(c.From)
		c.To = ingest.NormalizeFloor(c.To)
		if c.Exit == "" {
			c.Exit = c.Stair
		}
		if c.Class == "" {
			c.Class = ClassStairs
		}

		switch {
		case c.Stair == "" || c.Arrive == "":
			return nil, fmt.Errorf("%w: connector %d needs stair and arrive", ErrFloorConfigInvalid, i)
		case c.From == "" || c.To == "" || c.From == c.To:
			return nil, fmt.Errorf("%w: connector %d (%s) has invalid floors %q -> %q", ErrFloorConfigInvalid, i, c.Stair, c.From, c.To)
		case c.Class != ClassStairs && c.Class != ClassElevator:
			return nil, fmt.Errorf("%w: connector %d (%s) has unknown class %q", ErrFloorConfigInvalid, i, c.Stair, c.Class)
		}

		key := connectorKey{c.Stair, c.From, c.To, c.Class}
		if _, dup := st.index[key]; dup {
			return nil, fmt.Errorf("%w: connector %s %s->%s (%s) declared twice", ErrFloorConfigInvalid, c.Stair, c.From, c.To, c.Class)
		}
		st.index[key] = c
		st.connectors = append(st.connectors, c)
	}
	return st, nil
}

// Lookup returns the connector for leaving from through stair towards to.
func (st *StairTable) Lookup(stair, from, to string, class ConnectorClass) (Connector, bool) {
	if st == nil {
		return Connector{}, false
	}
	c, ok := st.index[connectorKey{builder.NormalizeRoom(stair), ingest.NormalizeFloor(from), ingest.NormalizeFloor(to), class}]
	return c, ok
}

// Connectors returns every row in declaration order.
func (st *StairTable) Connectors() []Connector {
	if st == nil {
		return nil
	}
	return st.connectors
}

// Len returns the number of rows.
func (st *StairTable) Len() int {
	return len(st.Connectors())
}

type stairFile struct {
	Connectors []Connector `json:"connectors"`
}

// LoadStairTable decodes `{"connectors":[...]}`.
func LoadStairTable(r io.Reader) (*StairTable, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var f stairFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: stair table: %v", ErrFloorConfigInvalid, err)
	}
	return NewStairTable(f.Connectors)
}

// LoadStairTableFile reads a stair table from disk.
func LoadStairTableFile(path string) (*StairTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := LoadStairTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

//go:embed stairs_default.json
var defaultStairs string

// DefaultStairTable returns the connector table of the reference building.
func DefaultStairTable() (*StairTable, error) {
	return LoadStairTable(strings.NewReader(defaultStairs))
}
