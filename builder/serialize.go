package builder

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/elipaulman/hack-ohio-2025/geometry"
)

// Snapshot file format constants.
const (
	NAVIGATION_FILE_MAGIC   = 0x57415946 // "WAYF"
	NAVIGATION_FILE_VERSION = 1
)

// decodePrealloc bounds the capacity reserved from a record count before any
// record has been read; slices grow past it as records arrive.
const decodePrealloc = 4096

func recordCount(r io.Reader, what string) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, fmt.Errorf("failed to read %s count: %w", what, err)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%s count %d out of range", what, n)
	}
	return int(n), nil
}

// FileHeader is the snapshot header.
type FileHeader struct {
	Magic   uint32
	Version uint32
}

type nodeRecord struct {
	ID int32
	X  float64
	Y  float64
}

type edgeRecord struct {
	NodeAID int32
	NodeBID int32
	Cost    float64
}

func writeString(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string too long: %d bytes", len(s))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Encode writes navData as a gzip-compressed snapshot.
func Encode(w io.Writer, navData *NavigationData) error {
	if err := navData.Validate(); err != nil {
		return fmt.Errorf("invalid navigation data: %w", err)
	}

	gz := gzip.NewWriter(w)
	buf := bufio.NewWriter(gz)

	header := FileHeader{Magic: NAVIGATION_FILE_MAGIC, Version: NAVIGATION_FILE_VERSION}
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writeString(buf, navData.Floor); err != nil {
		return fmt.Errorf("failed to write floor name: %w", err)
	}

	var hasOrigin uint8
	var origin geometry.Point
	if navData.Origin != nil {
		hasOrigin, origin = 1, *navData.Origin
	}
	if err := binary.Write(buf, binary.LittleEndian, hasOrigin); err != nil {
		return fmt.Errorf("failed to write origin flag: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, [2]float64{origin.X, origin.Y}); err != nil {
		return fmt.Errorf("failed to write origin: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, navData.PixelsPerUnit); err != nil {
		return fmt.Errorf("failed to write pixels per unit: %w", err)
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(navData.Nodes))); err != nil {
		return fmt.Errorf("failed to write node count: %w", err)
	}
	for _, node := range navData.Nodes {
		if err := binary.Write(buf, binary.LittleEndian, nodeRecord{ID: node.ID, X: node.X, Y: node.Y}); err != nil {
			return fmt.Errorf("failed to write node %d: %w", node.ID, err)
		}
		if err := writeString(buf, node.Label); err != nil {
			return fmt.Errorf("failed to write label of node %d: %w", node.ID, err)
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(navData.Edges))); err != nil {
		return fmt.Errorf("failed to write edge count: %w", err)
	}
	for i, edge := range navData.Edges {
		if err := binary.Write(buf, binary.LittleEndian, edgeRecord(edge)); err != nil {
			return fmt.Errorf("failed to write edge %d: %w", i, err)
		}
	}

	if err := buf.Flush(); err != nil {
		return err
	}
	return gz.Close()
}

// Decode reads a snapshot written by Encode. Uncompressed snapshots are
// accepted too.
func Decode(r io.Reader) (*NavigationData, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		src = bufio.NewReader(gz)
	}

	var header FileHeader
	if err := binary.Read(src, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != NAVIGATION_FILE_MAGIC {
		return nil, fmt.Errorf("invalid file format: magic number mismatch")
	}
	if header.Version != NAVIGATION_FILE_VERSION {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	navData := &NavigationData{}
	var err error
	if navData.Floor, err = readString(src); err != nil {
		return nil, fmt.Errorf("failed to read floor name: %w", err)
	}

	var hasOrigin uint8
	if err := binary.Read(src, binary.LittleEndian, &hasOrigin); err != nil {
		return nil, fmt.Errorf("failed to read origin flag: %w", err)
	}
	var origin [2]float64
	if err := binary.Read(src, binary.LittleEndian, &origin); err != nil {
		return nil, fmt.Errorf("failed to read origin: %w", err)
	}
	if hasOrigin == 1 {
		navData.Origin = &geometry.Point{X: origin[0], Y: origin[1]}
	}
	if err := binary.Read(src, binary.LittleEndian, &navData.PixelsPerUnit); err != nil {
		return nil, fmt.Errorf("failed to read pixels per unit: %w", err)
	}

	nodeCount, err := recordCount(src, "node")
	if err != nil {
		return nil, err
	}
	navData.Nodes = make([]Node, 0, min(nodeCount, decodePrealloc))
	for i := 0; i < nodeCount; i++ {
		var rec nodeRecord
		if err := binary.Read(src, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("failed to read node %d of %d: %w", i, nodeCount, err)
		}
		label, err := readString(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read label of node %d: %w", rec.ID, err)
		}
		navData.Nodes = append(navData.Nodes, Node{ID: rec.ID, X: rec.X, Y: rec.Y, Label: label})
	}

	edgeCount, err := recordCount(src, "edge")
	if err != nil {
		return nil, err
	}
	navData.Edges = make([]Edge, 0, min(edgeCount, decodePrealloc))
	for i := 0; i < edgeCount; i++ {
		var rec edgeRecord
		if err := binary.Read(src, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("failed to read edge %d of %d: %w", i, edgeCount, err)
		}
		navData.Edges = append(navData.Edges, Edge(rec))
	}

	if err := navData.Validate(); err != nil {
		return nil, fmt.Errorf("invalid navigation data: %w", err)
	}
	navData.BuildIndexes()
	return navData, nil
}

// Save writes a snapshot to filename.
func Save(navData *NavigationData, filename string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, navData); err != nil {
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Load reads a snapshot from filename.
func Load(filename string) (*NavigationData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// BuildAndSave builds a floor and writes its snapshot.
func BuildAndSave(floor string, segments []geometry.Segment, labels []LabeledPoint, opts Options, filename string) (*NavigationData, error) {
	navData, err := BuildFloor(floor, segments, labels, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build navigation data: %w", err)
	}
	if err := Save(navData, filename); err != nil {
		return nil, fmt.Errorf("failed to save navigation data: %w", err)
	}
	return navData, nil
}

// NavigationFileInfo describes a snapshot on disk.
type NavigationFileInfo struct {
	Filename  string    `json:"filename"`
	FileSize  int64     `json:"file_size"`
	Floor     string    `json:"floor"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
	RoomCount int       `json:"room_count"`
	ModTime   time.Time `json:"mod_time"`
}

// GetFileInfo loads a snapshot and summarizes it.
func GetFileInfo(filename string) (*NavigationFileInfo, error) {
	stat, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	navData, err := Load(filename)
	if err != nil {
		return nil, err
	}
	return &NavigationFileInfo{
		Filename:  filename,
		FileSize:  stat.Size(),
		Floor:     navData.Floor,
		NodeCount: navData.GetNodeCount(),
		EdgeCount: navData.GetEdgeCount(),
		RoomCount: len(navData.Rooms()),
		ModTime:   stat.ModTime(),
	}, nil
}
