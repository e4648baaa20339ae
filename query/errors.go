package query

import "errors"

var (
	// ErrRoomNotFound means a room name has no door node on the floor.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNoPathFound means both rooms exist but lie in disconnected parts of
	// the graph.
	ErrNoPathFound = errors.New("no path found")
	// ErrSearchLimit means A* gave up after Options.MaxIterations expansions
	// before reaching the goal; the rooms may still be connected.
	ErrSearchLimit = errors.New("search limit reached")
)
