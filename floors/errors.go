package floors

import "errors"

var (
	// ErrFloorNotLoaded means the floor has no graph in the registry.
	ErrFloorNotLoaded = errors.New("floor not loaded")
	// ErrFloorConfigInvalid marks a floor manifest or stair table problem.
	ErrFloorConfigInvalid = errors.New("invalid floor configuration")
	// ErrNoCrossFloorPath means no declared connector bridges the floors, or
	// every connector's two legs failed.
	ErrNoCrossFloorPath = errors.New("no cross-floor path")
)
