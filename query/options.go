package query

// Options configures a NavigationQuery.
type Options struct {
	// CacheSize is the number of routes kept in the LRU cache; 0 disables it.
	CacheSize int
	// MaxIterations bounds a single A* run; 0 means unbounded.
	MaxIterations int
}

// DefaultOptions returns the options used by the server.
func DefaultOptions() Options {
	return Options{
		CacheSize: 256,
	}
}
