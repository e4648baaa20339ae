// Package floors holds the loaded floors of a building and routes between
// them through declared stairwell connectors.
package floors

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/ingest"
	"github.com/elipaulman/hack-ohio-2025/logger"
	"github.com/elipaulman/hack-ohio-2025/query"
)

// Registry is an immutable set of floors plus the connector table that
// joins them.
type Registry struct {
	floors map[string]*query.NavigationQuery
	names  []string
	stairs *StairTable
}

// NewRegistry indexes floors by their normalized names. A nil table means
// no floor connects to another.
func NewRegistry(stairs *StairTable, floors ...*query.NavigationQuery) (*Registry, error) {
	r := &Registry{
		floors: make(map[string]*query.NavigationQuery, len(floors)),
		stairs: stairs,
	}
	if r.stairs == nil {
		r.stairs = &StairTable{index: map[connectorKey]Connector{}}
	}
	for _, nq := range floors {
		name := ingest.NormalizeFloor(nq.Floor())
		if name == "" {
			return nil, fmt.Errorf("%w: floor without a name", ErrFloorConfigInvalid)
		}
		if _, dup := r.floors[name]; dup {
			return nil, fmt.Errorf("%w: floor %q registered twice", ErrFloorConfigInvalid, name)
		}
		r.floors[name] = nq
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Floor returns the queryer of a floor.
func (r *Registry) Floor(name string) (*query.NavigationQuery, error) {
	nq, ok := r.floors[ingest.NormalizeFloor(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFloorNotLoaded, name)
	}
	return nq, nil
}

// Floors returns the loaded floor names, sorted.
func (r *Registry) Floors() []string {
	return r.names
}

// Stairs returns the connector table.
func (r *Registry) Stairs() *StairTable {
	return r.stairs
}

// LoadOptions controls LoadRegistry.
type LoadOptions struct {
	Build       builder.Options
	Query       query.Options
	Parallelism int // floors built at once; <= 0 means one per floor
}

// LoadErrors maps a floor name to the reason it failed to load.
type LoadErrors map[string]error

func (le LoadErrors) Error() string {
	names := make([]string, 0, len(le))
	for name := range le {
		names = append(names, name)
	}
	sort.Strings(names)
	msg := fmt.Sprintf("%d floor(s) failed to load:", len(le))
	for _, name := range names {
		msg += fmt.Sprintf(" %s: %v;", name, le[name])
	}
	return msg
}

// LoadRegistry builds every floor of the manifest concurrently. A floor that
// fails is left out and reported in LoadErrors; the others stay usable. The
// returned error is only set when ctx is done.
func LoadRegistry(ctx context.Context, m *ingest.Manifest, stairs *StairTable, opts LoadOptions) (*Registry, LoadErrors, error) {
	startTime := time.Now()
	log := logger.Logger()

	var (
		mu     sync.Mutex
		loaded []*query.NavigationQuery
		failed = LoadErrors{}
	)

	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}
	for _, fs := range m.Floors {
		fs := fs
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			nq, err := loadFloor(m, fs, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error("floor failed to load", "floor", fs.Name, "error", err)
				failed[fs.Name] = err
				return nil
			}
			loaded = append(loaded, nq)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	reg, err := NewRegistry(stairs, loaded...)
	if err != nil {
		return nil, nil, err
	}
	log.Info("floors loaded", "floors", len(loaded), "failed", len(failed), "took", time.Since(startTime))
	if len(failed) == 0 {
		failed = nil
	}
	return reg, failed, nil
}

func loadFloor(m *ingest.Manifest, fs ingest.FloorSpec, opts LoadOptions) (*query.NavigationQuery, error) {
	var navData *builder.NavigationData
	if fs.Snapshot != "" {
		nd, err := builder.Load(m.Resolve(fs.Snapshot))
		if err != nil {
			return nil, err
		}
		if ingest.NormalizeFloor(nd.Floor) != fs.Name {
			return nil, fmt.Errorf("%w: snapshot holds floor %q", ErrFloorConfigInvalid, nd.Floor)
		}
		navData = nd
	} else {
		segments, labels, err := m.ReadFloorInput(fs)
		if err != nil {
			return nil, err
		}
		buildOpts := opts.Build
		if fs.PixelsPerUnit > 0 {
			buildOpts.PixelsPerUnit = fs.PixelsPerUnit
		}
		if navData, err = builder.BuildFloor(fs.Name, segments, labels, buildOpts); err != nil {
			return nil, err
		}
	}
	return query.NewNavigationQuery(navData, opts.Query)
}

// Store publishes registry snapshots. Readers always see a complete
// registry; reloads swap in a new one.
type Store struct {
	current atomic.Pointer[Registry]
}

// NewStore creates a store holding r.
func NewStore(r *Registry) *Store {
	s := &Store{}
	s.current.Store(r)
	return s
}

// Load returns the current registry.
func (s *Store) Load() *Registry {
	return s.current.Load()
}

// Swap publishes r and returns the previous registry.
func (s *Store) Swap(r *Registry) *Registry {
	return s.current.Swap(r)
}
