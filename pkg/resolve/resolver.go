package resolve

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned by Directory implementations when the id does not
// exist in the tenant. The resolver converts it to a Placeholder value rather
// than propagating it.
var ErrNotFound = errors.New("directory object not found")

// Directory is the external lookup capability the resolver drives. Exactly one
// Lookup call is issued per (kind, id) pair per resolver lifetime.
type Directory interface {
	Lookup(ctx context.Context, kind Kind, id string) (displayName string, err error)
}

// Resolver memoizes directory lookups, partitioned by Kind. Lookup failures
// degrade to placeholder entries which are cached like real values, so a
// flaky id never triggers repeated network calls within one run.
//
// Concurrent misses for the same (kind, id) pair are coalesced so at most one
// external call is in flight per pair.
type Resolver struct {
	dir Directory

	mu         sync.RWMutex
	partitions map[Kind]map[string]Entity
	seeded     map[Kind]bool

	flight singleflight.Group
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{
		dir:        dir,
		partitions: make(map[Kind]map[string]Entity),
		seeded:     make(map[Kind]bool),
	}
}

// Seed bulk-populates a partition from a full listing fetched up front.
// A seeded partition never issues individual lookups: an id absent from the
// seed resolves straight to a placeholder.
func (r *Resolver) Seed(kind Kind, displayByID map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	part := r.partition(kind)
	for id, display := range displayByID {
		part[id] = Entity{Kind: kind, ID: id, Display: display}
	}
	r.seeded[kind] = true
}

// Resolve maps an id to its display entity.
//
// An empty id resolves to nil; callers treat that as "field absent", not an
// error. Sentinel tokens pass through verbatim without touching any partition.
// Everything else is answered from the kind's partition, falling back to a
// single external lookup on a miss.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, id string) *Entity {
	if id == "" {
		return nil
	}
	if IsSentinel(id) {
		return &Entity{Kind: kind, ID: id, Display: id}
	}

	r.mu.RLock()
	cached, hit := r.partitions[kind][id]
	seeded := r.seeded[kind]
	r.mu.RUnlock()
	if hit {
		return &cached
	}
	if seeded {
		return r.store(kind, id, Placeholder(kind, id))
	}

	v, _, _ := r.flight.Do(string(kind)+":"+id, func() (any, error) {
		// A concurrent caller may have populated the slot while this
		// call was queued behind the flight lock.
		r.mu.RLock()
		entity, ok := r.partitions[kind][id]
		r.mu.RUnlock()
		if ok {
			return entity, nil
		}

		display, err := r.dir.Lookup(ctx, kind, id)
		if err != nil || display == "" {
			if err != nil && !errors.Is(err, ErrNotFound) {
				slog.Debug("lookup failed, substituting placeholder",
					"kind", kind, "id", id, "error", err)
			}
			display = Placeholder(kind, id)
		}
		return *r.store(kind, id, display), nil
	})

	entity := v.(Entity)
	return &entity
}

// ResolveAll resolves a slice of ids element-wise, preserving input order.
// Empty ids are skipped; the output length therefore matches the number of
// non-empty inputs.
func (r *Resolver) ResolveAll(ctx context.Context, kind Kind, ids []string) []Entity {
	if len(ids) == 0 {
		return nil
	}
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		if e := r.Resolve(ctx, kind, id); e != nil {
			out = append(out, *e)
		}
	}
	return out
}

func (r *Resolver) store(kind Kind, id, display string) *Entity {
	r.mu.Lock()
	defer r.mu.Unlock()

	part := r.partition(kind)
	if existing, ok := part[id]; ok {
		return &existing
	}
	e := Entity{Kind: kind, ID: id, Display: display}
	part[id] = e
	return &e
}

// partition must be called with r.mu held for writing.
func (r *Resolver) partition(kind Kind) map[string]Entity {
	part, ok := r.partitions[kind]
	if !ok {
		part = make(map[string]Entity)
		r.partitions[kind] = part
	}
	return part
}
