package resolve

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory counts lookups per (kind, id) pair so tests can verify the
// at-most-one-call property.
type fakeDirectory struct {
	mu      sync.Mutex
	calls   map[string]*atomic.Int64
	entries map[string]string // "kind:id" -> display
	errs    map[string]error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		calls:   make(map[string]*atomic.Int64),
		entries: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeDirectory) add(kind Kind, id, display string) {
	f.entries[string(kind)+":"+id] = display
}

func (f *fakeDirectory) fail(kind Kind, id string, err error) {
	f.errs[string(kind)+":"+id] = err
}

func (f *fakeDirectory) Lookup(ctx context.Context, kind Kind, id string) (string, error) {
	key := string(kind) + ":" + id

	f.mu.Lock()
	counter, ok := f.calls[key]
	if !ok {
		counter = &atomic.Int64{}
		f.calls[key] = counter
	}
	f.mu.Unlock()
	counter.Add(1)

	if err, ok := f.errs[key]; ok {
		return "", err
	}
	if display, ok := f.entries[key]; ok {
		return display, nil
	}
	return "", ErrNotFound
}

func (f *fakeDirectory) lookupCount(kind Kind, id string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if counter, ok := f.calls[string(kind)+":"+id]; ok {
		return counter.Load()
	}
	return 0
}

func TestResolve_EmptyID(t *testing.T) {
	r := NewResolver(newFakeDirectory())
	assert.Nil(t, r.Resolve(context.Background(), KindUser, ""))
}

func TestResolve_SentinelPassThrough(t *testing.T) {
	dir := newFakeDirectory()
	r := NewResolver(dir)

	tokens := []string{"All", "None", "GuestsOrExternalUsers", "AllTrusted", "Office365"}
	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			for _, kind := range []Kind{KindUser, KindGroup, KindApplication, KindNamedLocation} {
				entity := r.Resolve(context.Background(), kind, token)
				require.NotNil(t, entity)
				assert.Equal(t, token, entity.Display)
				assert.Equal(t, token, entity.ID)
				assert.Equal(t, int64(0), dir.lookupCount(kind, token))
			}
		})
	}
}

func TestResolve_CacheHitSkipsLookup(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(KindGroup, "g1", "Finance")
	r := NewResolver(dir)

	for i := 0; i < 5; i++ {
		entity := r.Resolve(context.Background(), KindGroup, "g1")
		require.NotNil(t, entity)
		assert.Equal(t, "Finance", entity.Display)
	}

	assert.Equal(t, int64(1), dir.lookupCount(KindGroup, "g1"))
}

func TestResolve_PlaceholderOnNotFound(t *testing.T) {
	dir := newFakeDirectory()
	r := NewResolver(dir)

	entity := r.Resolve(context.Background(), KindUser, "abc")
	require.NotNil(t, entity)
	assert.Equal(t, "UnknownUser(abc)", entity.Display)

	// The placeholder is cached like a real value.
	again := r.Resolve(context.Background(), KindUser, "abc")
	assert.Equal(t, entity.Display, again.Display)
	assert.Equal(t, int64(1), dir.lookupCount(KindUser, "abc"))
}

func TestResolve_PlaceholderOnError(t *testing.T) {
	dir := newFakeDirectory()
	dir.fail(KindTenant, "t1", fmt.Errorf("cross-tenant lookup denied"))
	r := NewResolver(dir)

	entity := r.Resolve(context.Background(), KindTenant, "t1")
	require.NotNil(t, entity)
	assert.Equal(t, "UnknownTenant(t1)", entity.Display)
}

func TestResolve_SeededPartitionNeverLooksUp(t *testing.T) {
	dir := newFakeDirectory()
	r := NewResolver(dir)

	r.Seed(KindNamedLocation, map[string]string{
		"loc1": "HQ Network",
		"loc2": "Branch Offices",
	})

	hit := r.Resolve(context.Background(), KindNamedLocation, "loc1")
	require.NotNil(t, hit)
	assert.Equal(t, "HQ Network", hit.Display)

	miss := r.Resolve(context.Background(), KindNamedLocation, "loc3")
	require.NotNil(t, miss)
	assert.Equal(t, "UnknownNamedLocation(loc3)", miss.Display)

	assert.Equal(t, int64(0), dir.lookupCount(KindNamedLocation, "loc1"))
	assert.Equal(t, int64(0), dir.lookupCount(KindNamedLocation, "loc3"))
}

func TestResolve_SingleFlightUnderConcurrency(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(KindGroup, "g1", "Finance")
	r := NewResolver(dir)

	const callers = 32
	results := make([]string, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entity := r.Resolve(context.Background(), KindGroup, "g1")
			results[i] = entity.Display
		}(i)
	}
	wg.Wait()

	for _, display := range results {
		assert.Equal(t, "Finance", display)
	}
	assert.Equal(t, int64(1), dir.lookupCount(KindGroup, "g1"),
		"concurrent misses for the same id must coalesce into one lookup")
}

func TestResolveAll_PreservesOrder(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(KindUser, "a", "Alice")
	dir.add(KindUser, "b", "Bob")
	dir.add(KindUser, "c", "Carol")
	r := NewResolver(dir)

	entities := r.ResolveAll(context.Background(), KindUser, []string{"a", "b", "c"})
	require.Len(t, entities, 3)
	assert.Equal(t, "Alice", entities[0].Display)
	assert.Equal(t, "Bob", entities[1].Display)
	assert.Equal(t, "Carol", entities[2].Display)
}

func TestResolveAll_SkipsEmptyIDs(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(KindUser, "a", "Alice")
	r := NewResolver(dir)

	entities := r.ResolveAll(context.Background(), KindUser, []string{"", "a", ""})
	require.Len(t, entities, 1)
	assert.Equal(t, "Alice", entities[0].Display)
}

func TestPlaceholder_Format(t *testing.T) {
	tests := []struct {
		kind     Kind
		id       string
		expected string
	}{
		{KindUser, "abc", "UnknownUser(abc)"},
		{KindGroup, "g-1", "UnknownGroup(g-1)"},
		{KindApplication, "app", "UnknownApplication(app)"},
		{KindDirectoryRole, "r", "UnknownDirectoryRole(r)"},
		{KindTermsOfUse, "tou", "UnknownTermsOfUse(tou)"},
		{KindTenant, "t", "UnknownTenant(t)"},
	}

	for _, test := range tests {
		t.Run(string(test.kind), func(t *testing.T) {
			assert.Equal(t, test.expected, Placeholder(test.kind, test.id))
		})
	}
}

func TestIsSentinel(t *testing.T) {
	assert.True(t, IsSentinel("All"))
	assert.True(t, IsSentinel("None"))
	assert.True(t, IsSentinel("GuestsOrExternalUsers"))
	assert.True(t, IsSentinel("AllTrusted"))
	assert.True(t, IsSentinel("Office365"))
	assert.False(t, IsSentinel("all"))
	assert.False(t, IsSentinel(""))
	assert.False(t, IsSentinel("12345678-1234-1234-1234-123456789012"))
}

func BenchmarkResolve_CacheHit(b *testing.B) {
	dir := newFakeDirectory()
	dir.add(KindUser, "u1", "Adele Vance")
	r := NewResolver(dir)
	r.Resolve(context.Background(), KindUser, "u1")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Resolve(context.Background(), KindUser, "u1")
	}
}
