package conditionalaccess

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrascope/entrascope/pkg/resolve"
)

type fakeDirectory struct {
	mu      sync.Mutex
	entries map[string]string
	calls   map[string]int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		entries: make(map[string]string),
		calls:   make(map[string]int),
	}
}

func (d *fakeDirectory) add(kind resolve.Kind, id, display string) {
	d.entries[string(kind)+":"+id] = display
}

func (d *fakeDirectory) Lookup(_ context.Context, kind resolve.Kind, id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := string(kind) + ":" + id
	d.calls[key]++
	if display, ok := d.entries[key]; ok {
		return display, nil
	}
	return "", resolve.ErrNotFound
}

func (d *fakeDirectory) lookupCount(kind resolve.Kind, id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[string(kind)+":"+id]
}

func (d *fakeDirectory) totalLookups() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, n := range d.calls {
		total += n
	}
	return total
}

type fakeSource struct {
	snapshot    RawSnapshot
	policiesErr error
	locationsErr error
	touErr      error
}

func (s *fakeSource) ListConditionalAccessPolicies(context.Context) ([]RawPolicy, error) {
	if s.policiesErr != nil {
		return nil, s.policiesErr
	}
	return s.snapshot.Policies, nil
}

func (s *fakeSource) ListNamedLocations(context.Context) ([]RawNamedLocation, error) {
	if s.locationsErr != nil {
		return nil, s.locationsErr
	}
	return s.snapshot.NamedLocations, nil
}

func (s *fakeSource) ListTermsOfUse(context.Context) ([]RawTermsOfUse, error) {
	if s.touErr != nil {
		return nil, s.touErr
	}
	return s.snapshot.TermsOfUse, nil
}

func boolPtr(b bool) *bool { return &b }

func TestAssemble_PreservesConditionOrder(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(resolve.KindGroup, "g-1", "Engineering")
	dir.add(resolve.KindGroup, "g-2", "Finance")
	dir.add(resolve.KindGroup, "g-3", "HR Staff")

	assembler := NewAssembler(dir, DefaultCountryTable())
	cfg := assembler.Assemble(context.Background(), RawSnapshot{
		Policies: []RawPolicy{{
			ID:          "p-1",
			DisplayName: "Require MFA",
			State:       "enabled",
			Conditions: RawConditions{
				IncludeGroups: []string{"g-3", "g-1", "g-2"},
			},
		}},
	})

	require.Len(t, cfg.Policies, 1)
	groups := cfg.Policies[0].Conditions.IncludeGroups
	require.Len(t, groups, 3)
	assert.Equal(t, "HR Staff", groups[0].Display)
	assert.Equal(t, "Engineering", groups[1].Display)
	assert.Equal(t, "Finance", groups[2].Display)
}

func TestAssemble_SharedIDResolvedOnce(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(resolve.KindUser, "u-1", "Avery Chen")

	assembler := NewAssembler(dir, DefaultCountryTable())
	policies := make([]RawPolicy, 5)
	for i := range policies {
		policies[i] = RawPolicy{
			ID: "p",
			Conditions: RawConditions{
				IncludeUsers: []string{"u-1"},
				ExcludeUsers: []string{"u-1"},
			},
		}
	}

	cfg := assembler.Assemble(context.Background(), RawSnapshot{Policies: policies})

	require.Len(t, cfg.Policies, 5)
	assert.Equal(t, 1, dir.lookupCount(resolve.KindUser, "u-1"))
	for _, p := range cfg.Policies {
		assert.Equal(t, "Avery Chen", p.Conditions.IncludeUsers[0].Display)
		assert.Equal(t, "Avery Chen", p.Conditions.ExcludeUsers[0].Display)
	}
}

func TestAssemble_SentinelTokensNeverHitDirectory(t *testing.T) {
	dir := newFakeDirectory()
	assembler := NewAssembler(dir, DefaultCountryTable())

	cfg := assembler.Assemble(context.Background(), RawSnapshot{
		Policies: []RawPolicy{{
			ID: "p-1",
			Conditions: RawConditions{
				IncludeUsers:     []string{resolve.TokenAll},
				ExcludeUsers:     []string{resolve.TokenGuestsOrExternalUsers},
				IncludeApps:      []string{resolve.TokenOffice365},
				IncludeLocations: []string{resolve.TokenAll},
				ExcludeLocations: []string{resolve.TokenAllTrusted},
			},
		}},
	})

	assert.Zero(t, dir.totalLookups())
	p := cfg.Policies[0]
	assert.Equal(t, resolve.TokenAll, p.Conditions.IncludeUsers[0].Display)
	assert.Equal(t, resolve.TokenGuestsOrExternalUsers, p.Conditions.ExcludeUsers[0].Display)
	assert.Equal(t, resolve.TokenOffice365, p.Conditions.IncludeApps[0].Display)
	require.Len(t, p.Conditions.IncludeLocations, 1)
	assert.Equal(t, resolve.TokenAll, p.Conditions.IncludeLocations[0].DisplayName)
	require.Len(t, p.Conditions.ExcludeLocations, 1)
	assert.Equal(t, resolve.TokenAllTrusted, p.Conditions.ExcludeLocations[0].DisplayName)
}

func TestAssemble_UnknownIDsGetPlaceholders(t *testing.T) {
	dir := newFakeDirectory()
	assembler := NewAssembler(dir, DefaultCountryTable())

	cfg := assembler.Assemble(context.Background(), RawSnapshot{
		Policies: []RawPolicy{{
			ID: "p-1",
			Conditions: RawConditions{
				IncludeUsers:  []string{"missing-user"},
				IncludeGroups: []string{"missing-group"},
			},
			GrantControls: &RawGrantControls{
				Operator:   "AND",
				TermsOfUse: []string{"missing-tou"},
			},
		}},
	})

	p := cfg.Policies[0]
	assert.Equal(t, "UnknownUser(missing-user)", p.Conditions.IncludeUsers[0].Display)
	assert.Equal(t, "UnknownGroup(missing-group)", p.Conditions.IncludeGroups[0].Display)
	require.NotNil(t, p.GrantControls)
	assert.Equal(t, "UnknownTermsOfUse(missing-tou)", p.GrantControls.TermsOfUse[0].Display)
}

func TestAssemble_UnknownLocationIDsDroppedSilently(t *testing.T) {
	dir := newFakeDirectory()
	assembler := NewAssembler(dir, DefaultCountryTable())

	cfg := assembler.Assemble(context.Background(), RawSnapshot{
		NamedLocations: []RawNamedLocation{{
			ID:          "loc-1",
			DisplayName: "HQ",
			IsTrusted:   boolPtr(true),
		}},
		Policies: []RawPolicy{{
			ID: "p-1",
			Conditions: RawConditions{
				IncludeLocations: []string{"loc-1", "loc-deleted", "loc-also-gone"},
			},
		}},
	})

	locs := cfg.Policies[0].Conditions.IncludeLocations
	require.Len(t, locs, 1)
	assert.Equal(t, "HQ", locs[0].DisplayName)
	assert.Zero(t, dir.totalLookups())
}

func TestAssemble_LocationBooleansDefaultFalse(t *testing.T) {
	assembler := NewAssembler(newFakeDirectory(), DefaultCountryTable())

	cfg := assembler.Assemble(context.Background(), RawSnapshot{
		NamedLocations: []RawNamedLocation{
			{ID: "loc-1", DisplayName: "No flags set"},
			{ID: "loc-2", DisplayName: "Both set", IsTrusted: boolPtr(true), IncludeUnknownCountriesAndRegions: boolPtr(true)},
		},
	})

	require.Len(t, cfg.NamedLocations, 2)
	assert.False(t, cfg.NamedLocations[0].IsTrusted)
	assert.False(t, cfg.NamedLocations[0].IncludeUnknownCountriesAndRegions)
	assert.True(t, cfg.NamedLocations[1].IsTrusted)
	assert.True(t, cfg.NamedLocations[1].IncludeUnknownCountriesAndRegions)
}

func TestAssemble_CountryCodes(t *testing.T) {
	assembler := NewAssembler(newFakeDirectory(), DefaultCountryTable())

	cfg := assembler.Assemble(context.Background(), RawSnapshot{
		NamedLocations: []RawNamedLocation{{
			ID:                  "loc-1",
			DisplayName:         "Blocked regions",
			CountriesAndRegions: []string{"US", "XX", "GB"},
		}},
	})

	require.Len(t, cfg.NamedLocations, 1)
	countries := cfg.NamedLocations[0].Countries
	require.Len(t, countries, 3)
	assert.Equal(t, CountryRef{Code: "US", Name: "United States"}, countries[0])
	// Unrecognized codes keep their entry with an empty name.
	assert.Equal(t, CountryRef{Code: "XX", Name: ""}, countries[1])
	assert.Equal(t, CountryRef{Code: "GB", Name: "United Kingdom"}, countries[2])
}

func TestAssemble_TermsOfUseSeededFromListing(t *testing.T) {
	dir := newFakeDirectory()
	assembler := NewAssembler(dir, DefaultCountryTable())

	cfg := assembler.Assemble(context.Background(), RawSnapshot{
		TermsOfUse: []RawTermsOfUse{{ID: "tou-1", DisplayName: "Employee Agreement"}},
		Policies: []RawPolicy{{
			ID: "p-1",
			GrantControls: &RawGrantControls{
				Operator:   "OR",
				TermsOfUse: []string{"tou-1"},
			},
		}},
	})

	require.NotNil(t, cfg.Policies[0].GrantControls)
	assert.Equal(t, "Employee Agreement", cfg.Policies[0].GrantControls.TermsOfUse[0].Display)
	assert.Zero(t, dir.totalLookups())
}

func TestBuild_FetchFailureIsFatal(t *testing.T) {
	cause := errors.New("throttled")

	tests := []struct {
		name     string
		src      *fakeSource
		resource string
	}{
		{"policies", &fakeSource{policiesErr: cause}, "conditional access policies"},
		{"named locations", &fakeSource{locationsErr: cause}, "named locations"},
		{"terms of use", &fakeSource{touErr: cause}, "terms of use agreements"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assembler := NewAssembler(newFakeDirectory(), DefaultCountryTable())
			cfg, err := assembler.Build(context.Background(), tt.src)

			require.Error(t, err)
			assert.Nil(t, cfg)

			var fetchErr *SourceFetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, tt.resource, fetchErr.Resource)
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestBuild_Succeeds(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(resolve.KindUser, "u-1", "Avery Chen")

	src := &fakeSource{snapshot: RawSnapshot{
		Policies: []RawPolicy{{
			ID:          "p-1",
			DisplayName: "Block legacy auth",
			State:       "enabled",
			Conditions:  RawConditions{IncludeUsers: []string{"u-1"}},
		}},
		NamedLocations: []RawNamedLocation{{ID: "loc-1", DisplayName: "HQ"}},
		TermsOfUse:     []RawTermsOfUse{{ID: "tou-1", DisplayName: "Agreement"}},
	}}

	assembler := NewAssembler(dir, DefaultCountryTable())
	cfg, err := assembler.Build(context.Background(), src)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Len(t, cfg.Policies, 1)
	assert.Len(t, cfg.NamedLocations, 1)
	assert.Equal(t, "Avery Chen", cfg.Policies[0].Conditions.IncludeUsers[0].Display)
}

func TestConfig_LocationByID(t *testing.T) {
	cfg := &Config{NamedLocations: []NamedLocation{
		{ID: "loc-1", DisplayName: "HQ"},
		{ID: "loc-2", DisplayName: "Branch"},
	}}

	loc, ok := cfg.LocationByID("loc-2")
	assert.True(t, ok)
	assert.Equal(t, "Branch", loc.DisplayName)

	_, ok = cfg.LocationByID("loc-9")
	assert.False(t, ok)
}

func BenchmarkAssemble(b *testing.B) {
	dir := newFakeDirectory()
	for _, id := range []string{"u-1", "u-2", "u-3"} {
		dir.add(resolve.KindUser, id, "User "+id)
	}
	snap := RawSnapshot{
		Policies: []RawPolicy{{
			ID: "p-1",
			Conditions: RawConditions{
				IncludeUsers: []string{"u-1", "u-2", "u-3", resolve.TokenAll},
			},
		}},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		assembler := NewAssembler(dir, DefaultCountryTable())
		assembler.Assemble(context.Background(), snap)
	}
}
