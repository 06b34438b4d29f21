package conditionalaccess

import (
	"context"
	"log/slog"

	"github.com/entrascope/entrascope/pkg/resolve"
)

// Source is the subset of the directory API the assembler fetches from. Each
// listing is fetched exactly once per run; a failure aborts the whole run.
type Source interface {
	ListConditionalAccessPolicies(ctx context.Context) ([]RawPolicy, error)
	ListNamedLocations(ctx context.Context) ([]RawNamedLocation, error)
	ListTermsOfUse(ctx context.Context) ([]RawTermsOfUse, error)
}

// Assembler turns raw policy records into fully resolved, display-ready
// policy objects, driving one resolver cache across every id-bearing field so
// an id appearing in many policies costs one lookup.
type Assembler struct {
	resolver *resolve.Resolver
	table    CountryTable
}

// NewAssembler builds an assembler over the given lookup capability. The
// country table is passed in rather than read from package state so callers
// can substitute their own.
func NewAssembler(dir resolve.Directory, table CountryTable) *Assembler {
	return &Assembler{
		resolver: resolve.NewResolver(dir),
		table:    table,
	}
}

// Resolver exposes the cache driven by this assembler, shared with callers
// that resolve ids outside the policy set (role assignments, tenants).
func (a *Assembler) Resolver() *resolve.Resolver {
	return a.resolver
}

// Build fetches the three top-level listings and assembles them. Any listing
// failure is wrapped in a SourceFetchError and returned with a nil Config —
// never a partially populated one.
func (a *Assembler) Build(ctx context.Context, src Source) (*Config, error) {
	policies, err := src.ListConditionalAccessPolicies(ctx)
	if err != nil {
		return nil, &SourceFetchError{Resource: "conditional access policies", Err: err}
	}

	locations, err := src.ListNamedLocations(ctx)
	if err != nil {
		return nil, &SourceFetchError{Resource: "named locations", Err: err}
	}

	termsOfUse, err := src.ListTermsOfUse(ctx)
	if err != nil {
		return nil, &SourceFetchError{Resource: "terms of use agreements", Err: err}
	}

	return a.Assemble(ctx, RawSnapshot{
		Policies:       policies,
		NamedLocations: locations,
		TermsOfUse:     termsOfUse,
	}), nil
}

// Assemble resolves a pre-fetched snapshot. Individual id resolution failures
// degrade to placeholder display values; assembly itself never fails.
func (a *Assembler) Assemble(ctx context.Context, snap RawSnapshot) *Config {
	cfg := &Config{
		NamedLocations: make([]NamedLocation, 0, len(snap.NamedLocations)),
		Policies:       make([]Policy, 0, len(snap.Policies)),
	}

	locationsByID := make(map[string]NamedLocation, len(snap.NamedLocations))
	locationSeed := make(map[string]string, len(snap.NamedLocations))
	for _, raw := range snap.NamedLocations {
		loc := a.buildNamedLocation(raw)
		cfg.NamedLocations = append(cfg.NamedLocations, loc)
		locationsByID[loc.ID] = loc
		locationSeed[loc.ID] = loc.DisplayName
	}

	touSeed := make(map[string]string, len(snap.TermsOfUse))
	for _, raw := range snap.TermsOfUse {
		touSeed[raw.ID] = raw.DisplayName
	}

	a.resolver.Seed(resolve.KindNamedLocation, locationSeed)
	a.resolver.Seed(resolve.KindTermsOfUse, touSeed)

	for _, raw := range snap.Policies {
		cfg.Policies = append(cfg.Policies, a.assemblePolicy(ctx, raw, locationsByID))
	}

	slog.Debug("assembled conditional access configuration",
		"policies", len(cfg.Policies), "named_locations", len(cfg.NamedLocations))

	return cfg
}

func (a *Assembler) buildNamedLocation(raw RawNamedLocation) NamedLocation {
	loc := NamedLocation{
		ID:          raw.ID,
		DisplayName: raw.DisplayName,
		IPRanges:    raw.IPRanges,
		// Absent booleans read as false so downstream trust filters stay
		// well-defined.
		IsTrusted:                         raw.IsTrusted != nil && *raw.IsTrusted,
		IncludeUnknownCountriesAndRegions: raw.IncludeUnknownCountriesAndRegions != nil && *raw.IncludeUnknownCountriesAndRegions,
		CountryLookupMethod:               raw.CountryLookupMethod,
	}

	// Unknown codes keep their entry with an empty name rather than being
	// dropped, so the location still reports every code it was built with.
	for _, code := range raw.CountriesAndRegions {
		loc.Countries = append(loc.Countries, CountryRef{
			Code: code,
			Name: a.table.Name(code),
		})
	}

	return loc
}

func (a *Assembler) assemblePolicy(ctx context.Context, raw RawPolicy, locations map[string]NamedLocation) Policy {
	p := Policy{
		ID:               raw.ID,
		DisplayName:      raw.DisplayName,
		State:            raw.State,
		CreatedDateTime:  raw.CreatedDateTime,
		ModifiedDateTime: raw.ModifiedDateTime,
		Conditions: Conditions{
			IncludeUsers:     a.resolver.ResolveAll(ctx, resolve.KindUser, raw.Conditions.IncludeUsers),
			ExcludeUsers:     a.resolver.ResolveAll(ctx, resolve.KindUser, raw.Conditions.ExcludeUsers),
			IncludeGroups:    a.resolver.ResolveAll(ctx, resolve.KindGroup, raw.Conditions.IncludeGroups),
			ExcludeGroups:    a.resolver.ResolveAll(ctx, resolve.KindGroup, raw.Conditions.ExcludeGroups),
			IncludeRoles:     a.resolver.ResolveAll(ctx, resolve.KindDirectoryRole, raw.Conditions.IncludeRoles),
			ExcludeRoles:     a.resolver.ResolveAll(ctx, resolve.KindDirectoryRole, raw.Conditions.ExcludeRoles),
			IncludeApps:      a.resolver.ResolveAll(ctx, resolve.KindApplication, raw.Conditions.IncludeApps),
			ExcludeApps:      a.resolver.ResolveAll(ctx, resolve.KindApplication, raw.Conditions.ExcludeApps),
			IncludeLocations: resolveLocations(raw.Conditions.IncludeLocations, locations),
			ExcludeLocations: resolveLocations(raw.Conditions.ExcludeLocations, locations),
			IncludePlatforms: raw.Conditions.IncludePlatforms,
			ExcludePlatforms: raw.Conditions.ExcludePlatforms,
			ClientAppTypes:   raw.Conditions.ClientAppTypes,
			SignInRiskLevels: raw.Conditions.SignInRiskLevels,
			UserRiskLevels:   raw.Conditions.UserRiskLevels,
		},
	}

	if raw.GrantControls != nil {
		p.GrantControls = &GrantControls{
			Operator:               raw.GrantControls.Operator,
			BuiltInControls:        raw.GrantControls.BuiltInControls,
			TermsOfUse:             a.resolver.ResolveAll(ctx, resolve.KindTermsOfUse, raw.GrantControls.TermsOfUse),
			AuthenticationStrength: raw.GrantControls.AuthenticationStrength,
		}
	}

	if raw.SessionControls != nil {
		p.SessionControls = &SessionControls{
			SignInFrequency:         raw.SessionControls.SignInFrequency,
			PersistentBrowser:       raw.SessionControls.PersistentBrowser,
			CloudAppSecurity:        raw.SessionControls.CloudAppSecurity,
			AppEnforcedRestrictions: raw.SessionControls.AppEnforcedRestrictions,
		}
	}

	return p
}

// resolveLocations maps location ids onto the locations built earlier in the
// same run. Sentinel tokens pass through as pseudo-locations. Ids that match
// no known location are dropped without a placeholder; this mirrors the
// directory export behavior for locations, which differs from every other
// entity kind.
func resolveLocations(ids []string, locations map[string]NamedLocation) []NamedLocation {
	if len(ids) == 0 {
		return nil
	}
	out := make([]NamedLocation, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if resolve.IsSentinel(id) {
			out = append(out, NamedLocation{ID: id, DisplayName: id})
			continue
		}
		if loc, ok := locations[id]; ok {
			out = append(out, loc)
		}
	}
	return out
}
