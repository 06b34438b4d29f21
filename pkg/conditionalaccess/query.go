package conditionalaccess

import (
	"path"
	"sort"
	"strings"

	"github.com/entrascope/entrascope/pkg/resolve"
)

// Scope selects which side of a policy's include/exclude pair a search
// inspects. Both is a logical OR: a policy matching on either side is
// reported, with the Scope label naming every side that matched.
type Scope string

const (
	ScopeInclude Scope = "Include"
	ScopeExclude Scope = "Exclude"
	ScopeBoth    Scope = "Both"
)

// PolicyMatch is one policy reported by a pattern search. Matched holds the
// display values the pattern hit, in the order found, duplicates preserved.
type PolicyMatch struct {
	PolicyID    string   `json:"policyId"`
	DisplayName string   `json:"displayName"`
	State       string   `json:"state"`
	Scope       string   `json:"scope"`
	Matched     []string `json:"matched"`
}

// matchPattern does case-insensitive shell-style wildcard matching
// (`*`, `?`) of pattern against value.
func matchPattern(pattern, value string) (bool, error) {
	return path.Match(strings.ToLower(pattern), strings.ToLower(value))
}

// FindByGroup searches group conditions by display name.
func FindByGroup(cfg *Config, pattern string, scope Scope) ([]PolicyMatch, error) {
	return findByEntity(cfg, pattern, scope, func(p *Policy) ([]resolve.Entity, []resolve.Entity) {
		return p.Conditions.IncludeGroups, p.Conditions.ExcludeGroups
	})
}

// FindByUser searches user conditions by display name or UPN.
func FindByUser(cfg *Config, pattern string, scope Scope) ([]PolicyMatch, error) {
	return findByEntity(cfg, pattern, scope, func(p *Policy) ([]resolve.Entity, []resolve.Entity) {
		return p.Conditions.IncludeUsers, p.Conditions.ExcludeUsers
	})
}

// FindByApp searches application conditions by display name.
func FindByApp(cfg *Config, pattern string, scope Scope) ([]PolicyMatch, error) {
	return findByEntity(cfg, pattern, scope, func(p *Policy) ([]resolve.Entity, []resolve.Entity) {
		return p.Conditions.IncludeApps, p.Conditions.ExcludeApps
	})
}

// FindByRole searches directory role conditions by display name.
func FindByRole(cfg *Config, pattern string, scope Scope) ([]PolicyMatch, error) {
	return findByEntity(cfg, pattern, scope, func(p *Policy) ([]resolve.Entity, []resolve.Entity) {
		return p.Conditions.IncludeRoles, p.Conditions.ExcludeRoles
	})
}

func findByEntity(cfg *Config, pattern string, scope Scope, pick func(*Policy) (include, exclude []resolve.Entity)) ([]PolicyMatch, error) {
	// path.Match's error depends only on the pattern, so validate once.
	if _, err := matchPattern(pattern, ""); err != nil {
		return nil, err
	}

	var matches []PolicyMatch
	for i := range cfg.Policies {
		policy := &cfg.Policies[i]
		include, exclude := pick(policy)

		var sides []string
		var matched []string

		if scope == ScopeInclude || scope == ScopeBoth {
			if hits := matchEntities(pattern, include); len(hits) > 0 {
				sides = append(sides, string(ScopeInclude))
				matched = append(matched, hits...)
			}
		}
		if scope == ScopeExclude || scope == ScopeBoth {
			if hits := matchEntities(pattern, exclude); len(hits) > 0 {
				sides = append(sides, string(ScopeExclude))
				matched = append(matched, hits...)
			}
		}

		if len(sides) > 0 {
			matches = append(matches, PolicyMatch{
				PolicyID:    policy.ID,
				DisplayName: policy.DisplayName,
				State:       policy.State,
				Scope:       strings.Join(sides, ", "),
				Matched:     matched,
			})
		}
	}

	return matches, nil
}

func matchEntities(pattern string, entities []resolve.Entity) []string {
	var hits []string
	for _, e := range entities {
		if ok, _ := matchPattern(pattern, e.Display); ok {
			hits = append(hits, e.Display)
		}
	}
	return hits
}

// FindByCountry searches location conditions by country name. The pattern is
// first resolved against the country table; matching no table entry at all is
// reported as ErrCountryNotRecognized, distinct from matching countries that
// no policy references (an empty result).
//
// Matched holds, per policy, the codes that are both in the pattern-match set
// and present in a referenced location's own country list.
func FindByCountry(cfg *Config, table CountryTable, pattern string, scope Scope) ([]PolicyMatch, error) {
	if _, err := matchPattern(pattern, ""); err != nil {
		return nil, err
	}

	codes := make(map[string]struct{})
	for code, name := range table {
		if ok, _ := matchPattern(pattern, name); ok {
			codes[code] = struct{}{}
		}
	}
	if len(codes) == 0 {
		return nil, ErrCountryNotRecognized
	}

	index := BuildCountryIndex(cfg.NamedLocations)
	matchedLocations := make(map[string]struct{})
	for code := range codes {
		for _, loc := range index[code] {
			matchedLocations[loc.ID] = struct{}{}
		}
	}

	var matches []PolicyMatch
	for i := range cfg.Policies {
		policy := &cfg.Policies[i]

		var sides []string
		var matched []string

		if scope == ScopeInclude || scope == ScopeBoth {
			if hits := matchLocationCountries(policy.Conditions.IncludeLocations, matchedLocations, codes); len(hits) > 0 {
				sides = append(sides, string(ScopeInclude))
				matched = append(matched, hits...)
			}
		}
		if scope == ScopeExclude || scope == ScopeBoth {
			if hits := matchLocationCountries(policy.Conditions.ExcludeLocations, matchedLocations, codes); len(hits) > 0 {
				sides = append(sides, string(ScopeExclude))
				matched = append(matched, hits...)
			}
		}

		if len(sides) > 0 {
			matches = append(matches, PolicyMatch{
				PolicyID:    policy.ID,
				DisplayName: policy.DisplayName,
				State:       policy.State,
				Scope:       strings.Join(sides, ", "),
				Matched:     matched,
			})
		}
	}

	return matches, nil
}

func matchLocationCountries(locations []NamedLocation, matchedLocations map[string]struct{}, codes map[string]struct{}) []string {
	var hits []string
	for _, loc := range locations {
		if _, ok := matchedLocations[loc.ID]; !ok {
			continue
		}
		for _, country := range loc.Countries {
			if _, ok := codes[country.Code]; ok {
				hits = append(hits, country.Code)
			}
		}
	}
	sort.Strings(hits)
	return hits
}
