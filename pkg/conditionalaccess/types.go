package conditionalaccess

import (
	"github.com/entrascope/entrascope/pkg/resolve"
)

// Raw* types are the ingest boundary: loosely-shaped records coming off the
// directory API, converted to typed structs before anything downstream sees
// them. Id-bearing fields still hold raw ids (or sentinel tokens) here.

type RawPolicy struct {
	ID               string             `json:"id"`
	DisplayName      string             `json:"displayName"`
	State            string             `json:"state"`
	CreatedDateTime  string             `json:"createdDateTime,omitempty"`
	ModifiedDateTime string             `json:"modifiedDateTime,omitempty"`
	Conditions       RawConditions      `json:"conditions"`
	GrantControls    *RawGrantControls  `json:"grantControls,omitempty"`
	SessionControls  *RawSessionControls `json:"sessionControls,omitempty"`
}

type RawConditions struct {
	IncludeUsers     []string `json:"includeUsers,omitempty"`
	ExcludeUsers     []string `json:"excludeUsers,omitempty"`
	IncludeGroups    []string `json:"includeGroups,omitempty"`
	ExcludeGroups    []string `json:"excludeGroups,omitempty"`
	IncludeRoles     []string `json:"includeRoles,omitempty"`
	ExcludeRoles     []string `json:"excludeRoles,omitempty"`
	IncludeApps      []string `json:"includeApplications,omitempty"`
	ExcludeApps      []string `json:"excludeApplications,omitempty"`
	IncludeLocations []string `json:"includeLocations,omitempty"`
	ExcludeLocations []string `json:"excludeLocations,omitempty"`
	IncludePlatforms []string `json:"includePlatforms,omitempty"`
	ExcludePlatforms []string `json:"excludePlatforms,omitempty"`
	ClientAppTypes   []string `json:"clientAppTypes,omitempty"`
	SignInRiskLevels []string `json:"signInRiskLevels,omitempty"`
	UserRiskLevels   []string `json:"userRiskLevels,omitempty"`
}

type RawGrantControls struct {
	Operator               string   `json:"operator"`
	BuiltInControls        []string `json:"builtInControls,omitempty"`
	TermsOfUse             []string `json:"termsOfUse,omitempty"`
	AuthenticationStrength string   `json:"authenticationStrength,omitempty"`
}

type RawSessionControls struct {
	SignInFrequency         *SignInFrequency  `json:"signInFrequency,omitempty"`
	PersistentBrowser       *PersistentBrowser `json:"persistentBrowser,omitempty"`
	CloudAppSecurity        *CloudAppSecurity  `json:"cloudAppSecurity,omitempty"`
	AppEnforcedRestrictions *bool              `json:"applicationEnforcedRestrictions,omitempty"`
}

type RawNamedLocation struct {
	ID                                string   `json:"id"`
	DisplayName                       string   `json:"displayName"`
	IsTrusted                         *bool    `json:"isTrusted,omitempty"`
	IPRanges                          []string `json:"ipRanges,omitempty"`
	CountriesAndRegions               []string `json:"countriesAndRegions,omitempty"`
	IncludeUnknownCountriesAndRegions *bool    `json:"includeUnknownCountriesAndRegions,omitempty"`
	CountryLookupMethod               string   `json:"countryLookupMethod,omitempty"`
}

type RawTermsOfUse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// RawSnapshot bundles the three top-level listings one assembly run consumes.
type RawSnapshot struct {
	Policies       []RawPolicy        `json:"policies"`
	NamedLocations []RawNamedLocation `json:"namedLocations"`
	TermsOfUse     []RawTermsOfUse    `json:"termsOfUse"`
}

// Assembled types. Every id-bearing field now holds resolved entities; scalar
// fields are carried through from the raw record unchanged.

// CountryRef is a country code paired with its table name. Name stays empty
// for codes absent from the table; the entry is kept, not dropped.
type CountryRef struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

type NamedLocation struct {
	ID                                string       `json:"id"`
	DisplayName                       string       `json:"displayName"`
	IsTrusted                         bool         `json:"isTrusted"`
	IPRanges                          []string     `json:"ipRanges,omitempty"`
	Countries                         []CountryRef `json:"countries,omitempty"`
	IncludeUnknownCountriesAndRegions bool         `json:"includeUnknownCountriesAndRegions"`
	CountryLookupMethod               string       `json:"countryLookupMethod,omitempty"`
}

type Conditions struct {
	IncludeUsers     []resolve.Entity `json:"includeUsers,omitempty"`
	ExcludeUsers     []resolve.Entity `json:"excludeUsers,omitempty"`
	IncludeGroups    []resolve.Entity `json:"includeGroups,omitempty"`
	ExcludeGroups    []resolve.Entity `json:"excludeGroups,omitempty"`
	IncludeRoles     []resolve.Entity `json:"includeRoles,omitempty"`
	ExcludeRoles     []resolve.Entity `json:"excludeRoles,omitempty"`
	IncludeApps      []resolve.Entity `json:"includeApplications,omitempty"`
	ExcludeApps      []resolve.Entity `json:"excludeApplications,omitempty"`
	IncludeLocations []NamedLocation  `json:"includeLocations,omitempty"`
	ExcludeLocations []NamedLocation  `json:"excludeLocations,omitempty"`
	IncludePlatforms []string         `json:"includePlatforms,omitempty"`
	ExcludePlatforms []string         `json:"excludePlatforms,omitempty"`
	ClientAppTypes   []string         `json:"clientAppTypes,omitempty"`
	SignInRiskLevels []string         `json:"signInRiskLevels,omitempty"`
	UserRiskLevels   []string         `json:"userRiskLevels,omitempty"`
}

type GrantControls struct {
	Operator               string           `json:"operator"`
	BuiltInControls        []string         `json:"builtInControls,omitempty"`
	TermsOfUse             []resolve.Entity `json:"termsOfUse,omitempty"`
	AuthenticationStrength string           `json:"authenticationStrength,omitempty"`
}

type SignInFrequency struct {
	Enabled bool   `json:"isEnabled"`
	Value   int32  `json:"value,omitempty"`
	Unit    string `json:"frequencyInterval,omitempty"`
}

type PersistentBrowser struct {
	Enabled bool   `json:"isEnabled"`
	Mode    string `json:"mode,omitempty"`
}

type CloudAppSecurity struct {
	Enabled bool   `json:"isEnabled"`
	Type    string `json:"cloudAppSecurityType,omitempty"`
}

type SessionControls struct {
	SignInFrequency         *SignInFrequency   `json:"signInFrequency,omitempty"`
	PersistentBrowser       *PersistentBrowser `json:"persistentBrowser,omitempty"`
	CloudAppSecurity        *CloudAppSecurity  `json:"cloudAppSecurity,omitempty"`
	AppEnforcedRestrictions *bool              `json:"applicationEnforcedRestrictions,omitempty"`
}

type Policy struct {
	ID               string           `json:"id"`
	DisplayName      string           `json:"displayName"`
	State            string           `json:"state"`
	CreatedDateTime  string           `json:"createdDateTime,omitempty"`
	ModifiedDateTime string           `json:"modifiedDateTime,omitempty"`
	Conditions       Conditions       `json:"conditions"`
	GrantControls    *GrantControls   `json:"grantControls,omitempty"`
	SessionControls  *SessionControls `json:"sessionControls,omitempty"`
}

// Config is the fully assembled, display-ready configuration for one run.
// Policies and NamedLocations are constructed once and never mutated.
type Config struct {
	Policies       []Policy        `json:"policies"`
	NamedLocations []NamedLocation `json:"namedLocations"`
}

// LocationByID returns the assembled named location with the given id.
func (c *Config) LocationByID(id string) (NamedLocation, bool) {
	for _, loc := range c.NamedLocations {
		if loc.ID == id {
			return loc, true
		}
	}
	return NamedLocation{}, false
}
