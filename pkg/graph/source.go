package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/microsoftgraph/msgraph-sdk-go/models"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"

	"github.com/entrascope/entrascope/pkg/conditionalaccess"
)

// ListConditionalAccessPolicies implements conditionalaccess.Source. The
// PageIterator walks every page; no pagination is handled locally.
func (c *Client) ListConditionalAccessPolicies(ctx context.Context) ([]conditionalaccess.RawPolicy, error) {
	result, err := c.sdk.Identity().ConditionalAccess().Policies().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get conditional access policies: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.ConditionalAccessPolicyable](
		result,
		c.sdk.GetAdapter(),
		models.CreateConditionalAccessPolicyCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create page iterator: %w", err)
	}

	var policies []conditionalaccess.RawPolicy
	err = pageIterator.Iterate(ctx, func(policy models.ConditionalAccessPolicyable) bool {
		if policy != nil {
			policies = append(policies, convertPolicy(policy))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate through conditional access policies: %w", err)
	}

	return policies, nil
}

// ListNamedLocations implements conditionalaccess.Source.
func (c *Client) ListNamedLocations(ctx context.Context) ([]conditionalaccess.RawNamedLocation, error) {
	result, err := c.sdk.Identity().ConditionalAccess().NamedLocations().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get named locations: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.NamedLocationable](
		result,
		c.sdk.GetAdapter(),
		models.CreateNamedLocationCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create page iterator: %w", err)
	}

	var locations []conditionalaccess.RawNamedLocation
	err = pageIterator.Iterate(ctx, func(loc models.NamedLocationable) bool {
		if loc != nil {
			locations = append(locations, convertNamedLocation(loc))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate through named locations: %w", err)
	}

	return locations, nil
}

// ListTermsOfUse implements conditionalaccess.Source.
func (c *Client) ListTermsOfUse(ctx context.Context) ([]conditionalaccess.RawTermsOfUse, error) {
	result, err := c.sdk.IdentityGovernance().TermsOfUse().Agreements().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get terms of use agreements: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.Agreementable](
		result,
		c.sdk.GetAdapter(),
		models.CreateAgreementCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create page iterator: %w", err)
	}

	var agreements []conditionalaccess.RawTermsOfUse
	err = pageIterator.Iterate(ctx, func(agreement models.Agreementable) bool {
		if agreement != nil {
			agreements = append(agreements, conditionalaccess.RawTermsOfUse{
				ID:          safeStringDeref(agreement.GetId()),
				DisplayName: safeStringDeref(agreement.GetDisplayName()),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate through terms of use agreements: %w", err)
	}

	return agreements, nil
}

func convertPolicy(policy models.ConditionalAccessPolicyable) conditionalaccess.RawPolicy {
	raw := conditionalaccess.RawPolicy{
		ID:          safeStringDeref(policy.GetId()),
		DisplayName: safeStringDeref(policy.GetDisplayName()),
		State:       convertPolicyState(policy.GetState()),
	}

	if created := policy.GetCreatedDateTime(); created != nil {
		raw.CreatedDateTime = created.Format(time.RFC3339)
	}
	if modified := policy.GetModifiedDateTime(); modified != nil {
		raw.ModifiedDateTime = modified.Format(time.RFC3339)
	}

	if conditions := policy.GetConditions(); conditions != nil {
		raw.Conditions = convertConditions(conditions)
	}
	if grant := policy.GetGrantControls(); grant != nil {
		raw.GrantControls = convertGrantControls(grant)
	}
	if session := policy.GetSessionControls(); session != nil {
		raw.SessionControls = convertSessionControls(session)
	}

	return raw
}

func convertConditions(conditions models.ConditionalAccessConditionSetable) conditionalaccess.RawConditions {
	raw := conditionalaccess.RawConditions{
		ClientAppTypes:   convertClientAppTypes(conditions.GetClientAppTypes()),
		SignInRiskLevels: convertRiskLevels(conditions.GetSignInRiskLevels()),
		UserRiskLevels:   convertRiskLevels(conditions.GetUserRiskLevels()),
	}

	if users := conditions.GetUsers(); users != nil {
		raw.IncludeUsers = users.GetIncludeUsers()
		raw.ExcludeUsers = users.GetExcludeUsers()
		raw.IncludeGroups = users.GetIncludeGroups()
		raw.ExcludeGroups = users.GetExcludeGroups()
		raw.IncludeRoles = users.GetIncludeRoles()
		raw.ExcludeRoles = users.GetExcludeRoles()
	}

	if apps := conditions.GetApplications(); apps != nil {
		raw.IncludeApps = apps.GetIncludeApplications()
		raw.ExcludeApps = apps.GetExcludeApplications()
	}

	if locations := conditions.GetLocations(); locations != nil {
		raw.IncludeLocations = locations.GetIncludeLocations()
		raw.ExcludeLocations = locations.GetExcludeLocations()
	}

	if platforms := conditions.GetPlatforms(); platforms != nil {
		raw.IncludePlatforms = convertPlatforms(platforms.GetIncludePlatforms())
		raw.ExcludePlatforms = convertPlatforms(platforms.GetExcludePlatforms())
	}

	return raw
}

func convertGrantControls(grant models.ConditionalAccessGrantControlsable) *conditionalaccess.RawGrantControls {
	raw := &conditionalaccess.RawGrantControls{
		Operator:   safeStringDeref(grant.GetOperator()),
		TermsOfUse: grant.GetTermsOfUse(),
	}

	for _, control := range grant.GetBuiltInControls() {
		raw.BuiltInControls = append(raw.BuiltInControls, control.String())
	}

	if strength := grant.GetAuthenticationStrength(); strength != nil {
		raw.AuthenticationStrength = safeStringDeref(strength.GetDisplayName())
	}

	return raw
}

func convertSessionControls(session models.ConditionalAccessSessionControlsable) *conditionalaccess.RawSessionControls {
	raw := &conditionalaccess.RawSessionControls{}

	if freq := session.GetSignInFrequency(); freq != nil {
		converted := &conditionalaccess.SignInFrequency{
			Enabled: freq.GetIsEnabled() != nil && *freq.GetIsEnabled(),
		}
		if value := freq.GetValue(); value != nil {
			converted.Value = *value
		}
		if unit := freq.GetTypeEscaped(); unit != nil {
			converted.Unit = unit.String()
		}
		raw.SignInFrequency = converted
	}

	if browser := session.GetPersistentBrowser(); browser != nil {
		converted := &conditionalaccess.PersistentBrowser{
			Enabled: browser.GetIsEnabled() != nil && *browser.GetIsEnabled(),
		}
		if mode := browser.GetMode(); mode != nil {
			converted.Mode = mode.String()
		}
		raw.PersistentBrowser = converted
	}

	if cas := session.GetCloudAppSecurity(); cas != nil {
		converted := &conditionalaccess.CloudAppSecurity{
			Enabled: cas.GetIsEnabled() != nil && *cas.GetIsEnabled(),
		}
		if typ := cas.GetCloudAppSecurityType(); typ != nil {
			converted.Type = typ.String()
		}
		raw.CloudAppSecurity = converted
	}

	if restrictions := session.GetApplicationEnforcedRestrictions(); restrictions != nil {
		raw.AppEnforcedRestrictions = restrictions.GetIsEnabled()
	}

	return raw
}

func convertNamedLocation(loc models.NamedLocationable) conditionalaccess.RawNamedLocation {
	raw := conditionalaccess.RawNamedLocation{
		ID:          safeStringDeref(loc.GetId()),
		DisplayName: safeStringDeref(loc.GetDisplayName()),
	}

	switch v := loc.(type) {
	case models.CountryNamedLocationable:
		raw.CountriesAndRegions = v.GetCountriesAndRegions()
		raw.IncludeUnknownCountriesAndRegions = v.GetIncludeUnknownCountriesAndRegions()
		if method := v.GetCountryLookupMethod(); method != nil {
			raw.CountryLookupMethod = method.String()
		}
	case models.IpNamedLocationable:
		raw.IsTrusted = v.GetIsTrusted()
		for _, ipRange := range v.GetIpRanges() {
			switch r := ipRange.(type) {
			case models.IPv4CidrRangeable:
				raw.IPRanges = append(raw.IPRanges, safeStringDeref(r.GetCidrAddress()))
			case models.IPv6CidrRangeable:
				raw.IPRanges = append(raw.IPRanges, safeStringDeref(r.GetCidrAddress()))
			}
		}
	}

	return raw
}

func convertPolicyState(state *models.ConditionalAccessPolicyState) string {
	if state == nil {
		return "unknown"
	}

	switch *state {
	case models.ENABLED_CONDITIONALACCESSPOLICYSTATE:
		return "enabled"
	case models.DISABLED_CONDITIONALACCESSPOLICYSTATE:
		return "disabled"
	case models.ENABLEDFORREPORTINGBUTNOTENFORCED_CONDITIONALACCESSPOLICYSTATE:
		return "enabledForReportingButNotEnforced"
	default:
		return "unknown"
	}
}

func convertClientAppTypes(clientApps []models.ConditionalAccessClientApp) []string {
	var result []string
	for _, app := range clientApps {
		switch app {
		case models.ALL_CONDITIONALACCESSCLIENTAPP:
			result = append(result, "all")
		case models.BROWSER_CONDITIONALACCESSCLIENTAPP:
			result = append(result, "browser")
		case models.MOBILEAPPSANDDESKTOPCLIENTS_CONDITIONALACCESSCLIENTAPP:
			result = append(result, "mobileAppsAndDesktopClients")
		case models.EXCHANGEACTIVESYNC_CONDITIONALACCESSCLIENTAPP:
			result = append(result, "exchangeActiveSync")
		case models.EASSUPPORTED_CONDITIONALACCESSCLIENTAPP:
			result = append(result, "easSupported")
		case models.OTHER_CONDITIONALACCESSCLIENTAPP:
			result = append(result, "other")
		}
	}
	return result
}

func convertRiskLevels(risks []models.RiskLevel) []string {
	var result []string
	for _, risk := range risks {
		switch risk {
		case models.LOW_RISKLEVEL:
			result = append(result, "low")
		case models.MEDIUM_RISKLEVEL:
			result = append(result, "medium")
		case models.HIGH_RISKLEVEL:
			result = append(result, "high")
		case models.HIDDEN_RISKLEVEL:
			result = append(result, "hidden")
		case models.NONE_RISKLEVEL:
			result = append(result, "none")
		case models.UNKNOWNFUTUREVALUE_RISKLEVEL:
			result = append(result, "unknownFutureValue")
		}
	}
	return result
}

func convertPlatforms(platforms []models.ConditionalAccessDevicePlatform) []string {
	var result []string
	for _, platform := range platforms {
		result = append(result, platform.String())
	}
	return result
}
