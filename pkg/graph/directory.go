package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/microsoftgraph/msgraph-sdk-go/models"

	"github.com/entrascope/entrascope/pkg/resolve"
)

// Lookup implements resolve.Directory. Each kind maps to one Graph endpoint;
// the application and role kinds fall back to a second endpoint because
// policies reference both service principals and app registrations, and both
// activated roles and role templates.
func (c *Client) Lookup(ctx context.Context, kind resolve.Kind, id string) (string, error) {
	// Ids that are not GUIDs cannot exist in the directory; skip the round
	// trip and let the resolver substitute a placeholder.
	if _, err := uuid.Parse(id); err != nil {
		return "", resolve.ErrNotFound
	}

	switch kind {
	case resolve.KindUser:
		return c.lookupUser(ctx, id)
	case resolve.KindGroup:
		return c.lookupGroup(ctx, id)
	case resolve.KindApplication:
		return c.lookupApplication(ctx, id)
	case resolve.KindDirectoryRole:
		return c.lookupDirectoryRole(ctx, id)
	case resolve.KindNamedLocation:
		return c.lookupNamedLocation(ctx, id)
	case resolve.KindTermsOfUse:
		return c.lookupTermsOfUse(ctx, id)
	case resolve.KindTenant:
		return c.lookupTenant(ctx, id)
	case resolve.KindPrincipal:
		return c.lookupPrincipal(ctx, id)
	default:
		return "", fmt.Errorf("unsupported entity kind %q", kind)
	}
}

func (c *Client) lookupUser(ctx context.Context, id string) (string, error) {
	user, err := c.sdk.Users().ByUserId(id).Get(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get user %s: %w", id, err)
	}
	if name := safeStringDeref(user.GetDisplayName()); name != "" {
		return name, nil
	}
	return safeStringDeref(user.GetUserPrincipalName()), nil
}

func (c *Client) lookupGroup(ctx context.Context, id string) (string, error) {
	group, err := c.sdk.Groups().ByGroupId(id).Get(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get group %s: %w", id, err)
	}
	return safeStringDeref(group.GetDisplayName()), nil
}

func (c *Client) lookupApplication(ctx context.Context, id string) (string, error) {
	// Service principals first; conditional access references them far more
	// often than app registrations.
	sp, err := c.sdk.ServicePrincipals().ByServicePrincipalId(id).Get(ctx, nil)
	if err == nil {
		return safeStringDeref(sp.GetDisplayName()), nil
	}

	app, appErr := c.sdk.Applications().ByApplicationId(id).Get(ctx, nil)
	if appErr != nil {
		return "", fmt.Errorf("failed to get application %s: %w", id, err)
	}
	return safeStringDeref(app.GetDisplayName()), nil
}

func (c *Client) lookupDirectoryRole(ctx context.Context, id string) (string, error) {
	role, err := c.sdk.DirectoryRoles().ByDirectoryRoleId(id).Get(ctx, nil)
	if err == nil {
		return safeStringDeref(role.GetDisplayName()), nil
	}

	// Policies reference role template ids for roles never activated in the
	// tenant.
	tmpl, tmplErr := c.sdk.DirectoryRoleTemplates().ByDirectoryRoleTemplateId(id).Get(ctx, nil)
	if tmplErr != nil {
		return "", fmt.Errorf("failed to get directory role %s: %w", id, err)
	}
	return safeStringDeref(tmpl.GetDisplayName()), nil
}

func (c *Client) lookupNamedLocation(ctx context.Context, id string) (string, error) {
	loc, err := c.sdk.Identity().ConditionalAccess().NamedLocations().ByNamedLocationId(id).Get(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get named location %s: %w", id, err)
	}
	return safeStringDeref(loc.GetDisplayName()), nil
}

func (c *Client) lookupTermsOfUse(ctx context.Context, id string) (string, error) {
	agreement, err := c.sdk.IdentityGovernance().TermsOfUse().Agreements().ByAgreementId(id).Get(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get terms of use agreement %s: %w", id, err)
	}
	return safeStringDeref(agreement.GetDisplayName()), nil
}

func (c *Client) lookupTenant(ctx context.Context, id string) (string, error) {
	info, err := c.sdk.TenantRelationships().FindTenantInformationByTenantIdWithTenantId(&id).Get(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get tenant %s: %w", id, err)
	}
	return safeStringDeref(info.GetDisplayName()), nil
}

// lookupPrincipal resolves an id whose object type is unknown, such as a role
// assignment principal, by fetching the directory object and switching on the
// concrete type.
func (c *Client) lookupPrincipal(ctx context.Context, id string) (string, error) {
	obj, err := c.sdk.DirectoryObjects().ByDirectoryObjectId(id).Get(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get directory object %s: %w", id, err)
	}

	switch v := obj.(type) {
	case models.Userable:
		if name := safeStringDeref(v.GetDisplayName()); name != "" {
			return name, nil
		}
		return safeStringDeref(v.GetUserPrincipalName()), nil
	case models.Groupable:
		return safeStringDeref(v.GetDisplayName()), nil
	case models.ServicePrincipalable:
		return safeStringDeref(v.GetDisplayName()), nil
	default:
		return "", resolve.ErrNotFound
	}
}
