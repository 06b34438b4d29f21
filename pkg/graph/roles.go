package graph

import (
	"context"
	"fmt"

	"github.com/microsoftgraph/msgraph-sdk-go/models"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
)

// RoleAssignment is one directory role held by a principal, either as an
// active assignment or as a PIM eligibility.
type RoleAssignment struct {
	ID               string `json:"id"`
	PrincipalID      string `json:"principalId"`
	RoleDefinitionID string `json:"roleDefinitionId"`
	DirectoryScopeID string `json:"directoryScopeId,omitempty"`
	AssignmentType   string `json:"assignmentType"`
}

const (
	AssignmentTypeActive   = "active"
	AssignmentTypeEligible = "eligible"
)

// ListRoleAssignments lists active directory role assignments.
func (c *Client) ListRoleAssignments(ctx context.Context) ([]RoleAssignment, error) {
	result, err := c.sdk.RoleManagement().Directory().RoleAssignments().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get role assignments: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.UnifiedRoleAssignmentable](
		result,
		c.sdk.GetAdapter(),
		models.CreateUnifiedRoleAssignmentCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create page iterator: %w", err)
	}

	var assignments []RoleAssignment
	err = pageIterator.Iterate(ctx, func(assignment models.UnifiedRoleAssignmentable) bool {
		if assignment != nil {
			assignments = append(assignments, RoleAssignment{
				ID:               safeStringDeref(assignment.GetId()),
				PrincipalID:      safeStringDeref(assignment.GetPrincipalId()),
				RoleDefinitionID: safeStringDeref(assignment.GetRoleDefinitionId()),
				DirectoryScopeID: safeStringDeref(assignment.GetDirectoryScopeId()),
				AssignmentType:   AssignmentTypeActive,
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate through role assignments: %w", err)
	}

	return assignments, nil
}

// ListRoleEligibilities lists PIM role eligibility instances. Tenants without
// PIM reject the endpoint; callers treat that as an empty result.
func (c *Client) ListRoleEligibilities(ctx context.Context) ([]RoleAssignment, error) {
	result, err := c.sdk.RoleManagement().Directory().RoleEligibilityScheduleInstances().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get role eligibility instances: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.UnifiedRoleEligibilityScheduleInstanceable](
		result,
		c.sdk.GetAdapter(),
		models.CreateUnifiedRoleEligibilityScheduleInstanceCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create page iterator: %w", err)
	}

	var eligibilities []RoleAssignment
	err = pageIterator.Iterate(ctx, func(instance models.UnifiedRoleEligibilityScheduleInstanceable) bool {
		if instance != nil {
			eligibilities = append(eligibilities, RoleAssignment{
				ID:               safeStringDeref(instance.GetId()),
				PrincipalID:      safeStringDeref(instance.GetPrincipalId()),
				RoleDefinitionID: safeStringDeref(instance.GetRoleDefinitionId()),
				DirectoryScopeID: safeStringDeref(instance.GetDirectoryScopeId()),
				AssignmentType:   AssignmentTypeEligible,
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate through role eligibility instances: %w", err)
	}

	return eligibilities, nil
}

// ListRoleDefinitions returns role definition id to display name for the
// whole tenant. One listing replaces a lookup per assignment.
func (c *Client) ListRoleDefinitions(ctx context.Context) (map[string]string, error) {
	result, err := c.sdk.RoleManagement().Directory().RoleDefinitions().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get role definitions: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.UnifiedRoleDefinitionable](
		result,
		c.sdk.GetAdapter(),
		models.CreateUnifiedRoleDefinitionCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create page iterator: %w", err)
	}

	definitions := make(map[string]string)
	err = pageIterator.Iterate(ctx, func(def models.UnifiedRoleDefinitionable) bool {
		if def != nil {
			definitions[safeStringDeref(def.GetId())] = safeStringDeref(def.GetDisplayName())
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate through role definitions: %w", err)
	}

	return definitions, nil
}
