package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
)

// GuestUser is one guest account in the tenant.
type GuestUser struct {
	ID                string    `json:"id"`
	DisplayName       string    `json:"displayName"`
	UserPrincipalName string    `json:"userPrincipalName"`
	Mail              string    `json:"mail,omitempty"`
	AccountEnabled    bool      `json:"accountEnabled"`
	ExternalUserState string    `json:"externalUserState,omitempty"`
	CreatedDateTime   time.Time `json:"createdDateTime,omitempty"`
}

// ListGuestUsers lists every account with userType Guest.
func (c *Client) ListGuestUsers(ctx context.Context) ([]GuestUser, error) {
	filter := "userType eq 'Guest'"
	requestConfig := &users.UsersRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.UsersRequestBuilderGetQueryParameters{
			Filter: &filter,
			Select: []string{
				"id", "displayName", "userPrincipalName", "mail",
				"accountEnabled", "externalUserState", "createdDateTime",
			},
			Top: int32Ptr(999),
		},
	}

	result, err := c.sdk.Users().Get(ctx, requestConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest users: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.Userable](
		result,
		c.sdk.GetAdapter(),
		models.CreateUserCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create page iterator: %w", err)
	}

	var guests []GuestUser
	err = pageIterator.Iterate(ctx, func(user models.Userable) bool {
		if user != nil {
			guests = append(guests, convertGuestUser(user))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate through guest users: %w", err)
	}

	return guests, nil
}

func convertGuestUser(user models.Userable) GuestUser {
	guest := GuestUser{
		ID:                safeStringDeref(user.GetId()),
		DisplayName:       safeStringDeref(user.GetDisplayName()),
		UserPrincipalName: safeStringDeref(user.GetUserPrincipalName()),
		Mail:              safeStringDeref(user.GetMail()),
		ExternalUserState: safeStringDeref(user.GetExternalUserState()),
	}
	if enabled := user.GetAccountEnabled(); enabled != nil {
		guest.AccountEnabled = *enabled
	}
	if created := user.GetCreatedDateTime(); created != nil {
		guest.CreatedDateTime = *created
	}
	return guest
}

// DeleteUser removes one user. The caller decides how to aggregate failures
// across a batch.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := c.sdk.Users().ByUserId(id).Delete(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return nil
}
