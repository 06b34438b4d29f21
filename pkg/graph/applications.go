package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/microsoftgraph/msgraph-sdk-go/applications"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
)

// AppCredential is one secret or certificate on an app registration.
type AppCredential struct {
	CredentialID string    `json:"credentialId"`
	DisplayName  string    `json:"displayName,omitempty"`
	Type         string    `json:"type"`
	StartDate    time.Time `json:"startDateTime,omitempty"`
	EndDate      time.Time `json:"endDateTime"`
}

const (
	CredentialTypePassword    = "password"
	CredentialTypeCertificate = "certificate"
)

// Application is an app registration with its credentials.
type Application struct {
	ObjectID    string          `json:"objectId"`
	AppID       string          `json:"appId"`
	DisplayName string          `json:"displayName"`
	Credentials []AppCredential `json:"credentials,omitempty"`
}

// ListApplications lists every app registration with its password and key
// credentials.
func (c *Client) ListApplications(ctx context.Context) ([]Application, error) {
	requestConfig := &applications.ApplicationsRequestBuilderGetRequestConfiguration{
		QueryParameters: &applications.ApplicationsRequestBuilderGetQueryParameters{
			Select: []string{"id", "appId", "displayName", "passwordCredentials", "keyCredentials"},
			Top:    int32Ptr(999),
		},
	}

	result, err := c.sdk.Applications().Get(ctx, requestConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.Applicationable](
		result,
		c.sdk.GetAdapter(),
		models.CreateApplicationCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create page iterator: %w", err)
	}

	var apps []Application
	err = pageIterator.Iterate(ctx, func(app models.Applicationable) bool {
		if app != nil {
			apps = append(apps, convertApplication(app))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate through applications: %w", err)
	}

	return apps, nil
}

func convertApplication(app models.Applicationable) Application {
	converted := Application{
		ObjectID:    safeStringDeref(app.GetId()),
		AppID:       safeStringDeref(app.GetAppId()),
		DisplayName: safeStringDeref(app.GetDisplayName()),
	}

	for _, pw := range app.GetPasswordCredentials() {
		cred := AppCredential{
			DisplayName: safeStringDeref(pw.GetDisplayName()),
			Type:        CredentialTypePassword,
		}
		if keyID := pw.GetKeyId(); keyID != nil {
			cred.CredentialID = keyID.String()
		}
		if start := pw.GetStartDateTime(); start != nil {
			cred.StartDate = *start
		}
		if end := pw.GetEndDateTime(); end != nil {
			cred.EndDate = *end
		}
		converted.Credentials = append(converted.Credentials, cred)
	}

	for _, key := range app.GetKeyCredentials() {
		cred := AppCredential{
			DisplayName: safeStringDeref(key.GetDisplayName()),
			Type:        CredentialTypeCertificate,
		}
		if keyID := key.GetKeyId(); keyID != nil {
			cred.CredentialID = keyID.String()
		}
		if start := key.GetStartDateTime(); start != nil {
			cred.StartDate = *start
		}
		if end := key.GetEndDateTime(); end != nil {
			cred.EndDate = *end
		}
		converted.Credentials = append(converted.Credentials, cred)
	}

	return converted
}

func int32Ptr(v int32) *int32 { return &v }
