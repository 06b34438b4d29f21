// Package graph binds the directory abstractions to the Microsoft Graph SDK.
// Everything network-facing lives here; the resolve and conditionalaccess
// packages only ever see the small interfaces this package implements.
package graph

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
)

// Client wraps a Graph service client with the read and write surfaces the
// modules need. It implements resolve.Directory and conditionalaccess.Source.
type Client struct {
	sdk *msgraphsdk.GraphServiceClient
}

// NewClient authenticates through the default Azure credential chain
// (environment, workload identity, managed identity, CLI) and returns a
// ready client.
func NewClient() (*Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}

	sdk, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Graph client: %w", err)
	}

	return &Client{sdk: sdk}, nil
}

// Wrap builds a Client around an existing service client. Used where a caller
// already authenticated.
func Wrap(sdk *msgraphsdk.GraphServiceClient) *Client {
	return &Client{sdk: sdk}
}

// SDK exposes the underlying service client for calls not covered by the
// typed surface.
func (c *Client) SDK() *msgraphsdk.GraphServiceClient {
	return c.sdk
}

func safeStringDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
