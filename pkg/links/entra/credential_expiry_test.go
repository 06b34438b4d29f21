package entra

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrascope/entrascope/pkg/graph"
)

func TestExpiringCredentials(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	app := graph.Application{
		DisplayName: "billing-api",
		AppID:       "app-1",
		Credentials: []graph.AppCredential{
			{CredentialID: "c-expired", Type: graph.CredentialTypePassword, EndDate: now.AddDate(0, 0, -10)},
			{CredentialID: "c-soon", Type: graph.CredentialTypeCertificate, EndDate: now.AddDate(0, 0, 14)},
			{CredentialID: "c-later", Type: graph.CredentialTypePassword, EndDate: now.AddDate(0, 0, 120)},
			{CredentialID: "c-no-end", Type: graph.CredentialTypePassword},
		},
	}

	records := expiringCredentials(app, 30, now)

	require.Len(t, records, 2)

	assert.Equal(t, "c-expired", records[0].CredentialID)
	assert.True(t, records[0].Expired)
	assert.Equal(t, -10, records[0].DaysRemaining)

	assert.Equal(t, "c-soon", records[1].CredentialID)
	assert.False(t, records[1].Expired)
	assert.Equal(t, 14, records[1].DaysRemaining)
}

func TestScanCredentials(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var apps []graph.Application
	for i := 0; i < 50; i++ {
		apps = append(apps, graph.Application{
			DisplayName: fmt.Sprintf("app-%d", i),
			Credentials: []graph.AppCredential{
				{CredentialID: fmt.Sprintf("cred-%d", i), Type: graph.CredentialTypePassword, EndDate: now.AddDate(0, 0, 5)},
			},
		})
	}

	records := scanCredentials(apps, 8, 30, now)

	require.Len(t, records, 50)
	seen := make(map[string]bool)
	for _, record := range records {
		seen[record.CredentialID] = true
	}
	assert.Len(t, seen, 50)
}

func TestScanCredentials_MoreWorkersThanApps(t *testing.T) {
	now := time.Now().UTC()
	apps := []graph.Application{{
		DisplayName: "solo",
		Credentials: []graph.AppCredential{
			{CredentialID: "c-1", Type: graph.CredentialTypePassword, EndDate: now.AddDate(0, 0, 1)},
		},
	}}

	records := scanCredentials(apps, 16, 30, now)
	require.Len(t, records, 1)
	assert.Equal(t, "solo", records[0].Application)
}

func TestScanCredentials_NoApps(t *testing.T) {
	assert.Empty(t, scanCredentials(nil, 5, 30, time.Now().UTC()))
}

func BenchmarkScanCredentials(b *testing.B) {
	now := time.Now().UTC()
	var apps []graph.Application
	for i := 0; i < 200; i++ {
		apps = append(apps, graph.Application{
			DisplayName: fmt.Sprintf("app-%d", i),
			Credentials: []graph.AppCredential{
				{CredentialID: fmt.Sprintf("cred-%d", i), EndDate: now.AddDate(0, 0, 10)},
			},
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scanCredentials(apps, 8, 30, now)
	}
}
