package entra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrascope/entrascope/pkg/graph"
)

func TestBuildGuestReport(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	guests := []graph.GuestUser{
		{
			ID:                "g-stale",
			DisplayName:       "Old Invite",
			ExternalUserState: "PendingAcceptance",
			CreatedDateTime:   now.AddDate(0, 0, -120),
		},
		{
			ID:                "g-recent",
			DisplayName:       "Fresh Invite",
			ExternalUserState: "PendingAcceptance",
			CreatedDateTime:   now.AddDate(0, 0, -10),
		},
		{
			ID:                "g-accepted",
			DisplayName:       "Active Guest",
			ExternalUserState: "Accepted",
			CreatedDateTime:   now.AddDate(0, 0, -400),
		},
		{
			ID:                "g-no-created",
			DisplayName:       "No Timestamp",
			ExternalUserState: "PendingAcceptance",
		},
	}

	report := buildGuestReport(guests, 90, now)

	assert.Equal(t, 4, report.TotalGuests)
	require.Len(t, report.Stale, 1)
	assert.Equal(t, "g-stale", report.Stale[0].ID)
	assert.Equal(t, 120, report.Stale[0].DaysSinceInvite)
	assert.Zero(t, report.Removed)
	assert.Zero(t, report.Failed)
}

func TestBuildGuestReport_Empty(t *testing.T) {
	report := buildGuestReport(nil, 90, time.Now().UTC())
	assert.Zero(t, report.TotalGuests)
	assert.Empty(t, report.Stale)
}

func TestPartialWriteFailure_Error(t *testing.T) {
	err := &PartialWriteFailure{Attempted: 10, Succeeded: 7, Failed: 3}
	assert.Equal(t, "removed 7 of 10 guests, 3 failed", err.Error())
}
