package entra

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrascope/entrascope/pkg/conditionalaccess"
	"github.com/entrascope/entrascope/pkg/resolve"
)

func TestPolicySummaryTable(t *testing.T) {
	config := &conditionalaccess.Config{
		Policies: []conditionalaccess.Policy{
			{
				DisplayName: "Require MFA",
				State:       "enabled",
				Conditions: conditionalaccess.Conditions{
					IncludeUsers: []resolve.Entity{
						{Kind: resolve.KindUser, ID: resolve.TokenAll, Display: resolve.TokenAll},
					},
					ExcludeUsers: []resolve.Entity{
						{Kind: resolve.KindUser, ID: "u-1", Display: "Break Glass"},
					},
					IncludeGroups: []resolve.Entity{
						{Kind: resolve.KindGroup, ID: "g-1", Display: "Engineering"},
					},
					IncludeLocations: []conditionalaccess.NamedLocation{
						{ID: "loc-1", DisplayName: "Blocked countries"},
					},
				},
				GrantControls: &conditionalaccess.GrantControls{
					Operator:        "AND",
					BuiltInControls: []string{"mfa", "compliantDevice"},
				},
			},
		},
	}

	table := PolicySummaryTable(config)

	assert.Equal(t, "Conditional Access Policies", table.TableHeading)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, "Require MFA", row[0])
	assert.Equal(t, "enabled", row[1])
	assert.Equal(t, "All; not: Break Glass", row[2])
	assert.Equal(t, "Engineering", row[3])
	assert.Equal(t, "Blocked countries", row[5])
	assert.Equal(t, "mfa, compliantDevice (AND)", row[6])
}

func TestFormatGrantControls(t *testing.T) {
	tests := []struct {
		name  string
		grant *conditionalaccess.GrantControls
		want  string
	}{
		{"nil", nil, ""},
		{"single control", &conditionalaccess.GrantControls{Operator: "OR", BuiltInControls: []string{"mfa"}}, "mfa"},
		{
			"terms of use",
			&conditionalaccess.GrantControls{
				Operator:        "AND",
				BuiltInControls: []string{"mfa"},
				TermsOfUse: []resolve.Entity{
					{Kind: resolve.KindTermsOfUse, ID: "tou-1", Display: "Employee Agreement"},
				},
			},
			"mfa, Employee Agreement (AND)",
		},
		{
			"authentication strength",
			&conditionalaccess.GrantControls{AuthenticationStrength: "Phishing-resistant MFA"},
			"Phishing-resistant MFA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatGrantControls(tt.grant))
		})
	}
}

func TestPolicySummaryTable_RendersMarkdown(t *testing.T) {
	config := &conditionalaccess.Config{
		Policies: []conditionalaccess.Policy{
			{DisplayName: "Block legacy auth", State: "enabled"},
		},
	}

	rendered := PolicySummaryTable(config).ToString()

	assert.True(t, strings.HasPrefix(rendered, "# Conditional Access Policies"))
	assert.Contains(t, rendered, "Block legacy auth")
}
