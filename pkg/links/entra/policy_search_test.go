package entra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrascope/entrascope/pkg/conditionalaccess"
	"github.com/entrascope/entrascope/pkg/resolve"
)

func searchFixture() *conditionalaccess.Config {
	return &conditionalaccess.Config{
		Policies: []conditionalaccess.Policy{
			{
				ID:          "p-1",
				DisplayName: "Require MFA for finance",
				State:       "enabled",
				Conditions: conditionalaccess.Conditions{
					IncludeGroups: []resolve.Entity{
						{Kind: resolve.KindGroup, ID: "g-1", Display: "Finance"},
					},
					IncludeUsers: []resolve.Entity{
						{Kind: resolve.KindUser, ID: "u-1", Display: "Avery Chen"},
					},
				},
			},
		},
	}
}

func TestRunSearch_Dimensions(t *testing.T) {
	config := searchFixture()

	tests := []struct {
		dimension string
		pattern   string
		want      int
	}{
		{"group", "fin*", 1},
		{"group", "hr*", 0},
		{"user", "avery*", 1},
		{"app", "*", 0},
		{"role", "*", 0},
	}

	for _, tt := range tests {
		t.Run(tt.dimension+"/"+tt.pattern, func(t *testing.T) {
			matches, err := runSearch(config, tt.dimension, tt.pattern, conditionalaccess.ScopeBoth)
			require.NoError(t, err)
			assert.Len(t, matches, tt.want)
		})
	}
}

func TestRunSearch_UnsupportedDimension(t *testing.T) {
	_, err := runSearch(searchFixture(), "device", "*", conditionalaccess.ScopeBoth)
	assert.Error(t, err)
}

func TestParseScope(t *testing.T) {
	assert.Equal(t, conditionalaccess.ScopeInclude, parseScope("include"))
	assert.Equal(t, conditionalaccess.ScopeExclude, parseScope("Exclude"))
	assert.Equal(t, conditionalaccess.ScopeBoth, parseScope("both"))
	assert.Equal(t, conditionalaccess.ScopeBoth, parseScope(""))
}

func TestMatchTable(t *testing.T) {
	matches := []conditionalaccess.PolicyMatch{
		{DisplayName: "Require MFA", State: "enabled", Scope: "Include, Exclude", Matched: []string{"Finance", "Financial Auditors"}},
	}

	table := matchTable("fin*", "group", matches)

	assert.Contains(t, table.TableHeading, `"fin*"`)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Include, Exclude", table.Rows[0][2])
	assert.Equal(t, "Finance, Financial Auditors", table.Rows[0][3])
}
