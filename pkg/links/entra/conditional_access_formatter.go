package entra

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/pkg/conditionalaccess"
	"github.com/entrascope/entrascope/pkg/links/options"
	"github.com/entrascope/entrascope/pkg/outputters"
	"github.com/entrascope/entrascope/pkg/resolve"
	"github.com/entrascope/entrascope/pkg/types"
)

// ConditionalAccessFormatterLink renders an assembled configuration as a JSON
// export plus a human-readable Markdown summary.
type ConditionalAccessFormatterLink struct {
	*chain.Base
}

func NewConditionalAccessFormatterLink(configs ...cfg.Config) chain.Link {
	l := &ConditionalAccessFormatterLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *ConditionalAccessFormatterLink) Params() []cfg.Param {
	return []cfg.Param{
		options.OutputDir(),
	}
}

func (l *ConditionalAccessFormatterLink) Process(input any) error {
	config, ok := input.(*conditionalaccess.Config)
	if !ok {
		return fmt.Errorf("expected *conditionalaccess.Config, got %T", input)
	}

	outputDir, _ := cfg.As[string](l.Arg("output"))

	jsonPath := filepath.Join(outputDir, "conditional-access-policies.json")
	if err := l.Send(outputters.NewNamedOutputData(config, jsonPath)); err != nil {
		return fmt.Errorf("failed to send JSON output: %w", err)
	}

	table := PolicySummaryTable(config)

	// Console copy first, then the file copy.
	if err := l.Send(table); err != nil {
		return fmt.Errorf("failed to send console table: %w", err)
	}

	mdPath := filepath.Join(outputDir, "conditional-access-policies.md")
	return l.Send(outputters.NewNamedOutputData(table, mdPath))
}

// PolicySummaryTable renders one row per policy with its resolved names.
func PolicySummaryTable(config *conditionalaccess.Config) types.MarkdownTable {
	table := types.MarkdownTable{
		TableHeading: "Conditional Access Policies",
		Headers:      []string{"Policy", "State", "Users", "Groups", "Applications", "Locations", "Grant Controls"},
	}

	for i := range config.Policies {
		policy := &config.Policies[i]
		table.AddRow(
			policy.DisplayName,
			policy.State,
			formatSides(policy.Conditions.IncludeUsers, policy.Conditions.ExcludeUsers),
			formatSides(policy.Conditions.IncludeGroups, policy.Conditions.ExcludeGroups),
			formatSides(policy.Conditions.IncludeApps, policy.Conditions.ExcludeApps),
			formatLocationSides(policy.Conditions.IncludeLocations, policy.Conditions.ExcludeLocations),
			formatGrantControls(policy.GrantControls),
		)
	}

	return table
}

func formatSides(include, exclude []resolve.Entity) string {
	var parts []string
	if names := entityNames(include); names != "" {
		parts = append(parts, names)
	}
	if names := entityNames(exclude); names != "" {
		parts = append(parts, "not: "+names)
	}
	return strings.Join(parts, "; ")
}

func entityNames(entities []resolve.Entity) string {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Display)
	}
	return strings.Join(names, ", ")
}

func formatLocationSides(include, exclude []conditionalaccess.NamedLocation) string {
	var parts []string
	if names := locationNames(include); names != "" {
		parts = append(parts, names)
	}
	if names := locationNames(exclude); names != "" {
		parts = append(parts, "not: "+names)
	}
	return strings.Join(parts, "; ")
}

func locationNames(locations []conditionalaccess.NamedLocation) string {
	names := make([]string, 0, len(locations))
	for _, loc := range locations {
		names = append(names, loc.DisplayName)
	}
	return strings.Join(names, ", ")
}

func formatGrantControls(grant *conditionalaccess.GrantControls) string {
	if grant == nil {
		return ""
	}

	controls := append([]string{}, grant.BuiltInControls...)
	for _, tou := range grant.TermsOfUse {
		controls = append(controls, tou.Display)
	}
	if grant.AuthenticationStrength != "" {
		controls = append(controls, grant.AuthenticationStrength)
	}

	joined := strings.Join(controls, ", ")
	if len(controls) > 1 && grant.Operator != "" {
		return fmt.Sprintf("%s (%s)", joined, grant.Operator)
	}
	return joined
}
