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
	"github.com/entrascope/entrascope/pkg/types"
)

// PolicySearchLink runs a pattern search over an assembled configuration and
// reports the policies that reference matching entities.
type PolicySearchLink struct {
	*chain.Base
}

func NewPolicySearchLink(configs ...cfg.Config) chain.Link {
	l := &PolicySearchLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *PolicySearchLink) Params() []cfg.Param {
	return []cfg.Param{
		options.EntraSearchPattern(),
		options.EntraSearchDimension(),
		options.EntraSearchScope(),
		options.OutputDir(),
	}
}

func (l *PolicySearchLink) Process(input any) error {
	config, ok := input.(*conditionalaccess.Config)
	if !ok {
		return fmt.Errorf("expected *conditionalaccess.Config, got %T", input)
	}

	pattern, err := cfg.As[string](l.Arg("pattern"))
	if err != nil {
		return fmt.Errorf("pattern parameter is required: %w", err)
	}

	dimension, _ := cfg.As[string](l.Arg("dimension"))
	scopeArg, _ := cfg.As[string](l.Arg("scope"))
	scope := parseScope(scopeArg)

	matches, err := runSearch(config, dimension, pattern, scope)
	if err != nil {
		return err
	}

	l.Logger.Info("Pattern search complete", "pattern", pattern, "dimension", dimension, "matches", len(matches))

	outputDir, _ := cfg.As[string](l.Arg("output"))
	jsonPath := filepath.Join(outputDir, "policy-search.json")
	if err := l.Send(outputters.NewNamedOutputData(matches, jsonPath)); err != nil {
		return fmt.Errorf("failed to send JSON output: %w", err)
	}

	table := matchTable(pattern, dimension, matches)
	if err := l.Send(table); err != nil {
		return fmt.Errorf("failed to send console table: %w", err)
	}

	mdPath := filepath.Join(outputDir, "policy-search.md")
	return l.Send(outputters.NewNamedOutputData(table, mdPath))
}

func runSearch(config *conditionalaccess.Config, dimension, pattern string, scope conditionalaccess.Scope) ([]conditionalaccess.PolicyMatch, error) {
	switch dimension {
	case "group":
		return conditionalaccess.FindByGroup(config, pattern, scope)
	case "user":
		return conditionalaccess.FindByUser(config, pattern, scope)
	case "app":
		return conditionalaccess.FindByApp(config, pattern, scope)
	case "role":
		return conditionalaccess.FindByRole(config, pattern, scope)
	case "country":
		return conditionalaccess.FindByCountry(config, conditionalaccess.DefaultCountryTable(), pattern, scope)
	default:
		return nil, fmt.Errorf("unsupported search dimension %q", dimension)
	}
}

func parseScope(s string) conditionalaccess.Scope {
	switch strings.ToLower(s) {
	case "include":
		return conditionalaccess.ScopeInclude
	case "exclude":
		return conditionalaccess.ScopeExclude
	default:
		return conditionalaccess.ScopeBoth
	}
}

func matchTable(pattern, dimension string, matches []conditionalaccess.PolicyMatch) types.MarkdownTable {
	table := types.MarkdownTable{
		TableHeading: fmt.Sprintf("Policies matching %q (%s)", pattern, dimension),
		Headers:      []string{"Policy", "State", "Scope", "Matched"},
	}
	for _, m := range matches {
		table.AddRow(m.DisplayName, m.State, m.Scope, strings.Join(m.Matched, ", "))
	}
	return table
}
