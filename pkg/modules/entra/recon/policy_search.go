package recon

import (
	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/internal/registry"
	"github.com/entrascope/entrascope/pkg/links/entra"
	"github.com/entrascope/entrascope/pkg/outputters"
)

var PolicySearch = chain.NewModule(
	cfg.NewMetadata(
		"Policy Search",
		"Find conditional access policies that reference a group, user, application, role, or country by display name pattern.",
	).WithProperties(map[string]any{
		"id":          "policy-search",
		"platform":    "entra",
		"opsec_level": "stealth",
		"authors":     []string{"Entrascope"},
		"references": []string{
			"https://learn.microsoft.com/en-us/graph/api/resources/conditionalaccesspolicy",
		},
	}),
).WithLinks(
	entra.NewPolicyLoaderLink,
	entra.NewPolicySearchLink,
).WithOutputters(
	outputters.NewRuntimeJSONOutputter,
	outputters.NewRuntimeMarkdownOutputter,
	outputters.NewMarkdownTableConsoleOutputter,
).WithAutoRun()

func init() {
	registry.Register("entra", "recon", "policy-search", *PolicySearch)
}
