package recon

import (
	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/internal/registry"
	"github.com/entrascope/entrascope/pkg/links/entra"
	"github.com/entrascope/entrascope/pkg/outputters"
)

var ConditionalAccess = chain.NewModule(
	cfg.NewMetadata(
		"Conditional Access",
		"Collect conditional access policies, named locations, and terms of use agreements, resolving every referenced object id to a human-readable name.",
	).WithProperties(map[string]any{
		"id":          "conditional-access",
		"platform":    "entra",
		"opsec_level": "stealth",
		"authors":     []string{"Entrascope"},
		"references": []string{
			"https://learn.microsoft.com/en-us/graph/api/conditionalaccessroot-list-policies",
			"https://learn.microsoft.com/en-us/graph/api/conditionalaccessroot-list-namedlocations",
			"https://learn.microsoft.com/en-us/graph/api/termsofusecontainer-list-agreements",
		},
	}),
).WithLinks(
	entra.NewConditionalAccessCollectorLink,
	entra.NewNamedLocationCollectorLink,
	entra.NewConditionalAccessAssemblerLink,
	entra.NewConditionalAccessFormatterLink,
).WithOutputters(
	outputters.NewRuntimeJSONOutputter,
	outputters.NewRuntimeMarkdownOutputter,
	outputters.NewMarkdownTableConsoleOutputter,
).WithAutoRun()

func init() {
	registry.Register("entra", "recon", "conditional-access", *ConditionalAccess)
}
