package recon

import (
	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/internal/registry"
	"github.com/entrascope/entrascope/pkg/links/entra"
	"github.com/entrascope/entrascope/pkg/outputters"
)

var RoleAssignments = chain.NewModule(
	cfg.NewMetadata(
		"Role Assignments",
		"Enumerate directory role assignments and PIM eligibilities, resolving every principal to a display name.",
	).WithProperties(map[string]any{
		"id":          "role-assignments",
		"platform":    "entra",
		"opsec_level": "stealth",
		"authors":     []string{"Entrascope"},
		"references": []string{
			"https://learn.microsoft.com/en-us/graph/api/rbacapplication-list-roleassignments",
			"https://learn.microsoft.com/en-us/graph/api/rbacapplication-list-roleeligibilityscheduleinstances",
		},
	}),
).WithLinks(
	entra.NewRoleAssignmentsCollectorLink,
	entra.NewRoleAssignmentsFormatterLink,
).WithOutputters(
	outputters.NewRuntimeJSONOutputter,
	outputters.NewRuntimeMarkdownOutputter,
	outputters.NewMarkdownTableConsoleOutputter,
).WithAutoRun()

func init() {
	registry.Register("entra", "recon", "role-assignments", *RoleAssignments)
}
