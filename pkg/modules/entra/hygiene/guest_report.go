package hygiene

import (
	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/internal/registry"
	"github.com/entrascope/entrascope/pkg/links/entra"
	"github.com/entrascope/entrascope/pkg/outputters"
)

var GuestReport = chain.NewModule(
	cfg.NewMetadata(
		"Guest Report",
		"Report guest invitations still pending acceptance past a staleness window, optionally removing them with per-record outcome tallies.",
	).WithProperties(map[string]any{
		"id":          "guest-report",
		"platform":    "entra",
		"opsec_level": "moderate",
		"authors":     []string{"Entrascope"},
		"references": []string{
			"https://learn.microsoft.com/en-us/graph/api/user-list",
			"https://learn.microsoft.com/en-us/graph/api/user-delete",
		},
	}),
).WithLinks(
	entra.NewGuestReportLink,
).WithOutputters(
	outputters.NewRuntimeJSONOutputter,
	outputters.NewRuntimeMarkdownOutputter,
	outputters.NewMarkdownTableConsoleOutputter,
).WithAutoRun()

func init() {
	registry.Register("entra", "hygiene", "guest-report", *GuestReport)
}
