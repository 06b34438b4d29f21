package report

import (
	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/internal/registry"
	"github.com/entrascope/entrascope/pkg/links/entra"
	"github.com/entrascope/entrascope/pkg/outputters"
)

var CredentialExpiry = chain.NewModule(
	cfg.NewMetadata(
		"Credential Expiry",
		"Report application secrets and certificates that are expired or expiring within a threshold.",
	).WithProperties(map[string]any{
		"id":          "credential-expiry",
		"platform":    "entra",
		"opsec_level": "stealth",
		"authors":     []string{"Entrascope"},
		"references": []string{
			"https://learn.microsoft.com/en-us/graph/api/application-list",
			"https://learn.microsoft.com/en-us/graph/api/resources/passwordcredential",
		},
	}),
).WithLinks(
	entra.NewCredentialExpiryScannerLink,
	entra.NewCredentialExpiryFormatterLink,
).WithOutputters(
	outputters.NewRuntimeJSONOutputter,
	outputters.NewRuntimeMarkdownOutputter,
	outputters.NewMarkdownTableConsoleOutputter,
).WithAutoRun()

func init() {
	registry.Register("entra", "report", "credential-expiry", *CredentialExpiry)
}
