package entra

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/pkg/graph"
	"github.com/entrascope/entrascope/pkg/links/options"
	"github.com/entrascope/entrascope/pkg/outputters"
	"github.com/entrascope/entrascope/pkg/resolve"
	"github.com/entrascope/entrascope/pkg/types"
)

// RoleAssignmentRecord is one resolved directory role assignment.
type RoleAssignmentRecord struct {
	PrincipalID      string `json:"principalId"`
	Principal        string `json:"principal"`
	RoleDefinitionID string `json:"roleDefinitionId"`
	Role             string `json:"role"`
	Scope            string `json:"scope,omitempty"`
	AssignmentType   string `json:"assignmentType"`
}

// RoleAssignmentsCollectorLink lists active role assignments and PIM
// eligibilities and resolves each principal to a display name. Principals are
// resolved through a shared cache, so a principal holding many roles costs
// one lookup.
type RoleAssignmentsCollectorLink struct {
	*chain.Base
}

func NewRoleAssignmentsCollectorLink(configs ...cfg.Config) chain.Link {
	l := &RoleAssignmentsCollectorLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *RoleAssignmentsCollectorLink) Params() []cfg.Param {
	return []cfg.Param{}
}

func (l *RoleAssignmentsCollectorLink) Process(any) error {
	client, err := graph.NewClient()
	if err != nil {
		return err
	}

	definitions, err := client.ListRoleDefinitions(l.Context())
	if err != nil {
		return err
	}

	assignments, err := client.ListRoleAssignments(l.Context())
	if err != nil {
		return err
	}

	eligibilities, err := client.ListRoleEligibilities(l.Context())
	if err != nil {
		// PIM requires a premium license; treat a rejected endpoint as an
		// empty eligibility set rather than failing the whole listing.
		slog.Warn("Failed to list role eligibilities, continuing with active assignments only", "error", err)
		eligibilities = nil
	}

	resolver := resolve.NewResolver(client)

	var records []RoleAssignmentRecord
	for _, assignment := range append(assignments, eligibilities...) {
		record := RoleAssignmentRecord{
			PrincipalID:      assignment.PrincipalID,
			RoleDefinitionID: assignment.RoleDefinitionID,
			Scope:            assignment.DirectoryScopeID,
			AssignmentType:   assignment.AssignmentType,
		}

		if principal := resolver.Resolve(l.Context(), resolve.KindPrincipal, assignment.PrincipalID); principal != nil {
			record.Principal = principal.Display
		}

		record.Role = definitions[assignment.RoleDefinitionID]
		if record.Role == "" {
			record.Role = resolve.Placeholder(resolve.KindDirectoryRole, assignment.RoleDefinitionID)
		}

		records = append(records, record)
	}

	slog.Info("Collected directory role assignments",
		"active", len(assignments), "eligible", len(eligibilities))

	return l.Send(records)
}

// RoleAssignmentsFormatterLink renders role assignment records as JSON and
// Markdown.
type RoleAssignmentsFormatterLink struct {
	*chain.Base
}

func NewRoleAssignmentsFormatterLink(configs ...cfg.Config) chain.Link {
	l := &RoleAssignmentsFormatterLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *RoleAssignmentsFormatterLink) Params() []cfg.Param {
	return []cfg.Param{
		options.OutputDir(),
	}
}

func (l *RoleAssignmentsFormatterLink) Process(input any) error {
	records, ok := input.([]RoleAssignmentRecord)
	if !ok {
		return fmt.Errorf("expected []RoleAssignmentRecord, got %T", input)
	}

	outputDir, _ := cfg.As[string](l.Arg("output"))

	jsonPath := filepath.Join(outputDir, "role-assignments.json")
	if err := l.Send(outputters.NewNamedOutputData(records, jsonPath)); err != nil {
		return fmt.Errorf("failed to send JSON output: %w", err)
	}

	table := types.MarkdownTable{
		TableHeading: "Directory Role Assignments",
		Headers:      []string{"Principal", "Role", "Type", "Scope"},
	}
	for _, record := range records {
		table.AddRow(record.Principal, record.Role, record.AssignmentType, record.Scope)
	}

	if err := l.Send(table); err != nil {
		return fmt.Errorf("failed to send console table: %w", err)
	}

	mdPath := filepath.Join(outputDir, "role-assignments.md")
	return l.Send(outputters.NewNamedOutputData(table, mdPath))
}
