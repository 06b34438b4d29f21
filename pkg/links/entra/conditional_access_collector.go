package entra

import (
	"fmt"
	"log/slog"

	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/pkg/conditionalaccess"
	"github.com/entrascope/entrascope/pkg/graph"
)

// ConditionalAccessCollectorLink fetches every conditional access policy in
// the tenant and starts a raw snapshot. A listing failure aborts the run; the
// downstream links never see a partial policy set.
type ConditionalAccessCollectorLink struct {
	*chain.Base
}

func NewConditionalAccessCollectorLink(configs ...cfg.Config) chain.Link {
	l := &ConditionalAccessCollectorLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *ConditionalAccessCollectorLink) Params() []cfg.Param {
	return []cfg.Param{}
}

func (l *ConditionalAccessCollectorLink) Process(any) error {
	client, err := graph.NewClient()
	if err != nil {
		return err
	}

	policies, err := client.ListConditionalAccessPolicies(l.Context())
	if err != nil {
		return &conditionalaccess.SourceFetchError{Resource: "conditional access policies", Err: err}
	}

	slog.Info("Collected conditional access policies", "count", len(policies))

	return l.Send(conditionalaccess.RawSnapshot{Policies: policies})
}

// NamedLocationCollectorLink completes a snapshot with the tenant's named
// locations and terms of use agreements.
type NamedLocationCollectorLink struct {
	*chain.Base
}

func NewNamedLocationCollectorLink(configs ...cfg.Config) chain.Link {
	l := &NamedLocationCollectorLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *NamedLocationCollectorLink) Params() []cfg.Param {
	return []cfg.Param{}
}

func (l *NamedLocationCollectorLink) Process(input any) error {
	snapshot, ok := input.(conditionalaccess.RawSnapshot)
	if !ok {
		return fmt.Errorf("expected conditionalaccess.RawSnapshot, got %T", input)
	}

	client, err := graph.NewClient()
	if err != nil {
		return err
	}

	snapshot.NamedLocations, err = client.ListNamedLocations(l.Context())
	if err != nil {
		return &conditionalaccess.SourceFetchError{Resource: "named locations", Err: err}
	}

	snapshot.TermsOfUse, err = client.ListTermsOfUse(l.Context())
	if err != nil {
		return &conditionalaccess.SourceFetchError{Resource: "terms of use agreements", Err: err}
	}

	slog.Info("Collected named locations and terms of use",
		"named_locations", len(snapshot.NamedLocations),
		"terms_of_use", len(snapshot.TermsOfUse))

	return l.Send(snapshot)
}
