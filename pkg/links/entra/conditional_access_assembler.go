package entra

import (
	"fmt"
	"log/slog"

	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/pkg/conditionalaccess"
	"github.com/entrascope/entrascope/pkg/graph"
)

// ConditionalAccessAssemblerLink resolves every object id in a raw snapshot
// to a display value and emits the assembled configuration. Ids that cannot
// be resolved degrade to placeholder values; the link itself only fails on
// credential problems.
type ConditionalAccessAssemblerLink struct {
	*chain.Base
}

func NewConditionalAccessAssemblerLink(configs ...cfg.Config) chain.Link {
	l := &ConditionalAccessAssemblerLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *ConditionalAccessAssemblerLink) Params() []cfg.Param {
	return []cfg.Param{}
}

func (l *ConditionalAccessAssemblerLink) Process(input any) error {
	snapshot, ok := input.(conditionalaccess.RawSnapshot)
	if !ok {
		return fmt.Errorf("expected conditionalaccess.RawSnapshot, got %T", input)
	}

	client, err := graph.NewClient()
	if err != nil {
		return err
	}

	assembler := conditionalaccess.NewAssembler(client, conditionalaccess.DefaultCountryTable())
	config := assembler.Assemble(l.Context(), snapshot)

	slog.Info("Assembled conditional access configuration",
		"policies", len(config.Policies),
		"named_locations", len(config.NamedLocations))

	return l.Send(config)
}
