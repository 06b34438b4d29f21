package entra

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/pkg/conditionalaccess"
	"github.com/entrascope/entrascope/pkg/graph"
	"github.com/entrascope/entrascope/pkg/links/options"
)

// PolicyLoaderLink produces an assembled configuration either from a previous
// JSON export or, when no file is given, by collecting and assembling live.
type PolicyLoaderLink struct {
	*chain.Base
}

func NewPolicyLoaderLink(configs ...cfg.Config) chain.Link {
	l := &PolicyLoaderLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *PolicyLoaderLink) Params() []cfg.Param {
	return []cfg.Param{
		options.EntraPolicyFile(),
	}
}

func (l *PolicyLoaderLink) Process(any) error {
	policyFile, err := cfg.As[string](l.Arg("policy-file"))
	if err == nil && policyFile != "" {
		config, err := LoadPolicyExport(policyFile)
		if err != nil {
			return err
		}
		l.Logger.Info("Loaded conditional access export", "policies", len(config.Policies), "file", policyFile)
		return l.Send(config)
	}

	client, err := graph.NewClient()
	if err != nil {
		return err
	}

	assembler := conditionalaccess.NewAssembler(client, conditionalaccess.DefaultCountryTable())
	config, err := assembler.Build(l.Context(), client)
	if err != nil {
		return err
	}

	l.Logger.Info("Collected and assembled conditional access policies", "policies", len(config.Policies))
	return l.Send(config)
}

// LoadPolicyExport reads an assembled configuration previously written by the
// JSON outputter. Both the bare object and the outputter's one-element array
// wrapping are accepted.
func LoadPolicyExport(path string) (*conditionalaccess.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", path, err)
	}

	var config conditionalaccess.Config
	if err := json.Unmarshal(data, &config); err == nil && config.Policies != nil {
		return &config, nil
	}

	var wrapped []conditionalaccess.Config
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped) > 0 {
		return &wrapped[0], nil
	}

	return nil, fmt.Errorf("failed to parse policy file %q: not a conditional access export", path)
}
