package registry

import (
	"sync"

	"github.com/praetorian-inc/janus-framework/pkg/chain"
)

// Entry is a registered module together with its place in the command tree.
type Entry struct {
	Module   chain.Module
	Platform string
	Category string
}

type ModuleRegistry struct {
	mu        sync.RWMutex
	modules   map[string]Entry
	hierarchy map[string]map[string][]string // platform -> category -> []name
}

var Registry = &ModuleRegistry{
	modules:   make(map[string]Entry),
	hierarchy: make(map[string]map[string][]string),
}

// Register records a module under platform/category/name. Called from module
// init functions; the cmd layer generates the CLI from what accumulated here.
func Register(platform, category, name string, module chain.Module) {
	Registry.mu.Lock()
	defer Registry.mu.Unlock()

	Registry.modules[name] = Entry{
		Module:   module,
		Platform: platform,
		Category: category,
	}

	if _, exists := Registry.hierarchy[platform]; !exists {
		Registry.hierarchy[platform] = make(map[string][]string)
	}
	Registry.hierarchy[platform][category] = append(Registry.hierarchy[platform][category], name)
}

// GetModule gets a specific module by name.
func GetModule(name string) (chain.Module, bool) {
	Registry.mu.RLock()
	defer Registry.mu.RUnlock()

	entry, exists := Registry.modules[name]
	if !exists {
		return chain.Module{}, false
	}
	return entry.Module, true
}

// GetEntry gets the full registry entry for a module.
func GetEntry(name string) (Entry, bool) {
	Registry.mu.RLock()
	defer Registry.mu.RUnlock()

	entry, exists := Registry.modules[name]
	return entry, exists
}

// GetHierarchy returns a copy of the platform -> category -> module names
// tree for CLI generation.
func GetHierarchy() map[string]map[string][]string {
	Registry.mu.RLock()
	defer Registry.mu.RUnlock()

	result := make(map[string]map[string][]string)
	for platform, categories := range Registry.hierarchy {
		result[platform] = make(map[string][]string)
		for category, names := range categories {
			result[platform][category] = append([]string{}, names...)
		}
	}
	return result
}
