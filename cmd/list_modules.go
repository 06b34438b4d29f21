package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/entrascope/entrascope/internal/registry"
)

var listModulesCmd = &cobra.Command{
	Use:   "list-modules",
	Short: "Display available Entrascope modules in a tree structure",
	Run: func(cmd *cobra.Command, args []string) {
		displayModuleTree()
	},
}

func displayModuleTree() {
	hierarchy := registry.GetHierarchy()

	bold := color.New(color.Bold)
	if noColor {
		color.NoColor = true
	}

	platforms := make([]string, 0, len(hierarchy))
	for platform := range hierarchy {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	for _, platform := range platforms {
		fmt.Printf("\n%s\n", bold.Sprint(platform))

		categories := make([]string, 0, len(hierarchy[platform]))
		for category := range hierarchy[platform] {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		for _, category := range categories {
			fmt.Printf("├─ %s\n", category)

			modules := append([]string(nil), hierarchy[platform][category]...)
			sort.Strings(modules)

			for _, module := range modules {
				description := ""
				if entry, ok := registry.GetEntry(module); ok {
					description = entry.Module.Metadata().Description
				}
				fmt.Printf("  ├─ %s - %s\n", module, description)
			}
		}
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(listModulesCmd)
}
