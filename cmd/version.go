package cmd

import (
	"github.com/spf13/cobra"

	"github.com/entrascope/entrascope/internal/message"
	"github.com/entrascope/entrascope/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Entrascope",
	Long:  `All software has versions. This is Entrascope's`,
	Run: func(cmd *cobra.Command, args []string) {
		message.Info(version.FullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
