package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/entrascope/entrascope/internal/logs"
	"github.com/entrascope/entrascope/internal/message"
)

var (
	cfgFile  string
	logLevel string
	noBanner bool
	quiet    bool
	noColor  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "entrascope",
	Short: "Entrascope audits Entra ID conditional access, roles, and account hygiene.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		message.SetQuiet(quiet)
		message.SetNoColor(noColor)
		logs.ConsoleLoggerWithLevel(logLevel)
		if !noBanner {
			message.Banner()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.entrascope.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error, none")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "suppress the startup banner")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress status messages")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	generateCommands(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".entrascope")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
