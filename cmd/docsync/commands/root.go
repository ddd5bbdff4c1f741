package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Reconcile a charm's local documentation with its forum-hosted index",
	Long: `docsync keeps a charm repository's docs/ tree and its Discourse
navigation-index topic in sync. When docs/ exists it reconciles local
changes onto the forum; otherwise it migrates the forum-hosted tree back
onto disk and opens a pull request with the result.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default $XDG_CONFIG_HOME/docsync/config.yaml)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	viper.SetEnvPrefix("DOCSYNC")
	viper.AutomaticEnv()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			if home, err := os.UserHomeDir(); err == nil {
				configHome = home + "/.config"
			}
		}
		if configHome != "" {
			viper.AddConfigPath(configHome + "/docsync")
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Config file is optional: docsync's own internal/config loader handles
	// the authoritative load, this just lets flags/env override it uniformly.
	_ = viper.ReadInConfig()
}
