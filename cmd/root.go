// Package cmd wires the kitscout CLI.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// newRootCmd creates and configures the root command with its shared Viper
// instance. Configuration precedence is flags > KITSCOUT_* environment
// variables > config file > defaults.
func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "kitscout",
		Short: "Find ELISA kit vendors covering a full analyte panel.",
		Long: `kitscout searches vendor catalogs for ELISA kits and reports the vendors
that stock a kit for every requested analyte, for the requested species and
sample types, inside a fixed wall-clock budget.`,
		SilenceUsage: true,

		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initViper(v)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kitscout.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("dev", true, "use the development console log encoder")
	cmd.PersistentFlags().String("log-file", "", "also write logs to this file, with rotation")
	mustBind(v, "logging.level", cmd.PersistentFlags().Lookup("log-level"))
	mustBind(v, "logging.development", cmd.PersistentFlags().Lookup("dev"))
	mustBind(v, "logging.file", cmd.PersistentFlags().Lookup("log-file"))

	cmd.AddCommand(newMatchCmd(v))

	return cmd
}

func initViper(v *viper.Viper) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
			v.SetConfigName(".kitscout")
			v.SetConfigType("yaml")
			// Missing default config is fine; a broken one is not.
			if err := v.ReadInConfig(); err != nil {
				if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
					return fmt.Errorf("read config file: %w", err)
				}
			}
		}
	}

	v.SetEnvPrefix("KITSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return nil
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
