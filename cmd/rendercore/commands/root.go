// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "rendercore",
	Short: "A minimal real-time rendering core",
	Long: `rendercore opens a GPU device through the gogpu/wgpu HAL and runs a
double or triple buffered frame loop with fence based CPU/GPU pacing.

Settings come from flags, RENDERCORE_* environment variables and an
optional rendercore.yaml, in that order of precedence.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "rendercore:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./rendercore.yaml or $HOME/.config/rendercore/rendercore.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("debug", false, "enable the backend validation layer")

	_ = viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(keyDebug, rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	configure(viper.GetViper(), cfgFile)
}

// configure points v at the config file and the environment. A missing
// config file is not an error.
func configure(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "rendercore"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("rendercore")
	}

	v.SetEnvPrefix("RENDERCORE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
}
