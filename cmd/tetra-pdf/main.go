// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tetra-pdf CLI and UI shell.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/logging"
	"github.com/pdiddy/tetra-pdf/internal/secrets"
	"github.com/pdiddy/tetra-pdf/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is resolved from flags, environment and the config file before
	// any subcommand runs.
	cfg types.Config

	logger = zap.NewNop()

	// loadedSecrets holds PDF passwords loaded from the secrets directory.
	loadedSecrets secrets.Passwords
)

// rootCmd is the base command for the tetra-pdf CLI.
var rootCmd = &cobra.Command{
	Use:   "tetra-pdf",
	Short: "Select, inspect and merge PDF files",
	Long: `tetra-pdf selects PDF files, reports their size and page count, and merges
them in order into a single document.

Run "tetra-pdf ui" for the browser interface, or use the info, merge,
preview, thumbnail and decrypt subcommands directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c

		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(cfg.PDF.SecretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Info("loaded secrets", zap.Strings("keys", s.Keys()))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tetra-pdf.yaml or ~/.config/tetra-pdf/tetra-pdf.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	setDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tetra-pdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tetra-pdf"))
		}
	}

	viper.SetEnvPrefix("TETRA_PDF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
