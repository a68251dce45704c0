// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the crime-extract CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/crime-extract/internal/logging"
	"github.com/pdiddy/crime-extract/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, loaded in PersistentPreRunE.
	cfg types.ExtractionConfig

	logger = zap.NewNop()
)

// rootCmd is the base command for the crime-extract CLI.
var rootCmd = &cobra.Command{
	Use:   "crime-extract",
	Short: "Extract structured fields from police crime narratives",
	Long: `crime-extract reads a table of crime reports and fills in crime type, method
of entry, suspect descriptions and vehicle details for every row.

Each narrative is sent to a hosted language model. When the model cannot be
reached, rejects the credential, or returns unusable output, pattern matching
fills the fields instead, so every input row gets a result.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := logging.New(c.Log.Level, c.Log.Format, os.Stderr)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return resolveAPIKey(&cfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./crime-extract.yaml or ~/.config/crime-extract/crime-extract.yaml)")
	rootCmd.PersistentFlags().Bool("regex-only", false, "skip the language model and use pattern matching only")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("regex_only", rootCmd.PersistentFlags().Lookup("regex-only"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("crime-extract")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "crime-extract"))
		}
	}

	viper.SetEnvPrefix("CRIME_EXTRACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
