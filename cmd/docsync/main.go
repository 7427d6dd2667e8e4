// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docsync CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/docsync/internal/logger"
	"github.com/pdiddy/docsync/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the docsync CLI.
var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Keep a directory of PDFs in step with a directory of DOCX files",
	Long: `docsync converts the DOCX documents of an input directory to PDF files in
an output directory. By default only documents that are newer than their PDF,
or that have no PDF yet, are converted. Rendering is delegated to LibreOffice,
run locally, in a container, or behind a Gotenberg server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		logger.Init(debug)

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Log.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docsync.yaml or ~/.config/docsync/docsync.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docsync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docsync"))
		}
	}

	viper.SetEnvPrefix("DOCSYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds every local flag of cmd to the viper key of the same name
// with dashes turned into underscores, so config files and DOCSYNC_* env
// vars supply defaults that explicit flags override.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if bindErr := viper.BindPFlag(key, f); bindErr != nil && err == nil {
			err = fmt.Errorf("binding flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
