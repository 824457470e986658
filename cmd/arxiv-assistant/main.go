// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the arxiv-assistant CLI and server.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from the secrets directory at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the arxiv-assistant CLI.
var rootCmd = &cobra.Command{
	Use:   "arxiv-assistant",
	Short: "Download, convert, and serve arXiv papers",
	Long: `arxiv-assistant downloads arXiv papers, converts their PDFs to Markdown,
and keeps the results in a local paper store.

Run "arxiv-assistant serve" for the HTTP API, or use the download, status,
list, read, and search subcommands directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		if err := setupLogging(level); err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			slog.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./arxiv-assistant.yaml or ~/.config/arxiv-assistant/arxiv-assistant.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory with one file per secret")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("storage", "", "paper storage directory (default ./data/papers)")
	rootCmd.PersistentFlags().String("backend", "", "conversion backend: markitdown or pdftotext")

	bindFlag("storage.path", rootCmd.PersistentFlags().Lookup("storage"))
	bindFlag("conversion.backend", rootCmd.PersistentFlags().Lookup("backend"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("arxiv-assistant")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arxiv-assistant"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("ARXIV_ASSISTANT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setupLogging installs a text slog handler on stderr at level.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
