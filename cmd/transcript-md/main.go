// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the transcript-md CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/transcript-md/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the transcript-md CLI.
var rootCmd = &cobra.Command{
	Use:   "transcript-md",
	Short: "Convert JSONL conversation transcripts to Markdown",
	Long: `transcript-md turns a line-delimited JSON conversation transcript into a
Markdown document that fits in a pull-request comment. User turns, assistant
text and tool calls, tool results, and command messages are rendered; other
records are skipped.

Runs can optionally be recorded in a local SQLite archive and listed with
the history subcommand.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./transcript-md.yaml or ~/.config/transcript-md/transcript-md.yaml)")
	rootCmd.PersistentFlags().String("archive-path", types.DefaultArchivePath, "SQLite archive of conversion runs")
	viper.BindPFlag("archive.path", rootCmd.PersistentFlags().Lookup("archive-path"))

	viper.SetDefault("conversion.max_characters", types.DefaultMaxCharacters)
	viper.SetDefault("conversion.tool_input_limit", types.DefaultToolInputLimit)
	viper.SetDefault("conversion.tool_result_limit", types.DefaultToolResultLimit)
	viper.SetDefault("archive.enabled", false)
	viper.SetDefault("archive.path", types.DefaultArchivePath)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("transcript-md")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "transcript-md"))
		}
	}

	viper.SetEnvPrefix("TRANSCRIPT_MD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flag, environment and file settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Conversion.ValidatePositive(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
