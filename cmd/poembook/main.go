// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the poembook CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/poembook/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the poembook CLI.
var rootCmd = &cobra.Command{
	Use:   "poembook",
	Short: "Generate a LaTeX book of equation poems or melodies with an LLM",
	Long: `poembook reads an outline of chapters and topics, asks a language model
for one structured artifact per topic (an equation poem or a MusiXTeX melody),
validates it, and writes a LaTeX fragment for each. It then assembles the
fragments into a skeleton document and compiles the book.

Each stage is a subcommand: outline, pages, build, compile, and index.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Flags()); err != nil {
			return err
		}
		s, err := secrets.Load(filepath.Join(viper.GetString("root"), ".secrets"))
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./poembook.yaml or ~/.config/poembook/poembook.yaml)")
	rootCmd.PersistentFlags().String("root", ".", "project root containing book/, out/ and logs/")
	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))

	setDefaults()
}

// setDefaults registers the fallback for every config key.
func setDefaults() {
	viper.SetDefault("root", ".")
	viper.SetDefault("provider", "anthropic")
	viper.SetDefault("model", "claude-sonnet-4-0")
	viper.SetDefault("temperature", 0.8)
	viper.SetDefault("max_attempts", 3)
	viper.SetDefault("rate_limit_retries", 0)
	viper.SetDefault("retry_delay", "2s")
	viper.SetDefault("kind", "poem")
	viper.SetDefault("mode", "pool")
	viper.SetDefault("workers", 5)
	viper.SetDefault("migrate_legacy", true)
	viper.SetDefault("journal", true)
	viper.SetDefault("engine", "lualatex")
	viper.SetDefault("indexer", "makeindex")
	viper.SetDefault("halt_on_error", true)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("poembook")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "poembook"))
		}
	}

	viper.SetEnvPrefix("POEMBOOK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds the running command's flags to viper keys, so a flag
// named halt-on-error overrides the halt_on_error config key. Binding at run
// time lets several subcommands share a flag name.
func bindFlags(flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := viper.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("binding flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
