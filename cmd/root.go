// Package cmd implements the CLI commands for arxiv2md using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaurav-prasanna/arxiv2md/internal/config"
	"github.com/gaurav-prasanna/arxiv2md/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "arxiv2md",
	Short: "Convert arXiv HTML papers into Markdown with LaTeX math",
	Long: `arxiv2md converts the HTML rendering of an arXiv paper into clean
Markdown. Math is kept as LaTeX between $...$ and $$...$$ delimiters;
navigation, styling and other page chrome are removed.

Usage:
  arxiv2md convert <arxiv-id | file.html>... [flags]
  arxiv2md fetch <arxiv-id> [flags]`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// cfg is loaded once flags are parsed.
var cfg *config.Config

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default $HOME/.arxiv2md.yaml)")
	pf.Bool("debug", false, "enable debug logging")
	pf.BoolP("quiet", "q", false, "only log errors")
	pf.Bool("log-json", false, "log as JSON")
	pf.Duration("timeout", 0, "HTTP timeout (default 30s)")
	pf.String("base-url", "", "prefix arXiv identifiers are appended to")

	bindFlags(pf, map[string]string{
		"config":   "config",
		"debug":    "debug",
		"quiet":    "quiet",
		"log_json": "log-json",
		"timeout":  "timeout",
		"base_url": "base-url",
	})
}

func initConfig() {
	v := viper.GetViper()
	config.Setup(v)
	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".arxiv2md")
		v.SetConfigType("yaml")
	}
	// A missing config file is not an error.
	_ = v.ReadInConfig()
}

// setup validates configuration and initializes logging before any command.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = c
	logger.Init(logger.Options{Debug: cfg.Debug, Quiet: cfg.Quiet, JSON: cfg.LogJSON})
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("loaded config", "path", used)
	}
	return nil
}

// Execute runs the root command. Interrupts cancel in-flight work.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
