package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowstudio"
	"github.com/aretw0/flowstudio/internal/cli"
	"github.com/aretw0/flowstudio/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "flowstudio",
	Short: "flowstudio edits and checks Telegram bot flows",
	Long: `flowstudio validates, clones, lays out and visualizes bot flow configs.
It also serves the editor API over HTTP and MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a flowstudio.yaml settings file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("ui-lang", "", "Language of validation messages (overrides settings)")
	rootCmd.PersistentFlags().String("store", "", "Config store: memory, file, redis or sqlite (overrides settings)")
}

// app is what every command needs: settings, a logger and a studio.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	studio  *flowstudio.Studio
	backend *config.Backend
}

func (a *app) Close() error {
	return a.backend.Close()
}

// setup loads the settings, applies the flag overrides and opens the store.
func setup(cmd *cobra.Command, withMetrics bool) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lang, _ := cmd.Flags().GetString("ui-lang"); lang != "" {
		cfg.UILanguage = lang
	}
	if kind, _ := cmd.Flags().GetString("store"); kind != "" {
		cfg.Store.Kind = kind
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg.Log, debug)
	if err != nil {
		return nil, err
	}
	studio, backend, err := cli.NewStudio(cfg, logger, withMetrics && cfg.HTTP.Metrics)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, studio: studio, backend: backend}, nil
}

// fileCommand sets up a studio over an in-memory store for commands that
// work on documents rather than on the configured store.
func fileCommand(cmd *cobra.Command) (*app, error) {
	if !cmd.Flags().Changed("store") {
		if err := cmd.Flags().Set("store", config.StoreMemory); err != nil {
			return nil, err
		}
	}
	return setup(cmd, false)
}

func stdio() cli.IO {
	return cli.IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}
