// Package main provides the CLI entry point for the supportmesh customer
// support assistant.
//
// # Basic Usage
//
// Start the assistant:
//
//	supportmesh serve --config supportmesh.yaml
//
// Start the demo courier backends the tools call:
//
//	supportmesh backends
//
// Ask a single question without a server:
//
//	supportmesh ask --user alice --prompt "Where is package ABC123?"
//
// # Environment Variables
//
// Every configuration key can be overridden with a SUPPORTMESH_* variable,
// e.g. SUPPORTMESH_MODEL_PROVIDER or SUPPORTMESH_SESSION_BACKEND. Provider
// API keys fall back to OPENAI_API_KEY and ANTHROPIC_API_KEY.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "supportmesh",
		Short: "supportmesh - tool-using customer support assistant",
		Long: `supportmesh answers customer questions with an LLM that can track
packages, open support tickets and search the courier knowledge base.

Conversations are persisted per user in the configured session store.`,
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")

	rootCmd.AddCommand(
		buildServeCmd(&configPath),
		buildBackendsCmd(&configPath),
		buildAskCmd(&configPath),
	)
	return rootCmd
}
