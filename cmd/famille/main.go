package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bacoco/la-famille-agentui/internal/config"
	"github.com/bacoco/la-famille-agentui/internal/state"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "famille",
	Short: "Multi-agent family chat: talk to the agents, build new families",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath,
		"config",
		filepath.Join(os.Getenv("HOME"), ".famille", "config.json"),
		"config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config or exits; commands assume a usable config.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// stores bundles every JSON-file store rooted at the data dir.
type stores struct {
	conversations *state.ConversationStore
	agents        *state.AgentStore
	backends      *state.BackendStore
	families      *state.FamilyStore
	genesis       *state.GenesisStore
}

func openStores(cfg *config.Config) (*stores, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	conversations, err := state.NewConversationStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	agents, err := state.NewAgentStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	backends, err := state.NewBackendStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	families, err := state.NewFamilyStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	genesis, err := state.NewGenesisStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return &stores{
		conversations: conversations,
		agents:        agents,
		backends:      backends,
		families:      families,
		genesis:       genesis,
	}, nil
}
