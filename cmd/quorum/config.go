package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgelight/quorum/internal/config"
	"github.com/forgelight/quorum/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: `Display the effective configuration.

Configuration is stored at ~/.config/quorum/config.yaml
Project-specific overrides can be placed in .quorum.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		displayAllConfig(cfg)
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	storePath := cfg.Store.Path
	if storePath == "" {
		storePath = store.DefaultDBPath()
	}

	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", orDefault(cfg.Anthropic.Model, "(sdk default)"))
	fmt.Printf("provider.kind: %s\n", cfg.Provider.Kind)
	fmt.Printf("store.path: %s\n", storePath)
	fmt.Printf("logging.enhanced: %t\n", cfg.Logging.Enhanced)
	fmt.Printf("logging.path: %s\n", orDefault(cfg.Logging.Path, "(disabled)"))
	fmt.Printf("team.name: %s\n", cfg.Team.Name)
	fmt.Printf("\nconfig file: %s\n", config.GetUserConfigPath())
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
