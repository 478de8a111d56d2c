// Package cmd implements the gridplan CLI commands.
package cmd

import (
	"fmt"

	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Results:     %s\n", store.Path(flagDataDir))
	fmt.Println()

	fmt.Println("  [General]")
	if name := playerName(cfg); name != "" {
		fmt.Printf("    Player:        %s\n", name)
	} else {
		fmt.Println("    Player:        not set (asked on start)")
	}
	fmt.Printf("    Default level: %d\n", resolveLevel(cfg))
	if path := levelsPath(cfg); path != "" {
		fmt.Printf("    Levels file:   %s\n", path)
	} else {
		fmt.Println("    Levels file:   built-in")
	}
	fmt.Println()

	fmt.Println("  [Ledger]")
	fmt.Printf("    Policy:            %s (%s)\n", policy.Name, policy.Mode)
	fmt.Printf("    Discount factor:   %.2f\n", policy.DiscountFactor)
	fmt.Printf("    Operating years:   %.0f\n", policy.OperatingYears)
	fmt.Printf("    Investment markup: %.2f\n", policy.InvestmentMarkup)
	if cfg.Ledger.Budget != nil {
		fmt.Printf("    Budget override:   €%.0fM\n", *cfg.Ledger.Budget)
	} else {
		fmt.Println("    Budget override:   none (per level)")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Tick:          %ds\n", cfg.Server.TickSeconds)
	fmt.Printf("    Rate limit:    %.1f/s (burst %d)\n", cfg.Server.RateLimit, cfg.Server.RateBurst)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `gridplan setup` to reconfigure.")
	return nil
}

func levelsPath(cfg config.Config) string {
	if flagLevels != "" {
		return flagLevels
	}
	return cfg.General.LevelsFile
}
