package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/levels"
	"github.com/gridplan/gridplan/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagLevel   int
	flagLevels  string
	flagPolicy  string
	flagPlayer  string
	flagDataDir string
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "gridplan",
	Short: "Power grid planning game",
	Long:  "Plan a national power grid: meet the capacity goal, stay under the emissions cap, and keep within budget.",
	RunE:  runEval,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagLevel, "level", "l", 0, "Level number (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLevels, "levels", "", "YAML level pack replacing the built-in levels")
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "policy", "", "Emissions policy: "+policyList())
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Player name")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", config.DataDir(), "Directory holding the results database")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")

	addEvalFlags(rootCmd)
}

// loadConfig reads the config file. A broken file is reported and the
// defaults are used.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		progressf("  Config unusable, using defaults: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

// loadCatalog returns the level pack from --levels, the config file, or
// the built-in levels, in that order.
func loadCatalog(cfg config.Config) (*levels.Catalog, error) {
	path := levelsPath(cfg)
	if path == "" {
		return levels.Default(), nil
	}
	catalog, err := levels.Load(path)
	if err != nil {
		return nil, err
	}
	progressf("  Loaded %d levels from %s\n", len(catalog.Levels()), path)
	return catalog, nil
}

// resolvePolicy applies --policy over the configured policy. Unlike the
// config file, an unknown name on the command line is an error.
func resolvePolicy(cfg config.Config) (config.Policy, error) {
	if flagPolicy == "" {
		return config.ResolvePolicy(cfg), nil
	}
	p, ok := config.LookupPolicy(flagPolicy)
	if !ok {
		return config.Policy{}, fmt.Errorf("unknown policy %q (want %s)", flagPolicy, policyList())
	}
	if cfg.Ledger.DiscountFactor != nil {
		p.DiscountFactor = *cfg.Ledger.DiscountFactor
	}
	return p, nil
}

func resolveLevel(cfg config.Config) int {
	if flagLevel > 0 {
		return flagLevel
	}
	if cfg.General.DefaultLevel > 0 {
		return cfg.General.DefaultLevel
	}
	return 1
}

func playerName(cfg config.Config) string {
	if flagPlayer != "" {
		return flagPlayer
	}
	return config.PlayerName(cfg)
}

func openStore() (*store.Store, error) {
	return store.Open(store.Path(flagDataDir))
}

func progressf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func policyList() string {
	return strings.Join(config.PolicyNames(), ", ")
}
