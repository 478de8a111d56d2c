package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	name := cfg.General.PlayerName
	policy := config.NormalizePolicyName(cfg.Ledger.Policy)
	level := cfg.General.DefaultLevel
	themeName := theme.ByName(cfg.Appearance.Theme).Name

	policyOpts := make([]huh.Option[string], 0, len(config.PolicyNames()))
	for _, n := range config.PolicyNames() {
		p, _ := config.LookupPolicy(n)
		label := fmt.Sprintf("%s (%s emissions, discount %.2f)", n, p.Mode, p.DiscountFactor)
		policyOpts = append(policyOpts, huh.NewOption(label, n))
	}
	levelOpts := make([]huh.Option[int], 0, len(catalog.Levels()))
	for _, lvl := range catalog.Levels() {
		levelOpts = append(levelOpts, huh.NewOption(strconv.Itoa(lvl.Number)+". "+lvl.Name, lvl.Number))
	}
	themeOpts := huh.NewOptions(theme.Names()...)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to gridplan!").
				Description("Plan a power grid that meets its capacity goal,\nstays under the emissions cap and within budget."),
			huh.NewInput().
				Title("Player name").
				Description("Stored with your results. Leave blank to be asked on start.").
				CharLimit(40).
				Value(&name),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Emissions policy").
				Options(policyOpts...).
				Value(&policy),
			huh.NewSelect[int]().
				Title("Default level for `gridplan eval`").
				Options(levelOpts...).
				Value(&level),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeName),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	cfg.General.PlayerName = strings.TrimSpace(name)
	cfg.General.DefaultLevel = level
	cfg.Ledger.Policy = policy
	cfg.Appearance.Theme = themeName

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `gridplan setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
