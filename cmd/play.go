package cmd

import (
	"fmt"

	"github.com/gridplan/gridplan/internal/game"
	"github.com/gridplan/gridplan/internal/levels"
	"github.com/gridplan/gridplan/internal/tui"
	"github.com/gridplan/gridplan/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the interactive grid planning game",
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor so card backgrounds always produce ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(cfg)
	if err != nil {
		return err
	}

	opts := game.Options{Catalog: catalog, Policy: policy, Budget: cfg.Ledger.Budget}
	st, err := openStore()
	if err != nil {
		progressf("  Results unavailable, progress will not be saved: %v\n", err)
	} else {
		defer st.Close()
		opts.Recorder = st
		opts.History = st
	}

	g := game.New(opts, levels.NewProgress())
	p := tea.NewProgram(tui.NewApp(g, playerName(cfg)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
