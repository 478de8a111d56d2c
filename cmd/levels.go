package cmd

import (
	"fmt"
	"strconv"

	"github.com/gridplan/gridplan/internal/cli"
	"github.com/gridplan/gridplan/internal/ledger"
	"github.com/gridplan/gridplan/internal/levels"

	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List levels with their goals and unlock status",
	RunE:  runLevels,
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}

func runLevels(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(cfg)
	if err != nil {
		return err
	}

	player := playerName(cfg)
	progress := levels.NewProgress()
	if player != "" {
		st, err := openStore()
		if err != nil {
			progressf("  Results unavailable: %v\n", err)
		} else {
			done, err := st.CompletedLevels(player)
			_ = st.Close()
			if err != nil {
				return err
			}
			progress = levels.NewProgress(done...)
		}
	}

	rows := make([][]string, 0, len(catalog.Levels()))
	for _, lvl := range catalog.Levels() {
		goals := ledger.FromLevel(lvl, policy, cfg.Ledger.Budget).Goals()
		status := "locked"
		switch {
		case progress.Completed(lvl.Number):
			status = "✓ done"
		case catalog.Unlocked(progress, lvl.Number):
			status = "open"
		}
		rows = append(rows, []string{
			strconv.Itoa(lvl.Number),
			lvl.Name,
			"≥ " + cli.FormatFixed(goals.CapacityTarget, 1),
			"≤ " + cli.FormatFixed(goals.EmissionsTarget, 1),
			cli.FormatMoney(goals.Budget),
			strconv.Itoa(len(lvl.Rows)),
			status,
		})
	}

	title := "LEVELS"
	if player != "" {
		title += "  " + player
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"#", "Name", "Capacity", "Emissions", "Budget", "Types", "Status"},
		Rows:    rows,
	}))
	return nil
}
