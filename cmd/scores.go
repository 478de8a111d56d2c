package cmd

import (
	"fmt"
	"strconv"

	"github.com/gridplan/gridplan/internal/cli"

	"github.com/spf13/cobra"
)

var (
	flagScoresAll   bool
	flagScoresLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "List recorded level results",
	RunE:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVarP(&flagScoresAll, "all", "a", false, "Show every player, not just --player")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 20, "Max results to show (0 = all)")
	rootCmd.AddCommand(scoresCmd)
}

func runScores(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	player := playerName(cfg)
	if flagScoresAll {
		player = ""
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.ListResults(player, flagScoresLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("\n  No results recorded yet.")
		fmt.Println("  Finish a level with `gridplan play` first!")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	var played int64
	for _, e := range entries {
		played += e.ElapsedSecs
		goals := cli.GoalMark(e.CapacityMet) + cli.GoalMark(e.EmissionsMet) + cli.GoalMark(e.BudgetMet)
		rows = append(rows, []string{
			e.CompletedAt.Local().Format("2006-01-02 15:04"),
			e.Player,
			strconv.Itoa(e.Level),
			cli.FormatClock(e.ElapsedSecs),
			cli.FormatFixed(e.Capacity, 2),
			cli.FormatFixed(e.Emissions, 2),
			cli.FormatMoney(e.Spend),
			e.Policy,
			goals,
		})
	}

	title := "RESULTS"
	if player != "" {
		title += "  " + player
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Completed", "Player", "Level", "Time", "Capacity", "Emissions", "Spend", "Policy", "Goals"},
		Rows:    rows,
	}))

	fmt.Printf("  Time played: %s\n", cli.FormatDuration(played))
	if total, err := st.ResultCount(); err == nil && total > len(entries) {
		fmt.Printf("  Showing %d of %s results\n", len(entries), cli.FormatNumber(int64(total)))
	}
	fmt.Println()
	return nil
}
