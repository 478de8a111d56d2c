package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gridplan/gridplan/internal/cli"
	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/ledger"
	"github.com/gridplan/gridplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagUnits  string
	flagInvest string
	flagJSON   bool
)

var evalCmd = &cobra.Command{
	Use:     "eval",
	Short:   "Evaluate a level's ledger with unit changes and investments",
	Example: "  gridplan eval -l 2 --units gas=-10,nuclear=8 --invest storage",
	RunE:    runEval,
}

func init() {
	addEvalFlags(evalCmd)
	rootCmd.AddCommand(evalCmd)
}

func addEvalFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagUnits, "units", "", "Unit changes, e.g. gas=3,wind=-1")
	c.Flags().StringVar(&flagInvest, "invest", "", "Investments to enable, e.g. storage,capture")
	c.Flags().BoolVar(&flagJSON, "json", false, "Print the snapshot as JSON")
}

func runEval(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(cfg)
	if err != nil {
		return err
	}

	n := resolveLevel(cfg)
	lvl, ok := catalog.Level(n)
	if !ok {
		return fmt.Errorf("level %d not found", n)
	}
	l := ledger.FromLevel(lvl, policy, cfg.Ledger.Budget)

	cmds, err := parseUnits(flagUnits, l.Rows())
	if err != nil {
		return err
	}
	invest, err := parseInvest(flagInvest, l.Investments())
	if err != nil {
		return err
	}
	for _, c := range append(cmds, invest...) {
		if err := l.Apply(c); err != nil {
			return err
		}
	}
	snap := l.Recompute()

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEVEL %d  %s  (%s policy)", lvl.Number, lvl.Name, policy.Name)))
	fmt.Println()
	if len(cmds) > 0 {
		changes := make([]string, 0, len(cmds))
		for _, c := range cmds {
			changes = append(changes, string(c.Type)+" "+cli.FormatDelta(c.Delta))
		}
		fmt.Printf("  Changes: %s\n\n", strings.Join(changes, ", "))
	}

	rows := make([][]string, 0, len(snap.Rows)+2)
	for _, r := range snap.Rows {
		rows = append(rows, []string{
			r.Type.Label(),
			strconv.Itoa(r.Units),
			cli.FormatFixed(r.Capacity, 2),
			cli.FormatFixed(r.Emissions, 2),
			cli.FormatMoney(r.UnitCost),
			cli.FormatMoney(r.Spend),
		})
	}
	rows = append(rows, []string{cli.Separator})
	rows = append(rows, []string{
		"Total", "",
		cli.FormatFixed(snap.Totals.Capacity, 2),
		cli.FormatFixed(snap.Totals.EmissionsRaw, 2),
		"",
		cli.FormatMoney(snap.Totals.UnitSpend),
	})
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Energy Mix",
		Headers: []string{"Type", "Units", "Capacity", "Emissions", "Unit Cost", "Spend"},
		Rows:    rows,
	}))

	if invs := l.Investments(); len(invs) > 0 {
		rows = rows[:0]
		for _, inv := range invs {
			rows = append(rows, []string{
				inv.Label,
				cli.FormatMoney(policy.InvestmentCost(inv.Cost)),
				investmentImpact(policy, inv),
				cli.GoalMark(inv.Enabled),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Investments",
			Headers: []string{"Investment", "Cost", "Impact", "On"},
			Rows:    rows,
		}))
	}

	t := snap.Target
	fmt.Println("  Goals")
	fmt.Println(cli.RenderGoal("Capacity", snap.Goals.CapacityMet,
		cli.FormatFixed(snap.Totals.Capacity, 2), "≥ "+cli.FormatFixed(t.CapacityTarget, 2)))
	fmt.Println(cli.RenderGoal("Emissions", snap.Goals.EmissionsMet,
		cli.FormatFixed(snap.Totals.EmissionsAdjusted, 2), "≤ "+cli.FormatFixed(t.EmissionsTarget, 2)))
	fmt.Println(cli.RenderGoal("Spend", snap.Goals.BudgetMet,
		cli.FormatMoney(snap.Totals.Spend), "≤ "+cli.FormatMoney(t.Budget)))
	fmt.Printf("  Remaining budget: %s\n\n", cli.FormatMoney(snap.Totals.Remaining))

	if shares := ledger.Breakdown(snap); len(shares) > 0 {
		fmt.Println("  Unit spend by type (%)")
		for _, s := range shares {
			fmt.Println(cli.RenderHorizontalBar(s.Type.Label(), s.SharePercent, 100, 30))
		}
		fmt.Println()
	}

	if snap.Goals.AllMet() {
		fmt.Println("  All goals met.")
	}
	return nil
}

// parseUnits reads "gas=3,wind=-1" into unit commands. Every type must be
// a row of the level.
func parseUnits(raw string, rows []model.EnergyRow) ([]ledger.Command, error) {
	var cmds []ledger.Command
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, delta, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("bad unit change %q (want type=delta)", part)
		}
		t := model.EnergyType(strings.ToLower(strings.TrimSpace(name)))
		if !t.Valid() {
			return nil, fmt.Errorf("unknown energy type %q", strings.TrimSpace(name))
		}
		if !hasRow(rows, t) {
			return nil, fmt.Errorf("level has no %s row", t)
		}
		n, err := strconv.Atoi(strings.TrimSpace(delta))
		if err != nil {
			return nil, fmt.Errorf("bad unit delta in %q: %w", part, err)
		}
		cmds = append(cmds, ledger.Command{Op: ledger.OpUnits, Type: t, Delta: n})
	}
	return cmds, nil
}

// parseInvest reads "storage,capture" into enable commands.
func parseInvest(raw string, options []model.InvestmentOption) ([]ledger.Command, error) {
	var cmds []ledger.Command
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		found := false
		for _, o := range options {
			if o.ID == id {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown investment %q", id)
		}
		cmds = append(cmds, ledger.Command{Op: ledger.OpInvest, ID: id, Enabled: true})
	}
	return cmds, nil
}

func hasRow(rows []model.EnergyRow, t model.EnergyType) bool {
	for _, r := range rows {
		if r.Type == t {
			return true
		}
	}
	return false
}

func investmentImpact(p config.Policy, inv model.InvestmentOption) string {
	if p.Mode == config.AdjustSubtract {
		return "-" + cli.FormatFixed(inv.Reduction, 2) + " emissions"
	}
	return "+" + cli.FormatPercent(inv.Multiplier*100) + " emissions"
}
