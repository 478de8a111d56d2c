// Package ledger implements the resource ledger: unit counts and investment
// toggles in, capacity, emissions, spend, and goal status out.
package ledger

import (
	"math"

	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/levels"
	"github.com/gridplan/gridplan/internal/model"
)

// Ledger holds the mutable state of one level: unit counts per energy row
// and the enabled flag of each investment. It is not safe for concurrent
// use; hosts that share a ledger must serialize access.
type Ledger struct {
	policy      config.Policy
	goals       model.Goals
	rows        []model.EnergyRow
	investments []model.InvestmentOption

	seed map[model.EnergyType]int
}

// New returns a ledger for the given rows, investments, goals, and policy.
// Negative unit counts are clamped to zero.
func New(rows []model.EnergyRow, investments []model.InvestmentOption, goals model.Goals, policy config.Policy) *Ledger {
	l := &Ledger{
		policy:      policy,
		goals:       goals,
		rows:        make([]model.EnergyRow, len(rows)),
		investments: make([]model.InvestmentOption, len(investments)),
		seed:        make(map[model.EnergyType]int, len(rows)),
	}
	copy(l.rows, rows)
	copy(l.investments, investments)

	for i := range l.rows {
		if l.rows[i].Units < 0 {
			l.rows[i].Units = 0
		}
		l.seed[l.rows[i].Type] = l.rows[i].Units
	}
	return l
}

// FromLevel builds a ledger for a level. A non-nil budget overrides the
// level's own budget.
func FromLevel(lvl levels.Level, policy config.Policy, budget *float64) *Ledger {
	goals := lvl.ModelGoals()
	if budget != nil {
		goals.Budget = *budget
	}
	return New(lvl.EnergyRows(), lvl.InvestmentOptions(), goals, policy)
}

// Policy returns the adjustment policy this ledger applies.
func (l *Ledger) Policy() config.Policy {
	return l.policy
}

// Goals returns the fixed targets of this ledger.
func (l *Ledger) Goals() model.Goals {
	return l.goals
}

// SetUnitCount adjusts the unit count of type t by delta, clamping the
// result to [0, math.MaxInt]. Unknown types are ignored.
func (l *Ledger) SetUnitCount(t model.EnergyType, delta int) {
	for i := range l.rows {
		if l.rows[i].Type != t {
			continue
		}
		units := l.rows[i].Units
		switch {
		case delta > 0 && units > math.MaxInt-delta:
			units = math.MaxInt
		default:
			units = max(units+delta, 0)
		}
		l.rows[i].Units = units
		return
	}
}

// ToggleInvestment sets the enabled flag of investment id. Unknown ids are
// ignored.
func (l *Ledger) ToggleInvestment(id string, enabled bool) {
	for i := range l.investments {
		if l.investments[i].ID == id {
			l.investments[i].Enabled = enabled
			return
		}
	}
}

// Units returns the current unit count of type t, or 0 if unknown.
func (l *Ledger) Units(t model.EnergyType) int {
	for _, r := range l.rows {
		if r.Type == t {
			return r.Units
		}
	}
	return 0
}

// Rows returns a copy of the energy rows.
func (l *Ledger) Rows() []model.EnergyRow {
	out := make([]model.EnergyRow, len(l.rows))
	copy(out, l.rows)
	return out
}

// Investments returns a copy of the investment options.
func (l *Ledger) Investments() []model.InvestmentOption {
	out := make([]model.InvestmentOption, len(l.investments))
	copy(out, l.investments)
	return out
}

// Reset restores the seeded unit counts and disables every investment.
func (l *Ledger) Reset() {
	for i := range l.rows {
		l.rows[i].Units = l.seed[l.rows[i].Type]
	}
	for i := range l.investments {
		l.investments[i].Enabled = false
	}
}

// Recompute derives per-row values, totals, and goal status from the
// current unit counts and investment flags. It does not modify the ledger.
func (l *Ledger) Recompute() model.Snapshot {
	snap := model.Snapshot{
		Rows:   make([]model.RowResult, 0, len(l.rows)),
		Target: l.goals,
	}

	var totals model.Totals
	for _, r := range l.rows {
		unitCost := l.policy.UnitCost(r.ConstructionCost, r.OperatingCost)
		res := model.RowResult{
			Type:      r.Type,
			Units:     r.Units,
			Capacity:  r.Capacity(),
			Emissions: r.Emissions(),
			UnitCost:  unitCost,
			Spend:     float64(r.Units) * unitCost,
		}
		snap.Rows = append(snap.Rows, res)

		totals.Capacity += res.Capacity
		totals.EmissionsRaw += res.Emissions
		totals.UnitSpend += res.Spend
	}

	var multiplier, reduction float64
	for _, inv := range l.investments {
		if !inv.Enabled {
			continue
		}
		multiplier += inv.Multiplier
		reduction += inv.Reduction
		totals.InvestmentSpend += l.policy.InvestmentCost(inv.Cost)
	}

	switch l.policy.Mode {
	case config.AdjustSubtract:
		totals.EmissionsAdjusted = math.Max(0, totals.EmissionsRaw-reduction)
	default:
		totals.EmissionsAdjusted = totals.EmissionsRaw * (1 + multiplier)
	}

	totals.Spend = totals.UnitSpend + totals.InvestmentSpend
	totals.Remaining = l.goals.Budget - totals.Spend

	snap.Totals = totals
	snap.Goals = Evaluate(totals, l.goals)
	return snap
}

// goalTolerance absorbs float accumulation error at a goal boundary. It is
// far below the two decimals totals are shown with.
const goalTolerance = 1e-6

// Evaluate checks totals against goals with non-strict comparisons. The
// budget goal agrees with the sign of Remaining up to goalTolerance.
func Evaluate(totals model.Totals, goals model.Goals) model.GoalStatus {
	return model.GoalStatus{
		CapacityMet:  totals.Capacity >= goals.CapacityTarget-goalTolerance,
		EmissionsMet: totals.EmissionsAdjusted <= goals.EmissionsTarget+goalTolerance,
		BudgetMet:    goals.Budget-totals.Spend >= -goalTolerance,
	}
}
