package ledger

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/levels"
	"github.com/gridplan/gridplan/internal/model"
)

func mustPolicy(t *testing.T, name string) config.Policy {
	t.Helper()
	p, ok := config.LookupPolicy(name)
	if !ok {
		t.Fatalf("unknown policy %q", name)
	}
	return p
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testRows() []model.EnergyRow {
	return []model.EnergyRow{
		{Type: model.Gas, BaseCapacity: 10, BaseEmissions: 5, PerUnitCapacity: 2, PerUnitEmissions: 0.5,
			ConstructionCost: 1.2, OperatingCost: 0.3},
		{Type: model.Wind, BaseCapacity: 4, BaseEmissions: 0.2, PerUnitCapacity: 0.25, PerUnitEmissions: 0.01,
			ConstructionCost: 1.3, OperatingCost: 0.15},
	}
}

func testInvestments() []model.InvestmentOption {
	return []model.InvestmentOption{
		{ID: "storage", Cost: 100, Multiplier: 0.10, Reduction: 2},
		{ID: "capture", Cost: 200, Multiplier: 0.10, Reduction: 10},
	}
}

func testGoals() model.Goals {
	return model.Goals{CapacityTarget: 50, EmissionsTarget: 6, Budget: 2000}
}

func newTestLedger(t *testing.T, policy string) *Ledger {
	t.Helper()
	return New(testRows(), testInvestments(), testGoals(), mustPolicy(t, policy))
}

func TestRecompute_AllZeroEqualsBase(t *testing.T) {
	l := newTestLedger(t, "multiplier")
	snap := l.Recompute()

	if !approx(snap.Totals.Capacity, 14) {
		t.Fatalf("Capacity = %.4f, want 14", snap.Totals.Capacity)
	}
	if !approx(snap.Totals.EmissionsRaw, 5.2) || !approx(snap.Totals.EmissionsAdjusted, 5.2) {
		t.Fatalf("Emissions raw=%.4f adjusted=%.4f, want 5.2", snap.Totals.EmissionsRaw, snap.Totals.EmissionsAdjusted)
	}
	if snap.Totals.Spend != 0 {
		t.Fatalf("Spend = %.4f, want 0", snap.Totals.Spend)
	}
	if snap.Totals.Remaining != 2000 {
		t.Fatalf("Remaining = %.4f, want 2000", snap.Totals.Remaining)
	}
}

func TestRecompute_RowScenario(t *testing.T) {
	l := newTestLedger(t, "multiplier")
	l.SetUnitCount(model.Gas, 5)
	snap := l.Recompute()

	gas, ok := snap.Row(model.Gas)
	if !ok {
		t.Fatal("gas row missing")
	}
	if !approx(gas.Capacity, 20) {
		t.Fatalf("gas capacity = %.4f, want 20", gas.Capacity)
	}
	if !approx(gas.UnitCost, 2.4) {
		t.Fatalf("gas unit cost = %.4f, want 2.4", gas.UnitCost)
	}
	if !approx(gas.Spend, 12) {
		t.Fatalf("gas spend = %.4f, want 12", gas.Spend)
	}

	discounted := newTestLedger(t, "reduction")
	discounted.SetUnitCount(model.Gas, 5)
	dgas, _ := discounted.Recompute().Row(model.Gas)
	if !approx(dgas.UnitCost, 0.24) || !approx(dgas.Spend, 1.2) {
		t.Fatalf("discounted gas unit cost=%.4f spend=%.4f, want 0.24 and 1.2", dgas.UnitCost, dgas.Spend)
	}
}

func TestSetUnitCount_NeverNegative(t *testing.T) {
	l := newTestLedger(t, "multiplier")

	deltas := []int{-1, 1, 1, -1, -1, -1, 3, -10, 2, -1}
	for _, d := range deltas {
		l.SetUnitCount(model.Wind, d)
		if n := l.Units(model.Wind); n < 0 {
			t.Fatalf("units went negative: %d", n)
		}
	}
	if n := l.Units(model.Wind); n != 1 {
		t.Fatalf("final units = %d, want 1", n)
	}

	l.SetUnitCount(model.Nuclear, 3)
	if n := l.Units(model.Nuclear); n != 0 {
		t.Fatalf("unknown type gained units: %d", n)
	}
}

func TestNew_ClampsNegativeSeed(t *testing.T) {
	rows := testRows()
	rows[0].Units = -4
	l := New(rows, nil, testGoals(), mustPolicy(t, "multiplier"))
	if n := l.Units(model.Gas); n != 0 {
		t.Fatalf("units = %d, want 0", n)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	l := newTestLedger(t, "reduction")
	l.SetUnitCount(model.Gas, 7)
	l.ToggleInvestment("capture", true)

	first := l.Recompute()
	second := l.Recompute()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recompute not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestRecompute_MonotonicPerUnit(t *testing.T) {
	for _, policy := range config.PolicyNames() {
		t.Run(policy, func(t *testing.T) {
			l := newTestLedger(t, policy)
			l.SetUnitCount(model.Wind, 3)
			before := l.Recompute()
			l.SetUnitCount(model.Wind, 1)
			after := l.Recompute()

			rb, _ := before.Row(model.Wind)
			ra, _ := after.Row(model.Wind)
			if !approx(ra.Capacity-rb.Capacity, 0.25) {
				t.Fatalf("capacity delta = %.6f, want 0.25", ra.Capacity-rb.Capacity)
			}
			if !approx(ra.Emissions-rb.Emissions, 0.01) {
				t.Fatalf("emissions delta = %.6f, want 0.01", ra.Emissions-rb.Emissions)
			}
			if !approx(after.Totals.Spend-before.Totals.Spend, ra.UnitCost) {
				t.Fatalf("spend delta = %.6f, want unit cost %.6f",
					after.Totals.Spend-before.Totals.Spend, ra.UnitCost)
			}
		})
	}
}

func TestToggleInvestment_MultiplierPolicy(t *testing.T) {
	l := newTestLedger(t, "multiplier")
	before := l.Recompute()

	l.ToggleInvestment("storage", true)
	after := l.Recompute()

	if !approx(after.Totals.Spend-before.Totals.Spend, 110) {
		t.Fatalf("spend delta = %.4f, want 110", after.Totals.Spend-before.Totals.Spend)
	}
	if !approx(after.Totals.EmissionsAdjusted, before.Totals.EmissionsRaw*1.10) {
		t.Fatalf("adjusted = %.4f, want %.4f", after.Totals.EmissionsAdjusted, before.Totals.EmissionsRaw*1.10)
	}
	if after.Totals.Capacity != before.Totals.Capacity {
		t.Fatal("investment changed capacity")
	}

	l.ToggleInvestment("capture", true)
	both := l.Recompute()
	if !approx(both.Totals.EmissionsAdjusted, before.Totals.EmissionsRaw*1.20) {
		t.Fatalf("two investments adjusted = %.4f, want %.4f", both.Totals.EmissionsAdjusted, before.Totals.EmissionsRaw*1.20)
	}
}

func TestToggleInvestment_ReductionPolicyFloorsAtZero(t *testing.T) {
	l := newTestLedger(t, "reduction")

	l.ToggleInvestment("storage", true)
	snap := l.Recompute()
	if !approx(snap.Totals.EmissionsAdjusted, 3.2) {
		t.Fatalf("adjusted = %.4f, want 3.2", snap.Totals.EmissionsAdjusted)
	}

	l.ToggleInvestment("capture", true)
	snap = l.Recompute()
	if snap.Totals.EmissionsAdjusted != 0 {
		t.Fatalf("adjusted = %.4f, want floor at 0", snap.Totals.EmissionsAdjusted)
	}
	if !approx(snap.Totals.InvestmentSpend, 330) {
		t.Fatalf("investment spend = %.4f, want 330", snap.Totals.InvestmentSpend)
	}

	l.ToggleInvestment("capture", false)
	l.ToggleInvestment("missing", true)
	snap = l.Recompute()
	if !approx(snap.Totals.EmissionsAdjusted, 3.2) {
		t.Fatalf("after untoggle adjusted = %.4f, want 3.2", snap.Totals.EmissionsAdjusted)
	}
}

func TestRecompute_RemainingMayGoNegative(t *testing.T) {
	l := newTestLedger(t, "multiplier")
	l.SetUnitCount(model.Gas, 1000) // 1000 * 2.4 = 2400
	snap := l.Recompute()

	if !approx(snap.Totals.Remaining, -400) {
		t.Fatalf("Remaining = %.4f, want -400", snap.Totals.Remaining)
	}
	if snap.Goals.BudgetMet {
		t.Fatal("BudgetMet true while over budget")
	}
}

func TestEvaluate_Thresholds(t *testing.T) {
	goals := model.Goals{CapacityTarget: 50, EmissionsTarget: 10, Budget: 2000}

	tests := []struct {
		name   string
		totals model.Totals
		want   model.GoalStatus
	}{
		{"exact", model.Totals{Capacity: 50, EmissionsAdjusted: 10, Spend: 2000},
			model.GoalStatus{CapacityMet: true, EmissionsMet: true, BudgetMet: true}},
		{"just short", model.Totals{Capacity: 49.99, EmissionsAdjusted: 10.01, Spend: 2000.01},
			model.GoalStatus{}},
		{"float noise", model.Totals{Capacity: 49.999999999, EmissionsAdjusted: 10.000000001, Spend: 2000.0000000001},
			model.GoalStatus{CapacityMet: true, EmissionsMet: true, BudgetMet: true}},
		{"below display precision", model.Totals{Capacity: 49.996, EmissionsAdjusted: 10.004, Spend: 2000.004},
			model.GoalStatus{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.totals, goals); got != tt.want {
				t.Fatalf("Evaluate = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRecompute_BudgetGoalMatchesRemaining(t *testing.T) {
	l := newTestLedger(t, "multiplier")
	l.goals.Budget = 2.404 // one gas unit costs 2.4
	l.SetUnitCount(model.Gas, 1)

	snap := l.Recompute()
	if snap.Totals.Remaining < 0 || !snap.Goals.BudgetMet {
		t.Fatalf("remaining %.4f, budgetMet %v", snap.Totals.Remaining, snap.Goals.BudgetMet)
	}

	l.goals.Budget = 2.396
	snap = l.Recompute()
	if snap.Totals.Remaining >= 0 || snap.Goals.BudgetMet {
		t.Fatalf("remaining %.4f, budgetMet %v", snap.Totals.Remaining, snap.Goals.BudgetMet)
	}
}

func TestSetUnitCount_Saturates(t *testing.T) {
	l := newTestLedger(t, "multiplier")
	l.SetUnitCount(model.Gas, 5)
	l.SetUnitCount(model.Gas, math.MaxInt)
	if got := l.Units(model.Gas); got != math.MaxInt {
		t.Fatalf("units after huge increase = %d, want MaxInt", got)
	}
	l.SetUnitCount(model.Gas, 1)
	if got := l.Units(model.Gas); got != math.MaxInt {
		t.Fatalf("units after increase at MaxInt = %d, want MaxInt", got)
	}
	l.SetUnitCount(model.Gas, math.MinInt)
	if got := l.Units(model.Gas); got != 0 {
		t.Fatalf("units after huge decrease = %d, want 0", got)
	}
}

func TestReset(t *testing.T) {
	lvl, _ := levels.Default().Level(2)
	l := FromLevel(lvl, mustPolicy(t, "multiplier"), nil)

	seeded := l.Units(model.Gas)
	l.SetUnitCount(model.Gas, 4)
	l.ToggleInvestment("storage", true)
	l.Reset()

	if l.Units(model.Gas) != seeded {
		t.Fatalf("gas units = %d after reset, want %d", l.Units(model.Gas), seeded)
	}
	for _, inv := range l.Investments() {
		if inv.Enabled {
			t.Fatalf("investment %q still enabled after reset", inv.ID)
		}
	}
}

func TestFromLevel_BudgetOverride(t *testing.T) {
	lvl := levels.Default().First()
	budget := 500.0
	l := FromLevel(lvl, mustPolicy(t, "multiplier"), &budget)

	snap := l.Recompute()
	if snap.Totals.Remaining != 500 || l.Goals().Budget != 500 {
		t.Fatalf("Remaining = %.2f budget = %.2f, want 500", snap.Totals.Remaining, l.Goals().Budget)
	}
}

func TestRowsReturnsCopy(t *testing.T) {
	l := newTestLedger(t, "multiplier")
	rows := l.Rows()
	rows[0].Units = 99
	if l.Units(rows[0].Type) != 0 {
		t.Fatal("Rows exposed internal state")
	}
}

func TestApply(t *testing.T) {
	l := newTestLedger(t, "multiplier")

	if err := l.Apply(Command{Op: OpUnits, Type: model.Gas, Delta: 2}); err != nil {
		t.Fatalf("Apply units: %v", err)
	}
	if err := l.Apply(Command{Op: OpInvest, ID: "storage", Enabled: true}); err != nil {
		t.Fatalf("Apply invest: %v", err)
	}
	if l.Units(model.Gas) != 2 || !l.Investments()[0].Enabled {
		t.Fatal("Apply did not mutate the ledger")
	}

	err := l.Apply(Command{Op: "explode"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("Apply unknown op err = %v, want ErrUnknownCommand", err)
	}
}

func TestBreakdown(t *testing.T) {
	l := newTestLedger(t, "multiplier")
	l.SetUnitCount(model.Gas, 1)  // 2.4
	l.SetUnitCount(model.Wind, 4) // 4 * 1.9 = 7.6

	shares := Breakdown(l.Recompute())
	if len(shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(shares))
	}
	if shares[0].Type != model.Wind {
		t.Fatalf("first share = %s, want wind", shares[0].Type)
	}
	if !approx(shares[0].SharePercent, 76) || !approx(shares[1].SharePercent, 24) {
		t.Fatalf("shares = %.2f / %.2f, want 76 / 24", shares[0].SharePercent, shares[1].SharePercent)
	}
}
