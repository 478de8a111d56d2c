package model

// RowResult holds the derived values for one energy row.
type RowResult struct {
	Type      EnergyType `json:"type"`
	Units     int        `json:"units"`
	Capacity  float64    `json:"capacity"`
	Emissions float64    `json:"emissions"`
	UnitCost  float64    `json:"unit_cost"`
	Spend     float64    `json:"spend"`
}

// Totals holds the aggregate values across all rows and investments.
type Totals struct {
	Capacity          float64 `json:"capacity"`
	EmissionsRaw      float64 `json:"emissions_raw"`
	EmissionsAdjusted float64 `json:"emissions_adjusted"`
	UnitSpend         float64 `json:"unit_spend"`
	InvestmentSpend   float64 `json:"investment_spend"`
	Spend             float64 `json:"spend"`
	Remaining         float64 `json:"remaining"`
}

// GoalStatus holds the met flag for each goal.
type GoalStatus struct {
	CapacityMet  bool `json:"capacity_met"`
	EmissionsMet bool `json:"emissions_met"`
	BudgetMet    bool `json:"budget_met"`
}

// AllMet reports whether every goal is met.
func (g GoalStatus) AllMet() bool {
	return g.CapacityMet && g.EmissionsMet && g.BudgetMet
}

// Snapshot is the full result of a ledger recompute.
type Snapshot struct {
	Rows   []RowResult `json:"rows"`
	Totals Totals      `json:"totals"`
	Goals  GoalStatus  `json:"goals"`
	Target Goals       `json:"targets"`
}

// Row returns the result row for t and whether it exists.
func (s Snapshot) Row(t EnergyType) (RowResult, bool) {
	for _, r := range s.Rows {
		if r.Type == t {
			return r, true
		}
	}
	return RowResult{}, false
}

// Result is one finished attempt at a level.
type Result struct {
	Player       string
	Level        int
	Fingerprint  string
	Policy       string
	ElapsedSecs  int64
	Capacity     float64
	Emissions    float64
	Spend        float64
	Remaining    float64
	CapacityMet  bool
	EmissionsMet bool
	BudgetMet    bool
}

// NewResult builds the record of a finished attempt from its final snapshot.
func NewResult(player string, level int, fingerprint, policy string, elapsed int64, snap Snapshot) Result {
	return Result{
		Player:       player,
		Level:        level,
		Fingerprint:  fingerprint,
		Policy:       policy,
		ElapsedSecs:  elapsed,
		Capacity:     snap.Totals.Capacity,
		Emissions:    snap.Totals.EmissionsAdjusted,
		Spend:        snap.Totals.Spend,
		Remaining:    snap.Totals.Remaining,
		CapacityMet:  snap.Goals.CapacityMet,
		EmissionsMet: snap.Goals.EmissionsMet,
		BudgetMet:    snap.Goals.BudgetMet,
	}
}
