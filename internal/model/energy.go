// Package model defines domain types for gridplan levels and ledgers.
package model

// EnergyType identifies one generation technology in the fixed catalog.
type EnergyType string

// The energy type catalog. Order matters: it is the display order and the
// tie-break order for proportional seeding.
const (
	Gas      EnergyType = "gas"
	Wind     EnergyType = "wind"
	Solar    EnergyType = "solar"
	Offshore EnergyType = "offshore"
	Oil      EnergyType = "oil"
	Nuclear  EnergyType = "nuclear"
	Hydro    EnergyType = "hydro"
)

// EnergyTypes lists the catalog in display order.
var EnergyTypes = []EnergyType{Gas, Wind, Solar, Offshore, Oil, Nuclear, Hydro}

var energyLabels = map[EnergyType]string{
	Gas:      "Gas",
	Wind:     "Onshore Wind",
	Solar:    "Solar",
	Offshore: "Offshore Wind",
	Oil:      "Oil",
	Nuclear:  "Nuclear",
	Hydro:    "Hydro",
}

// Valid reports whether t is part of the catalog.
func (t EnergyType) Valid() bool {
	_, ok := energyLabels[t]
	return ok
}

// Label returns the human-readable name of the energy type.
func (t EnergyType) Label() string {
	if l, ok := energyLabels[t]; ok {
		return l
	}
	return string(t)
}

// CatalogIndex returns the position of t in EnergyTypes, or -1.
func (t EnergyType) CatalogIndex() int {
	for i, et := range EnergyTypes {
		if et == t {
			return i
		}
	}
	return -1
}

// EnergyRow holds the constants and current unit count for one energy type.
// Costs are in millions of currency units.
type EnergyRow struct {
	Type             EnergyType
	BaseCapacity     float64
	BaseEmissions    float64
	PerUnitCapacity  float64
	PerUnitEmissions float64
	ConstructionCost float64
	OperatingCost    float64
	Units            int
}

// Capacity returns base capacity plus the marginal contribution of all units.
func (r EnergyRow) Capacity() float64 {
	return r.BaseCapacity + float64(r.Units)*r.PerUnitCapacity
}

// Emissions returns base emissions plus the marginal contribution of all units.
func (r EnergyRow) Emissions() float64 {
	return r.BaseEmissions + float64(r.Units)*r.PerUnitEmissions
}

// InvestmentOption is a togglable purchase that changes total emissions and
// spend but never capacity. Which impact field is read depends on the
// active adjustment policy.
type InvestmentOption struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Cost       float64 `json:"cost"`
	Multiplier float64 `json:"multiplier"` // fraction added to the emissions multiplier
	Reduction  float64 `json:"reduction"`  // flat amount subtracted from total emissions
	Enabled    bool    `json:"enabled"`
}

// Goals holds the fixed pass/fail thresholds for a level.
type Goals struct {
	CapacityTarget  float64 `json:"capacity"`  // met when total capacity >= target
	EmissionsTarget float64 `json:"emissions"` // met when adjusted emissions <= target
	Budget          float64 `json:"budget"`    // met when spend <= budget
}

// DefaultBudget is the total budget in millions when a level sets none.
const DefaultBudget = 2000
