package config

import (
	"sort"
	"strings"
)

// AdjustMode selects how enabled investments change total emissions.
type AdjustMode string

const (
	// AdjustMultiply scales emissions by 1 + the sum of enabled multipliers.
	AdjustMultiply AdjustMode = "multiply"
	// AdjustSubtract subtracts the sum of enabled reductions, floored at zero.
	AdjustSubtract AdjustMode = "subtract"
)

// Policy bundles the emissions adjustment mode with the cost rules.
// A deployment picks exactly one policy and applies it to every recompute.
type Policy struct {
	Name             string
	Mode             AdjustMode
	DiscountFactor   float64 // multiplies each unit cost
	OperatingYears   float64 // years of operating cost folded into unit cost
	InvestmentMarkup float64 // multiplies each enabled investment cost
}

// UnitCost returns the per-unit cost for the given construction and
// operating costs under this policy.
func (p Policy) UnitCost(construction, operating float64) float64 {
	return (construction + operating*p.OperatingYears) * p.DiscountFactor
}

// InvestmentCost returns the marked-up spend for an investment's base cost.
func (p Policy) InvestmentCost(base float64) float64 {
	return base * p.InvestmentMarkup
}

// DefaultPolicyName is used when the config names no policy or an unknown one.
const DefaultPolicyName = "multiplier"

// DefaultPolicies maps policy names to their profiles.
var DefaultPolicies = map[string]Policy{
	"multiplier": {
		Name: "multiplier", Mode: AdjustMultiply,
		DiscountFactor: 1.0, OperatingYears: 4, InvestmentMarkup: 1.10,
	},
	"reduction": {
		Name: "reduction", Mode: AdjustSubtract,
		DiscountFactor: 0.10, OperatingYears: 4, InvestmentMarkup: 1.10,
	},
}

var policyAliases = map[string]string{
	"classic":    "multiplier",
	"multiply":   "multiplier",
	"subsidized": "reduction",
	"subtract":   "reduction",
	"absolution": "reduction",
}

// NormalizePolicyName lowercases, trims, and resolves aliases.
// e.g., " Classic " -> "multiplier"
func NormalizePolicyName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := policyAliases[name]; ok {
		return canonical
	}
	return name
}

// LookupPolicy returns the policy for a name, normalizing it first.
// Unknown names return the default policy and false.
func LookupPolicy(name string) (Policy, bool) {
	if p, ok := DefaultPolicies[NormalizePolicyName(name)]; ok {
		return p, true
	}
	return DefaultPolicies[DefaultPolicyName], false
}

// PolicyNames returns the canonical policy names, sorted.
func PolicyNames() []string {
	names := make([]string, 0, len(DefaultPolicies))
	for name := range DefaultPolicies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
