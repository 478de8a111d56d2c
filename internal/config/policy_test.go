package config

import (
	"math"
	"path/filepath"
	"testing"
)

func TestLookupPolicy_NormalizesAliases(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"multiplier", "multiplier", true},
		{" Classic ", "multiplier", true},
		{"REDUCTION", "reduction", true},
		{"subsidized", "reduction", true},
		{"nonsense", DefaultPolicyName, false},
		{"", DefaultPolicyName, false},
	}

	for _, tt := range tests {
		p, ok := LookupPolicy(tt.in)
		if ok != tt.ok {
			t.Fatalf("LookupPolicy(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if p.Name != tt.want {
			t.Fatalf("LookupPolicy(%q) = %q, want %q", tt.in, p.Name, tt.want)
		}
	}
}

func TestPolicyUnitCost(t *testing.T) {
	full, _ := LookupPolicy("multiplier")
	if got := full.UnitCost(1.2, 0.3); math.Abs(got-2.4) > 1e-9 {
		t.Fatalf("multiplier UnitCost = %.4f, want 2.4", got)
	}

	discounted, _ := LookupPolicy("reduction")
	if got := discounted.UnitCost(1.2, 0.3); math.Abs(got-0.24) > 1e-9 {
		t.Fatalf("reduction UnitCost = %.4f, want 0.24", got)
	}

	if got := full.InvestmentCost(100); math.Abs(got-110) > 1e-9 {
		t.Fatalf("InvestmentCost(100) = %.4f, want 110", got)
	}
}

func TestResolvePolicy_DiscountOverride(t *testing.T) {
	t.Setenv("GRIDPLAN_POLICY", "")

	cfg := DefaultConfig()
	cfg.Ledger.Policy = "reduction"
	factor := 0.5
	cfg.Ledger.DiscountFactor = &factor

	p := ResolvePolicy(cfg)
	if p.Mode != AdjustSubtract {
		t.Fatalf("Mode = %q, want %q", p.Mode, AdjustSubtract)
	}
	if p.DiscountFactor != 0.5 {
		t.Fatalf("DiscountFactor = %.2f, want 0.5", p.DiscountFactor)
	}

	// The shared profile must not be mutated by the override.
	if DefaultPolicies["reduction"].DiscountFactor != 0.10 {
		t.Fatal("ResolvePolicy mutated DefaultPolicies")
	}
}

func TestResolvePolicy_EnvWins(t *testing.T) {
	t.Setenv("GRIDPLAN_POLICY", "subsidized")

	cfg := DefaultConfig()
	cfg.Ledger.Policy = "multiplier"
	if p := ResolvePolicy(cfg); p.Name != "reduction" {
		t.Fatalf("policy = %q, want reduction from env", p.Name)
	}
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.General.DefaultLevel != 1 {
		t.Fatalf("DefaultLevel = %d, want 1", cfg.General.DefaultLevel)
	}
	if cfg.Ledger.Policy != DefaultPolicyName {
		t.Fatalf("Policy = %q, want %q", cfg.Ledger.Policy, DefaultPolicyName)
	}
}

func TestSaveToLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.General.PlayerName = "Ada"
	cfg.Ledger.Policy = "reduction"
	budget := 1500.0
	cfg.Ledger.Budget = &budget

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.General.PlayerName != "Ada" || got.Ledger.Policy != "reduction" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.Ledger.Budget == nil || *got.Ledger.Budget != 1500 {
		t.Fatalf("Budget = %v, want 1500", got.Ledger.Budget)
	}
	if got.Server.Addr != "127.0.0.1:8787" {
		t.Fatalf("Server.Addr = %q, want default", got.Server.Addr)
	}
}
