package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gridplan/gridplan/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Path(filepath.Join(t.TempDir(), "data")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListResults(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	results := []model.Result{
		{Player: "Ada", Level: 1, Fingerprint: "aa", Policy: "multiplier", ElapsedSecs: 90,
			Capacity: 51, Emissions: 12, Spend: 900, Remaining: 1100,
			CapacityMet: true, EmissionsMet: true, BudgetMet: true},
		{Player: "Ada", Level: 2, Fingerprint: "bb", Policy: "multiplier", ElapsedSecs: 200,
			Capacity: 70, Emissions: 25, Spend: 2100, Remaining: -100,
			CapacityMet: false, EmissionsMet: false, BudgetMet: false},
		{Player: "Grace", Level: 1, Fingerprint: "aa", Policy: "reduction", ElapsedSecs: 45,
			Capacity: 55, Emissions: 9, Spend: 300, Remaining: 1700,
			CapacityMet: true, EmissionsMet: true, BudgetMet: true},
	}
	for _, r := range results {
		if err := s.SaveResult(r); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}

	count, err := s.ResultCount()
	if err != nil || count != 3 {
		t.Fatalf("ResultCount = %d, %v; want 3", count, err)
	}

	ada, err := s.ListResults("Ada", 0)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(ada) != 2 {
		t.Fatalf("Ada has %d results, want 2", len(ada))
	}
	if ada[0].Level != 2 {
		t.Fatalf("newest Ada result is level %d, want 2", ada[0].Level)
	}
	if ada[0].Remaining != -100 || ada[0].BudgetMet {
		t.Fatalf("round trip lost fields: %+v", ada[0])
	}
	if !ada[1].CompletedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("CompletedAt = %v, want %v", ada[1].CompletedAt, base.Add(time.Minute))
	}

	limited, err := s.ListResults("", 1)
	if err != nil || len(limited) != 1 || limited[0].Player != "Grace" {
		t.Fatalf("ListResults(\"\", 1) = %+v, %v", limited, err)
	}
}

func TestCompletedLevels(t *testing.T) {
	s := openTestStore(t)

	save := func(level int, met bool) {
		t.Helper()
		err := s.SaveResult(model.Result{
			Player: "Ada", Level: level, Fingerprint: "x", Policy: "multiplier",
			CapacityMet: met, EmissionsMet: met, BudgetMet: met,
		})
		if err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}
	save(1, true)
	save(1, true)
	save(2, false)
	save(3, true)

	got, err := s.CompletedLevels("Ada")
	if err != nil {
		t.Fatalf("CompletedLevels: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("CompletedLevels = %v, want [1 3]", got)
	}

	none, err := s.CompletedLevels("Nobody")
	if err != nil || len(none) != 0 {
		t.Fatalf("CompletedLevels(Nobody) = %v, %v", none, err)
	}
}
