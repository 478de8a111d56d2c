package ledger

import (
	"sort"

	"github.com/gridplan/gridplan/internal/model"
)

// SpendShare holds one energy type's share of unit spend.
type SpendShare struct {
	Type         model.EnergyType
	Spend        float64
	SharePercent float64
}

// Breakdown splits the snapshot's unit spend by energy type, sorted by
// spend descending. Types with no spend are omitted.
func Breakdown(snap model.Snapshot) []SpendShare {
	out := make([]SpendShare, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		if r.Spend <= 0 {
			continue
		}
		share := SpendShare{Type: r.Type, Spend: r.Spend}
		if snap.Totals.UnitSpend > 0 {
			share.SharePercent = r.Spend / snap.Totals.UnitSpend * 100
		}
		out = append(out, share)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Spend > out[j].Spend
	})
	return out
}
