package levels

import (
	"math"
	"sort"

	"github.com/gridplan/gridplan/internal/model"
)

// ProportionalMix splits total units across types in proportion to their
// weights using the largest-remainder method, so the result always sums to
// total. Missing or non-positive weights count as zero; if every weight is
// zero the split is even. Ties go to the type listed first.
func ProportionalMix(types []model.EnergyType, weights map[model.EnergyType]float64, total int) map[model.EnergyType]int {
	out := make(map[model.EnergyType]int, len(types))
	if len(types) == 0 || total <= 0 {
		return out
	}

	w := make([]float64, len(types))
	var sum float64
	for i, t := range types {
		if v := weights[t]; v > 0 {
			w[i] = v
			sum += v
		}
	}
	if sum == 0 {
		for i := range w {
			w[i] = 1
		}
		sum = float64(len(w))
	}

	type share struct {
		idx  int
		frac float64
	}
	shares := make([]share, len(types))
	assigned := 0
	for i, t := range types {
		quota := float64(total) * w[i] / sum
		whole := math.Floor(quota)
		out[t] = int(whole)
		assigned += int(whole)
		shares[i] = share{idx: i, frac: quota - whole}
	}

	sort.SliceStable(shares, func(a, b int) bool {
		return shares[a].frac > shares[b].frac
	})
	for i := 0; assigned < total; i++ {
		out[types[shares[i%len(shares)].idx]]++
		assigned++
	}

	for t, n := range out {
		if n == 0 {
			delete(out, t)
		}
	}
	return out
}
