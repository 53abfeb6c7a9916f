package recommend

import (
	"math"
	"sort"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// Scored is a candidate with its query-time score.
type Scored struct {
	catalog.Entry
	UserScore float64 `json:"user_score"`
}

// Score ranks candidates by bias*PriceNorm + (1-bias)*TasteNorm and keeps the
// top k. bias 1 optimizes price only, 0 taste only. Ties keep table order.
func Score(candidates []catalog.Entry, bias float64, topK int) []Scored {
	bias = clampBias(bias)
	if topK <= 0 {
		topK = DefaultTopK
	}

	scored := make([]Scored, len(candidates))
	for i, e := range candidates {
		scored[i] = Scored{
			Entry:     e,
			UserScore: bias*e.PriceNorm + (1-bias)*e.TasteNorm,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].UserScore != scored[j].UserScore {
			return scored[i].UserScore > scored[j].UserScore
		}
		return scored[i].Index < scored[j].Index
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func clampBias(bias float64) float64 {
	if math.IsNaN(bias) {
		return DefaultCheapBias
	}
	return math.Min(math.Max(bias, 0), 1)
}
