// Package pricing holds the pure statistics behind price-report scoring:
// baselines, the anomaly scorer, the aggregate rollups and the narrative
// templates. Nothing here does I/O.
package pricing

import (
	"math"

	"github.com/yungbote/fairprice-backend/internal/domain"
)

// Moments are the raw sums a store returns for one baseline key.
type Moments struct {
	Count      int64
	Sum        float64
	SumSquares float64
}

// BaselineFromMoments turns the stored sums into a Baseline. It returns nil
// when there are no samples. StdDev is the sample standard deviation and is
// only set when Count >= 2.
func BaselineFromMoments(key domain.BaselineKey, m Moments) *domain.Baseline {
	if m.Count <= 0 {
		return nil
	}
	n := float64(m.Count)
	b := &domain.Baseline{
		Key:   key,
		Mean:  m.Sum / n,
		Count: m.Count,
	}
	if m.Count >= 2 {
		variance := (m.SumSquares - m.Sum*m.Sum/n) / (n - 1)
		// cancellation can leave a tiny negative residue for identical prices
		if variance < 0 {
			variance = 0
		}
		sd := math.Sqrt(variance)
		b.StdDev = &sd
	}
	return b
}
