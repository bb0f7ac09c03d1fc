package pricing

import (
	"fmt"
	"math"

	"github.com/yungbote/fairprice-backend/internal/domain"
)

const reasonFirstSubmission = "first submission, no baseline yet"

// Policy holds the percentage-of-baseline thresholds that split the
// deviation axis into tiers.
type Policy struct {
	HighPct    float64 `yaml:"high_pct"`
	UnusualPct float64 `yaml:"unusual_pct"`
}

func DefaultPolicy() Policy {
	return Policy{HighPct: 20, UnusualPct: 50}
}

func (p Policy) Validate() error {
	if !(p.HighPct > 0) || math.IsInf(p.HighPct, 0) {
		return fmt.Errorf("high threshold must be positive, got %v", p.HighPct)
	}
	if !(p.UnusualPct > p.HighPct) || math.IsInf(p.UnusualPct, 0) {
		return fmt.Errorf("unusual threshold (%v) must exceed high threshold (%v)", p.UnusualPct, p.HighPct)
	}
	return nil
}

// TierFor maps an absolute deviation percentage onto a tier. The intervals
// are [0, High), [High, Unusual) and [Unusual, inf).
func (p Policy) TierFor(absPct float64) domain.Tier {
	switch {
	case absPct >= p.UnusualPct:
		return domain.TierUnusual
	case absPct >= p.HighPct:
		return domain.TierHigh
	default:
		return domain.TierNormal
	}
}

type Scorer struct {
	policy Policy
}

func NewScorer(policy Policy) (*Scorer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{policy: policy}, nil
}


// Classify scores sample against baseline. A nil (or empty) baseline is the
// cold-start case and is always normal.
func (s *Scorer) Classify(sample domain.PriceSample, baseline *domain.Baseline) domain.Classification {
	if baseline == nil || baseline.Count <= 0 || !(baseline.Mean > 0) {
		return domain.Classification{
			Tier:   domain.TierNormal,
			Reason: reasonFirstSubmission,
		}
	}

	mean := baseline.Mean
	pct := (sample.Price - mean) * 100 / mean
	tier := s.policy.TierFor(math.Abs(pct))

	cls := domain.Classification{
		Tier:          tier,
		Deviation:     &pct,
		ExpectedPrice: &mean,
		Anomaly:       tier == domain.TierUnusual,
		Reason:        reason(tier, pct),
	}
	// z-score is informational; the tier above is already final
	if baseline.StdDev != nil && *baseline.StdDev > 0 {
		z := (sample.Price - mean) / *baseline.StdDev
		cls.ZScore = &z
	}
	return cls
}

func reason(tier domain.Tier, pct float64) string {
	if pct == 0 {
		return "price matches area baseline"
	}
	dir := "above"
	if pct < 0 {
		dir = "below"
	}
	base := fmt.Sprintf("price is %.1f%% %s area baseline", math.Abs(pct), dir)
	switch tier {
	case domain.TierUnusual:
		return base + ", exceeds unusual threshold"
	case domain.TierHigh:
		return base
	default:
		return base + ", within normal range"
	}
}
