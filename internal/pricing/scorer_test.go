package pricing

import (
	"math"
	"strings"
	"testing"

	"github.com/yungbote/fairprice-backend/internal/domain"
)

func mustScorer(t *testing.T, p Policy) *Scorer {
	t.Helper()
	s, err := NewScorer(p)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	return s
}

func baselineOf(mean float64, count int64) *domain.Baseline {
	return &domain.Baseline{Key: domain.BaselineKey{Item: "onion", Market: "main bazaar"}, Mean: mean, Count: count}
}

func TestClassifyWithoutBaseline(t *testing.T) {
	t.Parallel()
	s := mustScorer(t, DefaultPolicy())
	for _, b := range []*domain.Baseline{nil, {Count: 0}} {
		got := s.Classify(domain.PriceSample{Price: 999}, b)
		if got.Tier != domain.TierNormal || got.Anomaly || got.Deviation != nil || got.ExpectedPrice != nil || got.ZScore != nil {
			t.Fatalf("cold start: unexpected classification %+v", got)
		}
		if got.Reason != "first submission, no baseline yet" {
			t.Fatalf("cold start: unexpected reason %q", got.Reason)
		}
	}
}

func TestClassifyScenarios(t *testing.T) {
	t.Parallel()
	s := mustScorer(t, DefaultPolicy())
	cases := []struct {
		price   float64
		wantDev float64
		tier    domain.Tier
		anomaly bool
		dir     string
	}{
		{price: 100, wantDev: 0, tier: domain.TierNormal},
		{price: 110, wantDev: 10, tier: domain.TierNormal, dir: "above"},
		{price: 120, wantDev: 20, tier: domain.TierHigh, dir: "above"},
		{price: 125, wantDev: 25, tier: domain.TierHigh, dir: "above"},
		{price: 150, wantDev: 50, tier: domain.TierUnusual, anomaly: true, dir: "above"},
		{price: 160, wantDev: 60, tier: domain.TierUnusual, anomaly: true, dir: "above"},
		{price: 70, wantDev: -30, tier: domain.TierHigh, dir: "below"},
		{price: 40, wantDev: -60, tier: domain.TierUnusual, anomaly: true, dir: "below"},
	}
	for _, tc := range cases {
		got := s.Classify(domain.PriceSample{Price: tc.price}, baselineOf(100, 5))
		if got.Deviation == nil || math.Abs(*got.Deviation-tc.wantDev) > 1e-9 {
			t.Fatalf("price %v: deviation got=%v want=%v", tc.price, got.Deviation, tc.wantDev)
		}
		if got.Tier != tc.tier || got.Anomaly != tc.anomaly {
			t.Fatalf("price %v: got tier=%s anomaly=%v want tier=%s anomaly=%v", tc.price, got.Tier, got.Anomaly, tc.tier, tc.anomaly)
		}
		if got.ExpectedPrice == nil || *got.ExpectedPrice != 100 {
			t.Fatalf("price %v: expected price not carried: %v", tc.price, got.ExpectedPrice)
		}
		if tc.dir != "" && !strings.Contains(got.Reason, tc.dir) {
			t.Fatalf("price %v: reason %q should mention %q", tc.price, got.Reason, tc.dir)
		}
	}
}

func TestClassifyAnomalyIffUnusualThreshold(t *testing.T) {
	t.Parallel()
	policies := []Policy{DefaultPolicy(), {HighPct: 5, UnusualPct: 15}, {HighPct: 33.3, UnusualPct: 80}}
	for _, p := range policies {
		s := mustScorer(t, p)
		for mean := 1.0; mean <= 500; mean *= 3.7 {
			for price := mean * 0.05; price <= mean*3; price += mean * 0.013 {
				got := s.Classify(domain.PriceSample{Price: price}, baselineOf(mean, 3))
				abs := math.Abs(*got.Deviation)
				if got.Anomaly != (abs >= p.UnusualPct) {
					t.Fatalf("policy %+v mean %v price %v: anomaly=%v |dev|=%v", p, mean, price, got.Anomaly, abs)
				}
				var want domain.Tier
				switch {
				case abs < p.HighPct:
					want = domain.TierNormal
				case abs < p.UnusualPct:
					want = domain.TierHigh
				default:
					want = domain.TierUnusual
				}
				if got.Tier != want {
					t.Fatalf("policy %+v mean %v price %v: tier got=%s want=%s", p, mean, price, got.Tier, want)
				}
			}
		}
	}
}

func TestClassifyZScoreIsDiagnosticOnly(t *testing.T) {
	t.Parallel()
	s := mustScorer(t, DefaultPolicy())
	sd := 1.0
	b := baselineOf(100, 10)
	b.StdDev = &sd

	// 105 is 5 standard deviations out but only 5% from the mean.
	got := s.Classify(domain.PriceSample{Price: 105}, b)
	if got.ZScore == nil || math.Abs(*got.ZScore-5) > 1e-9 {
		t.Fatalf("z-score: got %v want 5", got.ZScore)
	}
	if got.Tier != domain.TierNormal || got.Anomaly {
		t.Fatalf("z-score must not change tier: %+v", got)
	}

	zero := 0.0
	b.StdDev = &zero
	if got := s.Classify(domain.PriceSample{Price: 105}, b); got.ZScore != nil {
		t.Fatalf("zero spread should yield no z-score, got %v", *got.ZScore)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()
	s := mustScorer(t, DefaultPolicy())
	b := baselineOf(42, 7)
	a1 := s.Classify(domain.PriceSample{Price: 61}, b)
	a2 := s.Classify(domain.PriceSample{Price: 61}, b)
	if a1.Tier != a2.Tier || *a1.Deviation != *a2.Deviation || a1.Reason != a2.Reason {
		t.Fatalf("classify not deterministic: %+v vs %+v", a1, a2)
	}
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()
	bad := []Policy{{}, {HighPct: 20}, {HighPct: 50, UnusualPct: 50}, {HighPct: -1, UnusualPct: 10}, {HighPct: 60, UnusualPct: 40}}
	for _, p := range bad {
		if _, err := NewScorer(p); err == nil {
			t.Fatalf("policy %+v should be rejected", p)
		}
	}
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}
