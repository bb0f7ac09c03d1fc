package pricing

import (
	"math"
	"sort"
	"time"

	"github.com/yungbote/fairprice-backend/internal/domain"
)

// The accumulators below fold a full scan of report facts into the dashboard
// rollups. Each dashboard load is O(total reports); there is no incremental
// state between calls.

type marketGroup struct {
	name           string
	sumActual      float64
	sumPredicted   float64
	predictedCount int64
	total          int64
	flagged        int64
}

type MarketAccumulator struct {
	groups map[string]*marketGroup
}

func NewMarketAccumulator() *MarketAccumulator {
	return &MarketAccumulator{groups: map[string]*marketGroup{}}
}

func (a *MarketAccumulator) Add(f domain.ReportFacts) {
	key := f.MarketKey
	if key == "" {
		key = domain.NormalizeKey(f.MarketName)
	}
	g, ok := a.groups[key]
	if !ok {
		g = &marketGroup{name: f.MarketName}
		a.groups[key] = g
	}
	g.total++
	g.sumActual += f.Price
	if f.ExpectedPrice != nil {
		g.sumPredicted += *f.ExpectedPrice
		g.predictedCount++
	}
	if f.Anomaly {
		g.flagged++
	}
}

// Result returns one row per market, most flagged first.
func (a *MarketAccumulator) Result() []domain.MarketHealth {
	out := make([]domain.MarketHealth, 0, len(a.groups))
	for _, g := range a.groups {
		avgActual := g.sumActual / float64(g.total)
		avgPredicted := 0.0
		if g.predictedCount > 0 {
			avgPredicted = g.sumPredicted / float64(g.predictedCount)
		}
		out = append(out, domain.MarketHealth{
			Market:            g.name,
			AvgActualPrice:    Round2(avgActual),
			AvgPredictedPrice: Round2(avgPredicted),
			AvgDeviation:      Round2(DeviationPct(avgActual, avgPredicted)),
			TotalReports:      g.total,
			FlaggedReports:    g.flagged,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FlaggedReports != out[j].FlaggedReports {
			return out[i].FlaggedReports > out[j].FlaggedReports
		}
		return out[i].Market < out[j].Market
	})
	return out
}

type userGroup struct {
	total   int64
	flagged int64
	last    time.Time
}

type UserAccumulator struct {
	groups map[string]*userGroup
}

func NewUserAccumulator() *UserAccumulator {
	return &UserAccumulator{groups: map[string]*userGroup{}}
}

func (a *UserAccumulator) Add(f domain.ReportFacts) {
	g, ok := a.groups[f.UserID]
	if !ok {
		g = &userGroup{}
		a.groups[f.UserID] = g
	}
	g.total++
	if f.Anomaly {
		g.flagged++
	}
	if f.CreatedAt.After(g.last) {
		g.last = f.CreatedAt
	}
}

// Result returns one row per submitter, most flagged first.
func (a *UserAccumulator) Result() []domain.UserActivity {
	out := make([]domain.UserActivity, 0, len(a.groups))
	for userID, g := range a.groups {
		out = append(out, domain.UserActivity{
			UserID:            userID,
			TotalReports:      g.total,
			FlaggedReports:    g.flagged,
			FlaggedPercentage: Round2(Percentage(g.flagged, g.total)),
			LastActivity:      g.last,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FlaggedReports != out[j].FlaggedReports {
			return out[i].FlaggedReports > out[j].FlaggedReports
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// DeviationPct is (actual-predicted)/predicted*100, or 0 when predicted is 0.
func DeviationPct(actual, predicted float64) float64 {
	if predicted == 0 {
		return 0
	}
	return (actual - predicted) * 100 / predicted
}

// Percentage is part/total*100, or 0 when total is 0.
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
