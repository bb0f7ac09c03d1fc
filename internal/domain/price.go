package domain

import (
	"math"
	"strings"
	"time"
)

type Tier string

const (
	TierNormal  Tier = "normal"
	TierHigh    Tier = "high"
	TierUnusual Tier = "unusual"
)

// PriceSample is one citizen-submitted observation, before scoring.
type PriceSample struct {
	Item        string
	Price       float64
	Unit        string
	Market      string
	Month       string
	UserID      string
	SubmittedAt time.Time
}

// Validate rejects samples that cannot be scored.
func (s PriceSample) Validate() error {
	switch {
	case strings.TrimSpace(s.UserID) == "":
		return &ValidationError{Field: "user_id", Reason: "is required"}
	case NormalizeKey(s.Item) == "":
		return &ValidationError{Field: "item", Reason: "is required"}
	case NormalizeKey(s.Market) == "":
		return &ValidationError{Field: "market", Reason: "is required"}
	case math.IsNaN(s.Price) || math.IsInf(s.Price, 0):
		return &ValidationError{Field: "price", Reason: "must be a finite number"}
	case s.Price <= 0:
		return &ValidationError{Field: "price", Reason: "must be positive"}
	}
	if s.Month != "" {
		if _, err := time.Parse("2006-01", s.Month); err != nil {
			return &ValidationError{Field: "month", Reason: "must be formatted YYYY-MM"}
		}
	}
	return nil
}

// Key returns the normalized baseline key for the sample.
func (s PriceSample) Key() BaselineKey {
	return BaselineKey{Item: NormalizeKey(s.Item), Market: NormalizeKey(s.Market)}
}

// BaselineKey identifies one (item, market) price series. Both parts are
// already normalized with NormalizeKey.
type BaselineKey struct {
	Item   string
	Market string
}

// Baseline summarizes the non-anomalous history for a key. A nil *Baseline
// means no history; Mean is never a stand-in zero.
type Baseline struct {
	Key    BaselineKey
	Mean   float64
	Count  int64
	StdDev *float64
}

// Classification is the scoring outcome frozen onto a report at creation.
type Classification struct {
	Tier          Tier     `gorm:"column:tier;type:varchar(16);not null" json:"tier"`
	Deviation     *float64 `gorm:"column:deviation" json:"deviation"`
	ZScore        *float64 `gorm:"column:z_score" json:"z_score,omitempty"`
	ExpectedPrice *float64 `gorm:"column:expected_price" json:"expected_price"`
	Anomaly       bool     `gorm:"column:anomaly;not null;index" json:"anomaly"`
	Reason        string   `gorm:"column:reason;type:text" json:"reason"`
}

// NormalizeKey lower-cases s and collapses internal whitespace so "Red  Onion"
// and "red onion" share a baseline.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
