package domain

import "time"

// MarketHealth is one row of the per-market rollup.
type MarketHealth struct {
	Market            string  `json:"market"`
	AvgActualPrice    float64 `json:"avg_actual_price"`
	AvgPredictedPrice float64 `json:"avg_predicted_price"`
	AvgDeviation      float64 `json:"avg_deviation"`
	TotalReports      int64   `json:"total_reports"`
	FlaggedReports    int64   `json:"flagged_reports"`
}

// UserActivity is one row of the per-submitter rollup.
type UserActivity struct {
	UserID            string    `json:"user_id"`
	TotalReports      int64     `json:"total_reports"`
	FlaggedReports    int64     `json:"flagged_reports"`
	FlaggedPercentage float64   `json:"flagged_percentage"`
	LastActivity      time.Time `json:"last_activity"`
}

// ReportFacts is the projection of a report the aggregation engine reads.
type ReportFacts struct {
	MarketKey     string
	MarketName    string
	UserID        string
	Price         float64
	ExpectedPrice *float64
	Anomaly       bool
	CreatedAt     time.Time
}

// Overview bundles both admin rollups with their report totals.
type Overview struct {
	TotalReports   int64          `json:"total_reports"`
	FlaggedReports int64          `json:"flagged_reports"`
	Markets        []MarketHealth `json:"markets"`
	Users          []UserActivity `json:"users"`
}
