package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, externalID string, role domain.Role) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:                 uuid.New(),
		ExternalID:         externalID,
		Role:               role,
		OnboardingComplete: true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// ReportSeed describes a stored report without going through the scorer.
type ReportSeed struct {
	UserID        string
	Item          string
	Market        string
	Price         float64
	ExpectedPrice *float64
	Deviation     *float64
	Anomaly       bool
	CreatedAt     time.Time
}

func SeedReport(tb testing.TB, ctx context.Context, tx *gorm.DB, s ReportSeed) *domain.Report {
	tb.Helper()
	if s.UserID == "" {
		s.UserID = "user_seed"
	}
	if s.Item == "" {
		s.Item = "Onion"
	}
	if s.Market == "" {
		s.Market = "Main Bazaar"
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	tier := domain.TierNormal
	if s.Anomaly {
		tier = domain.TierUnusual
	}
	r := domain.NewReport(domain.PriceSample{
		Item:        s.Item,
		Price:       s.Price,
		Unit:        "kg",
		Market:      s.Market,
		UserID:      s.UserID,
		SubmittedAt: s.CreatedAt,
	}, domain.Classification{
		Tier:          tier,
		Deviation:     s.Deviation,
		ExpectedPrice: s.ExpectedPrice,
		Anomaly:       s.Anomaly,
		Reason:        "seed",
	}, "seed")
	r.CreatedAt = s.CreatedAt
	r.UpdatedAt = s.CreatedAt
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed report: %v", err)
	}
	return r
}

func F64(v float64) *float64 { return &v }

// CountReports returns the number of stored report rows.
func CountReports(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&domain.Report{}).Count(&n).Error
	return n, err
}
