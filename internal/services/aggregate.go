package services

import (
	"context"
	"fmt"

	"github.com/yungbote/fairprice-backend/internal/data/repos"
	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/pricing"
)

// AggregateService computes the admin rollups. Every call scans the whole
// report table, so cost grows linearly with stored reports.
type AggregateService interface {
	MarketHealth(ctx context.Context) ([]domain.MarketHealth, error)
	UserActivity(ctx context.Context) ([]domain.UserActivity, error)
	Overview(ctx context.Context) (*domain.Overview, error)
}

type aggregateService struct {
	log        *logger.Logger
	reportRepo repos.ReportRepo
}

func NewAggregateService(log *logger.Logger, reportRepo repos.ReportRepo) AggregateService {
	return &aggregateService{
		log:        log.With("service", "AggregateService"),
		reportRepo: reportRepo,
	}
}

func (s *aggregateService) MarketHealth(ctx context.Context) ([]domain.MarketHealth, error) {
	acc := pricing.NewMarketAccumulator()
	if err := s.reportRepo.ScanFacts(ctx, nil, func(f domain.ReportFacts) error {
		acc.Add(f)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("market health scan: %w", err)
	}
	return acc.Result(), nil
}

func (s *aggregateService) UserActivity(ctx context.Context) ([]domain.UserActivity, error) {
	acc := pricing.NewUserAccumulator()
	if err := s.reportRepo.ScanFacts(ctx, nil, func(f domain.ReportFacts) error {
		acc.Add(f)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("user activity scan: %w", err)
	}
	return acc.Result(), nil
}

// Overview feeds both accumulators from one scan so the market and user rows
// describe the same set of reports.
func (s *aggregateService) Overview(ctx context.Context) (*domain.Overview, error) {
	markets := pricing.NewMarketAccumulator()
	users := pricing.NewUserAccumulator()
	var total, flagged int64
	if err := s.reportRepo.ScanFacts(ctx, nil, func(f domain.ReportFacts) error {
		markets.Add(f)
		users.Add(f)
		total++
		if f.Anomaly {
			flagged++
		}
		return nil
	}); err != nil {
		s.log.Warn("overview failed", "error", err)
		return nil, fmt.Errorf("overview scan: %w", err)
	}
	return &domain.Overview{
		TotalReports:   total,
		FlaggedReports: flagged,
		Markets:        markets.Result(),
		Users:          users.Result(),
	}, nil
}
