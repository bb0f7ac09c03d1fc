package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/data/repos"
	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/pricing"
)

// baselineLoadTimeout bounds a shared load, which runs detached from any
// single caller's cancellation.
const baselineLoadTimeout = 5 * time.Second

type BaselineService interface {
	// GetBaseline returns nil when no non-anomalous history exists for the
	// (item, market) pair.
	GetBaseline(ctx context.Context, tx *gorm.DB, key domain.BaselineKey) (*domain.Baseline, error)
}

type baselineService struct {
	log        *logger.Logger
	reportRepo repos.ReportRepo
	group      singleflight.Group
}

func NewBaselineService(log *logger.Logger, reportRepo repos.ReportRepo) BaselineService {
	return &baselineService{
		log:        log.With("service", "BaselineService"),
		reportRepo: reportRepo,
	}
}

func (s *baselineService) GetBaseline(ctx context.Context, tx *gorm.DB, key domain.BaselineKey) (*domain.Baseline, error) {
	key = domain.BaselineKey{Item: domain.NormalizeKey(key.Item), Market: domain.NormalizeKey(key.Market)}

	// Only reads outside a transaction are shared; a caller's tx can see rows
	// nobody else can.
	if tx != nil {
		return s.load(ctx, tx, key)
	}

	// Each caller waits on its own ctx; the load itself outlives any one of
	// them so a cancelled leader cannot fail the followers.
	ch := s.group.DoChan(key.Item+"\x00"+key.Market, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), baselineLoadTimeout)
		defer cancel()
		return s.load(loadCtx, nil, key)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	b, _ := res.Val.(*domain.Baseline)
	if b == nil {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (s *baselineService) load(ctx context.Context, tx *gorm.DB, key domain.BaselineKey) (*domain.Baseline, error) {
	m, err := s.reportRepo.BaselineMoments(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("baseline moments: %w", err)
	}
	b := pricing.BaselineFromMoments(key, m)
	if b != nil {
		s.log.Debug("baseline computed", "item", key.Item, "market", key.Market, "count", b.Count, "mean", b.Mean)
	}
	return b, nil
}
