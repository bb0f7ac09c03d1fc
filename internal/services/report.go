package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/fairprice-backend/internal/clients/redis"
	"github.com/yungbote/fairprice-backend/internal/data/repos"
	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/observability"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/pricing"
)

const eventPublishTimeout = 2 * time.Second

type ReportService interface {
	// Submit scores sample against its current baseline and stores the result.
	Submit(ctx context.Context, sample domain.PriceSample) (*domain.Report, error)
	ListFlagged(ctx context.Context) ([]*domain.Report, error)
	Inspect(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	// MarkValid clears the anomaly on a flagged report on behalf of adminID.
	MarkValid(ctx context.Context, id uuid.UUID, adminID string) (*domain.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reportService struct {
	log         *logger.Logger
	reportRepo  repos.ReportRepo
	baselines   BaselineService
	scorer      *pricing.Scorer
	explanation ExplanationService
	events      redis.ReportBus
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewReportService(
	log *logger.Logger,
	reportRepo repos.ReportRepo,
	baselines BaselineService,
	scorer *pricing.Scorer,
	explanation ExplanationService,
	events redis.ReportBus,
	metrics *observability.Metrics,
) ReportService {
	if events == nil {
		events = redis.NopBus{}
	}
	return &reportService{
		log:         log.With("service", "ReportService"),
		reportRepo:  reportRepo,
		baselines:   baselines,
		scorer:      scorer,
		explanation: explanation,
		events:      events,
		metrics:     metrics,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) Submit(ctx context.Context, sample domain.PriceSample) (*domain.Report, error) {
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	if sample.SubmittedAt.IsZero() {
		sample.SubmittedAt = s.now()
	}

	baseline, err := s.baselines.GetBaseline(ctx, nil, sample.Key())
	if err != nil {
		return nil, fmt.Errorf("load baseline: %w", err)
	}
	cls := s.scorer.Classify(sample, baseline)
	text := s.explanation.Explain(ctx, sample, cls)

	r := domain.NewReport(sample, cls, text)
	if _, err := s.reportRepo.Create(ctx, nil, []*domain.Report{r}); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.log.Info("report submitted",
		"report_id", r.ID,
		"user_id", r.UserID,
		"item", r.ItemKey,
		"market", r.MarketKey,
		"tier", cls.Tier,
		"anomaly", cls.Anomaly,
	)
	s.metrics.ObserveReportScored(string(cls.Tier), cls.Anomaly)
	s.publish(ctx, redis.EventReportSubmitted, r)
	return r, nil
}

func (s *reportService) ListFlagged(ctx context.Context) ([]*domain.Report, error) {
	out, err := s.reportRepo.ListFlagged(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list flagged reports: %w", err)
	}
	return out, nil
}

func (s *reportService) Inspect(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return s.reportRepo.GetByID(ctx, nil, id)
}

func (s *reportService) MarkValid(ctx context.Context, id uuid.UUID, adminID string) (*domain.Report, error) {
	if adminID == "" {
		return nil, fmt.Errorf("mark valid: %w", domain.ErrUnauthorized)
	}
	r, err := s.reportRepo.MarkVerified(ctx, nil, id, adminID, s.now())
	s.metrics.ObserveAdminAction("mark_valid", outcomeOf(err))
	if err != nil {
		return nil, err
	}
	s.log.Info("report marked valid", "report_id", id, "verified_by", adminID)
	s.publish(ctx, redis.EventReportVerified, r)
	return r, nil
}

func (s *reportService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.reportRepo.Delete(ctx, nil, id)
	s.metrics.ObserveAdminAction("delete", outcomeOf(err))
	if err != nil {
		return err
	}
	s.log.Info("report deleted", "report_id", id)
	s.publish(ctx, redis.EventReportDeleted, &domain.Report{ID: id})
	return nil
}

// publish is best effort; a bus failure never fails the request.
func (s *reportService) publish(ctx context.Context, typ redis.EventType, r *domain.Report) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()
	evt := redis.ReportEvent{
		Type:     typ,
		ReportID: r.ID,
		Status:   string(r.Status),
		Item:     r.ItemKey,
		Market:   r.MarketKey,
		Anomaly:  r.Classification.Anomaly,
		At:       s.now(),
	}
	err := s.events.Publish(ctx, evt)
	s.metrics.ObserveEventPublish(string(typ), err)
	if err != nil {
		s.log.Warn("report event publish failed", "type", typ, "report_id", r.ID, "error", err)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "conflict"
	default:
		return "error"
	}
}
