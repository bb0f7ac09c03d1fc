package services

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/observability"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/platform/openai"
	"github.com/yungbote/fairprice-backend/internal/pricing"
)

const defaultExplanationTimeout = 3 * time.Second

// ExplanationService turns a classification into text for the submitter. It
// never fails: model errors and timeouts fall back to a fixed template.
type ExplanationService interface {
	Explain(ctx context.Context, sample domain.PriceSample, cls domain.Classification) string
}

type explanationService struct {
	log     *logger.Logger
	client  openai.Client
	timeout time.Duration
	metrics *observability.Metrics
}

// NewExplanationService accepts a nil client, in which case every call uses
// the template.
func NewExplanationService(log *logger.Logger, client openai.Client, timeout time.Duration, metrics *observability.Metrics) ExplanationService {
	if timeout <= 0 {
		timeout = defaultExplanationTimeout
	}
	return &explanationService{
		log:     log.With("service", "ExplanationService"),
		client:  client,
		timeout: timeout,
		metrics: metrics,
	}
}

func (s *explanationService) Explain(ctx context.Context, sample domain.PriceSample, cls domain.Classification) string {
	fallback := pricing.FallbackNarrative(sample, cls)
	if s.client == nil {
		s.metrics.ObserveExplanation("fallback")
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	system, user := pricing.NarrativePrompt(sample, cls)
	start := time.Now()
	text, err := s.client.GenerateText(ctx, system, user)
	if err != nil {
		s.log.Warn("explanation generation failed, using fallback",
			"error", err,
			"tier", cls.Tier,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		s.metrics.ObserveExplanation("fallback")
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.log.Warn("explanation generation returned empty text, using fallback", "tier", cls.Tier)
		s.metrics.ObserveExplanation("fallback")
		return fallback
	}
	s.metrics.ObserveExplanation("model")
	return text
}
