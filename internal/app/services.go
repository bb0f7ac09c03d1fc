package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/observability"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/pricing"
	"github.com/yungbote/fairprice-backend/internal/services"
)

type Services struct {
	Identity    services.IdentityService
	User        services.UserService
	Baseline    services.BaselineService
	Explanation services.ExplanationService
	Report      services.ReportService
	Aggregate   services.AggregateService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")
	scorer, err := pricing.NewScorer(cfg.Pricing)
	if err != nil {
		return Services{}, fmt.Errorf("init scorer: %w", err)
	}

	baseline := services.NewBaselineService(log, repos.Report)
	explanation := services.NewExplanationService(log, clients.OpenAI, cfg.ExplanationTimeout(), metrics)

	return Services{
		Identity:    services.NewIdentityService(log, repos.User, cfg.JWTSecretKey, cfg.JWTIssuer),
		User:        services.NewUserService(log, repos.User),
		Baseline:    baseline,
		Explanation: explanation,
		Report: services.NewReportService(
			log,
			repos.Report,
			baseline,
			scorer,
			explanation,
			clients.ReportBus,
			metrics,
		),
		Aggregate: services.NewAggregateService(log, repos.Report),
	}, nil
}
