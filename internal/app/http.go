package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpapi "github.com/yungbote/fairprice-backend/internal/http"
	"github.com/yungbote/fairprice-backend/internal/http/handlers"
	"github.com/yungbote/fairprice-backend/internal/http/middleware"
	"github.com/yungbote/fairprice-backend/internal/observability"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
)

type Handlers struct {
	Health *handlers.HealthHandler
	User   *handlers.UserHandler
	Report *handlers.ReportHandler
	Admin  *handlers.AdminHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: handlers.NewHealthHandler(db),
		User:   handlers.NewUserHandler(svc.User),
		Report: handlers.NewReportHandler(log, svc.Report),
		Admin:  handlers.NewAdminHandler(log, svc.Report, svc.Aggregate),
	}
}

func wireRouter(log *logger.Logger, cfg Config, svc Services, h Handlers, metrics *observability.Metrics) *gin.Engine {
	log.Info("Wiring router...")
	return httpapi.NewRouter(httpapi.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.Otel.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		AuthMiddleware: middleware.NewAuthMiddleware(log, svc.Identity),
		HealthHandler:  h.Health,
		UserHandler:    h.User,
		ReportHandler:  h.Report,
		AdminHandler:   h.Admin,
	})
}
