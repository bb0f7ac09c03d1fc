package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/fairprice-backend/internal/http/handlers"
	httpMW "github.com/yungbote/fairprice-backend/internal/http/middleware"
	"github.com/yungbote/fairprice-backend/internal/observability"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler *httpH.HealthHandler
	UserHandler   *httpH.UserHandler
	ReportHandler *httpH.ReportHandler
	AdminHandler  *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "fairprice"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.UserHandler != nil {
			api.GET("/me", cfg.UserHandler.GetMe)
		}
		if cfg.ReportHandler != nil {
			api.POST("/reports", cfg.ReportHandler.Submit)
		}
	}

	admin := api.Group("/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	if cfg.AdminHandler != nil {
		admin.GET("/flagged-reports", cfg.AdminHandler.ListFlagged)
		admin.GET("/reports/:id", cfg.AdminHandler.GetReport)
		admin.PATCH("/reports/:id/mark-valid", cfg.AdminHandler.MarkValid)
		admin.DELETE("/reports/:id", cfg.AdminHandler.DeleteReport)
		admin.GET("/markets", cfg.AdminHandler.MarketHealth)
		admin.GET("/users", cfg.AdminHandler.UserActivity)
		admin.GET("/overview", cfg.AdminHandler.Overview)
	}

	return r
}
