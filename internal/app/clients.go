package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/fairprice-backend/internal/clients/redis"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/platform/openai"
)

type Clients struct {
	OpenAI    openai.Client
	ReportBus redis.ReportBus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	oa, err := openai.NewClientWithConfig(log, cfg.OpenAI)
	switch {
	case errors.Is(err, openai.ErrNotConfigured):
		log.Warn("OpenAI not configured, explanations use the fallback narrative")
	case err != nil:
		return Clients{}, fmt.Errorf("init openai: %w", err)
	default:
		out.OpenAI = oa
	}

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR not set, report events are not published")
		out.ReportBus = redis.NopBus{}
	} else {
		bus, err := redis.NewReportBus(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init report bus: %w", err)
		}
		out.ReportBus = bus
	}
	return out, nil
}

func (c Clients) Close() {
	if c.ReportBus != nil {
		_ = c.ReportBus.Close()
	}
}
