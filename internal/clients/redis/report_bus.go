package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/google/uuid"

	"github.com/yungbote/fairprice-backend/internal/platform/logger"
)

type EventType string

const (
	EventReportSubmitted EventType = "report.submitted"
	EventReportVerified  EventType = "report.verified"
	EventReportDeleted   EventType = "report.deleted"
)

// ReportEvent is the payload published for every report lifecycle change.
type ReportEvent struct {
	Type     EventType `json:"type"`
	ReportID uuid.UUID `json:"report_id"`
	Status   string    `json:"status,omitempty"`
	Item     string    `json:"item,omitempty"`
	Market   string    `json:"market,omitempty"`
	Anomaly  bool      `json:"anomaly"`
	At       time.Time `json:"at"`
}

// ReportBus publishes report events to a Redis channel. Subscribers live
// outside this process.
type ReportBus interface {
	Publish(ctx context.Context, evt ReportEvent) error
	Close() error
}

type Config struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type reportBus struct {
	rdb     *goredis.Client
	channel string
}

func NewReportBus(log *logger.Logger, cfg Config) (ReportBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = "fairprice.reports"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.With("service", "RedisReportBus").Info("Redis report bus connected", "addr", addr, "channel", ch)
	return &reportBus{
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *reportBus) Publish(ctx context.Context, evt ReportEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis report bus not initialized")
	}
	raw, err := encodeReportEvent(evt)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *reportBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

func encodeReportEvent(evt ReportEvent) ([]byte, error) {
	if evt.Type == "" || evt.ReportID == uuid.Nil {
		return nil, fmt.Errorf("report event missing type or id")
	}
	return json.Marshal(evt)
}

// NopBus drops every event. Used when REDIS_ADDR is not configured.
type NopBus struct{}

func (NopBus) Publish(context.Context, ReportEvent) error { return nil }

func (NopBus) Close() error { return nil }
