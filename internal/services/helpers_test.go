package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/clients/redis"
	"github.com/yungbote/fairprice-backend/internal/data/repos"
	"github.com/yungbote/fairprice-backend/internal/data/repos/testutil"
	"github.com/yungbote/fairprice-backend/internal/pricing"
)

type fakeTextClient struct {
	text  string
	err   error
	block bool
	calls int
}

func (f *fakeTextClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

type recordingBus struct {
	mu     sync.Mutex
	events []redis.ReportEvent
	err    error
}

func (b *recordingBus) Publish(ctx context.Context, evt redis.ReportEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, evt)
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) types() []redis.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]redis.EventType, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

var errBusDown = errors.New("bus down")

type fixture struct {
	db      *gorm.DB
	reports repos.ReportRepo
	users   repos.UserRepo
	bus     *recordingBus
	svc     ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	reportRepo := repos.NewReportRepo(db, log)
	scorer, err := pricing.NewScorer(pricing.DefaultPolicy())
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	bus := &recordingBus{}
	svc := NewReportService(log, reportRepo,
		NewBaselineService(log, reportRepo),
		scorer,
		NewExplanationService(log, nil, 0, nil),
		bus,
		nil,
	)
	return &fixture{
		db:      db,
		reports: reportRepo,
		users:   repos.NewUserRepo(db, log),
		bus:     bus,
		svc:     svc,
	}
}
