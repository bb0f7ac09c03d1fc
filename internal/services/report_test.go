package services

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/fairprice-backend/internal/clients/redis"
	"github.com/yungbote/fairprice-backend/internal/data/repos/testutil"
	"github.com/yungbote/fairprice-backend/internal/domain"
)

func sampleOf(price float64) domain.PriceSample {
	return domain.PriceSample{Item: "Onion", Market: "Main Bazaar", Unit: "kg", Price: price, UserID: "user_a"}
}

func TestSubmitFirstSubmission(t *testing.T) {
	f := newFixture(t)
	r, err := f.svc.Submit(context.Background(), sampleOf(42))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.Status != domain.ReportStatusPending || r.Classification.Anomaly {
		t.Fatalf("first submission must be pending: %+v", r)
	}
	if r.Classification.Deviation != nil || r.Classification.ExpectedPrice != nil {
		t.Fatalf("first submission must have no deviation: %+v", r.Classification)
	}
	if r.Classification.Reason != "first submission, no baseline yet" {
		t.Fatalf("reason: %q", r.Classification.Reason)
	}
	if r.Explanation == "" {
		t.Fatalf("explanation must not be empty")
	}
	if got := f.bus.types(); !reflect.DeepEqual(got, []redis.EventType{redis.EventReportSubmitted}) {
		t.Fatalf("events: %v", got)
	}
}

func TestSubmitScoresAgainstBaseline(t *testing.T) {
	cases := []struct {
		price   float64
		tier    domain.Tier
		anomaly bool
		status  domain.ReportStatus
	}{
		{110, domain.TierNormal, false, domain.ReportStatusPending},
		{125, domain.TierHigh, false, domain.ReportStatusPending},
		{150, domain.TierUnusual, true, domain.ReportStatusFlagged},
		{160, domain.TierUnusual, true, domain.ReportStatusFlagged},
		{40, domain.TierUnusual, true, domain.ReportStatusFlagged},
	}
	for _, tc := range cases {
		f := newFixture(t)
		ctx := context.Background()
		testutil.SeedReport(t, ctx, f.db, testutil.ReportSeed{Price: 90})
		testutil.SeedReport(t, ctx, f.db, testutil.ReportSeed{Price: 110})
		// an anomaly in history must not move the baseline
		testutil.SeedReport(t, ctx, f.db, testutil.ReportSeed{Price: 5000, Anomaly: true})

		r, err := f.svc.Submit(ctx, sampleOf(tc.price))
		if err != nil {
			t.Fatalf("Submit(%v): %v", tc.price, err)
		}
		cls := r.Classification
		if cls.Tier != tc.tier || cls.Anomaly != tc.anomaly || r.Status != tc.status {
			t.Fatalf("Submit(%v): got tier=%s anomaly=%v status=%s", tc.price, cls.Tier, cls.Anomaly, r.Status)
		}
		wantDev := (tc.price - 100) * 100 / 100
		if cls.Deviation == nil || math.Abs(*cls.Deviation-wantDev) > 1e-9 {
			t.Fatalf("Submit(%v): deviation %v want %v", tc.price, cls.Deviation, wantDev)
		}
		if cls.ExpectedPrice == nil || *cls.ExpectedPrice != 100 {
			t.Fatalf("Submit(%v): expected price %v", tc.price, cls.ExpectedPrice)
		}

		stored, err := f.svc.Inspect(ctx, r.ID)
		if err != nil {
			t.Fatalf("Inspect: %v", err)
		}
		if stored.Status != r.Status || stored.Classification.Tier != r.Classification.Tier {
			t.Fatalf("stored report differs: %+v vs %+v", stored, r)
		}
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	bad := []domain.PriceSample{
		{Item: "Onion", Market: "M", Price: 0, UserID: "u"},
		{Item: "Onion", Market: "M", Price: -3, UserID: "u"},
		{Item: "Onion", Market: "M", Price: math.NaN(), UserID: "u"},
		{Item: "", Market: "M", Price: 3, UserID: "u"},
		{Item: "Onion", Market: "  ", Price: 3, UserID: "u"},
		{Item: "Onion", Market: "M", Price: 3, UserID: ""},
		{Item: "Onion", Market: "M", Price: 3, UserID: "u", Month: "May 2026"},
	}
	for _, s := range bad {
		if _, err := f.svc.Submit(context.Background(), s); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("Submit(%+v): expected ErrValidation, got %v", s, err)
		}
	}
	n, err := testutil.CountReports(context.Background(), f.db)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("invalid submissions were stored: %d", n)
	}
}

func TestSubmitSurvivesBusFailure(t *testing.T) {
	f := newFixture(t)
	f.bus.err = errBusDown
	if _, err := f.svc.Submit(context.Background(), sampleOf(10)); err != nil {
		t.Fatalf("Submit must not fail on bus errors: %v", err)
	}
}

func TestMarkValidLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	flagged := testutil.SeedReport(t, ctx, f.db, testutil.ReportSeed{Price: 500, Anomaly: true, Deviation: testutil.F64(400)})
	pending := testutil.SeedReport(t, ctx, f.db, testutil.ReportSeed{Price: 100})

	list, err := f.svc.ListFlagged(ctx)
	if err != nil {
		t.Fatalf("ListFlagged: %v", err)
	}
	if len(list) != 1 || list[0].ID != flagged.ID {
		t.Fatalf("ListFlagged: %+v", list)
	}

	r, err := f.svc.MarkValid(ctx, flagged.ID, "admin_1")
	if err != nil {
		t.Fatalf("MarkValid: %v", err)
	}
	if r.Status != domain.ReportStatusVerified || r.Classification.Anomaly || r.VerifiedBy == nil || *r.VerifiedBy != "admin_1" {
		t.Fatalf("MarkValid: %+v", r)
	}

	if _, err := f.svc.MarkValid(ctx, flagged.ID, "admin_1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("MarkValid (verified): expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.svc.MarkValid(ctx, pending.ID, "admin_1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("MarkValid (pending): expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.svc.MarkValid(ctx, uuid.New(), "admin_1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("MarkValid (missing): expected ErrNotFound, got %v", err)
	}

	list, err = f.svc.ListFlagged(ctx)
	if err != nil {
		t.Fatalf("ListFlagged: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("verified report still flagged: %+v", list)
	}
	if got := f.bus.types(); !reflect.DeepEqual(got, []redis.EventType{redis.EventReportVerified}) {
		t.Fatalf("events: %v", got)
	}
}

func TestMarkValidConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	flagged := testutil.SeedReport(t, ctx, f.db, testutil.ReportSeed{Price: 500, Anomaly: true})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.MarkValid(ctx, flagged.ID, "admin_1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInvalidTransition):
				conflicts++
			default:
				t.Errorf("MarkValid: unexpected error %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || conflicts != 7 {
		t.Fatalf("expected exactly one winner, got ok=%d conflicts=%d", ok, conflicts)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	flagged := testutil.SeedReport(t, ctx, f.db, testutil.ReportSeed{Price: 500, Anomaly: true})

	if err := f.svc.Delete(ctx, flagged.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Inspect(ctx, flagged.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Inspect after delete: expected ErrNotFound, got %v", err)
	}
	if err := f.svc.Delete(ctx, flagged.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete (twice): expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.MarkValid(ctx, flagged.ID, "admin_1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("MarkValid after delete: expected ErrNotFound, got %v", err)
	}
}
