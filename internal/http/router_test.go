package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/clients/redis"
	"github.com/yungbote/fairprice-backend/internal/data/repos"
	"github.com/yungbote/fairprice-backend/internal/data/repos/testutil"
	"github.com/yungbote/fairprice-backend/internal/domain"
	httpH "github.com/yungbote/fairprice-backend/internal/http/handlers"
	httpMW "github.com/yungbote/fairprice-backend/internal/http/middleware"
	"github.com/yungbote/fairprice-backend/internal/pricing"
	"github.com/yungbote/fairprice-backend/internal/services"
)

const routerSecret = "router-test-secret"

type testAPI struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	reportRepo := repos.NewReportRepo(db, log)
	scorer, err := pricing.NewScorer(pricing.DefaultPolicy())
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}

	reportSvc := services.NewReportService(log, reportRepo,
		services.NewBaselineService(log, reportRepo),
		scorer,
		services.NewExplanationService(log, nil, 0, nil),
		redis.NopBus{},
		nil,
	)
	identity := services.NewIdentityService(log, userRepo, routerSecret, "")

	engine := NewRouter(RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, identity),
		HealthHandler:  httpH.NewHealthHandler(db),
		UserHandler:    httpH.NewUserHandler(services.NewUserService(log, userRepo)),
		ReportHandler:  httpH.NewReportHandler(log, reportSvc),
		AdminHandler:   httpH.NewAdminHandler(log, reportSvc, services.NewAggregateService(log, reportRepo)),
	})
	return &testAPI{db: db, engine: engine}
}

func tokenFor(t *testing.T, sub string) string {
	t.Helper()
	now := time.Now()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(routerSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func (a *testAPI) do(t *testing.T, method, path, sub string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sub != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, sub))
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestHealthcheck(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/healthcheck", "/readyz"} {
		rec := api.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Fatalf("%s: %d %q", path, rec.Code, rec.Body.String())
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: missing request id header", path)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/api/me", "/api/admin/flagged-reports"} {
		rec := api.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
		if env := decode(t, rec); env.Error.Code != "unauthorized" {
			t.Fatalf("%s: unexpected envelope %+v", path, env)
		}
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	testutil.SeedUser(t, ctx, api.db, "user_1", domain.RoleUser)

	for _, sub := range []string{"user_1", "ghost"} {
		rec := api.do(t, http.MethodGet, "/api/admin/markets", sub, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", sub, rec.Code)
		}
	}
}

func TestAdminRoleClaimInTokenIsIgnored(t *testing.T) {
	api := newTestAPI(t)
	testutil.SeedUser(t, context.Background(), api.db, "user_1", domain.RoleUser)

	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user_1",
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}).SignedString([]byte(routerSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/admin/markets", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for stored non-admin, got %d", rec.Code)
	}
}

func TestGetMe(t *testing.T) {
	api := newTestAPI(t)
	testutil.SeedUser(t, context.Background(), api.db, "user_1", domain.RoleUser)

	rec := api.do(t, http.MethodGet, "/api/me", "user_1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/me: %d %s", rec.Code, rec.Body.String())
	}
	var me domain.User
	if err := json.Unmarshal(decode(t, rec).Data, &me); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if me.ExternalID != "user_1" || me.Role != domain.RoleUser {
		t.Fatalf("unexpected user: %+v", me)
	}

	if rec := api.do(t, http.MethodGet, "/api/me", "ghost", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("GET /api/me (unregistered): expected 404, got %d", rec.Code)
	}
}

func TestSubmitAndAdminLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	testutil.SeedUser(t, ctx, api.db, "admin_1", domain.RoleAdmin)

	submit := func(price float64) domain.Report {
		t.Helper()
		rec := api.do(t, http.MethodPost, "/api/reports", "user_1", map[string]any{
			"item": "Onion", "price": price, "unit": "kg", "market": "Main Bazaar",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("submit %v: %d %s", price, rec.Code, rec.Body.String())
		}
		var r domain.Report
		if err := json.Unmarshal(decode(t, rec).Data, &r); err != nil {
			t.Fatalf("decode report: %v", err)
		}
		return r
	}

	first := submit(100)
	if first.Status != domain.ReportStatusPending || first.Classification.Deviation != nil {
		t.Fatalf("first submission: %+v", first)
	}
	flagged := submit(160)
	if flagged.Status != domain.ReportStatusFlagged || !flagged.Classification.Anomaly {
		t.Fatalf("160 against 100: %+v", flagged)
	}

	rec := api.do(t, http.MethodGet, "/api/admin/flagged-reports", "admin_1", nil)
	env := decode(t, rec)
	if rec.Code != http.StatusOK || !env.Success || env.Count != 1 {
		t.Fatalf("flagged-reports: %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/api/admin/reports/"+flagged.ID.String(), "admin_1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("inspect: %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPatch, "/api/admin/reports/"+flagged.ID.String()+"/mark-valid", "admin_1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark-valid: %d %s", rec.Code, rec.Body.String())
	}
	var verified domain.Report
	if err := json.Unmarshal(decode(t, rec).Data, &verified); err != nil {
		t.Fatalf("decode verified: %v", err)
	}
	if verified.Status != domain.ReportStatusVerified || verified.VerifiedBy == nil || *verified.VerifiedBy != "admin_1" {
		t.Fatalf("verified report: %+v", verified)
	}

	rec = api.do(t, http.MethodPatch, "/api/admin/reports/"+flagged.ID.String()+"/mark-valid", "admin_1", nil)
	if rec.Code != http.StatusConflict || decode(t, rec).Error.Code != "invalid_transition" {
		t.Fatalf("mark-valid twice: %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/api/admin/markets", "admin_1", nil)
	if env := decode(t, rec); rec.Code != http.StatusOK || env.Count != 1 {
		t.Fatalf("markets: %d %s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodGet, "/api/admin/users", "admin_1", nil)
	if env := decode(t, rec); rec.Code != http.StatusOK || env.Count != 1 {
		t.Fatalf("users: %d %s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodGet, "/api/admin/overview", "admin_1", nil)
	var ov domain.Overview
	if err := json.Unmarshal(decode(t, rec).Data, &ov); err != nil || ov.TotalReports != 2 || ov.FlaggedReports != 0 {
		t.Fatalf("overview: %v %+v", err, ov)
	}

	rec = api.do(t, http.MethodDelete, "/api/admin/reports/"+flagged.ID.String(), "admin_1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = api.do(t, method, "/api/admin/reports/"+flagged.ID.String(), "admin_1", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s after delete: expected 404, got %d", method, rec.Code)
		}
	}
	rec = api.do(t, http.MethodPatch, "/api/admin/reports/"+uuid.New().String()+"/mark-valid", "admin_1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("mark-valid missing: expected 404, got %d", rec.Code)
	}
}

func TestSubmitRejectsBadInput(t *testing.T) {
	api := newTestAPI(t)
	bodies := []map[string]any{
		{"item": "Onion", "market": "M"},
		{"item": "Onion", "market": "M", "price": 0},
		{"item": "Onion", "market": "M", "price": -5},
		{"item": "", "market": "M", "price": 5},
		{"item": "Onion", "market": "M", "price": 5, "month": "2026/05"},
		{"item": "Onion", "market": "M", "price": "cheap"},
	}
	for _, b := range bodies {
		rec := api.do(t, http.MethodPost, "/api/reports", "user_1", b)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d %s", b, rec.Code, rec.Body.String())
		}
	}
}

func TestAdminRejectsMalformedID(t *testing.T) {
	api := newTestAPI(t)
	testutil.SeedUser(t, context.Background(), api.db, "admin_1", domain.RoleAdmin)
	rec := api.do(t, http.MethodGet, "/api/admin/reports/not-a-uuid", "admin_1", nil)
	if rec.Code != http.StatusBadRequest || decode(t, rec).Error.Code != "invalid_id" {
		t.Fatalf("expected 400 invalid_id, got %d %s", rec.Code, rec.Body.String())
	}
}
