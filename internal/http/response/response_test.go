package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/platform/apierr"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&domain.ValidationError{Field: "price", Reason: "must be positive"}, http.StatusBadRequest, "invalid_request"},
		{fmt.Errorf("report x: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("report x is verified: %w", domain.ErrInvalidTransition), http.StatusConflict, "invalid_transition"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("admin: %w", domain.ErrForbidden), http.StatusForbidden, "forbidden"},
		{apierr.BadRequest("invalid_id", errors.New("bad uuid")), http.StatusBadRequest, "invalid_id"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		got := Classify(tc.err)
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("Classify(%v) = %d %s, want %d %s", tc.err, got.Status, got.Code, tc.status, tc.code)
		}
	}
}

func TestRespondServiceErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondServiceError(c, errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Message != "internal server error" || env.Error.Code != "internal" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRespondListNeverNull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondList[int](c, nil)

	if got := rec.Body.String(); got != `{"success":true,"count":0,"data":[]}` {
		t.Fatalf("unexpected body: %s", got)
	}
}
