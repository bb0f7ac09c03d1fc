package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/http/response"
	"github.com/yungbote/fairprice-backend/internal/platform/ctxutil"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/services"
)

type ReportHandler struct {
	log     *logger.Logger
	reports services.ReportService
}

func NewReportHandler(log *logger.Logger, reports services.ReportService) *ReportHandler {
	return &ReportHandler{log: log.With("handler", "ReportHandler"), reports: reports}
}

type submitReportRequest struct {
	Item   string   `json:"item"`
	Price  *float64 `json:"price"`
	Unit   string   `json:"unit"`
	Market string   `json:"market"`
	Month  string   `json:"month"`
}

// POST /api/reports
// body: { "item": "...", "price": 42.5, "unit": "kg", "market": "...", "month": "YYYY-MM" }
func (h *ReportHandler) Submit(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
		return
	}

	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Price == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", &domain.ValidationError{Field: "price", Reason: "is required"})
		return
	}

	r, err := h.reports.Submit(c.Request.Context(), domain.PriceSample{
		Item:   req.Item,
		Price:  *req.Price,
		Unit:   req.Unit,
		Market: req.Market,
		Month:  req.Month,
		UserID: rd.UserID,
	})
	if err != nil {
		if ae := response.RespondServiceError(c, err); ae.Status >= http.StatusInternalServerError {
			h.log.Error("submit report failed", "error", err)
		}
		return
	}
	response.RespondData(c, http.StatusCreated, "", r)
}
