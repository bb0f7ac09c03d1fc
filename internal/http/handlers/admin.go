package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/fairprice-backend/internal/http/response"
	"github.com/yungbote/fairprice-backend/internal/platform/apierr"
	"github.com/yungbote/fairprice-backend/internal/platform/ctxutil"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/services"
)

type AdminHandler struct {
	log        *logger.Logger
	reports    services.ReportService
	aggregates services.AggregateService
}

func NewAdminHandler(log *logger.Logger, reports services.ReportService, aggregates services.AggregateService) *AdminHandler {
	return &AdminHandler{
		log:        log.With("handler", "AdminHandler"),
		reports:    reports,
		aggregates: aggregates,
	}
}

// GET /api/admin/flagged-reports
func (h *AdminHandler) ListFlagged(c *gin.Context) {
	out, err := h.reports.ListFlagged(c.Request.Context())
	if err != nil {
		h.fail(c, "list flagged reports", err)
		return
	}
	response.RespondList(c, out)
}

// GET /api/admin/reports/:id
func (h *AdminHandler) GetReport(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}
	r, err := h.reports.Inspect(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "inspect report", err)
		return
	}
	response.RespondData(c, http.StatusOK, "", r)
}

// PATCH /api/admin/reports/:id/mark-valid
func (h *AdminHandler) MarkValid(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}
	var adminID string
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		adminID = rd.UserID
	}
	r, err := h.reports.MarkValid(c.Request.Context(), id, adminID)
	if err != nil {
		h.fail(c, "mark report valid", err)
		return
	}
	response.RespondData(c, http.StatusOK, "Report marked as valid", r)
}

// DELETE /api/admin/reports/:id
func (h *AdminHandler) DeleteReport(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}
	if err := h.reports.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete report", err)
		return
	}
	response.RespondData(c, http.StatusOK, "Report deleted successfully", nil)
}

// GET /api/admin/markets
func (h *AdminHandler) MarketHealth(c *gin.Context) {
	out, err := h.aggregates.MarketHealth(c.Request.Context())
	if err != nil {
		h.fail(c, "market health", err)
		return
	}
	response.RespondList(c, out)
}

// GET /api/admin/users
func (h *AdminHandler) UserActivity(c *gin.Context) {
	out, err := h.aggregates.UserActivity(c.Request.Context())
	if err != nil {
		h.fail(c, "user activity", err)
		return
	}
	response.RespondList(c, out)
}

// GET /api/admin/overview
func (h *AdminHandler) Overview(c *gin.Context) {
	out, err := h.aggregates.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, "overview", err)
		return
	}
	response.RespondData(c, http.StatusOK, "", out)
}

func (h *AdminHandler) fail(c *gin.Context, op string, err error) {
	if ae := response.RespondServiceError(c, err); ae.Status >= http.StatusInternalServerError {
		h.log.Error(op+" failed", "error", err)
	}
}

func parseReportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, apierr.BadRequest("invalid_id", errors.New("report id must be a uuid")))
		return uuid.Nil, false
	}
	return id, true
}
