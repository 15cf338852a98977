package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumeatelie/lume-backend/internal/app/service"
	apperrors "github.com/lumeatelie/lume-backend/internal/errors"
	"github.com/lumeatelie/lume-backend/internal/middleware"
)

type ReportController struct {
	reportService service.ReportService
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// ExportPaidOrders streams an XLSX of paid orders in the date range.
// Dates are YYYY-MM-DD; "to" is inclusive.
// GET /api/v1/admin/orders/export?from=2026-01-01&to=2026-01-31
func (ctrl *ReportController) ExportPaidOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data inicial inválida (use AAAA-MM-DD)")
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data final inválida (use AAAA-MM-DD)")
		return
	}
	if to.Before(from) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data final anterior à inicial")
		return
	}
	to = to.Add(24*time.Hour - time.Nanosecond)

	buf, filename, err := ctrl.reportService.ExportPaidOrders(from, to)
	if err != nil {
		log.Error("Failed to export paid orders", err, map[string]interface{}{
			"from": c.Query("from"),
			"to":   c.Query("to"),
		})
		apperrors.InternalError(c, "")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
