package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-retention-api/internal/service"
	"github.com/noah-isme/sma-retention-api/pkg/response"
)

// ReportHandler exposes report download endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// AtRisk godoc
// @Summary Download the at-risk students report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Router /reports/at-risk [get]
func (h *ReportHandler) AtRisk(c *gin.Context) {
	format := service.ReportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	result, err := h.reports.AtRiskReport(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Data)
}
