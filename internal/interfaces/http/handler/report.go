package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	consolidationapp "github.com/groupclose/backend/internal/application/consolidation"
)

// ReportHandler handles consolidated report API endpoints. Every report is
// assembled from the stored trial balance of a completed run.
type ReportHandler struct {
	BaseHandler
	reportService *consolidationapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *consolidationapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

func (h *ReportHandler) runID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return tenantID, runID, true
}

// GetBalanceSheet godoc
// @ID           getConsolidatedBalanceSheet
// @Summary      Get the consolidated balance sheet for a run
// @Tags         reports
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} APIResponse[consolidation.BalanceSheet]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /consolidation/runs/{id}/reports/balance-sheet [get]
func (h *ReportHandler) GetBalanceSheet(c *gin.Context) {
	tenantID, runID, ok := h.runID(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetBalanceSheet(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// GetIncomeStatement godoc
// @ID           getConsolidatedIncomeStatement
// @Summary      Get the consolidated income statement for a run
// @Tags         reports
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} APIResponse[consolidation.IncomeStatement]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /consolidation/runs/{id}/reports/income-statement [get]
func (h *ReportHandler) GetIncomeStatement(c *gin.Context) {
	tenantID, runID, ok := h.runID(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetIncomeStatement(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// GetCashFlowStatement godoc
// @ID           getConsolidatedCashFlowStatement
// @Summary      Get the consolidated cash flow statement for a run
// @Tags         reports
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} APIResponse[consolidation.CashFlowStatement]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /consolidation/runs/{id}/reports/cash-flow [get]
func (h *ReportHandler) GetCashFlowStatement(c *gin.Context) {
	tenantID, runID, ok := h.runID(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetCashFlowStatement(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// GetEquityStatement godoc
// @ID           getConsolidatedEquityStatement
// @Summary      Get the consolidated statement of changes in equity for a run
// @Tags         reports
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} APIResponse[consolidation.EquityStatement]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /consolidation/runs/{id}/reports/equity [get]
func (h *ReportHandler) GetEquityStatement(c *gin.Context) {
	tenantID, runID, ok := h.runID(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetEquityStatement(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// GetReportPackage godoc
// @ID           getConsolidatedReportPackage
// @Summary      Get the full report package for a run
// @Description  Returns all four consolidated statements assembled from the run's trial balance
// @Tags         reports
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.ReportPackage]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /consolidation/runs/{id}/reports [get]
func (h *ReportHandler) GetReportPackage(c *gin.Context) {
	tenantID, runID, ok := h.runID(c)
	if !ok {
		return
	}

	pkg, err := h.reportService.GetReportPackage(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pkg)
}
