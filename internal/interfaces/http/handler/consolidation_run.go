package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	consolidationapp "github.com/groupclose/backend/internal/application/consolidation"
)

// ConsolidationRunHandler handles consolidation run API endpoints
type ConsolidationRunHandler struct {
	BaseHandler
	runService *consolidationapp.RunService
}

// NewConsolidationRunHandler creates a new ConsolidationRunHandler
func NewConsolidationRunHandler(runService *consolidationapp.RunService) *ConsolidationRunHandler {
	return &ConsolidationRunHandler{
		runService: runService,
	}
}

// Initiate godoc
// @ID           initiateConsolidationRun
// @Summary      Initiate a consolidation run
// @Description  Creates a pending run; at most one pending or in-progress run may exist per group and period
// @Tags         runs
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        X-User-ID header string false "Initiating user ID"
// @Param        request body consolidationapp.InitiateRunRequest true "Run initiation request"
// @Success      201 {object} APIResponse[consolidationapp.RunResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /consolidation/runs [post]
func (h *ConsolidationRunHandler) Initiate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req consolidationapp.InitiateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	initiatedBy, _ := getUserID(c)

	run, err := h.runService.Initiate(c.Request.Context(), tenantID, initiatedBy, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, run)
}

// Execute godoc
// @ID           executeConsolidationRun
// @Summary      Execute a pending consolidation run
// @Description  Drives the run through collect, translate, eliminate, aggregate and validate to a terminal state
// @Tags         runs
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.RunResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /consolidation/runs/{id}/execute [post]
func (h *ConsolidationRunHandler) Execute(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	run, err := h.runService.Execute(c.Request.Context(), tenantID, runID)
	if err != nil {
		// A failed pipeline still yields the run in its failed state
		if run != nil {
			h.Success(c, run)
			return
		}
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// Cancel godoc
// @ID           cancelConsolidationRun
// @Summary      Cancel a consolidation run
// @Description  Pending runs cancel immediately; in-progress runs stop at the next step boundary
// @Tags         runs
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.RunResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /consolidation/runs/{id}/cancel [post]
func (h *ConsolidationRunHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	run, err := h.runService.Cancel(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// GetByID godoc
// @ID           getConsolidationRunById
// @Summary      Get consolidation run by ID
// @Tags         runs
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.RunResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /consolidation/runs/{id} [get]
func (h *ConsolidationRunHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	run, err := h.runService.GetByID(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// List godoc
// @ID           listConsolidationRuns
// @Summary      List consolidation runs
// @Tags         runs
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        group_id query string false "Filter by group" format(uuid)
// @Param        period_ref query string false "Filter by period reference"
// @Param        status query string false "Filter by status" Enums(PENDING, IN_PROGRESS, COMPLETED, FAILED, CANCELLED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(200)
// @Success      200 {object} APIResponse[[]consolidationapp.RunResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /consolidation/runs [get]
func (h *ConsolidationRunHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter consolidationapp.RunListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	runs, err := h.runService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, runs.Items, runs.Total, filter.Page, filter.PageSize)
}

// GetLatestCompleted godoc
// @ID           getLatestCompletedRun
// @Summary      Get the latest completed run for a group
// @Tags         runs
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.RunResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /consolidation/groups/{id}/runs/latest [get]
func (h *ConsolidationRunHandler) GetLatestCompleted(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	run, err := h.runService.GetLatestCompleted(c.Request.Context(), tenantID, groupID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// GetTrialBalance godoc
// @ID           getConsolidatedTrialBalance
// @Summary      Get the consolidated trial balance produced by a run
// @Tags         runs
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.TrialBalanceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /consolidation/runs/{id}/trial-balance [get]
func (h *ConsolidationRunHandler) GetTrialBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	tb, err := h.runService.GetTrialBalance(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tb)
}

// Delete godoc
// @ID           deleteConsolidationRun
// @Summary      Delete a consolidation run
// @Description  Only pending or failed runs may be deleted
// @Tags         runs
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /consolidation/runs/{id} [delete]
func (h *ConsolidationRunHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	if err := h.runService.Delete(c.Request.Context(), tenantID, runID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
