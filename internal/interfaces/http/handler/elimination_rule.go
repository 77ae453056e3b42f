package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	consolidationapp "github.com/groupclose/backend/internal/application/consolidation"
	"github.com/groupclose/backend/internal/domain/consolidation"
)

// EliminationRuleHandler handles elimination rule API endpoints
type EliminationRuleHandler struct {
	BaseHandler
	ruleService *consolidationapp.RuleService
}

// NewEliminationRuleHandler creates a new EliminationRuleHandler
func NewEliminationRuleHandler(ruleService *consolidationapp.RuleService) *EliminationRuleHandler {
	return &EliminationRuleHandler{
		ruleService: ruleService,
	}
}

// RuleListQuery represents query parameters for listing rules
type RuleListQuery struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	Type     string `form:"type"`
}

// Create godoc
// @ID           createEliminationRule
// @Summary      Create an elimination rule for a group
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Param        request body consolidationapp.CreateRuleRequest true "Rule creation request"
// @Success      201 {object} APIResponse[consolidationapp.RuleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /consolidation/groups/{id}/rules [post]
func (h *EliminationRuleHandler) Create(c *gin.Context) {
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

	var req consolidationapp.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.ruleService.Create(c.Request.Context(), tenantID, groupID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, rule)
}

// CreateStandardSet godoc
// @ID           createStandardEliminationRuleSet
// @Summary      Create the standard elimination rule set for a group
// @Description  Creates receivable/payable, sales/COGS, loan and dividend rules in one call
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Param        request body consolidationapp.StandardRuleSetRequest true "Standard rule set accounts"
// @Success      201 {object} APIResponse[[]consolidationapp.RuleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /consolidation/groups/{id}/rules/standard [post]
func (h *EliminationRuleHandler) CreateStandardSet(c *gin.Context) {
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

	var req consolidationapp.StandardRuleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rules, err := h.ruleService.CreateStandardRuleSet(c.Request.Context(), tenantID, groupID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, rules)
}

// ListForGroup godoc
// @ID           listEliminationRules
// @Summary      List elimination rules for a group
// @Tags         rules
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Group ID" format(uuid)
// @Param        search query string false "Search term (rule name)"
// @Param        is_active query bool false "Filter by active state"
// @Param        type query string false "Filter by rule type"
// @Success      200 {object} APIResponse[[]consolidationapp.RuleResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /consolidation/groups/{id}/rules [get]
func (h *EliminationRuleHandler) ListForGroup(c *gin.Context) {
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

	var query RuleListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := consolidation.RuleFilter{IsActive: query.IsActive}
	filter.Search = query.Search
	if query.Type != "" {
		ruleType := consolidation.EliminationType(query.Type)
		filter.Type = &ruleType
	}

	rules, err := h.ruleService.ListForGroup(c.Request.Context(), tenantID, groupID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rules)
}

// GetByID godoc
// @ID           getEliminationRuleById
// @Summary      Get elimination rule by ID
// @Tags         rules
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Rule ID" format(uuid)
// @Success      200 {object} APIResponse[consolidationapp.RuleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /consolidation/rules/{id} [get]
func (h *EliminationRuleHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	rule, err := h.ruleService.GetByID(c.Request.Context(), tenantID, ruleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// Update godoc
// @ID           updateEliminationRule
// @Summary      Update an elimination rule's priority or active state
// @Description  Rules referenced by a completed run can only be deactivated
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Rule ID" format(uuid)
// @Param        request body consolidationapp.UpdateRuleRequest true "Rule update request"
// @Success      200 {object} APIResponse[consolidationapp.RuleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /consolidation/rules/{id} [patch]
func (h *EliminationRuleHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	var req consolidationapp.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.ruleService.Update(c.Request.Context(), tenantID, ruleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// Delete godoc
// @ID           deleteEliminationRule
// @Summary      Delete an elimination rule
// @Description  Rules referenced by a completed run cannot be deleted
// @Tags         rules
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Rule ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /consolidation/rules/{id} [delete]
func (h *EliminationRuleHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	if err := h.ruleService.Delete(c.Request.Context(), tenantID, ruleID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
